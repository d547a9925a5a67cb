package lexicon

// Modifier scales the magnitude of nearby sentiment.
type Modifier struct {
	Phrase     string
	Multiplier float64
}

// Intensifiers amplify magnitude (multiplier > 1).
var Intensifiers = []Modifier{
	{"extremely", 1.8},
	{"absolutely", 1.8},
	{"incredibly", 1.7},
	{"utterly", 1.7},
	{"completely", 1.6},
	{"totally", 1.6},
	{"terribly", 1.6},
	{"very", 1.5},
	{"really", 1.5},
	{"deeply", 1.5},
	{"truly", 1.4},
	{"so", 1.4},
	{"非常に", 1.8},
	{"ものすごく", 1.7},
	{"めっちゃ", 1.7},
	{"めちゃ", 1.6},
	{"すごく", 1.6},
	{"完全に", 1.6},
	{"絶対に", 1.6},
	{"とても", 1.5},
	{"マジで", 1.5},
	{"本当に", 1.4},
	{"かなり", 1.4},
	{"超", 1.7},
}

// Qualifiers diminish magnitude (multiplier < 1).
var Qualifiers = []Modifier{
	{"barely", 0.4},
	{"hardly", 0.4},
	{"slightly", 0.6},
	{"a bit", 0.6},
	{"a little", 0.6},
	{"mildly", 0.6},
	{"somewhat", 0.7},
	{"kind of", 0.7},
	{"sort of", 0.7},
	{"rather", 0.8},
	{"fairly", 0.8},
	{"わずかに", 0.5},
	{"少し", 0.6},
	{"ちょっと", 0.6},
	{"ほんの", 0.6},
	{"多少", 0.7},
	{"若干", 0.7},
	{"なんとなく", 0.7},
	{"やや", 0.8},
	{"まあまあ", 0.8},
}

// JapaneseNegations flip a hit when they follow it closely.
var JapaneseNegations = []string{"わけじゃ", "わけでは", "じゃない", "じゃねー", "ではない", "ません", "ない", "ねえ"}

// EnglishNegations flip a hit when they precede it closely.
var EnglishNegations = []string{"not", "don't", "dont", "never", "no", "isn't", "doesn't", "didn't", "can't", "won't"}
