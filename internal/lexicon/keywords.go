package lexicon

// Polarity groups keywords by the kind of reaction they express.
type Polarity string

const (
	Positive   Polarity = "positive"
	Negative   Polarity = "negative"
	Caring     Polarity = "caring"
	Dismissive Polarity = "dismissive"
)

// Keyword is a weighted lexical trigger. Weight is the affection impact on a -10..+10 scale.
type Keyword struct {
	Phrase   string
	Weight   int
	Polarity Polarity
}

// Keywords is the combined sentiment lexicon.
var Keywords = []Keyword{
	// Japanese positive
	{"ありがとうございます", 5, Positive},
	{"ありがとう", 4, Positive},
	{"すごい", 3, Positive},
	{"いいね", 3, Positive},
	{"よかった", 3, Positive},
	{"うれしい", 4, Positive},
	{"嬉しい", 4, Positive},
	{"楽しい", 3, Positive},
	{"面白い", 3, Positive},
	{"かわいい", 4, Positive},
	{"可愛い", 4, Positive},
	{"やさしい", 4, Positive},
	{"優しい", 4, Positive},
	{"頑張って", 3, Positive},
	{"がんばって", 3, Positive},
	{"お疲れ", 3, Positive},
	{"おつかれ", 3, Positive},
	{"ごめんなさい", 3, Positive},
	{"ごめん", 2, Positive},
	{"すみません", 2, Positive},
	{"素敵", 4, Positive},
	{"綺麗", 4, Positive},
	{"賢い", 4, Positive},
	{"頭いい", 4, Positive},
	{"大好き", 6, Positive},
	{"好き", 5, Positive},
	{"愛してる", 7, Positive},

	// English positive
	{"thanks", 4, Positive},
	{"thank", 4, Positive},
	{"please", 2, Positive},
	{"sorry", 2, Positive},
	{"good", 3, Positive},
	{"great", 4, Positive},
	{"awesome", 4, Positive},
	{"nice", 3, Positive},
	{"cute", 4, Positive},
	{"sweet", 3, Positive},
	{"kind", 4, Positive},
	{"wonderful", 4, Positive},
	{"amazing", 4, Positive},
	{"love", 5, Positive},
	{"like", 3, Positive},
	{"beautiful", 4, Positive},
	{"smart", 4, Positive},
	{"clever", 4, Positive},

	// Japanese negative
	{"うざい", -4, Negative},
	{"うるさい", -3, Negative},
	{"きもい", -5, Negative},
	{"だめ", -2, Negative},
	{"バカ", -3, Negative},
	{"ばか", -3, Negative},
	{"馬鹿", -3, Negative},
	{"アホ", -3, Negative},
	{"あほ", -3, Negative},
	{"やめろ", -3, Negative},
	{"黙れ", -4, Negative},
	{"いらない", -2, Negative},
	{"つまらない", -2, Negative},
	{"むかつく", -3, Negative},
	{"ムカつく", -3, Negative},
	{"死ね", -8, Negative},
	{"しね", -8, Negative},
	{"嫌い", -4, Negative},
	{"きらい", -4, Negative},
	{"クソ", -3, Negative},
	{"くそ", -3, Negative},
	{"消えろ", -6, Negative},

	// English negative
	{"stupid", -4, Negative},
	{"dumb", -3, Negative},
	{"shut up", -4, Negative},
	{"hate", -5, Negative},
	{"annoying", -3, Negative},
	{"bad", -2, Negative},
	{"terrible", -3, Negative},
	{"awful", -3, Negative},
	{"disgusting", -4, Negative},
	{"gross", -3, Negative},
	{"ugly", -4, Negative},
	{"die", -8, Negative},
	{"kill", -6, Negative},

	// Caring
	{"無理しないで", 4, Caring},
	{"気をつけて", 4, Caring},
	{"お疲れさま", 4, Caring},
	{"大丈夫", 3, Caring},
	{"だいじょうぶ", 3, Caring},
	{"心配", 4, Caring},
	{"応援", 4, Caring},
	{"元気", 3, Caring},
	{"休んで", 3, Caring},
	{"寂しい", 4, Caring},
	{"会いたい", 5, Caring},
	{"待ってた", 4, Caring},
	{"take care", 4, Caring},
	{"feel better", 4, Caring},
	{"miss you", 5, Caring},
	{"worry", 3, Caring},
	{"care", 4, Caring},

	// Dismissive
	{"どうでもいい", -2, Dismissive},
	{"知らない", -2, Dismissive},
	{"しらない", -2, Dismissive},
	{"関係ない", -2, Dismissive},
	{"めんどくさい", -2, Dismissive},
	{"面倒", -2, Dismissive},
	{"つまんない", -2, Dismissive},
	{"whatever", -2, Dismissive},
	{"don't care", -2, Dismissive},
	{"boring", -2, Dismissive},
	{"meh", -1, Dismissive},
	{"ignore", -3, Dismissive},
}
