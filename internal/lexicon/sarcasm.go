package lexicon

import "regexp"

// SarcasmPatterns detect sarcasm and verbal irony on normalized text.
var SarcasmPatterns = compileAll(
	// exaggerated positive
	`(so|really|very|totally|absolutely) (great|awesome|perfect|wonderful|amazing).*but`,
	`(great|awesome|perfect|wonderful|amazing).*(disaster|fail|error|wrong|broken)`,
	`(素晴らしい|最高|すごい).*(けど|でも|しかし)`,
	// mock agreement
	`yeah,? right`,
	`(oh|wow|gee).*(thanks|great|helpful)`,
	`(sure|okay|fine).*(whatever|like i care|as if)`,
	`はいはい`,
	// rhetorical questions
	`(could|can) you (be|get) any more.+\?`,
	`(マジ|本当に)\?.+\?`,
	// hyperbole
	`(worst|best) (thing|day|experience) (ever|in my life|of all time)`,
	`(史上最高|史上最悪|一生で最高|一生で最悪)`,
	// situational and verbal irony
	`(just|exactly|precisely) what (i|we) (needed|wanted|expected)`,
	`(perfect|great|wonderful) timing`,
	`(how|what) (nice|lovely|wonderful|great) of (you|them|him|her)`,
	`(なんて|何て).*(素敵|素晴らしい)`,
	`(brilliant|genius) (move|decision|choice)`,
)

// ToneMarkers are explicit sarcasm markers.
var ToneMarkers = compileAll(
	`(^|\s)/s($|\s)`,
	`/sarcasm`,
	`#sarcasm`,
	`\(sarcasm\)`,
	`(皮肉です|冗談です)`,
)

// EmphasisCues are punctuation runs typical of ironic exclamation.
var EmphasisCues = compileAll(
	`!{2,}`,
	`\?!|!\?`,
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}
