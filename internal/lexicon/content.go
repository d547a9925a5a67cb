package lexicon

// InappropriateTerms mark sexual or otherwise inappropriate content. A hit turns the
// utterance into a rejection regardless of its lexical polarity.
var InappropriateTerms = []string{
	"セックス", "エッチ", "おっぱい", "パンツ", "下着", "裸", "ヌード", "性器",
	"sex", "sexy", "nude", "naked", "breast", "breasts", "penis", "vagina", "underwear",
}

// MixedEmotionPatterns detect explicitly ambivalent statements on normalized text.
var MixedEmotionPatterns = compileAll(
	`(happy|glad|pleased|excited).+(but|however|though|although).+(sad|upset|worried|angry)`,
	`(sad|upset|worried|angry).+(but|however|though|although).+(happy|glad|pleased|excited)`,
	`(love|like).+(but|however|though|although).+(hate|dislike)`,
	`(hate|dislike).+(but|however|though|although).+(love|like)`,
	`mixed feelings|conflicted|bittersweet`,
	`(嬉しい|うれしい|楽しい).*(けど|でも|しかし).*(悲しい|怒り|不安)`,
	`(悲しい|怒り|不安).*(けど|でも|しかし).*(嬉しい|うれしい|楽しい)`,
	`好き.*(けど|でも|しかし).*嫌い`,
	`嫌い.*(けど|でも|しかし).*好き`,
	`複雑な(気持ち|感情)`,
)
