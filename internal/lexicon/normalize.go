package lexicon

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/width"
)

var punctuationReplacer = strings.NewReplacer(
	"’", "'",
	"‘", "'",
	"“", `"`,
	"”", `"`,
)

// Normalize folds full/half width variants, lowercases latin text and collapses whitespace.
// Matching of every table in this package is done against normalized text.
func Normalize(text string) string {
	folded := width.Fold.String(text)
	folded = punctuationReplacer.Replace(folded)
	folded = strings.ToLower(folded)
	return strings.Join(strings.Fields(folded), " ")
}

// Span is a half-open byte range into normalized text.
type Span struct {
	Start int
	End   int
}

// Overlaps reports whether two spans share at least one byte.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// FindAll returns every occurrence of phrase in text. Phrases that begin or end
// with a latin word character only match on word boundaries, so "bye" does not
// match inside "goodbye".
func FindAll(text, phrase string) []Span {
	if phrase == "" {
		return nil
	}
	var spans []Span
	offset := 0
	for offset <= len(text) {
		i := strings.Index(text[offset:], phrase)
		if i < 0 {
			break
		}
		start := offset + i
		end := start + len(phrase)
		if boundaryOK(text, phrase, start, end) {
			spans = append(spans, Span{Start: start, End: end})
			offset = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return spans
}

// Contains reports whether phrase occurs in text, honoring word boundaries.
func Contains(text, phrase string) bool {
	return len(FindAll(text, phrase)) > 0
}

// EndsClause reports whether phrase occurs in text at the end of a clause: followed
// by end of text, whitespace, punctuation or a symbol. A CJK phrase may carry a
// trailing elongation and one sentence particle first, so "じゃあなー" and
// "帰るからね" qualify while "じゃあなんで" does not.
func EndsClause(text, phrase string) bool {
	last, _ := utf8.DecodeLastRuneInString(phrase)
	for _, s := range FindAll(text, phrase) {
		rest := text[s.End:]
		if IsCJK(last) {
			rest = strings.TrimLeft(rest, elongation)
			if r, size := utf8.DecodeRuneInString(rest); strings.ContainsRune(sentenceParticles, r) {
				rest = strings.TrimLeft(rest[size:], elongation)
			}
		}
		if rest == "" {
			return true
		}
		r, _ := utf8.DecodeRuneInString(rest)
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return true
		}
	}
	return false
}

const (
	elongation        = "ー〜~っ"
	sentenceParticles = "ねよわぞさ"
)

func boundaryOK(text, phrase string, start, end int) bool {
	first, _ := utf8.DecodeRuneInString(phrase)
	if IsWordRune(first) && start > 0 {
		prev, _ := utf8.DecodeLastRuneInString(text[:start])
		if IsWordRune(prev) {
			return false
		}
	}
	last, _ := utf8.DecodeLastRuneInString(phrase)
	if IsWordRune(last) && end < len(text) {
		next, _ := utf8.DecodeRuneInString(text[end:])
		if IsWordRune(next) {
			return false
		}
	}
	return true
}

// IsWordRune reports whether r belongs to a latin-script word.
func IsWordRune(r rune) bool {
	if r == '\'' {
		return true
	}
	if r > unicode.MaxLatin1 && !unicode.Is(unicode.Latin, r) {
		return false
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// IsCJK reports whether r is a Han, Hiragana or Katakana rune (including the prolonged sound mark).
func IsCJK(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana) || r == 'ー'
}

// Tokens splits normalized text into comparison tokens: whole words for latin
// script and rune bigrams for CJK runs. Punctuation is dropped.
func Tokens(text string) []string {
	var tokens []string
	var word strings.Builder
	var cjk []rune

	flushWord := func() {
		if word.Len() > 0 {
			tokens = append(tokens, strings.Trim(word.String(), "'"))
			word.Reset()
		}
	}
	flushCJK := func() {
		switch {
		case len(cjk) == 1:
			tokens = append(tokens, string(cjk))
		case len(cjk) > 1:
			for i := 0; i+1 < len(cjk); i++ {
				tokens = append(tokens, string(cjk[i:i+2]))
			}
		}
		cjk = cjk[:0]
	}

	for _, r := range text {
		switch {
		case IsWordRune(r):
			flushCJK()
			word.WriteRune(r)
		case IsCJK(r):
			flushWord()
			cjk = append(cjk, r)
		default:
			flushWord()
			flushCJK()
		}
	}
	flushWord()
	flushCJK()

	out := tokens[:0]
	for _, t := range tokens {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Jaccard returns the token-set similarity of a and b in [0, 1].
func Jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}
	other := make(map[string]struct{}, len(b))
	for _, t := range b {
		other[t] = struct{}{}
	}
	inter := 0
	for t := range other {
		if _, ok := set[t]; ok {
			inter++
		}
	}
	union := len(set) + len(other) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
