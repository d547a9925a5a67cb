package sentiment

import (
	"math"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pscheid92/affinity/internal/domain"
	"github.com/pscheid92/affinity/internal/lexicon"
)

// Analyzer scores single utterances. It is safe for concurrent use.
type Analyzer struct {
	opts         Options
	keywords     []lexicon.Keyword
	intensifiers []lexicon.Modifier
	qualifiers   []lexicon.Modifier

	// Sub-analyzers. Their output is range-checked and a panic is contained.
	emphasis func(raw, normalized string) float64
	sarcasm  func(normalized string, score float64) float64
}

func NewAnalyzer(opts Options) *Analyzer {
	a := &Analyzer{
		opts:         opts,
		keywords:     longestFirst(lexicon.Keywords, func(k lexicon.Keyword) string { return k.Phrase }),
		intensifiers: longestFirst(lexicon.Intensifiers, func(m lexicon.Modifier) string { return m.Phrase }),
		qualifiers:   longestFirst(lexicon.Qualifiers, func(m lexicon.Modifier) string { return m.Phrase }),
		emphasis:     measureEmphasis,
	}
	a.sarcasm = a.detectSarcasm
	return a
}

type hit struct {
	phrase  string
	weight  int
	negated bool
	start   int
}

// Analyze scores text. window is only consulted for topic continuity and is never modified.
func (a *Analyzer) Analyze(text string, window domain.Window) domain.SentimentSignal {
	normalized := lexicon.Normalize(text)
	if normalized == "" {
		return domain.SentimentSignal{Empty: true}
	}

	var consumed []lexicon.Span
	modifier := a.modifier(normalized, &consumed)
	hits := a.match(normalized, consumed)

	raw, pos, neg := 0.0, 0.0, 0.0
	var triggers []string
	for _, h := range hits {
		w := float64(h.weight)
		if h.negated {
			w *= a.opts.NegationFactor
		}
		raw += w
		if w > 0 {
			pos += w
		} else {
			neg -= w
		}
		triggers = append(triggers, h.phrase)
	}
	scale := modifier / a.opts.ScoreScale
	score := clamp(raw*scale, -1, 1)
	ambivalence := a.ambivalence(normalized, pos*scale, neg*scale)
	if ambivalence > a.opts.AmbivalenceThreshold {
		score *= 1 - a.opts.AmbivalenceDamping*ambivalence
	}

	degraded := false
	emphasis, ok := guard(func() float64 { return a.emphasis(text, normalized) })
	degraded = degraded || !ok
	sarcasm, ok := guard(func() float64 { return a.sarcasm(normalized, score) })
	degraded = degraded || !ok

	intensity := clamp(math.Abs(score)+emphasis, 0, 1)
	confidence := 0.2
	if len(hits) == 0 {
		intensity = math.Min(emphasis, a.opts.UnmatchedIntensity)
	} else {
		confidence = math.Min(0.9, 0.5+0.1*float64(len(hits)))
		if continuesTopic(triggers, window) {
			confidence += 0.1
		}
	}
	if degraded {
		confidence *= 0.5
	}

	return domain.SentimentSignal{
		Score:         score,
		Intensity:     intensity,
		Sarcasm:       sarcasm,
		Confidence:    clamp(confidence, 0, 1),
		Triggers:      triggers,
		Degraded:      degraded,
		Ambivalence:   ambivalence,
		Inappropriate: inappropriate(normalized),
	}
}

// ambivalence measures how evenly the positive and negative mass balance. It is zero
// unless both sides carry weight or an explicit mixed-emotion pattern matches.
func (a *Analyzer) ambivalence(normalized string, pos, neg float64) float64 {
	pos, neg = math.Min(pos, 1), math.Min(neg, 1)
	balance := 0.0
	if pos+neg > 0 {
		balance = 2 * math.Min(pos, neg) / (pos + neg)
	}
	for _, re := range lexicon.MixedEmotionPatterns {
		if re.MatchString(normalized) {
			return math.Max(balance, a.opts.MixedPatternAmbivalence)
		}
	}
	if pos > a.opts.MixedSideThreshold && neg > a.opts.MixedSideThreshold {
		return balance
	}
	return 0
}

func inappropriate(normalized string) bool {
	return slices.ContainsFunc(lexicon.InappropriateTerms, func(term string) bool {
		return lexicon.Contains(normalized, term)
	})
}

// modifier returns the combined intensifier/qualifier multiplier and marks their spans consumed.
func (a *Analyzer) modifier(normalized string, consumed *[]lexicon.Span) float64 {
	up := 1.0
	for _, m := range a.intensifiers {
		for _, s := range free(lexicon.FindAll(normalized, m.Phrase), *consumed) {
			up *= m.Multiplier
			*consumed = append(*consumed, s)
		}
	}
	down := 1.0
	for _, m := range a.qualifiers {
		for _, s := range free(lexicon.FindAll(normalized, m.Phrase), *consumed) {
			down *= m.Multiplier
			*consumed = append(*consumed, s)
		}
	}
	return math.Min(up, a.opts.MaxModifier) * math.Max(down, a.opts.MinModifier)
}

// match finds non-overlapping keyword hits, longest phrase first, in text order.
func (a *Analyzer) match(normalized string, consumed []lexicon.Span) []hit {
	taken := slices.Clone(consumed)
	var hits []hit
	for _, k := range a.keywords {
		for _, s := range free(lexicon.FindAll(normalized, k.Phrase), taken) {
			taken = append(taken, s)
			hits = append(hits, hit{
				phrase:  k.Phrase,
				weight:  k.Weight,
				negated: negated(normalized, s),
				start:   s.Start,
			})
		}
	}
	slices.SortStableFunc(hits, func(x, y hit) int { return x.start - y.start })
	return hits
}

// negated reports whether the hit at s is negated: a Japanese marker shortly after a
// CJK hit, or an English negator among the two words before a latin hit.
func negated(normalized string, s lexicon.Span) bool {
	first, _ := utf8.DecodeRuneInString(normalized[s.Start:])
	if lexicon.IsCJK(first) {
		tail := clause(normalized[s.End:], 6)
		for _, marker := range lexicon.JapaneseNegations {
			if strings.Contains(tail, marker) {
				return true
			}
		}
		return false
	}

	words := strings.Fields(normalized[:s.Start])
	if len(words) > 2 {
		words = words[len(words)-2:]
	}
	for _, w := range words {
		if slices.Contains(lexicon.EnglishNegations, strings.Trim(w, ",.!?\"")) {
			return true
		}
	}
	return false
}

// clause returns up to n runes of s, stopping at the first punctuation or space.
func clause(s string, n int) string {
	var b strings.Builder
	for _, r := range s {
		if n == 0 || unicode.IsSpace(r) || unicode.IsPunct(r) {
			break
		}
		b.WriteRune(r)
		n--
	}
	return b.String()
}

// continuesTopic reports whether the latest analysed user turn shares a trigger with triggers.
func continuesTopic(triggers []string, window domain.Window) bool {
	for i := len(window) - 1; i >= 0; i-- {
		turn := window[i]
		if turn.Utterance.Role != domain.RoleUser || turn.Result == nil {
			continue
		}
		for _, t := range turn.Result.Signal.Triggers {
			if slices.Contains(triggers, t) {
				return true
			}
		}
		return false
	}
	return false
}

func (a *Analyzer) detectSarcasm(normalized string, score float64) float64 {
	p := 0.0
	for _, re := range lexicon.SarcasmPatterns {
		if re.MatchString(normalized) {
			p += a.opts.SarcasmPerPattern
		}
	}
	if score > 0 && emphasisCues(normalized) {
		p += a.opts.SarcasmEmphasis
	}
	for _, re := range lexicon.ToneMarkers {
		if re.MatchString(normalized) {
			p += a.opts.SarcasmToneMarker
			break
		}
	}
	return math.Min(p, 1)
}

func emphasisCues(normalized string) bool {
	if strings.Count(normalized, "!") >= 2 {
		return true
	}
	for _, re := range lexicon.EmphasisCues {
		if re.MatchString(normalized) {
			return true
		}
	}
	return false
}

// measureEmphasis scores typographic emphasis: exclamation marks, shouting and elongation.
func measureEmphasis(raw, normalized string) float64 {
	e := math.Min(0.1*float64(strings.Count(normalized, "!")), 0.3)
	for _, w := range strings.Fields(raw) {
		if isShouted(w) {
			e += 0.1
			break
		}
	}
	if elongated(normalized) {
		e += 0.1
	}
	return e
}

func isShouted(word string) bool {
	letters := 0
	for _, r := range word {
		if !unicode.IsLetter(r) {
			continue
		}
		if r > unicode.MaxASCII || !unicode.IsUpper(r) {
			return false
		}
		letters++
	}
	return letters >= 3
}

func elongated(normalized string) bool {
	var prev rune
	run := 0
	for _, r := range normalized {
		if r == prev {
			run++
		} else {
			prev, run = r, 1
		}
		switch {
		case (r == 'ー' || r == '〜' || r == '~') && run >= 2:
			return true
		case unicode.IsLetter(r) && run >= 3:
			return true
		}
	}
	return false
}

// guard runs a sub-analyzer, converting a panic or an out-of-range result into a failure.
func guard(f func() float64) (v float64, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			v, ok = 0, false
		}
	}()
	v = f()
	if math.IsNaN(v) || v < 0 || v > 1 {
		return 0, false
	}
	return v, true
}

func free(spans, taken []lexicon.Span) []lexicon.Span {
	out := spans[:0:0]
	for _, s := range spans {
		if !slices.ContainsFunc(taken, s.Overlaps) {
			out = append(out, s)
		}
	}
	return out
}

func longestFirst[T any](items []T, phrase func(T) string) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(x, y T) int {
		return utf8.RuneCountInString(phrase(y)) - utf8.RuneCountInString(phrase(x))
	})
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
