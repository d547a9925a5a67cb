package character

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pscheid92/affinity/internal/domain"
	"github.com/pscheid92/affinity/internal/lexicon"
)

const (
	maxAffectionAdjustment  = 10
	wholeFarewellConfidence = 0.9
	partFarewellConfidence  = 0.7
)

// Match classifies text against profile. A nil profile yields two empty matches.
func Match(text string, profile *CompiledProfile) (domain.TsundereMatch, domain.FarewellMatch) {
	if profile == nil {
		return domain.TsundereMatch{}, domain.FarewellMatch{}
	}
	normalized := lexicon.Normalize(text)
	if normalized == "" {
		return domain.TsundereMatch{}, domain.FarewellMatch{}
	}
	return matchTsundere(normalized, profile), matchFarewell(normalized, profile)
}

func matchTsundere(normalized string, p *CompiledProfile) domain.TsundereMatch {
	var (
		m        domain.TsundereMatch
		votes    float64
		heaviest = -1.0
		matched  bool
	)
	for _, c := range p.categories {
		hit := false
		for i, re := range c.patterns {
			if re.MatchString(normalized) {
				hit = true
				m.Patterns = append(m.Patterns, fmt.Sprintf("%s/%d", c.category, i))
			}
		}
		if !hit {
			continue
		}
		votes += c.weight
		m.AffectionAdjustment += c.affection
		if !matched || c.sentiment > m.SuggestedSentiment {
			m.SuggestedSentiment = c.sentiment
		}
		if c.weight > heaviest {
			heaviest = c.weight
			m.Interpretation = c.interpretation
		}
		matched = true
	}

	m.Confidence = math.Min(1, votes)
	m.IsTsundere = m.Confidence > 0
	m.AffectionAdjustment = min(m.AffectionAdjustment, maxAffectionAdjustment)
	m.Consistency = consistency(normalized, p)
	return m
}

// consistency is the mean weight of the profile's speech patterns present in the text.
func consistency(normalized string, p *CompiledProfile) float64 {
	sum, n := 0.0, 0
	for _, sp := range p.speech {
		if sp.re.MatchString(normalized) {
			sum += sp.weight
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func matchFarewell(normalized string, p *CompiledProfile) domain.FarewellMatch {
	best, bestLen := -1, 0
	for i, f := range p.farewells {
		if !lexicon.EndsClause(normalized, f.Phrase) {
			continue
		}
		if n := utf8.RuneCountInString(f.Phrase); n > bestLen {
			best, bestLen = i, n
		}
	}
	if best < 0 {
		return domain.FarewellMatch{}
	}

	f := p.farewells[best]
	hostile := false
	for _, marker := range p.hostileExit {
		if lexicon.Contains(normalized, marker) {
			hostile = true
			break
		}
	}

	m := domain.FarewellMatch{
		IsFarewell:         true,
		Type:               f.Type,
		Culture:            f.Culture,
		Phrase:             f.Phrase,
		Confidence:         partFarewellConfidence,
		HostileExitPresent: hostile,
	}
	if stripPunct(normalized) == stripPunct(f.Phrase) {
		m.Confidence = wholeFarewellConfidence
	}

	switch f.Type {
	case domain.FarewellTsundere:
		m.IsConversationEnd = hostile
		m.Interpretation = domain.InterpretationTsundereFarewell
		if hostile {
			m.Interpretation = domain.InterpretationHostileExit
		}
	case domain.FarewellGenuineNegative:
		m.IsConversationEnd = true
		m.Interpretation = domain.InterpretationHostileExit
	default:
		m.IsConversationEnd = true
		m.Interpretation = domain.InterpretationNormalFarewell
		if hostile {
			m.Interpretation = domain.InterpretationHostileExit
		}
	}
	return m
}

func stripPunct(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) {
			return -1
		}
		return r
	}, s)
}
