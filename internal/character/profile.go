package character

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"sync"

	"github.com/pscheid92/affinity/internal/domain"
	"github.com/pscheid92/affinity/internal/lexicon"
	"gopkg.in/yaml.v3"
)

// ErrProfileUnavailable is wrapped by every load and validation failure.
var ErrProfileUnavailable = errors.New("character profile unavailable")

// Profile is the on-disk form of a character profile.
type Profile struct {
	Name               string                      `yaml:"name" jsonschema:"required,minLength=1"`
	SpeechPatterns     []SpeechPattern             `yaml:"speech_patterns"`
	Tsundere           map[string]TsundereCategory `yaml:"tsundere" jsonschema:"description=Keyed by tsundere category"`
	Farewells          []Farewell                  `yaml:"farewells"`
	HostileExitMarkers []string                    `yaml:"hostile_exit_markers"`
}

type SpeechPattern struct {
	Name    string  `yaml:"name" jsonschema:"required"`
	Pattern string  `yaml:"pattern" jsonschema:"required,description=RE2 regular expression"`
	Weight  float64 `yaml:"weight" jsonschema:"minimum=0,maximum=1"`
}

// TsundereCategory is one group of patterns that vote together.
type TsundereCategory struct {
	Weight         float64  `yaml:"weight" jsonschema:"minimum=0,maximum=1"`
	Sentiment      float64  `yaml:"sentiment" jsonschema:"minimum=-1,maximum=1"`
	Affection      int      `yaml:"affection" jsonschema:"minimum=-10,maximum=10"`
	Interpretation string   `yaml:"interpretation"`
	Patterns       []string `yaml:"patterns" jsonschema:"required,minItems=1"`
}

type Farewell struct {
	Phrase   string              `yaml:"phrase" jsonschema:"required,minLength=1"`
	Type     domain.FarewellType `yaml:"type" jsonschema:"required,enum=casual,enum=formal,enum=tsundere,enum=action,enum=genuine-negative"`
	Culture  domain.Culture      `yaml:"culture" jsonschema:"required,enum=ja,enum=en"`
	Category string              `yaml:"category,omitempty"`
}

// CompiledProfile is a validated profile ready for matching. It is immutable and safe for concurrent use.
type CompiledProfile struct {
	Name        string
	speech      []compiledSpeech
	categories  []compiledCategory
	farewells   []Farewell
	hostileExit []string
}

type compiledSpeech struct {
	name   string
	re     *regexp.Regexp
	weight float64
}

type compiledCategory struct {
	category       domain.TsundereCategory
	weight         float64
	sentiment      float64
	affection      int
	interpretation string
	patterns       []*regexp.Regexp
}

// Parse decodes a YAML profile. Unknown fields are rejected.
func Parse(data []byte) (Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return Profile{}, fmt.Errorf("%w: decode: %w", ErrProfileUnavailable, err)
	}
	return p, nil
}

// Load reads, parses and compiles the profile at path.
func Load(path string) (*CompiledProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrProfileUnavailable, path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return Compile(p)
}

// Compile validates p and compiles its patterns. Phrases and markers are normalized
// the same way utterances are.
func Compile(p Profile) (*CompiledProfile, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrProfileUnavailable)
	}
	cp := &CompiledProfile{Name: p.Name}

	for _, sp := range p.SpeechPatterns {
		re, err := compilePattern(sp.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: speech pattern %q: %w", ErrProfileUnavailable, sp.Name, err)
		}
		if sp.Weight < 0 || sp.Weight > 1 {
			return nil, fmt.Errorf("%w: speech pattern %q: weight %v out of [0,1]", ErrProfileUnavailable, sp.Name, sp.Weight)
		}
		cp.speech = append(cp.speech, compiledSpeech{name: sp.Name, re: re, weight: sp.Weight})
	}

	for name := range p.Tsundere {
		if !domain.TsundereCategory(name).Valid() {
			return nil, fmt.Errorf("%w: unknown tsundere category %q", ErrProfileUnavailable, name)
		}
	}
	for _, category := range domain.TsundereCategories {
		c, ok := p.Tsundere[string(category)]
		if !ok {
			continue
		}
		compiled, err := compileCategory(category, c)
		if err != nil {
			return nil, err
		}
		cp.categories = append(cp.categories, compiled)
	}

	for i, f := range p.Farewells {
		if f.Category != "" && !domain.TsundereCategory(f.Category).Valid() {
			return nil, fmt.Errorf("%w: farewell %d: unknown category %q", ErrProfileUnavailable, i, f.Category)
		}
		// The category wins over an explicit type so a tsundere farewell never ends the conversation.
		if domain.TsundereCategory(f.Category) == domain.CategoryTsundereFarewell {
			f.Type = domain.FarewellTsundere
		}
		if !f.Type.Valid() {
			return nil, fmt.Errorf("%w: farewell %d: invalid type %q", ErrProfileUnavailable, i, f.Type)
		}
		if !f.Culture.Valid() {
			return nil, fmt.Errorf("%w: farewell %d: invalid culture %q", ErrProfileUnavailable, i, f.Culture)
		}
		f.Phrase = lexicon.Normalize(f.Phrase)
		if f.Phrase == "" {
			return nil, fmt.Errorf("%w: farewell %d: empty phrase", ErrProfileUnavailable, i)
		}
		cp.farewells = append(cp.farewells, f)
	}

	for _, m := range p.HostileExitMarkers {
		if m = lexicon.Normalize(m); m != "" {
			cp.hostileExit = append(cp.hostileExit, m)
		}
	}
	return cp, nil
}

func compileCategory(category domain.TsundereCategory, c TsundereCategory) (compiledCategory, error) {
	if c.Weight < 0 || c.Weight > 1 {
		return compiledCategory{}, fmt.Errorf("%w: category %s: weight %v out of [0,1]", ErrProfileUnavailable, category, c.Weight)
	}
	if c.Sentiment < -1 || c.Sentiment > 1 {
		return compiledCategory{}, fmt.Errorf("%w: category %s: sentiment %v out of [-1,1]", ErrProfileUnavailable, category, c.Sentiment)
	}
	if c.Affection < -10 || c.Affection > 10 {
		return compiledCategory{}, fmt.Errorf("%w: category %s: affection %d out of [-10,10]", ErrProfileUnavailable, category, c.Affection)
	}
	if len(c.Patterns) == 0 {
		return compiledCategory{}, fmt.Errorf("%w: category %s: no patterns", ErrProfileUnavailable, category)
	}
	out := compiledCategory{
		category:       category,
		weight:         c.Weight,
		sentiment:      c.Sentiment,
		affection:      c.Affection,
		interpretation: c.Interpretation,
	}
	if out.interpretation == "" {
		out.interpretation = domain.InterpretationLiteral
	}
	for _, pattern := range c.Patterns {
		re, err := compilePattern(pattern)
		if err != nil {
			return compiledCategory{}, fmt.Errorf("%w: category %s: %w", ErrProfileUnavailable, category, err)
		}
		out.patterns = append(out.patterns, re)
	}
	return out, nil
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, errors.New("empty pattern")
	}
	return regexp.Compile("(?i)" + pattern)
}

// Categories lists the tsundere categories the profile defines, in evaluation order.
func (p *CompiledProfile) Categories() []domain.TsundereCategory {
	out := make([]domain.TsundereCategory, 0, len(p.categories))
	for _, c := range p.categories {
		out = append(out, c.category)
	}
	return out
}

// HasFarewell reports whether phrase is in the farewell catalogue.
func (p *CompiledProfile) HasFarewell(phrase string) bool {
	phrase = lexicon.Normalize(phrase)
	return slices.ContainsFunc(p.farewells, func(f Farewell) bool { return f.Phrase == phrase })
}

var defaultProfile = sync.OnceValue(func() *CompiledProfile {
	p, err := Parse(lexicon.DefaultCharacter)
	if err != nil {
		panic(err)
	}
	cp, err := Compile(p)
	if err != nil {
		panic(err)
	}
	return cp
})

// DefaultProfile returns the built-in tsundere profile.
func DefaultProfile() *CompiledProfile {
	return defaultProfile()
}
