package loop

import (
	"math"

	"github.com/pscheid92/affinity/internal/domain"
	"github.com/pscheid92/affinity/internal/lexicon"
)

// Config controls loop detection.
type Config struct {
	WindowSize          int     // trailing analysed turns inspected (K)
	FarewellFloor       int     // farewell turns needed for a repeated-farewell loop
	PhraseFloor         int     // near-identical turns needed for a repeated-phrase loop
	NegativeFloor       int     // consecutive negative turns needed for a negative-pattern loop
	NegativeThreshold   float64 // fused score below which a turn counts as negative
	SimilarityThreshold float64 // token Jaccard at which two turns are near-identical
	MaxRecovery         int     // recovery delta at severity 1
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		WindowSize:          5,
		FarewellFloor:       2,
		PhraseFloor:         3,
		NegativeFloor:       3,
		NegativeThreshold:   -0.3,
		SimilarityThreshold: 0.8,
		MaxRecovery:         8,
	}
}

// Detector runs the three loop detectors over a window.
type Detector struct {
	config Config
}

// NewDetector creates a detector with the given config, or the defaults.
func NewDetector(config ...Config) *Detector {
	cfg := DefaultConfig()
	if len(config) > 0 {
		cfg = config[0]
	}
	return &Detector{config: cfg}
}

type finding struct {
	kind     domain.LoopKind
	severity float64
	turns    int
	guidance string
}

// Detect inspects the trailing analysed turns of window. The window is not modified.
func (d *Detector) Detect(window domain.Window) domain.LoopState {
	turns := window.Trailing(d.config.WindowSize)
	if len(turns) == 0 {
		return domain.LoopState{}
	}

	// Priority order: the first finding names the loop kind.
	findings := []finding{
		d.repeatedFarewell(turns),
		d.repeatedPhrase(turns),
		d.negativePattern(turns),
	}

	var state domain.LoopState
	for _, f := range findings {
		if f.severity <= 0 {
			continue
		}
		if state.Severities == nil {
			state.Severities = make(map[domain.LoopKind]float64, len(findings))
		}
		state.Severities[f.kind] = f.severity
		if !state.Detected {
			state.Detected = true
			state.Kind = f.kind
			state.Duration = f.turns
			state.Intervention.Guidance = f.guidance
		}
		state.Severity = math.Max(state.Severity, f.severity)
	}
	if !state.Detected {
		return state
	}

	recovery := int(math.Round(state.Severity * float64(d.config.MaxRecovery)))
	state.Intervention.RecoveryDelta = min(max(recovery, 1), d.config.MaxRecovery)
	state.Intervention.SuppressNegative = true
	return state
}

func (d *Detector) repeatedFarewell(turns []domain.Turn) finding {
	count := 0
	for _, t := range turns {
		if t.Result.Farewell.IsFarewell {
			count++
		}
	}
	f := finding{kind: domain.LoopRepeatedFarewell, turns: count, guidance: domain.GuidanceResetFarewellContext}
	if count >= d.config.FarewellFloor {
		f.severity = math.Min(1, 0.4+0.15*float64(count-d.config.FarewellFloor))
	}
	return f
}

func (d *Detector) repeatedPhrase(turns []domain.Turn) finding {
	texts := make([]string, len(turns))
	tokens := make([][]string, len(turns))
	for i, t := range turns {
		texts[i] = lexicon.Normalize(t.Utterance.Text)
		tokens[i] = lexicon.Tokens(texts[i])
	}

	largest := 0
	for i := range turns {
		if texts[i] == "" {
			continue
		}
		group := 0
		for j := range turns {
			if texts[j] == texts[i] || (len(tokens[i]) > 0 && lexicon.Jaccard(tokens[i], tokens[j]) >= d.config.SimilarityThreshold) {
				group++
			}
		}
		largest = max(largest, group)
	}

	f := finding{kind: domain.LoopRepeatedPhrase, turns: largest, guidance: domain.GuidanceTopicChange}
	if largest >= d.config.PhraseFloor {
		f.severity = math.Min(1, 0.5+0.2*float64(largest-d.config.PhraseFloor))
	}
	return f
}

func (d *Detector) negativePattern(turns []domain.Turn) finding {
	run := 0
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Result.Score >= d.config.NegativeThreshold {
			break
		}
		run++
	}
	f := finding{kind: domain.LoopNegativePattern, turns: run, guidance: domain.GuidanceSentimentSmoothing}
	if run >= d.config.NegativeFloor {
		f.severity = math.Min(1, 0.2*float64(run))
	}
	return f
}
