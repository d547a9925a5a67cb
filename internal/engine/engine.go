package engine

import (
	"log/slog"

	"github.com/pscheid92/affinity/internal/affection"
	"github.com/pscheid92/affinity/internal/character"
	"github.com/pscheid92/affinity/internal/domain"
	"github.com/pscheid92/affinity/internal/fusion"
	"github.com/pscheid92/affinity/internal/loop"
	"github.com/pscheid92/affinity/internal/sentiment"
)

// Options groups the tunable constants of every stage.
type Options struct {
	Sentiment sentiment.Options
	Fusion    fusion.Options
	Loop      loop.Config
}

func DefaultOptions() Options {
	return Options{
		Sentiment: sentiment.DefaultOptions(),
		Fusion:    fusion.DefaultOptions(),
		Loop:      loop.DefaultConfig(),
	}
}

// Observer receives every processed turn. Implementations must be safe for concurrent use.
type Observer interface {
	ObserveTurn(out Output)
}

// Input is one turn to process.
type Input struct {
	Text      string
	Window    domain.Window
	Affection domain.AffectionState
}

// Output is the full result of one turn.
type Output struct {
	Result     domain.FusedResult     `json:"result"`
	Loop       domain.LoopState       `json:"loop"`
	Affection  domain.AffectionState  `json:"affection"`
	Transition domain.StageTransition `json:"transition"`
}

// Engine is safe for concurrent use across sessions. Calls for the same session must be
// serialized by the caller.
type Engine struct {
	analyzer *sentiment.Analyzer
	detector *loop.Detector
	profile  *character.CompiledProfile
	fusion   fusion.Options
	observer Observer
}

// New creates an engine. profile may be nil, in which case tsundere and farewell detection
// are disabled and confidence is capped.
func New(profile *character.CompiledProfile, opts Options, observer Observer) *Engine {
	return &Engine{
		analyzer: sentiment.NewAnalyzer(opts.Sentiment),
		detector: loop.NewDetector(opts.Loop),
		profile:  profile,
		fusion:   opts.Fusion,
		observer: observer,
	}
}

// Profile returns the character profile in use, or nil.
func (e *Engine) Profile() *character.CompiledProfile {
	return e.profile
}

// Process analyses in.Text and returns the fused result with the updated affection state.
// It never fails; degraded paths are reported in Result.Degradations.
func (e *Engine) Process(in Input) Output {
	signal := e.analyzer.Analyze(in.Text, in.Window)
	tsundere, farewell := character.Match(in.Text, e.profile)
	loopState := e.detector.Detect(in.Window)

	analysed := in.Window.Analysed()
	var previous *domain.FusedResult
	if len(analysed) > 0 {
		previous = analysed[len(analysed)-1].Result
	}

	result := fusion.Fuse(fusion.Input{
		Signal:           signal,
		Tsundere:         tsundere,
		Farewell:         farewell,
		Loop:             loopState,
		ProfileAvailable: e.profile != nil,
		Stage:            affection.StageFor(in.Affection.Value),
		Previous:         previous,
		History:          len(analysed),
	}, e.fusion)

	next, transition := affection.Update(in.Affection, result.AffectionDelta)
	out := Output{
		Result:     result,
		Loop:       loopState,
		Affection:  next,
		Transition: transition,
	}

	if signal.Degraded {
		slog.Warn("Sentiment analysis degraded", "triggers", signal.Triggers)
	}
	if result.ContentRejected {
		slog.Debug("Inappropriate content rejected", "severity", result.RejectionSeverity)
	}
	if loopState.Detected {
		slog.Debug("Sentiment loop detected",
			"kind", loopState.Kind,
			"severity", loopState.Severity,
			"recovery", loopState.Intervention.RecoveryDelta)
	}
	if transition.Changed {
		slog.Debug("Affection stage changed", "from", transition.From, "to", transition.To)
	}
	if e.observer != nil {
		e.observer.ObserveTurn(out)
	}
	return out
}
