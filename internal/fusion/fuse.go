package fusion

import (
	"math"

	"github.com/pscheid92/affinity/internal/domain"
)

// Options are the tunable constants of fusion.
type Options struct {
	DeltaScale        float64 // affection delta of a ±1 score at full intensity
	MaxDelta          int
	TsundereThreshold float64 // tsundere confidence above which the blend applies
	FarewellFloor     float64 // score range a tsundere farewell is clamped to
	FarewellCeiling   float64
	FarewellMaxDelta  int
	SarcasmThreshold  float64
	SarcasmPenalty    float64
	DegradedFactor    float64
	NoProfileCeiling  float64 // confidence cap when no character profile is available

	// Inappropriate content is turned negative, amplified by 1+RejectionAmplifier*severity,
	// and its delta is at most -RejectionPenalty*severity.
	RejectionAmplifier float64
	RejectionPenalty   int

	// Shifts larger than ShiftThreshold are blended toward the previous turn. The blend
	// reaches full strength after SmoothingHistory analysed turns.
	ShiftThreshold      float64
	SmoothingHistory    int
	NegativeSwingFactor float64
	MaxSmoothing        float64

	// Loop recovery under suppression floors the delta at SevereLoopFloor above
	// SevereLoopSeverity and at ModerateLoopFloor otherwise.
	SevereLoopSeverity float64
	SevereLoopFloor    int
	ModerateLoopFloor  int
}

// DefaultOptions returns the fusion defaults.
func DefaultOptions() Options {
	return Options{
		DeltaScale:        10,
		MaxDelta:          10,
		TsundereThreshold: 0.5,
		FarewellFloor:     0.1,
		FarewellCeiling:   0.3,
		FarewellMaxDelta:  2,
		SarcasmThreshold:  0.5,
		SarcasmPenalty:    0.2,
		DegradedFactor:    0.5,
		NoProfileCeiling:  0.5,

		RejectionAmplifier: 0.5,
		RejectionPenalty:   5,

		ShiftThreshold:      0.2,
		SmoothingHistory:    5,
		NegativeSwingFactor: 1.2,
		MaxSmoothing:        0.9,

		SevereLoopSeverity: 0.7,
		SevereLoopFloor:    -1,
		ModerateLoopFloor:  -2,
	}
}

// Input bundles everything fusion reads for one utterance.
type Input struct {
	Signal           domain.SentimentSignal
	Tsundere         domain.TsundereMatch
	Farewell         domain.FarewellMatch
	Loop             domain.LoopState
	ProfileAvailable bool

	// Stage is the relationship stage before this turn.
	Stage domain.Stage
	// Previous is the latest analysed turn, History the number of analysed turns in the window.
	Previous *domain.FusedResult
	History  int
}

// Fuse resolves in into a FusedResult. It never fails.
func Fuse(in Input, opts Options) domain.FusedResult {
	sig := in.Signal
	base := clampInt(int(math.Round(sig.Score*opts.DeltaScale*(0.5+0.5*sig.Intensity))), -opts.MaxDelta, opts.MaxDelta)

	result := domain.FusedResult{
		Score:          sig.Score,
		AffectionDelta: base,
		Signal:         sig,
		Tsundere:       in.Tsundere,
		Farewell:       in.Farewell,
		Interpretation: domain.InterpretationLiteral,
	}

	switch {
	case sig.Inappropriate:
		reject(&result, base, in.Stage, opts)

	case in.Farewell.IsFarewell && in.Farewell.Type == domain.FarewellTsundere && !in.Farewell.IsConversationEnd:
		score := sig.Score
		if score < 0 {
			score = opts.FarewellFloor
		}
		result.Score = clamp(score, opts.FarewellFloor, opts.FarewellCeiling)
		result.AffectionDelta = clampInt(base, 0, opts.FarewellMaxDelta)
		result.Interpretation = in.Farewell.Interpretation

	case in.Tsundere.IsTsundere && in.Tsundere.Confidence > opts.TsundereThreshold:
		c := in.Tsundere.Confidence
		result.Score = clamp(sig.Score*(1-c)+in.Tsundere.SuggestedSentiment*c, -1, 1)
		delta := int(math.Round(float64(base)*(1-c) + float64(in.Tsundere.AffectionAdjustment)*c))
		result.AffectionDelta = clampInt(delta, -opts.MaxDelta, opts.MaxDelta)
		result.Interpretation = in.Tsundere.Interpretation

	default:
		smooth(&result, in, opts)
		switch {
		case in.Farewell.IsFarewell:
			result.Interpretation = in.Farewell.Interpretation
		case sig.Ambivalence > 0:
			result.Interpretation = domain.InterpretationMixedEmotions
		}
	}

	result.Confidence = confidence(in, opts)

	if in.Loop.Detected {
		iv := in.Loop.Intervention
		lo := -opts.MaxDelta
		if iv.SuppressNegative && !result.ContentRejected {
			lo = opts.ModerateLoopFloor
			if in.Loop.Severity > opts.SevereLoopSeverity {
				lo = opts.SevereLoopFloor
			}
		}
		result.AffectionDelta = clampInt(result.AffectionDelta+iv.RecoveryDelta, lo, opts.MaxDelta)
		result.LoopOverride = true
	}

	result.Degradations = degradations(in)
	return result
}

// reject turns inappropriate content into a negative reading whose weight grows the
// more distant the relationship is. Close relationships are left at the literal reading.
func reject(r *domain.FusedResult, base int, stage domain.Stage, opts Options) {
	severity := rejectionSeverity(stage)
	r.ContentRejected = true
	r.RejectionSeverity = severity
	if severity == 0 {
		return
	}
	amp := 1 + opts.RejectionAmplifier*float64(severity)
	r.Score = clamp(-math.Abs(r.Score)*amp, -1, 1)
	delta := int(math.Round(-math.Abs(float64(base)) * amp))
	r.AffectionDelta = clampInt(min(delta, -opts.RejectionPenalty*severity), -opts.MaxDelta, opts.MaxDelta)
	r.Interpretation = domain.InterpretationContentRejected
}

func rejectionSeverity(stage domain.Stage) int {
	switch stage {
	case domain.StageClose:
		return 0
	case domain.StageWarm:
		return 1
	case domain.StageHostile, domain.StageDistant:
		return 3
	default:
		return 2
	}
}

// smooth blends a dramatic score shift toward the previous analysed turn.
func smooth(r *domain.FusedResult, in Input, opts Options) {
	prev := in.Previous
	if prev == nil {
		return
	}
	shift := math.Abs(r.Score - prev.Score)
	r.ShiftMagnitude = shift
	if shift <= opts.ShiftThreshold || opts.SmoothingHistory <= 0 {
		return
	}

	f := shiftFactor(shift) * math.Min(1, float64(in.History)/float64(opts.SmoothingHistory))
	if prev.Score > 0 && r.Score < 0 {
		f *= opts.NegativeSwingFactor
	}
	f = math.Min(f, opts.MaxSmoothing)
	if f <= 0 {
		return
	}
	r.Score = clamp(r.Score*(1-f)+prev.Score*f, -1, 1)
	delta := int(math.Round(float64(r.AffectionDelta)*(1-f) + float64(prev.AffectionDelta)*f))
	r.AffectionDelta = clampInt(delta, -opts.MaxDelta, opts.MaxDelta)
	r.Smoothed = true
}

// shiftFactor maps the size of a shift to its base blend weight.
func shiftFactor(shift float64) float64 {
	switch {
	case shift >= 0.6:
		return 0.8
	case shift >= 0.4:
		return 0.6
	case shift >= 0.3:
		return 0.4
	default:
		return 0.2
	}
}

// confidence is the best contributing confidence, lowered for sarcasm, degradation and a
// missing profile. It never rises because of sarcasm.
func confidence(in Input, opts Options) float64 {
	c := math.Max(in.Signal.Confidence, math.Max(in.Tsundere.Confidence, in.Farewell.Confidence))
	if in.Signal.Sarcasm > opts.SarcasmThreshold {
		c -= opts.SarcasmPenalty
	}
	if in.Signal.Degraded {
		c *= opts.DegradedFactor
	}
	if !in.ProfileAvailable {
		c = math.Min(c, opts.NoProfileCeiling)
	}
	return clamp(c, 0, 1)
}

func degradations(in Input) []string {
	var out []string
	if in.Signal.Empty {
		out = append(out, domain.DegradedEmptyInput)
	}
	if in.Signal.Degraded {
		out = append(out, domain.DegradedAnalysis)
	}
	if !in.ProfileAvailable {
		out = append(out, domain.DegradedProfileUnavailable)
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
