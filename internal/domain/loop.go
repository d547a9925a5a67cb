package domain

// LoopKind tags the detector that fired first in priority order.
type LoopKind string

const (
	LoopNone             LoopKind = ""
	LoopRepeatedFarewell LoopKind = "repeated-farewell"
	LoopRepeatedPhrase   LoopKind = "repeated-phrase"
	LoopNegativePattern  LoopKind = "negative-pattern"
)

// Guidance tags attached to an intervention for the prompt builder.
const (
	GuidanceResetFarewellContext = "reset-farewell-context"
	GuidanceTopicChange          = "introduce-topic-change"
	GuidanceSentimentSmoothing   = "apply-sentiment-smoothing"
)

// Intervention is a recommendation consumed by fusion, never applied to stored state directly.
type Intervention struct {
	RecoveryDelta    int    `json:"recovery_delta"`
	SuppressNegative bool   `json:"suppress_negative"`
	Guidance         string `json:"guidance,omitempty"`
}

// LoopState is recomputed from the window on every call.
type LoopState struct {
	Detected     bool                 `json:"loop_detected"`
	Kind         LoopKind             `json:"loop_kind,omitempty"`
	Severity     float64              `json:"severity"`
	Severities   map[LoopKind]float64 `json:"severities,omitempty"`
	Duration     int                  `json:"duration"`
	Intervention Intervention         `json:"intervention"`
}
