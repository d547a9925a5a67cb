package engine

import "github.com/pscheid92/affinity/internal/domain"

// PromptFacts is the structured context handed to a prompt builder. It carries
// classifications only; wording is the consumer's job.
type PromptFacts struct {
	Affection      int          `json:"affection"`
	Stage          domain.Stage `json:"stage"`
	StageChanged   bool         `json:"stage_changed"`
	PreviousStage  domain.Stage `json:"previous_stage,omitempty"`
	Interpretation string       `json:"suggested_interpretation"`
	Confidence     float64      `json:"confidence"`

	Tsundere            bool     `json:"tsundere"`
	TsundereConfidence  float64  `json:"tsundere_confidence,omitempty"`
	CharacterConsistent float64  `json:"character_consistency,omitempty"`
	TsunderePatterns    []string `json:"tsundere_patterns,omitempty"`

	Farewell         bool                `json:"farewell"`
	FarewellType     domain.FarewellType `json:"farewell_type,omitempty"`
	FarewellCulture  domain.Culture      `json:"farewell_culture,omitempty"`
	ConversationEnds bool                `json:"conversation_ending"`

	Loop         bool            `json:"loop"`
	LoopKind     domain.LoopKind `json:"loop_kind,omitempty"`
	LoopSeverity float64         `json:"loop_severity,omitempty"`
	Guidance     string          `json:"guidance,omitempty"`

	Sarcastic    bool     `json:"sarcastic"`
	Degradations []string `json:"degradations,omitempty"`

	ContentRejected   bool    `json:"content_rejected,omitempty"`
	RejectionSeverity int     `json:"rejection_severity,omitempty"`
	Ambivalence       float64 `json:"ambivalence,omitempty"`
	Smoothed          bool    `json:"smoothed,omitempty"`
}

// sarcasmFactThreshold is the sarcasm probability above which the turn is reported as sarcastic.
const sarcasmFactThreshold = 0.5

// Facts extracts the prompt facts from a processed turn.
func Facts(out Output) PromptFacts {
	r := out.Result
	f := PromptFacts{
		Affection:      out.Affection.Value,
		Stage:          out.Affection.Stage,
		StageChanged:   out.Transition.Changed,
		Interpretation: r.Interpretation,
		Confidence:     r.Confidence,

		Tsundere:            r.Tsundere.IsTsundere,
		TsundereConfidence:  r.Tsundere.Confidence,
		CharacterConsistent: r.Tsundere.Consistency,
		TsunderePatterns:    r.Tsundere.Patterns,

		Farewell:         r.Farewell.IsFarewell,
		FarewellType:     r.Farewell.Type,
		FarewellCulture:  r.Farewell.Culture,
		ConversationEnds: r.Farewell.IsConversationEnd,

		Loop:         out.Loop.Detected,
		LoopKind:     out.Loop.Kind,
		LoopSeverity: out.Loop.Severity,
		Guidance:     out.Loop.Intervention.Guidance,

		Sarcastic:    r.Signal.Sarcasm > sarcasmFactThreshold,
		Degradations: r.Degradations,

		ContentRejected:   r.ContentRejected,
		RejectionSeverity: r.RejectionSeverity,
		Ambivalence:       r.Signal.Ambivalence,
		Smoothed:          r.Smoothed,
	}
	if out.Transition.Changed {
		f.PreviousStage = out.Transition.From
	}
	return f
}
