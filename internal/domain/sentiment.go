package domain

// SentimentSignal is the lexical reading of a single utterance.
type SentimentSignal struct {
	Score      float64  `json:"score"`
	Intensity  float64  `json:"intensity"`
	Sarcasm    float64  `json:"sarcasm_probability"`
	Confidence float64  `json:"confidence"`
	Triggers   []string `json:"triggers"`
	Empty      bool     `json:"empty,omitempty"`
	Degraded   bool     `json:"degraded,omitempty"`

	// Ambivalence is the balance of positive and negative mass in [0, 1]. It is
	// zero unless the utterance reads as mixed emotions.
	Ambivalence   float64 `json:"ambivalence,omitempty"`
	Inappropriate bool    `json:"inappropriate,omitempty"`
}

// TsundereCategory groups tsundere patterns in a character profile.
type TsundereCategory string

const (
	CategoryDismissiveAffection TsundereCategory = "dismissive-affection"
	CategoryHostileCare         TsundereCategory = "hostile-care"
	CategoryReluctantGratitude  TsundereCategory = "reluctant-gratitude"
	CategoryInsultAffection     TsundereCategory = "insult-affection"
	CategoryTsundereFarewell    TsundereCategory = "tsundere-farewell"
)

// TsundereCategories lists the categories in evaluation order.
var TsundereCategories = []TsundereCategory{
	CategoryDismissiveAffection,
	CategoryHostileCare,
	CategoryReluctantGratitude,
	CategoryInsultAffection,
	CategoryTsundereFarewell,
}

// Valid reports whether c is a known category.
func (c TsundereCategory) Valid() bool {
	for _, known := range TsundereCategories {
		if c == known {
			return true
		}
	}
	return false
}

// TsundereMatch is the tsundere reading of an utterance against a profile.
type TsundereMatch struct {
	IsTsundere          bool     `json:"is_tsundere"`
	Confidence          float64  `json:"confidence"`
	Patterns            []string `json:"patterns"`
	Consistency         float64  `json:"character_consistency"`
	SuggestedSentiment  float64  `json:"suggested_sentiment"`
	AffectionAdjustment int      `json:"affection_adjustment"`
	Interpretation      string   `json:"interpretation,omitempty"`
}

// FarewellType classifies a farewell phrase.
type FarewellType string

const (
	FarewellNone            FarewellType = ""
	FarewellCasual          FarewellType = "casual"
	FarewellFormal          FarewellType = "formal"
	FarewellTsundere        FarewellType = "tsundere"
	FarewellAction          FarewellType = "action"
	FarewellGenuineNegative FarewellType = "genuine-negative"
)

// Valid reports whether t is a known, non-empty farewell type.
func (t FarewellType) Valid() bool {
	switch t {
	case FarewellCasual, FarewellFormal, FarewellTsundere, FarewellAction, FarewellGenuineNegative:
		return true
	default:
		return false
	}
}

// Culture is the cultural context of a farewell phrase.
type Culture string

const (
	CultureNone     Culture = ""
	CultureJapanese Culture = "ja"
	CultureEnglish  Culture = "en"
)

// Valid reports whether c is a known, non-empty culture.
func (c Culture) Valid() bool {
	return c == CultureJapanese || c == CultureEnglish
}

// FarewellMatch is the farewell classification of an utterance.
type FarewellMatch struct {
	IsFarewell         bool         `json:"is_farewell"`
	Type               FarewellType `json:"type,omitempty"`
	Culture            Culture      `json:"cultural_context,omitempty"`
	IsConversationEnd  bool         `json:"is_conversation_ending"`
	Confidence         float64      `json:"confidence"`
	Phrase             string       `json:"phrase,omitempty"`
	Interpretation     string       `json:"interpretation,omitempty"`
	HostileExitPresent bool         `json:"hostile_exit,omitempty"`
}

// Suggested interpretations surfaced to downstream formatters.
const (
	InterpretationLiteral           = "literal"
	InterpretationTsundereFarewell  = "character-consistent, not hostile"
	InterpretationNormalFarewell    = "normal-farewell"
	InterpretationHostileExit       = "hostile-exit"
	InterpretationPositiveDespite   = "positive-despite-wording"
	InterpretationCaringDespite     = "caring-despite-hostility"
	InterpretationGratefulDespite   = "grateful-despite-reluctance"
	InterpretationAffectionDespite  = "affectionate-despite-insults"
	InterpretationCharacterFarewell = "casual-tsundere-farewell"
	InterpretationContentRejected   = "content-rejected"
	InterpretationMixedEmotions     = "mixed-emotions"
)

// Degradation tags recorded on a fused result.
const (
	DegradedEmptyInput         = "empty-input"
	DegradedAnalysis           = "analysis-degraded"
	DegradedProfileUnavailable = "profile-unavailable"
)

// FusedResult is the single value returned per analysed utterance and
// persisted into the conversation window.
type FusedResult struct {
	Score          float64         `json:"score"`
	AffectionDelta int             `json:"affection_delta"`
	Confidence     float64         `json:"confidence"`
	Signal         SentimentSignal `json:"signal"`
	Tsundere       TsundereMatch   `json:"tsundere"`
	Farewell       FarewellMatch   `json:"farewell"`
	Interpretation string          `json:"suggested_interpretation"`
	LoopOverride   bool            `json:"loop_override,omitempty"`
	Degradations   []string        `json:"degradations,omitempty"`

	// RejectionSeverity is 0..3, scaled by how distant the relationship is when
	// inappropriate content is rejected.
	ContentRejected   bool `json:"content_rejected,omitempty"`
	RejectionSeverity int  `json:"rejection_severity,omitempty"`

	// ShiftMagnitude is the score distance to the previous analysed turn. Smoothed
	// reports whether the shift was blended toward that turn.
	ShiftMagnitude float64 `json:"shift_magnitude,omitempty"`
	Smoothed       bool    `json:"smoothed,omitempty"`
}
