package sentiment

// Options are the tunable constants of the analyzer.
type Options struct {
	ScoreScale         float64 // raw weight sum that maps to a score of ±1
	NegationFactor     float64 // multiplier applied to a negated hit
	MaxModifier        float64 // cap on the product of intensifiers
	MinModifier        float64 // floor on the product of qualifiers
	UnmatchedIntensity float64 // intensity ceiling when nothing in the lexicon matched
	SarcasmPerPattern  float64
	SarcasmEmphasis    float64
	SarcasmToneMarker  float64

	MixedSideThreshold      float64 // normalized mass each polarity needs for a mixed reading
	MixedPatternAmbivalence float64 // ambivalence floor when an explicit mixed-emotion pattern matches
	AmbivalenceThreshold    float64 // ambivalence above which the score is damped
	AmbivalenceDamping      float64
}

// DefaultOptions returns the analyzer defaults.
func DefaultOptions() Options {
	return Options{
		ScoreScale:         10,
		NegationFactor:     -0.7,
		MaxModifier:        2.5,
		MinModifier:        0.3,
		UnmatchedIntensity: 0.2,
		SarcasmPerPattern:  0.25,
		SarcasmEmphasis:    0.2,
		SarcasmToneMarker:  0.6,

		MixedSideThreshold:      0.3,
		MixedPatternAmbivalence: 0.6,
		AmbivalenceThreshold:    0.5,
		AmbivalenceDamping:      0.4,
	}
}
