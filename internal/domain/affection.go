package domain

// Stage is the relationship band derived from an affection value.
type Stage string

const (
	StageHostile  Stage = "hostile"
	StageDistant  Stage = "distant"
	StageCautious Stage = "cautious"
	StageFriendly Stage = "friendly"
	StageWarm     Stage = "warm"
	StageClose    Stage = "close"
)

// Stages lists the bands from most hostile to closest.
var Stages = []Stage{StageHostile, StageDistant, StageCautious, StageFriendly, StageWarm, StageClose}

// Rank returns the position of s in Stages, or -1 for an unknown stage.
func (s Stage) Rank() int {
	for i, known := range Stages {
		if s == known {
			return i
		}
	}
	return -1
}

// AffectionState is the only durable state the engine mutates. Sessions own it;
// the engine receives it by value and returns the updated copy.
type AffectionState struct {
	Value         int   `json:"value"`
	PreviousValue int   `json:"previous_value"`
	Stage         Stage `json:"stage"`
}

// TransitionDirection tells which way a stage changed.
type TransitionDirection string

const (
	TransitionNone TransitionDirection = "none"
	TransitionUp   TransitionDirection = "up"
	TransitionDown TransitionDirection = "down"
)

// StageTransition compares the stage before and after an update.
type StageTransition struct {
	Changed   bool                `json:"changed"`
	From      Stage               `json:"from"`
	To        Stage               `json:"to"`
	Direction TransitionDirection `json:"direction"`
}
