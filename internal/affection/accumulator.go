package affection

import (
	"math"

	"github.com/pscheid92/affinity/internal/domain"
)

const (
	Min = 0
	Max = 100

	// JumpThreshold is the largest delta applied undamped in a single turn.
	JumpThreshold = 6
	// DampingFactor scales the part of a delta beyond JumpThreshold.
	DampingFactor = 0.5
	// MinAllowance is the smallest undamped step, however far the previous turn moved.
	MinAllowance = 3
)

// Upper bounds of each stage, inclusive. Values above the last bound are StageClose.
var stageBounds = []struct {
	upper int
	stage domain.Stage
}{
	{10, domain.StageHostile},
	{25, domain.StageDistant},
	{45, domain.StageCautious},
	{65, domain.StageFriendly},
	{85, domain.StageWarm},
}

// StageFor maps a value to its relationship stage. Out-of-range values are clamped first.
func StageFor(value int) domain.Stage {
	value = Clamp(value)
	for _, b := range stageBounds {
		if value <= b.upper {
			return b.stage
		}
	}
	return domain.StageClose
}

// Clamp bounds value to [Min, Max].
func Clamp(value int) int {
	return max(Min, min(Max, value))
}

// New builds an initial state for value, clamped.
func New(value int) domain.AffectionState {
	value = Clamp(value)
	return domain.AffectionState{Value: value, PreviousValue: value, Stage: StageFor(value)}
}

// Damp softens deltas whose magnitude exceeds JumpThreshold.
func Damp(delta int) int {
	return damp(delta, JumpThreshold)
}

func damp(delta, threshold int) int {
	magnitude := delta
	sign := 1
	if delta < 0 {
		magnitude, sign = -delta, -1
	}
	if magnitude <= threshold {
		return delta
	}
	return sign * (threshold + int(math.Round(float64(magnitude-threshold)*DampingFactor)))
}

// allowance is the undamped budget for delta. A delta that continues the movement from
// the previous value only gets what is left of JumpThreshold, but never less than
// MinAllowance.
func allowance(momentum, delta int) int {
	if momentum == 0 || delta == 0 || (momentum > 0) != (delta > 0) {
		return JumpThreshold
	}
	if momentum < 0 {
		momentum = -momentum
	}
	return max(MinAllowance, JumpThreshold-momentum)
}

// Restore rebuilds a caller-supplied state: both values are clamped and the stage is derived.
func Restore(value, previous int) domain.AffectionState {
	value = Clamp(value)
	return domain.AffectionState{Value: value, PreviousValue: Clamp(previous), Stage: StageFor(value)}
}

// Update applies delta to state and reports the stage transition. The incoming value is
// clamped rather than rejected, so a corrupt stored value heals on the next turn. The jump
// threshold is measured against PreviousValue, so two large steps in the same direction
// are damped like one.
func Update(state domain.AffectionState, delta int) (domain.AffectionState, domain.StageTransition) {
	previous := Clamp(state.Value)
	momentum := previous - Clamp(state.PreviousValue)
	value := Clamp(previous + damp(delta, allowance(momentum, delta)))

	next := domain.AffectionState{
		Value:         value,
		PreviousValue: previous,
		Stage:         StageFor(value),
	}
	return next, Transition(previous, value)
}

// Transition compares the stages of two values.
func Transition(from, to int) domain.StageTransition {
	fromStage, toStage := StageFor(from), StageFor(to)
	t := domain.StageTransition{From: fromStage, To: toStage, Direction: domain.TransitionNone}
	if fromStage == toStage {
		return t
	}
	t.Changed = true
	t.Direction = domain.TransitionUp
	if toStage.Rank() < fromStage.Rank() {
		t.Direction = domain.TransitionDown
	}
	return t
}
