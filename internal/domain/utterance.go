package domain

import "time"

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleCharacter Role = "character"
)

// Utterance is one immutable turn of raw text.
type Utterance struct {
	Text  string `json:"text"`
	Role  Role   `json:"role"`
	Index int    `json:"index"`
}

// Turn is a window entry: the utterance plus its fused analysis.
// Result is nil for character turns, which are never analysed.
type Turn struct {
	Utterance Utterance    `json:"utterance"`
	Result    *FusedResult `json:"result,omitempty"`
	At        time.Time    `json:"at"`
}

// Window is the caller-supplied bounded history, oldest first.
type Window []Turn

// Analysed returns the turns that carry a fused result, oldest first.
func (w Window) Analysed() []Turn {
	out := make([]Turn, 0, len(w))
	for _, t := range w {
		if t.Result != nil {
			out = append(out, t)
		}
	}
	return out
}

// Trailing returns at most the last n analysed turns, oldest first.
func (w Window) Trailing(n int) []Turn {
	analysed := w.Analysed()
	if n <= 0 || len(analysed) <= n {
		return analysed
	}
	return analysed[len(analysed)-n:]
}

// Truncate keeps the most recent n turns.
func (w Window) Truncate(n int) Window {
	if n <= 0 || len(w) <= n {
		return w
	}
	out := make(Window, n)
	copy(out, w[len(w)-n:])
	return out
}

// NextIndex returns the turn index for the next utterance.
func (w Window) NextIndex() int {
	if len(w) == 0 {
		return 0
	}
	return w[len(w)-1].Utterance.Index + 1
}
