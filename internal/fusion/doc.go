// Package fusion merges the analyzer and matcher outputs with the loop state into a single
// FusedResult: final score, affection delta, confidence and a suggested interpretation.
//
// Precedence is fixed. A non-hostile tsundere farewell wins over a confident tsundere match, which
// wins over the plain lexical signal. The loop intervention is applied last and only touches the
// delta.
package fusion
