// Package character loads character profiles and classifies utterances against them.
//
// A Profile is the YAML form of a character's speech habits, tsundere pattern catalogue and
// farewell catalogue. Compile validates it once into a read-only CompiledProfile that is shared
// by every session. Match classifies one utterance into a tsundere match and a farewell match.
package character
