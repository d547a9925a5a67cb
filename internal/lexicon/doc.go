// Package lexicon holds the static keyword, modifier and pattern tables shared by
// the sentiment analyzer and the character matcher, plus text normalization.
//
// Tables are ordered slices so every scan is deterministic. Nothing here is mutated at runtime.
package lexicon
