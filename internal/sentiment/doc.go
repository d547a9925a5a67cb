// Package sentiment implements the context sentiment analyzer.
//
// Analyzer turns a single utterance into a domain.SentimentSignal: lexicon hits with negation
// and intensity modifiers, an emphasis-based intensity, and a heuristic sarcasm probability.
// The only read of the conversation window is a topic-continuity check. No mutable state.
package sentiment
