// Package domain defines the core domain types and interfaces.
//
// This package contains concept-oriented files (utterance.go, sentiment.go, loop.go, affection.go, session.go)
// with shared value types and cross-cutting interfaces. No implementation code - just contracts.
// Every value here is plain data so a session can be serialized and handed back on the next turn.
package domain
