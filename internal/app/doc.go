// Package app provides the application service layer.
//
// Orchestrates use cases: session creation, turn processing, character replies, session reset and
// stateless analysis. Sits between HTTP handlers and the session store. Depends on domain
// interfaces, not concrete implementations. Serializes turns per session; different sessions run
// in parallel.
package app
