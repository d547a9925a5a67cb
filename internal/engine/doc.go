// Package engine runs one conversational turn end to end.
//
// Process analyses the utterance and matches it against the character profile, detects loops in
// the caller's window, fuses everything into a FusedResult and applies the affection delta. The
// engine is stateless: the window and affection state come in with every call and the updated
// state goes back out. Facts turns an Output into the structured facts a prompt builder consumes.
package engine
