// Package loop detects sentiment loops in the trailing conversation window and recommends an
// intervention. Detection is recomputed from the window on every call; nothing is remembered.
package loop
