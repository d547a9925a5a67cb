// Package affection implements the bounded affection accumulator and relationship stages.
package affection
