package op

import "golang.org/x/text/cases"

// Fold returns the case-folded form of s used for name comparison.
func Fold(s string) string {
	// Casers carry state; a fresh one per call keeps Fold goroutine-safe.
	return cases.Fold().String(s)
}
