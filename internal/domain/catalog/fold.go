package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Fold normalizes a string for case-insensitive comparison: Turkish-aware
// lowercasing plus whitespace trimming. Turkish lowercasing maps İ->i and
// I->ı, which strings.ToLower gets wrong, and name-mode matching depends on it.
// A fresh Caser per call: Caser instances are stateful and not goroutine-safe.
func Fold(s string) string {
	return cases.Lower(language.Turkish).String(strings.TrimSpace(s))
}

// FoldTokens folds and splits a string into whitespace-separated tokens.
func FoldTokens(s string) []string {
	return strings.Fields(Fold(s))
}
