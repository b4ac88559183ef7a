package text

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalize returns s in Unicode normalization form C.
func Normalize(s string) string {
	return norm.NFC.String(s)
}

// SameText reports whether a and b are equal after NFC normalization, so that
// composed and decomposed spellings of the same text compare equal.
func SameText(a, b string) bool {
	if a == b {
		return true
	}
	return norm.NFC.String(a) == norm.NFC.String(b)
}

// Fold returns the case-folded, normalized form of s for case-insensitive
// label matching.
func Fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// FoldEqual reports whether a and b match ignoring case.
func FoldEqual(a, b string) bool {
	return Fold(a) == Fold(b)
}
