package usecase

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD, drops combining marks, and recomposes,
// so "mcdónalds" and "mcdonalds" normalize to the same string.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeText canonicalizes free text for comparison: strips diacritics,
// folds case, and trims surrounding whitespace. Pure and total — any input,
// including the empty string, yields a valid (possibly empty) result.
func NormalizeText(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		// Transform only fails on malformed UTF-8; fall back to the raw bytes.
		folded = s
	}
	return strings.TrimSpace(strings.ToLower(folded))
}

// Fingerprint derives a stable cache key from a normalized query, so queries
// that differ only in case or diacritics share one cache entry.
func Fingerprint(normalizedQuery string) string {
	sum := md5.Sum([]byte(normalizedQuery))
	return hex.EncodeToString(sum[:])
}
