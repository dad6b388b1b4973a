// Package utils contains small helpers that don't belong to a specific domain.
package utils

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength caps the title part of a generated slug.
const MaxSlugLength = 80

// Slugify folds s to ASCII and joins its alphanumeric runs with dashes:
// "Crème Brûlée 101!" becomes "creme-brulee-101".
func Slugify(s string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
		if b.Len() >= MaxSlugLength {
			break
		}
	}

	return strings.Trim(b.String(), "-")
}

// UniqueSlug appends a short random suffix to the slug of title. Titles with
// no usable characters fall back to fallback.
func UniqueSlug(title, fallback string) string {
	base := Slugify(title)
	if base == "" {
		base = fallback
	}
	return base + "-" + ShortID()
}

// ShortID returns the first 8 hex characters of a random UUID.
func ShortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
