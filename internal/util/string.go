package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var germanFolds = strings.NewReplacer("ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss")

// StripDiacritics decomposes s and drops combining marks ("é" -> "e").
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// KeepLetters lowercases s and keeps only ASCII letters. Hyphens survive when
// keepHyphen is set, with runs collapsed and trimmed from both ends.
func KeepLetters(s string, keepHyphen bool) string {
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
			lastHyphen = false
		case keepHyphen && r == '-' && !lastHyphen:
			b.WriteRune(r)
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// GermanEmailPart folds umlauts and eszett before reducing to ASCII letters.
func GermanEmailPart(s string) string {
	return KeepLetters(germanFolds.Replace(strings.ToLower(s)), false)
}

// DottedEmail joins first.last@domain, or returns "" when either part is empty.
func DottedEmail(first, last, domain string) string {
	if first == "" || last == "" {
		return ""
	}
	return first + "." + last + "@" + domain
}

// CompactSpaces trims s and collapses internal whitespace runs to one space.
func CompactSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StripSpaces removes every whitespace rune.
func StripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// FirstNonEmpty returns the first non-blank value.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
