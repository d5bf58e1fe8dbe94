package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGermanEmailPart(t *testing.T) {
	assert.Equal(t, "juergen", GermanEmailPart("Jürgen"))
	assert.Equal(t, "strasse", GermanEmailPart("Straße"))
	assert.Equal(t, "hansoetzel", GermanEmailPart("Hans-Ötzel"))
	assert.Equal(t, "", GermanEmailPart("  "))
}

func TestStripDiacritics(t *testing.T) {
	assert.Equal(t, "Francois Lefevre", StripDiacritics("François Lefèvre"))
	assert.Equal(t, "Zeljana", StripDiacritics("Željana"))
}

func TestKeepLetters(t *testing.T) {
	assert.Equal(t, "jean-marie", KeepLetters("Jean--Marie", true))
	assert.Equal(t, "jeanmarie", KeepLetters("Jean-Marie", false))
	assert.Equal(t, "obrien", KeepLetters("O'Brien", false))
	assert.Equal(t, "ann", KeepLetters("-Ann-", true))
}

func TestDottedEmail(t *testing.T) {
	assert.Equal(t, "a.b@x.org", DottedEmail("a", "b", "x.org"))
	assert.Equal(t, "", DottedEmail("", "b", "x.org"))
}

func TestCompactAndStripSpaces(t *testing.T) {
	assert.Equal(t, "1 Main St Springfield", CompactSpaces("  1  Main St\tSpringfield "))
	assert.Equal(t, "SW1A1AA", StripSpaces(" SW1A 1AA "))
}
