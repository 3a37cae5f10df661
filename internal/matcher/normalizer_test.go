package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStudentName(t *testing.T) {
	n := Normalize("Jane Doe")
	assert.Equal(t, "jane doe", n.Full)
	assert.Equal(t, []string{"jane", "doe"}, n.Tokens)
}

func TestNormalizeLastFirstOrdering(t *testing.T) {
	// "Last, First" must compare equal to "First Last"
	assert.Equal(t, Normalize("Jane Doe").Full, Normalize("Doe, Jane").Full)
}

func TestNormalizeFilename(t *testing.T) {
	n := Normalize("Jane_Doe_Essay.pdf")
	assert.Equal(t, "jane doe essay", n.Full)
}

func TestNormalizeStripsPlatformNoise(t *testing.T) {
	// Canvas-style suffix: numeric submission IDs and LATE marker
	n := Normalize("janedoe_LATE_12345_678910_Essay.docx")
	assert.Equal(t, []string{"janedoe", "essay"}, n.Tokens)
}

func TestNormalizeDropsShortTokens(t *testing.T) {
	n := Normalize("J Doe.pdf")
	assert.Equal(t, []string{"doe"}, n.Tokens)

	// ...unless nothing else survives
	n = Normalize("J")
	assert.Equal(t, []string{"j"}, n.Tokens)
}

func TestNormalizeUnknownExtensionKept(t *testing.T) {
	// Dotted name parts are not extensions
	n := Normalize("anna.st.clair.pdf")
	assert.Equal(t, "anna st clair", n.Full)
}

func TestNormalizeDegenerate(t *testing.T) {
	assert.Empty(t, Normalize("").Tokens)
	assert.Empty(t, Normalize("   ").Tokens)
	assert.Equal(t, "", Normalize("12345.pdf").Full)
}

func TestNormalizeDeterministic(t *testing.T) {
	a := Normalize("Doe, Jane - final.docx")
	b := Normalize("Doe, Jane - final.docx")
	assert.Equal(t, a, b)
}
