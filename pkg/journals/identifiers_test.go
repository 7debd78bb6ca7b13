package journals

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeISSN(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"canonical form unchanged", "0028-0836", "0028-0836"},
		{"hyphen inserted", "00280836", "0028-0836"},
		{"check character uppercased", "1050-124x", "1050-124X"},
		{"whitespace trimmed", " 1460-2172 ", "1460-2172"},
		{"empty", "", ""},
		{"not an issn", "invalid", ""},
		{"too many digits", "12345-678", ""},
		{"isbn shape rejected", "978-3-16-148410-0", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeISSN(tt.input))
		})
	}
}

func TestValidISSNChecksum(t *testing.T) {
	valid := []string{"0028-0836", "1476-4687", "1460-2172", "2049-3630", "1050-124X"}
	for _, issn := range valid {
		assert.True(t, ValidISSNChecksum(issn), issn)
	}

	invalid := []string{"1234-5678", "0028-0837", "0028-083", ""}
	for _, issn := range invalid {
		assert.False(t, ValidISSNChecksum(issn), issn)
	}
}

func TestClassifyIdentifier(t *testing.T) {
	tests := []struct {
		input string
		want  IdentifierCategory
	}{
		{"0028-0836", CategoryISSN},
		{"1050-124X", CategoryISSN},
		{"978-3-16-148410-0", CategoryISBN},
		{"10.1371/journal.pone.0000000", CategoryDOI},
		{"8302415", CategoryNLMNumeric},
		{"9918250899906676R", CategoryNLMVersioned},
		{"", CategoryUnknown},
		{"https://openalex.org/S137773608", CategoryUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyIdentifier(tt.input), tt.input)
	}
}

func TestSyntheticIdentifiers(t *testing.T) {
	assert.Equal(t, "NLM-8302415", MakeNLMIdentifier("8302415"))
	assert.Equal(t, "ISBN-978-3-16-148410-0", MakeISBNIdentifier("978-3-16-148410-0"))
	assert.Equal(t, "OPENALEX-S137773608", MakeOpenAlexIdentifier("S137773608"))
	assert.Equal(t, "OPENALEX-S137773608", MakeOpenAlexIdentifier("https://openalex.org/S137773608"))
	assert.Equal(t, "TITLE-405aaff6", MakeTitleIdentifier("nature"))

	// Stable across calls, distinct across titles.
	assert.Equal(t, MakeTitleIdentifier("the lancet"), MakeTitleIdentifier("the lancet"))
	assert.NotEqual(t, MakeTitleIdentifier("the lancet"), MakeTitleIdentifier("nature"))
}

func TestNormalizeNLMID(t *testing.T) {
	assert.Equal(t, "45622", NormalizeNLMID("0045622"))
	assert.Equal(t, "8302415", NormalizeNLMID("8302415"))
	assert.Equal(t, "0", NormalizeNLMID("000"))
	assert.Equal(t, "", NormalizeNLMID(""))
	assert.Equal(t, "45622", NormalizeNLMID(" 0045622 "))
}

func TestIsValidUnifiedID(t *testing.T) {
	valid := []string{"0028-0836", "NLM-8302415", "NLM-9918250899906676R",
		"ISBN-978-3-16-148410-0", "OPENALEX-S137773608", "TITLE-405aaff6"}
	for _, id := range valid {
		assert.True(t, IsValidUnifiedID(id), id)
	}

	invalid := []string{"", "nature", "TITLE-xyz", "OPENALEX-137773608", "NLM-"}
	for _, id := range invalid {
		assert.False(t, IsValidUnifiedID(id), id)
	}
}

func TestIsISBN(t *testing.T) {
	assert.True(t, IsISBN("978-3-16-148410-0"))
	assert.True(t, IsISBN("979-10-90636-0"))
	assert.False(t, IsISBN("Lancet"))
	assert.False(t, IsISBN(""))
}
