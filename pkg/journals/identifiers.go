package journals

import (
	"crypto/md5" //nolint:gosec // non-cryptographic: stable 8-hex title keys
	"encoding/hex"
	"regexp"
	"strings"
)

// Identifier shape patterns.
var (
	// issnPattern matches NNNN-NNNX where X is a digit or the check
	// character 'X'.
	issnPattern = regexp.MustCompile(`^\d{4}-\d{3}[\dXx]$`)

	// isbnPattern matches ISBN-13 values (978- or 979- prefix).
	isbnPattern = regexp.MustCompile(`^97[89]-[\d-]+$`)

	// doiPattern matches DOI values (10.xxxx/suffix).
	doiPattern = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)

	// nlmVersionedPattern matches NLM record IDs with an R suffix.
	nlmVersionedPattern = regexp.MustCompile(`^\d+R$`)

	// nlmNumericPattern matches plain numeric NLM IDs.
	nlmNumericPattern = regexp.MustCompile(`^\d+$`)

	// Synthetic unified-ID shapes.
	nlmIDPattern      = regexp.MustCompile(`^NLM-\d+R?$`)
	openAlexIDPattern = regexp.MustCompile(`^OPENALEX-S\d+$`)
	isbnIDPattern     = regexp.MustCompile(`^ISBN-97[89][\d-]+$`)
	titleIDPattern    = regexp.MustCompile(`^TITLE-[0-9a-f]{8}$`)
)

// IdentifierCategory is the shape class of a raw identifier string.
type IdentifierCategory int

// Identifier categories.
const (
	CategoryUnknown IdentifierCategory = iota
	CategoryISSN
	CategoryISBN
	CategoryDOI
	CategoryNLMNumeric
	CategoryNLMVersioned
)

// String returns the category name.
func (c IdentifierCategory) String() string {
	switch c {
	case CategoryISSN:
		return "issn"
	case CategoryISBN:
		return "isbn"
	case CategoryDOI:
		return "doi"
	case CategoryNLMNumeric:
		return "nlm_numeric"
	case CategoryNLMVersioned:
		return "nlm_versioned"
	default:
		return "unknown"
	}
}

// ClassifyIdentifier reports the shape class of a raw identifier
// string. Pure classification: no lookups, no side effects.
func ClassifyIdentifier(value string) IdentifierCategory {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return CategoryUnknown
	case issnPattern.MatchString(value):
		return CategoryISSN
	case isbnPattern.MatchString(value):
		return CategoryISBN
	case doiPattern.MatchString(value):
		return CategoryDOI
	case nlmVersionedPattern.MatchString(value):
		return CategoryNLMVersioned
	case nlmNumericPattern.MatchString(value):
		return CategoryNLMNumeric
	default:
		return CategoryUnknown
	}
}

// NormalizeISSN brings an ISSN into canonical NNNN-NNNX form: trimmed,
// uppercased check character, hyphen inserted when missing. Returns
// empty when the value does not have ISSN shape.
func NormalizeISSN(issn string) string {
	issn = strings.ToUpper(strings.TrimSpace(issn))
	if len(issn) == 8 && !strings.Contains(issn, "-") {
		issn = issn[:4] + "-" + issn[4:]
	}
	if !issnPattern.MatchString(issn) {
		return ""
	}
	return issn
}

// ValidISSNChecksum validates the ISSN check digit: the weighted sum
// of the first seven digits (weights 8..2) mod 11 determines the
// eighth character, with 10 written as 'X'.
func ValidISSNChecksum(issn string) bool {
	digits := strings.ReplaceAll(issn, "-", "")
	if len(digits) != 8 {
		return false
	}

	total := 0
	for i, weight := range []int{8, 7, 6, 5, 4, 3, 2} {
		c := digits[i]
		if c < '0' || c > '9' {
			return false
		}
		total += int(c-'0') * weight
	}

	check := (11 - total%11) % 11
	last := digits[7]
	if check == 10 {
		return last == 'X' || last == 'x'
	}
	return last == byte('0'+check)
}

// IsISBN reports whether the value looks like an ISBN-13. NLM assigns
// ISBNs instead of MEDLINE abbreviations to book entities, which is
// how books are detected during synthetic ID assignment.
func IsISBN(value string) bool {
	return value != "" && isbnPattern.MatchString(value)
}

// MakeNLMIdentifier creates a synthetic unified ID from an NLM ID.
func MakeNLMIdentifier(nlmID string) string {
	return "NLM-" + nlmID
}

// MakeISBNIdentifier creates a synthetic unified ID from an ISBN.
func MakeISBNIdentifier(isbn string) string {
	return "ISBN-" + isbn
}

// MakeOpenAlexIdentifier creates a synthetic unified ID from an
// OpenAlex source ID, stripping the URL prefix when present.
func MakeOpenAlexIdentifier(openAlexID string) string {
	openAlexID = strings.TrimPrefix(openAlexID, "https://openalex.org/")
	return "OPENALEX-" + openAlexID
}

// MakeTitleIdentifier creates a synthetic unified ID from a title:
// TITLE- plus the first eight hex characters of the title's MD5.
// Stable across runs by construction.
func MakeTitleIdentifier(title string) string {
	sum := md5.Sum([]byte(title)) //nolint:gosec
	return "TITLE-" + hex.EncodeToString(sum[:])[:8]
}

// NormalizeNLMID strips leading zeros so NLM IDs from different
// sources compare equal. An all-zero input normalizes to "0".
func NormalizeNLMID(nlmID string) string {
	nlmID = strings.TrimSpace(nlmID)
	if nlmID == "" {
		return ""
	}
	trimmed := strings.TrimLeft(nlmID, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

// IsValidUnifiedID reports whether the identifier is a valid unified
// primary key: an ISSN or one of the synthetic shapes.
func IsValidUnifiedID(id string) bool {
	if id == "" {
		return false
	}
	return issnPattern.MatchString(id) ||
		nlmIDPattern.MatchString(id) ||
		isbnIDPattern.MatchString(id) ||
		openAlexIDPattern.MatchString(id) ||
		titleIDPattern.MatchString(id)
}
