// Package refmatch matches a unified journal dataset against a
// reference corpus of (title, abbreviation, NLM ID) tuples from a
// literature service, keeping only journals the corpus actually
// cites and adding corpus-only journals as new records.
package refmatch

import (
	"regexp"
	"sort"
	"strings"

	"github.com/sibils/journals/pkg/journals"
)

// journalOfPattern matches "Journal of X" and "The Journal of X"
// prefixes on normalized title keys.
var journalOfPattern = regexp.MustCompile(`^(the\s+)?journal\s+of\s+`)

// genericTerms are words too common across distinct journals for
// "Journal of X" / "X" variant matching to be safe. A variant
// containing any of them is never generated.
var genericTerms = map[string]bool{
	// major scientific fields
	"medicine": true, "surgery": true, "biology": true, "chemistry": true,
	"physics": true, "immunology": true, "neurology": true, "cardiology": true,
	"urology": true, "genetics": true, "psychiatry": true, "pharmacology": true,
	"pathology": true, "radiology": true, "oncology": true, "dermatology": true,
	"nephrology": true, "gastroenterology": true, "endocrinology": true,
	"rheumatology": true, "hematology": true, "pulmonology": true,
	"ophthalmology": true,
	// generic academic terms
	"science": true, "research": true, "studies": true, "review": true,
	"reports": true, "health": true, "care": true, "therapy": true,
	"education": true, "business": true, "management": true, "engineering": true,
	"technology": true, "development": true,
	// broad social sciences
	"psychology": true, "sociology": true, "anthropology": true,
	"economics": true, "history": true, "philosophy": true, "literature": true,
	"art": true, "music": true, "law": true, "politics": true,
	"communication": true, "linguistics": true,
	// generic qualifiers
	"clinical": true, "applied": true, "theoretical": true, "experimental": true,
	"international": true, "american": true, "european": true, "asian": true,
	"african": true, "medical": true, "scientific": true, "academic": true,
	"professional": true, "general": true, "modern": true, "contemporary": true,
	"current": true, "basic": true, "advanced": true, "practical": true,
	"critical": true, "comparative": true,
}

// Entry is one reference corpus row. Abbreviation is the MEDLINE
// title abbreviation; NLMID may come from PMC for journals that are
// not MEDLINE-indexed.
type Entry struct {
	Title        string
	Abbreviation string
	NLMID        string
}

// Corpus is an indexed reference corpus. Build one with NewCorpus and
// reuse it across Match runs; it is never modified by matching.
type Corpus struct {
	entries []Entry

	titleKeys      map[string]bool
	abbreviations  map[string]bool
	nlmIDs         map[string]bool
	abbrevToTitles map[string][]string // abbreviation -> title keys
	titleToAbbrevs map[string][]string // title key -> abbreviations
	nlmToTitles    map[string][]string // normalized NLM ID -> title keys
	originals      map[string][]string // title key -> original titles
}

// NewCorpus indexes reference entries. NLM IDs are normalized by
// stripping leading zeros so they compare against unified records.
func NewCorpus(entries []Entry) *Corpus {
	c := &Corpus{
		titleKeys:      make(map[string]bool),
		abbreviations:  make(map[string]bool),
		nlmIDs:         make(map[string]bool),
		abbrevToTitles: make(map[string][]string),
		titleToAbbrevs: make(map[string][]string),
		nlmToTitles:    make(map[string][]string),
		originals:      make(map[string][]string),
	}
	for _, e := range entries {
		e.Title = strings.TrimSpace(e.Title)
		e.Abbreviation = strings.TrimSpace(e.Abbreviation)
		if e.NLMID != "" {
			e.NLMID = journals.NormalizeNLMID(strings.TrimSpace(e.NLMID))
		}
		c.entries = append(c.entries, e)

		key := journals.TitleKey(e.Title)
		if key != "" {
			c.titleKeys[key] = true
			c.originals[key] = appendUnique(c.originals[key], e.Title)
		}
		if e.Abbreviation != "" {
			c.abbreviations[e.Abbreviation] = true
		}
		if e.NLMID != "" {
			c.nlmIDs[e.NLMID] = true
		}
		if key != "" && e.Abbreviation != "" {
			c.abbrevToTitles[e.Abbreviation] = appendUnique(c.abbrevToTitles[e.Abbreviation], key)
			c.titleToAbbrevs[key] = appendUnique(c.titleToAbbrevs[key], e.Abbreviation)
		}
		if key != "" && e.NLMID != "" {
			c.nlmToTitles[e.NLMID] = appendUnique(c.nlmToTitles[e.NLMID], key)
		}
	}
	return c
}

// Len returns the number of corpus entries.
func (c *Corpus) Len() int {
	return len(c.entries)
}

// titleVariants generates "Journal of X" / "X" counterparts for a
// normalized title key. Variants are suppressed for short titles
// (fewer than three core words), titles containing generic field
// terms, and when the counterpart already exists in the corpus, since
// any of those makes false positives likely.
func titleVariants(titleKey string, existing map[string]bool) []string {
	if loc := journalOfPattern.FindStringIndex(titleKey); loc != nil {
		stripped := strings.TrimSpace(titleKey[loc[1]:])
		if stripped == "" || !variantSafe(stripped, existing) {
			return nil
		}
		return []string{stripped}
	}

	prefixed := "journal of " + titleKey
	if !variantSafe(titleKey, nil) || existing[prefixed] {
		return nil
	}
	return []string{prefixed}
}

func variantSafe(core string, existing map[string]bool) bool {
	words := strings.Fields(core)
	if len(words) < 3 {
		return false
	}
	for _, word := range words {
		if genericTerms[word] {
			return false
		}
	}
	return !existing[core]
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	list = append(list, value)
	sort.Strings(list)
	return list
}
