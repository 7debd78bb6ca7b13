// Package journals defines the data model for journal records: the
// fixed-schema Journal struct shared by loaders and the merge engine,
// identifier validation and classification, title normalization, and
// the read-only ISSN-L linking table.
//
// A Journal is produced in two flavors. Loaders emit per-source
// records (Source set, UnifiedID empty) that are immutable once
// loaded. The merge engine emits unified records (UnifiedID set,
// Sources listing every contributing source) that exclusively own
// their field values.
package journals

import "github.com/sibils/journals/pkg/sources"

// Journal is one journal's data. The schema is fixed rather than a
// free-form field map so that a typo in a field name is a compile
// error, not a silent merge bug.
type Journal struct {
	// UnifiedID is the primary key of a unified record: the ISSN-L
	// when one exists, otherwise a synthetic identifier
	// (NLM-*, ISBN-*, OPENALEX-*, TITLE-*).
	UnifiedID string `yaml:"unified_id,omitempty"`

	// Source tags a per-source record with its origin. Empty on
	// unified records, which carry Sources instead.
	Source sources.ID `yaml:"source,omitempty"`

	// Identifiers.
	ISSNL          string `yaml:"issn_l,omitempty"`
	ISSNPrint      string `yaml:"issn_print,omitempty"`
	ISSNElectronic string `yaml:"issn_electronic,omitempty"`
	NLMID          string `yaml:"nlm_id,omitempty"`
	OpenAlexID     string `yaml:"openalex_id,omitempty"`
	WikidataID     string `yaml:"wikidata_id,omitempty"`

	// Scalar fields.
	Title               string `yaml:"title,omitempty"`
	Publisher           string `yaml:"publisher,omitempty"`
	Country             string `yaml:"country,omitempty"`
	SourceType          string `yaml:"source_type,omitempty"`
	MedlineAbbreviation string `yaml:"medline_abbreviation,omitempty"`
	PMCAgreementStatus  string `yaml:"pmc_agreement_status,omitempty"`
	APCCurrency         string `yaml:"apc_currency,omitempty"`
	JournalURL          string `yaml:"journal_url,omitempty"`
	License             string `yaml:"license,omitempty"`
	LicenseURL          string `yaml:"license_url,omitempty"`
	ReviewProcessURL    string `yaml:"review_process_url,omitempty"`
	CopyrightURL        string `yaml:"copyright_url,omitempty"`

	// Tri-state boolean fields; nil means the source said nothing.
	IsOA                *bool `yaml:"is_oa,omitempty"`
	IsMedlineIndexed    *bool `yaml:"is_medline_indexed,omitempty"`
	IsPMCIndexed        *bool `yaml:"is_pmc_indexed,omitempty"`
	CopyrightAuthor     *bool `yaml:"copyright_author,omitempty"`
	PlagiarismScreening *bool `yaml:"plagiarism_screening,omitempty"`

	// Numeric fields.
	APCAmount    *float64 `yaml:"apc_amount,omitempty"`
	WorksCount   *int     `yaml:"works_count,omitempty"`
	CitedByCount *int     `yaml:"cited_by_count,omitempty"`
	HIndex       *int     `yaml:"h_index,omitempty"`

	// List fields.
	AlternativeTitles    []string `yaml:"alternative_titles,omitempty"`
	Subjects             []string `yaml:"subjects,omitempty"`
	Languages            []string `yaml:"languages,omitempty"`
	ReviewProcess        []string `yaml:"review_process,omitempty"`
	PreservationServices []string `yaml:"preservation_services,omitempty"`
	DepositPolicy        []string `yaml:"deposit_policy,omitempty"`
	PredecessorNLMIDs    []string `yaml:"predecessor_nlm_ids,omitempty"`
	SuccessorNLMIDs      []string `yaml:"successor_nlm_ids,omitempty"`

	// AllISSNs collects every ISSN ever attributed to this journal,
	// including ones stripped from the authoritative slots by the
	// conflict validator. Unified records only.
	AllISSNs []string `yaml:"all_issns,omitempty"`

	// Sources lists the sources that contributed to a unified record.
	Sources []sources.ID `yaml:"sources,omitempty"`
}

// Field registry consumed by the merge engine. The names are Go struct
// field names resolved by reflection; the kind determines the merge
// rule applied.
var (
	// ScalarFields select the non-empty value from the highest
	// priority source.
	ScalarFields = []string{
		"Title", "Publisher", "Country", "SourceType",
		"MedlineAbbreviation", "PMCAgreementStatus", "APCCurrency",
		"JournalURL", "License", "LicenseURL", "ReviewProcessURL",
		"CopyrightURL",
	}

	// BoolFields merge with true winning over false or unset.
	BoolFields = []string{
		"IsOA", "IsMedlineIndexed", "IsPMCIndexed",
		"CopyrightAuthor", "PlagiarismScreening",
	}

	// NumericFields follow the scalar rule.
	NumericFields = []string{
		"APCAmount", "WorksCount", "CitedByCount", "HIndex",
	}

	// ListFields union across sources, deduplicated
	// case-insensitively, first-seen order.
	ListFields = []string{
		"AlternativeTitles", "Subjects", "Languages", "ReviewProcess",
		"PreservationServices", "DepositPolicy",
		"PredecessorNLMIDs", "SuccessorNLMIDs",
	}

	// IdentifierFields keep every value (in AllISSNs for ISSNs) while
	// the authoritative slot follows the scalar rule.
	IdentifierFields = []string{
		"ISSNL", "ISSNPrint", "ISSNElectronic",
		"NLMID", "OpenAlexID", "WikidataID",
	}
)

// ISSNs returns the journal's ISSNs in slot order
// (linking, print, electronic), skipping empty slots.
func (j *Journal) ISSNs() []string {
	var issns []string
	for _, issn := range []string{j.ISSNL, j.ISSNPrint, j.ISSNElectronic} {
		if issn != "" {
			issns = append(issns, issn)
		}
	}
	return issns
}

// HasISSN reports whether any ISSN slot is populated.
func (j *Journal) HasISSN() bool {
	return j.ISSNL != "" || j.ISSNPrint != "" || j.ISSNElectronic != ""
}

// HasSource reports whether id already contributed to this record.
func (j *Journal) HasSource(id sources.ID) bool {
	for _, s := range j.Sources {
		if s == id {
			return true
		}
	}
	return false
}

// AddISSN appends issn to AllISSNs unless already present.
func (j *Journal) AddISSN(issn string) {
	if issn == "" {
		return
	}
	for _, existing := range j.AllISSNs {
		if existing == issn {
			return
		}
	}
	j.AllISSNs = append(j.AllISSNs, issn)
}
