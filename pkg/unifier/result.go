package unifier

import (
	"github.com/sibils/journals/pkg/journals"
	"github.com/sibils/journals/pkg/provenance"
)

// ReuseSplit records an ISSN-L group that was split because its
// records carried conflicting NLM IDs: the same ISSN was reused for
// journals NLM considers distinct. The higher-authority claimant kept
// the ISSN-L key; each other claimant was re-keyed by its NLM ID.
type ReuseSplit struct {
	ISSNL       string
	WinnerNLMID string
	LoserNLMID  string
	LoserTitle  string
}

// Stats summarizes one unification run.
type Stats struct {
	RecordsIn         int `yaml:"records_in"`
	RecordsWithISSN   int `yaml:"records_with_issn"`
	RecordsNoISSN     int `yaml:"records_without_issn"`
	RecordsDropped    int `yaml:"records_dropped"`
	ISSNGroups        int `yaml:"issn_groups"`
	TitleMerged       int `yaml:"title_merged"`
	SyntheticNLM      int `yaml:"synthetic_nlm"`
	SyntheticISBN     int `yaml:"synthetic_isbn"`
	SyntheticOpenAlex int `yaml:"synthetic_openalex"`
	SyntheticTitle    int `yaml:"synthetic_title"`
	ReuseSplits       int `yaml:"reuse_splits"`
	Discrepancies     int `yaml:"discrepancies"`
	SoftConflicts     int `yaml:"soft_conflicts"`
	UnifiedTotal      int `yaml:"unified_total"`
}

// Result is the full output of a unification run. Journals are sorted
// by ISSN-L, then print and electronic ISSN, with identifier-less
// records last, so repeated runs produce byte-identical exports.
type Result struct {
	Journals      []*journals.Journal
	Discrepancies []ISSNLDiscrepancy
	ReuseSplits   []ReuseSplit
	Provenance    provenance.Map
	Warnings      []string
	Stats         Stats
}
