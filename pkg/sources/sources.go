// Package sources defines the identifiers of the bibliographic data
// sources that contribute journal records, together with their
// deterministic ordering.
//
// Loaders tag every normalized record with the source it came from; the
// merge engine uses source identity both for priority lookups and for
// the fixed name ordering that breaks equal-priority ties.
package sources

import "slices"

// ID represents the identifier of a bibliographic data source.
type ID string

// String returns the string representation of a source ID.
func (id ID) String() string {
	return string(id)
}

// Known sources.
const (
	// Crossref is the Crossref journals API (publisher-reported data).
	Crossref ID = "crossref"
	// DOAJ is the Directory of Open Access Journals (curated OA data).
	DOAJ ID = "doaj"
	// OpenAlex is the OpenAlex sources dataset (broad coverage, metrics).
	OpenAlex ID = "openalex"
	// NLM is the NLM Catalog (librarian-maintained biomedical data).
	NLM ID = "nlm"
	// LSIOU is the NLM List of Serials Indexed for Online Users
	// (all journals ever indexed for MEDLINE).
	LSIOU ID = "lsiou"
	// PMC is the PubMed Central journal list (deposit agreements).
	PMC ID = "pmc"
	// JStage is J-STAGE, Japan's academic e-journal platform.
	JStage ID = "jstage"
	// Wikidata is the Wikidata journal set (gap filling).
	Wikidata ID = "wikidata"
	// SIBiLS is the SIBiLS journal reference corpus (title-only entries
	// contributed by the reference matcher).
	SIBiLS ID = "sibils"
)

// IDs returns all known source IDs in their fixed, deterministic order.
// This order doubles as the tie-break order when two sources share the
// same priority: the earlier source wins.
func IDs() []ID {
	return []ID{
		LSIOU,
		DOAJ,
		NLM,
		OpenAlex,
		Crossref,
		JStage,
		PMC,
		Wikidata,
		SIBiLS,
	}
}

// IsValid returns true if the ID is one of the defined constants.
func (id ID) IsValid() bool {
	return slices.Contains(IDs(), id)
}

// Rank returns the position of the ID in the fixed tie-break order.
// Unknown sources rank last.
func Rank(id ID) int {
	for i, known := range IDs() {
		if known == id {
			return i
		}
	}
	return len(IDs())
}
