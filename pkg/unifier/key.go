package unifier

import (
	"github.com/sibils/journals/pkg/journals"
	"github.com/sibils/journals/pkg/logging"
	"github.com/sibils/journals/pkg/sources"
)

// Kind tags a CanonicalKey with the identifier class it was derived from.
type Kind int

// Key kinds, in resolution precedence order.
const (
	KindISSNL Kind = iota
	KindNLM
	KindOpenAlex
	KindTitle
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindISSNL:
		return "issn_l"
	case KindNLM:
		return "nlm"
	case KindOpenAlex:
		return "openalex"
	case KindTitle:
		return "title"
	default:
		return "unknown"
	}
}

// CanonicalKey identifies a resolution group. Two records sharing a
// CanonicalKey are merge candidates. Derivation is a pure function of
// a record's identifiers plus the ISSN-L table, never of merge order.
type CanonicalKey struct {
	Kind  Kind
	Value string
}

// String returns "kind:value", usable as a stable sort key.
func (k CanonicalKey) String() string {
	return k.Kind.String() + ":" + k.Value
}

// IsZero reports whether the key is unset (unresolvable record).
func (k CanonicalKey) IsZero() bool {
	return k.Value == ""
}

// less orders keys deterministically: by kind, then by value.
func (k CanonicalKey) less(other CanonicalKey) bool {
	if k.Kind != other.Kind {
		return k.Kind < other.Kind
	}
	return k.Value < other.Value
}

// ISSNLDiscrepancy reports a record whose print and electronic ISSNs
// resolve to different ISSN-L values: the record combines ISSNs from
// two different journals according to the official linking table. An
// upstream defect class; reported, never repaired.
type ISSNLDiscrepancy struct {
	Source          sources.ID
	Title           string
	ISSNPrint       string
	ISSNElectronic  string
	ISSNLPrint      string
	ISSNLElectronic string
}

// Resolver derives canonical keys. It holds only read-only state; the
// ISSN-L table is passed in explicitly rather than kept as ambient
// global state.
type Resolver struct {
	table            *journals.ISSNLTable
	validateChecksum bool
}

// NewResolver creates a key resolver over the given linking table.
// When validateChecksum is true (the default configuration), an ISSN
// failing its check digit is treated as absent.
func NewResolver(table *journals.ISSNLTable, validateChecksum bool) *Resolver {
	if table == nil {
		table = journals.NewISSNLTable(nil)
	}
	return &Resolver{table: table, validateChecksum: validateChecksum}
}

// Resolve derives the canonical key for a record, using this
// precedence: explicit ISSN-L, table-resolved print ISSN,
// table-resolved electronic ISSN, structurally valid but unlinked
// print then electronic ISSN (self-linking), NLM ID, OpenAlex ID,
// normalized title. A zero key means the record is unresolvable.
//
// When print and electronic ISSNs resolve to different ISSN-L values
// the print resolution wins and the discrepancy is returned for the
// conflict report rather than silently dropped.
func (r *Resolver) Resolve(j *journals.Journal) (CanonicalKey, *ISSNLDiscrepancy) {
	pissn := r.usableISSN(j.ISSNPrint, j.Source)
	eissn := r.usableISSN(j.ISSNElectronic, j.Source)
	lissn := r.usableISSN(j.ISSNL, j.Source)

	linkedPrint, okPrint := "", false
	linkedElectronic, okElectronic := "", false
	if pissn != "" {
		linkedPrint, okPrint = r.table.Lookup(pissn)
	}
	if eissn != "" {
		linkedElectronic, okElectronic = r.table.Lookup(eissn)
	}

	var disc *ISSNLDiscrepancy
	if okPrint && okElectronic && linkedPrint != linkedElectronic {
		disc = &ISSNLDiscrepancy{
			Source:          j.Source,
			Title:           j.Title,
			ISSNPrint:       pissn,
			ISSNElectronic:  eissn,
			ISSNLPrint:      linkedPrint,
			ISSNLElectronic: linkedElectronic,
		}
	}

	switch {
	case lissn != "":
		return CanonicalKey{KindISSNL, lissn}, disc
	case okPrint:
		return CanonicalKey{KindISSNL, linkedPrint}, disc
	case okElectronic:
		return CanonicalKey{KindISSNL, linkedElectronic}, disc
	case pissn != "":
		// Valid ISSN absent from the linking table links to itself.
		return CanonicalKey{KindISSNL, pissn}, disc
	case eissn != "":
		return CanonicalKey{KindISSNL, eissn}, disc
	}

	if j.NLMID != "" {
		return CanonicalKey{KindNLM, journals.NormalizeNLMID(j.NLMID)}, disc
	}
	if j.OpenAlexID != "" {
		return CanonicalKey{KindOpenAlex, trimOpenAlexID(j.OpenAlexID)}, disc
	}
	if key := journals.TitleKey(j.Title); key != "" {
		return CanonicalKey{KindTitle, key}, disc
	}

	return CanonicalKey{}, disc
}

// usableISSN normalizes and validates an ISSN, returning empty when it
// must be treated as absent. A checksum failure with validation
// disabled keeps the value and logs a warning.
func (r *Resolver) usableISSN(raw string, source sources.ID) string {
	if raw == "" {
		return ""
	}

	issn := journals.NormalizeISSN(raw)
	if issn == "" {
		logging.Warn().
			Str("issn", raw).
			Str("source", source.String()).
			Msg("ISSN with invalid shape treated as absent")
		return ""
	}

	if !journals.ValidISSNChecksum(issn) {
		if r.validateChecksum {
			logging.Warn().
				Str("issn", issn).
				Str("source", source.String()).
				Msg("ISSN failing checksum treated as absent")
			return ""
		}
		logging.Warn().
			Str("issn", issn).
			Str("source", source.String()).
			Msg("ISSN failing checksum used as-is (checksum validation disabled)")
	}

	return issn
}

func trimOpenAlexID(id string) string {
	const prefix = "https://openalex.org/"
	if len(id) > len(prefix) && id[:len(prefix)] == prefix {
		return id[len(prefix):]
	}
	return id
}
