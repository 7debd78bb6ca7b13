package journals

// ISSNLTable is the read-only ISSN → ISSN-L linking table published by
// the ISSN International Centre. It is loaded once per run and only
// ever queried; the merge engine receives it as an explicit parameter
// rather than ambient state.
type ISSNLTable struct {
	m map[string]string
}

// NewISSNLTable wraps an ISSN → ISSN-L mapping. The table takes
// ownership of the map; callers must not mutate it afterwards.
func NewISSNLTable(m map[string]string) *ISSNLTable {
	if m == nil {
		m = map[string]string{}
	}
	return &ISSNLTable{m: m}
}

// Lookup returns the ISSN-L linked to issn, if any.
func (t *ISSNLTable) Lookup(issn string) (string, bool) {
	issnL, ok := t.m[issn]
	return issnL, ok
}

// Len returns the number of table entries.
func (t *ISSNLTable) Len() int {
	return len(t.m)
}
