package unifier

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/sibils/journals/pkg/authority"
	"github.com/sibils/journals/pkg/journals"
	"github.com/sibils/journals/pkg/logging"
	"github.com/sibils/journals/pkg/provenance"
	"github.com/sibils/journals/pkg/sources"
)

// merger collapses a group of same-journal records into one unified
// record, field by field, under the authority table's priorities.
type merger struct {
	authorities   *authority.Table
	softConflicts int
}

func newMerger(authorities *authority.Table) *merger {
	return &merger{authorities: authorities}
}

// merge builds the unified record for one group. The group is first
// put in a canonical content order so the result is identical for any
// permutation of the input. Field-level provenance entries are
// returned keyed by field name; the caller attaches them once the
// unified ID is final.
func (m *merger) merge(records []*journals.Journal) (*journals.Journal, map[string]provenance.Entry) {
	group := make([]*journals.Journal, len(records))
	copy(group, records)
	sort.SliceStable(group, func(i, j int) bool {
		return contentKey(group[i]) < contentKey(group[j])
	})

	merged := &journals.Journal{}
	prov := make(map[string]provenance.Entry)

	scalarLike := make([]string, 0, len(journals.ScalarFields)+len(journals.NumericFields)+len(journals.IdentifierFields))
	scalarLike = append(scalarLike, journals.IdentifierFields...)
	scalarLike = append(scalarLike, journals.ScalarFields...)
	scalarLike = append(scalarLike, journals.NumericFields...)
	for _, field := range scalarLike {
		m.mergeScalar(merged, field, group, prov)
	}
	for _, field := range journals.BoolFields {
		m.mergeBool(merged, field, group, prov)
	}
	for _, field := range journals.ListFields {
		m.mergeList(merged, field, group)
	}

	// Every ISSN seen in the group is preserved, whatever the
	// authoritative slots ended up holding.
	for _, rec := range m.orderedBy(group, "ISSNL") {
		for _, issn := range rec.ISSNs() {
			merged.AddISSN(issn)
		}
	}

	merged.Sources = contributingSources(group)
	return merged, prov
}

// mergeScalar picks the non-empty value from the highest-priority
// source. Ties between distinct sources fall back to the fixed source
// order; a tie carrying two different values is a soft conflict,
// logged but not fatal.
func (m *merger) mergeScalar(merged *journals.Journal, field string, group []*journals.Journal, prov map[string]provenance.Entry) {
	ordered := m.orderedBy(group, field)

	var winner *journals.Journal
	var winnerVal reflect.Value
	var contributors []sources.ID
	for _, rec := range ordered {
		val := fieldValue(rec, field)
		if !nonEmpty(val) {
			continue
		}
		contributors = appendSourceOnce(contributors, rec.Source)
		if winner == nil {
			winner = rec
			winnerVal = val
		}
	}
	if winner == nil {
		return
	}

	setFieldValue(merged, field, winnerVal)

	top := m.authorities.Priority(field, winner.Source)
	for _, rec := range ordered {
		if rec == winner || rec.Source == winner.Source {
			continue
		}
		val := fieldValue(rec, field)
		if !nonEmpty(val) || m.authorities.Priority(field, rec.Source) != top {
			continue
		}
		if !reflect.DeepEqual(deref(val), deref(winnerVal)) {
			m.softConflicts++
			logging.Warn().
				Str("field", field).
				Str("selected_source", winner.Source.String()).
				Str("conflicting_source", rec.Source.String()).
				Msg("equal-priority sources disagree, fixed source order applied")
			break
		}
	}

	prov[field] = provenance.Entry{
		Field:        field,
		Selected:     winner.Source,
		Contributors: contributors,
		Reason:       fmt.Sprintf("priority %d", top),
	}
}

// mergeBool lets any asserting source win: true beats false because
// indexing flags are typically known only to the indexing authority.
func (m *merger) mergeBool(merged *journals.Journal, field string, group []*journals.Journal, prov map[string]provenance.Entry) {
	ordered := m.orderedBy(group, field)

	var winner, firstTrue *journals.Journal
	var contributors []sources.ID
	for _, rec := range ordered {
		val := fieldValue(rec, field)
		if !nonEmpty(val) {
			continue
		}
		contributors = appendSourceOnce(contributors, rec.Source)
		if winner == nil {
			winner = rec
		}
		if firstTrue == nil && val.Elem().Bool() {
			firstTrue = rec
		}
	}
	if winner == nil {
		return
	}
	if firstTrue != nil {
		winner = firstTrue
	}

	setFieldValue(merged, field, fieldValue(winner, field))
	prov[field] = provenance.Entry{
		Field:        field,
		Selected:     winner.Source,
		Contributors: contributors,
		Reason:       "assertion wins",
	}
}

// mergeList unions list values across the group in authority order,
// deduplicating case-insensitively and keeping first-seen casing.
func (m *merger) mergeList(merged *journals.Journal, field string, group []*journals.Journal) {
	seen := make(map[string]bool)
	var out []string
	for _, rec := range m.orderedBy(group, field) {
		val := fieldValue(rec, field)
		if !nonEmpty(val) {
			continue
		}
		for i := 0; i < val.Len(); i++ {
			item := strings.TrimSpace(val.Index(i).String())
			if item == "" {
				continue
			}
			key := strings.ToLower(item)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, item)
		}
	}
	if out != nil {
		setFieldValue(merged, field, reflect.ValueOf(out))
	}
}

// orderedBy sorts a copy of the group by descending priority for the
// given field, keeping the canonical content order within equal
// sources.
func (m *merger) orderedBy(group []*journals.Journal, field string) []*journals.Journal {
	out := make([]*journals.Journal, len(group))
	copy(out, group)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Source, out[j].Source
		if a == b {
			return false
		}
		return m.authorities.Less(field, a, b)
	})
	return out
}

// contentKey is a stable per-record identity used to canonicalize
// group order before merging, so that input permutation cannot leak
// into the output.
func contentKey(j *journals.Journal) string {
	return fmt.Sprintf("%02d|%s|%s|%s|%s|%s",
		sources.Rank(j.Source), j.Title, j.ISSNPrint, j.ISSNElectronic, j.NLMID, j.OpenAlexID)
}

func contributingSources(group []*journals.Journal) []sources.ID {
	seen := make(map[sources.ID]bool, len(group))
	for _, rec := range group {
		if rec.Source != "" {
			seen[rec.Source] = true
		}
	}
	out := make([]sources.ID, 0, len(seen))
	for _, id := range sources.IDs() {
		if seen[id] {
			out = append(out, id)
		}
	}
	return out
}

func appendSourceOnce(list []sources.ID, id sources.ID) []sources.ID {
	for _, existing := range list {
		if existing == id {
			return list
		}
	}
	return append(list, id)
}

func fieldValue(j *journals.Journal, name string) reflect.Value {
	return reflect.ValueOf(j).Elem().FieldByName(name)
}

func setFieldValue(j *journals.Journal, name string, val reflect.Value) {
	reflect.ValueOf(j).Elem().FieldByName(name).Set(val)
}

// nonEmpty reports whether a field value counts as a contribution:
// nil pointers, empty strings and empty slices do not.
func nonEmpty(val reflect.Value) bool {
	if !val.IsValid() {
		return false
	}
	switch val.Kind() {
	case reflect.Ptr:
		return !val.IsNil()
	case reflect.String:
		return val.String() != ""
	case reflect.Slice:
		return val.Len() > 0
	default:
		return !val.IsZero()
	}
}

// deref unwraps pointer values for comparison.
func deref(val reflect.Value) any {
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil
		}
		return val.Elem().Interface()
	}
	return val.Interface()
}
