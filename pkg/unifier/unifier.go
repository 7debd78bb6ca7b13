// Package unifier collapses bibliographic journal records from
// multiple registries into one unified record per real-world journal.
//
// Unification runs in four phases: canonical key resolution, merge of
// ISSN-keyed groups, title-based merge of the remainder into those
// groups, and synthetic ID assignment for whatever is left. Every
// phase iterates in sorted order and derives nothing from input
// position, so the output is byte-identical across runs and input
// permutations.
package unifier

import (
	"context"
	"fmt"
	"sort"

	"github.com/sibils/journals/pkg/authority"
	"github.com/sibils/journals/pkg/journals"
	"github.com/sibils/journals/pkg/logging"
	"github.com/sibils/journals/pkg/provenance"
	"github.com/sibils/journals/pkg/sources"
)

// Unifier merges multi-source journal records into a unified dataset.
// A Unifier is safe to reuse across runs; it holds no per-run state.
type Unifier struct {
	authorities      *authority.Table
	validateChecksum bool
	trackProvenance  bool
}

// New creates a Unifier with the default priority table, checksum
// validation and provenance tracking enabled.
func New(opts ...Option) *Unifier {
	u := &Unifier{
		authorities:      authority.New(),
		validateChecksum: true,
		trackProvenance:  true,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Unify merges records into unified journals using the given ISSN-L
// linking table. The input slice is not modified.
func (u *Unifier) Unify(ctx context.Context, records []*journals.Journal, table *journals.ISSNLTable) (*Result, error) {
	log := logging.FromContext(ctx)
	resolver := NewResolver(table, u.validateChecksum)
	result := &Result{}
	result.Stats.RecordsIn = len(records)

	// Phase 1: resolve each record to a canonical key.
	groups := make(map[CanonicalKey][]*journals.Journal)
	for _, rec := range records {
		key, disc := resolver.Resolve(rec)
		if disc != nil {
			result.Discrepancies = append(result.Discrepancies, *disc)
		}
		if key.IsZero() {
			result.Stats.RecordsDropped++
			warning := fmt.Sprintf("record dropped: no usable identifier or title (source=%s, title=%q)", rec.Source, rec.Title)
			result.Warnings = append(result.Warnings, warning)
			log.Warn().Str("source", rec.Source.String()).Str("title", rec.Title).
				Msg("record has no usable identifier or title, dropped")
			continue
		}
		if key.Kind == KindISSNL {
			result.Stats.RecordsWithISSN++
		} else {
			result.Stats.RecordsNoISSN++
		}
		groups[key] = append(groups[key], rec)
	}
	sortDiscrepancies(result.Discrepancies)
	result.Stats.Discrepancies = len(result.Discrepancies)

	// ISSN reuse: an ISSN-L group spanning distinct NLM IDs covers
	// distinct journals and must not merge.
	reuseLosers := make(map[CanonicalKey]bool)
	result.ReuseSplits = u.splitReusedISSNGroups(groups, reuseLosers)
	result.Stats.ReuseSplits = len(result.ReuseSplits)

	// Phase 2 claims the ISSN-keyed groups; phase 3 folds the rest in
	// by exact normalized-title match against them. Groups the reuse
	// split re-keyed stay out: the winner often lists the loser's
	// former title among its alternatives, and folding on that title
	// would undo the split.
	titleIndex := buildTitleIndex(groups)
	for _, key := range sortedKeys(groups) {
		if key.Kind == KindISSNL || reuseLosers[key] {
			continue
		}
		target, ok := lookupByTitle(titleIndex, groups[key])
		if !ok {
			continue
		}
		groups[target] = append(groups[target], groups[key]...)
		delete(groups, key)
		result.Stats.TitleMerged++
	}

	// Merge every surviving group and assign unified IDs. Phase 4
	// covers the groups that never gained an ISSN-derived key.
	tracker := provenance.NewTracker(u.trackProvenance)
	merger := newMerger(u.authorities)
	for _, key := range sortedKeys(groups) {
		merged, prov := merger.merge(groups[key])
		u.assignUnifiedID(merged, key, &result.Stats)
		for _, field := range sortedProvFields(prov) {
			tracker.Track(merged.UnifiedID, field, prov[field])
		}
		result.Journals = append(result.Journals, merged)
		if key.Kind == KindISSNL {
			result.Stats.ISSNGroups++
		}
	}
	result.Stats.SoftConflicts = merger.softConflicts

	sortJournals(result.Journals)
	result.Stats.UnifiedTotal = len(result.Journals)
	result.Provenance = tracker.Map()

	log.Info().
		Int("records_in", result.Stats.RecordsIn).
		Int("unified", result.Stats.UnifiedTotal).
		Int("issn_groups", result.Stats.ISSNGroups).
		Int("title_merged", result.Stats.TitleMerged).
		Int("dropped", result.Stats.RecordsDropped).
		Msg("unification complete")
	return result, nil
}

// assignUnifiedID sets the record's unified ID from its canonical key.
// Groups without an ISSN-derived key get a synthetic ID: NLM ID, ISBN
// (a book series carrying an ISBN in its abbreviation slot), OpenAlex
// ID, then a hash of the normalized title.
func (u *Unifier) assignUnifiedID(merged *journals.Journal, key CanonicalKey, stats *Stats) {
	if key.Kind == KindISSNL {
		merged.UnifiedID = key.Value
		if merged.ISSNL == "" {
			merged.ISSNL = key.Value
		}
		merged.AddISSN(key.Value)
		return
	}

	switch {
	case merged.NLMID != "":
		merged.UnifiedID = journals.MakeNLMIdentifier(journals.NormalizeNLMID(merged.NLMID))
		stats.SyntheticNLM++
	case journals.IsISBN(merged.MedlineAbbreviation):
		merged.UnifiedID = journals.MakeISBNIdentifier(merged.MedlineAbbreviation)
		stats.SyntheticISBN++
	case merged.OpenAlexID != "":
		merged.UnifiedID = journals.MakeOpenAlexIdentifier(merged.OpenAlexID)
		stats.SyntheticOpenAlex++
	default:
		merged.UnifiedID = journals.MakeTitleIdentifier(journals.TitleKey(merged.Title))
		stats.SyntheticTitle++
	}
}

// splitReusedISSNGroups breaks up ISSN-L groups whose records carry
// two or more distinct NLM IDs. The claimant subgroup with the
// highest-priority backing keeps the ISSN-L key; every other NLM
// subgroup is re-keyed by its NLM ID so it merges apart, and its new
// key is recorded in losers. Records with no NLM ID stay with the
// keeper.
func (u *Unifier) splitReusedISSNGroups(groups map[CanonicalKey][]*journals.Journal, losers map[CanonicalKey]bool) []ReuseSplit {
	var splits []ReuseSplit
	for _, key := range sortedKeys(groups) {
		if key.Kind != KindISSNL {
			continue
		}

		byNLM := make(map[string][]*journals.Journal)
		var keeperRecords []*journals.Journal
		for _, rec := range groups[key] {
			if rec.NLMID == "" {
				keeperRecords = append(keeperRecords, rec)
				continue
			}
			id := journals.NormalizeNLMID(rec.NLMID)
			byNLM[id] = append(byNLM[id], rec)
		}
		if len(byNLM) < 2 {
			continue
		}

		winner := u.pickWinnerNLM(byNLM)
		keeperRecords = append(keeperRecords, byNLM[winner]...)
		groups[key] = keeperRecords

		nlmIDs := make([]string, 0, len(byNLM))
		for id := range byNLM {
			if id != winner {
				nlmIDs = append(nlmIDs, id)
			}
		}
		sort.Strings(nlmIDs)
		for _, id := range nlmIDs {
			loserKey := CanonicalKey{KindNLM, id}
			losers[loserKey] = true
			groups[loserKey] = append(groups[loserKey], byNLM[id]...)
			splits = append(splits, ReuseSplit{
				ISSNL:       key.Value,
				WinnerNLMID: winner,
				LoserNLMID:  id,
				LoserTitle:  bestTitle(byNLM[id]),
			})
			logging.Warn().
				Str("issn_l", key.Value).
				Str("kept_nlm_id", winner).
				Str("split_nlm_id", id).
				Msg("ISSN reused across distinct NLM IDs, group split")
		}
	}
	return splits
}

// pickWinnerNLM chooses the NLM subgroup that keeps a contested
// ISSN-L key: highest NLMID-field priority, then fixed source order,
// then the smaller NLM ID.
func (u *Unifier) pickWinnerNLM(byNLM map[string][]*journals.Journal) string {
	ids := make([]string, 0, len(byNLM))
	for id := range byNLM {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	best := ids[0]
	bestPriority, bestRank := subgroupAuthority(u.authorities, byNLM[best])
	for _, id := range ids[1:] {
		priority, rank := subgroupAuthority(u.authorities, byNLM[id])
		if priority > bestPriority || (priority == bestPriority && rank < bestRank) {
			best, bestPriority, bestRank = id, priority, rank
		}
	}
	return best
}

func subgroupAuthority(table *authority.Table, records []*journals.Journal) (priority, rank int) {
	priority, rank = -1, len(sources.IDs())
	for _, rec := range records {
		p := table.Priority("NLMID", rec.Source)
		r := sources.Rank(rec.Source)
		if p > priority || (p == priority && r < rank) {
			priority, rank = p, r
		}
	}
	return priority, rank
}

// buildTitleIndex maps normalized title keys (main and alternative)
// of every ISSN-keyed record to its group, first claim in sorted
// order winning.
func buildTitleIndex(groups map[CanonicalKey][]*journals.Journal) map[string]CanonicalKey {
	index := make(map[string]CanonicalKey)
	claim := func(title string, key CanonicalKey) {
		tk := journals.TitleKey(title)
		if tk == "" {
			return
		}
		if _, taken := index[tk]; !taken {
			index[tk] = key
		}
	}
	for _, key := range sortedKeys(groups) {
		if key.Kind != KindISSNL {
			continue
		}
		recs := make([]*journals.Journal, len(groups[key]))
		copy(recs, groups[key])
		sort.SliceStable(recs, func(i, j int) bool {
			return contentKey(recs[i]) < contentKey(recs[j])
		})
		for _, rec := range recs {
			claim(rec.Title, key)
			for _, alt := range rec.AlternativeTitles {
				claim(alt, key)
			}
		}
	}
	return index
}

// lookupByTitle finds the ISSN-keyed group matching any record title
// in the group, scanning in canonical content order.
func lookupByTitle(index map[string]CanonicalKey, records []*journals.Journal) (CanonicalKey, bool) {
	recs := make([]*journals.Journal, len(records))
	copy(recs, records)
	sort.SliceStable(recs, func(i, j int) bool {
		return contentKey(recs[i]) < contentKey(recs[j])
	})
	for _, rec := range recs {
		tk := journals.TitleKey(rec.Title)
		if tk == "" {
			continue
		}
		if key, ok := index[tk]; ok {
			return key, true
		}
	}
	return CanonicalKey{}, false
}

func bestTitle(records []*journals.Journal) string {
	recs := make([]*journals.Journal, len(records))
	copy(recs, records)
	sort.SliceStable(recs, func(i, j int) bool {
		return contentKey(recs[i]) < contentKey(recs[j])
	})
	for _, rec := range recs {
		if rec.Title != "" {
			return rec.Title
		}
	}
	return ""
}

func sortedKeys(groups map[CanonicalKey][]*journals.Journal) []CanonicalKey {
	keys := make([]CanonicalKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })
	return keys
}

func sortedProvFields(prov map[string]provenance.Entry) []string {
	fields := make([]string, 0, len(prov))
	for field := range prov {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

func sortDiscrepancies(discs []ISSNLDiscrepancy) {
	sort.Slice(discs, func(i, j int) bool {
		a, b := discs[i], discs[j]
		if a.ISSNPrint != b.ISSNPrint {
			return a.ISSNPrint < b.ISSNPrint
		}
		if a.ISSNElectronic != b.ISSNElectronic {
			return a.ISSNElectronic < b.ISSNElectronic
		}
		return a.Source < b.Source
	})
}

// sortJournals orders the unified dataset for deterministic export:
// ISSN-L first, then print and electronic ISSN, records without any
// of them last by unified ID.
func sortJournals(js []*journals.Journal) {
	sort.SliceStable(js, func(i, j int) bool {
		a, b := js[i], js[j]
		ak, bk := exportSortKey(a), exportSortKey(b)
		if (ak == "") != (bk == "") {
			return ak != ""
		}
		if ak != bk {
			return ak < bk
		}
		return a.UnifiedID < b.UnifiedID
	})
}

func exportSortKey(j *journals.Journal) string {
	switch {
	case j.ISSNL != "":
		return j.ISSNL
	case j.ISSNPrint != "":
		return j.ISSNPrint
	case j.ISSNElectronic != "":
		return j.ISSNElectronic
	}
	return ""
}
