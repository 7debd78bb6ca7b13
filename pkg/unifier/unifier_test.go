package unifier

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sibils/journals/pkg/journals"
	"github.com/sibils/journals/pkg/sources"
)

func boolPtr(b bool) *bool { return &b }

func unify(t *testing.T, records []*journals.Journal, opts ...Option) *Result {
	t.Helper()
	result, err := New(opts...).Unify(context.Background(), records, testTable())
	require.NoError(t, err)
	return result
}

func TestUnifyMergesByISSNL(t *testing.T) {
	records := []*journals.Journal{
		{
			Source:    sources.DOAJ,
			Title:     "Nature",
			ISSNPrint: "0028-0836",
			Publisher: "Springer Nature",
			Subjects:  []string{"Multidisciplinary"},
		},
		{
			Source:         sources.Wikidata,
			Title:          "nature journal",
			ISSNElectronic: "1476-4687",
			Publisher:      "Nature Publishing Group",
			Subjects:       []string{"multidisciplinary", "Science Studies"},
		},
	}

	result := unify(t, records)
	require.Len(t, result.Journals, 1)

	j := result.Journals[0]
	assert.Equal(t, "0028-0836", j.UnifiedID)
	assert.Equal(t, "0028-0836", j.ISSNL)
	assert.Equal(t, "Nature", j.Title, "DOAJ outranks Wikidata")
	assert.Equal(t, "Springer Nature", j.Publisher)
	assert.Equal(t, []sources.ID{sources.DOAJ, sources.Wikidata}, j.Sources)
	assert.ElementsMatch(t, []string{"0028-0836", "1476-4687"}, j.AllISSNs)

	// Lists union case-insensitively with first-seen casing.
	assert.Equal(t, []string{"Multidisciplinary", "Science Studies"}, j.Subjects)

	// Provenance names the winning source per field.
	entry, ok := result.Provenance["0028-0836:Title"]
	require.True(t, ok)
	assert.Equal(t, sources.DOAJ, entry.Selected)
	assert.ElementsMatch(t, []sources.ID{sources.DOAJ, sources.Wikidata}, entry.Contributors)
}

func TestUnifyOrderIndependent(t *testing.T) {
	build := func() []*journals.Journal {
		return []*journals.Journal{
			{Source: sources.DOAJ, Title: "Nature", ISSNPrint: "0028-0836", Publisher: "Springer Nature"},
			{Source: sources.Wikidata, Title: "nature journal", ISSNElectronic: "1476-4687"},
			{Source: sources.NLM, Title: "PLOS ONE", ISSNElectronic: "1932-6203", NLMID: "101285081"},
			{Source: sources.OpenAlex, Title: "PLoS One", ISSNElectronic: "1932-6203"},
			{Source: sources.Crossref, Title: "Annals of Improbable Research"},
		}
	}

	forward := build()
	reversed := build()
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}

	a := unify(t, forward)
	b := unify(t, reversed)

	if diff := cmp.Diff(a.Journals, b.Journals); diff != "" {
		t.Errorf("journals differ across input permutations (-forward +reversed):\n%s", diff)
	}
	if diff := cmp.Diff(a.Provenance, b.Provenance); diff != "" {
		t.Errorf("provenance differs across input permutations:\n%s", diff)
	}
}

func TestUnifyRepeatedRunsIdentical(t *testing.T) {
	records := []*journals.Journal{
		{Source: sources.DOAJ, Title: "Nature", ISSNPrint: "0028-0836"},
		{Source: sources.PMC, Title: "Annals of Improbable Research"},
	}

	a := unify(t, records)
	b := unify(t, records)
	if diff := cmp.Diff(a.Journals, b.Journals); diff != "" {
		t.Errorf("journals differ across runs:\n%s", diff)
	}
}

func TestUnifyBoolAssertionWins(t *testing.T) {
	records := []*journals.Journal{
		{Source: sources.DOAJ, Title: "Nature", ISSNPrint: "0028-0836", IsOA: boolPtr(false)},
		{Source: sources.Wikidata, Title: "Nature", ISSNElectronic: "1476-4687", IsOA: boolPtr(true)},
	}

	result := unify(t, records)
	require.Len(t, result.Journals, 1)
	require.NotNil(t, result.Journals[0].IsOA)
	assert.True(t, *result.Journals[0].IsOA, "true wins regardless of priority")
}

func TestUnifyBoolProvenanceListsAllContributors(t *testing.T) {
	// The winning assertion comes from the highest-priority source;
	// the lower-priority dissent still counts as a contributor.
	records := []*journals.Journal{
		{Source: sources.DOAJ, Title: "Nature", ISSNPrint: "0028-0836", IsOA: boolPtr(true)},
		{Source: sources.Wikidata, Title: "Nature", ISSNElectronic: "1476-4687", IsOA: boolPtr(false)},
	}

	result := unify(t, records)
	require.Len(t, result.Journals, 1)

	entry, ok := result.Provenance["0028-0836:IsOA"]
	require.True(t, ok)
	assert.Equal(t, sources.DOAJ, entry.Selected)
	assert.ElementsMatch(t, []sources.ID{sources.DOAJ, sources.Wikidata}, entry.Contributors)
}

func TestUnifyISSNReuseSplitsGroups(t *testing.T) {
	// The same electronic ISSN is registered for the journal under its
	// current and its former name, which NLM catalogs separately.
	records := []*journals.Journal{
		{
			Source:         sources.NLM,
			Title:          "Rheumatology (Oxford, England)",
			ISSNElectronic: "1460-2172",
			NLMID:          "100883501",
		},
		{
			Source:         sources.NLM,
			Title:          "British Journal of Rheumatology",
			ISSNElectronic: "1460-2172",
			NLMID:          "8302415",
		},
	}

	result := unify(t, records)
	require.Len(t, result.Journals, 2, "distinct NLM IDs must not merge")

	byID := make(map[string]*journals.Journal)
	for _, j := range result.Journals {
		byID[j.UnifiedID] = j
	}
	require.Contains(t, byID, "1460-2172")
	require.Contains(t, byID, "NLM-8302415")

	assert.Equal(t, "100883501", byID["1460-2172"].NLMID)
	assert.Equal(t, "8302415", byID["NLM-8302415"].NLMID)

	require.Len(t, result.ReuseSplits, 1)
	split := result.ReuseSplits[0]
	assert.Equal(t, "1460-2172", split.ISSNL)
	assert.Equal(t, "100883501", split.WinnerNLMID)
	assert.Equal(t, "8302415", split.LoserNLMID)
	assert.Equal(t, "British Journal of Rheumatology", split.LoserTitle)

	// Both records keep the contested ISSN documented for the
	// conflict validator.
	assert.Contains(t, byID["NLM-8302415"].AllISSNs, "1460-2172")
}

func TestUnifyISSNReuseSplitSurvivesTitleMerge(t *testing.T) {
	// NLM lists a renamed journal's former name among the current
	// record's alternative titles. The title merge must not use that
	// entry to fold the split-off former journal back in.
	records := []*journals.Journal{
		{
			Source:            sources.NLM,
			Title:             "Rheumatology (Oxford, England)",
			ISSNElectronic:    "1460-2172",
			NLMID:             "100883501",
			AlternativeTitles: []string{"British Journal of Rheumatology"},
		},
		{
			Source:         sources.NLM,
			Title:          "British Journal of Rheumatology",
			ISSNElectronic: "1460-2172",
			NLMID:          "8302415",
		},
	}

	result := unify(t, records)
	require.Len(t, result.Journals, 2, "distinct NLM IDs must not merge")
	require.Len(t, result.ReuseSplits, 1)
	assert.Equal(t, 0, result.Stats.TitleMerged)

	byID := make(map[string]*journals.Journal)
	for _, j := range result.Journals {
		byID[j.UnifiedID] = j
	}
	require.Contains(t, byID, "1460-2172")
	require.Contains(t, byID, "NLM-8302415")
	assert.Equal(t, "100883501", byID["1460-2172"].NLMID)
	assert.Equal(t, "8302415", byID["NLM-8302415"].NLMID)
}

func TestUnifyTitleMergeIntoISSNGroup(t *testing.T) {
	records := []*journals.Journal{
		{Source: sources.DOAJ, Title: "Nature", ISSNPrint: "0028-0836"},
		{Source: sources.JStage, Title: "Nature (Online)", Languages: []string{"en"}},
	}

	result := unify(t, records)
	require.Len(t, result.Journals, 1)

	j := result.Journals[0]
	assert.Equal(t, "0028-0836", j.UnifiedID)
	assert.Equal(t, []string{"en"}, j.Languages, "title-merged record contributes fields")
	assert.Equal(t, []sources.ID{sources.DOAJ, sources.JStage}, j.Sources)
	assert.Equal(t, 1, result.Stats.TitleMerged)
}

func TestUnifyAlternativeTitleMerge(t *testing.T) {
	records := []*journals.Journal{
		{
			Source:            sources.NLM,
			Title:             "Rheumatology (Oxford, England)",
			ISSNElectronic:    "1460-2172",
			AlternativeTitles: []string{"British Journal of Rheumatology"},
		},
		{Source: sources.Wikidata, Title: "British Journal of Rheumatology"},
	}

	result := unify(t, records)
	require.Len(t, result.Journals, 1, "alternative titles index into the title merge")
	assert.Equal(t, "1460-2172", result.Journals[0].UnifiedID)
}

func TestUnifySyntheticIDs(t *testing.T) {
	records := []*journals.Journal{
		{Source: sources.NLM, Title: "Some NLM-only Journal", NLMID: "0045622"},
		{Source: sources.OpenAlex, Title: "OpenAlex-only Venue", OpenAlexID: "https://openalex.org/S137773608"},
		{Source: sources.Crossref, Title: "Annals of Improbable Research"},
		{Source: sources.NLM, Title: "Some Book Series", NLMID: "", MedlineAbbreviation: "978-3-16-148410-0"},
	}

	result := unify(t, records)
	require.Len(t, result.Journals, 4)

	var ids []string
	for _, j := range result.Journals {
		ids = append(ids, j.UnifiedID)
		assert.True(t, journals.IsValidUnifiedID(j.UnifiedID), j.UnifiedID)
	}
	assert.Contains(t, ids, "NLM-45622")
	assert.Contains(t, ids, "OPENALEX-S137773608")
	assert.Contains(t, ids, "TITLE-a4d7cbff") // md5("annals of improbable research")[:8]
	assert.Contains(t, ids, "ISBN-978-3-16-148410-0")

	assert.Equal(t, 1, result.Stats.SyntheticNLM)
	assert.Equal(t, 1, result.Stats.SyntheticOpenAlex)
	assert.Equal(t, 1, result.Stats.SyntheticISBN)
	assert.Equal(t, 1, result.Stats.SyntheticTitle)
}

func TestUnifyDropsUnresolvableRecords(t *testing.T) {
	records := []*journals.Journal{
		{Source: sources.DOAJ, Title: "Nature", ISSNPrint: "0028-0836"},
		{Source: sources.Wikidata}, // no identifier, no title
	}

	result := unify(t, records)
	assert.Len(t, result.Journals, 1)
	assert.Equal(t, 1, result.Stats.RecordsDropped)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "wikidata")
}

func TestUnifyEqualPriorityTieBreak(t *testing.T) {
	// DOAJ and NLM share priority 6; the fixed order puts DOAJ first.
	records := []*journals.Journal{
		{Source: sources.NLM, Title: "Nature Catalog Name", ISSNPrint: "0028-0836"},
		{Source: sources.DOAJ, Title: "Nature", ISSNElectronic: "1476-4687"},
	}

	result := unify(t, records)
	require.Len(t, result.Journals, 1)
	assert.Equal(t, "Nature", result.Journals[0].Title)
	assert.Equal(t, 1, result.Stats.SoftConflicts, "equal-priority disagreement is a soft conflict")
}

func TestUnifySortsOutput(t *testing.T) {
	records := []*journals.Journal{
		{Source: sources.Crossref, Title: "Annals of Improbable Research"},
		{Source: sources.DOAJ, Title: "PLOS ONE", ISSNElectronic: "1932-6203"},
		{Source: sources.DOAJ, Title: "Nature", ISSNPrint: "0028-0836"},
	}

	result := unify(t, records)
	require.Len(t, result.Journals, 3)
	assert.Equal(t, "0028-0836", result.Journals[0].UnifiedID)
	assert.Equal(t, "1932-6203", result.Journals[1].UnifiedID)
	assert.Equal(t, "TITLE-a4d7cbff", result.Journals[2].UnifiedID, "identifier-less records sort last")
}

func TestUnifyProvenanceDisabled(t *testing.T) {
	records := []*journals.Journal{
		{Source: sources.DOAJ, Title: "Nature", ISSNPrint: "0028-0836"},
	}

	result := unify(t, records, WithProvenance(false))
	assert.Nil(t, result.Provenance)
}
