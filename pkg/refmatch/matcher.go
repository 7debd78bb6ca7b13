package refmatch

import (
	"sort"
	"strings"

	"github.com/sibils/journals/pkg/journals"
	"github.com/sibils/journals/pkg/logging"
	"github.com/sibils/journals/pkg/sources"
)

// Phase identifies which cascade step produced a match.
type Phase int

// Cascade phases, strongest evidence first.
const (
	PhaseNone Phase = iota
	PhaseAbbreviation
	PhaseNLMID
	PhaseTitle
	PhaseAltTitle
)

// String returns the phase name used in reports.
func (p Phase) String() string {
	switch p {
	case PhaseAbbreviation:
		return "abbreviation"
	case PhaseNLMID:
		return "nlm_id"
	case PhaseTitle:
		return "title"
	case PhaseAltTitle:
		return "alternative_title"
	default:
		return "none"
	}
}

// Outcome records the match decision for one unified journal.
type Outcome struct {
	UnifiedID string
	Matched   bool
	Phase     Phase
}

// UnmatchedEntry is a corpus identifier no unified record matched.
type UnmatchedEntry struct {
	Kind  string // "title", "abbreviation" or "nlm_id"
	Value string
}

// Stats summarizes one matching run.
type Stats struct {
	JournalsIn         int `yaml:"journals_in"`
	MatchedTotal       int `yaml:"matched_total"`
	ByAbbreviation     int `yaml:"by_abbreviation"`
	ByNLMID            int `yaml:"by_nlm_id"`
	ByTitle            int `yaml:"by_title"`
	ByAltTitle         int `yaml:"by_alternative_title"`
	Removed            int `yaml:"removed"`
	NewRecords         int `yaml:"new_records"`
	ExpandedTitles     int `yaml:"expanded_titles"`
	GeneratedVariants  int `yaml:"generated_variants"`
	SkippedInAltTitles int `yaml:"skipped_in_alt_titles"`
}

// Result holds the matched (annotated) journals, the journals removed
// for lacking corpus coverage, and corpus-only entries promoted to
// new records. Matched and NewRecords together form the filtered
// dataset.
type Result struct {
	Matched    []*journals.Journal
	Removed    []*journals.Journal
	NewRecords []*journals.Journal
	Outcomes   []Outcome
	Unmatched  []UnmatchedEntry
	Stats      Stats
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithPhases enables or disables individual cascade phases. All four
// are enabled by default.
func WithPhases(abbreviation, nlmID, title, altTitle bool) Option {
	return func(m *Matcher) {
		m.matchAbbreviation = abbreviation
		m.matchNLMID = nlmID
		m.matchTitle = title
		m.matchAltTitle = altTitle
	}
}

// WithAbbreviationExpansion toggles expanding corpus abbreviations to
// full titles via the unified dataset's own abbreviation column.
func WithAbbreviationExpansion(enabled bool) Option {
	return func(m *Matcher) { m.expandAbbreviations = enabled }
}

// WithTitleVariants toggles "Journal of X" / "X" variant generation.
func WithTitleVariants(enabled bool) Option {
	return func(m *Matcher) { m.generateVariants = enabled }
}

// Matcher runs the reference cascade. Safe to reuse across runs.
type Matcher struct {
	corpus              *Corpus
	matchAbbreviation   bool
	matchNLMID          bool
	matchTitle          bool
	matchAltTitle       bool
	expandAbbreviations bool
	generateVariants    bool
}

// New creates a Matcher over a corpus with every phase enabled.
func New(corpus *Corpus, opts ...Option) *Matcher {
	m := &Matcher{
		corpus:              corpus,
		matchAbbreviation:   true,
		matchNLMID:          true,
		matchTitle:          true,
		matchAltTitle:       true,
		expandAbbreviations: true,
		generateVariants:    true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// run holds per-invocation state so a Matcher can be reused. Title
// sets start as copies of the corpus indexes and grow with expanded
// abbreviations and generated variants.
type run struct {
	titleKeys      map[string]bool
	abbrevToTitles map[string][]string

	matchedTitles  map[string]bool
	matchedAbbrevs map[string]bool
	matchedNLMIDs  map[string]bool
}

// Match runs the cascade over unified journals. Each journal is tried
// against the corpus by MEDLINE abbreviation, then NLM ID, then
// normalized title, then alternative titles; the first hit wins.
// Matched journals are annotated in place: the reference source tag
// is added to their sources and the corpus's original titles for the
// matching keys become alternative titles. Both annotations
// deduplicate, so rerunning over already-annotated journals is a
// no-op. Corpus entries nothing matched are returned as new minimal
// records.
func (m *Matcher) Match(js []*journals.Journal) *Result {
	result := &Result{}
	result.Stats.JournalsIn = len(js)

	r := &run{
		titleKeys:      copySet(m.corpus.titleKeys),
		abbrevToTitles: copyMultimap(m.corpus.abbrevToTitles),
		matchedTitles:  make(map[string]bool),
		matchedAbbrevs: make(map[string]bool),
		matchedNLMIDs:  make(map[string]bool),
	}
	if m.expandAbbreviations {
		result.Stats.ExpandedTitles = m.expandCorpusAbbreviations(r, js)
	}
	if m.generateVariants {
		result.Stats.GeneratedVariants = m.addTitleVariants(r)
	}

	for _, j := range js {
		phase, titlesToAdd := m.matchJournal(r, j)
		outcome := Outcome{UnifiedID: j.UnifiedID, Matched: phase != PhaseNone, Phase: phase}
		result.Outcomes = append(result.Outcomes, outcome)

		if phase == PhaseNone {
			result.Removed = append(result.Removed, j)
			continue
		}

		annotate(j, m.corpus, titlesToAdd)
		result.Matched = append(result.Matched, j)
		switch phase {
		case PhaseAbbreviation:
			result.Stats.ByAbbreviation++
		case PhaseNLMID:
			result.Stats.ByNLMID++
		case PhaseTitle:
			result.Stats.ByTitle++
		case PhaseAltTitle:
			result.Stats.ByAltTitle++
		}
	}
	result.Stats.MatchedTotal = len(result.Matched)
	result.Stats.Removed = len(result.Removed)

	m.collectNewRecords(r, result)
	m.collectUnmatched(r, result)

	logging.Info().
		Int("journals_in", result.Stats.JournalsIn).
		Int("matched", result.Stats.MatchedTotal).
		Int("removed", result.Stats.Removed).
		Int("new_records", result.Stats.NewRecords).
		Msg("reference matching complete")
	return result
}

// matchJournal applies the cascade to a single journal. It returns
// the winning phase and the corpus title keys whose original titles
// should be soft-merged into the journal.
func (m *Matcher) matchJournal(r *run, j *journals.Journal) (Phase, []string) {
	if m.matchAbbreviation && j.MedlineAbbreviation != "" && m.corpus.abbreviations[j.MedlineAbbreviation] {
		r.matchedAbbrevs[j.MedlineAbbreviation] = true
		titles := r.abbrevToTitles[j.MedlineAbbreviation]
		markMatched(r.matchedTitles, titles)
		return PhaseAbbreviation, titles
	}

	if m.matchNLMID && j.NLMID != "" {
		nlmID := journals.NormalizeNLMID(j.NLMID)
		if m.corpus.nlmIDs[nlmID] {
			r.matchedNLMIDs[nlmID] = true
			titles := m.corpus.nlmToTitles[nlmID]
			markMatched(r.matchedTitles, titles)
			return PhaseNLMID, titles
		}
	}

	if m.matchTitle {
		if key := journals.TitleKey(j.Title); key != "" && r.titleKeys[key] {
			r.matchedTitles[key] = true
			markMatched(r.matchedAbbrevs, m.corpus.titleToAbbrevs[key])
			return PhaseTitle, nil
		}
	}

	if m.matchAltTitle {
		for _, alt := range j.AlternativeTitles {
			key := journals.TitleKey(alt)
			if key == "" || !r.titleKeys[key] {
				continue
			}
			r.matchedTitles[key] = true
			markMatched(r.matchedAbbrevs, m.corpus.titleToAbbrevs[key])
			return PhaseAltTitle, nil
		}
	}

	return PhaseNone, nil
}

// expandCorpusAbbreviations widens the corpus title set using the
// unified dataset's abbreviation-to-title mapping: a corpus row whose
// abbreviation the unified data can expand also matches the expanded
// title.
func (m *Matcher) expandCorpusAbbreviations(r *run, js []*journals.Journal) int {
	abbrevToTitle := make(map[string]string)
	for _, j := range js {
		abbrKey := journals.TitleKey(j.MedlineAbbreviation)
		titleKey := journals.TitleKey(j.Title)
		if abbrKey == "" || titleKey == "" {
			continue
		}
		if existing, ok := abbrevToTitle[abbrKey]; !ok || titleKey < existing {
			abbrevToTitle[abbrKey] = titleKey
		}
	}

	expanded := 0
	for _, abbrev := range sortedSet(m.corpus.abbreviations) {
		abbrKey := journals.TitleKey(abbrev)
		if abbrKey == "" {
			continue
		}
		titleKey, ok := abbrevToTitle[abbrKey]
		if !ok || r.titleKeys[titleKey] {
			continue
		}
		r.titleKeys[titleKey] = true
		r.abbrevToTitles[abbrev] = appendUnique(r.abbrevToTitles[abbrev], titleKey)
		expanded++
	}
	return expanded
}

// addTitleVariants grows the run's title set with safe
// "Journal of X" / "X" counterparts of corpus titles.
func (m *Matcher) addTitleVariants(r *run) int {
	base := copySet(r.titleKeys)
	added := 0
	for _, key := range sortedSet(base) {
		for _, variant := range titleVariants(key, base) {
			if !r.titleKeys[variant] {
				r.titleKeys[variant] = true
				added++
			}
		}
	}
	return added
}

// collectNewRecords promotes corpus entries no journal matched into
// minimal records so the filtered dataset still covers every journal
// the reference service cites. Entries whose title already appears
// among matched journals' alternative titles are renamed journals,
// not new ones, and are skipped.
func (m *Matcher) collectNewRecords(r *run, result *Result) {
	altTitleKeys := make(map[string]bool)
	for _, j := range result.Matched {
		for _, alt := range j.AlternativeTitles {
			if key := journals.TitleKey(alt); key != "" {
				altTitleKeys[key] = true
			}
		}
	}

	seenTitleKeys := make(map[string]bool)
	var records []*journals.Journal
	for _, e := range m.corpus.entries {
		key := journals.TitleKey(e.Title)
		if key != "" && r.matchedTitles[key] {
			continue
		}
		if e.Abbreviation != "" && r.matchedAbbrevs[e.Abbreviation] {
			continue
		}
		if e.NLMID != "" && r.matchedNLMIDs[e.NLMID] {
			continue
		}
		if key != "" && altTitleKeys[key] {
			result.Stats.SkippedInAltTitles++
			continue
		}
		if key != "" {
			if seenTitleKeys[key] {
				continue
			}
			seenTitleKeys[key] = true
		}

		var unifiedID string
		switch {
		case e.NLMID != "":
			unifiedID = journals.MakeNLMIdentifier(e.NLMID)
		case journals.IsISBN(e.Abbreviation):
			unifiedID = journals.MakeISBNIdentifier(e.Abbreviation)
		case e.Title != "":
			unifiedID = journals.MakeTitleIdentifier(journals.TitleKey(e.Title))
		default:
			continue
		}

		records = append(records, &journals.Journal{
			UnifiedID:           unifiedID,
			Title:               e.Title,
			MedlineAbbreviation: e.Abbreviation,
			NLMID:               e.NLMID,
			Source:              sources.SIBiLS,
			Sources:             []sources.ID{sources.SIBiLS},
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].UnifiedID < records[j].UnifiedID
	})
	result.NewRecords = records
	result.Stats.NewRecords = len(records)
}

// collectUnmatched reports corpus identifiers with no match, for the
// coverage report. Generated variants and expanded titles are
// excluded: only identifiers actually present in the corpus count.
func (m *Matcher) collectUnmatched(r *run, result *Result) {
	for _, title := range sortedSet(m.corpus.titleKeys) {
		if !r.matchedTitles[title] {
			result.Unmatched = append(result.Unmatched, UnmatchedEntry{Kind: "title", Value: title})
		}
	}
	for _, abbrev := range sortedSet(m.corpus.abbreviations) {
		if !r.matchedAbbrevs[abbrev] {
			result.Unmatched = append(result.Unmatched, UnmatchedEntry{Kind: "abbreviation", Value: abbrev})
		}
	}
	for _, nlmID := range sortedSet(m.corpus.nlmIDs) {
		if !r.matchedNLMIDs[nlmID] {
			result.Unmatched = append(result.Unmatched, UnmatchedEntry{Kind: "nlm_id", Value: nlmID})
		}
	}
}

// annotate soft-merges corpus knowledge into a matched journal: the
// reference source tag joins the sources list and original corpus
// titles for the matched keys become alternative titles. The
// journal's own title is never overwritten.
func annotate(j *journals.Journal, corpus *Corpus, titleKeys []string) {
	j.Sources = addSource(j.Sources, sources.SIBiLS)

	ownKey := journals.TitleKey(j.Title)
	for _, key := range titleKeys {
		for _, original := range corpus.originals[key] {
			if journals.TitleKey(original) == ownKey && original == j.Title {
				continue
			}
			j.AlternativeTitles = appendTitleUnique(j.AlternativeTitles, original)
		}
	}
}

func addSource(list []sources.ID, id sources.ID) []sources.ID {
	for _, existing := range list {
		if existing == id {
			return list
		}
	}
	list = append(list, id)
	sort.Slice(list, func(i, j int) bool {
		return sources.Rank(list[i]) < sources.Rank(list[j])
	})
	return list
}

func appendTitleUnique(list []string, title string) []string {
	lower := strings.ToLower(title)
	for _, existing := range list {
		if strings.ToLower(existing) == lower {
			return list
		}
	}
	return append(list, title)
}

func markMatched(set map[string]bool, values []string) {
	for _, v := range values {
		set[v] = true
	}
}

func copySet(src map[string]bool) map[string]bool {
	dst := make(map[string]bool, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func copyMultimap(src map[string][]string) map[string][]string {
	dst := make(map[string][]string, len(src))
	for k, v := range src {
		dst[k] = append([]string(nil), v...)
	}
	return dst
}

func sortedSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
