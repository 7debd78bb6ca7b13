// Package export writes pipeline outputs: the unified dataset and the
// conflict, discrepancy and coverage reports, all as CSV with stable
// column and row order so repeated runs are byte-identical.
package export

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/sibils/journals/pkg/errors"
	"github.com/sibils/journals/pkg/journals"
	"github.com/sibils/journals/pkg/logging"
	"github.com/sibils/journals/pkg/refmatch"
	"github.com/sibils/journals/pkg/sources"
	"github.com/sibils/journals/pkg/unifier"
	"github.com/sibils/journals/pkg/validate"
)

// listSeparator joins multi-valued cells in CSV exports.
const listSeparator = "|"

var unifiedHeader = []string{
	"unified_id", "title", "issn_l", "issn_print", "issn_electronic",
	"all_issns", "nlm_id", "openalex_id", "wikidata_id",
	"medline_abbreviation", "alternative_titles", "publisher", "country",
	"source_type", "is_oa", "is_medline_indexed", "is_pmc_indexed",
	"pmc_agreement_status", "apc_amount", "apc_currency", "journal_url",
	"license", "license_url", "review_process", "review_process_url",
	"copyright_author", "copyright_url", "plagiarism_screening",
	"preservation_services", "deposit_policy", "predecessor_nlm_ids",
	"successor_nlm_ids", "subjects", "languages", "works_count",
	"cited_by_count", "h_index", "sources",
}

// Unified writes the unified dataset to a CSV file. List fields are
// pipe-joined; row order is the input order, which the unifier has
// already made deterministic.
func Unified(path string, js []*journals.Journal) error {
	return writeCSV(path, unifiedHeader, len(js), func(i int) []string {
		j := js[i]
		return []string{
			j.UnifiedID, j.Title, j.ISSNL, j.ISSNPrint, j.ISSNElectronic,
			strings.Join(j.AllISSNs, listSeparator), j.NLMID, j.OpenAlexID,
			j.WikidataID, j.MedlineAbbreviation,
			strings.Join(j.AlternativeTitles, listSeparator), j.Publisher,
			j.Country, j.SourceType, boolCell(j.IsOA),
			boolCell(j.IsMedlineIndexed), boolCell(j.IsPMCIndexed),
			j.PMCAgreementStatus, floatCell(j.APCAmount), j.APCCurrency,
			j.JournalURL, j.License, j.LicenseURL,
			strings.Join(j.ReviewProcess, listSeparator), j.ReviewProcessURL,
			boolCell(j.CopyrightAuthor), j.CopyrightURL,
			boolCell(j.PlagiarismScreening),
			strings.Join(j.PreservationServices, listSeparator),
			strings.Join(j.DepositPolicy, listSeparator),
			strings.Join(j.PredecessorNLMIDs, listSeparator),
			strings.Join(j.SuccessorNLMIDs, listSeparator),
			strings.Join(j.Subjects, listSeparator),
			strings.Join(j.Languages, listSeparator),
			intCell(j.WorksCount), intCell(j.CitedByCount), intCell(j.HIndex),
			joinSources(j.Sources),
		}
	})
}

// Conflicts writes the shared-ISSN conflict report. One row per
// (contested ISSN, losing claimant) pair.
func Conflicts(path string, conflicts []validate.ConflictRecord) error {
	header := []string{
		"issn", "winner_unified_id", "winner_title", "winner_nlm_id",
		"loser_unified_id", "loser_title", "loser_nlm_id",
	}
	var rows [][]string
	for _, c := range conflicts {
		for _, loser := range c.Losers {
			rows = append(rows, []string{
				c.ISSN, c.Winner.UnifiedID, c.Winner.Title, c.Winner.NLMID,
				loser.UnifiedID, loser.Title, loser.NLMID,
			})
		}
	}
	return writeCSV(path, header, len(rows), func(i int) []string { return rows[i] })
}

// Discrepancies writes the ISSN-L consistency report: records whose
// print and electronic ISSNs link to different ISSN-L values.
func Discrepancies(path string, discs []unifier.ISSNLDiscrepancy) error {
	header := []string{
		"source", "title", "issn_print", "issn_electronic",
		"issn_l_print", "issn_l_electronic",
	}
	return writeCSV(path, header, len(discs), func(i int) []string {
		d := discs[i]
		return []string{
			d.Source.String(), d.Title, d.ISSNPrint, d.ISSNElectronic,
			d.ISSNLPrint, d.ISSNLElectronic,
		}
	})
}

// ReuseSplits writes the ISSN-reuse report: ISSN-L groups split
// because the same ISSN covered distinct NLM journals.
func ReuseSplits(path string, splits []unifier.ReuseSplit) error {
	header := []string{"issn_l", "winner_nlm_id", "loser_nlm_id", "loser_title"}
	return writeCSV(path, header, len(splits), func(i int) []string {
		s := splits[i]
		return []string{s.ISSNL, s.WinnerNLMID, s.LoserNLMID, s.LoserTitle}
	})
}

// Unmatched writes corpus identifiers no unified record matched.
func Unmatched(path string, entries []refmatch.UnmatchedEntry) error {
	header := []string{"type", "value"}
	return writeCSV(path, header, len(entries), func(i int) []string {
		return []string{entries[i].Kind, entries[i].Value}
	})
}

// Stats writes a run summary (any stats struct) as YAML.
func Stats(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return errors.WrapParse("yaml", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

func writeCSV(path string, header []string, rows int, row func(int) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return errors.WrapIO("write", path, err)
	}
	for i := 0; i < rows; i++ {
		if err := w.Write(row(i)); err != nil {
			return errors.WrapIO("write", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.WrapIO("write", path, err)
	}
	if err := f.Close(); err != nil {
		return errors.WrapIO("close", path, err)
	}

	logging.Info().Str("file", path).Int("rows", rows).Msg("export written")
	return nil
}

func boolCell(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}

func intCell(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func floatCell(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func joinSources(ids []sources.ID) string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return strings.Join(out, listSeparator)
}
