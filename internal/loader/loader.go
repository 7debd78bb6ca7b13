// Package loader reads pipeline inputs: source records from YAML, the
// ISSN-L linking table from TSV and the reference corpus from CSV.
package loader

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/sibils/journals/pkg/errors"
	"github.com/sibils/journals/pkg/journals"
	"github.com/sibils/journals/pkg/logging"
	"github.com/sibils/journals/pkg/refmatch"
)

// Records reads source journal records from a YAML file holding a
// top-level list. Titles are normalized on the way in; records naming
// an unknown source fail the load rather than silently degrading the
// merge order.
func Records(path string) ([]*journals.Journal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var records []*journals.Journal
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}

	for i, rec := range records {
		if rec == nil {
			return nil, errors.NewParseError("yaml", path, fmt.Sprintf("record %d is empty", i), nil)
		}
		if !rec.Source.IsValid() {
			return nil, errors.NewParseError("yaml", path,
				fmt.Sprintf("record %d has unknown source %q", i, rec.Source), nil)
		}
		rec.Title = journals.NormalizeTitle(rec.Title)
		for j, alt := range rec.AlternativeTitles {
			rec.AlternativeTitles[j] = journals.NormalizeTitle(alt)
		}
	}

	logging.Info().Str("file", path).Int("records", len(records)).Msg("records loaded")
	return records, nil
}

// ISSNLTable reads the official ISSN to ISSN-L linking table from a
// tab-separated file. Comment lines and the header row are skipped;
// malformed rows fail the load.
func ISSNLTable(path string) (*journals.ISSNLTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	table := make(map[string]string)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") || strings.HasPrefix(text, "ISSN") {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) < 2 {
			return nil, &errors.ParseError{
				Format: "tsv", File: path, Line: line,
				Message: "expected two tab-separated columns",
			}
		}
		issn := journals.NormalizeISSN(fields[0])
		issnL := journals.NormalizeISSN(fields[1])
		if issn == "" || issnL == "" {
			return nil, &errors.ParseError{
				Format: "tsv", File: path, Line: line,
				Message: fmt.Sprintf("malformed ISSN pair %q -> %q", fields[0], fields[1]),
			}
		}
		table[issn] = issnL
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	logging.Info().Str("file", path).Int("links", len(table)).Msg("ISSN-L table loaded")
	return journals.NewISSNLTable(table), nil
}

// Corpus reads the reference corpus from a CSV file with columns
// journal, medline_ta and nlm_id.
func Corpus(path string) (*refmatch.Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.WrapParse("csv", path, err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"journal", "medline_ta", "nlm_id"} {
		if _, ok := cols[required]; !ok {
			return nil, errors.NewParseError("csv", path,
				fmt.Sprintf("missing column %q", required), nil)
		}
	}

	var entries []refmatch.Entry
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WrapParse("csv", path, err)
		}
		entries = append(entries, refmatch.Entry{
			Title:        column(row, cols["journal"]),
			Abbreviation: column(row, cols["medline_ta"]),
			NLMID:        column(row, cols["nlm_id"]),
		})
	}

	logging.Info().Str("file", path).Int("entries", len(entries)).Msg("reference corpus loaded")
	return refmatch.NewCorpus(entries), nil
}

// column returns the trimmed cell at index i, or empty when the row
// is short.
func column(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
