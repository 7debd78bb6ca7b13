package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sibils/journals/internal/export"
	"github.com/sibils/journals/internal/loader"
	"github.com/sibils/journals/pkg/errors"
	"github.com/sibils/journals/pkg/journals"
	"github.com/sibils/journals/pkg/refmatch"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Unify records, then filter against a reference corpus",
	Long: `Match runs the full unify pipeline and then matches the unified
dataset against a reference corpus of (title, abbreviation, NLM ID)
tuples. Journals the corpus never cites are filtered out; corpus
entries no journal matched are added as new minimal records.

Additional outputs written to the output directory:
  filtered.csv           matched journals plus corpus-only records
  removed.csv            journals filtered out
  corpus_unmatched.csv   corpus identifiers nothing matched
  match_stats.yaml       matching summary`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runMatch(cmd)
	},
}

func runMatch(cmd *cobra.Command) error {
	outcome, err := runUnify(cmd.Context())
	if err != nil {
		return err
	}
	cfg := outcome.cfg

	if cfg.ReferenceCorpus == "" {
		return &errors.ConfigError{Component: "match", Message: "reference_corpus is required"}
	}
	corpus, err := loader.Corpus(cfg.ReferenceCorpus)
	if err != nil {
		return err
	}

	matcher := refmatch.New(corpus, refmatch.WithPhases(
		cfg.Phases.Abbreviation, cfg.Phases.NLMID,
		cfg.Phases.Title, cfg.Phases.AltTitle,
	))
	result := matcher.Match(outcome.result.Journals)

	filtered := outcome.result.Journals
	if cfg.FilterUnmatched {
		filtered = append([]*journals.Journal{}, result.Matched...)
		filtered = append(filtered, result.NewRecords...)
	}

	out := func(name string) string { return filepath.Join(cfg.OutputDir, name) }
	if err := export.Unified(out("filtered.csv"), filtered); err != nil {
		return err
	}
	if err := export.Unified(out("removed.csv"), result.Removed); err != nil {
		return err
	}
	if err := export.Unmatched(out("corpus_unmatched.csv"), result.Unmatched); err != nil {
		return err
	}
	return export.Stats(out("match_stats.yaml"), result.Stats)
}

func init() {
	rootCmd.AddCommand(matchCmd)
}
