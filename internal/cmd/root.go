// Package cmd implements the journals command line interface.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sibils/journals/internal/config"
	"github.com/sibils/journals/pkg/logging"
)

var (
	configFile string
	verbose    bool
	quiet      bool

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "journals",
	Short: "Unify bibliographic journal records from multiple registries",
	Long: `journals merges journal metadata from bibliographic registries
(DOAJ, NLM, OpenAlex, Crossref and others) into one record per
real-world journal, keyed by ISSN-L where possible.

Merging is deterministic: the same inputs always produce
byte-identical outputs, whatever order the records arrive in.`,
}

// Execute runs the root command with signal-aware context.
func Execute(version, commit, date string) {
	Version, Commit, Date = version, commit, date

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default is ./.journals.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")

	flags.String("records", "", "source records YAML file")
	flags.String("issn-table", "", "ISSN to ISSN-L linking table (TSV)")
	flags.String("authority", "", "authority override file (YAML)")
	flags.String("output-dir", "", "directory for exports")
	flags.Bool("validate-checksums", true, "reject ISSNs failing their check digit")
	flags.Bool("provenance", true, "track and export per-field provenance")
	flags.String("reference-corpus", "", "reference corpus CSV file")
	flags.Bool("filter-unmatched", true, "drop journals the corpus never cites")

	bind := map[string]string{
		"records":            "records",
		"issn_table":         "issn-table",
		"authority_file":     "authority",
		"output_dir":         "output-dir",
		"validate_checksums": "validate-checksums",
		"provenance":         "provenance",
		"reference_corpus":   "reference-corpus",
		"filter_unmatched":   "filter-unmatched",
	}
	for key, flag := range bind {
		cobra.CheckErr(viper.BindPFlag(key, flags.Lookup(flag)))
	}

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = false
}

func initConfig() {
	config.Init(configFile)

	switch {
	case verbose || viper.GetBool("verbose"):
		logging.SetLevel("debug")
	case quiet || viper.GetBool("quiet"):
		logging.SetLevel("warn")
	}
}
