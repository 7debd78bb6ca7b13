package cmd

import "github.com/spf13/cobra"

var unifyCmd = &cobra.Command{
	Use:   "unify",
	Short: "Merge source records into one unified record per journal",
	Long: `Unify merges journal records from all configured registries into a
unified dataset keyed by ISSN-L, then audits the result for ISSNs
claimed by more than one journal.

Outputs written to the output directory:
  unified.csv                the unified dataset
  issn_conflicts.csv         ISSNs claimed by multiple unified records
  issn_l_discrepancies.csv   records whose print/electronic ISSNs link
                             to different ISSN-L values
  issn_reuse.csv             groups split over conflicting NLM IDs
  provenance.yaml            per-field source attribution
  unify_stats.yaml           run summary`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := runUnify(cmd.Context())
		return err
	},
}

func init() {
	rootCmd.AddCommand(unifyCmd)
}
