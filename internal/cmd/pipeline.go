package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/sibils/journals/internal/config"
	"github.com/sibils/journals/internal/export"
	"github.com/sibils/journals/internal/loader"
	"github.com/sibils/journals/pkg/authority"
	"github.com/sibils/journals/pkg/errors"
	"github.com/sibils/journals/pkg/provenance"
	"github.com/sibils/journals/pkg/unifier"
	"github.com/sibils/journals/pkg/validate"
)

// unifyOutcome carries everything the unify stage produced, for the
// match stage and the exporters.
type unifyOutcome struct {
	result    *unifier.Result
	conflicts []validate.ConflictRecord
	cfg       *config.Config
}

// runUnify loads inputs, runs the merge engine and the shared-ISSN
// validator, and writes the unified dataset plus reports.
func runUnify(ctx context.Context) (*unifyOutcome, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	records, err := loader.Records(cfg.RecordsFile)
	if err != nil {
		return nil, err
	}
	table, err := loader.ISSNLTable(cfg.ISSNLTableFile)
	if err != nil {
		return nil, err
	}

	authorities := authority.New()
	if cfg.AuthorityFile != "" {
		authorities, err = authority.Load(cfg.AuthorityFile)
		if err != nil {
			return nil, err
		}
	}

	u := unifier.New(
		unifier.WithAuthorities(authorities),
		unifier.WithChecksumValidation(cfg.ValidateChecksums),
		unifier.WithProvenance(cfg.Provenance),
	)
	result, err := u.Unify(ctx, records, table)
	if err != nil {
		return nil, err
	}

	conflicts := validate.SharedISSNs(result.Journals, authorities)

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, errors.WrapIO("create", cfg.OutputDir, err)
	}
	out := func(name string) string { return filepath.Join(cfg.OutputDir, name) }

	if err := export.Unified(out("unified.csv"), result.Journals); err != nil {
		return nil, err
	}
	if err := export.Conflicts(out("issn_conflicts.csv"), conflicts); err != nil {
		return nil, err
	}
	if err := export.Discrepancies(out("issn_l_discrepancies.csv"), result.Discrepancies); err != nil {
		return nil, err
	}
	if err := export.ReuseSplits(out("issn_reuse.csv"), result.ReuseSplits); err != nil {
		return nil, err
	}
	if err := export.Stats(out("unify_stats.yaml"), result.Stats); err != nil {
		return nil, err
	}
	if cfg.Provenance {
		if err := provenance.Save(out("provenance.yaml"), result.Provenance); err != nil {
			return nil, err
		}
	}

	return &unifyOutcome{result: result, conflicts: conflicts, cfg: cfg}, nil
}
