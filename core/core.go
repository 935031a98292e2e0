// Package core has the dataset-construction pipeline: fetching, diffing, filtering and scanning.
package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/huangsam/xssbench/internal/contract"
	"github.com/huangsam/xssbench/internal/outwriter"
	"github.com/huangsam/xssbench/schema"
	log "github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// ExecutorFunc defines the function signature for executing pipeline entry points.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// ExecuteBuild reads the batch document, provisions the ruleset and builds findings.
// It serves as the main entry point for the 'build' command.
func ExecuteBuild(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	rows, err := schema.ReadBatch(cfg.InputFile)
	if err != nil {
		return err
	}

	rulesetPath, err := filepath.Abs(cfg.RulesetFile)
	if err != nil {
		return err
	}
	if !cfg.SkipRulesetDownload {
		if rulesetPath, err = EnsureRuleset(ctx, nil, cfg.RulesetURL, cfg.RulesetFile); err != nil {
			return fmt.Errorf("cannot provision ruleset: %w", err)
		}
	} else if _, err := os.Stat(rulesetPath); err != nil {
		log.WithField("ruleset", rulesetPath).Warn("Ruleset file not found; scans will fail")
	}

	client := contract.NewLocalGitClient()
	fetcher, err := NewFetcher(client, cfg.DownloadDir, cfg.CloneTimeout, cfg.ExcludeRepos)
	if err != nil {
		return err
	}

	p := &Pipeline{
		Git:        client,
		Scanner:    contract.NewSemgrepScanner(contract.NewExecRunner(), cfg.SemgrepBinary, rulesetPath, cfg.SemgrepArgs),
		Store:      mgr.GetFindingStore(),
		Fetcher:    fetcher,
		Extensions: NewExtensionSet(cfg.SupportedExtensions),
		Mode:       cfg.ScanMode,
		Progress:   newProgress(cfg, len(rows)),
	}

	summary, err := BuildDataset(ctx, p, rows)
	if perr := outwriter.NewOutWriter().WriteBuildSummary(summary, cfg); perr != nil {
		return perr
	}
	return err
}

// ExecuteHarvest builds a batch document from raw commit documents.
// It serves as the main entry point for the 'harvest' command.
func ExecuteHarvest(ctx context.Context, cfg *contract.Config, _ contract.StoreManager) error {
	client := contract.NewLocalGitClient()
	fetcher, err := NewFetcher(client, cfg.DownloadDir, cfg.CloneTimeout, cfg.ExcludeRepos)
	if err != nil {
		return err
	}

	rows, err := Harvest(ctx, client, fetcher, cfg.HarvestDir, !cfg.NoDownload)
	if err != nil {
		return err
	}

	out := cfg.HarvestOutputFile()
	if err := schema.WriteBatch(out, rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	fmt.Printf("Wrote %d rows to %s\n", len(rows), out)
	return nil
}

// newProgress returns a progress bar on stderr when enabled and interactive.
func newProgress(cfg *contract.Config, total int) contract.ProgressReporter {
	if !cfg.Progress || !term.IsTerminal(int(os.Stderr.Fd())) {
		return contract.NoopProgressReporter{}
	}
	return contract.NewBarProgressReporter(os.Stderr, total, "Building dataset")
}
