package core

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/xssbench/internal/contract"
	"github.com/huangsam/xssbench/schema"
	log "github.com/sirupsen/logrus"
)

// Pipeline holds the collaborators of a dataset build.
type Pipeline struct {
	Git        contract.GitClient
	Scanner    contract.Scanner
	Store      contract.FindingStore
	Fetcher    *Fetcher
	Extensions ExtensionSet
	Mode       schema.ScanMode
	Progress   contract.ProgressReporter
}

// BuildDataset turns every row into a stored finding, one row at a time.
// Row failures are logged and counted; only cancellation stops the batch early.
func BuildDataset(ctx context.Context, p *Pipeline, rows []schema.BatchRow) (schema.BuildSummary, error) {
	start := time.Now()
	summary := schema.BuildSummary{RunID: uuid.NewString(), Total: len(rows)}
	runLog := log.WithField("run_id", summary.RunID)
	ctx = withLogger(ctx, runLog)

	progress := p.Progress
	if progress == nil || shouldSuppressOutput(ctx) {
		progress = contract.NoopProgressReporter{}
	}
	progress.SetTotal(len(rows))
	defer progress.Finish()

	runLog.WithFields(log.Fields{"rows": len(rows), "mode": p.Mode}).Info("Starting dataset build")

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			summary.Duration = time.Since(start)
			runLog.WithError(err).Warn("Dataset build interrupted")
			return summary, err
		}
		switch processRow(ctx, p, row) {
		case rowCreated:
			summary.Created++
		case rowSkipped:
			summary.Skipped++
		case rowSuppressed:
			summary.Suppressed++
		case rowErrored:
			summary.Errored++
		}
		progress.Increment()
	}

	summary.Duration = time.Since(start)
	runLog.WithFields(log.Fields{
		"created":    summary.Created,
		"skipped":    summary.Skipped,
		"suppressed": summary.Suppressed,
		"errored":    summary.Errored,
	}).Info("Dataset build finished")
	return summary, nil
}

type rowOutcome int

const (
	rowCreated rowOutcome = iota
	rowSkipped
	rowSuppressed
	rowErrored
)

// processRow runs the pipeline for one row.
func processRow(ctx context.Context, p *Pipeline, row schema.BatchRow) rowOutcome {
	rowLog := loggerFrom(ctx).WithFields(log.Fields{"repo": row.Repository, "commit": row.Commit})
	ctx = withLogger(ctx, rowLog)

	repoURL := schema.RepoURLFor(row.Repository)
	exists, err := p.Store.Exists(ctx, repoURL, row.Commit)
	if err != nil {
		rowLog.WithError(err).Error("Failed to check for an existing finding")
		return rowErrored
	}
	if exists {
		rowLog.Info("Finding already exists, skipping")
		return rowSkipped
	}

	b := NewFindingBuilder(p, row).
		FetchRepository(ctx).
		ExtractDiff(ctx).
		RunScan(ctx)
	if b.Suppressed() {
		rowLog.Info("Languages not supported by the ruleset, discarding")
		return rowSuppressed
	}

	finding := b.Build()
	id, err := p.Store.Create(ctx, &finding)
	if errors.Is(err, contract.ErrDuplicateFinding) {
		rowLog.Info("Finding was stored concurrently, skipping")
		return rowSkipped
	}
	if err != nil {
		rowLog.WithError(err).Error("Failed to store finding")
		return rowErrored
	}
	rowLog.WithField("id", id).Info("Stored finding")
	return rowCreated
}
