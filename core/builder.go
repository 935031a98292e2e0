package core

import (
	"context"
	"os"

	"github.com/huangsam/xssbench/schema"
)

// FindingBuilder builds one finding from a batch row.
type FindingBuilder struct {
	p        *Pipeline
	row      schema.BatchRow
	repoPath string
	result   *schema.Finding

	// Internal data collected during the build process
	files      schema.FileListResult
	scan       schema.TextResult
	repoExists bool
}

// NewFindingBuilder is the starting point for building a finding.
func NewFindingBuilder(p *Pipeline, row schema.BatchRow) *FindingBuilder {
	return &FindingBuilder{
		p:        p,
		row:      row,
		repoPath: p.Fetcher.LocalPath(row.Repository),
		result: &schema.Finding{
			RepoURL:        schema.RepoURLFor(row.Repository),
			RepoMessage:    row.Message,
			FixCommit:      row.Commit,
			PreviousCommit: row.Baseline(),
			TriageStatus:   schema.Unreviewed,
		},
	}
}

// FetchRepository clones the repository if it is not already available.
// A failed fetch is not fatal; later steps degrade to failure markers.
func (b *FindingBuilder) FetchRepository(ctx context.Context) *FindingBuilder {
	b.p.Fetcher.Fetch(ctx, b.row.Repository)
	_, err := os.Stat(b.repoPath)
	b.repoExists = err == nil
	return b
}

// ExtractDiff records the diff from the baseline to the fix commit.
func (b *FindingBuilder) ExtractDiff(ctx context.Context) *FindingBuilder {
	if !b.repoExists {
		b.result.DiffText = schema.FailDiffRun.Sentinel()
		b.files = schema.FileListResult{Failure: schema.FailFileListRun}
		return b
	}
	b.result.DiffText = DiffText(ctx, b.p.Git, b.repoPath, b.row.Baseline(), b.row.Commit).Value()
	b.files = ChangedFiles(ctx, b.p.Git, b.repoPath, b.row.Baseline(), b.row.Commit)
	return b
}

// RunScan scans the pre-fix code, gated by the language-support filter.
func (b *FindingBuilder) RunScan(ctx context.Context) *FindingBuilder {
	switch {
	case b.p.Mode == schema.ChangedFilesScan:
		if !b.files.OK() || !LangSupported(b.files.Files, b.p.Extensions) {
			b.scan = schema.TextFailure(schema.FailNotSupported)
			break
		}
		b.scan = ScanChangedFiles(ctx, b.p.Git, b.p.Scanner, b.repoPath, b.row.Baseline(), b.files.Files)
	case !b.repoExists:
		b.scan = schema.TextFailure(schema.FailScanRun)
	default:
		if b.files.OK() && !LangSupported(b.files.Files, b.p.Extensions) {
			b.scan = schema.TextFailure(schema.FailNotSupported)
			break
		}
		b.scan = ScanTree(ctx, b.p.Git, b.p.Scanner, b.repoPath, b.row.Baseline())
	}
	b.result.ScanOutput = b.scan.Value()
	loggerFrom(ctx).WithField("scan", b.scan.Failure.String()).Debug("Scan finished")
	return b
}

// Suppressed reports whether the finding must be discarded instead of stored.
func (b *FindingBuilder) Suppressed() bool {
	return b.scan.Failure == schema.FailNotSupported
}

// Build finalizes the construction and returns the completed finding.
func (b *FindingBuilder) Build() schema.Finding {
	return *b.result
}
