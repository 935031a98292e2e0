// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"errors"

	"github.com/huangsam/xssbench/schema"
)

// Store errors shared by every backend.
var (
	ErrFindingNotFound  = errors.New("finding not found")
	ErrDuplicateFinding = errors.New("finding already exists for this repository and fix commit")
)

// Runner executes an external program in an explicit working directory.
// This allows the pipeline to be tested without git or semgrep installed.
type Runner interface {
	// Run executes name with args inside dir. A failing process is reported
	// through ProcResult, never through a panic.
	Run(ctx context.Context, dir string, name string, args ...string) ProcResult
}

// GitClient defines the git operations the pipeline needs.
type GitClient interface {
	// --- Generic / Low-Level ---

	// Run executes a git command inside repoPath.
	Run(ctx context.Context, repoPath string, args ...string) ProcResult

	// --- Fetching ---

	// Clone runs "git clone url dest" with parentDir as the working directory.
	Clone(ctx context.Context, parentDir string, url string, dest string) ProcResult

	// --- Reference Resolution ---

	// GetRepoHash returns the current HEAD commit hash of the repository.
	GetRepoHash(ctx context.Context, repoPath string) (string, error)

	// GetCurrentRef returns the checked-out branch name, or the HEAD hash when detached.
	GetCurrentRef(ctx context.Context, repoPath string) (string, error)

	// GetParents returns the raw "git log --pretty=%P -n 1" output for commit.
	GetParents(ctx context.Context, repoPath string, commit string) ProcResult

	// Checkout switches the working tree to ref.
	Checkout(ctx context.Context, repoPath string, ref string) error

	// --- Diffs ---

	// GetDiff returns the textual diff between two commits.
	GetDiff(ctx context.Context, repoPath string, oldRef string, newRef string) ProcResult

	// GetChangedFiles returns the names of files that differ between two commits.
	GetChangedFiles(ctx context.Context, repoPath string, oldRef string, newRef string) ProcResult
}

// Scanner runs the static analyzer against a checked-out tree.
type Scanner interface {
	// Scan runs inside repoPath. An empty targets list scans the whole tree.
	Scan(ctx context.Context, repoPath string, targets []string) ProcResult
}

// StoreManager hands out the configured findings store.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetFindingStore() FindingStore
}

// FindingStore persists findings for later triage.
type FindingStore interface {
	// Create inserts f and returns its new ID. A second finding for the same
	// repository and fix commit fails with ErrDuplicateFinding.
	Create(ctx context.Context, f *schema.Finding) (int64, error)

	// Get returns one finding or ErrFindingNotFound.
	Get(ctx context.Context, id int64) (schema.Finding, error)

	// List returns every finding in review-queue order.
	List(ctx context.Context) ([]schema.Finding, error)

	// Update applies reviewer edits or returns ErrFindingNotFound.
	Update(ctx context.Context, id int64, update schema.TriageUpdate) error

	// Exists reports whether a finding for the pair is already stored.
	Exists(ctx context.Context, repoURL string, fixCommit string) (bool, error)

	// ShiftIDs moves every ID in [from, to] by offset in one transaction.
	ShiftIDs(ctx context.Context, offset int64, from int64, to int64) ([]schema.KeyShift, error)

	// GetStatus returns status information about the store.
	GetStatus() (schema.StoreStatus, error)

	// Close closes the underlying connection.
	Close() error
}

// ProgressReporter reports batch progress to the user.
type ProgressReporter interface {
	// SetTotal reinitializes the reporter with the new total count.
	SetTotal(total int)
	// Increment increases the progress by one.
	Increment()
	// Finish completes the display.
	Finish()
}
