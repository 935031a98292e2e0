package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/huangsam/xssbench/internal/contract"
	"github.com/huangsam/xssbench/schema"
)

// Fetcher makes repositories available under a local download root.
type Fetcher struct {
	git      contract.GitClient
	root     string
	timeout  time.Duration
	excludes []glob.Glob
}

// NewFetcher creates a fetcher. Exclude patterns are matched case-insensitively
// against the owner/name identifier.
func NewFetcher(client contract.GitClient, root string, timeout time.Duration, excludes []string) (*Fetcher, error) {
	f := &Fetcher{git: client, root: root, timeout: timeout}
	for _, pattern := range excludes {
		g, err := glob.Compile(strings.ToLower(pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		f.excludes = append(f.excludes, g)
	}
	return f, nil
}

// LocalPath returns where the clone of repository lives.
func (f *Fetcher) LocalPath(repository string) string {
	return filepath.Join(f.root, filepath.FromSlash(repository))
}

// Excluded reports whether repository matches an exclude pattern.
func (f *Fetcher) Excluded(repository string) bool {
	id := strings.ToLower(repository)
	for _, g := range f.excludes {
		if g.Match(id) {
			return true
		}
	}
	return false
}

// Fetch clones repository unless it is already present or excluded.
// Failures are reported through the status and leave no partial clone behind.
func (f *Fetcher) Fetch(ctx context.Context, repository string) schema.FetchStatus {
	logger := loggerFrom(ctx).WithField("repo", repository)
	dest := f.LocalPath(repository)

	if _, err := os.Stat(dest); err == nil {
		return schema.FetchPresent
	}
	if f.Excluded(repository) {
		logger.Info("Repository matches an exclude pattern, not cloning")
		return schema.FetchExcluded
	}
	if err := os.MkdirAll(f.root, 0o755); err != nil {
		logger.WithError(err).Error("Failed to create download directory")
		return schema.FetchFailed
	}

	url := schema.RepoURLFor(repository) + ".git"
	logger.WithField("url", url).Info("Cloning repository")

	cctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	res := f.git.Clone(cctx, f.root, url, repository)
	if res.OK() {
		return schema.FetchCloned
	}

	f.removePartial(dest)
	if res.TimedOut() {
		logger.WithField("timeout", f.timeout).Warn("Repository download took too long")
		return schema.FetchTimeout
	}
	logger.WithError(res.Error()).Warn("Repository clone failed")
	return schema.FetchFailed
}

// removePartial deletes an incomplete clone and its owner directory when empty.
func (f *Fetcher) removePartial(dest string) {
	_ = os.RemoveAll(dest)
	_ = os.Remove(filepath.Dir(dest)) // only succeeds when empty
}
