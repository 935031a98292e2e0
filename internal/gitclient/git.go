// Package gitclient builds throwaway Git repositories with go-git, so code that
// shells out to git can be exercised against real history.
package gitclient

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repo is an on-disk repository under construction.
type Repo struct {
	Dir  string
	repo *git.Repository
	tb   testing.TB
	tick time.Time
}

// NewRepo initializes an empty repository at dir.
func NewRepo(tb testing.TB, dir string) *Repo {
	tb.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		tb.Fatalf("failed to create repo dir: %v", err)
	}
	r, err := git.PlainInit(dir, false)
	if err != nil {
		tb.Fatalf("failed to init repo: %v", err)
	}
	return &Repo{
		Dir:  dir,
		repo: r,
		tb:   tb,
		tick: time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Commit writes files, deletes removed, stages everything and commits.
// It returns the new commit hash.
func (r *Repo) Commit(msg string, files map[string]string, removed ...string) string {
	r.tb.Helper()
	wt, err := r.repo.Worktree()
	if err != nil {
		r.tb.Fatalf("failed to open worktree: %v", err)
	}

	for name, content := range files {
		path := filepath.Join(r.Dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			r.tb.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			r.tb.Fatalf("failed to write %s: %v", name, err)
		}
		if _, err := wt.Add(name); err != nil {
			r.tb.Fatalf("failed to stage %s: %v", name, err)
		}
	}
	for _, name := range removed {
		if _, err := wt.Remove(name); err != nil {
			r.tb.Fatalf("failed to remove %s: %v", name, err)
		}
	}

	r.tick = r.tick.Add(time.Minute)
	hash, err := wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "Fixture", Email: "fixture@example.com", When: r.tick},
	})
	if err != nil {
		r.tb.Fatalf("failed to commit: %v", err)
	}
	return hash.String()
}

// Head returns the hash HEAD points at.
func (r *Repo) Head() string {
	r.tb.Helper()
	ref, err := r.repo.Head()
	if err != nil {
		r.tb.Fatalf("failed to read HEAD: %v", err)
	}
	return ref.Hash().String()
}

// Branch returns the short name of the checked-out branch, or "" when detached.
func (r *Repo) Branch() string {
	r.tb.Helper()
	ref, err := r.repo.Head()
	if err != nil {
		r.tb.Fatalf("failed to read HEAD: %v", err)
	}
	if !ref.Name().IsBranch() {
		return ""
	}
	return ref.Name().Short()
}
