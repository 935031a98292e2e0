package core

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/huangsam/xssbench/internal/gitclient"
)

// requireGit skips tests that shell out to a real git binary.
func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

// newFixtureRepo creates an empty repository in a temporary directory.
func newFixtureRepo(t *testing.T) *gitclient.Repo {
	t.Helper()
	return gitclient.NewRepo(t, filepath.Join(t.TempDir(), "repo"))
}

// mkRepoDir creates the clone directory for repository under root.
func mkRepoDir(t *testing.T, root, repository string, files ...string) string {
	t.Helper()
	dir := filepath.Join(root, filepath.FromSlash(repository))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", dir, err)
	}
	for _, name := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}
	return dir
}
