//go:build basic

package integration

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/xssbench/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gitRun runs git in dir with a fixed identity and returns trimmed stdout.
func gitRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=Test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=Test", "GIT_COMMITTER_EMAIL=test@example.com",
	)
	out, err := cmd.Output()
	require.NoError(t, err, "git %v", args)
	return strings.TrimSpace(string(out))
}

// workspace lays out a download dir with one cloned repository holding a fix commit,
// a raw commit document for it and a fake scanner.
type workspace struct {
	dir       string
	env       []string
	parent    string
	fix       string
	branch    string
	repoPath  string
	batchPath string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	w := &workspace{dir: t.TempDir()}
	downloads := filepath.Join(w.dir, "downloads")
	w.repoPath = filepath.Join(downloads, "octo", "demo")
	require.NoError(t, os.MkdirAll(w.repoPath, 0o755))

	gitRun(t, w.repoPath, "init", "-q")
	require.NoError(t, os.WriteFile(filepath.Join(w.repoPath, "app.js"), []byte("el.innerHTML = q;\n"), 0o644))
	gitRun(t, w.repoPath, "add", ".")
	gitRun(t, w.repoPath, "commit", "-q", "-m", "initial")
	w.parent = gitRun(t, w.repoPath, "rev-parse", "HEAD")

	require.NoError(t, os.WriteFile(filepath.Join(w.repoPath, "app.js"), []byte("el.textContent = q;\n"), 0o644))
	gitRun(t, w.repoPath, "commit", "-q", "-am", "Fix XSS in search box")
	w.fix = gitRun(t, w.repoPath, "rev-parse", "HEAD")
	w.branch = gitRun(t, w.repoPath, "rev-parse", "--abbrev-ref", "HEAD")

	raw := filepath.Join(w.dir, "raw", "octo", "demo")
	require.NoError(t, os.MkdirAll(raw, 0o755))
	doc := `{"sha": "` + w.fix + `", "commit": {"message": "Fix XSS in search box"}}`
	require.NoError(t, os.WriteFile(filepath.Join(raw, w.fix+".json"), []byte(doc), 0o644))

	scanner := filepath.Join(w.dir, "fake-semgrep")
	require.NoError(t, os.WriteFile(scanner, []byte("#!/bin/sh\necho '{\"results\": []}'\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(w.dir, "semgrep.yaml"), []byte("rules: []\n"), 0o644))

	w.batchPath = filepath.Join(w.dir, "batch.json")
	w.env = []string{
		"XSSBENCH_STORE_BACKEND=sqlite",
		"XSSBENCH_STORE_DB_CONNECT=" + filepath.Join(w.dir, "findings.db"),
		"XSSBENCH_DOWNLOAD_DIR=" + downloads,
		"XSSBENCH_SEMGREP_BINARY=" + scanner,
		"XSSBENCH_COLOR=no",
	}
	return w
}

func TestHarvestBuildTriage(t *testing.T) {
	w := newWorkspace(t)

	_, err := runXssbench(t, w.dir, w.env, "harvest", "--directory", filepath.Join(w.dir, "raw"), "--no-download", "--output-file", w.batchPath)
	require.NoError(t, err)
	rows, err := schema.ReadBatch(w.batchPath)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, schema.BatchRow{Repository: "octo/demo", Commit: w.fix, Parent: []string{w.parent}, Message: "Fix XSS in search box"}, rows[0])

	out, err := runXssbench(t, w.dir, w.env, "build", "--input", w.batchPath, "--skip-ruleset-download", "--output", "json")
	require.NoError(t, err)
	var summary schema.BuildSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 1, summary.Created)

	// The scan checked out the parent and must leave the clone on its branch.
	assert.Equal(t, w.branch, gitRun(t, w.repoPath, "rev-parse", "--abbrev-ref", "HEAD"))

	// A second build finds the pair already stored.
	out, err = runXssbench(t, w.dir, w.env, "build", "--input", w.batchPath, "--skip-ruleset-download", "--output", "json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 0, summary.Created)
	assert.Equal(t, 1, summary.Skipped)

	out, err = runXssbench(t, w.dir, w.env, "findings", "list", "--output", "json")
	require.NoError(t, err)
	var findings []schema.Finding
	require.NoError(t, json.Unmarshal([]byte(out), &findings))
	require.Len(t, findings, 1)
	f := findings[0]
	assert.Equal(t, "https://github.com/octo/demo", f.RepoURL)
	assert.Equal(t, w.fix, f.FixCommit)
	assert.Equal(t, w.parent, f.PreviousCommit)
	assert.Contains(t, f.DiffText, "+el.textContent = q;")
	assert.Contains(t, f.ScanOutput, "results")
	assert.Equal(t, schema.Unreviewed, f.TriageStatus)

	_, err = runXssbench(t, w.dir, w.env, "findings", "update", "1", "--status", "true_positive", "--taxonomy", "a", "--notes", "innerHTML sink")
	require.NoError(t, err)

	out, err = runXssbench(t, w.dir, w.env, "findings", "show", "1", "--output", "json")
	require.NoError(t, err)
	var shown schema.Finding
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, schema.TruePositive, shown.TriageStatus)
	require.NotNil(t, shown.Taxonomy)
	assert.Equal(t, schema.Taxonomy("A"), *shown.Taxonomy)
	assert.Equal(t, "innerHTML sink", shown.ReviewerNotes)

	out, err = runXssbench(t, w.dir, w.env, "findings", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Showing 1 findings")

	exportPath := filepath.Join(w.dir, "findings.parquet")
	_, err = runXssbench(t, w.dir, w.env, "findings", "export", "--output-file", exportPath)
	require.NoError(t, err)
	assert.FileExists(t, exportPath)

	out, err = runXssbench(t, w.dir, w.env, "findings", "renumber", "--offset", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "1 -> 11")

	_, err = runXssbench(t, w.dir, w.env, "findings", "show", "11")
	require.NoError(t, err)
	_, err = runXssbench(t, w.dir, w.env, "findings", "show", "1")
	assert.Error(t, err)

	_, err = runXssbench(t, w.dir, w.env, "findings", "clear")
	require.NoError(t, err)
	out, err = runXssbench(t, w.dir, w.env, "findings", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Findings: 0")
}

func TestBuildSkipsExcludedRepositories(t *testing.T) {
	w := newWorkspace(t)
	require.NoError(t, schema.WriteBatch(w.batchPath, []schema.BatchRow{
		{Repository: "octo/demo", Commit: w.fix, Parent: []string{w.parent}, Message: "Fix XSS"},
	}))

	env := append(w.env, "XSSBENCH_EXCLUDE_REPOS=octo/*")
	out, err := runXssbench(t, w.dir, env, "build", "--input", w.batchPath, "--skip-ruleset-download", "--output", "json")
	require.NoError(t, err)
	var summary schema.BuildSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 0, summary.Created)
	assert.Equal(t, 1, summary.Total)
}

func TestCommandErrors(t *testing.T) {
	w := newWorkspace(t)

	_, err := runXssbench(t, w.dir, w.env, "build")
	assert.Error(t, err, "--input is required")

	_, err = runXssbench(t, w.dir, w.env, "findings", "show", "abc")
	assert.Error(t, err)

	_, err = runXssbench(t, w.dir, w.env, "findings", "update", "1")
	assert.Error(t, err)

	_, err = runXssbench(t, w.dir, w.env, "findings", "list", "--store-backend", "oracle")
	assert.Error(t, err)

	out, err := runXssbench(t, w.dir, w.env, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "xssbench CLI")
}
