package contract

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/xssbench/internal/gitclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// skipIfGitNotAvailable skips the test if git binary is not found in PATH
func skipIfGitNotAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git binary not found in PATH: %v", err)
	}
}

// TestMockGitClient_Run ensures the mock correctly records and returns
// expected values when its Run method is called.
func TestMockGitClient_Run(t *testing.T) {
	m := &MockGitClient{}
	m.On("Run", "/repo", "status", "--short").Return(Succeeded(" M main.go\n"))

	res := m.Run(context.Background(), "/repo", "status", "--short")
	assert.True(t, res.OK())
	assert.Equal(t, " M main.go\n", string(res.Stdout))
	m.AssertExpectations(t)
}

func TestLocalGitClientUsesRunnerDir(t *testing.T) {
	r := &MockRunner{}
	r.On("Run", "/repos/octo/demo", "git", []string{"--no-pager", "diff", "p1", "c1"}).Return(Succeeded("diff"))
	r.On("Run", "/repos", "git", []string{"clone", "--quiet", "https://github.com/octo/demo.git", "octo/demo"}).Return(Succeeded(""))
	r.On("Run", "/repos/octo/demo", "git", []string{"checkout", "--quiet", "p1"}).Return(Failed(1, "error: pathspec 'p1' did not match"))

	client := NewLocalGitClientWithRunner(r)
	ctx := context.Background()

	assert.Equal(t, "diff", string(client.GetDiff(ctx, "/repos/octo/demo", "p1", "c1").Stdout))
	assert.True(t, client.Clone(ctx, "/repos", "https://github.com/octo/demo.git", "octo/demo").OK())

	err := client.Checkout(ctx, "/repos/octo/demo", "p1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not match")
	r.AssertExpectations(t)
}

func TestGitErrorMissingBinary(t *testing.T) {
	r := &MockRunner{}
	r.On("Run", mock.Anything, "git", mock.Anything).Return(ProcResult{ExitCode: ExitNotFound, Err: exec.ErrNotFound})
	_, err := NewLocalGitClientWithRunner(r).GetRepoHash(context.Background(), ".")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Ensure Git is installed")
}

func TestLocalGitClientAgainstFixture(t *testing.T) {
	skipIfGitNotAvailable(t)

	dir := filepath.Join(t.TempDir(), "octo", "demo")
	repo := gitclient.NewRepo(t, dir)
	first := repo.Commit("initial", map[string]string{"app.js": "render(input)\n", "README.md": "demo\n"})
	second := repo.Commit("Fix XSS in render", map[string]string{"app.js": "render(escape(input))\n", "util.js": "x\n"})

	client := NewLocalGitClient()
	ctx := context.Background()

	t.Run("GetRepoHash", func(t *testing.T) {
		hash, err := client.GetRepoHash(ctx, dir)
		require.NoError(t, err)
		assert.Equal(t, second, hash)
	})

	t.Run("GetCurrentRef on branch", func(t *testing.T) {
		ref, err := client.GetCurrentRef(ctx, dir)
		require.NoError(t, err)
		assert.Equal(t, repo.Branch(), ref)
	})

	t.Run("GetParents", func(t *testing.T) {
		res := client.GetParents(ctx, dir, second)
		require.True(t, res.OK(), res.Error())
		assert.Equal(t, first, strings.TrimSpace(string(res.Stdout)))
	})

	t.Run("GetDiff", func(t *testing.T) {
		res := client.GetDiff(ctx, dir, first, second)
		require.True(t, res.OK(), res.Error())
		assert.Contains(t, string(res.Stdout), "+render(escape(input))")
	})

	t.Run("GetChangedFiles", func(t *testing.T) {
		res := client.GetChangedFiles(ctx, dir, first, second)
		require.True(t, res.OK(), res.Error())
		assert.Equal(t, "app.js\nutil.js\n", string(res.Stdout))
	})

	t.Run("Checkout detached and back", func(t *testing.T) {
		branch := repo.Branch()
		require.NoError(t, client.Checkout(ctx, dir, first))
		ref, err := client.GetCurrentRef(ctx, dir)
		require.NoError(t, err)
		assert.Equal(t, first, ref, "detached HEAD reports the hash")

		require.NoError(t, client.Checkout(ctx, dir, branch))
		assert.Equal(t, second, repo.Head())
	})

	t.Run("unknown commit fails", func(t *testing.T) {
		res := client.GetParents(ctx, dir, "0000000000000000000000000000000000000000")
		assert.False(t, res.OK())
		assert.NotEqual(t, 0, res.ExitCode)
	})
}
