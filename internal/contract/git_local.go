package contract

import (
	"context"
	"fmt"
	"strings"
)

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct {
	runner Runner
}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{runner: NewExecRunner()}
}

// NewLocalGitClientWithRunner creates a Git client on top of a custom runner.
func NewLocalGitClientWithRunner(r Runner) *LocalGitClient {
	return &LocalGitClient{runner: r}
}

// Run implements the GitClient interface.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ProcResult {
	return c.runner.Run(ctx, repoPath, "git", args...)
}

// Clone implements the GitClient interface.
func (c *LocalGitClient) Clone(ctx context.Context, parentDir string, url string, dest string) ProcResult {
	return c.runner.Run(ctx, parentDir, "git", "clone", "--quiet", url, dest)
}

// GetRepoHash implements the GitClient interface.
func (c *LocalGitClient) GetRepoHash(ctx context.Context, repoPath string) (string, error) {
	res := c.Run(ctx, repoPath, "rev-parse", "HEAD")
	if !res.OK() {
		return "", gitError(repoPath, res)
	}
	return strings.TrimSpace(string(res.Stdout)), nil
}

// GetCurrentRef implements the GitClient interface.
func (c *LocalGitClient) GetCurrentRef(ctx context.Context, repoPath string) (string, error) {
	res := c.Run(ctx, repoPath, "rev-parse", "--abbrev-ref", "HEAD")
	if !res.OK() {
		return "", gitError(repoPath, res)
	}
	ref := strings.TrimSpace(string(res.Stdout))
	if ref == "" || ref == "HEAD" {
		return c.GetRepoHash(ctx, repoPath)
	}
	return ref, nil
}

// GetParents implements the GitClient interface.
func (c *LocalGitClient) GetParents(ctx context.Context, repoPath string, commit string) ProcResult {
	return c.Run(ctx, repoPath, "log", "--pretty=%P", "-n", "1", commit)
}

// Checkout implements the GitClient interface.
func (c *LocalGitClient) Checkout(ctx context.Context, repoPath string, ref string) error {
	res := c.Run(ctx, repoPath, "checkout", "--quiet", ref)
	if !res.OK() {
		return gitError(repoPath, res)
	}
	return nil
}

// GetDiff implements the GitClient interface.
func (c *LocalGitClient) GetDiff(ctx context.Context, repoPath string, oldRef string, newRef string) ProcResult {
	return c.Run(ctx, repoPath, "--no-pager", "diff", oldRef, newRef)
}

// GetChangedFiles implements the GitClient interface.
func (c *LocalGitClient) GetChangedFiles(ctx context.Context, repoPath string, oldRef string, newRef string) ProcResult {
	return c.Run(ctx, repoPath, "diff", "--name-only", oldRef, newRef)
}

// gitError turns a failed git invocation into an actionable error.
func gitError(repoPath string, res ProcResult) error {
	if res.ExitCode == ExitNotFound {
		return fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", res.Err)
	}
	stderr := strings.TrimSpace(string(res.Stderr))
	if stderr == "" && res.Err != nil {
		stderr = res.Err.Error()
	}
	return fmt.Errorf("git command failed in %q: %s. If this is not a Git repository, verify the path or clone it again", repoPath, stderr)
}
