package contract

import (
	"context"
	"errors"

	"github.com/stretchr/testify/mock"
)

var errExitStatus = errors.New("process exited with non-zero status")

// MockGitClient is a mock implementation of GitClient for testing.
// Expectations are registered without the context argument.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the GitClient interface.
func (m *MockGitClient) Run(_ context.Context, repoPath string, args ...string) ProcResult {
	mockArgs := []any{repoPath}
	for _, arg := range args {
		mockArgs = append(mockArgs, arg)
	}
	ret := m.Called(mockArgs...)
	res, _ := ret.Get(0).(ProcResult)
	return res
}

// Clone implements the GitClient interface.
func (m *MockGitClient) Clone(_ context.Context, parentDir string, url string, dest string) ProcResult {
	ret := m.Called(parentDir, url, dest)
	res, _ := ret.Get(0).(ProcResult)
	return res
}

// GetRepoHash implements the GitClient interface.
func (m *MockGitClient) GetRepoHash(_ context.Context, repoPath string) (string, error) {
	ret := m.Called(repoPath)
	return ret.String(0), ret.Error(1)
}

// GetCurrentRef implements the GitClient interface.
func (m *MockGitClient) GetCurrentRef(_ context.Context, repoPath string) (string, error) {
	ret := m.Called(repoPath)
	return ret.String(0), ret.Error(1)
}

// GetParents implements the GitClient interface.
func (m *MockGitClient) GetParents(_ context.Context, repoPath string, commit string) ProcResult {
	ret := m.Called(repoPath, commit)
	res, _ := ret.Get(0).(ProcResult)
	return res
}

// Checkout implements the GitClient interface.
func (m *MockGitClient) Checkout(_ context.Context, repoPath string, ref string) error {
	ret := m.Called(repoPath, ref)
	return ret.Error(0)
}

// GetDiff implements the GitClient interface.
func (m *MockGitClient) GetDiff(_ context.Context, repoPath string, oldRef string, newRef string) ProcResult {
	ret := m.Called(repoPath, oldRef, newRef)
	res, _ := ret.Get(0).(ProcResult)
	return res
}

// GetChangedFiles implements the GitClient interface.
func (m *MockGitClient) GetChangedFiles(_ context.Context, repoPath string, oldRef string, newRef string) ProcResult {
	ret := m.Called(repoPath, oldRef, newRef)
	res, _ := ret.Get(0).(ProcResult)
	return res
}

// MockScanner is a mock implementation of Scanner for testing.
type MockScanner struct {
	mock.Mock
}

var _ Scanner = &MockScanner{} // Compile-time check

// Scan implements the Scanner interface.
func (m *MockScanner) Scan(_ context.Context, repoPath string, targets []string) ProcResult {
	ret := m.Called(repoPath, targets)
	res, _ := ret.Get(0).(ProcResult)
	return res
}

// MockRunner is a mock implementation of Runner for testing.
type MockRunner struct {
	mock.Mock
}

var _ Runner = &MockRunner{} // Compile-time check

// Run implements the Runner interface.
func (m *MockRunner) Run(_ context.Context, dir string, name string, args ...string) ProcResult {
	ret := m.Called(dir, name, args)
	res, _ := ret.Get(0).(ProcResult)
	return res
}

// Succeeded builds a successful ProcResult with stdout.
func Succeeded(stdout string) ProcResult {
	return ProcResult{Stdout: []byte(stdout)}
}

// Failed builds a failed ProcResult with the given exit code and stderr.
func Failed(code int, stderr string) ProcResult {
	return ProcResult{ExitCode: code, Stderr: []byte(stderr), Err: errExitStatus}
}
