package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/xssbench/internal/contract"
	"github.com/huangsam/xssbench/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Fetch(t *testing.T) {
	ctx := context.Background()

	t.Run("already present", func(t *testing.T) {
		root := t.TempDir()
		mkRepoDir(t, root, "octo/demo")
		client := &contract.MockGitClient{}
		f, err := NewFetcher(client, root, time.Minute, nil)
		require.NoError(t, err)

		assert.Equal(t, schema.FetchPresent, f.Fetch(ctx, "octo/demo"))
		client.AssertNotCalled(t, "Clone", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("excluded", func(t *testing.T) {
		root := t.TempDir()
		client := &contract.MockGitClient{}
		f, err := NewFetcher(client, root, time.Minute, []string{"*webkit*"})
		require.NoError(t, err)

		assert.True(t, f.Excluded("apple/WebKit"))
		assert.Equal(t, schema.FetchExcluded, f.Fetch(ctx, "apple/WebKit"))
		client.AssertNotCalled(t, "Clone", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cloned", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "downloads")
		client := &contract.MockGitClient{}
		client.On("Clone", root, "https://github.com/octo/demo.git", "octo/demo").
			Run(func(args mock.Arguments) { mkRepoDir(t, root, "octo/demo") }).
			Return(contract.Succeeded(""))
		f, err := NewFetcher(client, root, time.Minute, nil)
		require.NoError(t, err)

		assert.Equal(t, schema.FetchCloned, f.Fetch(ctx, "octo/demo"))
		assert.DirExists(t, f.LocalPath("octo/demo"))
		client.AssertExpectations(t)
	})

	t.Run("failed clone leaves nothing behind", func(t *testing.T) {
		root := t.TempDir()
		client := &contract.MockGitClient{}
		client.On("Clone", root, "https://github.com/octo/gone.git", "octo/gone").
			Run(func(args mock.Arguments) { mkRepoDir(t, root, "octo/gone", "partial.pack") }).
			Return(contract.Failed(128, "fatal: repository not found"))
		f, err := NewFetcher(client, root, time.Minute, nil)
		require.NoError(t, err)

		assert.Equal(t, schema.FetchFailed, f.Fetch(ctx, "octo/gone"))
		assert.NoDirExists(t, f.LocalPath("octo/gone"))
		assert.NoDirExists(t, filepath.Join(root, "octo"))
	})

	t.Run("owner directory with other clones is kept", func(t *testing.T) {
		root := t.TempDir()
		mkRepoDir(t, root, "octo/demo")
		client := &contract.MockGitClient{}
		client.On("Clone", root, "https://github.com/octo/gone.git", "octo/gone").
			Return(contract.Failed(128, "fatal: repository not found"))
		f, err := NewFetcher(client, root, time.Minute, nil)
		require.NoError(t, err)

		assert.Equal(t, schema.FetchFailed, f.Fetch(ctx, "octo/gone"))
		assert.DirExists(t, f.LocalPath("octo/demo"))
	})

	t.Run("timeout", func(t *testing.T) {
		root := t.TempDir()
		client := &contract.MockGitClient{}
		client.On("Clone", root, "https://github.com/octo/huge.git", "octo/huge").
			Return(contract.ProcResult{ExitCode: contract.ExitTimeout, Err: context.DeadlineExceeded})
		f, err := NewFetcher(client, root, time.Millisecond, nil)
		require.NoError(t, err)

		assert.Equal(t, schema.FetchTimeout, f.Fetch(ctx, "octo/huge"))
		_, statErr := os.Stat(f.LocalPath("octo/huge"))
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestFetcher_LocalPath(t *testing.T) {
	f, err := NewFetcher(&contract.MockGitClient{}, "downloads", time.Minute, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("downloads", "octo", "demo"), f.LocalPath("octo/demo"))
}
