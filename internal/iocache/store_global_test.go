package iocache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/xssbench/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClearFindings_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "findings.db")
	store, err := NewFindingStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, ClearFindings(schema.SQLiteBackend, dbPath, ""))
	_, err = os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err))

	// Clearing a missing file is fine
	assert.NoError(t, ClearFindings(schema.SQLiteBackend, dbPath, ""))
}

func TestClearFindings_Errors(t *testing.T) {
	assert.Error(t, ClearFindings(schema.SQLiteBackend, "", ""))
	assert.Error(t, ClearFindings(schema.DatabaseBackend("oracle"), "", ""))
	assert.NoError(t, ClearFindings(schema.NoneBackend, "", ""))
}

func TestFindingStoreManager(t *testing.T) {
	mgr := &FindingStoreManager{}
	assert.Nil(t, mgr.GetFindingStore())

	store := &MockFindingStore{}
	mgr.findings = store
	assert.Same(t, store, mgr.GetFindingStore())
}
