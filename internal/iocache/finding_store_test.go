package iocache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/xssbench/internal/contract"
	"github.com/huangsam/xssbench/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore opens a SQLite store in a temporary file.
func newTestStore(t *testing.T) *FindingStoreImpl {
	t.Helper()
	store, err := NewFindingStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "findings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*FindingStoreImpl)
}

func newFinding(repo, commit string) *schema.Finding {
	return &schema.Finding{
		RepoURL:        schema.RepoURLFor(repo),
		RepoMessage:    "Fix XSS in " + repo,
		FixCommit:      commit,
		PreviousCommit: commit + "^",
		DiffText:       "diff --git a/app.js b/app.js",
		ScanOutput:     `{"results": []}`,
		TriageStatus:   schema.Unreviewed,
	}
}

func TestFindingStore_NoneBackend(t *testing.T) {
	store, err := NewFindingStore(schema.NoneBackend, "")
	require.NoError(t, err)
	ctx := context.Background()

	id, err := store.Create(ctx, newFinding("octo/demo", "c1"))
	assert.NoError(t, err)
	assert.Equal(t, int64(0), id)

	exists, err := store.Exists(ctx, "https://github.com/octo/demo", "c1")
	assert.NoError(t, err)
	assert.False(t, exists)

	_, err = store.Get(ctx, 1)
	assert.ErrorIs(t, err, contract.ErrFindingNotFound)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "none", status.Backend)
	assert.False(t, status.Connected)

	assert.NoError(t, store.Close())
}

func TestFindingStore_CreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	f := newFinding("octo/demo", "c1")
	id, err := store.Create(ctx, f)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))
	assert.Equal(t, id, f.ID)

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/octo/demo", got.RepoURL)
	assert.Equal(t, "octo/demo", got.Repository())
	assert.Equal(t, "c1", got.FixCommit)
	assert.Equal(t, "c1^", got.PreviousCommit)
	assert.Equal(t, f.DiffText, got.DiffText)
	assert.Equal(t, f.ScanOutput, got.ScanOutput)
	assert.Equal(t, schema.Unreviewed, got.TriageStatus)
	assert.Nil(t, got.Taxonomy)
	assert.Empty(t, got.ReviewerNotes)
	assert.WithinDuration(t, time.Now(), got.CreatedAt, time.Minute)
}

func TestFindingStore_GetUnknown(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Get(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contract.ErrFindingNotFound))
}

func TestFindingStore_DuplicateCreate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, newFinding("octo/demo", "c1"))
	require.NoError(t, err)

	_, err = store.Create(ctx, newFinding("octo/demo", "c1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, contract.ErrDuplicateFinding)

	// Same commit in another repository is a different finding
	_, err = store.Create(ctx, newFinding("octo/other", "c1"))
	assert.NoError(t, err)
}

func TestFindingStore_Exists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	exists, err := store.Exists(ctx, "https://github.com/octo/demo", "c1")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.Create(ctx, newFinding("octo/demo", "c1"))
	require.NoError(t, err)

	exists, err = store.Exists(ctx, "https://github.com/octo/demo", "c1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.Exists(ctx, "https://github.com/octo/demo", "c2")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFindingStore_Update(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	f := newFinding("octo/demo", "c1")
	id, err := store.Create(ctx, f)
	require.NoError(t, err)

	t.Run("status only", func(t *testing.T) {
		status := schema.TruePositive
		require.NoError(t, store.Update(ctx, id, schema.TriageUpdate{Status: &status}))

		got, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, schema.TruePositive, got.TriageStatus)
		assert.Nil(t, got.Taxonomy)
	})

	t.Run("taxonomy and notes", func(t *testing.T) {
		taxonomy := schema.TaxonomyB
		notes := "fix landed in the server code"
		require.NoError(t, store.Update(ctx, id, schema.TriageUpdate{Taxonomy: &taxonomy, Notes: &notes}))

		got, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, schema.TruePositive, got.TriageStatus, "status untouched")
		require.NotNil(t, got.Taxonomy)
		assert.Equal(t, schema.TaxonomyB, *got.Taxonomy)
		assert.Equal(t, notes, got.ReviewerNotes)
		assert.Equal(t, f.DiffText, got.DiffText, "diff is immutable")
		assert.Equal(t, f.ScanOutput, got.ScanOutput, "scanner output is immutable")
	})

	t.Run("empty update", func(t *testing.T) {
		assert.NoError(t, store.Update(ctx, id, schema.TriageUpdate{}))
	})

	t.Run("unknown id", func(t *testing.T) {
		status := schema.FalsePositive
		err := store.Update(ctx, id+100, schema.TriageUpdate{Status: &status})
		assert.ErrorIs(t, err, contract.ErrFindingNotFound)
	})

	t.Run("invalid status", func(t *testing.T) {
		status := schema.TriageStatus("maybe")
		err := store.Update(ctx, id, schema.TriageUpdate{Status: &status})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid triage status")
	})
}

func TestFindingStore_ListOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var ids []int64
	for _, commit := range []string{"c1", "c2", "c3", "c4"} {
		id, err := store.Create(ctx, newFinding("octo/demo", commit))
		require.NoError(t, err)
		ids = append(ids, id)
	}
	tp, fp, unknown := schema.TruePositive, schema.FalsePositive, schema.UnknownStatus
	require.NoError(t, store.Update(ctx, ids[0], schema.TriageUpdate{Status: &tp}))
	require.NoError(t, store.Update(ctx, ids[1], schema.TriageUpdate{Status: &fp}))
	require.NoError(t, store.Update(ctx, ids[3], schema.TriageUpdate{Status: &unknown}))

	findings, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, findings, 4)

	var got []schema.TriageStatus
	for _, f := range findings {
		got = append(got, f.TriageStatus)
	}
	assert.Equal(t, []schema.TriageStatus{schema.Unreviewed, schema.UnknownStatus, schema.TruePositive, schema.FalsePositive}, got)
}

func TestFindingStore_ShiftIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, commit := range []string{"c1", "c2", "c3"} {
		_, err := store.Create(ctx, newFinding("octo/demo", commit))
		require.NoError(t, err)
	}

	t.Run("shift range up", func(t *testing.T) {
		shifts, err := store.ShiftIDs(ctx, 603, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, []schema.KeyShift{{OldID: 2, NewID: 605}, {OldID: 1, NewID: 604}}, shifts)

		got, err := store.Get(ctx, 604)
		require.NoError(t, err)
		assert.Equal(t, "c1", got.FixCommit)

		_, err = store.Get(ctx, 1)
		assert.ErrorIs(t, err, contract.ErrFindingNotFound)
	})

	t.Run("refuses occupied targets", func(t *testing.T) {
		_, err := store.ShiftIDs(ctx, 601, 3, 3)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already in use")

		got, err := store.Get(ctx, 3)
		require.NoError(t, err, "nothing moved")
		assert.Equal(t, "c3", got.FixCommit)
	})

	t.Run("overlapping shift down", func(t *testing.T) {
		shifts, err := store.ShiftIDs(ctx, -1, 604, 605)
		require.NoError(t, err)
		assert.Equal(t, []schema.KeyShift{{OldID: 604, NewID: 603}, {OldID: 605, NewID: 604}}, shifts)
	})

	t.Run("new ids continue after the highest", func(t *testing.T) {
		id, err := store.Create(ctx, newFinding("octo/demo", "c4"))
		require.NoError(t, err)
		assert.Greater(t, id, int64(604))
	})

	t.Run("invalid arguments", func(t *testing.T) {
		_, err := store.ShiftIDs(ctx, 0, 1, 2)
		assert.Error(t, err)
		_, err = store.ShiftIDs(ctx, 5, 10, 2)
		assert.Error(t, err)
		_, err = store.ShiftIDs(ctx, -10, 3, 3)
		assert.Error(t, err)
	})
}

func TestFindingStore_GetStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, 0, status.TotalFindings)
	assert.Equal(t, uint(3), status.SchemaVersion)

	id1, err := store.Create(ctx, newFinding("octo/demo", "c1"))
	require.NoError(t, err)
	_, err = store.Create(ctx, newFinding("octo/demo", "c2"))
	require.NoError(t, err)
	id3, err := store.Create(ctx, newFinding("octo/other", "c1"))
	require.NoError(t, err)

	tp := schema.TruePositive
	taxonomy := schema.TaxonomyA
	require.NoError(t, store.Update(ctx, id1, schema.TriageUpdate{Status: &tp, Taxonomy: &taxonomy}))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 3, status.TotalFindings)
	assert.Equal(t, 2, status.Repositories)
	assert.Equal(t, id3, status.LastID)
	assert.Equal(t, 2, status.ByStatus[schema.Unreviewed])
	assert.Equal(t, 1, status.ByStatus[schema.TruePositive])
	assert.Equal(t, 1, status.ByTaxonomy[schema.TaxonomyA])
	assert.False(t, status.LastCreated.Before(status.OldestCreated))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, isUniqueViolation(nil))
	assert.False(t, isUniqueViolation(errors.New("disk I/O error")))
	assert.True(t, isUniqueViolation(errors.New("constraint failed: UNIQUE constraint failed: finding.repo_url, finding.fix_commit (2067)")))
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, `"finding"`, quoteTableName("finding", schema.SQLiteBackend))
	assert.Equal(t, `"finding"`, quoteTableName("finding", schema.PostgreSQLBackend))
	assert.Equal(t, "`finding`", quoteTableName("finding", schema.MySQLBackend))
}

func TestValidateTableName(t *testing.T) {
	assert.NoError(t, validateTableName("finding"))
	assert.NoError(t, validateTableName("_finding_2"))
	assert.Error(t, validateTableName(""))
	assert.Error(t, validateTableName("finding; DROP TABLE x"))
	assert.Error(t, validateTableName("1finding"))
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "?", placeholder(schema.SQLiteBackend, 3))
	assert.Equal(t, "?", placeholder(schema.MySQLBackend, 1))
	assert.Equal(t, "$2", placeholder(schema.PostgreSQLBackend, 2))
}

func TestDriverFor(t *testing.T) {
	t.Run("mysql enables time parsing", func(t *testing.T) {
		name, dsn, err := driverFor(schema.MySQLBackend, "user:pass@tcp(localhost:3306)/xss")
		require.NoError(t, err)
		assert.Equal(t, "mysql", name)
		assert.Contains(t, dsn, "parseTime=true")
	})

	t.Run("sqlite creates the directory", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "nested", "dir", "findings.db")
		name, dsn, err := driverFor(schema.SQLiteBackend, dbPath)
		require.NoError(t, err)
		assert.Equal(t, "sqlite", name)
		assert.Equal(t, dbPath, dsn)
		assert.DirExists(t, filepath.Dir(dbPath))
	})

	t.Run("unsupported", func(t *testing.T) {
		_, _, err := driverFor(schema.DatabaseBackend("oracle"), "")
		assert.Error(t, err)
	})
}
