package iocache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/xssbench/internal/contract"
	"github.com/huangsam/xssbench/schema"
	"github.com/jackc/pgx/v5/pgconn"
)

// findingTable is the name of the table holding findings.
const findingTable = "finding"

// findingColumns lists the columns read back into schema.Finding, in scan order.
const findingColumns = "id, repo_url, repo_message, fix_commit, previous_commit, diff_text, " +
	"semgrep_results_on_diff, triage_status, taxonomy, reviewer_notes, created_at"

// FindingStoreImpl implements the FindingStore interface.
type FindingStoreImpl struct {
	db        *sql.DB
	tableName string
	backend   schema.DatabaseBackend
}

var _ contract.FindingStore = &FindingStoreImpl{} // Compile-time check

// NewFindingStore opens the findings store for backend and brings its schema
// up to date.
func NewFindingStore(backend schema.DatabaseBackend, connStr string) (contract.FindingStore, error) {
	if err := validateTableName(findingTable); err != nil {
		return nil, err
	}
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled persistence
		return &FindingStoreImpl{tableName: findingTable, backend: backend}, nil
	}

	driverName, dsn, err := driverFor(backend, connStr)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", backend, err)
	}
	if backend == schema.SQLiteBackend {
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
	}

	// Ping to verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Check that the directory is writable."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	if err := runMigrations(backend, connStr, -1, false); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare findings table: %w", err)
	}

	return &FindingStoreImpl{db: db, tableName: findingTable, backend: backend}, nil
}

// disabled reports whether the store is a no-op.
func (fs *FindingStoreImpl) disabled() bool {
	return fs.backend == schema.NoneBackend || fs.db == nil
}

func (fs *FindingStoreImpl) table() string {
	return quoteTableName(fs.tableName, fs.backend)
}

func (fs *FindingStoreImpl) ph(n int) string {
	return placeholder(fs.backend, n)
}

// Create inserts f as a new unreviewed finding and returns its ID.
func (fs *FindingStoreImpl) Create(ctx context.Context, f *schema.Finding) (int64, error) {
	if fs.disabled() {
		return 0, nil
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	if f.TriageStatus == "" {
		f.TriageStatus = schema.Unreviewed
	}

	placeholders := make([]string, 10)
	for i := range placeholders {
		placeholders[i] = fs.ph(i + 1)
	}
	query := fmt.Sprintf(`INSERT INTO %s (repo_url, repo_message, fix_commit, previous_commit, diff_text,
		semgrep_results_on_diff, triage_status, taxonomy, reviewer_notes, created_at) VALUES (%s)`,
		fs.table(), strings.Join(placeholders, ", "))
	args := []any{
		f.RepoURL, f.RepoMessage, f.FixCommit, f.PreviousCommit, f.DiffText,
		f.ScanOutput, string(f.TriageStatus), taxonomyValue(f.Taxonomy), f.ReviewerNotes,
		formatTime(f.CreatedAt, fs.backend),
	}

	var id int64
	var err error
	switch fs.backend {
	case schema.PostgreSQLBackend:
		err = fs.db.QueryRowContext(ctx, query+" RETURNING id", args...).Scan(&id)
	default: // SQLite and MySQL
		var result sql.Result
		result, err = fs.db.ExecContext(ctx, query, args...)
		if err == nil {
			id, err = result.LastInsertId()
		}
	}
	if isUniqueViolation(err) {
		return 0, fmt.Errorf("%w: %s@%s", contract.ErrDuplicateFinding, f.RepoURL, f.FixCommit)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert finding: %w", err)
	}
	f.ID = id
	return id, nil
}

// Get returns the finding with the given ID.
func (fs *FindingStoreImpl) Get(ctx context.Context, id int64) (schema.Finding, error) {
	if fs.disabled() {
		return schema.Finding{}, contract.ErrFindingNotFound
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = %s", findingColumns, fs.table(), fs.ph(1))
	f, err := fs.scanFinding(fs.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return schema.Finding{}, fmt.Errorf("%w: %d", contract.ErrFindingNotFound, id)
	}
	if err != nil {
		return schema.Finding{}, fmt.Errorf("failed to read finding %d: %w", id, err)
	}
	return f, nil
}

// List returns every finding, grouped by triage status in descending order, then by ID.
func (fs *FindingStoreImpl) List(ctx context.Context) ([]schema.Finding, error) {
	if fs.disabled() {
		return nil, nil
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY triage_status DESC, id ASC", findingColumns, fs.table())
	rows, err := fs.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query findings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.Finding
	for rows.Next() {
		f, err := fs.scanFinding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		results = append(results, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating findings: %w", err)
	}
	return results, nil
}

// Update applies reviewer edits. Scanner output and diff are never touched.
func (fs *FindingStoreImpl) Update(ctx context.Context, id int64, update schema.TriageUpdate) error {
	if fs.disabled() {
		return contract.ErrFindingNotFound
	}
	if update.Status != nil && !update.Status.Valid() {
		return fmt.Errorf("invalid triage status %q", *update.Status)
	}
	if update.Taxonomy != nil && !update.Taxonomy.Valid() {
		return fmt.Errorf("invalid taxonomy %q", *update.Taxonomy)
	}

	exists, err := fs.idExists(ctx, fs.db, id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %d", contract.ErrFindingNotFound, id)
	}
	if update.Empty() {
		return nil
	}

	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = %s", column, fs.ph(len(args))))
	}
	if update.Status != nil {
		add("triage_status", string(*update.Status))
	}
	if update.Taxonomy != nil {
		add("taxonomy", string(*update.Taxonomy))
	}
	if update.Notes != nil {
		add("reviewer_notes", *update.Notes)
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = %s", fs.table(), strings.Join(sets, ", "), fs.ph(len(args)))
	if _, err := fs.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update finding %d: %w", id, err)
	}
	return nil
}

// Exists reports whether any finding is stored for the repository and fix commit.
func (fs *FindingStoreImpl) Exists(ctx context.Context, repoURL string, fixCommit string) (bool, error) {
	if fs.disabled() {
		return false, nil
	}
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE repo_url = %s AND fix_commit = %s", fs.table(), fs.ph(1), fs.ph(2))
	var count int
	if err := fs.db.QueryRowContext(ctx, query, repoURL, fixCommit).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to look up finding: %w", err)
	}
	return count > 0, nil
}

// ShiftIDs moves every finding with an ID in [from, to] by offset.
// It refuses when a target ID is held by a finding outside the range.
func (fs *FindingStoreImpl) ShiftIDs(ctx context.Context, offset int64, from int64, to int64) ([]schema.KeyShift, error) {
	if fs.disabled() {
		return nil, nil
	}
	if offset == 0 {
		return nil, errors.New("offset must not be zero")
	}
	if from > to {
		return nil, fmt.Errorf("invalid range: from %d is greater than to %d", from, to)
	}
	if from+offset < 1 {
		return nil, fmt.Errorf("offset %d would move id %d below 1", offset, from)
	}

	tx, err := fs.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	collisionQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id BETWEEN %s AND %s AND NOT (id BETWEEN %s AND %s)",
		fs.table(), fs.ph(1), fs.ph(2), fs.ph(3), fs.ph(4))
	var collisions int
	if err := tx.QueryRowContext(ctx, collisionQuery, from+offset, to+offset, from, to).Scan(&collisions); err != nil {
		return nil, fmt.Errorf("failed to check target ids: %w", err)
	}
	if collisions > 0 {
		return nil, fmt.Errorf("%d target ids in [%d, %d] are already in use", collisions, from+offset, to+offset)
	}

	// Move rows in the order that never steps on an ID still waiting to move.
	order := "ASC"
	if offset > 0 {
		order = "DESC"
	}
	idsQuery := fmt.Sprintf("SELECT id FROM %s WHERE id BETWEEN %s AND %s ORDER BY id %s", fs.table(), fs.ph(1), fs.ph(2), order)
	rows, err := tx.QueryContext(ctx, idsQuery, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list ids: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	updateQuery := fmt.Sprintf("UPDATE %s SET id = %s WHERE id = %s", fs.table(), fs.ph(1), fs.ph(2))
	shifts := make([]schema.KeyShift, 0, len(ids))
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, updateQuery, id+offset, id); err != nil {
			return nil, fmt.Errorf("failed to move id %d to %d: %w", id, id+offset, err)
		}
		shifts = append(shifts, schema.KeyShift{OldID: id, NewID: id + offset})
	}

	if fs.backend == schema.PostgreSQLBackend && len(ids) > 0 {
		seqQuery := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), (SELECT MAX(id) FROM %s))", fs.tableName, fs.table())
		if _, err := tx.ExecContext(ctx, seqQuery); err != nil {
			return nil, fmt.Errorf("failed to advance id sequence: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit id shift: %w", err)
	}
	return shifts, nil
}

// GetStatus returns status information about the findings store.
func (fs *FindingStoreImpl) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:    string(fs.backend),
		Connected:  fs.db != nil,
		ByStatus:   make(map[schema.TriageStatus]int),
		ByTaxonomy: make(map[schema.Taxonomy]int),
	}
	if fs.disabled() {
		return status, nil
	}

	// Schema version is informational; a missing migrations table leaves it at zero.
	var version int64
	if err := fs.db.QueryRow("SELECT version FROM schema_migrations LIMIT 1").Scan(&version); err == nil && version > 0 {
		status.SchemaVersion = uint(version)
	}

	row := fs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*), COUNT(DISTINCT repo_url) FROM %s", fs.table()))
	if err := row.Scan(&status.TotalFindings, &status.Repositories); err != nil {
		return status, fmt.Errorf("failed to get total findings: %w", err)
	}
	if status.TotalFindings == 0 {
		return status, nil
	}

	if err := fs.countBy("triage_status", func(key string, n int) {
		status.ByStatus[schema.TriageStatus(key)] = n
	}); err != nil {
		return status, err
	}
	if err := fs.countBy("taxonomy", func(key string, n int) {
		status.ByTaxonomy[schema.Taxonomy(key)] = n
	}); err != nil {
		return status, err
	}

	lastQuery := fmt.Sprintf("SELECT id, created_at FROM %s ORDER BY id DESC LIMIT 1", fs.table())
	lastID, lastCreated, err := fs.scanIDAndTime(fs.db.QueryRow(lastQuery))
	if err != nil {
		return status, fmt.Errorf("failed to get last finding: %w", err)
	}
	status.LastID = lastID
	status.LastCreated = lastCreated

	oldestQuery := fmt.Sprintf("SELECT id, created_at FROM %s ORDER BY id ASC LIMIT 1", fs.table())
	_, oldestCreated, err := fs.scanIDAndTime(fs.db.QueryRow(oldestQuery))
	if err != nil {
		return status, fmt.Errorf("failed to get oldest finding: %w", err)
	}
	status.OldestCreated = oldestCreated

	return status, nil
}

// Close closes the underlying DB connection.
func (fs *FindingStoreImpl) Close() error {
	if fs.db != nil {
		return fs.db.Close()
	}
	return nil
}

// countBy groups findings by a non-null column and reports each count.
func (fs *FindingStoreImpl) countBy(column string, record func(key string, n int)) error {
	query := fmt.Sprintf("SELECT %s, COUNT(*) FROM %s WHERE %s IS NOT NULL GROUP BY %s", column, fs.table(), column, column)
	rows, err := fs.db.Query(query)
	if err != nil {
		return fmt.Errorf("failed to count findings by %s: %w", column, err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("failed to scan %s count: %w", column, err)
		}
		record(key, n)
	}
	return rows.Err()
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (fs *FindingStoreImpl) idExists(ctx context.Context, q queryer, id int64) (bool, error) {
	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id = %s", fs.table(), fs.ph(1))
	if err := q.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to look up finding %d: %w", id, err)
	}
	return count > 0, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanFinding reads one row selected with findingColumns.
func (fs *FindingStoreImpl) scanFinding(row rowScanner) (schema.Finding, error) {
	var f schema.Finding
	var status string
	var taxonomy sql.NullString
	var created any
	if fs.backend == schema.SQLiteBackend {
		created = new(string)
	} else {
		created = new(time.Time)
	}
	if err := row.Scan(&f.ID, &f.RepoURL, &f.RepoMessage, &f.FixCommit, &f.PreviousCommit, &f.DiffText,
		&f.ScanOutput, &status, &taxonomy, &f.ReviewerNotes, created); err != nil {
		return f, err
	}
	f.TriageStatus = schema.TriageStatus(status)
	if taxonomy.Valid && taxonomy.String != "" {
		t := schema.Taxonomy(taxonomy.String)
		f.Taxonomy = &t
	}
	createdAt, err := fs.parseCreated(created)
	if err != nil {
		return f, err
	}
	f.CreatedAt = createdAt
	return f, nil
}

func (fs *FindingStoreImpl) scanIDAndTime(row rowScanner) (int64, time.Time, error) {
	var id int64
	var created any
	if fs.backend == schema.SQLiteBackend {
		created = new(string)
	} else {
		created = new(time.Time)
	}
	if err := row.Scan(&id, created); err != nil {
		return 0, time.Time{}, err
	}
	t, err := fs.parseCreated(created)
	return id, t, err
}

// parseCreated handles the backend-specific created_at representation.
func (fs *FindingStoreImpl) parseCreated(v any) (time.Time, error) {
	switch c := v.(type) {
	case *string:
		t, err := time.Parse(time.RFC3339Nano, *c)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse created_at: %w", err)
		}
		return t, nil
	case *time.Time:
		return c.UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("unexpected created_at type %T", v)
	}
}

// taxonomyValue maps a nil taxonomy to SQL NULL.
func taxonomyValue(t *schema.Taxonomy) any {
	if t == nil {
		return nil
	}
	return string(*t)
}

// isUniqueViolation reports whether err is a unique-constraint failure on any backend.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
