package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/officepdf/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/officepdf/internal/core/domain"
	"github.com/custodia-labs/officepdf/internal/core/ports/driven"
)

// DBFileName is the database file inside the data directory.
const DBFileName = "history.db"

// Store is a SQLite database holding the conversion history.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.officepdf/data/history.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".officepdf", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DBFileName)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// HistoryStore returns a HistoryStore interface backed by this store.
func (s *Store) HistoryStore() driven.HistoryStore {
	return &historyStore{store: s}
}

// migrate runs all pending up migrations, recording each applied version.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_history.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// apply runs one migration and records its version atomically.
func (s *Store) apply(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(script); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// SchemaVersion returns the highest applied migration version.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&v)
	return v, err
}

// ==================== History Store ====================

// historyStore implements driven.HistoryStore.
type historyStore struct {
	store *Store
}

var _ driven.HistoryStore = (*historyStore)(nil)

const historyColumns = `id, source_name, source_size, format, quality, encrypted, status,
	failure_kind, reason, output_name, output_size, started_at, finished_at`

// Save stores or replaces a record.
func (s *historyStore) Save(ctx context.Context, rec domain.ConversionRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("%w: record without id", domain.ErrInvalidInput)
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO conversions (`+historyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_name = excluded.source_name,
			source_size = excluded.source_size,
			format = excluded.format,
			quality = excluded.quality,
			encrypted = excluded.encrypted,
			status = excluded.status,
			failure_kind = excluded.failure_kind,
			reason = excluded.reason,
			output_name = excluded.output_name,
			output_size = excluded.output_size,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at
	`, rec.ID, rec.SourceName, rec.SourceSize,
		nullString(string(rec.Format)), nullString(string(rec.Quality)),
		boolToInt(rec.Encrypted), string(rec.Status),
		nullString(string(rec.FailureKind)), nullString(rec.Reason),
		nullString(rec.OutputName), rec.OutputSize,
		unixNano(rec.StartedAt), unixNano(rec.FinishedAt))

	if err != nil {
		return fmt.Errorf("saving conversion record: %w", err)
	}
	return nil
}

// Get retrieves a record by ID.
func (s *historyStore) Get(ctx context.Context, id string) (*domain.ConversionRecord, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+historyColumns+" FROM conversions WHERE id = ?", id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning conversion record: %w", err)
	}
	return rec, nil
}

// List returns records newest first.
func (s *historyStore) List(ctx context.Context, limit int) ([]domain.ConversionRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+historyColumns+" FROM conversions ORDER BY finished_at DESC, id ASC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("querying conversions: %w", err)
	}
	defer rows.Close()

	var records []domain.ConversionRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning conversion record: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating conversions: %w", err)
	}
	return records, nil
}

// Clear removes all records.
func (s *historyStore) Clear(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM conversions"); err != nil {
		return fmt.Errorf("clearing conversions: %w", err)
	}
	return nil
}

// Prune keeps only the most recent 'keep' records.
func (s *historyStore) Prune(ctx context.Context, keep int) error {
	if keep < 0 {
		keep = 0
	}
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM conversions WHERE id NOT IN (
			SELECT id FROM conversions ORDER BY finished_at DESC, id ASC LIMIT ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("pruning conversions: %w", err)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.ConversionRecord, error) {
	var (
		rec                                       domain.ConversionRecord
		format, quality, kind, reason, outputName sql.NullString
		status                                    string
		encrypted                                 int
		startedAt, finishedAt                     int64
	)
	if err := row.Scan(&rec.ID, &rec.SourceName, &rec.SourceSize, &format, &quality,
		&encrypted, &status, &kind, &reason, &outputName, &rec.OutputSize,
		&startedAt, &finishedAt); err != nil {
		return nil, err
	}

	rec.Format = domain.Format(format.String)
	rec.Quality = domain.Quality(quality.String)
	rec.Encrypted = encrypted != 0
	rec.Status = domain.ConversionStatus(status)
	rec.FailureKind = domain.FailureKind(kind.String)
	rec.Reason = reason.String
	rec.OutputName = outputName.String
	rec.StartedAt = fromUnixNano(startedAt)
	rec.FinishedAt = fromUnixNano(finishedAt)
	return &rec, nil
}

// nullString converts an empty string to NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// boolToInt converts a bool to SQLite's integer representation.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// unixNano stores times as integers so ORDER BY is chronological.
func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
