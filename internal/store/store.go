// Package store archives VM runs in a SQLite database
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"codonvm/internal/log"
)

// ErrNotFound is returned when no run has the requested ID
var ErrNotFound = errors.New("run not found")

// Run is one archived execution of a genome
type Run struct {
	ID           int64
	UUID         string
	Genome       string
	Mode         string
	Tokens       int
	Snapshots    int
	Instructions int
	Fingerprint  string
	Error        string // empty when the run halted normally
	Trace        []byte // canonical CBOR trace
	CreatedAt    time.Time
}

// Failed reports whether the run ended in a fault
func (r Run) Failed() bool {
	return r.Error != ""
}

// Store is a SQLite-backed run archive
type Store struct {
	db   *sql.DB
	path string
	psql squirrel.StatementBuilderType
	now  func() time.Time
}

var runColumns = []string{
	"id", "uuid", "genome", "mode", "tokens", "snapshots",
	"instructions", "fingerprint", "error", "trace", "created_at",
}

// Open opens or creates the database at path and applies pending migrations
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps :memory: databases coherent
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{
		db:   db,
		path: path,
		psql: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		now:  time.Now,
	}
	if err := s.runMigrations(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Debug("store: opened", "path", path)
	return s, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database location
func (s *Store) Path() string {
	return s.path
}

// SaveRun inserts r and returns its ID. UUID and CreatedAt are filled in when empty.
func (s *Store) SaveRun(ctx context.Context, r Run) (int64, error) {
	if r.UUID == "" {
		r.UUID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}

	query, args, err := s.psql.Insert("runs").
		Columns(runColumns[1:]...).
		Values(r.UUID, r.Genome, r.Mode, r.Tokens, r.Snapshots,
			r.Instructions, r.Fingerprint, r.Error, r.Trace, r.CreatedAt.UnixMilli()).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build insert: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}
	log.Debug("store: saved run", "id", id, "fingerprint", r.Fingerprint)
	return id, nil
}

// LoadRun returns the run with the given ID
func (s *Store) LoadRun(ctx context.Context, id int64) (*Run, error) {
	query, args, err := s.psql.Select(runColumns...).
		From("runs").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	r, err := scanRun(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %d: %w", id, err)
	}
	return r, nil
}

// ListRuns returns the most recent runs first, without their traces.
// A non-positive limit returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	return s.list(ctx, nil, limit)
}

// FindByFingerprint returns every run whose trace matches fingerprint
func (s *Store) FindByFingerprint(ctx context.Context, fingerprint string) ([]Run, error) {
	return s.list(ctx, squirrel.Eq{"fingerprint": fingerprint}, 0)
}

func (s *Store) list(ctx context.Context, where squirrel.Sqlizer, limit int) ([]Run, error) {
	columns := append(append([]string(nil), runColumns[:9]...), "NULL", "created_at")
	q := s.psql.Select(columns...).From("runs").OrderBy("id DESC")
	if where != nil {
		q = q.Where(where)
	}
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// DeleteRun removes the run with the given ID
func (s *Store) DeleteRun(ctx context.Context, id int64) error {
	query, args, err := s.psql.Delete("runs").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete run %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var r Run
	var created int64
	if err := row.Scan(&r.ID, &r.UUID, &r.Genome, &r.Mode, &r.Tokens, &r.Snapshots,
		&r.Instructions, &r.Fingerprint, &r.Error, &r.Trace, &created); err != nil {
		return nil, err
	}
	r.CreatedAt = time.UnixMilli(created)
	return &r, nil
}
