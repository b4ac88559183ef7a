// Package importlog keeps a history of merge reports in a SQLite database
// so that the outcome of past imports can be reviewed later.
package importlog

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sillsdev/liftbridge/core/errors"
	"github.com/sillsdev/liftbridge/core/sqlite"
	"github.com/sillsdev/liftbridge/internal/logging"
	"github.com/sillsdev/liftbridge/internal/merge"
)

const schema = `
CREATE TABLE IF NOT EXISTS imports (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	source          TEXT NOT NULL,
	policy          TEXT NOT NULL,
	started         TEXT NOT NULL,
	finished        TEXT NOT NULL,
	entries_added   INTEGER NOT NULL,
	entries_merged  INTEGER NOT NULL,
	entries_skipped INTEGER NOT NULL,
	entries_deleted INTEGER NOT NULL,
	diagnostics     INTEGER NOT NULL,
	summary         TEXT NOT NULL,
	report          TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS imports_started ON imports(started);
`

// Record is one logged import.
type Record struct {
	ID          int64         `json:"id" yaml:"id"`
	Source      string        `json:"source" yaml:"source"`
	Policy      string        `json:"policy" yaml:"policy"`
	Started     time.Time     `json:"started" yaml:"started"`
	Finished    time.Time     `json:"finished" yaml:"finished"`
	Added       int           `json:"entries_added" yaml:"entries_added"`
	Merged      int           `json:"entries_merged" yaml:"entries_merged"`
	Skipped     int           `json:"entries_skipped" yaml:"entries_skipped"`
	Deleted     int           `json:"entries_deleted" yaml:"entries_deleted"`
	Diagnostics int           `json:"diagnostics" yaml:"diagnostics"`
	Summary     string        `json:"summary" yaml:"summary"`
	Report      *merge.Report `json:"report,omitempty" yaml:"report,omitempty"`
}

// Store is an import log backed by a SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the import log at path. The parent directory is
// created when missing.
func Open(path string) (*Store, error) {
	if path != sqlite.Memory() {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, errors.NewIO("mkdir", filepath.Dir(path), err)
		}
	}
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	// A single connection keeps in-memory databases shared across calls.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create import log schema")
	}
	logging.Debug("import log opened", "path", path, "driver", sqlite.DriverType())
	return &Store{db: db, path: path}, nil
}

// OpenReadOnly opens an existing import log for reading. A missing log is
// reported as not found rather than created.
func OpenReadOnly(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFound("import log", path)
		}
		return nil, errors.NewIO("stat", path, err)
	}
	db, err := sqlite.OpenReadOnly(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	db.SetMaxOpenConns(1)
	return &Store{db: db, path: path}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save records a merge report and returns its id.
func (s *Store) Save(ctx context.Context, source string, policy merge.Policy, rep *merge.Report) (int64, error) {
	if rep == nil {
		return 0, errors.NewValidation("report", "nil report")
	}
	body, err := json.Marshal(rep)
	if err != nil {
		return 0, errors.Wrap(err, "encode report")
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO imports
		(source, policy, started, finished, entries_added, entries_merged, entries_skipped, entries_deleted, diagnostics, summary, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		source, policy.String(),
		formatTime(rep.Started), formatTime(rep.Finished),
		rep.EntriesAdded, rep.EntriesMerged, rep.EntriesSkipped, rep.EntriesDeleted,
		len(rep.Diagnostics), rep.Summary(), string(body))
	if err != nil {
		return 0, errors.Wrap(err, "save import")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "save import")
	}
	logging.Info("import logged", "id", id, "source", source, "policy", policy.String())
	return id, nil
}

const columns = `id, source, policy, started, finished, entries_added, entries_merged, entries_skipped, entries_deleted, diagnostics, summary`

// List returns the most recent imports first, without their reports. A
// limit of zero or less returns every import.
func (s *Store) List(ctx context.Context, limit int) ([]*Record, error) {
	q := `SELECT ` + columns + ` FROM imports ORDER BY id DESC`
	if limit > 0 {
		q += ` LIMIT ` + strconv.Itoa(limit)
	}
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "list imports")
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list imports")
	}
	return out, nil
}

// Get returns one import with its full report.
func (s *Store) Get(ctx context.Context, id int64) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+columns+`, report FROM imports WHERE id = ?`, id)
	var body string
	r, err := scanRecord(row, &body)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("import", strconv.FormatInt(id, 10))
	}
	if err != nil {
		return nil, err
	}
	r.Report = new(merge.Report)
	if err := json.Unmarshal([]byte(body), r.Report); err != nil {
		return nil, errors.Wrapf(err, "decode report %d", id)
	}
	return r, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner, extra ...any) (*Record, error) {
	var (
		r                 Record
		started, finished string
	)
	dest := append([]any{
		&r.ID, &r.Source, &r.Policy, &started, &finished,
		&r.Added, &r.Merged, &r.Skipped, &r.Deleted, &r.Diagnostics, &r.Summary,
	}, extra...)
	if err := sc.Scan(dest...); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, errors.Wrap(err, "read import")
	}
	r.Started = parseTime(started)
	r.Finished = parseTime(finished)
	return &r, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
