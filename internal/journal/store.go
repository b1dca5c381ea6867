// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package journal keeps a SQLite history of conversion outcomes.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/docconvert/pkg/types"
)

// DefaultPath is where the journal lives when no path is configured.
const DefaultPath = ".docconvert/history.db"

const defaultLimit = 50

// Entry is one recorded conversion.
type Entry struct {
	ID             string               `json:"id" yaml:"id"`
	Input          string               `json:"input" yaml:"input"`
	Output         string               `json:"output,omitempty" yaml:"output,omitempty"`
	Status         types.OutcomeStatus  `json:"status" yaml:"status"`
	Method         types.Method         `json:"method" yaml:"method"`
	Classification types.Classification `json:"classification,omitempty" yaml:"classification,omitempty"`
	Message        string               `json:"message" yaml:"message"`
	DurationMS     int64                `json:"duration_ms" yaml:"duration_ms"`
	CreatedAt      time.Time            `json:"created_at" yaml:"created_at"`
}

// Query filters List and the exports. Zero values match everything.
type Query struct {
	Status types.OutcomeStatus
	Method types.Method
	// Limit caps the number of entries, newest first. Zero means 50.
	Limit int
}

// Store manages the journal SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the journal database at cfg.Path (DefaultPath when
// empty) and creates the schema if it does not exist.
func Open(cfg types.JournalConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection serializes concurrent batch writers.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS history (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			input TEXT NOT NULL,
			output TEXT,
			status TEXT NOT NULL,
			method TEXT NOT NULL,
			classification TEXT,
			message TEXT,
			duration_ms INTEGER,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_status ON history(status)`,
		`CREATE INDEX IF NOT EXISTS idx_history_input ON history(input)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record appends o to the journal and returns the stored entry.
func (s *Store) Record(ctx context.Context, o types.ConversionOutcome) (Entry, error) {
	e := Entry{
		ID:             uuid.NewString(),
		Input:          o.Input,
		Output:         o.Output,
		Status:         o.Status,
		Method:         o.Method,
		Classification: o.Classification,
		Message:        o.Message,
		DurationMS:     o.Duration.Milliseconds(),
		CreatedAt:      s.now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history (id, input, output, status, method, classification, message, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Input, e.Output, string(e.Status), string(e.Method), string(e.Classification),
		e.Message, e.DurationMS, e.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("recording %s: %w", o.Input, err)
	}
	return e, nil
}

// List returns entries matching q, newest first.
func (s *Store) List(ctx context.Context, q Query) ([]Entry, error) {
	var where []string
	var args []any
	if q.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(q.Status))
	}
	if q.Method != "" {
		where = append(where, "method = ?")
		args = append(args, string(q.Method))
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	query := `SELECT id, input, output, status, method, classification, message, duration_ms, created_at FROM history`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var output, class, message sql.NullString
		var status, method, created string
		if err := rows.Scan(&e.ID, &e.Input, &output, &status, &method, &class, &message, &e.DurationMS, &created); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		e.Output = output.String
		e.Status = types.OutcomeStatus(status)
		e.Method = types.Method(method)
		e.Classification = types.Classification(class.String)
		e.Message = message.String
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parsing created_at %q: %w", created, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Summary counts entries per status.
type Summary struct {
	OK    int `json:"ok" yaml:"ok"`
	Error int `json:"error" yaml:"error"`
}

// Summarize counts all recorded outcomes by status.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, count(*) FROM history GROUP BY status`)
	if err != nil {
		return Summary{}, fmt.Errorf("summarizing history: %w", err)
	}
	defer rows.Close()

	var sum Summary
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return Summary{}, fmt.Errorf("scanning summary row: %w", err)
		}
		switch types.OutcomeStatus(status) {
		case types.StatusOK:
			sum.OK = n
		case types.StatusError:
			sum.Error = n
		}
	}
	return sum, rows.Err()
}
