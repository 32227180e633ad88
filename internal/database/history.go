package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/harsanitizer/internal/model"
)

// FileName is the name of the database file inside the history directory.
const FileName = "history.db"

// Run statuses stored in the status column.
const (
	StatusSanitized = "sanitized"
	StatusFailed    = "failed"
)

// DefaultListLimit is the number of runs ListRuns returns when no limit is set.
const DefaultListLimit = 20

// HistoryDB provides SQLite-based storage for run history.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so that concurrent harsanitizer
	// processes can read while one of them writes.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("history database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the path of the database file.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		source TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		status TEXT NOT NULL,
		failed_stage TEXT,
		error TEXT,
		input_digest TEXT,
		output_digest TEXT,
		redacted_occurrences INTEGER DEFAULT 0,
		findings INTEGER DEFAULT 0,
		summary_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// RunRecord is one stored run.
type RunRecord struct {
	ID                  int64          `json:"id"`
	RunID               string         `json:"run_id"`
	Source              string         `json:"source"`
	StartedAt           time.Time      `json:"started_at"`
	FinishedAt          time.Time      `json:"finished_at,omitzero"`
	Status              string         `json:"status"`
	FailedStage         string         `json:"failed_stage,omitempty"`
	Error               string         `json:"error,omitempty"`
	InputDigest         string         `json:"input_digest,omitempty"`
	OutputDigest        string         `json:"output_digest,omitempty"`
	RedactedOccurrences int            `json:"redacted_occurrences"`
	Findings            int            `json:"findings"`
	Summary             *model.Summary `json:"summary,omitempty"`
}

// SaveRun stores the outcome of a run. Saving the same run twice fails.
func (hdb *HistoryDB) SaveRun(ctx context.Context, report *model.SanitizeReport) error {
	summary := model.NewSummary(report)
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to serialize summary: %w", err)
	}

	status := StatusSanitized
	if report.Failed() {
		status = StatusFailed
	}

	var finishedAt sql.NullString
	if !report.FinishedAt.IsZero() {
		finishedAt = sql.NullString{String: formatTimestamp(report.FinishedAt), Valid: true}
	}

	query := `
	INSERT INTO runs (run_id, source, started_at, finished_at, status, failed_stage, error,
		input_digest, output_digest, redacted_occurrences, findings, summary_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = hdb.db.ExecContext(ctx, query,
		report.RunID,
		report.Source,
		formatTimestamp(report.StartedAt),
		finishedAt,
		status,
		report.FailedStage,
		report.ErrorMessage,
		report.InputDigest,
		report.OutputDigest,
		summary.RedactedOccurrences,
		summary.TotalFindings(),
		string(summaryJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", report.RunID, err)
	}

	return nil
}

// ListOptions filters ListRuns.
type ListOptions struct {
	// Limit is the maximum number of runs returned. Values below one mean
	// DefaultListLimit.
	Limit int

	// Source keeps only the runs of this source path when set.
	Source string
}

// ListRuns returns stored runs, newest first. Summaries are not loaded.
func (hdb *HistoryDB) ListRuns(ctx context.Context, opts ListOptions) ([]RunRecord, error) {
	limit := opts.Limit
	if limit < 1 {
		limit = DefaultListLimit
	}

	var sb strings.Builder
	sb.WriteString(`
	SELECT id, run_id, source, started_at, finished_at, status, failed_stage, error,
		input_digest, output_digest, redacted_occurrences, findings
	FROM runs
	`)
	args := make([]any, 0, 2)
	if opts.Source != "" {
		sb.WriteString("WHERE source = ?\n")
		args = append(args, opts.Source)
	}
	sb.WriteString("ORDER BY started_at DESC, id DESC\nLIMIT ?")
	args = append(args, limit)

	rows, err := hdb.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}

	return records, rows.Err()
}

// GetRun retrieves a run with its summary by run id.
// It returns nil without error when no such run exists.
func (hdb *HistoryDB) GetRun(ctx context.Context, runID string) (*RunRecord, error) {
	query := `
	SELECT id, run_id, source, started_at, finished_at, status, failed_stage, error,
		input_digest, output_digest, redacted_occurrences, findings, summary_json
	FROM runs
	WHERE run_id = ?
	`

	row := hdb.db.QueryRowContext(ctx, query, runID)
	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// DeleteRunsBefore removes runs started before t and returns how many were removed.
func (hdb *HistoryDB) DeleteRunsBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := hdb.db.ExecContext(ctx, "DELETE FROM runs WHERE started_at < ?", formatTimestamp(t))
	if err != nil {
		return 0, fmt.Errorf("failed to delete runs: %w", err)
	}
	return res.RowsAffected()
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRun reads the columns of ListRuns, plus summary_json when present.
func scanRun(row rowScanner) (*RunRecord, error) {
	var (
		rec                                      RunRecord
		startedAt                                string
		finishedAt, failedStage, errMsg          sql.NullString
		inputDigest, outputDigest, summaryColumn sql.NullString
	)

	dest := []any{
		&rec.ID, &rec.RunID, &rec.Source, &startedAt, &finishedAt, &rec.Status,
		&failedStage, &errMsg, &inputDigest, &outputDigest, &rec.RedactedOccurrences, &rec.Findings,
	}
	if _, ok := row.(*sql.Row); ok {
		dest = append(dest, &summaryColumn)
	}

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	rec.StartedAt = parseTimestamp(startedAt)
	if finishedAt.Valid {
		rec.FinishedAt = parseTimestamp(finishedAt.String)
	}
	rec.FailedStage = failedStage.String
	rec.Error = errMsg.String
	rec.InputDigest = inputDigest.String
	rec.OutputDigest = outputDigest.String

	if summaryColumn.Valid && summaryColumn.String != "" {
		var summary model.Summary
		if err := json.Unmarshal([]byte(summaryColumn.String), &summary); err != nil {
			return nil, fmt.Errorf("failed to parse summary of run %s: %w", rec.RunID, err)
		}
		rec.Summary = &summary
	}

	return &rec, nil
}

// timestampLayout sorts lexically in chronological order, so started_at
// can be compared and ordered as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// timestampFormats contains the timestamp formats that may be found in the
// database. The order matters: more specific formats should come first.
var timestampFormats = []string{
	timestampLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05", // SQLite default datetime format
	"2006-01-02T15:04:05",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
