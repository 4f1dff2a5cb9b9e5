package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"linkflow/internal/config"
	"linkflow/internal/flow"
)

// Store persists run audit records backed by SQLite. A file lock next to the
// database keeps concurrent linkflow invocations from interleaving writes.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the run database under the configured
// output directory and acquires the writer lock.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Output.Dir, "runs.db")
	lock := flock.New(dbPath + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run database lock: %w", err)
	}
	if !ok {
		return nil, errors.New("another linkflow instance is using the run database")
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}

	return store, nil
}

// Close releases the writer lock and closes the database connection.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// SaveRun persists a finished run and its step results in one transaction.
func (s *Store) SaveRun(ctx context.Context, rc *flow.RunContext) (*Run, error) {
	if rc == nil {
		return nil, errors.New("run context is nil")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin save tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO runs (
            run_id, environment, organization, state, failure_step, failure,
            linkpage_id, linkpage_url, qr_code_id, qr_url, qr_image_path,
            media_id, pdf_url, link_id, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rc.RunID,
		rc.Environment,
		rc.Organization,
		string(rc.State),
		nullableString(string(rc.FailureStep)),
		nullableString(rc.Failure),
		rc.Linkpage.ID,
		nullableString(rc.Linkpage.URL),
		rc.QRCodeID,
		nullableString(rc.QRURL),
		nullableString(rc.QRImagePath),
		rc.MediaID,
		nullableString(rc.PDFURL),
		rc.LinkID,
		rc.StartedAt.UTC().Format(time.RFC3339Nano),
		nullableTime(rc.FinishedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	for _, result := range rc.Results() {
		bodyJSON, err := json.Marshal(result.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal step body: %w", err)
		}
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO run_steps (run_id, step, status_code, body_json, recorded_at)
             VALUES (?, ?, ?, ?, ?)`,
			rc.RunID,
			string(result.Step),
			result.StatusCode,
			string(bodyJSON),
			result.RecordedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return nil, fmt.Errorf("insert step %s: %w", result.Step, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit save: %w", err)
	}
	return s.GetByRunID(ctx, rc.RunID)
}

// GetByRunID fetches a run by its uuid, or nil when absent.
func (s *Store) GetByRunID(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// List returns the most recent runs, newest first. A non-positive limit
// returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Steps returns the step records of a run in execution order.
func (s *Store) Steps(ctx context.Context, runID string) ([]StepRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, run_id, step, status_code, body_json, recorded_at
         FROM run_steps WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	var records []StepRecord
	for rows.Next() {
		var (
			record      StepRecord
			bodyJSON    sql.NullString
			recordedRaw string
		)
		if err := rows.Scan(&record.ID, &record.RunID, &record.Step, &record.StatusCode, &bodyJSON, &recordedRaw); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		record.BodyJSON = bodyJSON.String
		if recorded, err := parseTimeString(recordedRaw); err == nil {
			record.RecordedAt = recorded
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Stats returns a count of runs grouped by terminal state.
func (s *Store) Stats(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT state, COUNT(1) FROM runs GROUP BY state`)
	if err != nil {
		return nil, fmt.Errorf("run stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var state string
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, err
		}
		stats[state] = count
	}
	return stats, rows.Err()
}

const runColumns = "id, run_id, environment, organization, state, failure_step, failure, linkpage_id, linkpage_url, qr_code_id, qr_url, qr_image_path, media_id, pdf_url, link_id, started_at, finished_at"

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run         Run
		failureStep sql.NullString
		failure     sql.NullString
		linkpageURL sql.NullString
		qrURL       sql.NullString
		qrImagePath sql.NullString
		pdfURL      sql.NullString
		startedRaw  string
		finishedRaw sql.NullString
	)

	if err := scanner.Scan(
		&run.ID,
		&run.RunID,
		&run.Environment,
		&run.Organization,
		&run.State,
		&failureStep,
		&failure,
		&run.LinkpageID,
		&linkpageURL,
		&run.QRCodeID,
		&qrURL,
		&qrImagePath,
		&run.MediaID,
		&pdfURL,
		&run.LinkID,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}

	run.FailureStep = failureStep.String
	run.Failure = failure.String
	run.LinkpageURL = linkpageURL.String
	run.QRURL = qrURL.String
	run.QRImagePath = qrImagePath.String
	run.PDFURL = pdfURL.String

	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			run.FinishedAt = finished
		}
	}
	return &run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
