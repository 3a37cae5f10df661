// Package report persists completed match runs in a DuckDB file so graders
// can revisit past reconciliation reports. The matching engine itself stays
// pure; archiving happens after a run completes.
package report

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"path/filepath"

	"github.com/grade-assist/backend/internal/models"
	"github.com/marcboeker/go-duckdb"
)

// Archive is a DuckDB-backed store of match run reports.
type Archive struct {
	db     *sql.DB
	dbPath string
}

// RunSummary is one archived run's aggregate row.
type RunSummary struct {
	RunID            string `json:"runId"`
	StartedAt        int64  `json:"startedAt"` // Unix ms
	ProcessingTimeMs int64  `json:"processingTimeMs"`
	Total            int    `json:"total"`
	Matched          int    `json:"matched"`
	HighConfidence   int    `json:"highConfidence"`
	MediumConfidence int    `json:"mediumConfidence"`
	Unmatched        int    `json:"unmatched"`
}

// ArchivedMatch is one archived per-file verdict.
type ArchivedMatch struct {
	FileID      string  `json:"fileId"`
	FileName    string  `json:"fileName"`
	StudentID   string  `json:"studentId,omitempty"`
	StudentName string  `json:"studentName,omitempty"`
	Confidence  float64 `json:"confidence"`
	Matched     bool    `json:"matched"`
}

// Open opens (or creates) the report archive under the given directory.
func Open(reportsDir string) (*Archive, error) {
	dbPath := filepath.Join(reportsDir, "reports.duckdb")

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA memory_limit='256MB'",
			"PRAGMA threads=2",
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id        VARCHAR PRIMARY KEY,
			started_at    BIGINT NOT NULL,
			processing_ms BIGINT NOT NULL,
			total         INTEGER NOT NULL,
			matched       INTEGER NOT NULL,
			high_conf     INTEGER NOT NULL,
			medium_conf   INTEGER NOT NULL,
			unmatched     INTEGER NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating runs table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS matches (
			run_id       VARCHAR NOT NULL,
			file_id      VARCHAR NOT NULL,
			file_name    VARCHAR NOT NULL,
			student_id   VARCHAR,
			student_name VARCHAR,
			confidence   DOUBLE NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating matches table: %w", err)
	}

	fmt.Printf("[Archive] Report archive ready at %s\n", dbPath)
	return &Archive{db: db, dbPath: dbPath}, nil
}

// SaveRun persists a completed run and all its per-file verdicts in one
// transaction.
func (a *Archive) SaveRun(run *models.MatchRun, results []models.MatchResult) error {
	if run.Stats == nil {
		return fmt.Errorf("run %s has no stats", run.ID)
	}

	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning archive transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO runs (run_id, started_at, processing_ms, total, matched, high_conf, medium_conf, unmatched)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.ProcessingTimeMs,
		run.Stats.Total, run.Stats.Matched,
		run.Stats.HighConfidence, run.Stats.MediumConfidence, run.Stats.Unmatched,
	); err != nil {
		return fmt.Errorf("inserting run row: %w", err)
	}

	for _, r := range results {
		var studentID, studentName sql.NullString
		if r.MatchedStudent != nil {
			studentID = sql.NullString{String: r.MatchedStudent.ID, Valid: true}
			studentName = sql.NullString{String: r.MatchedStudent.Name, Valid: true}
		}
		if _, err := tx.Exec(
			`INSERT INTO matches (run_id, file_id, file_name, student_id, student_name, confidence)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, r.FileID, r.FileName, studentID, studentName, r.Confidence,
		); err != nil {
			return fmt.Errorf("inserting match row: %w", err)
		}
	}

	return tx.Commit()
}

// RecentRuns returns the most recent archived runs, newest first.
func (a *Archive) RecentRuns(limit int) ([]RunSummary, error) {
	rows, err := a.db.Query(
		`SELECT run_id, started_at, processing_ms, total, matched, high_conf, medium_conf, unmatched
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent runs: %w", err)
	}
	defer rows.Close()

	summaries := make([]RunSummary, 0, limit)
	for rows.Next() {
		var s RunSummary
		if err := rows.Scan(&s.RunID, &s.StartedAt, &s.ProcessingTimeMs,
			&s.Total, &s.Matched, &s.HighConfidence, &s.MediumConfidence, &s.Unmatched); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// GetRun returns one archived run with its per-file verdicts, or false when
// the run is not in the archive.
func (a *Archive) GetRun(runID string) (*RunSummary, []ArchivedMatch, bool, error) {
	var s RunSummary
	err := a.db.QueryRow(
		`SELECT run_id, started_at, processing_ms, total, matched, high_conf, medium_conf, unmatched
		 FROM runs WHERE run_id = ?`, runID).
		Scan(&s.RunID, &s.StartedAt, &s.ProcessingTimeMs,
			&s.Total, &s.Matched, &s.HighConfidence, &s.MediumConfidence, &s.Unmatched)
	if err == sql.ErrNoRows {
		return nil, nil, false, nil
	}
	if err != nil {
		return nil, nil, false, fmt.Errorf("querying run: %w", err)
	}

	rows, err := a.db.Query(
		`SELECT file_id, file_name, student_id, student_name, confidence
		 FROM matches WHERE run_id = ? ORDER BY confidence DESC, file_id`, runID)
	if err != nil {
		return nil, nil, false, fmt.Errorf("querying matches: %w", err)
	}
	defer rows.Close()

	var matches []ArchivedMatch
	for rows.Next() {
		var m ArchivedMatch
		var studentID, studentName sql.NullString
		if err := rows.Scan(&m.FileID, &m.FileName, &studentID, &studentName, &m.Confidence); err != nil {
			return nil, nil, false, fmt.Errorf("scanning match row: %w", err)
		}
		m.StudentID = studentID.String
		m.StudentName = studentName.String
		m.Matched = studentID.Valid
		matches = append(matches, m)
	}

	return &s, matches, true, rows.Err()
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}
