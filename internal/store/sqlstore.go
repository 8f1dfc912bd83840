package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"hfsurv/internal/survival"
)

// nowUTC returns the current UTC time as an ISO 8601 string.
func nowUTC() string { return time.Now().UTC().Format(time.RFC3339) }

const currentSchemaVersion = 1

// SqlStore implements Store with SQLite.
type SqlStore struct {
	db *sql.DB
}

// Open opens or creates a SQLite DB at path and runs migrations. The parent
// directory (e.g. .hfsurv) is created if it does not exist.
func Open(path string) (*SqlStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &SqlStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SqlStore) migrate() error {
	var tableCount int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableCount == 0 {
		return s.freshInstall()
	}

	var version int
	if err := s.db.QueryRow("SELECT version FROM schema_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != currentSchemaVersion {
		return fmt.Errorf("store schema version %d not supported (want %d)", version, currentSchemaVersion)
	}
	return nil
}

func (s *SqlStore) freshInstall() error {
	stmts := []string{
		`CREATE TABLE schema_version (version INTEGER NOT NULL)`,
		`CREATE TABLE runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			study TEXT NOT NULL,
			dataset TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE models (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			label TEXT NOT NULL,
			horizon REAL NOT NULL,
			auc REAL NOT NULL,
			summary TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE expressions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			covariate TEXT NOT NULL,
			form TEXT NOT NULL,
			coef REAL NOT NULL,
			rank INTEGER NOT NULL,
			score REAL NOT NULL
		)`,
		fmt.Sprintf(`INSERT INTO schema_version (version) VALUES (%d)`, currentSchemaVersion),
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *SqlStore) Close() error { return s.db.Close() }

// CreateRun inserts a run row and returns its ID.
func (s *SqlStore) CreateRun(studyName, dataset string) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO runs (study, dataset, created_at) VALUES (?, ?, ?)",
		studyName, dataset, nowUTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("create run: %w", err)
	}
	return res.LastInsertId()
}

// GetRun returns one run by ID.
func (s *SqlStore) GetRun(id int64) (*Run, error) {
	r := &Run{}
	err := s.db.QueryRow(
		"SELECT id, study, dataset, created_at FROM runs WHERE id = ?", id,
	).Scan(&r.ID, &r.Study, &r.Dataset, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

// ListRuns returns all runs, newest first.
func (s *SqlStore) ListRuns() ([]*Run, error) {
	rows, err := s.db.Query("SELECT id, study, dataset, created_at FROM runs ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	var out []*Run
	for rows.Next() {
		r := &Run{}
		if err := rows.Scan(&r.ID, &r.Study, &r.Dataset, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveModel persists one fitted model summary under its run.
func (s *SqlStore) SaveModel(rec *ModelRecord) (int64, error) {
	summary, err := json.Marshal(rec.Rows)
	if err != nil {
		return 0, fmt.Errorf("encode summary: %w", err)
	}
	res, err := s.db.Exec(
		"INSERT INTO models (run_id, label, horizon, auc, summary, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		rec.RunID, rec.Label, rec.Horizon, rec.AUC, string(summary), nowUTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("save model: %w", err)
	}
	return res.LastInsertId()
}

// ListModels returns the models of one run in insertion order.
func (s *SqlStore) ListModels(runID int64) ([]*ModelRecord, error) {
	rows, err := s.db.Query(
		"SELECT id, run_id, label, horizon, auc, summary FROM models WHERE run_id = ? ORDER BY id", runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	defer rows.Close()
	var out []*ModelRecord
	for rows.Next() {
		rec := &ModelRecord{}
		var summary string
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Label, &rec.Horizon, &rec.AUC, &summary); err != nil {
			return nil, fmt.Errorf("scan model: %w", err)
		}
		var parsed []survival.SummaryRow
		if err := json.Unmarshal([]byte(summary), &parsed); err != nil {
			return nil, fmt.Errorf("decode summary of model %d: %w", rec.ID, err)
		}
		rec.Rows = parsed
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SaveExpressions persists discovered expressions under their run.
func (s *SqlStore) SaveExpressions(runID int64, recs []ExpressionRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	for _, rec := range recs {
		if _, err := tx.Exec(
			"INSERT INTO expressions (run_id, covariate, form, coef, rank, score) VALUES (?, ?, ?, ?, ?, ?)",
			runID, rec.Covariate, rec.Form, rec.Coef, rec.Rank, rec.Score,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("save expression: %w", err)
		}
	}
	return tx.Commit()
}

// ListExpressions returns the expressions of one run ordered by rank.
func (s *SqlStore) ListExpressions(runID int64) ([]ExpressionRecord, error) {
	rows, err := s.db.Query(
		"SELECT id, run_id, covariate, form, coef, rank, score FROM expressions WHERE run_id = ? ORDER BY rank", runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list expressions: %w", err)
	}
	defer rows.Close()
	var out []ExpressionRecord
	for rows.Next() {
		var rec ExpressionRecord
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Covariate, &rec.Form, &rec.Coef, &rec.Rank, &rec.Score); err != nil {
			return nil, fmt.Errorf("scan expression: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
