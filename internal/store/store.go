// Package store persists analysis runs: fitted model summaries and the
// expressions the discovery service produced, keyed by run. Backed by SQLite
// in production and an in-memory implementation for tests.
package store

import "hfsurv/internal/survival"

// DefaultDBPath is the default relative path for the SQLite DB (per-study).
// Open() creates the parent dir (e.g. .hfsurv) if it does not exist.
const DefaultDBPath = ".hfsurv/hfsurv.db"

// Run is one invocation of the pipeline over a dataset.
type Run struct {
	ID        int64
	Study     string
	Dataset   string
	CreatedAt string // ISO 8601 UTC
}

// ModelRecord is a persisted model summary: the full per-covariate report plus
// the AUC evaluated at the run's horizon.
type ModelRecord struct {
	ID      int64
	RunID   int64
	Label   string // e.g. "raw" or "transformed"
	Horizon float64
	AUC     float64
	Rows    []survival.SummaryRow
}

// ExpressionRecord is one discovered (or configured) transformation.
type ExpressionRecord struct {
	ID        int64
	RunID     int64
	Covariate string
	Form      string
	Coef      float64
	Rank      int
	Score     float64
}

// Store is the persistence facade. CLI commands use only this interface.
type Store interface {
	CreateRun(studyName, dataset string) (int64, error)
	GetRun(id int64) (*Run, error)
	ListRuns() ([]*Run, error)

	SaveModel(rec *ModelRecord) (int64, error)
	ListModels(runID int64) ([]*ModelRecord, error)

	SaveExpressions(runID int64, recs []ExpressionRecord) error
	ListExpressions(runID int64) ([]ExpressionRecord, error)

	Close() error
}
