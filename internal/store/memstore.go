package store

import (
	"fmt"
	"sort"
	"sync"
)

// MemStore is an in-memory Store used by tests and dry runs.
type MemStore struct {
	mu          sync.Mutex
	nextRun     int64
	nextModel   int64
	nextExpr    int64
	runs        map[int64]*Run
	models      map[int64][]*ModelRecord
	expressions map[int64][]ExpressionRecord
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		runs:        make(map[int64]*Run),
		models:      make(map[int64][]*ModelRecord),
		expressions: make(map[int64][]ExpressionRecord),
	}
}

func (s *MemStore) CreateRun(studyName, dataset string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextRun++
	s.runs[s.nextRun] = &Run{ID: s.nextRun, Study: studyName, Dataset: dataset, CreatedAt: nowUTC()}
	return s.nextRun, nil
}

func (s *MemStore) GetRun(id int64) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("run %d not found", id)
	}
	cp := *r
	return &cp, nil
}

func (s *MemStore) ListRuns() ([]*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Run, 0, len(s.runs))
	for _, r := range s.runs {
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID > out[b].ID })
	return out, nil
}

func (s *MemStore) SaveModel(rec *ModelRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[rec.RunID]; !ok {
		return 0, fmt.Errorf("run %d not found", rec.RunID)
	}
	s.nextModel++
	cp := *rec
	cp.ID = s.nextModel
	s.models[rec.RunID] = append(s.models[rec.RunID], &cp)
	return cp.ID, nil
}

func (s *MemStore) ListModels(runID int64) ([]*ModelRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := s.models[runID]
	out := make([]*ModelRecord, len(recs))
	for i, rec := range recs {
		cp := *rec
		out[i] = &cp
	}
	return out, nil
}

func (s *MemStore) SaveExpressions(runID int64, recs []ExpressionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[runID]; !ok {
		return fmt.Errorf("run %d not found", runID)
	}
	for _, rec := range recs {
		s.nextExpr++
		rec.ID = s.nextExpr
		rec.RunID = runID
		s.expressions[runID] = append(s.expressions[runID], rec)
	}
	return nil
}

func (s *MemStore) ListExpressions(runID int64) ([]ExpressionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]ExpressionRecord(nil), s.expressions[runID]...)
	sort.Slice(out, func(a, b int) bool { return out[a].Rank < out[b].Rank })
	return out, nil
}

func (s *MemStore) Close() error { return nil }
