package roc

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name    string
		labels  []int
		scores  []float64
		wantAUC float64
	}{
		{
			name:    "perfect separation",
			labels:  []int{1, 1, 0, 0},
			scores:  []float64{0.9, 0.8, 0.2, 0.1},
			wantAUC: 1,
		},
		{
			name:    "perfectly reversed",
			labels:  []int{0, 0, 1, 1},
			scores:  []float64{0.9, 0.8, 0.2, 0.1},
			wantAUC: 0,
		},
		{
			name:    "constant score",
			labels:  []int{1, 0, 1, 0},
			scores:  []float64{0.5, 0.5, 0.5, 0.5},
			wantAUC: 0.5,
		},
		{
			name:    "one discordant pair",
			labels:  []int{1, 0, 1, 0},
			scores:  []float64{0.9, 0.8, 0.7, 0.1},
			wantAUC: 0.75,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Compute(tt.labels, tt.scores)
			if err != nil {
				t.Fatalf("Compute: %v", err)
			}
			if math.Abs(c.AUC-tt.wantAUC) > 1e-12 {
				t.Errorf("AUC = %g, want %g", c.AUC, tt.wantAUC)
			}
		})
	}
}

func TestCompute_CurveShape(t *testing.T) {
	labels := []int{1, 0, 1, 0, 1}
	scores := []float64{0.9, 0.8, 0.7, 0.3, 0.2}
	c, err := Compute(labels, scores)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	first := c.Points[0]
	if !math.IsInf(first.Threshold, 1) || first.FPR != 0 || first.TPR != 0 {
		t.Errorf("curve does not start at (inf, 0, 0): %+v", first)
	}
	last := c.Points[len(c.Points)-1]
	if last.FPR != 1 || last.TPR != 1 {
		t.Errorf("curve does not end at (1, 1): %+v", last)
	}
	for i := 1; i < len(c.Points); i++ {
		if c.Points[i].FPR < c.Points[i-1].FPR || c.Points[i].TPR < c.Points[i-1].TPR {
			t.Errorf("curve not monotone at point %d: %+v -> %+v", i, c.Points[i-1], c.Points[i])
		}
		if c.Points[i].Threshold >= c.Points[i-1].Threshold {
			t.Errorf("thresholds not strictly decreasing at point %d", i)
		}
	}
}

func TestCompute_TiedScoresCollapse(t *testing.T) {
	labels := []int{1, 0, 1, 0}
	scores := []float64{0.7, 0.7, 0.7, 0.1}
	c, err := Compute(labels, scores)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	// Origin plus one point per distinct score: 0.7 and 0.1.
	if len(c.Points) != 3 {
		t.Fatalf("got %d points, want 3", len(c.Points))
	}
	// The tie group moves diagonally, earning half credit under the trapezoid.
	if got := c.Points[1]; got.FPR != 0.5 || got.TPR != 1 {
		t.Errorf("tie-group point = %+v, want FPR 0.5 TPR 1", got)
	}
}

func TestCompute_InputErrors(t *testing.T) {
	tests := []struct {
		name   string
		labels []int
		scores []float64
	}{
		{"empty", nil, nil},
		{"all positive", []int{1, 1}, []float64{0.1, 0.2}},
		{"all negative", []int{0, 0}, []float64{0.1, 0.2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.labels, tt.scores)
			var ierr *EvaluationInputError
			if !errors.As(err, &ierr) {
				t.Fatalf("expected EvaluationInputError, got: %v", err)
			}
		})
	}

	if _, err := Compute([]int{1, 0}, []float64{0.1}); err == nil {
		t.Error("expected error for length mismatch")
	}
	if _, err := Compute([]int{1, 2}, []float64{0.1, 0.2}); err == nil {
		t.Error("expected error for label outside {0,1}")
	}
}

func TestAUC_EqualsConcordance(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	labels := make([]int, 60)
	scores := make([]float64, 60)
	for i := range labels {
		labels[i] = rng.Intn(2)
		// Coarse grid forces score ties.
		scores[i] = float64(rng.Intn(10)) / 10
	}

	c, err := Compute(labels, scores)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	conc, err := Concordance(labels, scores)
	if err != nil {
		t.Fatalf("Concordance: %v", err)
	}
	if math.Abs(c.AUC-conc) > 1e-12 {
		t.Errorf("AUC %g != concordance %g", c.AUC, conc)
	}
}

func TestConcordance_SingleClass(t *testing.T) {
	_, err := Concordance([]int{1, 1}, []float64{0.1, 0.2})
	var ierr *EvaluationInputError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected EvaluationInputError, got: %v", err)
	}
}
