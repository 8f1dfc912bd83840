package survival

import "fmt"

// DegenerateInputError reports input on which the partial likelihood is not
// identifiable: no observed events, or a rank-deficient (collinear or
// constant) covariate design. The fitter refuses such input up front rather
// than returning a spurious model.
type DegenerateInputError struct {
	Reason string
}

func (e *DegenerateInputError) Error() string {
	return "survival: degenerate input: " + e.Reason
}

// ConvergenceError reports that the optimizer exhausted its iteration budget
// before the score norm fell below tolerance. No partial model is returned.
type ConvergenceError struct {
	Iterations int
	ScoreNorm  float64
	Tol        float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("survival: no convergence after %d iterations (score norm %.3g, tol %.3g)",
		e.Iterations, e.ScoreNorm, e.Tol)
}
