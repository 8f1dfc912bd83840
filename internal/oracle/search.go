package oracle

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// Evaluator scores a candidate locally, typically by deriving the expressed
// covariate on top of the already-accepted ones, refitting the survival model
// and measuring AUC at the study horizon. Higher is better.
type Evaluator func(ctx context.Context, accepted []Candidate, c Candidate) (float64, error)

// Searcher drives the bounded propose/evaluate/incorporate refinement loop
// against one session. The loop always terminates: it stops after MaxRounds
// rounds, when a round yields no candidates, or when the best candidate's
// improvement over the current score falls below MinGain.
type Searcher struct {
	Session   *Session
	MaxRounds int     // hard round budget, default 5
	MinGain   float64 // minimum score improvement to continue, default 1e-3
	Logger    *slog.Logger
}

// SearchResult is the outcome of a search loop.
type SearchResult struct {
	Accepted []Candidate // candidates incorporated, in acceptance order
	Score    float64     // evaluator score after the last accepted candidate
	Rounds   int         // rounds actually executed
}

// Run executes the refinement loop. baseline is the evaluator score of the
// untransformed model; only candidates beating the current score by at least
// MinGain are accepted and incorporated.
func (s *Searcher) Run(ctx context.Context, req ProposeRequest, baseline float64, eval Evaluator) (*SearchResult, error) {
	if s.Session == nil {
		return nil, fmt.Errorf("oracle: searcher has no session")
	}
	maxRounds := s.MaxRounds
	if maxRounds <= 0 {
		maxRounds = 5
	}
	minGain := s.MinGain
	if minGain <= 0 {
		minGain = 1e-3
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	res := &SearchResult{Score: baseline}
	for round := 1; round <= maxRounds; round++ {
		res.Rounds = round
		candidates, err := s.Session.Propose(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("search round %d: %w", round, err)
		}
		if len(candidates) == 0 {
			logger.InfoContext(ctx, "search exhausted", "round", round)
			break
		}

		var best Candidate
		bestScore := res.Score
		found := false
		for _, c := range candidates {
			score, err := eval(ctx, res.Accepted, c)
			if err != nil {
				return nil, fmt.Errorf("evaluate %s(%s): %w", c.Expression, c.Covariate, err)
			}
			logger.DebugContext(ctx, "candidate evaluated",
				"round", round, "covariate", c.Covariate, "form", c.Expression, "score", score)
			if score > bestScore {
				best, bestScore, found = c, score, true
			}
		}

		if !found || bestScore-res.Score < minGain {
			logger.InfoContext(ctx, "search converged", "round", round, "score", res.Score)
			break
		}

		if err := s.Session.Incorporate(ctx, best); err != nil {
			return nil, fmt.Errorf("incorporate round %d: %w", round, err)
		}
		res.Accepted = append(res.Accepted, best)
		res.Score = bestScore
		logger.InfoContext(ctx, "candidate accepted",
			"round", round, "covariate", best.Covariate, "form", best.Expression, "score", bestScore)
	}
	return res, nil
}
