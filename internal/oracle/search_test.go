package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// scriptedService serves a fixed sequence of propose responses, one per round.
type scriptedService struct {
	rounds       [][]Candidate
	proposes     int
	incorporated []Candidate
}

func (s *scriptedService) start(t *testing.T) *Session {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/sessions", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"session_id": "sess-1"})
	})
	mux.HandleFunc("POST /v1/sessions/sess-1/propose", func(w http.ResponseWriter, r *http.Request) {
		var cands []Candidate
		if s.proposes < len(s.rounds) {
			cands = s.rounds[s.proposes]
		}
		s.proposes++
		json.NewEncoder(w).Encode(map[string]any{"candidates": cands})
	})
	mux.HandleFunc("POST /v1/sessions/sess-1/incorporate", func(w http.ResponseWriter, r *http.Request) {
		var c Candidate
		json.NewDecoder(r.Body).Decode(&c)
		s.incorporated = append(s.incorporated, c)
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := New(srv.URL, "", WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatal(err)
	}
	sess, err := client.Connect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return sess
}

// scoreByExpression evaluates candidates from a fixed score map, ignoring the
// accepted set.
func scoreByExpression(scores map[string]float64) Evaluator {
	return func(_ context.Context, _ []Candidate, c Candidate) (float64, error) {
		return scores[c.Expression+":"+c.Covariate], nil
	}
}

func TestSearcher_AcceptsImprovingCandidates(t *testing.T) {
	svc := &scriptedService{rounds: [][]Candidate{
		{
			{Rank: 1, Covariate: "EF", Expression: "reciprocal", Coef: 100},
			{Rank: 2, Covariate: "age", Expression: "log", Coef: 1},
		},
		{
			{Rank: 1, Covariate: "age", Expression: "exp", Coef: 0.056},
		},
		{
			{Rank: 1, Covariate: "platelets", Expression: "log", Coef: 1},
		},
	}}
	sess := svc.start(t)

	eval := scoreByExpression(map[string]float64{
		"reciprocal:EF": 0.78,
		"log:age":       0.71,
		"exp:age":       0.80,
		"log:platelets": 0.795, // below MinGain over 0.80
	})
	s := &Searcher{Session: sess, MaxRounds: 5, MinGain: 0.01}
	res, err := s.Run(context.Background(), ProposeRequest{Target: "Event"}, 0.70, eval)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantAccepted := []string{"reciprocal", "exp"}
	var got []string
	for _, c := range res.Accepted {
		got = append(got, c.Expression)
	}
	if diff := cmp.Diff(wantAccepted, got); diff != "" {
		t.Errorf("accepted expressions mismatch (-want +got):\n%s", diff)
	}
	if res.Score != 0.80 {
		t.Errorf("Score = %g, want 0.80", res.Score)
	}
	if res.Rounds != 3 {
		t.Errorf("Rounds = %d, want 3 (two accepts plus the converged round)", res.Rounds)
	}
	if len(svc.incorporated) != 2 {
		t.Errorf("service saw %d incorporations, want 2", len(svc.incorporated))
	}
}

func TestSearcher_StopsAtRoundBudget(t *testing.T) {
	// The same improving candidate forever; only the budget can stop the loop.
	round := []Candidate{{Rank: 1, Covariate: "EF", Expression: "reciprocal", Coef: 100}}
	svc := &scriptedService{rounds: [][]Candidate{round, round, round, round, round, round, round, round}}
	sess := svc.start(t)

	score := 0.5
	eval := func(_ context.Context, accepted []Candidate, _ Candidate) (float64, error) {
		return score + 0.05*float64(len(accepted)+1), nil
	}
	s := &Searcher{Session: sess, MaxRounds: 3, MinGain: 0.01}
	res, err := s.Run(context.Background(), ProposeRequest{Target: "Event"}, score, eval)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Rounds != 3 {
		t.Errorf("Rounds = %d, want the budget of 3", res.Rounds)
	}
	if len(res.Accepted) != 3 {
		t.Errorf("accepted %d candidates, want 3", len(res.Accepted))
	}
	if svc.proposes != 3 {
		t.Errorf("service saw %d proposals, want 3", svc.proposes)
	}
}

func TestSearcher_StopsWhenExhausted(t *testing.T) {
	svc := &scriptedService{rounds: [][]Candidate{nil}}
	sess := svc.start(t)

	s := &Searcher{Session: sess}
	res, err := s.Run(context.Background(), ProposeRequest{Target: "Event"}, 0.7, eval0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Accepted) != 0 {
		t.Errorf("accepted %d candidates from an empty proposal, want 0", len(res.Accepted))
	}
	if res.Score != 0.7 {
		t.Errorf("Score = %g, want the untouched baseline", res.Score)
	}
}

func TestSearcher_RejectsBelowBaseline(t *testing.T) {
	svc := &scriptedService{rounds: [][]Candidate{
		{{Rank: 1, Covariate: "EF", Expression: "reciprocal", Coef: 100}},
	}}
	sess := svc.start(t)

	s := &Searcher{Session: sess, MinGain: 0.01}
	res, err := s.Run(context.Background(), ProposeRequest{Target: "Event"}, 0.9, eval0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Accepted) != 0 {
		t.Errorf("accepted a candidate scoring below baseline")
	}
	if len(svc.incorporated) != 0 {
		t.Errorf("service saw an incorporation for a rejected candidate")
	}
}

func TestSearcher_RequiresSession(t *testing.T) {
	s := &Searcher{}
	if _, err := s.Run(context.Background(), ProposeRequest{}, 0, eval0); err == nil {
		t.Error("expected error for missing session")
	}
}

func eval0(_ context.Context, _ []Candidate, _ Candidate) (float64, error) {
	return 0, nil
}
