package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hfsurv/internal/logging"
	"hfsurv/internal/oracle"
	"hfsurv/internal/store"
	"hfsurv/internal/transform"
)

var discoverFlags struct {
	study   string
	data    string
	baseURL string
	rounds  int
	save    bool
	timeout time.Duration
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Search the discovery service for covariate transformations",
	Long: `Discover allocates a session on the symbolic-regression service and
runs the bounded refinement loop: propose candidate expressions, evaluate each
by refitting the survival model and measuring AUC at the study horizon, and
incorporate the best candidate while it keeps improving. The session is always
released when the search ends.`,
	RunE: runDiscover,
}

func init() {
	f := discoverCmd.Flags()
	f.StringVar(&discoverFlags.study, "study", "", "Study YAML (default: built-in reference study)")
	f.StringVar(&discoverFlags.data, "data", "", "Dataset CSV, overriding the study's path")
	f.StringVar(&discoverFlags.baseURL, "base-url", "", "Discovery service URL, overriding the study's")
	f.IntVar(&discoverFlags.rounds, "rounds", 0, "Search round budget, overriding the study's")
	f.BoolVar(&discoverFlags.save, "save", false, "Persist accepted expressions to the study store")
	f.DurationVar(&discoverFlags.timeout, "timeout", 5*time.Minute, "Per-request timeout for the discovery service")
}

func runDiscover(cmd *cobra.Command, _ []string) error {
	s, err := loadStudy(discoverFlags.study)
	if err != nil {
		return err
	}
	t, err := loadTable(s, discoverFlags.data)
	if err != nil {
		return err
	}

	baseURL := s.Oracle.BaseURL
	if discoverFlags.baseURL != "" {
		baseURL = discoverFlags.baseURL
	}
	if baseURL == "" {
		return fmt.Errorf("discovery service URL is required (study oracle.base_url or --base-url)")
	}
	apiKey := ""
	if s.Oracle.APIKeyPath != "" {
		apiKey, err = oracle.ReadAPIKey(s.Oracle.APIKeyPath)
		if err != nil {
			return err
		}
	}

	logger := logging.New("discover")
	client, err := oracle.New(baseURL, apiKey,
		oracle.WithTimeout(discoverFlags.timeout),
		oracle.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	session, err := client.Connect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		// Release with a fresh context so a canceled search still frees the session.
		closeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := session.Close(closeCtx); err != nil {
			logger.Warn("release discovery session", "error", err)
		}
	}()

	// Baseline: discrimination of the untransformed model.
	_, baseline, err := fitAndScore(t, s.Raw, s)
	if err != nil {
		return err
	}
	fmt.Printf("baseline AUC %.4f @ day %g\n", baseline, s.Evaluation.Horizon)

	eval := func(ctx context.Context, accepted []oracle.Candidate, c oracle.Candidate) (float64, error) {
		trial, err := candidateSet(append(append([]oracle.Candidate(nil), accepted...), c))
		if err != nil {
			return 0, err
		}
		derived, err := trial.Derive(t)
		if err != nil {
			return 0, err
		}
		_, auc, err := fitAndScore(derived, replaceTransformed(s.Raw, trial), s)
		if err != nil {
			return 0, err
		}
		return auc, nil
	}

	searcher := &oracle.Searcher{
		Session:   session,
		MaxRounds: orInt(discoverFlags.rounds, s.Oracle.MaxRounds),
		MinGain:   s.Oracle.MinGain,
		Logger:    logger,
	}
	req := oracle.ProposeRequest{
		Covariates: s.Raw,
		Target:     t.EventColumn(),
		Constraints: oracle.Constraints{
			MaxComplexity: s.Oracle.MaxComplexity,
			Operators:     s.Oracle.Operators,
		},
	}
	res, err := searcher.Run(ctx, req, baseline, eval)
	if err != nil {
		return err
	}

	fmt.Printf("search finished after %d rounds: AUC %.4f, %d expressions accepted\n",
		res.Rounds, res.Score, len(res.Accepted))
	for i, c := range res.Accepted {
		fmt.Printf("  %d. %s(%s) coef=%g score=%.4f\n", i+1, c.Expression, c.Covariate, c.Coef, c.Score)
	}

	if !discoverFlags.save || len(res.Accepted) == 0 {
		return nil
	}
	st, err := store.Open(s.StorePath)
	if err != nil {
		return err
	}
	defer st.Close()
	runID, err := st.CreateRun(s.Name, s.Dataset)
	if err != nil {
		return err
	}
	recs := make([]store.ExpressionRecord, len(res.Accepted))
	for i, c := range res.Accepted {
		recs[i] = store.ExpressionRecord{
			Covariate: c.Covariate,
			Form:      c.Expression,
			Coef:      c.Coef,
			Rank:      i + 1,
			Score:     c.Score,
		}
	}
	if err := st.SaveExpressions(runID, recs); err != nil {
		return err
	}
	fmt.Printf("saved as run %d\n", runID)
	return nil
}

// candidateSet resolves accepted candidates into an executable transform set.
func candidateSet(cands []oracle.Candidate) (transform.Set, error) {
	set := make(transform.Set, 0, len(cands))
	for _, c := range cands {
		kind, err := transform.ParseKind(c.Expression)
		if err != nil {
			return nil, err
		}
		set = append(set, transform.Expression{Covariate: c.Covariate, Form: kind, Coef: c.Coef})
	}
	return set, nil
}

// replaceTransformed swaps raw covariates for their derived versions where
// the set transforms them.
func replaceTransformed(raw []string, set transform.Set) []string {
	out := append([]string(nil), raw...)
	for _, e := range set {
		for i, name := range out {
			if name == e.Covariate {
				out[i] = e.Name()
			}
		}
	}
	return out
}

func orInt(override, fallback int) int {
	if override > 0 {
		return override
	}
	return fallback
}
