package main

import (
	"fmt"
	"strings"

	"hfsurv/internal/dataset"
	"hfsurv/internal/roc"
	"hfsurv/internal/study"
	"hfsurv/internal/survival"
)

// loadStudy resolves the study configuration: from the given path, or the
// built-in reference study when no path is set.
func loadStudy(path string) (*study.Study, error) {
	if path == "" {
		return study.Default(), nil
	}
	return study.Load(path)
}

// loadTable loads the study dataset (or an explicit override path) through
// the study schema.
func loadTable(s *study.Study, dataPath string) (*dataset.Table, error) {
	path := dataPath
	if path == "" {
		path = s.Dataset
	}
	return dataset.Load(path, s.Schema())
}

// fitOptions maps study evaluation settings to fitter options.
func fitOptions(s *study.Study) (survival.Options, error) {
	ties, err := survival.ParseTies(s.Evaluation.Ties)
	if err != nil {
		return survival.Options{}, err
	}
	return survival.Options{Ties: ties, Level: s.Evaluation.Level}, nil
}

// fitAndScore fits one model and computes its AUC at the study horizon.
func fitAndScore(t *dataset.Table, covariates []string, s *study.Study) (*survival.Model, float64, error) {
	opts, err := fitOptions(s)
	if err != nil {
		return nil, 0, err
	}
	model, err := survival.Fit(t, covariates, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("fit [%s]: %w", strings.Join(covariates, ","), err)
	}
	scores, err := model.RiskAt(t, s.Evaluation.Horizon)
	if err != nil {
		return nil, 0, err
	}
	curve, err := roc.Compute(t.Events(), scores)
	if err != nil {
		return nil, 0, err
	}
	return model, curve.AUC, nil
}
