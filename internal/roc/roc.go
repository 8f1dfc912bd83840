// Package roc computes receiver operating characteristic curves and the area
// under them for a continuous risk score against binary event labels.
package roc

import (
	"fmt"
	"math"
	"sort"
)

// EvaluationInputError reports labels for which discrimination is undefined:
// an empty sample or one containing only a single class.
type EvaluationInputError struct {
	Reason string
}

func (e *EvaluationInputError) Error() string {
	return "roc: " + e.Reason
}

// Point is one operating point of the curve at a score threshold. Subjects
// with score >= Threshold are called positive.
type Point struct {
	Threshold float64
	FPR       float64
	TPR       float64
}

// Curve is an ROC curve with its trapezoidal area.
type Curve struct {
	Points []Point
	AUC    float64
}

// Compute builds the ROC curve over all distinct score thresholds and its
// area via the trapezoidal rule. Tied scores collapse into a single threshold
// step. Labels must be 0 or 1 and both classes must be present.
func Compute(labels []int, scores []float64) (*Curve, error) {
	if len(labels) != len(scores) {
		return nil, fmt.Errorf("roc: %d labels but %d scores", len(labels), len(scores))
	}
	if len(labels) == 0 {
		return nil, &EvaluationInputError{Reason: "empty label set"}
	}
	pos, neg := 0, 0
	for _, l := range labels {
		switch l {
		case 1:
			pos++
		case 0:
			neg++
		default:
			return nil, fmt.Errorf("roc: label %d not in {0,1}", l)
		}
	}
	if pos == 0 || neg == 0 {
		return nil, &EvaluationInputError{Reason: "single-class label set, AUC undefined"}
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	points := []Point{{Threshold: math.Inf(1), FPR: 0, TPR: 0}}
	tp, fp := 0, 0
	for i := 0; i < len(order); {
		threshold := scores[order[i]]
		// Consume the whole tie group before emitting a point.
		for i < len(order) && scores[order[i]] == threshold {
			if labels[order[i]] == 1 {
				tp++
			} else {
				fp++
			}
			i++
		}
		points = append(points, Point{
			Threshold: threshold,
			FPR:       float64(fp) / float64(neg),
			TPR:       float64(tp) / float64(pos),
		})
	}

	auc := 0.0
	for i := 1; i < len(points); i++ {
		auc += (points[i].FPR - points[i-1].FPR) * (points[i].TPR + points[i-1].TPR) / 2
	}
	return &Curve{Points: points, AUC: auc}, nil
}

// Concordance returns the probability that a randomly chosen event subject
// scores higher than a randomly chosen non-event subject, with half credit
// for ties. It equals the trapezoidal AUC.
func Concordance(labels []int, scores []float64) (float64, error) {
	if len(labels) != len(scores) {
		return 0, fmt.Errorf("roc: %d labels but %d scores", len(labels), len(scores))
	}
	concordant, pairs := 0.0, 0
	for i := range labels {
		if labels[i] != 1 {
			continue
		}
		for j := range labels {
			if labels[j] != 0 {
				continue
			}
			pairs++
			switch {
			case scores[i] > scores[j]:
				concordant++
			case scores[i] == scores[j]:
				concordant += 0.5
			}
		}
	}
	if pairs == 0 {
		return 0, &EvaluationInputError{Reason: "single-class label set, AUC undefined"}
	}
	return concordant / float64(pairs), nil
}
