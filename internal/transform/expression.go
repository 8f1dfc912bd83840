// Package transform engineers derived covariates from closed-form scalar
// expressions. The functional forms themselves come from the symbolic
// regression service (or from a study file that pins the constants of a prior
// search); this package only evaluates them.
package transform

import (
	"fmt"
	"math"
	"strings"
)

// Kind is the functional form of a single-covariate expression.
type Kind int

const (
	Identity    Kind = iota // x
	Reciprocal              // c / x
	Exponential             // exp(c * x)
	Log                     // log(c * x)
)

// kindNames are the wire names used by the discovery service and study files.
var kindNames = map[Kind]string{
	Identity:    "identity",
	Reciprocal:  "reciprocal",
	Exponential: "exp",
	Log:         "log",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a wire name back to a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == strings.ToLower(strings.TrimSpace(s)) {
			return k, nil
		}
	}
	return Identity, fmt.Errorf("transform: unknown functional form %q", s)
}

// Expression is one closed-form transformation of a single covariate.
type Expression struct {
	Covariate string
	Form      Kind
	Coef      float64
}

// Apply evaluates the expression at x.
func (e Expression) Apply(x float64) float64 {
	switch e.Form {
	case Reciprocal:
		return e.Coef / x
	case Exponential:
		return math.Exp(e.Coef * x)
	case Log:
		return math.Log(e.Coef * x)
	default:
		return x
	}
}

// Name is the derived column label, e.g. "EF_recip" or "age_exp".
func (e Expression) Name() string {
	switch e.Form {
	case Reciprocal:
		return e.Covariate + "_recip"
	case Exponential:
		return e.Covariate + "_exp"
	case Log:
		return e.Covariate + "_log"
	default:
		return e.Covariate
	}
}

func (e Expression) String() string {
	switch e.Form {
	case Reciprocal:
		return fmt.Sprintf("%g/%s", e.Coef, e.Covariate)
	case Exponential:
		return fmt.Sprintf("exp(%g*%s)", e.Coef, e.Covariate)
	case Log:
		return fmt.Sprintf("log(%g*%s)", e.Coef, e.Covariate)
	default:
		return e.Covariate
	}
}
