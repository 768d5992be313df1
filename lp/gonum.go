package lp

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	convexlp "gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/timpalpant/gonash/failure"
	"github.com/timpalpant/gonash/field"
)

// DefaultTol is the tolerance passed to gonum's simplex.
const DefaultTol = 1e-10

// Gonum solves problems in floating point with gonum's revised simplex.
type Gonum struct {
	// Field converts the solution back to Numbers.
	Field *field.Field
	Tol   float64
}

var _ Solver = &Gonum{}

func (g *Gonum) Solve(p *Problem) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	m, n := len(p.A), len(p.C)
	if m > n {
		// Overdetermined systems are not accepted by gonum.
		return (&Simplex{Field: g.Field}).Solve(p)
	}

	c := make([]float64, n)
	for j, cj := range p.C {
		c[j] = cj.Float64()
	}

	data := make([]float64, 0, m*n)
	for _, row := range p.A {
		for _, a := range row {
			data = append(data, a.Float64())
		}
	}

	b := make([]float64, m)
	for i, bi := range p.B {
		b[i] = bi.Float64()
	}

	var A mat.Matrix = mat.NewDense(m, n, data)
	optF, optX, err := convexlp.Simplex(c, A, b, g.Tol, nil)
	switch err {
	case nil:
	case convexlp.ErrInfeasible:
		return &Result{Status: Infeasible}, nil
	case convexlp.ErrUnbounded:
		return &Result{Status: Unbounded}, nil
	default:
		// Degenerate bases can defeat gonum's revised simplex, but not
		// the tableau method with Bland's rule.
		glog.V(1).Infof("gonum simplex failed (%v), retrying with tableau simplex", err)
		result, err2 := (&Simplex{Field: g.Field}).Solve(p)
		if err2 != nil {
			return nil, errors.Wrapf(failure.ErrNumericalFailure, "gonum simplex: %v; tableau simplex: %v", err, err2)
		}
		return result, nil
	}

	x := make([]field.Number, n)
	for j, xj := range optX {
		x[j] = g.Field.Float(xj)
	}

	return &Result{Status: Optimal, Value: g.Field.Float(optF), X: x}, nil
}
