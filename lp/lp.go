// Package lp solves small linear programs in standard form:
//
//	minimize c·x subject to A x = b, x >= 0.
//
// Two solvers are provided: Simplex, a two-phase tableau simplex method
// written against field.Number that is exact in a rational field, and
// Gonum, which delegates to gonum's floating point revised simplex.
package lp

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/timpalpant/gonash/field"
)

// Status is the outcome of solving a linear program.
type Status int

const (
	Optimal Status = iota
	Infeasible
	Unbounded
)

var statusStr = [...]string{
	"optimal",
	"infeasible",
	"unbounded",
}

func (s Status) String() string {
	if int(s) < len(statusStr) {
		return statusStr[s]
	}

	return fmt.Sprintf("Status(%d)", s)
}

// Problem is a linear program in standard form.
type Problem struct {
	// C is the objective, one coefficient per variable.
	C []field.Number
	// A is the constraint matrix, one row per equality constraint.
	A [][]field.Number
	// B is the right-hand side, one entry per row of A.
	B []field.Number
}

// Validate checks that the dimensions of the problem agree.
func (p *Problem) Validate() error {
	if len(p.C) == 0 {
		return errors.New("problem has no variables")
	}

	if len(p.A) == 0 {
		return errors.New("problem has no constraints")
	}

	if len(p.A) != len(p.B) {
		return errors.Errorf("A has %d rows but b has %d entries", len(p.A), len(p.B))
	}

	for i, row := range p.A {
		if len(row) != len(p.C) {
			return errors.Errorf("row %d of A has %d entries, expected %d", i, len(row), len(p.C))
		}
	}

	return nil
}

// Result is the solution of a Problem. Value and X are only set if the
// Status is Optimal.
type Result struct {
	Status Status
	Value  field.Number
	X      []field.Number
}

// Solver solves linear programs. An error wrapping
// failure.ErrNumericalFailure is returned if the solver fails to converge.
// Infeasible and unbounded problems are not errors.
type Solver interface {
	Solve(p *Problem) (*Result, error)
}

// ForField returns the solver appropriate to the precision of f:
// gonum's revised simplex for floating point fields, and the generic
// Simplex for rational fields.
func ForField(f *field.Field) Solver {
	if f.Precision() == field.Float {
		return &Gonum{Field: f, Tol: DefaultTol}
	}

	return &Simplex{Field: f}
}
