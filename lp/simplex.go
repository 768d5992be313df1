package lp

import (
	"github.com/golang/glog"

	"github.com/timpalpant/gonash/failure"
	"github.com/timpalpant/gonash/field"
)

// Simplex is a dense two-phase tableau simplex method using Bland's
// rule, which cannot cycle. With a rational Field the result is exact.
type Simplex struct {
	Field *field.Field
	// MaxIterations bounds the number of pivots in each phase.
	// If zero, a limit proportional to the problem size is used.
	MaxIterations int
}

var _ Solver = &Simplex{}

// simplexTableau holds rows 0..m-1 of constraints and row m of reduced
// costs. Column n is the right-hand side; the objective row's
// right-hand side holds the negated objective value.
type simplexTableau struct {
	f     *field.Field
	t     [][]field.Number
	basis []int
	// allowed[j] is false for columns that may not enter the basis.
	allowed []bool
	m, n    int
}

func (s *Simplex) Solve(p *Problem) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	f := s.Field
	m, nVars := len(p.A), len(p.C)
	// Structural columns, then one artificial column per row.
	n := nVars + m
	tab := &simplexTableau{
		f:       f,
		t:       make([][]field.Number, m+1),
		basis:   make([]int, m),
		allowed: make([]bool, n),
		m:       m,
		n:       n,
	}

	for j := range tab.allowed {
		tab.allowed[j] = true
	}

	zero, one := f.Zero(), f.One()
	for i := 0; i < m; i++ {
		row := make([]field.Number, n+1)
		neg := f.Convert(p.B[i]).Sign() < 0
		for j := 0; j < nVars; j++ {
			row[j] = f.Convert(p.A[i][j])
			if neg {
				row[j] = row[j].Neg()
			}
		}
		for j := nVars; j < n; j++ {
			row[j] = zero
		}
		row[nVars+i] = one
		row[n] = f.Convert(p.B[i])
		if neg {
			row[n] = row[n].Neg()
		}

		tab.t[i] = row
		tab.basis[i] = nVars + i
	}

	// Phase 1: minimize the sum of the artificial variables.
	phase1 := make([]field.Number, n)
	for j := range phase1 {
		if j < nVars {
			phase1[j] = zero
		} else {
			phase1[j] = one
		}
	}
	tab.setObjective(phase1)

	maxIter := s.MaxIterations
	if maxIter <= 0 {
		maxIter = 50 * (n + m + 1)
	}

	status, err := tab.run(maxIter)
	if err != nil {
		return nil, err
	} else if status == Unbounded {
		return nil, failure.Numericalf("phase 1 objective is unbounded")
	}

	if tab.objective().Sign() > 0 {
		return &Result{Status: Infeasible}, nil
	}

	// Drive any artificial variables remaining in the basis (at zero
	// level) out, and forbid artificial columns from re-entering.
	for j := nVars; j < n; j++ {
		tab.allowed[j] = false
	}
	for i := 0; i < m; i++ {
		if tab.basis[i] < nVars {
			continue
		}

		for j := 0; j < nVars; j++ {
			if !tab.t[i][j].IsZero() {
				if err := tab.pivot(i, j); err != nil {
					return nil, err
				}
				break
			}
		}
		// Otherwise the row is redundant: the artificial stays basic
		// at zero and can never leave since its row is zero elsewhere.
	}

	phase2 := make([]field.Number, n)
	for j := range phase2 {
		if j < nVars {
			phase2[j] = f.Convert(p.C[j])
		} else {
			phase2[j] = zero
		}
	}
	tab.setObjective(phase2)

	status, err = tab.run(maxIter)
	if err != nil {
		return nil, err
	} else if status == Unbounded {
		return &Result{Status: Unbounded}, nil
	}

	x := make([]field.Number, nVars)
	for j := range x {
		x[j] = zero
	}
	for i, col := range tab.basis {
		if col < nVars {
			x[col] = tab.t[i][n]
		}
	}

	value := zero
	for j, xj := range x {
		value = value.Add(f.Convert(p.C[j]).Mul(xj))
	}

	return &Result{Status: Optimal, Value: value, X: x}, nil
}

// setObjective computes the reduced cost row for cost vector c and the
// current basis.
func (tab *simplexTableau) setObjective(c []field.Number) {
	obj := make([]field.Number, tab.n+1)
	for j := 0; j < tab.n; j++ {
		obj[j] = c[j]
	}
	obj[tab.n] = tab.f.Zero()

	for i, col := range tab.basis {
		cb := c[col]
		if cb.IsZero() {
			continue
		}

		for j := 0; j <= tab.n; j++ {
			obj[j] = obj[j].Sub(cb.Mul(tab.t[i][j]))
		}
	}

	tab.t[tab.m] = obj
}

// objective returns the current objective value.
func (tab *simplexTableau) objective() field.Number {
	return tab.t[tab.m][tab.n].Neg()
}

// run pivots with Bland's rule until optimality or unboundedness.
func (tab *simplexTableau) run(maxIter int) (Status, error) {
	for iter := 0; iter < maxIter; iter++ {
		enter := -1
		for j := 0; j < tab.n; j++ {
			if tab.allowed[j] && tab.t[tab.m][j].Sign() < 0 {
				enter = j
				break
			}
		}

		if enter < 0 {
			return Optimal, nil
		}

		leave := -1
		var best field.Number
		for i := 0; i < tab.m; i++ {
			a := tab.t[i][enter]
			if a.Sign() <= 0 {
				continue
			}

			ratio, err := tab.t[i][tab.n].Quo(a)
			if err != nil {
				return Optimal, err
			}

			if leave < 0 {
				leave, best = i, ratio
			} else if c := ratio.Cmp(best); c < 0 || (c == 0 && tab.basis[i] < tab.basis[leave]) {
				leave, best = i, ratio
			}
		}

		if leave < 0 {
			return Unbounded, nil
		}

		if err := tab.pivot(leave, enter); err != nil {
			return Optimal, err
		}

		if glog.V(3) {
			glog.Infof("lp: pivot %d entered column %d at row %d, objective %v",
				iter, enter, leave, tab.objective())
		}
	}

	return Optimal, failure.Numericalf("simplex did not converge in %d iterations", maxIter)
}

func (tab *simplexTableau) pivot(row, col int) error {
	pivotRow := tab.t[row]
	inv, err := tab.f.One().Quo(pivotRow[col])
	if err != nil {
		return err
	}

	for j := range pivotRow {
		pivotRow[j] = pivotRow[j].Mul(inv)
	}

	for i, r := range tab.t {
		if i == row || r[col].IsZero() {
			continue
		}

		factor := r[col]
		for j := range r {
			if !pivotRow[j].IsZero() {
				r[j] = r[j].Sub(factor.Mul(pivotRow[j]))
			}
		}
	}

	tab.basis[row] = col
	return nil
}
