package tableau

import (
	"github.com/pkg/errors"

	"github.com/timpalpant/gonash/failure"
	"github.com/timpalpant/gonash/field"
)

// luFactors is a Doolittle factorization P B = L U with partial
// pivoting, where L is unit lower triangular. L and U share storage:
// lu[i][j] holds L for j < i and U for j >= i.
type luFactors struct {
	f    *field.Field
	lu   [][]field.Number
	perm []int
	// identity is set for the all-slack basis, which needs no solve.
	identity bool
}

func identityLU(f *field.Field, n int) *luFactors {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}

	return &luFactors{f: f, perm: perm, identity: true}
}

// factorize computes the LU factorization of the square matrix b.
// The input is not modified.
func factorize(f *field.Field, b [][]field.Number) (*luFactors, error) {
	n := len(b)
	lu := make([][]field.Number, n)
	for i := range b {
		lu[i] = make([]field.Number, n)
		copy(lu[i], b[i])
	}

	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}

	for k := 0; k < n; k++ {
		// Choose the pivot of largest magnitude in column k.
		p := -1
		var best field.Number
		for i := k; i < n; i++ {
			if v := lu[i][k].Abs(); !v.IsZero() && (p < 0 || v.Cmp(best) > 0) {
				p, best = i, v
			}
		}

		if p < 0 {
			return nil, errors.Wrapf(failure.ErrNumericalFailure, "basis matrix is singular at column %d", k)
		}

		lu[k], lu[p] = lu[p], lu[k]
		perm[k], perm[p] = perm[p], perm[k]

		for i := k + 1; i < n; i++ {
			if lu[i][k].IsZero() {
				continue
			}

			l, err := lu[i][k].Quo(lu[k][k])
			if err != nil {
				return nil, err
			}

			lu[i][k] = l
			for j := k + 1; j < n; j++ {
				lu[i][j] = lu[i][j].Sub(l.Mul(lu[k][j]))
			}
		}
	}

	return &luFactors{f: f, lu: lu, perm: perm}, nil
}

// solve returns x such that B x = v.
func (lu *luFactors) solve(v []field.Number) ([]field.Number, error) {
	n := len(v)
	x := make([]field.Number, n)
	if lu.identity {
		copy(x, v)
		return x, nil
	}

	// Forward substitution: L y = P v.
	y := allocNumberSlice(n)
	defer freeNumberSlice(y)
	for i := 0; i < n; i++ {
		sum := v[lu.perm[i]]
		for j := 0; j < i; j++ {
			if !lu.lu[i][j].IsZero() {
				sum = sum.Sub(lu.lu[i][j].Mul(y[j]))
			}
		}
		y[i] = sum
	}

	// Back substitution: U x = y.
	for i := n - 1; i >= 0; i-- {
		sum := y[i]
		for j := i + 1; j < n; j++ {
			if !lu.lu[i][j].IsZero() {
				sum = sum.Sub(lu.lu[i][j].Mul(x[j]))
			}
		}

		xi, err := sum.Quo(lu.lu[i][i])
		if err != nil {
			return nil, err
		}
		x[i] = xi
	}

	return x, nil
}
