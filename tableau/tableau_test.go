package tableau

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timpalpant/gonash/failure"
	"github.com/timpalpant/gonash/field"
)

func system(f *field.Field, q []int64, rows ...[]int64) ([][]field.Number, []field.Number) {
	a := make([][]field.Number, len(rows))
	for i, row := range rows {
		a[i] = make([]field.Number, len(row))
		for j, v := range row {
			a[i][j] = f.Int(v)
		}
	}

	qs := make([]field.Number, len(q))
	for i, v := range q {
		qs[i] = f.Int(v)
	}

	return a, qs
}

func newTestTableau(t *testing.T, f *field.Field, refactorEvery int) *Tableau {
	a, q := system(f, []int64{4, 6}, []int64{1, 2}, []int64{3, 1})
	tab, err := New(f, a, q, refactorEvery)
	require.NoError(t, err)
	return tab
}

func TestTableau_Pivot(t *testing.T) {
	for _, refactorEvery := range []int{1, 2, DefaultRefactorEvery} {
		for _, p := range []field.Precision{field.Rational, field.Float} {
			f := field.New(p)
			tab := newTestTableau(t, f, refactorEvery)
			assert.Equal(t, Initialized, tab.State())
			assert.Equal(t, []int{2, 3}, tab.Basis().Columns())

			leaving, tied, err := tab.Pivot(0)
			require.NoError(t, err)
			assert.Equal(t, 3, leaving)
			assert.False(t, tied)
			assert.Equal(t, 0, tab.Value(0).Cmp(f.Int(2)))
			assert.Equal(t, 0, tab.Value(2).Cmp(f.Int(2)))

			leaving, _, err = tab.Pivot(1)
			require.NoError(t, err)
			assert.Equal(t, 2, leaving)
			assert.Equal(t, []int{0, 1}, tab.Basis().Columns())
			assert.Equal(t, 0, tab.Value(0).Cmp(f.Frac(8, 5)), "x0 = %v", tab.Value(0))
			assert.Equal(t, 0, tab.Value(1).Cmp(f.Frac(6, 5)), "x1 = %v", tab.Value(1))
			assert.True(t, tab.Value(2).IsZero())
			assert.Equal(t, Pivoting, tab.State())
		}
	}
}

func TestTableau_Solve(t *testing.T) {
	f := field.New(field.Rational)
	tab := newTestTableau(t, f, DefaultRefactorEvery)
	_, _, err := tab.Pivot(0)
	require.NoError(t, err)

	d, err := tab.Solve(1)
	require.NoError(t, err)
	assert.Equal(t, "5/3", d[0].String())
	assert.Equal(t, "1/3", d[1].String())

	// The eta file and a fresh factorization agree.
	require.NoError(t, tab.Refactor())
	assert.Equal(t, 0, tab.Pivots())
	d2, err := tab.Solve(1)
	require.NoError(t, err)
	assert.Equal(t, d[0].String(), d2[0].String())
	assert.Equal(t, d[1].String(), d2[1].String())
}

func TestTableau_Clone(t *testing.T) {
	f := field.New(field.Rational)
	tab := newTestTableau(t, f, DefaultRefactorEvery)
	_, _, err := tab.Pivot(0)
	require.NoError(t, err)

	c := tab.Clone()
	_, _, err = c.Pivot(1)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 2}, tab.Basis().Columns())
	assert.Equal(t, "2", tab.Value(2).String())
	assert.Equal(t, []int{0, 1}, c.Basis().Columns())
	assert.Len(t, tab.etas, 1)
	assert.Len(t, c.etas, 2)
}

func TestTableau_Degenerate(t *testing.T) {
	f := field.New(field.Rational)
	a, q := system(f, []int64{1, 1}, []int64{1}, []int64{1})
	tab, err := New(f, a, q, 0)
	require.NoError(t, err)

	rows, _, err := tab.MinRatioRows(0)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, rows)
	assert.Equal(t, DegenerateHalt, tab.State())

	// Branch on the second row instead of the default.
	c := tab.Clone()
	leaving, err := c.PivotOn(1, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, leaving)
	assert.True(t, c.Value(1).IsZero())

	leaving, tied, err := tab.Pivot(0)
	require.NoError(t, err)
	assert.True(t, tied)
	assert.Equal(t, 1, leaving)
	assert.Equal(t, "0", tab.Value(2).String())
}

func TestTableau_Unbounded(t *testing.T) {
	f := field.New(field.Rational)
	a, q := system(f, []int64{1}, []int64{-1})
	tab, err := New(f, a, q, 0)
	require.NoError(t, err)

	_, _, err = tab.Pivot(0)
	assert.True(t, failure.Is(err, failure.ErrInvariantViolation), "got %v", err)
	assert.Equal(t, Unbounded, tab.State())
}

func TestTableau_Errors(t *testing.T) {
	f := field.New(field.Rational)
	a, q := system(f, []int64{-1}, []int64{1})
	_, err := New(f, a, q, 0)
	assert.True(t, failure.Is(err, failure.ErrInvariantViolation), "got %v", err)

	tab := newTestTableau(t, f, 0)
	_, _, err = tab.MinRatioRows(2)
	assert.True(t, failure.Is(err, failure.ErrInvariantViolation), "got %v", err)

	a, q = system(f, []int64{1, 1}, []int64{1}, []int64{-1})
	tab, err = New(f, a, q, 0)
	require.NoError(t, err)
	_, err = tab.PivotOn(1, 0)
	assert.True(t, failure.Is(err, failure.ErrInvariantViolation), "got %v", err)
}

func TestFactorize(t *testing.T) {
	f := field.New(field.Rational)
	// Requires a row exchange.
	b, _ := system(f, nil, []int64{0, 1, 2}, []int64{1, 0, 3}, []int64{4, -3, 8})
	lu, err := factorize(f, b)
	require.NoError(t, err)

	v := []field.Number{f.Int(1), f.Int(2), f.Int(3)}
	x, err := lu.solve(v)
	require.NoError(t, err)
	for i := range b {
		sum := f.Zero()
		for j := range x {
			sum = sum.Add(b[i][j].Mul(x[j]))
		}
		assert.Equal(t, 0, sum.Cmp(v[i]), "row %d", i)
	}

	singular, _ := system(f, nil, []int64{1, 2}, []int64{2, 4})
	_, err = factorize(f, singular)
	assert.True(t, failure.Is(err, failure.ErrNumericalFailure), "got %v", err)
}

func TestNumberSlicePool(t *testing.T) {
	s := allocNumberSlice(4)
	assert.Len(t, s, 4)
	freeNumberSlice(s)
	s = allocNumberSlice(2)
	assert.Len(t, s, 2)
	for _, v := range s {
		assert.Nil(t, v)
	}
}
