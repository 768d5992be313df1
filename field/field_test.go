package field

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timpalpant/gonash/failure"
)

func TestArithmetic(t *testing.T) {
	for _, p := range []Precision{Float, Rational} {
		f := New(p)
		a := f.Frac(3, 4)
		b := f.Frac(1, 4)

		assert.Equal(t, 0, a.Add(b).Cmp(f.One()), "%v: 3/4 + 1/4", p)
		assert.Equal(t, 0, a.Sub(b).Cmp(f.Frac(1, 2)), "%v: 3/4 - 1/4", p)
		assert.Equal(t, 0, a.Mul(b).Cmp(f.Frac(3, 16)), "%v: 3/4 * 1/4", p)
		q, err := a.Quo(b)
		require.NoError(t, err)
		assert.Equal(t, 0, q.Cmp(f.Int(3)), "%v: 3/4 / 1/4", p)
		assert.Equal(t, -1, a.Neg().Sign())
		assert.Equal(t, 1, a.Neg().Abs().Sign())
		assert.Equal(t, p, a.Precision())
	}
}

func TestDivideByZero(t *testing.T) {
	for _, p := range []Precision{Float, Rational} {
		f := New(p)
		_, err := f.One().Quo(f.Zero())
		assert.ErrorIs(t, err, ErrDivideByZero)
		assert.True(t, failure.Is(err, failure.ErrArithmetic))
	}
}

func TestFloatEpsilon(t *testing.T) {
	f := New(Float)
	a := f.Float(1)
	b := f.Float(1 + 1e-12)
	assert.True(t, a.EqualWithinEpsilon(b))
	assert.Equal(t, 0, a.Cmp(b))
	assert.True(t, f.Float(1e-12).IsZero())
	assert.Equal(t, 0, f.Float(-1e-12).Sign())
	assert.False(t, a.EqualWithinEpsilon(f.Float(1.001)))
}

func TestRationalIsExact(t *testing.T) {
	f := New(Rational)
	a := f.Int(1)
	b := f.Rat(big.NewRat(1_000_000_000_001, 1_000_000_000_000))
	assert.False(t, a.EqualWithinEpsilon(b))
	assert.Equal(t, -1, a.Cmp(b))
	assert.Equal(t, 0, f.Epsilon().Sign())

	third := f.Frac(1, 3)
	sum := third.Add(third).Add(third)
	assert.Equal(t, "1", sum.String())
}

func TestParse(t *testing.T) {
	testCases := []struct {
		input    string
		expected *big.Rat
	}{
		{"3", big.NewRat(3, 1)},
		{"-2", big.NewRat(-2, 1)},
		{"3/4", big.NewRat(3, 4)},
		{"1.25", big.NewRat(5, 4)},
		{"1e-3", big.NewRat(1, 1000)},
	}

	f := New(Rational)
	for _, tc := range testCases {
		n, err := f.Parse(tc.input)
		require.NoError(t, err, tc.input)
		assert.Equal(t, 0, n.Rat().Cmp(tc.expected), "parse %q = %v", tc.input, n)
	}

	_, err := f.Parse("abc")
	assert.Error(t, err)
}

func TestConvert(t *testing.T) {
	r := New(Rational)
	fl := New(Float)

	x := fl.Convert(r.Frac(1, 2))
	assert.Equal(t, Float, x.Precision())
	assert.Equal(t, 0.5, x.Float64())

	y := r.Convert(fl.Float(0.25))
	assert.Equal(t, Rational, y.Precision())
	assert.Equal(t, "1/4", y.String())

	// Mixed operands take the receiver's precision.
	z := r.Frac(1, 2).Add(fl.Float(0.5))
	assert.Equal(t, Rational, z.Precision())
	assert.Equal(t, "1", z.String())
}

func TestParsePrecision(t *testing.T) {
	p, err := ParsePrecision("Rational")
	require.NoError(t, err)
	assert.Equal(t, Rational, p)
	p, err = ParsePrecision("float")
	require.NoError(t, err)
	assert.Equal(t, Float, p)
	_, err = ParsePrecision("double")
	assert.Error(t, err)
}

func TestMaxAndSum(t *testing.T) {
	f := New(Rational)
	ns := []Number{f.Int(2), f.Int(-1), f.Frac(7, 2)}
	assert.Equal(t, "7/2", Max(ns...).String())
	assert.Equal(t, "9/2", f.Sum(ns).String())
}
