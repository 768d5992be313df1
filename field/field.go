// Package field implements the numeric field shared by every algorithm in
// gonash. A Field selects, at runtime, between exact rational arithmetic
// (correct on degenerate games, slow) and floating point arithmetic with
// epsilon-tolerant comparisons (fast, sensitive to degeneracy).
//
// All algorithms are written once against the Number interface.
package field

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/pkg/errors"

	"github.com/timpalpant/gonash/failure"
)

// Precision selects how numbers are represented and compared.
type Precision uint8

const (
	// Float numbers are float64 values compared within an epsilon.
	Float Precision = iota
	// Rational numbers are exact big.Rat values compared exactly.
	Rational
)

var precisionStr = [...]string{
	"float",
	"rational",
}

func (p Precision) String() string {
	if int(p) < len(precisionStr) {
		return precisionStr[p]
	}

	return fmt.Sprintf("Precision(%d)", p)
}

// ParsePrecision parses the String form of a Precision.
func ParsePrecision(s string) (Precision, error) {
	for i, name := range precisionStr {
		if strings.EqualFold(s, name) {
			return Precision(i), nil
		}
	}

	return Float, errors.Errorf("unknown precision %q", s)
}

// DefaultEpsilon is the comparison tolerance of a floating Field.
const DefaultEpsilon = 1e-9

// ErrDivideByZero is returned by Number.Quo when the divisor is zero.
var ErrDivideByZero = errors.Wrap(failure.ErrArithmetic, "division by zero")

// Number is an element of a Field. Numbers are immutable values:
// every arithmetic operation returns a new Number.
//
// When the operands of a binary operation have different precisions,
// the argument is converted to the precision of the receiver.
type Number interface {
	Add(Number) Number
	Sub(Number) Number
	Mul(Number) Number
	// Quo returns the quotient, or ErrDivideByZero.
	Quo(Number) (Number, error)
	Neg() Number
	Abs() Number

	// Cmp compares two numbers, treating floating numbers that differ
	// by no more than the field epsilon as equal.
	Cmp(Number) int
	Sign() int
	IsZero() bool
	EqualWithinEpsilon(Number) bool

	Precision() Precision
	Float64() float64
	Rat() *big.Rat
	String() string
}

// Field creates Numbers of a single precision.
type Field struct {
	precision Precision
	epsilon   float64
}

// New returns a Field of the given precision with the default epsilon.
func New(p Precision) *Field {
	return NewWithEpsilon(p, DefaultEpsilon)
}

// NewWithEpsilon returns a Field with a custom floating point tolerance.
// The epsilon is ignored by rational fields, which always compare exactly.
func NewWithEpsilon(p Precision, epsilon float64) *Field {
	if epsilon < 0 || math.IsNaN(epsilon) {
		panic(fmt.Errorf("invalid epsilon: %v", epsilon))
	}

	if p == Rational {
		epsilon = 0
	}

	return &Field{precision: p, epsilon: epsilon}
}

// Precision returns the precision of numbers created by this Field.
func (f *Field) Precision() Precision {
	return f.precision
}

// Epsilon returns the comparison tolerance, which is exactly zero
// for a rational field.
func (f *Field) Epsilon() Number {
	return f.Float(f.epsilon)
}

func (f *Field) Zero() Number {
	return f.Int(0)
}

func (f *Field) One() Number {
	return f.Int(1)
}

// Int returns the Number equal to i.
func (f *Field) Int(i int64) Number {
	if f.precision == Rational {
		return ratNumber{new(big.Rat).SetInt64(i)}
	}

	return floatNumber{float64(i), f.epsilon}
}

// Float returns the Number closest to x. In a rational field the
// conversion is exact; x must be finite.
func (f *Field) Float(x float64) Number {
	if f.precision == Rational {
		r := new(big.Rat)
		if r.SetFloat64(x) == nil {
			panic(fmt.Errorf("cannot represent %v as a rational", x))
		}
		return ratNumber{r}
	}

	return floatNumber{x, f.epsilon}
}

// Rat returns the Number equal to r.
func (f *Field) Rat(r *big.Rat) Number {
	if f.precision == Rational {
		return ratNumber{new(big.Rat).Set(r)}
	}

	x, _ := r.Float64()
	return floatNumber{x, f.epsilon}
}

// Frac returns the Number equal to a/b. It panics if b is zero.
func (f *Field) Frac(a, b int64) Number {
	return f.Rat(big.NewRat(a, b))
}

// Parse parses an integer, decimal ("1.25", "1e-3") or fraction ("3/4").
func (f *Field) Parse(s string) (Number, error) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, errors.Errorf("invalid number %q", s)
	}

	return f.Rat(r), nil
}

// Convert returns n in the precision of this Field.
func (f *Field) Convert(n Number) Number {
	if f.precision == Rational {
		if r, ok := n.(ratNumber); ok {
			return r
		}
		return ratNumber{n.Rat()}
	}

	if x, ok := n.(floatNumber); ok && x.eps == f.epsilon {
		return x
	}
	return floatNumber{n.Float64(), f.epsilon}
}

// Sum returns the sum of ns, or zero if ns is empty.
func (f *Field) Sum(ns []Number) Number {
	total := f.Zero()
	for _, n := range ns {
		total = total.Add(n)
	}

	return total
}

// Max returns the largest of ns. It panics if ns is empty.
func Max(ns ...Number) Number {
	best := ns[0]
	for _, n := range ns[1:] {
		if n.Cmp(best) > 0 {
			best = n
		}
	}

	return best
}
