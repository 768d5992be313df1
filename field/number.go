package field

import (
	"math"
	"math/big"
	"strconv"
)

// floatNumber is a float64 that carries the tolerance of its Field.
type floatNumber struct {
	v   float64
	eps float64
}

func (x floatNumber) other(n Number) float64 {
	if y, ok := n.(floatNumber); ok {
		return y.v
	}

	return n.Float64()
}

func (x floatNumber) Add(n Number) Number { return floatNumber{x.v + x.other(n), x.eps} }
func (x floatNumber) Sub(n Number) Number { return floatNumber{x.v - x.other(n), x.eps} }
func (x floatNumber) Mul(n Number) Number { return floatNumber{x.v * x.other(n), x.eps} }
func (x floatNumber) Neg() Number         { return floatNumber{-x.v, x.eps} }
func (x floatNumber) Abs() Number         { return floatNumber{math.Abs(x.v), x.eps} }

func (x floatNumber) Quo(n Number) (Number, error) {
	d := x.other(n)
	if math.Abs(d) <= x.eps || d == 0 {
		return nil, ErrDivideByZero
	}

	return floatNumber{x.v / d, x.eps}, nil
}

func (x floatNumber) Cmp(n Number) int {
	d := x.v - x.other(n)
	switch {
	case math.Abs(d) <= x.eps:
		return 0
	case d < 0:
		return -1
	default:
		return 1
	}
}

func (x floatNumber) Sign() int {
	switch {
	case math.Abs(x.v) <= x.eps:
		return 0
	case x.v < 0:
		return -1
	default:
		return 1
	}
}

func (x floatNumber) IsZero() bool                     { return x.Sign() == 0 }
func (x floatNumber) EqualWithinEpsilon(n Number) bool { return x.Cmp(n) == 0 }
func (x floatNumber) Precision() Precision             { return Float }
func (x floatNumber) Float64() float64                 { return x.v }

func (x floatNumber) Rat() *big.Rat {
	r := new(big.Rat)
	if r.SetFloat64(x.v) == nil {
		panic("non-finite float has no rational value")
	}

	return r
}

func (x floatNumber) String() string {
	return strconv.FormatFloat(x.v, 'g', -1, 64)
}

// ratNumber is an exact rational. The wrapped big.Rat is never mutated
// after construction, so values may be shared freely.
type ratNumber struct {
	r *big.Rat
}

func (x ratNumber) other(n Number) *big.Rat {
	if y, ok := n.(ratNumber); ok {
		return y.r
	}

	return n.Rat()
}

func (x ratNumber) Add(n Number) Number { return ratNumber{new(big.Rat).Add(x.r, x.other(n))} }
func (x ratNumber) Sub(n Number) Number { return ratNumber{new(big.Rat).Sub(x.r, x.other(n))} }
func (x ratNumber) Mul(n Number) Number { return ratNumber{new(big.Rat).Mul(x.r, x.other(n))} }
func (x ratNumber) Neg() Number         { return ratNumber{new(big.Rat).Neg(x.r)} }
func (x ratNumber) Abs() Number         { return ratNumber{new(big.Rat).Abs(x.r)} }

func (x ratNumber) Quo(n Number) (Number, error) {
	d := x.other(n)
	if d.Sign() == 0 {
		return nil, ErrDivideByZero
	}

	return ratNumber{new(big.Rat).Quo(x.r, d)}, nil
}

func (x ratNumber) Cmp(n Number) int                 { return x.r.Cmp(x.other(n)) }
func (x ratNumber) Sign() int                        { return x.r.Sign() }
func (x ratNumber) IsZero() bool                     { return x.r.Sign() == 0 }
func (x ratNumber) EqualWithinEpsilon(n Number) bool { return x.Cmp(n) == 0 }
func (x ratNumber) Precision() Precision             { return Rational }
func (x ratNumber) Rat() *big.Rat                    { return new(big.Rat).Set(x.r) }
func (x ratNumber) String() string                   { return x.r.RatString() }

func (x ratNumber) Float64() float64 {
	f, _ := x.r.Float64()
	return f
}
