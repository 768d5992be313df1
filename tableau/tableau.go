// Package tableau maintains a basis of the linear system
//
//	A z + I s = q,  z, s >= 0
//
// under pivoting. Columns 0..n-1 are the structural columns of A and
// columns n..n+m-1 are the implicit unit (slack) columns, so the initial
// basis consists of the slacks. Rather than updating a dense tableau,
// each pivot appends an eta column to a product-form inverse of the
// basis, which is periodically refactored from scratch.
package tableau

import (
	"fmt"
	"math"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/timpalpant/gonash/failure"
	"github.com/timpalpant/gonash/field"
)

// State is the lifecycle state of a Tableau.
type State int

const (
	// Initialized is the all-slack basis.
	Initialized State = iota
	// Pivoting is any basis reached by one or more pivots.
	Pivoting
	// Terminal is a basis accepted by the caller as a solution.
	Terminal
	// DegenerateHalt is entered when a ratio test is tied; the caller
	// chooses the leaving row with PivotOn.
	DegenerateHalt
	// Unbounded is entered when an entering column has no positive
	// entry. It cannot occur for a well-formed complementarity problem.
	Unbounded
)

var stateStr = [...]string{
	"initialized",
	"pivoting",
	"terminal",
	"degenerate",
	"unbounded",
}

func (s State) String() string {
	if int(s) < len(stateStr) {
		return stateStr[s]
	}

	return fmt.Sprintf("State(%d)", s)
}

// DefaultRefactorEvery is the number of pivots between refactorizations.
const DefaultRefactorEvery = 25

// MaxCondition is the largest basis condition number accepted when a
// floating point tableau is refactored.
const MaxCondition = 1e12

// eta records one pivot: the entering column expressed in the basis
// before the pivot, and the row in which it entered.
type eta struct {
	row int
	d   []field.Number
}

// Tableau is exclusively owned by one pivoting run. Clones share only
// the immutable system.
type Tableau struct {
	f *field.Field
	// a and q are never modified after construction.
	a [][]field.Number
	q []field.Number

	nRows, nStruct int
	refactorEvery  int

	basis  *Basis
	lu     *luFactors
	etas   []eta
	values []field.Number
	state  State
	pivots int
}

// New returns a tableau for A z + s = q in the all-slack basis, which
// must be feasible (q >= 0). The entries of a and q are converted to f.
func New(f *field.Field, a [][]field.Number, q []field.Number, refactorEvery int) (*Tableau, error) {
	nRows := len(q)
	if len(a) != nRows {
		return nil, errors.Errorf("A has %d rows but q has %d entries", len(a), nRows)
	}

	if refactorEvery <= 0 {
		refactorEvery = DefaultRefactorEvery
	}

	nStruct := 0
	if nRows > 0 {
		nStruct = len(a[0])
	}

	t := &Tableau{
		f:             f,
		a:             make([][]field.Number, nRows),
		q:             make([]field.Number, nRows),
		nRows:         nRows,
		nStruct:       nStruct,
		refactorEvery: refactorEvery,
		basis:         newBasis(nRows, nStruct+nRows),
		lu:            identityLU(f, nRows),
		values:        make([]field.Number, nRows),
	}

	for i, row := range a {
		if len(row) != nStruct {
			return nil, errors.Errorf("row %d of A has %d entries, expected %d", i, len(row), nStruct)
		}

		t.a[i] = make([]field.Number, nStruct)
		for j, v := range row {
			t.a[i][j] = f.Convert(v)
		}

		t.q[i] = f.Convert(q[i])
		if t.q[i].Sign() < 0 {
			return nil, errors.Wrapf(failure.ErrInvariantViolation,
				"initial basis is infeasible: q[%d] = %v", i, t.q[i])
		}

		t.basis.set(i, nStruct+i)
		t.values[i] = t.q[i]
	}

	return t, nil
}

func (t *Tableau) Field() *field.Field {
	return t.f
}

func (t *Tableau) NumRows() int {
	return t.nRows
}

// NumCols returns the number of columns, structural and slack.
func (t *Tableau) NumCols() int {
	return t.nStruct + t.nRows
}

func (t *Tableau) NumStructural() int {
	return t.nStruct
}

func (t *Tableau) Basis() *Basis {
	return t.basis
}

func (t *Tableau) State() State {
	return t.state
}

// MarkTerminal records that the caller has accepted the current basis.
func (t *Tableau) MarkTerminal() {
	t.state = Terminal
}

// Pivots returns the number of pivots since the last refactorization.
func (t *Tableau) Pivots() int {
	return t.pivots
}

// column returns column j of [A I].
func (t *Tableau) column(j int) []field.Number {
	col := make([]field.Number, t.nRows)
	zero := t.f.Zero()
	if j < t.nStruct {
		for i := range col {
			col[i] = t.a[i][j]
		}
	} else {
		for i := range col {
			col[i] = zero
		}
		col[j-t.nStruct] = t.f.One()
	}

	return col
}

// Solve returns column j expressed in the current basis (FTRAN): the
// solution d of B d = a_j, computed through the LU factors and then
// each eta in order.
func (t *Tableau) Solve(j int) ([]field.Number, error) {
	d, err := t.lu.solve(t.column(j))
	if err != nil {
		return nil, err
	}

	for _, e := range t.etas {
		if err := applyEta(e, d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// applyEta replaces v with E^-1 v for the elementary matrix E whose
// column e.row is e.d.
func applyEta(e eta, v []field.Number) error {
	if v[e.row].IsZero() {
		return nil
	}

	vr, err := v[e.row].Quo(e.d[e.row])
	if err != nil {
		return err
	}

	for i, di := range e.d {
		if i != e.row && !di.IsZero() {
			v[i] = v[i].Sub(di.Mul(vr))
		}
	}
	v[e.row] = vr
	return nil
}

// Value returns the value of column j in the current basic solution.
func (t *Tableau) Value(j int) field.Number {
	if row := t.basis.Row(j); row >= 0 {
		return t.values[row]
	}

	return t.f.Zero()
}

// BasicValues returns the value of the basic column in each row.
func (t *Tableau) BasicValues() []field.Number {
	result := make([]field.Number, len(t.values))
	copy(result, t.values)
	return result
}

// MinRatioRows performs the minimum ratio test for entering column j.
// It returns every row attaining the minimum ratio, ordered by the index
// of the column currently basic in that row, together with j expressed
// in the current basis. If more than one row ties, the tableau enters
// DegenerateHalt. If no row limits j, the tableau enters Unbounded and
// an ErrInvariantViolation is returned.
func (t *Tableau) MinRatioRows(j int) ([]int, []field.Number, error) {
	if t.basis.IsBasic(j) {
		return nil, nil, failure.Invariantf("column %d is already basic", j)
	}

	d, err := t.Solve(j)
	if err != nil {
		return nil, nil, err
	}

	var rows []int
	var best field.Number
	for i, di := range d {
		if di.Sign() <= 0 {
			continue
		}

		ratio, err := t.values[i].Quo(di)
		if err != nil {
			return nil, nil, err
		}

		switch {
		case rows == nil:
			rows, best = []int{i}, ratio
		case ratio.Cmp(best) < 0:
			rows, best = rows[:0], ratio
			rows = append(rows, i)
		case ratio.Cmp(best) == 0:
			rows = append(rows, i)
		}
	}

	if rows == nil {
		t.state = Unbounded
		return nil, d, failure.Invariantf("column %d is unbounded", j)
	}

	// Tie-break on the smallest basic column index.
	for i := 1; i < len(rows); i++ {
		for k := i; k > 0 && t.basis.Col(rows[k]) < t.basis.Col(rows[k-1]); k-- {
			rows[k], rows[k-1] = rows[k-1], rows[k]
		}
	}

	if len(rows) > 1 {
		t.state = DegenerateHalt
	}

	return rows, d, nil
}

// Pivot brings column j into the basis, choosing the leaving row by the
// minimum ratio test with ties broken toward the smallest basic column
// index. It returns the column that left and whether the ratio test
// was tied.
func (t *Tableau) Pivot(j int) (leaving int, tied bool, err error) {
	rows, d, err := t.MinRatioRows(j)
	if err != nil {
		return -1, false, err
	}

	leaving = t.basis.Col(rows[0])
	if err := t.pivotOn(rows[0], j, d); err != nil {
		return -1, false, err
	}

	return leaving, len(rows) > 1, nil
}

// PivotOn brings column j into the basis in the given row, which must
// attain the minimum ratio, and returns the column that left.
func (t *Tableau) PivotOn(row, j int) (int, error) {
	d, err := t.Solve(j)
	if err != nil {
		return -1, err
	}

	if d[row].Sign() <= 0 {
		return -1, failure.Invariantf("cannot pivot column %d on row %d: entry %v", j, row, d[row])
	}

	leaving := t.basis.Col(row)
	return leaving, t.pivotOn(row, j, d)
}

func (t *Tableau) pivotOn(row, j int, d []field.Number) error {
	theta, err := t.values[row].Quo(d[row])
	if err != nil {
		return err
	}

	for i, di := range d {
		if i != row && !di.IsZero() {
			t.values[i] = t.values[i].Sub(theta.Mul(di))
		}
	}
	t.values[row] = theta

	t.etas = append(t.etas, eta{row: row, d: d})
	t.basis.set(row, j)
	t.state = Pivoting
	t.pivots++
	if glog.V(3) {
		glog.Infof("Pivot: column %d entered at row %d with value %v", j, row, theta)
	}

	if t.pivots >= t.refactorEvery {
		return t.Refactor()
	}

	return nil
}

// Refactor rebuilds the LU factorization of the current basis matrix and
// clears the eta file. The basic solution obtained from the new factors
// replaces the incrementally updated one; in a floating point field the
// two must agree, and the basis must be well conditioned, or an
// ErrNumericalFailure is returned.
func (t *Tableau) Refactor() error {
	b := make([][]field.Number, t.nRows)
	for i := range b {
		b[i] = make([]field.Number, t.nRows)
	}
	for k := 0; k < t.nRows; k++ {
		col := t.column(t.basis.Col(k))
		for i, v := range col {
			b[i][k] = v
		}
	}

	if t.f.Precision() == field.Float {
		if err := checkCondition(b); err != nil {
			return err
		}
	}

	lu, err := factorize(t.f, b)
	if err != nil {
		return err
	}

	values, err := lu.solve(t.q)
	if err != nil {
		return err
	}

	if t.f.Precision() == field.Float {
		tol := math.Sqrt(t.f.Epsilon().Float64())
		for i, v := range values {
			if diff := math.Abs(v.Float64() - t.values[i].Float64()); diff > tol*(1+math.Abs(v.Float64())) {
				return failure.Numericalf("refactored value of row %d is %v, updated value is %v",
					i, v, t.values[i])
			}
		}
	}

	for i, v := range values {
		if v.Sign() < 0 {
			return failure.Numericalf("refactored basis is infeasible at row %d: %v", i, v)
		}
	}

	glog.V(2).Infof("Refactored basis after %d pivots", t.pivots)
	t.lu = lu
	t.etas = nil
	t.values = values
	t.pivots = 0
	return nil
}

func checkCondition(b [][]field.Number) error {
	n := len(b)
	if n == 0 {
		return nil
	}

	data := make([]float64, 0, n*n)
	for _, row := range b {
		for _, v := range row {
			data = append(data, v.Float64())
		}
	}

	var lu mat.LU
	lu.Factorize(mat.NewDense(n, n, data))
	if cond := lu.Cond(); cond > MaxCondition || math.IsNaN(cond) {
		return failure.Numericalf("basis is ill-conditioned: condition number %g", cond)
	}

	return nil
}

// Clone returns a copy of t that may be pivoted independently.
func (t *Tableau) Clone() *Tableau {
	c := *t
	c.basis = t.basis.clone()
	c.etas = make([]eta, len(t.etas))
	copy(c.etas, t.etas)
	c.values = make([]field.Number, len(t.values))
	copy(c.values, t.values)
	return &c
}
