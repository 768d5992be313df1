package tableau

import (
	"sort"
)

// Basis assigns one basic column to every row of a Tableau.
type Basis struct {
	cols []int
	// rowOf[col] is the row in which col is basic, or -1.
	rowOf []int
}

func newBasis(nRows, nCols int) *Basis {
	b := &Basis{
		cols:  make([]int, nRows),
		rowOf: make([]int, nCols),
	}

	for j := range b.rowOf {
		b.rowOf[j] = -1
	}

	return b
}

// Len returns the number of rows.
func (b *Basis) Len() int {
	return len(b.cols)
}

// Col returns the column basic in row.
func (b *Basis) Col(row int) int {
	return b.cols[row]
}

// Row returns the row in which col is basic, or -1 if it is non-basic.
func (b *Basis) Row(col int) int {
	return b.rowOf[col]
}

func (b *Basis) IsBasic(col int) bool {
	return b.rowOf[col] >= 0
}

// Columns returns the basic columns in increasing order.
func (b *Basis) Columns() []int {
	result := make([]int, len(b.cols))
	copy(result, b.cols)
	sort.Ints(result)
	return result
}

func (b *Basis) set(row, col int) {
	if old := b.cols[row]; old >= 0 && b.rowOf[old] == row {
		b.rowOf[old] = -1
	}

	b.cols[row] = col
	b.rowOf[col] = row
}

func (b *Basis) clone() *Basis {
	c := &Basis{
		cols:  make([]int, len(b.cols)),
		rowOf: make([]int, len(b.rowOf)),
	}

	copy(c.cols, b.cols)
	copy(c.rowOf, b.rowOf)
	return c
}
