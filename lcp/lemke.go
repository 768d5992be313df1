package lcp

import (
	"sort"
	"strconv"
	"strings"

	"github.com/timpalpant/gonash/failure"
	"github.com/timpalpant/gonash/field"
	"github.com/timpalpant/gonash/matrixgame"
	"github.com/timpalpant/gonash/tableau"
)

// LemkeTableau is the complementary system of an m x n bimatrix game
// with strictly positive payoff matrices A and B:
//
//	A y + r = 1   (rows 0..m-1)
//	B'x + s = 1   (rows m..m+n-1)
//
// Columns 0..m-1 are x, columns m..m+n-1 are y, and columns N..2N-1
// (N = m+n) are the slacks r and s. Column k < N carries label k, as
// does its complement k+N.
type LemkeTableau struct {
	*tableau.Tableau
	m, n int
}

// NewLemkeTableau returns the tableau of b at the artificial
// equilibrium, in which every slack is basic.
func NewLemkeTableau(b *matrixgame.Bimatrix, refactorEvery int) (*LemkeTableau, error) {
	f := b.Field()
	m, n := b.Dims()
	aShift, bShift := b.Shifted()

	N := m + n
	a := make([][]field.Number, N)
	q := make([]field.Number, N)
	zero, one := f.Zero(), f.One()
	for row := range a {
		a[row] = make([]field.Number, N)
		for col := range a[row] {
			a[row][col] = zero
		}
		q[row] = one
	}

	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			a[i][m+j] = aShift[i][j]
			a[m+j][i] = bShift[i][j]
		}
	}

	t, err := tableau.New(f, a, q, refactorEvery)
	if err != nil {
		return nil, err
	}

	return &LemkeTableau{Tableau: t, m: m, n: n}, nil
}

// NumLabels is the number of labels, m+n.
func (lt *LemkeTableau) NumLabels() int {
	return lt.m + lt.n
}

// Label returns the label carried by column col.
func (lt *LemkeTableau) Label(col int) int {
	return col % lt.NumLabels()
}

// Complement returns the column complementary to col.
func (lt *LemkeTableau) Complement(col int) int {
	N := lt.NumLabels()
	if col < N {
		return col + N
	}

	return col - N
}

// ComplementaryLabelMissing returns the column to enter next on an
// almost complementary path: the member of the one complementary pair
// that is entirely non-basic, other than lastLeft (the column that just
// left). It returns -1 if every pair has a basic member, which means
// the basis is complementary and the path has ended.
func (lt *LemkeTableau) ComplementaryLabelMissing(lastLeft int) int {
	basis := lt.Basis()
	for k := 0; k < lt.NumLabels(); k++ {
		comp := lt.Complement(k)
		if basis.IsBasic(k) || basis.IsBasic(comp) {
			continue
		}

		if k == lastLeft {
			return comp
		}
		return k
	}

	return -1
}

// IsComplementary returns whether no pair has both members basic.
func (lt *LemkeTableau) IsComplementary() bool {
	basis := lt.Basis()
	for k := 0; k < lt.NumLabels(); k++ {
		if basis.IsBasic(k) && basis.IsBasic(lt.Complement(k)) {
			return false
		}
	}

	return true
}

// IsArtificial returns whether every strategy variable is zero, as at
// the starting vertex.
func (lt *LemkeTableau) IsArtificial() bool {
	for k := 0; k < lt.NumLabels(); k++ {
		if !lt.Value(k).IsZero() {
			return false
		}
	}

	return true
}

// Strategies reads the mixed strategies of the row and column players
// off the current basic solution by normalizing x and y.
func (lt *LemkeTableau) Strategies() (x, y []field.Number, err error) {
	x, err = lt.normalized(0, lt.m)
	if err != nil {
		return nil, nil, err
	}

	y, err = lt.normalized(lt.m, lt.n)
	if err != nil {
		return nil, nil, err
	}

	return x, y, nil
}

func (lt *LemkeTableau) normalized(offset, count int) ([]field.Number, error) {
	f := lt.Field()
	values := make([]field.Number, count)
	total := f.Zero()
	for i := range values {
		values[i] = lt.Value(offset + i)
		total = total.Add(values[i])
	}

	if total.Sign() <= 0 {
		return nil, failure.Invariantf("strategy variables %d..%d sum to %v", offset, offset+count-1, total)
	}

	for i, v := range values {
		p, err := v.Quo(total)
		if err != nil {
			return nil, err
		}
		values[i] = p
	}

	return values, nil
}

// Clone returns an independent copy of lt.
func (lt *LemkeTableau) Clone() *LemkeTableau {
	return &LemkeTableau{Tableau: lt.Tableau.Clone(), m: lt.m, n: lt.n}
}

// BFS snapshots the basic columns with non-zero value and their values.
func (lt *LemkeTableau) BFS() BFS {
	var bfs BFS
	for _, col := range lt.Basis().Columns() {
		if v := lt.Value(col); !v.IsZero() {
			bfs.Cols = append(bfs.Cols, col)
			bfs.Values = append(bfs.Values, v)
		}
	}

	return bfs
}

// BFS is a basic feasible solution: the columns with non-zero value, in
// increasing order, and their values. Two BFSs are equal if they have
// the same columns, since the columns determine the values.
type BFS struct {
	Cols   []int
	Values []field.Number
}

func (b BFS) Equal(other BFS) bool {
	if len(b.Cols) != len(other.Cols) {
		return false
	}

	for i, col := range b.Cols {
		if other.Cols[i] != col {
			return false
		}
	}

	return true
}

// Key returns a string identifying the columns of b.
func (b BFS) Key() string {
	cols := make([]string, len(b.Cols))
	for i, col := range b.Cols {
		cols[i] = strconv.Itoa(col)
	}

	return strings.Join(cols, ",")
}

func (b BFS) String() string {
	entries := make([]string, len(b.Cols))
	for i, col := range b.Cols {
		entries[i] = strconv.Itoa(col) + "=" + b.Values[i].String()
	}

	return "{" + strings.Join(entries, " ") + "}"
}

// sortedRows orders tied rows so that a row whose basic column carries
// the missing label comes first; the rest keep their order.
func sortedRows(lt *LemkeTableau, rows []int, label int) []int {
	result := append([]int(nil), rows...)
	basis := lt.Basis()
	sort.SliceStable(result, func(i, j int) bool {
		return lt.Label(basis.Col(result[i])) == label && lt.Label(basis.Col(result[j])) != label
	})

	return result
}
