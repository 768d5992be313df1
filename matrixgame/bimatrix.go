// Package matrixgame restricts strategic-form games to two-player
// bimatrix games, the form consumed by complementary pivoting.
package matrixgame

import (
	"github.com/pkg/errors"

	"github.com/timpalpant/gonash/failure"
	"github.com/timpalpant/gonash/field"
	"github.com/timpalpant/gonash/nfg"
)

// Bimatrix is the restriction of a game to the active strategies of two
// players, with every other player held to a fixed pure strategy.
// Rows are the row player's active strategies in increasing order, and
// columns are the column player's.
type Bimatrix struct {
	support   *nfg.Support
	field     *field.Field
	rowPlayer int
	colPlayer int
	// fixed holds the strategy of every other player.
	fixed []int

	rows []nfg.Strategy
	cols []nfg.Strategy
	// A holds the row player's payoffs and B the column player's.
	A, B [][]field.Number
}

// FromSupport returns the bimatrix of a two-player support.
func FromSupport(s *nfg.Support, f *field.Field) (*Bimatrix, error) {
	if s.NumPlayers() != 2 {
		return nil, errors.Errorf("bimatrix requires 2 players, game has %d", s.NumPlayers())
	}

	return Restrict(s, f, 0, 1, nil)
}

// Restrict returns the bimatrix between rowPlayer and colPlayer on s
// when every other player pl plays fixed[pl], which must be active.
// Entries of fixed for the two players themselves are ignored.
func Restrict(s *nfg.Support, f *field.Field, rowPlayer, colPlayer int, fixed []int) (*Bimatrix, error) {
	n := s.NumPlayers()
	if rowPlayer == colPlayer || rowPlayer < 0 || colPlayer < 0 || rowPlayer >= n || colPlayer >= n {
		return nil, failure.Invariantf("invalid player pair (%d, %d) of %d players", rowPlayer, colPlayer, n)
	}

	profile := make([]int, n)
	for pl := 0; pl < n; pl++ {
		if pl == rowPlayer || pl == colPlayer {
			continue
		}

		if pl >= len(fixed) || !s.Contains(nfg.Strategy{Player: pl, Number: fixed[pl]}) {
			return nil, failure.Invariantf("player %d has no active fixed strategy", pl)
		}
		profile[pl] = fixed[pl]
	}

	b := &Bimatrix{
		support:   s.Clone(),
		field:     f,
		rowPlayer: rowPlayer,
		colPlayer: colPlayer,
		fixed:     append([]int(nil), profile...),
		rows:      s.Strategies(rowPlayer),
		cols:      s.Strategies(colPlayer),
	}

	g := s.Game()
	b.A = make([][]field.Number, len(b.rows))
	b.B = make([][]field.Number, len(b.rows))
	for i, r := range b.rows {
		b.A[i] = make([]field.Number, len(b.cols))
		b.B[i] = make([]field.Number, len(b.cols))
		for j, c := range b.cols {
			profile[rowPlayer] = r.Number
			profile[colPlayer] = c.Number
			b.A[i][j] = f.Convert(g.Payoff(profile, rowPlayer))
			b.B[i][j] = f.Convert(g.Payoff(profile, colPlayer))
		}
	}

	return b, nil
}

func (b *Bimatrix) Field() *field.Field {
	return b.field
}

// Dims returns the number of rows and columns.
func (b *Bimatrix) Dims() (m, n int) {
	return len(b.rows), len(b.cols)
}

// Players returns the row and column players.
func (b *Bimatrix) Players() (row, col int) {
	return b.rowPlayer, b.colPlayer
}

func (b *Bimatrix) RowStrategy(i int) nfg.Strategy {
	return b.rows[i]
}

func (b *Bimatrix) ColStrategy(j int) nfg.Strategy {
	return b.cols[j]
}

// Shifted returns copies of A and B with a constant added to every
// entry, so that all payoffs are at least one. Shifting a player's
// payoffs does not change the equilibria.
func (b *Bimatrix) Shifted() (a, bb [][]field.Number) {
	return shiftPositive(b.field, b.A), shiftPositive(b.field, b.B)
}

func shiftPositive(f *field.Field, m [][]field.Number) [][]field.Number {
	min := m[0][0]
	for _, row := range m {
		for _, v := range row {
			if v.Cmp(min) < 0 {
				min = v
			}
		}
	}

	// Subtract (min - 1) unless every entry is already positive.
	shift := f.Zero()
	if min.Sign() <= 0 {
		shift = min.Sub(f.One())
	}

	result := make([][]field.Number, len(m))
	for i, row := range m {
		result[i] = make([]field.Number, len(row))
		for j, v := range row {
			result[i][j] = v.Sub(shift)
		}
	}

	return result
}

// Profile converts mixed strategies x over the rows and y over the
// columns into a profile on the support, with every other player
// playing their fixed strategy.
func (b *Bimatrix) Profile(x, y []field.Number) (*nfg.Profile, error) {
	if len(x) != len(b.rows) || len(y) != len(b.cols) {
		return nil, failure.Invariantf("profile dimensions %dx%d do not match %dx%d",
			len(x), len(y), len(b.rows), len(b.cols))
	}

	p := nfg.NewProfile(b.support, b.field)
	for i, v := range x {
		if err := p.SetProb(b.rows[i], v); err != nil {
			return nil, err
		}
	}

	for j, v := range y {
		if err := p.SetProb(b.cols[j], v); err != nil {
			return nil, err
		}
	}

	for pl, st := range b.fixed {
		if pl == b.rowPlayer || pl == b.colPlayer {
			continue
		}

		if err := p.SetProb(nfg.Strategy{Player: pl, Number: st}, b.field.One()); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// BestResponses returns the rows that maximize the row player's payoff
// against the column mixture y.
func (b *Bimatrix) BestResponses(y []field.Number) []int {
	values := make([]field.Number, len(b.rows))
	for i := range b.rows {
		v := b.field.Zero()
		for j, yj := range y {
			v = v.Add(b.A[i][j].Mul(yj))
		}
		values[i] = v
	}

	return argMaxes(values)
}

// ColBestResponses returns the columns that maximize the column player's
// payoff against the row mixture x.
func (b *Bimatrix) ColBestResponses(x []field.Number) []int {
	values := make([]field.Number, len(b.cols))
	for j := range b.cols {
		v := b.field.Zero()
		for i, xi := range x {
			v = v.Add(b.B[i][j].Mul(xi))
		}
		values[j] = v
	}

	return argMaxes(values)
}

func argMaxes(values []field.Number) []int {
	best := field.Max(values...)
	var result []int
	for i, v := range values {
		if v.Cmp(best) == 0 {
			result = append(result, i)
		}
	}

	return result
}
