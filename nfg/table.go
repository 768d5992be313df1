package nfg

import (
	"fmt"

	"github.com/timpalpant/gonash/field"
)

// exact is used to store payoffs without loss of precision.
var exact = field.New(field.Rational)

// Table is a Game whose payoffs are stored in a dense table.
// Payoffs are held exactly and converted on demand by the engine.
type Table struct {
	title      string
	players    []string
	strategies [][]string
	// stride[pl] is the distance in contingencies between consecutive
	// strategies of pl. Player 0 varies fastest.
	stride  []int
	payoffs []field.Number
}

// Verify that we implement the interfaces.
var (
	_ Game    = &Table{}
	_ Labeler = &Table{}
)

// NewTable creates a game in which player pl has numStrategies[pl]
// strategies. All payoffs are initially zero.
func NewTable(numStrategies []int) *Table {
	if len(numStrategies) == 0 {
		panic(fmt.Errorf("game must have at least one player"))
	}

	nPlayers := len(numStrategies)
	t := &Table{
		players:    make([]string, nPlayers),
		strategies: make([][]string, nPlayers),
		stride:     make([]int, nPlayers),
	}

	nContingencies := 1
	for pl, n := range numStrategies {
		if n < 1 {
			panic(fmt.Errorf("player %d must have at least one strategy, got %d", pl, n))
		}

		t.stride[pl] = nContingencies
		nContingencies *= n
		t.strategies[pl] = make([]string, n)
	}

	t.payoffs = make([]field.Number, nContingencies*nPlayers)
	zero := exact.Zero()
	for i := range t.payoffs {
		t.payoffs[i] = zero
	}

	return t
}

// NewBimatrix creates a two player game in which player 0 chooses a row
// and player 1 a column, with payoffs a[row][col] and b[row][col].
func NewBimatrix(a, b [][]int64) *Table {
	t := NewTable([]int{len(a), len(a[0])})
	for i := range a {
		for j := range a[i] {
			profile := []int{i + 1, j + 1}
			t.SetPayoff(profile, 0, exact.Int(a[i][j]))
			t.SetPayoff(profile, 1, exact.Int(b[i][j]))
		}
	}

	return t
}

func (t *Table) NumPlayers() int {
	return len(t.players)
}

func (t *Table) NumStrategies(pl int) int {
	return len(t.strategies[pl])
}

func (t *Table) index(profile []int, pl int) int {
	if len(profile) != len(t.players) {
		panic(fmt.Errorf("profile %v has %d entries, game has %d players",
			profile, len(profile), len(t.players)))
	}

	idx := 0
	for p, st := range profile {
		if st < 1 || st > len(t.strategies[p]) {
			panic(fmt.Errorf("profile %v: player %d has no strategy %d", profile, p, st))
		}
		idx += (st - 1) * t.stride[p]
	}

	return idx*len(t.players) + pl
}

// Payoff implements Game.
func (t *Table) Payoff(profile []int, pl int) field.Number {
	return t.payoffs[t.index(profile, pl)]
}

// SetPayoff sets the payoff to pl at the given profile.
func (t *Table) SetPayoff(profile []int, pl int, v field.Number) {
	t.payoffs[t.index(profile, pl)] = exact.Convert(v)
}

func (t *Table) Title() string {
	return t.title
}

func (t *Table) SetTitle(title string) {
	t.title = title
}

func (t *Table) PlayerName(pl int) string {
	return t.players[pl]
}

func (t *Table) SetPlayerName(pl int, name string) {
	t.players[pl] = name
}

func (t *Table) StrategyLabel(pl, number int) string {
	return t.strategies[pl][number-1]
}

func (t *Table) SetStrategyLabel(pl, number int, label string) {
	t.strategies[pl][number-1] = label
}
