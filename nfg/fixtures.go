package nfg

import (
	"golang.org/x/exp/rand"
)

// MatchingPennies is the 2x2 zero-sum game whose only equilibrium is
// for both players to mix uniformly.
func MatchingPennies() *Table {
	t := NewBimatrix(
		[][]int64{{1, -1}, {-1, 1}},
		[][]int64{{-1, 1}, {1, -1}},
	)
	t.SetTitle("Matching pennies")
	labelAll(t, []string{"Heads", "Tails"}, []string{"Heads", "Tails"})
	return t
}

// PrisonersDilemma has the unique equilibrium (Defect, Defect), and
// Defect strictly dominates Cooperate for both players.
func PrisonersDilemma() *Table {
	t := NewBimatrix(
		[][]int64{{3, 0}, {5, 1}},
		[][]int64{{3, 5}, {0, 1}},
	)
	t.SetTitle("Prisoner's dilemma")
	labelAll(t, []string{"Cooperate", "Defect"}, []string{"Cooperate", "Defect"})
	return t
}

// Coordination has two pure equilibria and one mixed equilibrium in
// which each player plays the first strategy with probability 1/3.
func Coordination() *Table {
	t := NewBimatrix(
		[][]int64{{2, 0}, {0, 1}},
		[][]int64{{2, 0}, {0, 1}},
	)
	t.SetTitle("Coordination")
	labelAll(t, []string{"A", "B"}, []string{"A", "B"})
	return t
}

// WeakDominance is a 2x3 game in which the row player's Bottom is weakly
// dominated by Top when the column player is restricted to {Left, Right},
// but not when Center is also available.
func WeakDominance() *Table {
	t := NewBimatrix(
		[][]int64{{1, 1, 0}, {1, 0, 2}},
		[][]int64{{0, 0, 0}, {0, 0, 0}},
	)
	t.SetTitle("Weak dominance")
	labelAll(t, []string{"Top", "Bottom"}, []string{"Left", "Right", "Center"})
	return t
}

func labelAll(t *Table, labels ...[]string) {
	for pl, names := range labels {
		for i, name := range names {
			t.SetStrategyLabel(pl, i+1, name)
		}
	}
}

// RandomTable returns a game with integer payoffs drawn uniformly
// from [-maxPayoff, maxPayoff].
func RandomTable(rng *rand.Rand, numStrategies []int, maxPayoff int) *Table {
	t := NewTable(numStrategies)
	s := NewSupport(t)
	s.ForEachContingency(nil, func(profile []int) bool {
		for pl := range numStrategies {
			v := int64(rng.Intn(2*maxPayoff+1) - maxPayoff)
			t.SetPayoff(profile, pl, exact.Int(v))
		}
		return true
	})

	return t
}
