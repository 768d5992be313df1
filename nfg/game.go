// Package nfg defines the strategic-form (normal form) game model used by
// the equilibrium engine: the read-only Game query interface, strategy
// Supports, and mixed strategy Profiles.
//
// Players are numbered from 0. Strategies of a player are numbered
// from 1, and a profile of pure strategies is a slice holding one
// strategy number per player.
package nfg

import (
	"fmt"

	"github.com/timpalpant/gonash/field"
)

// Game is the query interface of a finite strategic-form game.
// Payoff must be a pure function of its arguments.
//
// Implementations must be comparable with == (e.g. pointer types),
// since two Supports are equal only if they reference the same Game.
type Game interface {
	NumPlayers() int
	NumStrategies(player int) int
	// Payoff returns the payoff to player when each player pl plays
	// strategy profile[pl].
	Payoff(profile []int, player int) field.Number
}

// Labeler is implemented by games that carry human readable names.
type Labeler interface {
	Title() string
	PlayerName(player int) string
	StrategyLabel(player, number int) string
}

// Strategy identifies one pure strategy of one player.
type Strategy struct {
	Player int
	// Number is the 1-based index of the strategy within its player.
	Number int
}

func (s Strategy) String() string {
	return fmt.Sprintf("%d:%d", s.Player, s.Number)
}

// Less orders strategies by player, then by number. This is the order in
// which supports enumerate their strategies.
func (s Strategy) Less(other Strategy) bool {
	if s.Player != other.Player {
		return s.Player < other.Player
	}

	return s.Number < other.Number
}

// StrategyName returns the label of st if g is a Labeler, or its number.
func StrategyName(g Game, st Strategy) string {
	if l, ok := g.(Labeler); ok {
		if label := l.StrategyLabel(st.Player, st.Number); label != "" {
			return label
		}
	}

	return fmt.Sprintf("%d", st.Number)
}

// PlayerName returns the name of pl if g is a Labeler, or a default.
func PlayerName(g Game, pl int) string {
	if l, ok := g.(Labeler); ok {
		if name := l.PlayerName(pl); name != "" {
			return name
		}
	}

	return fmt.Sprintf("Player %d", pl+1)
}

// NumContingencies returns the number of pure strategy profiles of g.
func NumContingencies(g Game) int {
	n := 1
	for pl := 0; pl < g.NumPlayers(); pl++ {
		n *= g.NumStrategies(pl)
	}

	return n
}
