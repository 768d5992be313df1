package nfg

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/timpalpant/gonash/failure"
)

// Support is the subset of each player's strategies currently under
// consideration. A Support is owned by the caller that created it and
// never modifies its Game.
type Support struct {
	game   Game
	label  string
	active [][]bool
	counts []int
}

// NewSupport returns the full support of g, in which every strategy
// of every player is active.
func NewSupport(g Game) *Support {
	s := &Support{
		game:   g,
		active: make([][]bool, g.NumPlayers()),
		counts: make([]int, g.NumPlayers()),
	}

	for pl := range s.active {
		n := g.NumStrategies(pl)
		s.active[pl] = make([]bool, n)
		for i := range s.active[pl] {
			s.active[pl][i] = true
		}
		s.counts[pl] = n
	}

	return s
}

// Game returns the game this support is defined on.
func (s *Support) Game() Game {
	return s.game
}

func (s *Support) Label() string {
	return s.label
}

func (s *Support) SetLabel(label string) {
	s.label = label
}

func (s *Support) NumPlayers() int {
	return len(s.counts)
}

func (s *Support) checkStrategy(st Strategy) {
	if st.Player < 0 || st.Player >= len(s.active) ||
		st.Number < 1 || st.Number > len(s.active[st.Player]) {
		panic(errors.Wrapf(failure.ErrInvariantViolation, "strategy %v not in game", st))
	}
}

// Contains returns whether st is active in this support.
func (s *Support) Contains(st Strategy) bool {
	if st.Player < 0 || st.Player >= len(s.active) ||
		st.Number < 1 || st.Number > len(s.active[st.Player]) {
		return false
	}

	return s.active[st.Player][st.Number-1]
}

// NumActive returns the number of active strategies of player pl.
func (s *Support) NumActive(pl int) int {
	return s.counts[pl]
}

// NumActiveAll returns the number of active strategies of every player.
func (s *Support) NumActiveAll() []int {
	result := make([]int, len(s.counts))
	copy(result, s.counts)
	return result
}

// ProfileLength is the total number of active strategies, which is the
// length of a mixed strategy profile on this support.
func (s *Support) ProfileLength() int {
	total := 0
	for _, n := range s.counts {
		total += n
	}

	return total
}

// NumContingencies is the number of pure strategy profiles on this support.
func (s *Support) NumContingencies() int {
	total := 1
	for _, n := range s.counts {
		total *= n
	}

	return total
}

// AddStrategy activates st. It is a no-op if st is already active.
func (s *Support) AddStrategy(st Strategy) {
	s.checkStrategy(st)
	if s.active[st.Player][st.Number-1] {
		return
	}

	s.active[st.Player][st.Number-1] = true
	s.counts[st.Player]++
}

// RemoveStrategy deactivates st. It is a no-op if st is not active.
// Removing the last active strategy of a player is an
// ErrInvariantViolation; callers must check NumActive first.
func (s *Support) RemoveStrategy(st Strategy) error {
	if !s.Contains(st) {
		return nil
	}

	if s.counts[st.Player] <= 1 {
		return errors.Wrapf(failure.ErrInvariantViolation,
			"cannot remove %v: last active strategy of player %d", st, st.Player)
	}

	s.active[st.Player][st.Number-1] = false
	s.counts[st.Player]--
	return nil
}

// IsSubsetOf returns whether every strategy active in s is active in
// other, and both reference the same game.
func (s *Support) IsSubsetOf(other *Support) bool {
	if s.game != other.game {
		return false
	}

	for pl, active := range s.active {
		for i, ok := range active {
			if ok && !other.active[pl][i] {
				return false
			}
		}
	}

	return true
}

// Index returns the 1-based position of st among the active strategies
// of its player, or 0 if st is not active.
func (s *Support) Index(st Strategy) int {
	if !s.Contains(st) {
		return 0
	}

	idx := 0
	for i := 0; i < st.Number; i++ {
		if s.active[st.Player][i] {
			idx++
		}
	}

	return idx
}

// Strategy returns the i-th (1-based) active strategy of player pl.
func (s *Support) Strategy(pl, i int) Strategy {
	n := 0
	for j, ok := range s.active[pl] {
		if ok {
			n++
			if n == i {
				return Strategy{Player: pl, Number: j + 1}
			}
		}
	}

	panic(errors.Wrapf(failure.ErrInvariantViolation,
		"player %d has %d active strategies, requested %d", pl, s.counts[pl], i))
}

// Strategies returns the active strategies of player pl in increasing order.
func (s *Support) Strategies(pl int) []Strategy {
	result := make([]Strategy, 0, s.counts[pl])
	for j, ok := range s.active[pl] {
		if ok {
			result = append(result, Strategy{Player: pl, Number: j + 1})
		}
	}

	return result
}

// Numbers returns the numbers of the active strategies of player pl.
func (s *Support) Numbers(pl int) []int {
	result := make([]int, 0, s.counts[pl])
	for j, ok := range s.active[pl] {
		if ok {
			result = append(result, j+1)
		}
	}

	return result
}

// AllStrategies returns every active strategy, ordered by player then number.
func (s *Support) AllStrategies() []Strategy {
	result := make([]Strategy, 0, s.ProfileLength())
	for pl := range s.active {
		result = append(result, s.Strategies(pl)...)
	}

	return result
}

// Clone returns an independent copy of s.
func (s *Support) Clone() *Support {
	c := &Support{
		game:   s.game,
		label:  s.label,
		active: make([][]bool, len(s.active)),
		counts: make([]int, len(s.counts)),
	}

	copy(c.counts, s.counts)
	for pl, active := range s.active {
		c.active[pl] = make([]bool, len(active))
		copy(c.active[pl], active)
	}

	return c
}

// Equal returns whether s and other reference the same game and have
// identical active strategies. Labels are not compared.
func (s *Support) Equal(other *Support) bool {
	if s.game != other.game || len(s.active) != len(other.active) {
		return false
	}

	for pl, active := range s.active {
		for i, ok := range active {
			if ok != other.active[pl][i] {
				return false
			}
		}
	}

	return true
}

// Validate checks that every player retains at least one active strategy
// and that the bookkeeping agrees with the game.
func (s *Support) Validate() error {
	if len(s.active) != s.game.NumPlayers() {
		return errors.Wrapf(failure.ErrInvariantViolation,
			"support has %d players, game has %d", len(s.active), s.game.NumPlayers())
	}

	for pl, active := range s.active {
		if len(active) != s.game.NumStrategies(pl) {
			return errors.Wrapf(failure.ErrInvariantViolation,
				"player %d: support has %d strategies, game has %d",
				pl, len(active), s.game.NumStrategies(pl))
		}

		n := 0
		for _, ok := range active {
			if ok {
				n++
			}
		}

		if n != s.counts[pl] {
			return errors.Wrapf(failure.ErrInvariantViolation,
				"player %d: counted %d active strategies, recorded %d", pl, n, s.counts[pl])
		}

		if n == 0 {
			return errors.Wrapf(failure.ErrInvariantViolation,
				"player %d has no active strategies", pl)
		}
	}

	return nil
}

// Key returns a compact string identifying the active strategies,
// suitable for use as a map key among supports of the same game.
func (s *Support) Key() string {
	var sb strings.Builder
	for pl, active := range s.active {
		if pl > 0 {
			sb.WriteByte('|')
		}
		for _, ok := range active {
			if ok {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
	}

	return sb.String()
}

// String implements fmt.Stringer.
func (s *Support) String() string {
	players := make([]string, len(s.active))
	for pl := range s.active {
		labels := make([]string, 0, s.counts[pl])
		for _, st := range s.Strategies(pl) {
			labels = append(labels, StrategyName(s.game, st))
		}
		players[pl] = "{" + strings.Join(labels, " ") + "}"
	}

	result := strings.Join(players, " ")
	if s.label != "" {
		result = fmt.Sprintf("%s: %s", s.label, result)
	}

	return result
}
