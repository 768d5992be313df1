package nfg

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/timpalpant/gonash/failure"
	"github.com/timpalpant/gonash/field"
)

// Profile is a mixed strategy profile on a Support: one probability
// per active strategy of every player. Strategies outside the support
// always have probability zero.
type Profile struct {
	support *Support
	field   *field.Field
	// probs[pl][number-1], for every strategy of the game.
	probs [][]field.Number
}

// NewProfile returns a profile on s in which every probability is zero.
func NewProfile(s *Support, f *field.Field) *Profile {
	g := s.Game()
	p := &Profile{
		support: s.Clone(),
		field:   f,
		probs:   make([][]field.Number, g.NumPlayers()),
	}

	zero := f.Zero()
	for pl := range p.probs {
		p.probs[pl] = make([]field.Number, g.NumStrategies(pl))
		for i := range p.probs[pl] {
			p.probs[pl][i] = zero
		}
	}

	return p
}

// Centroid returns the profile in which every player mixes uniformly
// over their active strategies.
func Centroid(s *Support, f *field.Field) *Profile {
	p := NewProfile(s, f)
	for pl := range p.probs {
		w := f.Frac(1, int64(s.NumActive(pl)))
		for _, st := range s.Strategies(pl) {
			p.probs[pl][st.Number-1] = w
		}
	}

	return p
}

// Pure returns the profile in which player pl plays profile[pl] with
// probability one.
func Pure(s *Support, f *field.Field, profile []int) *Profile {
	p := NewProfile(s, f)
	for pl, st := range profile {
		p.probs[pl][st-1] = f.One()
	}

	return p
}

func (p *Profile) Support() *Support {
	return p.support
}

func (p *Profile) Field() *field.Field {
	return p.field
}

func (p *Profile) Game() Game {
	return p.support.Game()
}

// Prob returns the probability assigned to st.
func (p *Profile) Prob(st Strategy) field.Number {
	return p.probs[st.Player][st.Number-1]
}

// SetProb assigns a probability to an active strategy.
func (p *Profile) SetProb(st Strategy, v field.Number) error {
	if !p.support.Contains(st) {
		return errors.Wrapf(failure.ErrInvariantViolation,
			"cannot assign probability to inactive strategy %v", st)
	}

	p.probs[st.Player][st.Number-1] = p.field.Convert(v)
	return nil
}

// Probs returns player pl's probabilities for every strategy of the game.
func (p *Profile) Probs(pl int) []field.Number {
	result := make([]field.Number, len(p.probs[pl]))
	copy(result, p.probs[pl])
	return result
}

// expectedPayoff returns the payoff to player pl when every player
// except deviator mixes according to p, and deviator (if >= 0) plays
// pure strategy number.
func (p *Profile) expectedPayoff(pl, deviator, number int) field.Number {
	var fixed *Strategy
	if deviator >= 0 {
		fixed = &Strategy{Player: deviator, Number: number}
	}

	g := p.Game()
	total := p.field.Zero()
	p.support.ForEachContingency(fixed, func(profile []int) bool {
		w := p.field.One()
		for q, st := range profile {
			if q == deviator {
				continue
			}

			prob := p.probs[q][st-1]
			if prob.IsZero() {
				return true
			}
			w = w.Mul(prob)
		}

		total = total.Add(w.Mul(p.field.Convert(g.Payoff(profile, pl))))
		return true
	})

	return total
}

// Payoff returns the expected payoff to player pl.
func (p *Profile) Payoff(pl int) field.Number {
	return p.expectedPayoff(pl, -1, 0)
}

// StrategyValue returns the expected payoff to st.Player from playing
// st while every other player mixes according to p. st need not be
// active in the support.
func (p *Profile) StrategyValue(st Strategy) field.Number {
	return p.expectedPayoff(st.Player, st.Player, st.Number)
}

// Regret returns how much st.Player would gain by deviating to st.
func (p *Profile) Regret(st Strategy) field.Number {
	return p.StrategyValue(st).Sub(p.Payoff(st.Player))
}

// MaxRegret returns the largest gain any player can obtain by a
// unilateral deviation to a pure strategy active in over. If over is
// nil, every strategy of the game is considered. The result is never
// negative.
func (p *Profile) MaxRegret(over *Support) field.Number {
	if over == nil {
		over = NewSupport(p.Game())
	}

	best := p.field.Zero()
	for pl := 0; pl < over.NumPlayers(); pl++ {
		payoff := p.Payoff(pl)
		for _, st := range over.Strategies(pl) {
			if r := p.StrategyValue(st).Sub(payoff); r.Cmp(best) > 0 {
				best = r
			}
		}
	}

	return best
}

// LiapValue is the Lyapunov function of p: the sum of squared positive
// regrets, plus penalties for negative probabilities and for players
// whose probabilities do not sum to one. It is zero exactly at a Nash
// equilibrium.
func (p *Profile) LiapValue() field.Number {
	total := p.field.Zero()
	for pl := range p.probs {
		payoff := p.Payoff(pl)
		sum := p.field.Zero()
		for i, prob := range p.probs[pl] {
			sum = sum.Add(prob)
			if prob.Sign() < 0 {
				total = total.Add(prob.Mul(prob))
			}

			st := Strategy{Player: pl, Number: i + 1}
			if r := p.StrategyValue(st).Sub(payoff); r.Sign() > 0 {
				total = total.Add(r.Mul(r))
			}
		}

		excess := sum.Sub(p.field.One())
		total = total.Add(excess.Mul(excess))
	}

	return total
}

// IsComplete returns whether every player's probabilities are
// non-negative and sum to one.
func (p *Profile) IsComplete() bool {
	for pl := range p.probs {
		sum := p.field.Zero()
		for _, prob := range p.probs[pl] {
			if prob.Sign() < 0 {
				return false
			}
			sum = sum.Add(prob)
		}

		if !sum.EqualWithinEpsilon(p.field.One()) {
			return false
		}
	}

	return true
}

// IsNash returns whether p is a complete profile from which no player
// can gain by deviating to a strategy active in over (nil for the
// whole game).
func (p *Profile) IsNash(over *Support) bool {
	return p.IsComplete() && p.MaxRegret(over).Sign() <= 0
}

// Equal returns whether both profiles are on the same game and assign
// the same probability to every strategy.
func (p *Profile) Equal(other *Profile) bool {
	if p.Game() != other.Game() {
		return false
	}

	for pl := range p.probs {
		for i, prob := range p.probs[pl] {
			if prob.Cmp(other.probs[pl][i]) != 0 {
				return false
			}
		}
	}

	return true
}

// Clone returns an independent copy of p.
func (p *Profile) Clone() *Profile {
	c := &Profile{
		support: p.support.Clone(),
		field:   p.field,
		probs:   make([][]field.Number, len(p.probs)),
	}

	for pl := range p.probs {
		c.probs[pl] = make([]field.Number, len(p.probs[pl]))
		copy(c.probs[pl], p.probs[pl])
	}

	return c
}

// String formats the probabilities of every strategy of the game,
// player by player.
func (p *Profile) String() string {
	players := make([]string, len(p.probs))
	for pl, probs := range p.probs {
		values := make([]string, len(probs))
		for i, prob := range probs {
			values[i] = prob.String()
		}
		players[pl] = "[" + strings.Join(values, " ") + "]"
	}

	return strings.Join(players, " ")
}
