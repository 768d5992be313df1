// Package dominance tests strategies for strict and weak dominance by
// pure strategies or mixtures, and removes dominated strategies from
// supports.
package dominance

import (
	"sync"

	"github.com/golang/glog"

	"github.com/timpalpant/gonash/failure"
	"github.com/timpalpant/gonash/field"
	"github.com/timpalpant/gonash/lp"
	"github.com/timpalpant/gonash/nfg"
	"github.com/timpalpant/gonash/status"
)

// Option configures an Eliminator.
type Option func(*Eliminator)

// WithMixed enables domination by mixtures of the player's other
// active strategies, which requires solving a linear program per test.
func WithMixed(mixed bool) Option {
	return func(e *Eliminator) {
		e.mixed = mixed
	}
}

// WithField sets the numeric field in which payoffs are compared.
func WithField(f *field.Field) Option {
	return func(e *Eliminator) {
		e.field = f
	}
}

// WithStatus sets the sink polled before every dominance test.
func WithStatus(s status.Status) Option {
	return func(e *Eliminator) {
		e.status = status.OrNull(s)
	}
}

// WithPayoffCache memoizes up to size payoff contingencies of each game.
func WithPayoffCache(size int) Option {
	return func(e *Eliminator) {
		e.cacheSize = size
	}
}

// WithSolver overrides the LP solver used for mixed dominance, which by
// default is chosen to match the field.
func WithSolver(solver lp.Solver) Option {
	return func(e *Eliminator) {
		e.solver = solver
	}
}

// Eliminator performs dominance tests. It is safe for concurrent use.
type Eliminator struct {
	mixed     bool
	field     *field.Field
	status    status.Status
	cacheSize int
	solver    lp.Solver

	mu     sync.Mutex
	cached *nfg.CachedGame
}

// New returns an Eliminator testing pure strategy dominance in a
// rational field, unless configured otherwise.
func New(opts ...Option) *Eliminator {
	e := &Eliminator{
		field:  field.New(field.Rational),
		status: status.Null,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.solver == nil {
		e.solver = lp.ForField(e.field)
	}

	return e
}

func (e *Eliminator) Field() *field.Field {
	return e.field
}

func (e *Eliminator) Mixed() bool {
	return e.mixed
}

// payoffs returns the game to query for payoffs of g.
func (e *Eliminator) payoffs(g nfg.Game) nfg.Game {
	if e.cacheSize <= 0 {
		return g
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cached == nil || e.cached.Unwrap() != g {
		e.cached = nfg.NewCachedGame(g, e.cacheSize)
	}

	return e.cached
}

// payoffVector returns the payoffs to st.Player from playing st against
// each opponent contingency, in the order of contingencies.
func (e *Eliminator) payoffVector(g nfg.Game, contingencies [][]int, st nfg.Strategy) []field.Number {
	result := make([]field.Number, len(contingencies))
	for i, c := range contingencies {
		c[st.Player] = st.Number
		result[i] = e.field.Convert(g.Payoff(c, st.Player))
	}

	return result
}

// Dominates returns whether a dominates b (both strategies of the same
// player) against every active contingency of the other players in s.
// Strong dominance requires a to be strictly better everywhere; weak
// dominance requires a to be at least as good everywhere and strictly
// better somewhere.
func (e *Eliminator) Dominates(s *nfg.Support, a, b nfg.Strategy, strong bool) bool {
	if a.Player != b.Player {
		panic(failure.Invariantf("%v and %v belong to different players", a, b))
	}

	g := e.payoffs(s.Game())
	contingencies := s.OpponentContingencies(a.Player)
	return dominatesVector(e.payoffVector(g, contingencies, a),
		e.payoffVector(g, contingencies, b), strong)
}

func dominatesVector(ua, ub []field.Number, strong bool) bool {
	strict := false
	for i := range ua {
		switch ua[i].Cmp(ub[i]) {
		case -1:
			return false
		case 0:
			if strong {
				return false
			}
		case 1:
			strict = true
		}
	}

	return strict
}

// IsDominated returns whether st is dominated in s by another active
// strategy of its player or, if mixed dominance is enabled, by a mixture
// of them. A player with a single active strategy is never dominated.
// The only error returned is cancellation by the status sink.
func (e *Eliminator) IsDominated(s *nfg.Support, st nfg.Strategy, strong bool) (bool, error) {
	if err := e.status.Poll(); err != nil {
		return false, err
	}

	if s.NumActive(st.Player) <= 1 {
		return false, nil
	}

	g := e.payoffs(s.Game())
	contingencies := s.OpponentContingencies(st.Player)
	target := e.payoffVector(g, contingencies, st)
	candidates := make([][]field.Number, 0, s.NumActive(st.Player)-1)
	for _, other := range s.Strategies(st.Player) {
		if other == st {
			continue
		}

		u := e.payoffVector(g, contingencies, other)
		if dominatesVector(u, target, strong) {
			glog.V(2).Infof("%v is dominated by %v", st, other)
			return true, nil
		}
		candidates = append(candidates, u)
	}

	if !e.mixed || len(candidates) < 2 {
		return false, nil
	}

	dominated, err := e.mixedDominated(candidates, target, strong)
	if err != nil {
		// Treat the query conservatively.
		glog.Warningf("Mixed dominance test of %v failed, assuming undominated: %v", st, err)
		return false, nil
	}

	if dominated {
		glog.V(2).Infof("%v is dominated by a mixed strategy", st)
	}

	return dominated, nil
}

// mixedDominated solves, in standard form over variables
// (p_1..p_K, eps, t_1..t_C):
//
//	sum_k p_k u_k(c) - eps - t_c = target(c)  for every contingency c
//	sum_k p_k = 1
//
// For strong dominance it maximizes eps, which must be positive. For weak
// dominance eps is dropped and it maximizes the total slack sum_c t_c,
// which must be positive.
func (e *Eliminator) mixedDominated(candidates [][]field.Number, target []field.Number, strong bool) (bool, error) {
	f := e.field
	nK, nC := len(candidates), len(target)
	epsCol := -1
	nVars := nK + nC
	if strong {
		epsCol = nK
		nVars++
	}
	slackCol := nVars - nC

	zero, one := f.Zero(), f.One()
	newRow := func() []field.Number {
		row := make([]field.Number, nVars)
		for j := range row {
			row[j] = zero
		}
		return row
	}

	p := &lp.Problem{
		C: newRow(),
		A: make([][]field.Number, 0, nC+1),
		B: make([]field.Number, 0, nC+1),
	}

	for c := 0; c < nC; c++ {
		row := newRow()
		for k, u := range candidates {
			row[k] = u[c]
		}
		if strong {
			row[epsCol] = one.Neg()
		}
		row[slackCol+c] = one.Neg()
		p.A = append(p.A, row)
		p.B = append(p.B, target[c])
	}

	simplex := newRow()
	for k := 0; k < nK; k++ {
		simplex[k] = one
	}
	p.A = append(p.A, simplex)
	p.B = append(p.B, one)

	if strong {
		p.C[epsCol] = one.Neg()
	} else {
		for c := 0; c < nC; c++ {
			p.C[slackCol+c] = one.Neg()
		}
	}

	result, err := e.solver.Solve(p)
	if err != nil {
		return false, err
	}

	switch result.Status {
	case lp.Infeasible:
		return false, nil
	case lp.Unbounded:
		return false, failure.Numericalf("dominance program is unbounded")
	}

	return result.Value.Sign() < 0, nil
}

// Dominated returns the active strategies of player pl that are
// dominated in s, without removing any of them.
func (e *Eliminator) Dominated(s *nfg.Support, pl int, strong bool) ([]nfg.Strategy, error) {
	var result []nfg.Strategy
	for _, st := range s.Strategies(pl) {
		dominated, err := e.IsDominated(s, st, strong)
		if err != nil {
			return result, err
		}

		if dominated {
			result = append(result, st)
		}
	}

	return result, nil
}

// Undominated returns a copy of s from which dominated strategies of the
// given players have been removed in a single pass. Players are visited
// in the order given and their strategies in increasing order; each test
// is made against the support as reduced so far, and no player ever loses
// their last strategy. If players is empty, every player is visited.
// Players are numbered from 0.
//
// On cancellation the partially reduced support is returned together
// with the error.
func (e *Eliminator) Undominated(s *nfg.Support, players []int, strong bool) (*nfg.Support, error) {
	if len(players) == 0 {
		players = make([]int, s.NumPlayers())
		for pl := range players {
			players[pl] = pl
		}
	}
	for _, pl := range players {
		if pl < 0 || pl >= s.NumPlayers() {
			return nil, failure.Invariantf("player %d out of range [0, %d)", pl, s.NumPlayers())
		}
	}

	result := s.Clone()
	for i, pl := range players {
		for _, st := range s.Strategies(pl) {
			if result.NumActive(pl) <= 1 {
				break
			}

			dominated, err := e.IsDominated(result, st, strong)
			if err != nil {
				return result, err
			}

			if dominated {
				if err := result.RemoveStrategy(st); err != nil {
					return nil, err
				}
			}
		}

		e.status.ReportProgress(float64(i+1)/float64(len(players)),
			"eliminated dominated strategies of "+nfg.PlayerName(s.Game(), pl))
	}

	return result, nil
}

// Iterate applies Undominated to every player until a pass removes
// nothing, and returns the resulting support along with the number of
// passes that removed at least one strategy.
func (e *Eliminator) Iterate(s *nfg.Support, strong bool) (*nfg.Support, int, error) {
	rounds := 0
	for {
		next, err := e.Undominated(s, nil, strong)
		if err != nil {
			return next, rounds, err
		}

		if next.Equal(s) {
			return next, rounds, nil
		}

		glog.V(1).Infof("Elimination round %d: %v", rounds+1, next)
		s = next
		rounds++
	}
}

// IsDominated tests pure strategy dominance in exact arithmetic.
func IsDominated(s *nfg.Support, st nfg.Strategy, strong bool) bool {
	dominated, _ := New().IsDominated(s, st, strong)
	return dominated
}

// Undominated removes pure-dominated strategies of the given players in
// exact arithmetic, as Eliminator.Undominated. It returns nil if a player
// is out of range.
func Undominated(s *nfg.Support, players []int, strong bool) *nfg.Support {
	result, _ := New().Undominated(s, players, strong)
	return result
}

// MixedUndominated removes strategies dominated by mixtures, as
// Eliminator.Undominated with mixed dominance enabled.
func MixedUndominated(s *nfg.Support, players []int, strong bool, f *field.Field) *nfg.Support {
	result, _ := New(WithMixed(true), WithField(f)).Undominated(s, players, strong)
	return result
}
