package gonash

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/timpalpant/gonash/failure"
	"github.com/timpalpant/gonash/field"
	"github.com/timpalpant/gonash/nfg"
	"github.com/timpalpant/gonash/status"
)

var precisions = []field.Precision{field.Float, field.Rational}

func optionsFor(p field.Precision) *Options {
	opts := DefaultOptions()
	opts.Precision = p
	return opts
}

func assertValid(t *testing.T, s *nfg.Support, solutions []Solution) {
	t.Helper()
	for i, sol := range solutions {
		p := sol.Profile
		assert.True(t, p.IsComplete(), "%v", p)
		assert.True(t, p.MaxRegret(s).Cmp(p.Field().Epsilon()) <= 0,
			"%v has regret %v", p, p.MaxRegret(s))
		for j := i + 1; j < len(solutions); j++ {
			assert.False(t, p.Equal(solutions[j].Profile))
		}
	}
}

func TestSolve_MatchingPennies(t *testing.T) {
	for _, p := range precisions {
		t.Run(p.String(), func(t *testing.T) {
			s := nfg.NewSupport(nfg.MatchingPennies())
			solutions, err := Solve(s, optionsFor(p))
			require.NoError(t, err)
			require.Len(t, solutions, 1)
			assert.Equal(t, LemkeHowson, solutions[0].Algorithm)

			half := field.New(p).Frac(1, 2)
			for _, st := range s.AllStrategies() {
				assert.True(t, solutions[0].Profile.Prob(st).EqualWithinEpsilon(half))
			}
		})
	}
}

func TestSolve_PrisonersDilemma(t *testing.T) {
	for _, p := range precisions {
		t.Run(p.String(), func(t *testing.T) {
			opts := optionsFor(p)
			opts.Eliminate = true
			s := nfg.NewSupport(nfg.PrisonersDilemma())
			solutions, err := Solve(s, opts)
			require.NoError(t, err)
			require.Len(t, solutions, 1)

			defect := nfg.Pure(s, field.New(p), []int{2, 2})
			assert.True(t, solutions[0].Profile.Equal(defect), "%v", solutions[0].Profile)
		})
	}
}

func TestSolve_Coordination(t *testing.T) {
	for _, p := range precisions {
		for _, enumerate := range []bool{false, true} {
			opts := optionsFor(p)
			opts.EnumerateSupports = enumerate
			s := nfg.NewSupport(nfg.Coordination())
			solutions, err := Solve(s, opts)
			require.NoError(t, err)
			assert.Len(t, solutions, 3, "precision %v, enumerate %v", p, enumerate)
			assertValid(t, s, solutions)
		}
	}
}

func TestSolve_StopAfter(t *testing.T) {
	opts := DefaultOptions()
	opts.StopAfter = 1
	s := nfg.NewSupport(nfg.Coordination())
	solutions, err := Solve(s, opts)
	require.NoError(t, err)
	require.Len(t, solutions, 1)
	assertValid(t, s, solutions)

	opts.EnumerateSupports = true
	solutions, err = Solve(s, opts)
	require.NoError(t, err)
	assert.Len(t, solutions, 1)
}

// A restricted equilibrium that is beaten by a strategy outside its
// support must not use up the StopAfter budget.
func TestSolve_StopAfter_ManyPlayers(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 40; i++ {
		s := nfg.NewSupport(nfg.RandomTable(rng, []int{3, 3, 2}, 10))
		all, err := Solve(s, optionsFor(field.Rational))
		require.NoError(t, err)

		for _, workers := range []int{1, 4} {
			opts := optionsFor(field.Rational)
			opts.StopAfter = 1
			opts.Workers = workers
			capped, err := Solve(s, opts)
			require.NoError(t, err)
			assertValid(t, s, capped)
			if len(all) == 0 {
				assert.Empty(t, capped)
				continue
			}

			require.Len(t, capped, 1, "game %d, %d workers", i, workers)
			assert.True(t, capped[0].Profile.Equal(all[0].Profile), "game %d, %d workers", i, workers)
		}
	}
}

func TestSolve_InvalidEpsilon(t *testing.T) {
	s := nfg.NewSupport(nfg.MatchingPennies())
	for _, eps := range []float64{-1e-9, math.NaN()} {
		opts := DefaultOptions()
		opts.Epsilon = eps
		_, err := Solve(s, opts)
		assert.True(t, failure.Is(err, failure.ErrInvariantViolation), "epsilon %v: %v", eps, err)
	}
}

func TestSolve_WeakDominance(t *testing.T) {
	opts := optionsFor(field.Rational)
	s := nfg.NewSupport(nfg.WeakDominance())
	solutions, err := Solve(s, opts)
	require.NoError(t, err)
	require.NotEmpty(t, solutions)
	assertValid(t, s, solutions)

	// Bottom is weakly dominated by Top only once Center is removed.
	bottom := nfg.Strategy{Player: 0, Number: 2}
	assert.False(t, IsDominated(s, bottom, false))
	restricted := s.Clone()
	require.NoError(t, restricted.RemoveStrategy(nfg.Strategy{Player: 1, Number: 3}))
	assert.True(t, IsDominated(restricted, bottom, false))
	assert.False(t, IsDominated(restricted, bottom, true))
	assert.Equal(t, 1, Undominated(restricted, []int{0}, false).NumActive(0))
}

// threePlayerPennies is matching pennies between players 0 and 1, in
// which player 2 strictly prefers their first strategy.
func threePlayerPennies() *nfg.Table {
	g := nfg.NewTable([]int{2, 2, 2})
	one, minusOne := field.New(field.Rational).Int(1), field.New(field.Rational).Int(-1)
	nfg.NewSupport(g).ForEachContingency(nil, func(profile []int) bool {
		if profile[0] == profile[1] {
			g.SetPayoff(profile, 0, one)
			g.SetPayoff(profile, 1, minusOne)
		} else {
			g.SetPayoff(profile, 0, minusOne)
			g.SetPayoff(profile, 1, one)
		}

		if profile[2] == 1 {
			g.SetPayoff(profile, 2, one)
		}
		return true
	})

	return g
}

func TestSolve_ThreePlayers(t *testing.T) {
	for _, p := range precisions {
		t.Run(p.String(), func(t *testing.T) {
			s := nfg.NewSupport(threePlayerPennies())
			solutions, err := Solve(s, optionsFor(p))
			require.NoError(t, err)
			require.Len(t, solutions, 1)
			assert.Equal(t, LemkeHowson, solutions[0].Algorithm)
			assertValid(t, s, solutions)

			eq := solutions[0].Profile
			assert.Equal(t, "1", eq.Prob(nfg.Strategy{Player: 2, Number: 1}).String())
			assert.True(t, eq.Prob(nfg.Strategy{Player: 0, Number: 1}).EqualWithinEpsilon(field.New(p).Frac(1, 2)))
		})
	}
}

func TestSolve_ThreePlayersPure(t *testing.T) {
	// Every player gets 1 if all choose the same strategy.
	g := nfg.NewTable([]int{2, 2, 2})
	one := field.New(field.Rational).One()
	for st := 1; st <= 2; st++ {
		for pl := 0; pl < 3; pl++ {
			g.SetPayoff([]int{st, st, st}, pl, one)
		}
	}

	s := nfg.NewSupport(g)
	solutions, err := Solve(s, optionsFor(field.Rational))
	require.NoError(t, err)
	assertValid(t, s, solutions)

	var pure int
	for _, sol := range solutions {
		if sol.Algorithm == PureStrategies {
			pure++
		}
	}
	assert.GreaterOrEqual(t, pure, 2)
}

func TestSolve_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	g := nfg.RandomTable(rng, []int{3, 3}, 100)
	s := nfg.NewSupport(g)

	for _, enumerate := range []bool{false, true} {
		opts := optionsFor(field.Rational)
		opts.EnumerateSupports = enumerate
		first, err := Solve(s, opts)
		require.NoError(t, err)
		assertValid(t, s, first)

		opts.Workers = 4
		second, err := Solve(s, opts)
		require.NoError(t, err)
		require.Len(t, second, len(first))
		for i := range first {
			assert.True(t, first[i].Profile.Equal(second[i].Profile))
			assert.Equal(t, first[i].Algorithm, second[i].Algorithm)
		}
	}
}

func TestSolve_Random(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 10; i++ {
		s := nfg.NewSupport(nfg.RandomTable(rng, []int{2, 3, 2}, 10))
		for _, p := range precisions {
			solutions, err := Solve(s, optionsFor(p))
			require.NoError(t, err)
			assertValid(t, s, solutions)
		}
	}
}

func TestSolve_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := DefaultOptions()
	opts.Status = status.FromContext(ctx)
	solutions, err := Solve(nfg.NewSupport(nfg.Coordination()), opts)
	assert.NoError(t, err)
	assert.Empty(t, solutions)
}

func TestSolve_SingleStrategies(t *testing.T) {
	g := nfg.NewTable([]int{1, 1})
	solutions, err := Solve(nfg.NewSupport(g), optionsFor(field.Rational))
	require.NoError(t, err)
	require.Len(t, solutions, 1)
	assert.Equal(t, "1", solutions[0].Profile.Prob(nfg.Strategy{Player: 0, Number: 1}).String())
}
