package lcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/timpalpant/gonash/failure"
	"github.com/timpalpant/gonash/field"
	"github.com/timpalpant/gonash/matrixgame"
	"github.com/timpalpant/gonash/nfg"
	"github.com/timpalpant/gonash/status"
)

var precisions = []field.Precision{field.Float, field.Rational}

func TestLemkeTableau_Labels(t *testing.T) {
	f := field.New(field.Rational)
	b, err := matrixgame.FromSupport(nfg.NewSupport(nfg.Coordination()), f)
	require.NoError(t, err)
	lt, err := NewLemkeTableau(b, 0)
	require.NoError(t, err)

	assert.Equal(t, 4, lt.NumLabels())
	assert.Equal(t, 8, lt.NumCols())
	assert.Equal(t, 5, lt.Complement(1))
	assert.Equal(t, 1, lt.Complement(5))
	assert.Equal(t, 2, lt.Label(6))
	assert.True(t, lt.IsArtificial())
	assert.True(t, lt.IsComplementary())
	assert.Equal(t, -1, lt.ComplementaryLabelMissing(-1))
	assert.Equal(t, "4,5,6,7", lt.BFS().Key())
}

func TestLemkeTableau_Path(t *testing.T) {
	f := field.New(field.Rational)
	b, err := matrixgame.FromSupport(nfg.NewSupport(nfg.MatchingPennies()), f)
	require.NoError(t, err)
	lt, err := NewLemkeTableau(b, 0)
	require.NoError(t, err)

	// Entering x_0 drives out a slack of the column player's rows, after
	// which exactly one pair is entirely non-basic.
	left, _, err := lt.Pivot(0)
	require.NoError(t, err)
	assert.False(t, lt.IsComplementary())
	next := lt.ComplementaryLabelMissing(left)
	assert.Equal(t, lt.Complement(left), next)
}

func TestSolve_MatchingPennies(t *testing.T) {
	for _, p := range precisions {
		t.Run(p.String(), func(t *testing.T) {
			f := field.New(p)
			s := nfg.NewSupport(nfg.MatchingPennies())
			profiles, err := Solve(s, f, DefaultOptions())
			require.NoError(t, err)
			require.Len(t, profiles, 1)

			eq := profiles[0]
			half := f.Frac(1, 2)
			for _, st := range s.AllStrategies() {
				assert.True(t, eq.Prob(st).EqualWithinEpsilon(half), "%v: %v", st, eq.Prob(st))
			}
			assert.True(t, eq.IsNash(nil))
		})
	}
}

func TestSolve_Coordination(t *testing.T) {
	for _, p := range precisions {
		t.Run(p.String(), func(t *testing.T) {
			f := field.New(p)
			profiles, err := Solve(nfg.NewSupport(nfg.Coordination()), f, DefaultOptions())
			require.NoError(t, err)
			require.Len(t, profiles, 3)
			for _, eq := range profiles {
				assert.True(t, eq.IsNash(nil), "%v", eq)
			}

			for i := range profiles {
				for j := i + 1; j < len(profiles); j++ {
					assert.False(t, profiles[i].Equal(profiles[j]))
				}
			}
		})
	}
}

func TestSolve_Coordination_Rational(t *testing.T) {
	f := field.New(field.Rational)
	profiles, err := Solve(nfg.NewSupport(nfg.Coordination()), f, DefaultOptions())
	require.NoError(t, err)

	var mixed *nfg.Profile
	for _, eq := range profiles {
		if !eq.Prob(nfg.Strategy{Player: 0, Number: 1}).Rat().IsInt() {
			mixed = eq
		}
	}
	require.NotNil(t, mixed)
	assert.Equal(t, "1/3", mixed.Prob(nfg.Strategy{Player: 0, Number: 1}).String())
	assert.Equal(t, "2/3", mixed.Prob(nfg.Strategy{Player: 1, Number: 2}).String())
	assert.Equal(t, "2/3", mixed.Payoff(0).String())
}

func TestSolve_PrisonersDilemma(t *testing.T) {
	f := field.New(field.Rational)
	profiles, err := Solve(nfg.NewSupport(nfg.PrisonersDilemma()), f, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, profiles, 1)

	defect := []int{2, 2}
	assert.True(t, profiles[0].Equal(nfg.Pure(nfg.NewSupport(nfg.PrisonersDilemma()), f, defect)))
}

func TestSolve_SingleStrategies(t *testing.T) {
	f := field.New(field.Rational)
	s := nfg.NewSupport(nfg.PrisonersDilemma())
	require.NoError(t, s.RemoveStrategy(nfg.Strategy{Player: 0, Number: 1}))
	require.NoError(t, s.RemoveStrategy(nfg.Strategy{Player: 1, Number: 1}))

	profiles, err := Solve(s, f, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "1", profiles[0].Prob(nfg.Strategy{Player: 0, Number: 2}).String())
	assert.Equal(t, "0", profiles[0].Prob(nfg.Strategy{Player: 0, Number: 1}).String())
}

func TestSolve_Single(t *testing.T) {
	f := field.New(field.Rational)
	opts := DefaultOptions()
	opts.StopAfter = 1
	for label := 0; label < 4; label++ {
		opts.Label = label
		profiles, err := Solve(nfg.NewSupport(nfg.Coordination()), f, opts)
		require.NoError(t, err)
		require.Len(t, profiles, 1)
		assert.True(t, profiles[0].IsNash(nil))
	}

	opts.Label = 4
	_, err := Solve(nfg.NewSupport(nfg.Coordination()), f, opts)
	assert.True(t, failure.Is(err, failure.ErrInvariantViolation))
}

func TestSolve_StopAfter(t *testing.T) {
	f := field.New(field.Rational)
	opts := DefaultOptions()
	opts.StopAfter = 2
	profiles, err := Solve(nfg.NewSupport(nfg.Coordination()), f, opts)
	require.NoError(t, err)
	assert.Len(t, profiles, 2)
}

func TestSolve_Degenerate(t *testing.T) {
	// The column player is indifferent everywhere, so every ratio test
	// from the artificial equilibrium entering x is tied.
	g := nfg.NewBimatrix(
		[][]int64{{1, 0}, {0, 1}},
		[][]int64{{1, 1}, {1, 1}})
	for _, p := range precisions {
		t.Run(p.String(), func(t *testing.T) {
			f := field.New(p)
			profiles, err := Solve(nfg.NewSupport(g), f, DefaultOptions())
			require.NoError(t, err)
			require.NotEmpty(t, profiles)
			for _, eq := range profiles {
				assert.True(t, eq.IsNash(nil), "%v", eq)
			}
		})
	}
}

func TestSolve_Random(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		g := nfg.RandomTable(rng, []int{3, 4}, 1000)
		for _, p := range precisions {
			f := field.New(p)
			profiles, err := Solve(nfg.NewSupport(g), f, DefaultOptions())
			require.NoError(t, err)
			require.NotEmpty(t, profiles)
			for _, eq := range profiles {
				assert.True(t, eq.IsComplete(), "%v", eq)
				assert.True(t, eq.MaxRegret(nil).Sign() <= 0, "%v has regret %v", eq, eq.MaxRegret(nil))
			}
		}
	}
}

func TestSolve_RefactorEvery(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	g := nfg.RandomTable(rng, []int{4, 4}, 1000)
	f := field.New(field.Rational)

	var counts []int
	for _, every := range []int{1, 3, 25} {
		opts := DefaultOptions()
		opts.RefactorEvery = every
		profiles, err := Solve(nfg.NewSupport(g), f, opts)
		require.NoError(t, err)
		counts = append(counts, len(profiles))
	}

	assert.Equal(t, counts[0], counts[1])
	assert.Equal(t, counts[0], counts[2])
}

func TestSolve_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := DefaultOptions()
	opts.Status = status.FromContext(ctx)
	f := field.New(field.Rational)
	profiles, err := Solve(nfg.NewSupport(nfg.Coordination()), f, opts)
	assert.True(t, failure.Is(err, failure.ErrCanceled))
	assert.Empty(t, profiles)
}

func TestSolve_MaxPivots(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxPivots = 1
	f := field.New(field.Rational)
	profiles, err := Solve(nfg.NewSupport(nfg.MatchingPennies()), f, opts)
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestBFS(t *testing.T) {
	f := field.New(field.Rational)
	a := BFS{Cols: []int{0, 3}, Values: []field.Number{f.Frac(1, 2), f.One()}}
	b := BFS{Cols: []int{0, 3}, Values: []field.Number{f.Frac(1, 2), f.One()}}
	c := BFS{Cols: []int{0, 4}, Values: []field.Number{f.Frac(1, 2), f.One()}}
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Equal(t, "0,3", a.Key())
	assert.Equal(t, "{0=1/2 3=1}", a.String())
}
