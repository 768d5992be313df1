package nfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timpalpant/gonash/failure"
	"github.com/timpalpant/gonash/field"
)

func TestCentroid_MatchingPennies(t *testing.T) {
	for _, p := range []field.Precision{field.Float, field.Rational} {
		t.Run(p.String(), func(t *testing.T) {
			f := field.New(p)
			s := NewSupport(MatchingPennies())
			profile := Centroid(s, f)

			assert.True(t, profile.IsComplete())
			assert.True(t, profile.IsNash(nil))
			assert.True(t, profile.Payoff(0).IsZero())
			assert.True(t, profile.MaxRegret(nil).IsZero())
			assert.True(t, profile.LiapValue().IsZero())
			assert.Equal(t, 0, profile.Prob(Strategy{0, 1}).Cmp(f.Frac(1, 2)))
		})
	}
}

func TestProfile_Regret(t *testing.T) {
	f := field.New(field.Rational)
	s := NewSupport(PrisonersDilemma())
	// Both cooperate.
	profile := Pure(s, f, []int{1, 1})

	assert.Equal(t, "3", profile.Payoff(0).String())
	assert.Equal(t, "5", profile.StrategyValue(Strategy{0, 2}).String())
	assert.Equal(t, "2", profile.Regret(Strategy{0, 2}).String())
	assert.Equal(t, "2", profile.MaxRegret(nil).String())
	assert.False(t, profile.IsNash(nil))
	// Two players each regret 2.
	assert.Equal(t, "8", profile.LiapValue().String())

	defect := Pure(s, f, []int{2, 2})
	assert.True(t, defect.IsNash(nil))
	assert.False(t, defect.Equal(profile))
}

func TestProfile_MaxRegretOverSupport(t *testing.T) {
	f := field.New(field.Rational)
	g := PrisonersDilemma()
	small := NewSupport(g)
	require.NoError(t, small.RemoveStrategy(Strategy{0, 2}))
	require.NoError(t, small.RemoveStrategy(Strategy{1, 2}))

	profile := Pure(small, f, []int{1, 1})
	// No deviation is possible within the restricted support.
	assert.True(t, profile.IsNash(small))
	assert.False(t, profile.IsNash(nil))
}

func TestProfile_SetProb(t *testing.T) {
	f := field.New(field.Float)
	s := NewSupport(Coordination())
	require.NoError(t, s.RemoveStrategy(Strategy{1, 2}))

	profile := NewProfile(s, f)
	assert.False(t, profile.IsComplete())

	require.NoError(t, profile.SetProb(Strategy{0, 1}, f.Frac(1, 3)))
	require.NoError(t, profile.SetProb(Strategy{0, 2}, f.Frac(2, 3)))
	require.NoError(t, profile.SetProb(Strategy{1, 1}, f.One()))
	assert.True(t, profile.IsComplete())

	err := profile.SetProb(Strategy{1, 2}, f.One())
	assert.True(t, failure.Is(err, failure.ErrInvariantViolation), "got %v", err)

	c := profile.Clone()
	assert.True(t, c.Equal(profile))
	require.NoError(t, c.SetProb(Strategy{0, 1}, f.Zero()))
	assert.False(t, c.Equal(profile))
	assert.Equal(t, "[0.3333333333333333 0.6666666666666666] [1 0]", profile.String())
}

func TestCoordination_MixedEquilibrium(t *testing.T) {
	f := field.New(field.Rational)
	s := NewSupport(Coordination())
	profile := NewProfile(s, f)
	for pl := 0; pl < 2; pl++ {
		require.NoError(t, profile.SetProb(Strategy{pl, 1}, f.Frac(1, 3)))
		require.NoError(t, profile.SetProb(Strategy{pl, 2}, f.Frac(2, 3)))
	}

	assert.True(t, profile.IsNash(nil))
	assert.Equal(t, "2/3", profile.Payoff(0).String())
}
