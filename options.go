package gonash

import (
	"math"

	"github.com/timpalpant/gonash/failure"
	"github.com/timpalpant/gonash/field"
	"github.com/timpalpant/gonash/status"
	"github.com/timpalpant/gonash/tableau"
)

// Options controls Solve.
type Options struct {
	// Precision selects floating point or exact rational arithmetic.
	Precision field.Precision
	// Epsilon is the comparison tolerance of floating point arithmetic,
	// and the largest regret a solution may have. It is ignored in
	// rational precision, where solutions must have zero regret.
	Epsilon float64
	// Strong selects strict rather than weak dominance when Eliminate
	// is set.
	Strong bool
	// Mixed enables domination by mixed strategies during elimination
	// and support enumeration.
	Mixed bool
	// Eliminate iteratively removes dominated strategies before solving.
	Eliminate bool
	// StopAfter is the number of equilibria after which to stop. Zero
	// means find all that can be found.
	StopAfter int
	// MaxDepth bounds the recursion of the exhaustive Lemke-Howson
	// search. Zero means 10 times the number of strategies.
	MaxDepth int
	// MaxPivots bounds the length of a single Lemke-Howson path. Zero
	// means 1000 times the number of strategies.
	MaxPivots int
	// RefactorEvery is the number of pivots between LU refactorizations.
	RefactorEvery int
	// EnumerateSupports solves two-player games by running Lemke-Howson
	// on each possible equilibrium support instead of the whole game.
	// Games with more than two players are always solved this way.
	EnumerateSupports bool
	// Workers is the number of supports solved concurrently.
	Workers int
	// Status is polled for cancellation and receives progress reports.
	Status status.Status
}

func DefaultOptions() *Options {
	return &Options{
		Precision:     field.Float,
		Epsilon:       field.DefaultEpsilon,
		Strong:        true,
		RefactorEvery: tableau.DefaultRefactorEvery,
		Workers:       1,
		Status:        status.Null,
	}
}

// Validate checks that the options describe a search that can be run.
func (o *Options) Validate() error {
	if o.Epsilon < 0 || math.IsNaN(o.Epsilon) {
		return failure.Invariantf("invalid epsilon: %v", o.Epsilon)
	}

	return nil
}

func (o *Options) field() *field.Field {
	return field.NewWithEpsilon(o.Precision, o.Epsilon)
}
