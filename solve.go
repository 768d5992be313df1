// Package gonash computes Nash equilibria of finite strategic-form games.
//
// Two-player games are solved by complementary pivoting along
// Lemke-Howson paths. Games with more players are solved on each
// possible equilibrium support in which at most two players mix.
package gonash

import (
	"sync"

	"github.com/golang/glog"

	"github.com/timpalpant/gonash/dominance"
	"github.com/timpalpant/gonash/enumpure"
	"github.com/timpalpant/gonash/failure"
	"github.com/timpalpant/gonash/field"
	"github.com/timpalpant/gonash/lcp"
	"github.com/timpalpant/gonash/matrixgame"
	"github.com/timpalpant/gonash/nfg"
	"github.com/timpalpant/gonash/status"
	"github.com/timpalpant/gonash/supports"
)

const (
	LemkeHowson    = "lcp"
	PureStrategies = "enumpure"
)

// Solution is an equilibrium together with the name of the algorithm
// that found it.
type Solution struct {
	Profile   *nfg.Profile
	Algorithm string
}

// Solve returns Nash equilibria of the game restricted to s. Every
// solution has regret at most the epsilon of the chosen precision
// against every strategy of s, and no two solutions are equal.
//
// If the search is canceled through opts.Status, the solutions found
// so far are returned without error. A branch of the search that runs
// into a pivot or recursion bound, or a numerical failure, yields no
// solutions; if every branch does, the result is empty.
func Solve(s *nfg.Support, opts *Options) ([]Solution, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	sv := &solver{
		opts:   opts,
		field:  opts.field(),
		status: status.OrNull(opts.Status),
		input:  s,
	}
	sv.elim = dominance.New(
		dominance.WithField(sv.field),
		dominance.WithMixed(opts.Mixed),
		dominance.WithStatus(sv.status))

	solutions, err := sv.solve()
	if failure.Is(err, failure.ErrCanceled) {
		glog.Warningf("Solve canceled, returning %d solutions", len(solutions))
		return solutions, nil
	}

	return solutions, err
}

type solver struct {
	opts   *Options
	field  *field.Field
	status status.Status
	elim   *dominance.Eliminator
	input  *nfg.Support

	solutions []Solution
}

func (sv *solver) solve() ([]Solution, error) {
	s := sv.input
	if sv.opts.Eliminate {
		reduced, rounds, err := sv.elim.Iterate(s, sv.opts.Strong)
		if err != nil {
			return nil, err
		}
		glog.V(1).Infof("Eliminated dominated strategies in %d rounds: %v", rounds, reduced)
		s = reduced
	}

	if s.NumPlayers() == 2 && !sv.opts.EnumerateSupports {
		profiles, err := sv.lemkeHowson(s)
		sv.add(profiles, LemkeHowson)
		return sv.solutions, err
	}

	candidates, err := supports.PossibleNashSubsupports(s, sv.elim)
	if err != nil {
		return nil, err
	}
	glog.Infof("Solving %d candidate supports", len(candidates))

	err = sv.solveCandidates(candidates)
	return sv.solutions, err
}

// lcpOptions returns the options of a Lemke-Howson search that stops
// after stopAfter equilibria.
func (sv *solver) lcpOptions(stopAfter int) lcp.Options {
	opts := lcp.DefaultOptions()
	opts.StopAfter = stopAfter
	opts.MaxDepth = sv.opts.MaxDepth
	opts.MaxPivots = sv.opts.MaxPivots
	if sv.opts.RefactorEvery > 0 {
		opts.RefactorEvery = sv.opts.RefactorEvery
	}
	opts.Status = sv.status
	return opts
}

func (sv *solver) lemkeHowson(s *nfg.Support) ([]*nfg.Profile, error) {
	b, err := matrixgame.FromSupport(s, sv.field)
	if err != nil {
		return nil, err
	}

	return lcp.NewSolver(sv.lcpOptions(sv.opts.StopAfter)).Solve(b)
}

type candidateResult struct {
	profiles  []*nfg.Profile
	algorithm string
}

// solveCandidates solves each support, in Workers goroutines, and adds
// the equilibria found in the order of the supports. Only verified
// equilibria count toward StopAfter. On error the equilibria of the
// supports solved so far are kept.
func (sv *solver) solveCandidates(candidates []*nfg.Support) error {
	workers := sv.opts.Workers
	if workers <= 1 {
		for i, c := range candidates {
			if sv.full() {
				return nil
			}

			sv.status.ReportProgress(float64(i)/float64(len(candidates)), "solving "+c.String())
			result, err := sv.solveCandidate(c)
			sv.add(result.profiles, result.algorithm)
			if err != nil {
				return err
			}
		}

		return nil
	}

	results := make([]candidateResult, len(candidates))

	var wg sync.WaitGroup
	var mu sync.Mutex
	sem := make(chan struct{}, workers)
	var retErr error
	for i, c := range candidates {
		sem <- struct{}{}
		wg.Add(1)
		go func(i int, c *nfg.Support) {
			defer func() { <-sem }()
			defer wg.Done()

			result, err := sv.solveCandidate(c)
			mu.Lock()
			defer mu.Unlock()
			results[i] = result
			if err != nil && retErr == nil {
				retErr = err
			}
		}(i, c)
	}

	wg.Wait()
	for _, r := range results {
		sv.add(r.profiles, r.algorithm)
	}

	return retErr
}

// solveCandidate finds the equilibria of a support on which at most two
// players mix, with every other player held to their single active
// strategy.
func (sv *solver) solveCandidate(c *nfg.Support) (candidateResult, error) {
	var mixing []int
	for pl := 0; pl < c.NumPlayers(); pl++ {
		if c.NumActive(pl) > 1 {
			mixing = append(mixing, pl)
		}
	}

	switch {
	case len(mixing) == 0 || c.NumPlayers() == 1:
		profiles, err := enumpure.Solve(c, sv.field, sv.status)
		return candidateResult{profiles, PureStrategies}, err
	case len(mixing) > 2:
		glog.V(1).Infof("Skipping %v: %d players mix", c, len(mixing))
		return candidateResult{}, nil
	}

	row, col := mixing[0], -1
	if len(mixing) == 2 {
		col = mixing[1]
	} else {
		for pl := 0; pl < c.NumPlayers(); pl++ {
			if pl != row {
				col = pl
				break
			}
		}
	}

	fixed := make([]int, c.NumPlayers())
	for pl := range fixed {
		fixed[pl] = c.Numbers(pl)[0]
	}

	b, err := matrixgame.Restrict(c, sv.field, row, col, fixed)
	if err != nil {
		return candidateResult{}, err
	}

	// A profile of the restricted game may still be beaten by a strategy
	// outside c, so the search is not capped here.
	profiles, err := lcp.NewSolver(sv.lcpOptions(0)).Solve(b)
	return candidateResult{profiles, LemkeHowson}, err
}

func (sv *solver) full() bool {
	return sv.opts.StopAfter > 0 && len(sv.solutions) >= sv.opts.StopAfter
}

// add verifies each profile against the input support and appends
// those that are new equilibria, up to StopAfter.
func (sv *solver) add(profiles []*nfg.Profile, algorithm string) {
	eps := sv.field.Epsilon()
	for _, p := range profiles {
		if sv.full() {
			return
		}

		if !p.IsComplete() {
			glog.Warningf("Discarding incomplete profile %v", p)
			continue
		}

		if regret := p.MaxRegret(sv.input); regret.Cmp(eps) > 0 {
			glog.Warningf("Discarding %v with regret %v", p, regret)
			continue
		}

		duplicate := false
		for _, existing := range sv.solutions {
			if existing.Profile.Equal(p) {
				duplicate = true
				break
			}
		}

		if !duplicate {
			sv.solutions = append(sv.solutions, Solution{Profile: p, Algorithm: algorithm})
		}
	}
}

// IsDominated returns whether st is dominated in s by another active
// strategy of its player, in exact arithmetic.
func IsDominated(s *nfg.Support, st nfg.Strategy, strong bool) bool {
	return dominance.IsDominated(s, st, strong)
}

// Undominated returns a copy of s without the strategies of players
// that are dominated, removed in a single pass. If players is empty,
// every player is considered.
func Undominated(s *nfg.Support, players []int, strong bool) *nfg.Support {
	return dominance.Undominated(s, players, strong)
}
