// Package lcp finds Nash equilibria of bimatrix games by complementary
// pivoting along Lemke-Howson paths.
package lcp

import (
	"expvar"
	"strconv"
	"strings"

	"github.com/golang/glog"

	"github.com/timpalpant/gonash/failure"
	"github.com/timpalpant/gonash/field"
	"github.com/timpalpant/gonash/matrixgame"
	"github.com/timpalpant/gonash/nfg"
	"github.com/timpalpant/gonash/status"
	"github.com/timpalpant/gonash/tableau"
)

var (
	pivotsCounter    = expvar.NewInt("lcp_pivots")
	pathsCounter     = expvar.NewInt("lcp_paths")
	abandonedCounter = expvar.NewInt("lcp_abandoned_branches")
	solutionsCounter = expvar.NewInt("lcp_equilibria")
)

type Options struct {
	// StopAfter is the number of equilibria after which the search
	// stops. Zero means find all reachable equilibria. With StopAfter
	// equal to one, a single path is followed from the artificial
	// equilibrium with the missing label Label.
	StopAfter int
	// Label is the missing label of the single path: labels 0..m-1 are
	// the row strategies and m..m+n-1 the column strategies.
	Label int
	// MaxDepth bounds the number of hops between equilibria plus the
	// number of forks at degenerate ratio tests. Zero means 10*(m+n).
	MaxDepth int
	// MaxPivots bounds the number of pivots on a single path. Zero
	// means 1000*(m+n).
	MaxPivots int
	// RefactorEvery is the number of pivots between refactorizations.
	RefactorEvery int
	Status        status.Status
}

func DefaultOptions() Options {
	return Options{
		RefactorEvery: tableau.DefaultRefactorEvery,
		Status:        status.Null,
	}
}

// Solver enumerates the equilibria of bimatrix games.
type Solver struct {
	opts Options
}

func NewSolver(opts Options) *Solver {
	opts.Status = status.OrNull(opts.Status)
	if opts.RefactorEvery <= 0 {
		opts.RefactorEvery = tableau.DefaultRefactorEvery
	}

	return &Solver{opts}
}

// Solve returns the equilibria of b found by complementary pivoting, in
// the order they were reached. Each is returned once. If the search is
// canceled, the equilibria found so far are returned together with an
// error wrapping failure.ErrCanceled.
func (s *Solver) Solve(b *matrixgame.Bimatrix) ([]*nfg.Profile, error) {
	m, n := b.Dims()
	r := &run{
		opts:      s.opts,
		bimatrix:  b,
		status:    s.opts.Status,
		maxDepth:  s.opts.MaxDepth,
		maxPivots: s.opts.MaxPivots,
		visited:   make(map[string]bool),
		seen:      make(map[string]bool),
	}
	if r.maxDepth <= 0 {
		r.maxDepth = 10 * (m + n)
	}
	if r.maxPivots <= 0 {
		r.maxPivots = 1000 * (m + n)
	}

	start, err := NewLemkeTableau(b, s.opts.RefactorEvery)
	if err != nil {
		return nil, err
	}
	r.visited[start.BFS().Key()] = true

	if s.opts.StopAfter == 1 {
		err = r.single(start, s.opts.Label)
	} else {
		err = r.explore(start, 0)
	}

	glog.V(1).Infof("Found %d equilibria of %dx%d bimatrix", len(r.results), m, n)
	return r.results, err
}

type run struct {
	opts      Options
	bimatrix  *matrixgame.Bimatrix
	status    status.Status
	maxDepth  int
	maxPivots int

	// visited holds the BFS keys of equilibria already explored.
	visited map[string]bool
	// seen holds the states (missing label, entering column and basis)
	// from which a forking walk has already continued.
	seen map[string]bool

	results []*nfg.Profile
}

func (r *run) full() bool {
	return r.opts.StopAfter > 0 && len(r.results) >= r.opts.StopAfter
}

func (r *run) single(start *LemkeTableau, label int) error {
	if label < 0 || label >= start.NumLabels() {
		return failure.Invariantf("label %d out of range [0, %d)", label, start.NumLabels())
	}

	pathsCounter.Add(1)
	err := r.walk(start.Clone(), label, label, 0, 0, false, func(end *LemkeTableau) error {
		return r.record(end)
	})
	return r.recover(err)
}

// explore follows the path dropping each label in turn from the
// equilibrium at t, and recursively explores every new equilibrium
// reached.
func (r *run) explore(t *LemkeTableau, depth int) error {
	N := t.NumLabels()
	for label := 0; label < N; label++ {
		if r.full() {
			return nil
		}
		if depth == 0 {
			r.status.ReportProgress(float64(label)/float64(N), "lemke-howson")
		}

		enter := label
		if t.Basis().IsBasic(label) {
			enter = t.Complement(label)
		}

		pathsCounter.Add(1)
		err := r.walk(t.Clone(), label, enter, 0, depth, true, func(end *LemkeTableau) error {
			if end.IsArtificial() {
				return nil
			}

			key := end.BFS().Key()
			if r.visited[key] {
				return nil
			}
			r.visited[key] = true

			if err := r.record(end); err != nil {
				return err
			}

			if depth+1 > r.maxDepth {
				abandonedCounter.Add(1)
				glog.V(1).Infof("Not exploring from %v: depth %d exceeds %d", key, depth+1, r.maxDepth)
				return nil
			}

			return r.explore(end, depth+1)
		})
		if err := r.recover(err); err != nil {
			return err
		}
	}

	return nil
}

// walk pivots along the almost complementary path that has label
// missing, starting by entering column enter. found is called with the
// tableau at the end of the path. Among rows tied in the ratio test, one
// whose basic column carries the missing label is preferred over the
// smallest basic column, so a path that can end does. When fork is set
// and no tied row ends the path, every tied row is followed on its own
// copy of the tableau.
func (r *run) walk(t *LemkeTableau, label, enter, pivots, depth int, fork bool, found func(*LemkeTableau) error) error {
	for {
		if err := r.status.Poll(); err != nil {
			return err
		}
		if r.full() {
			return nil
		}
		if pivots >= r.maxPivots {
			return failure.DidNotTerminatef("path with label %d exceeded %d pivots", label, r.maxPivots)
		}

		if fork {
			key := stateKey(t, label, enter)
			if r.seen[key] {
				return nil
			}
			r.seen[key] = true
		}

		rows, _, err := t.MinRatioRows(enter)
		if err != nil {
			return err
		}

		rows = sortedRows(t, rows, label)
		basis := t.Basis()
		if len(rows) > 1 && (!fork || t.Label(basis.Col(rows[0])) == label) {
			rows = rows[:1]
		}

		for _, row := range rows[1:] {
			if depth+1 > r.maxDepth {
				abandonedCounter.Add(1)
				glog.V(2).Infof("Not forking on row %d: depth %d exceeds %d", row, depth+1, r.maxDepth)
				continue
			}

			branch := t.Clone()
			next, done, err := step(branch, row, enter, label)
			if err != nil {
				if err := r.recover(err); err != nil {
					return err
				}
				continue
			}

			if done {
				err = found(branch)
			} else {
				err = r.walk(branch, label, next, pivots+1, depth+1, fork, found)
			}
			if err := r.recover(err); err != nil {
				return err
			}
		}

		next, done, err := step(t, rows[0], enter, label)
		if err != nil {
			return err
		}
		pivots++

		if done {
			return found(t)
		}
		enter = next
	}
}

func stateKey(t *LemkeTableau, label, enter int) string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(label))
	sb.WriteByte('/')
	sb.WriteString(strconv.Itoa(enter))
	for _, col := range t.Basis().Columns() {
		sb.WriteByte(',')
		sb.WriteString(strconv.Itoa(col))
	}
	return sb.String()
}

// step pivots enter into the basis in row and returns the column to
// enter next, or done if the column that left carries label.
func step(t *LemkeTableau, row, enter, label int) (next int, done bool, err error) {
	left, err := t.PivotOn(row, enter)
	if err != nil {
		return -1, false, err
	}
	pivotsCounter.Add(1)

	if t.Label(left) == label {
		t.MarkTerminal()
		return -1, true, nil
	}

	next = t.ComplementaryLabelMissing(left)
	if next != t.Complement(left) {
		return -1, false, failure.Invariantf("basis is not almost complementary after column %d left", left)
	}

	return next, false, nil
}

// recover swallows the errors that abandon a single branch of the
// search. Cancellation and invariant violations are returned.
func (r *run) recover(err error) error {
	switch {
	case err == nil:
		return nil
	case failure.Is(err, failure.ErrDidNotTerminate):
		abandonedCounter.Add(1)
		glog.Warningf("Abandoning branch: %v", err)
		return nil
	case failure.Is(err, failure.ErrNumericalFailure), failure.Is(err, failure.ErrArithmetic):
		abandonedCounter.Add(1)
		glog.Warningf("Abandoning branch after numerical failure: %v", err)
		return nil
	}

	return err
}

// record converts the complementary basis at t into a profile and adds
// it to the results unless an equal profile was already found.
func (r *run) record(t *LemkeTableau) error {
	if !t.IsComplementary() {
		return failure.Invariantf("path ended at a basis that is not complementary")
	}

	if t.IsArtificial() {
		return nil
	}

	x, y, err := t.Strategies()
	if err != nil {
		return err
	}

	profile, err := r.bimatrix.Profile(x, y)
	if err != nil {
		return err
	}

	for _, existing := range r.results {
		if existing.Equal(profile) {
			return nil
		}
	}

	glog.V(2).Infof("Equilibrium at %v after %d pivots: %v", t.BFS(), t.Pivots(), profile)
	solutionsCounter.Add(1)
	r.results = append(r.results, profile)
	return nil
}

// Solve is a convenience wrapper that enumerates the equilibria of the
// two-player support s in field f.
func Solve(s *nfg.Support, f *field.Field, opts Options) ([]*nfg.Profile, error) {
	b, err := matrixgame.FromSupport(s, f)
	if err != nil {
		return nil, err
	}

	return NewSolver(opts).Solve(b)
}
