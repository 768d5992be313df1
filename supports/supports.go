// Package supports enumerates the subsupports of a game that may carry
// a Nash equilibrium.
package supports

import (
	"sort"

	"github.com/golang/glog"
	"gonum.org/v1/gonum/stat/combin"

	"github.com/timpalpant/gonash/dominance"
	"github.com/timpalpant/gonash/nfg"
)

// AllSubsupports returns every support obtained from s by deactivating
// any strategies, provided each player keeps at least one. Larger
// subsets of a player's strategies come first.
func AllSubsupports(s *nfg.Support) []*nfg.Support {
	n := s.NumPlayers()
	subsets := make([][][]nfg.Strategy, n)
	lens := make([]int, n)
	for pl := 0; pl < n; pl++ {
		active := s.Strategies(pl)
		for k := len(active); k >= 1; k-- {
			for _, idx := range combin.Combinations(len(active), k) {
				subset := make([]nfg.Strategy, k)
				for i, j := range idx {
					subset[i] = active[j]
				}
				subsets[pl] = append(subsets[pl], subset)
			}
		}
		lens[pl] = len(subsets[pl])
	}

	var result []*nfg.Support
	for _, choice := range combin.Cartesian(lens) {
		sub := s.Clone()
		for pl, k := range choice {
			keep := make(map[nfg.Strategy]bool)
			for _, st := range subsets[pl][k] {
				keep[st] = true
			}

			for _, st := range s.Strategies(pl) {
				if !keep[st] {
					// Cannot fail: every subset is non-empty.
					_ = sub.RemoveStrategy(st)
				}
			}
		}

		result = append(result, sub)
	}

	return result
}

// AllValidSubsupports returns the same supports as AllSubsupports,
// generated depth-first by deleting strategies at or after a cursor so
// that each is produced exactly once.
func AllValidSubsupports(s *nfg.Support) []*nfg.Support {
	var result []*nfg.Support
	sact := s.Clone()
	allValid(sact, NewCursor(s), &result)
	return result
}

func allValid(sact *nfg.Support, c *Cursor, result *[]*nfg.Support) {
	*result = append(*result, sact.Clone())

	cur := c.Clone()
	for {
		st := cur.Strategy()
		if sact.Contains(st) && sact.NumActive(st.Player) > 1 {
			withRemoved(sact, []nfg.Strategy{st}, func() {
				allValid(sact, cur, result)
			})
		}

		if !cur.Next() {
			return
		}
	}
}

// AllUndominatedSubsupports returns the subsupports of s in which no
// active strategy is dominated (strictly if strong, else weakly) within
// the subsupport itself.
func AllUndominatedSubsupports(s *nfg.Support, strong bool, e *dominance.Eliminator) ([]*nfg.Support, error) {
	if e == nil {
		e = dominance.New()
	}

	en := &enumeration{
		original: s,
		elim:     e,
		strong:   strong,
	}

	sact := s.Clone()
	if err := en.recurse(sact, NewCursor(s)); err != nil {
		return en.result, err
	}

	return en.result, nil
}

// PossibleNashSubsupports returns the subsupports of s that could be the
// support of a Nash equilibrium: those with no strictly dominated
// strategy, and no strategy weakly dominated by any other strategy of
// the game, active or not. The result is ordered by increasing profile
// length.
func PossibleNashSubsupports(s *nfg.Support, e *dominance.Eliminator) ([]*nfg.Support, error) {
	if e == nil {
		e = dominance.New()
	}

	en := &enumeration{
		original: s,
		elim:     e,
		strong:   true,
	}

	sact := s.Clone()
	if err := en.recurse(sact, NewCursor(s)); err != nil {
		return nil, err
	}
	glog.V(1).Infof("%d subsupports without strict dominance", len(en.result))

	var result []*nfg.Support
	for _, sub := range en.result {
		if !weaklyDominated(e, s, sub) {
			result = append(result, sub)
		}
	}
	glog.V(1).Infof("%d subsupports without weak dominance", len(result))

	SortBySize(result)
	return result, nil
}

// SortBySize orders supports by increasing profile length. The sort is
// stable.
func SortBySize(supports []*nfg.Support) {
	sort.SliceStable(supports, func(i, j int) bool {
		return supports[i].ProfileLength() < supports[j].ProfileLength()
	})
}

type enumeration struct {
	original *nfg.Support
	elim     *dominance.Eliminator
	strong   bool
	result   []*nfg.Support
}

// recurse deletes every dominated strategy of sact and recurses, or, if
// none are dominated, records sact and recurses on each deletion of a
// strategy at or after the cursor. A dominated strategy before the
// cursor means this support is reached along another branch, so the
// branch is abandoned. sact is restored before returning.
func (en *enumeration) recurse(sact *nfg.Support, c *Cursor) error {
	var deletions []nfg.Strategy
	scanner := NewCursor(en.original)
	for {
		st := scanner.Strategy()
		if sact.Contains(st) {
			dominated, err := en.elim.IsDominated(sact, st, en.strong)
			if err != nil {
				return err
			}

			if dominated {
				if c.IsSubsequentTo(st) {
					return nil
				}
				deletions = append(deletions, st)
			}
		}

		if !scanner.Next() {
			break
		}
	}

	if len(deletions) > 0 {
		var err error
		withRemoved(sact, deletions, func() {
			err = en.recurse(sact, c)
		})
		return err
	}

	en.result = append(en.result, sact.Clone())

	cur := c.Clone()
	for {
		st := cur.Strategy()
		if sact.Contains(st) && sact.NumActive(st.Player) > 1 {
			var err error
			withRemoved(sact, []nfg.Strategy{st}, func() {
				err = en.recurse(sact, cur)
			})
			if err != nil {
				return err
			}
		}

		if !cur.Next() {
			return nil
		}
	}
}

// withRemoved calls fn with strategies removed from s, and restores
// them afterwards even if fn panics. Strategies that cannot be removed
// without emptying a player are kept.
func withRemoved(s *nfg.Support, strategies []nfg.Strategy, fn func()) {
	var removed []nfg.Strategy
	defer func() {
		for _, st := range removed {
			s.AddStrategy(st)
		}
	}()

	for _, st := range strategies {
		if !s.Contains(st) {
			continue
		}

		if err := s.RemoveStrategy(st); err != nil {
			glog.V(2).Infof("Keeping %v: %v", st, err)
			continue
		}
		removed = append(removed, st)
	}

	fn()
}

// weaklyDominated returns whether some strategy active in sub is weakly
// dominated, over sub's contingencies, by another strategy of the same
// player in the original support, whether or not it is active in sub.
func weaklyDominated(e *dominance.Eliminator, original, sub *nfg.Support) bool {
	for _, st := range sub.AllStrategies() {
		for _, other := range original.Strategies(st.Player) {
			if other != st && e.Dominates(sub, other, st, false) {
				return true
			}
		}
	}

	return false
}
