package nfg

import (
	"gonum.org/v1/gonum/stat/combin"
)

// ForEachContingency calls fn with every pure strategy profile on the
// support, in a deterministic order. If fixed is non-nil, the profiles
// are restricted to those in which fixed.Player plays fixed, whether
// or not it is active. The profile slice is reused between calls and
// must not be retained; iteration stops early if fn returns false.
func (s *Support) ForEachContingency(fixed *Strategy, fn func(profile []int) bool) {
	nPlayers := len(s.active)
	numbers := make([][]int, nPlayers)
	lens := make([]int, nPlayers)
	for pl := range numbers {
		if fixed != nil && fixed.Player == pl {
			numbers[pl] = []int{fixed.Number}
		} else {
			numbers[pl] = s.Numbers(pl)
		}
		lens[pl] = len(numbers[pl])
	}

	profile := make([]int, nPlayers)
	for _, idx := range combin.Cartesian(lens) {
		for pl, i := range idx {
			profile[pl] = numbers[pl][i]
		}

		if !fn(profile) {
			return
		}
	}
}

// OpponentContingencies returns the profiles of every player except pl
// over the support. The entry for pl in each profile is left zero, to
// be filled in by the caller.
func (s *Support) OpponentContingencies(pl int) [][]int {
	var result [][]int
	fixed := &Strategy{Player: pl, Number: 1}
	s.ForEachContingency(fixed, func(profile []int) bool {
		c := make([]int, len(profile))
		copy(c, profile)
		c[pl] = 0
		result = append(result, c)
		return true
	})

	return result
}
