// Package enumpure finds the pure strategy Nash equilibria of a support
// by checking every contingency.
package enumpure

import (
	"github.com/golang/glog"

	"github.com/timpalpant/gonash/field"
	"github.com/timpalpant/gonash/nfg"
	"github.com/timpalpant/gonash/status"
)

// Solve returns every pure profile on s from which no player can gain
// by deviating to another strategy active in s, in contingency order.
// If st cancels, the equilibria found so far are returned with the
// error.
func Solve(s *nfg.Support, f *field.Field, st status.Status) ([]*nfg.Profile, error) {
	st = status.OrNull(st)
	g := s.Game()
	total := s.NumContingencies()

	var result []*nfg.Profile
	var err error
	n := 0
	s.ForEachContingency(nil, func(profile []int) bool {
		if err = st.Poll(); err != nil {
			return false
		}

		n++
		if isEquilibrium(s, f, g, profile) {
			result = append(result, nfg.Pure(s, f, profile))
		}

		if n%1024 == 0 {
			st.ReportProgress(float64(n)/float64(total), "enumerating pure profiles")
		}
		return true
	})

	glog.V(1).Infof("Checked %d contingencies, found %d pure equilibria", n, len(result))
	return result, err
}

// isEquilibrium checks every unilateral pure deviation within s.
// profile is restored before returning.
func isEquilibrium(s *nfg.Support, f *field.Field, g nfg.Game, profile []int) bool {
	for pl := range profile {
		played := profile[pl]
		payoff := f.Convert(g.Payoff(profile, pl))
		for _, number := range s.Numbers(pl) {
			if number == played {
				continue
			}

			profile[pl] = number
			better := f.Convert(g.Payoff(profile, pl)).Cmp(payoff) > 0
			profile[pl] = played
			if better {
				return false
			}
		}
	}

	return true
}
