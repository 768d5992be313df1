// Command elimdom removes dominated strategies from a strategic-form
// game and prints the support remaining after each round.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/timpalpant/gonash/dominance"
	"github.com/timpalpant/gonash/field"
	"github.com/timpalpant/gonash/nfg"
)

func main() {
	gameFile := flag.String("game", "", "Game file (.nfg or .nfg.gz); stdin if empty")
	precision := flag.String("precision", "rational", "Arithmetic: float or rational")
	strong := flag.Bool("strong", false, "Eliminate only strictly dominated strategies")
	mixed := flag.Bool("mixed", false, "Eliminate strategies dominated by mixed strategies")
	iterate := flag.Bool("iterate", true, "Eliminate until no strategy is dominated")
	players := flag.String("players", "", "Comma-separated players to eliminate for, numbered from 0 (default all)")
	cacheSize := flag.Int("payoff_cache", 0, "Number of payoff contingencies to cache")
	writeFile := flag.String("output", "", "Write the reduced game to this file")
	httpAddr := flag.String("http", "", "Address to serve expvar and pprof on")
	flag.Parse()

	if *httpAddr != "" {
		go http.ListenAndServe(*httpAddr, nil)
	}

	p, err := field.ParsePrecision(*precision)
	if err != nil {
		glog.Fatal(err)
	}

	pls, err := parsePlayers(*players)
	if err != nil {
		glog.Fatal(err)
	}

	var game *nfg.Table
	if *gameFile == "" {
		game, err = nfg.Read(bufio.NewReader(os.Stdin))
	} else {
		game, err = nfg.ReadFile(*gameFile)
	}
	if err != nil {
		glog.Fatal(err)
	}

	e := dominance.New(
		dominance.WithField(field.New(p)),
		dominance.WithMixed(*mixed),
		dominance.WithPayoffCache(*cacheSize))

	s := nfg.NewSupport(game)
	s.SetLabel("Full support")
	fmt.Println(s)
	for round := 1; ; round++ {
		next, err := e.Undominated(s, pls, *strong)
		if err != nil {
			glog.Fatal(err)
		}

		if next.Equal(s) {
			glog.Infof("No dominated strategies after %d rounds", round-1)
			break
		}

		next.SetLabel(fmt.Sprintf("Round %d", round))
		fmt.Println(next)
		s = next
		if !*iterate {
			break
		}
	}

	if *writeFile != "" {
		if err := nfg.WriteFile(*writeFile, restrict(game, s)); err != nil {
			glog.Fatal(err)
		}
	}
}

func parsePlayers(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}

	var result []int
	for _, tok := range strings.Split(s, ",") {
		pl, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid player %q", tok)
		}
		result = append(result, pl)
	}

	return result, nil
}

// restrict copies the part of g on the support s into a new table.
func restrict(g *nfg.Table, s *nfg.Support) *nfg.Table {
	counts := s.NumActiveAll()
	result := nfg.NewTable(counts)
	result.SetTitle(g.Title())
	for pl := range counts {
		result.SetPlayerName(pl, g.PlayerName(pl))
		for i, st := range s.Strategies(pl) {
			result.SetStrategyLabel(pl, i+1, g.StrategyLabel(pl, st.Number))
		}
	}

	reduced := nfg.NewSupport(result)
	profile := make([]int, len(counts))
	reduced.ForEachContingency(nil, func(idx []int) bool {
		for pl, i := range idx {
			profile[pl] = s.Strategy(pl, i).Number
		}
		for pl := range counts {
			result.SetPayoff(idx, pl, g.Payoff(profile, pl))
		}
		return true
	})

	return result
}
