// Command enumlcp reads a strategic-form game and prints its Nash
// equilibria, found by complementary pivoting.
package main

import (
	"bufio"
	"context"
	_ "expvar"
	"flag"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/golang/glog"
	"golang.org/x/exp/rand"

	"github.com/timpalpant/gonash"
	"github.com/timpalpant/gonash/field"
	"github.com/timpalpant/gonash/matrixgame"
	"github.com/timpalpant/gonash/nfg"
	"github.com/timpalpant/gonash/status"
)

type FictitiousPlayParams struct {
	NumIterations int
	MixingLambda  float64
	Seed          uint64
}

func main() {
	opts := gonash.DefaultOptions()
	gameFile := flag.String("game", "", "Game file to solve (.nfg or .nfg.gz); stdin if empty")
	precision := flag.String("precision", "float", "Arithmetic: float or rational")
	flag.Float64Var(&opts.Epsilon, "epsilon", field.DefaultEpsilon,
		"Tolerance of floating point comparisons")
	flag.BoolVar(&opts.Eliminate, "eliminate", false,
		"Iteratively eliminate dominated strategies before solving")
	flag.BoolVar(&opts.Strong, "strong", true,
		"Eliminate only strictly dominated strategies")
	flag.BoolVar(&opts.Mixed, "mixed", false,
		"Consider domination by mixed strategies")
	flag.IntVar(&opts.StopAfter, "stop_after", 0,
		"Stop after this many equilibria (0 = find all)")
	flag.IntVar(&opts.MaxDepth, "max_depth", 0,
		"Recursion bound of the exhaustive search (0 = 10 * strategies)")
	flag.IntVar(&opts.MaxPivots, "max_pivots", 0,
		"Pivot bound of a single path (0 = 1000 * strategies)")
	flag.IntVar(&opts.RefactorEvery, "refactor_every", opts.RefactorEvery,
		"Number of pivots between LU refactorizations")
	flag.BoolVar(&opts.EnumerateSupports, "enumerate_supports", false,
		"Solve each possible equilibrium support separately")
	flag.IntVar(&opts.Workers, "workers", runtime.NumCPU(),
		"Number of supports to solve in parallel")
	timeout := flag.Duration("timeout", 0, "Stop searching after this long (0 = no limit)")
	httpAddr := flag.String("http", "", "Address to serve expvar and pprof on, e.g. localhost:4123")
	var fp FictitiousPlayParams
	flag.IntVar(&fp.NumIterations, "fp.iter", 0,
		"Also run this many iterations of fictitious play (two-player games only)")
	flag.Float64Var(&fp.MixingLambda, "fp.lambda", 0.0,
		"Probability of a uniformly random move in fictitious play")
	flag.Uint64Var(&fp.Seed, "fp.seed", 123, "Random seed for fictitious play")
	flag.Parse()

	if *httpAddr != "" {
		go http.ListenAndServe(*httpAddr, nil)
	}

	p, err := field.ParsePrecision(*precision)
	if err != nil {
		glog.Fatal(err)
	}
	opts.Precision = p
	if err := opts.Validate(); err != nil {
		glog.Fatal(err)
	}

	game, err := loadGame(*gameFile)
	if err != nil {
		glog.Fatal(err)
	}
	glog.Infof("Loaded %q: %d players", game.Title(), game.NumPlayers())

	ctx := context.Background()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}
	opts.Status = status.FromContext(ctx)

	s := nfg.NewSupport(game)
	start := time.Now()
	solutions, err := gonash.Solve(s, opts)
	if err != nil {
		glog.Fatal(err)
	}
	glog.Infof("Found %d equilibria in %v", len(solutions), time.Since(start))

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	for _, sol := range solutions {
		printProfile(w, "NE", sol.Algorithm, sol.Profile)
	}

	if fp.NumIterations > 0 {
		if err := runFictitiousPlay(w, s, fp); err != nil {
			glog.Error(err)
		}
	}
}

func loadGame(filename string) (*nfg.Table, error) {
	if filename == "" {
		return nfg.Read(bufio.NewReader(os.Stdin))
	}

	return nfg.ReadFile(filename)
}

func printProfile(w io.Writer, prefix, creator string, p *nfg.Profile) {
	g := p.Game()
	var probs, payoffs []string
	for pl := 0; pl < g.NumPlayers(); pl++ {
		for _, prob := range p.Probs(pl) {
			probs = append(probs, prob.String())
		}
		payoffs = append(payoffs, p.Payoff(pl).String())
	}

	fmt.Fprintf(w, "%s,%s\n", prefix, strings.Join(probs, ","))
	fmt.Fprintf(w, "# creator=%s payoffs=[%s] regret=%v\n",
		creator, strings.Join(payoffs, " "), p.MaxRegret(nil))
}

func runFictitiousPlay(w io.Writer, s *nfg.Support, params FictitiousPlayParams) error {
	f := field.New(field.Float)
	b, err := matrixgame.FromSupport(s, f)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(params.Seed))
	x, y := matrixgame.FictitiousPlay(b, rng, params.NumIterations, params.MixingLambda)
	xs := make([]field.Number, len(x))
	for i, v := range x {
		xs[i] = f.Float(v)
	}
	ys := make([]field.Number, len(y))
	for j, v := range y {
		ys[j] = f.Float(v)
	}

	p, err := b.Profile(xs, ys)
	if err != nil {
		return err
	}

	printProfile(w, "FP", "fictitious play", p)
	return nil
}
