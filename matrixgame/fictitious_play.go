package matrixgame

import (
	"math"

	"github.com/golang/glog"
	"golang.org/x/exp/rand"
)

// FictitiousPlay approximates an equilibrium of the bimatrix by having
// each player repeatedly best respond to the empirical frequency of the
// other's past play. With probability mixingLambda a player instead
// plays uniformly at random. It returns the empirical mixtures of the
// row and column players.
//
// Fictitious play converges for zero-sum games but not in general, so
// the result should be checked with nfg.Profile.MaxRegret.
func FictitiousPlay(b *Bimatrix, rng *rand.Rand, nIter int, mixingLambda float64) ([]float64, []float64) {
	m, n := b.Dims()
	// Each player's payoffs, indexed by own strategy then opponent's.
	rowPayoffs := make([][]float64, m)
	colPayoffs := make([][]float64, n)
	for j := range colPayoffs {
		colPayoffs[j] = make([]float64, m)
	}
	for i := range rowPayoffs {
		rowPayoffs[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			rowPayoffs[i][j] = b.A[i][j].Float64()
			colPayoffs[j][i] = b.B[i][j].Float64()
		}
	}

	rowCounts := make([]int, m)
	colCounts := make([]int, n)
	logEvery := nIter / 10
	for iter := 1; iter <= nIter; iter++ {
		r := sampleResponse(rng, rowPayoffs, colCounts, mixingLambda)
		c := sampleResponse(rng, colPayoffs, rowCounts, mixingLambda)
		rowCounts[r]++
		colCounts[c]++

		if logEvery > 0 && iter%logEvery == 0 {
			glog.V(1).Infof("After %d iterations, row weights: %v, column weights: %v",
				iter, normalize(rowCounts), normalize(colCounts))
		}
	}

	return normalize(rowCounts), normalize(colCounts)
}

// sampleResponse returns a uniformly random strategy with probability
// mixingLambda, and otherwise a best response to the opponent's counts.
func sampleResponse(rng *rand.Rand, payoffs [][]float64, opponentCounts []int, mixingLambda float64) int {
	if rng.Float64() < mixingLambda {
		return rng.Intn(len(payoffs))
	}

	utilities := make([]float64, len(payoffs))
	for i, row := range payoffs {
		for j, count := range opponentCounts {
			utilities[i] += float64(count) * row[j]
		}
	}

	_, br := argMax(rng, utilities)
	return br
}

func normalize(counts []int) []float64 {
	total := 0
	for _, v := range counts {
		total += v
	}

	result := make([]float64, len(counts))
	for i, v := range counts {
		result[i] = float64(v) / float64(total)
	}
	return result
}

// argMax breaks ties at random.
func argMax(rng *rand.Rand, vs []float64) (float64, int) {
	best := -math.MaxFloat64
	bestIdx := 0
	for i, v := range vs {
		if v > best {
			best = v
			bestIdx = i
		} else if v == best && rng.Intn(2) == 1 {
			bestIdx = i
		}
	}

	return best, bestIdx
}
