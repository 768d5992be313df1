package nfg

import (
	"expvar"
	"strconv"
	"strings"

	"github.com/hashicorp/golang-lru"

	"github.com/timpalpant/gonash/field"
)

var (
	cacheHits    = expvar.NewInt("payoffs/cache_hits")
	cacheMisses  = expvar.NewInt("payoffs/cache_misses")
	cacheHitRate = expvar.NewFloat("payoffs/cache_hit_rate")
)

// CachedGame memoizes the payoffs of a Game whose Payoff is expensive
// to evaluate. All players' payoffs at a contingency are computed and
// cached together. CachedGame is safe for concurrent use.
type CachedGame struct {
	game  Game
	cache *lru.Cache
}

var _ Game = &CachedGame{}

// NewCachedGame wraps g with an LRU cache holding up to size contingencies.
func NewCachedGame(g Game, size int) *CachedGame {
	cache, err := lru.New(size)
	if err != nil {
		panic(err)
	}

	return &CachedGame{game: g, cache: cache}
}

// Unwrap returns the underlying game.
func (c *CachedGame) Unwrap() Game {
	return c.game
}

func (c *CachedGame) NumPlayers() int {
	return c.game.NumPlayers()
}

func (c *CachedGame) NumStrategies(pl int) int {
	return c.game.NumStrategies(pl)
}

// Payoff implements Game.
func (c *CachedGame) Payoff(profile []int, pl int) field.Number {
	key := profileKey(profile)
	if cached, ok := c.cache.Get(key); ok {
		cacheHits.Add(1)
		updateHitRate()
		return cached.([]field.Number)[pl]
	}

	cacheMisses.Add(1)
	updateHitRate()
	payoffs := make([]field.Number, c.game.NumPlayers())
	for p := range payoffs {
		payoffs[p] = c.game.Payoff(profile, p)
	}

	c.cache.Add(key, payoffs)
	return payoffs[pl]
}

// Len returns the number of cached contingencies.
func (c *CachedGame) Len() int {
	return c.cache.Len()
}

func updateHitRate() {
	hits, misses := cacheHits.Value(), cacheMisses.Value()
	cacheHitRate.Set(float64(hits) / float64(hits+misses))
}

func profileKey(profile []int) string {
	var sb strings.Builder
	for i, st := range profile {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(st))
	}

	return sb.String()
}
