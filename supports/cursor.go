package supports

import (
	"github.com/timpalpant/gonash/nfg"
)

// Cursor walks the active strategies of a fixed support in order:
// player by player, and within a player by increasing strategy number.
// The support must not change while the cursor is in use.
type Cursor struct {
	support *nfg.Support
	pl      int
	// i is the 0-based position among pl's active strategies.
	i int
}

// NewCursor returns a cursor at the first active strategy of player 0.
func NewCursor(s *nfg.Support) *Cursor {
	return &Cursor{support: s}
}

func (c *Cursor) Strategy() nfg.Strategy {
	return c.support.Strategy(c.pl, c.i+1)
}

func (c *Cursor) Player() int {
	return c.pl
}

// Next advances the cursor and returns false if it was already at the
// last strategy.
func (c *Cursor) Next() bool {
	if c.i+1 < c.support.NumActive(c.pl) {
		c.i++
		return true
	}

	if c.pl+1 < c.support.NumPlayers() {
		c.pl++
		c.i = 0
		return true
	}

	return false
}

func (c *Cursor) IsLast() bool {
	return c.pl == c.support.NumPlayers()-1 && c.i == c.support.NumActive(c.pl)-1
}

// IsSubsequentTo returns whether the cursor is strictly past st.
func (c *Cursor) IsSubsequentTo(st nfg.Strategy) bool {
	if c.pl != st.Player {
		return c.pl > st.Player
	}

	return c.Strategy().Number > st.Number
}

func (c *Cursor) Clone() *Cursor {
	result := *c
	return &result
}
