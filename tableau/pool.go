package tableau

import (
	"sync"

	"github.com/timpalpant/gonash/field"
)

var numberSlicePool = sync.Pool{
	New: func() interface{} {
		return make([]field.Number, 0)
	},
}

// allocNumberSlice returns a scratch slice of length n. Its contents
// are unspecified.
func allocNumberSlice(n int) []field.Number {
	s := numberSlicePool.Get().([]field.Number)
	if cap(s) < n {
		return make([]field.Number, n)
	}

	return s[:n]
}

func freeNumberSlice(s []field.Number) {
	if cap(s) > 0 {
		for i := range s {
			s[i] = nil
		}
		numberSlicePool.Put(s[:0])
	}
}
