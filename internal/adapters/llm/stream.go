package llm

import (
	"errors"
	"iter"
	"sync/atomic"
)

// ErrStreamConsumed is yielded when a reply stream is ranged over twice.
var ErrStreamConsumed = errors.New("reply stream already consumed")

// singleUse wraps seq so it can only be iterated once; later iterations
// yield ErrStreamConsumed.
func singleUse(seq iter.Seq2[string, error]) iter.Seq2[string, error] {
	var used atomic.Bool
	return func(yield func(string, error) bool) {
		if used.Swap(true) {
			yield("", ErrStreamConsumed)
			return
		}
		seq(yield)
	}
}
