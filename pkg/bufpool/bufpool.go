// Package bufpool recycles frame body buffers through size-classed
// sync.Pools.
//
// Every received frame allocates a body buffer that dies as soon as the
// body is decoded, so a busy session produces a steady stream of
// short-lived allocations. Three size classes cover chat traffic: control
// frames (authentication, friend operations, acknowledgements) fit the
// small class, a page of message history fits the medium class, and bulk
// history responses fit the large class. Bodies above the large class are
// allocated directly and never pooled, so one oversized frame does not pin
// a megabyte buffer for the life of the process.
//
// All functions are safe for concurrent use.
package bufpool

import "sync"

// Size classes. Get serves a request from the smallest class that fits.
const (
	// SmallSize covers control frames; even an authentication frame
	// carrying a full token stays well below this.
	SmallSize = 512

	// MediumSize covers a typical page of message history.
	MediumSize = 64 << 10

	// LargeSize covers bulk history responses. Larger bodies bypass the
	// pool entirely.
	LargeSize = 1 << 20
)

var classSizes = [...]int{SmallSize, MediumSize, LargeSize}

var classes [len(classSizes)]sync.Pool

func init() {
	for i, size := range classSizes {
		classes[i].New = func() any {
			b := make([]byte, size)
			return &b
		}
	}
}

// Get returns a slice of exactly size bytes backed by a buffer from the
// smallest class that fits. Hand the slice back with Put once it is dead.
// Sizes above LargeSize are allocated directly; Put will ignore them.
func Get(size int) []byte {
	for i, classSize := range classSizes {
		if size <= classSize {
			buf := *(classes[i].Get().(*[]byte))
			return buf[:size]
		}
	}
	return make([]byte, size)
}

// Put recycles a buffer obtained from Get. The slice must not be touched
// afterwards. Buffers whose capacity matches no class are left to the
// garbage collector.
func Put(buf []byte) {
	if buf == nil {
		return
	}
	for i, classSize := range classSizes {
		if cap(buf) == classSize {
			full := buf[:classSize]
			classes[i].Put(&full)
			return
		}
	}
}
