// Package fence provides the two ordering strengths the barrier
// strategies are built from: a full sequentially-consistent fence and a
// compiler-only fence.
package fence

import "sync/atomic"

// word is the target of the fence-producing atomic ops. It is never read
// for its value.
var word int64

// Full issues a full memory fence on the calling thread.
// atomic.AddInt64 with 0 compiles to LOCK XADD on x86-64 and to an
// LL/SC pair with full ordering on arm64, giving sequentially-consistent
// fence semantics with no contention and minimal overhead.
func Full() {
	atomic.AddInt64(&word, 0)
}

// Compiler orders the surrounding code at compile time without emitting
// a CPU fence. The opaque call boundary keeps the compiler from moving
// memory operations across it; noinline keeps the boundary opaque.
//
//go:noinline
func Compiler() {
}
