// Package barrier provides an asymmetric memory barrier pair for
// Single-Writer/Multi-Reader patterns.
//
// Heavy is the writer-side, cold-path operation: it forces a full
// hardware memory barrier onto every thread of the process, through
// membarrier(2) on Linux or FlushProcessWriteBuffers on Windows. Light
// is the reader-side, hot-path operation: when an OS-assisted heavy
// strategy is active it compiles down to a compiler-only fence and a
// single branch over a cached tag, because the writer already paid for
// the hardware ordering on every core.
//
// The guarantee: if a writer performs store(X), Heavy(), store(Y) and a
// reader observes the store to Y, then after Light() the reader also
// observes the store to X, even though both stores and both loads are
// plain.
//
// When no OS assistance exists the pair degrades together: Heavy and
// Light both execute full sequentially-consistent fences, which is
// slower for readers but never weaker. The choice of strategy is probed
// once per process and cached; there is no configuration surface.
//
// Building with the barriersim tag replaces the OS primitives with a
// simulated fence so the logic can be exercised under the deterministic
// interleaving explorer in internal/sim.
package barrier

import "github.com/ShaoG-R/swmr-barrier/internal/capability"

// State is the resolved capability tag. See the capability package for
// the variants and their meaning.
type State = capability.State

const (
	Uninitialized    = capability.Uninitialized
	PrivateExpedited = capability.PrivateExpedited
	SharedExpedited  = capability.SharedExpedited
	OsNativeAPI      = capability.OsNativeAPI
	Unsupported      = capability.Unsupported
)

// Heavy executes the writer-side barrier. By the time it returns, every
// thread of the process has executed a full memory barrier after this
// call began, or will before it continues past the instruction point it
// was at. It may block briefly while the kernel coordinates the
// broadcast; call it from infrequent writer paths only.
func Heavy() {
	heavyImpl()
}

// Light executes the reader-side barrier. It never blocks and, on an
// OS-assisted strategy, emits no CPU fence instruction.
func Light() {
	lightImpl()
}

// Capability returns the resolved strategy, probing on first call.
func Capability() State {
	return resolve()
}

// IsAccelerated reports whether an OS-assisted heavy strategy is in
// use, i.e. whether Light is compiler-only.
func IsAccelerated() bool {
	return resolve().Accelerated()
}
