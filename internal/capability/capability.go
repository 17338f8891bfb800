// Package capability detects, once per process, which OS-assisted
// global-barrier mechanism is usable and caches the result.
//
// Detection is lazy: whichever thread first needs a barrier strategy runs
// the probe chain and publishes the outcome through a single atomic cell.
// Concurrent probes are tolerated because every step is idempotent
// kernel-side; losers of the publishing race discard their result and
// adopt the published one, so every caller observes the same final state.
package capability

import (
	"sync/atomic"

	"github.com/ShaoG-R/swmr-barrier/internal/logging"
	"github.com/ShaoG-R/swmr-barrier/internal/sys"
)

// State is the resolved synchronization strategy, stored as a small
// integer tag so the light barrier dispatch stays a single branch.
type State int32

const (
	// Uninitialized means no barrier call has run yet.
	Uninitialized State = iota

	// PrivateExpedited means the per-process expedited membarrier
	// command is available and registration succeeded.
	PrivateExpedited

	// SharedExpedited means only the shared (global) membarrier command
	// is available, either because the private variant is missing or
	// because its registration failed.
	SharedExpedited

	// OsNativeAPI means the platform-native flush-all-cores entry point
	// resolved (FlushProcessWriteBuffers on Windows).
	OsNativeAPI

	// Unsupported means no OS assistance exists; both barrier sides
	// must use full fences.
	Unsupported
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case PrivateExpedited:
		return "private-expedited"
	case SharedExpedited:
		return "shared-expedited"
	case OsNativeAPI:
		return "os-native-api"
	case Unsupported:
		return "unsupported"
	default:
		return "invalid"
	}
}

// Accelerated reports whether s names an OS-assisted strategy, i.e. the
// light barrier may be compiler-only.
func (s State) Accelerated() bool {
	switch s {
	case PrivateExpedited, SharedExpedited, OsNativeAPI:
		return true
	}
	return false
}

// cell holds the resolved State. sync/atomic operations are sequentially
// consistent, so the CompareAndSwap that publishes a non-Uninitialized
// value releases the registration side effect and the Load in Resolve
// acquires it. The state is monotonic: once non-Uninitialized it never
// changes for the life of the process.
var cell atomic.Int32

// Resolve returns the cached capability, running the probe chain on the
// first call. Safe under unbounded concurrent invocation.
func Resolve(calls sys.Calls) State {
	if s := State(cell.Load()); s != Uninitialized {
		return s
	}
	return resolveSlow(calls)
}

func resolveSlow(calls sys.Calls) State {
	s := probe(calls)
	if cell.CompareAndSwap(int32(Uninitialized), int32(s)) {
		logging.Default().WithCapability(s.String()).Info("barrier capability resolved")
		return s
	}
	// Another thread published first. Its probe ran against the same
	// kernel and converged on the same answer; adopt the published
	// value so every caller agrees.
	return State(cell.Load())
}

// probe walks the fallback chain: private expedited, then shared, then
// the native flush API, then full fences. Every failure degrades to the
// next-weaker option and none is surfaced.
func probe(calls sys.Calls) State {
	log := logging.Default()

	mask, err := calls.QueryCommands()
	if err == nil {
		if mask&sys.CmdPrivateExpedited != 0 {
			regErr := calls.RegisterPrivateExpedited()
			if regErr == nil {
				return PrivateExpedited
			}
			// Registration failures are treated as permanent for this
			// process; see DESIGN.md. The shared command needs no
			// registration and stays available.
			log.WithError(regErr).Warn("private expedited registration failed, degrading")
		}
		if mask&sys.CmdGlobal != 0 {
			return SharedExpedited
		}
		log.Debug("membarrier present but no usable command", "mask", mask)
		return Unsupported
	}

	if !sys.IsUnsupported(err) {
		log.WithError(err).Warn("membarrier query failed")
	}

	if calls.NativeFlushAvailable() {
		return OsNativeAPI
	}
	return Unsupported
}

// Force pins the cached state, overriding any resolved value. Test hook.
func Force(s State) {
	cell.Store(int32(s))
}

// Reset returns the cell to Uninitialized so the next Resolve probes
// again. Test hook; never called in production, where the state is
// monotonic.
func Reset() {
	cell.Store(int32(Uninitialized))
}
