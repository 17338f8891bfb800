//go:build barriersim

package barrier

import (
	"github.com/ShaoG-R/swmr-barrier/internal/capability"
	"github.com/ShaoG-R/swmr-barrier/internal/fence"
)

// Verification dispatch. OS calls are unobservable to an interleaving
// explorer, so both barriers route through the simulated fence hook and
// the capability is pinned to Unsupported. Light and heavy carry the
// same simulated strength: a compiler-only fence is invisible to the
// model, and weakening light here would let the explorer miss
// synchronization the production pairing provides.

// SimFence is the simulated fence both barriers invoke. Exploration
// harnesses may replace it to record fence events; the default keeps
// full-fence semantics so ordinary tests still pass under the tag.
var SimFence func() = fence.Full

func resolve() State {
	return capability.Unsupported
}

func heavyImpl() {
	SimFence()
}

func lightImpl() {
	SimFence()
}
