//go:build !barriersim

package barrier

import (
	"time"

	"github.com/ShaoG-R/swmr-barrier/internal/capability"
	"github.com/ShaoG-R/swmr-barrier/internal/fence"
	"github.com/ShaoG-R/swmr-barrier/internal/logging"
	"github.com/ShaoG-R/swmr-barrier/internal/sys"
)

// Production dispatch. The capability tag is resolved once and every
// call is a branch over the cached value, never an interface call.

func resolve() State {
	return capability.Resolve(sys.Default())
}

func heavyImpl() {
	start := time.Now()
	s := resolve()
	degraded := false

	switch s {
	case capability.PrivateExpedited:
		if err := sys.Default().BarrierPrivateExpedited(); err != nil {
			// The registered command is specified by the kernel not to
			// fail. If it somehow does, the global command still
			// delivers the cross-thread barrier on any kernel that
			// answered the query, so readers with compiler-only fences
			// stay correct.
			degraded = true
			logging.Default().WithError(err).Error("private expedited barrier failed")
			if sys.Default().BarrierGlobal() != nil {
				fence.Full()
			}
		}
	case capability.SharedExpedited:
		if err := sys.Default().BarrierGlobal(); err != nil {
			degraded = true
			logging.Default().WithError(err).Error("global barrier failed")
			fence.Full()
		}
	case capability.OsNativeAPI:
		if err := sys.Default().NativeFlush(); err != nil {
			degraded = true
			logging.Default().WithError(err).Error("native flush failed")
			fence.Full()
		}
	default:
		fence.Full()
	}

	metrics.RecordHeavy(s, uint64(time.Since(start)), degraded)
}

func lightImpl() {
	if resolve().Accelerated() {
		fence.Compiler()
		return
	}
	fence.Full()
}
