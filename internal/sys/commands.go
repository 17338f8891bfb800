// Package sys is the narrow boundary around the OS barrier primitives.
//
// It exposes exactly the calls the capability detector and the heavy
// barrier need: query the supported membarrier commands, register for the
// private expedited command, invoke a barrier command, and resolve/invoke
// the native flush-all-cores API on Windows. All caching, fallback and
// ordering logic lives above this boundary so it stays portable and
// testable without a real kernel.
package sys

// Linux membarrier(2) command values. These mirror the kernel UAPI in
// <linux/membarrier.h> and are declared here so the portable capability
// logic can inspect query masks on every platform.
const (
	CmdQuery = 0

	// CmdGlobal was named MEMBARRIER_CMD_SHARED before kernel 4.16.
	// Available since 4.3, usable without registration.
	CmdGlobal                   = 1 << 0
	CmdGlobalExpedited          = 1 << 1
	CmdRegisterGlobalExpedited  = 1 << 2
	CmdPrivateExpedited         = 1 << 3
	CmdRegisterPrivateExpedited = 1 << 4
)

// Calls is the set of OS primitives behind the boundary.
//
// QueryCommands returns the bitmask of supported membarrier commands.
// On platforms without membarrier it fails with a ProbeError wrapping
// ENOSYS. RegisterPrivateExpedited performs the one-time per-process
// registration required before BarrierPrivateExpedited may be used.
// NativeFlushAvailable reports whether the platform-native
// flush-all-cores entry point resolved; NativeFlush invokes it.
type Calls interface {
	QueryCommands() (int, error)
	RegisterPrivateExpedited() error
	BarrierPrivateExpedited() error
	BarrierGlobal() error
	NativeFlushAvailable() bool
	NativeFlush() error
}

// Default returns the production Calls for the build platform.
func Default() Calls {
	return platformCalls
}
