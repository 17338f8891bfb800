//go:build !linux && !windows

package sys

import "syscall"

// stubCalls is used on platforms without an OS-assisted global barrier.
// Every probe fails with ENOSYS and the capability detector settles on
// full fences for both sides.
type stubCalls struct{}

var platformCalls Calls = stubCalls{}

func (stubCalls) QueryCommands() (int, error) {
	return 0, wrapErrno("MEMBARRIER_QUERY", CmdQuery, syscall.ENOSYS)
}

func (stubCalls) RegisterPrivateExpedited() error {
	return wrapErrno("MEMBARRIER_REGISTER_PRIVATE_EXPEDITED", CmdRegisterPrivateExpedited, syscall.ENOSYS)
}

func (stubCalls) BarrierPrivateExpedited() error {
	return wrapErrno("MEMBARRIER_PRIVATE_EXPEDITED", CmdPrivateExpedited, syscall.ENOSYS)
}

func (stubCalls) BarrierGlobal() error {
	return wrapErrno("MEMBARRIER_GLOBAL", CmdGlobal, syscall.ENOSYS)
}

func (stubCalls) NativeFlushAvailable() bool { return false }

func (stubCalls) NativeFlush() error {
	return wrapErrno("NATIVE_FLUSH", 0, syscall.ENOSYS)
}
