//go:build linux

package sys

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// linuxCalls invokes membarrier(2) through golang.org/x/sys. The syscall
// takes (cmd, flags); flags is always 0 here since we never use the
// rseq-aware variants.
type linuxCalls struct{}

var platformCalls Calls = linuxCalls{}

// membarrier issues membarrier(2) directly; x/sys/unix exposes only the
// syscall number, not a typed wrapper. The command values come from the
// package-level Cmd* constants, which mirror the kernel UAPI.
func membarrier(cmd, flags int) (int, error) {
	r1, _, errno := unix.Syscall(unix.SYS_MEMBARRIER, uintptr(cmd), uintptr(flags), 0)
	if errno != 0 {
		return 0, errno
	}
	return int(r1), nil
}

func (linuxCalls) QueryCommands() (int, error) {
	mask, err := membarrier(CmdQuery, 0)
	if err != nil {
		return 0, wrapErrno("MEMBARRIER_QUERY", CmdQuery, err)
	}
	return mask, nil
}

func (linuxCalls) RegisterPrivateExpedited() error {
	_, err := membarrier(CmdRegisterPrivateExpedited, 0)
	if err != nil {
		return wrapErrno("MEMBARRIER_REGISTER_PRIVATE_EXPEDITED", CmdRegisterPrivateExpedited, err)
	}
	return nil
}

func (linuxCalls) BarrierPrivateExpedited() error {
	_, err := membarrier(CmdPrivateExpedited, 0)
	if err != nil {
		return wrapErrno("MEMBARRIER_PRIVATE_EXPEDITED", CmdPrivateExpedited, err)
	}
	return nil
}

func (linuxCalls) BarrierGlobal() error {
	_, err := membarrier(CmdGlobal, 0)
	if err != nil {
		return wrapErrno("MEMBARRIER_GLOBAL", CmdGlobal, err)
	}
	return nil
}

func (linuxCalls) NativeFlushAvailable() bool { return false }

func (linuxCalls) NativeFlush() error {
	return wrapErrno("NATIVE_FLUSH", 0, syscall.ENOSYS)
}
