//go:build windows

package sys

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// windowsCalls backs the heavy barrier with FlushProcessWriteBuffers,
// which generates an inter-processor interrupt on every core of the
// process. The entry point has existed since Vista; resolving it can only
// fail on older systems, which then degrade to full fences.
type windowsCalls struct {
	flush *windows.LazyProc
}

var platformCalls Calls = windowsCalls{
	flush: windows.NewLazySystemDLL("kernel32.dll").NewProc("FlushProcessWriteBuffers"),
}

func (windowsCalls) QueryCommands() (int, error) {
	return 0, wrapErrno("MEMBARRIER_QUERY", CmdQuery, syscall.ENOSYS)
}

func (windowsCalls) RegisterPrivateExpedited() error {
	return wrapErrno("MEMBARRIER_REGISTER_PRIVATE_EXPEDITED", CmdRegisterPrivateExpedited, syscall.ENOSYS)
}

func (windowsCalls) BarrierPrivateExpedited() error {
	return wrapErrno("MEMBARRIER_PRIVATE_EXPEDITED", CmdPrivateExpedited, syscall.ENOSYS)
}

func (windowsCalls) BarrierGlobal() error {
	return wrapErrno("MEMBARRIER_GLOBAL", CmdGlobal, syscall.ENOSYS)
}

func (w windowsCalls) NativeFlushAvailable() bool {
	return w.flush.Find() == nil
}

func (w windowsCalls) NativeFlush() error {
	if err := w.flush.Find(); err != nil {
		return &ProbeError{Op: "FLUSH_PROCESS_WRITE_BUFFERS", Code: CodeEntryUnresolved, Inner: err}
	}
	// The API returns void; LazyProc.Call always reports a non-nil
	// syscall.Errno which is 0 on success and must be ignored.
	w.flush.Call()
	return nil
}
