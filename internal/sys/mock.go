package sys

import (
	"sync"
	"syscall"
)

// Mock is an instrumented Calls double for testing the detector and the
// dispatch logic without a real kernel. It tracks per-primitive call
// counts and lets tests inject the failure modes of the probe taxonomy:
// the whole mechanism missing, individual commands missing, registration
// refused, or a native flush API present.
type Mock struct {
	// Failure injection. Zero value behaves like a modern Linux kernel
	// with both the global and private expedited commands available.
	QueryErrno    syscall.Errno // QueryCommands fails with this errno when non-zero
	NoPrivate     bool          // private expedited absent from the query mask
	NoGlobal      bool          // global command absent from the query mask
	RegisterErrno syscall.Errno // RegisterPrivateExpedited fails with this errno when non-zero
	Native        bool          // native flush entry point resolves

	mu            sync.Mutex
	queryCalls    int
	registerCalls int
	privateCalls  int
	globalCalls   int
	nativeCalls   int
}

func (m *Mock) QueryCommands() (int, error) {
	m.mu.Lock()
	m.queryCalls++
	m.mu.Unlock()

	if m.QueryErrno != 0 {
		return 0, wrapErrno("MEMBARRIER_QUERY", CmdQuery, m.QueryErrno)
	}
	mask := 0
	if !m.NoGlobal {
		mask |= CmdGlobal
	}
	if !m.NoPrivate {
		mask |= CmdPrivateExpedited | CmdRegisterPrivateExpedited
	}
	return mask, nil
}

func (m *Mock) RegisterPrivateExpedited() error {
	m.mu.Lock()
	m.registerCalls++
	m.mu.Unlock()

	if m.RegisterErrno != 0 {
		return wrapErrno("MEMBARRIER_REGISTER_PRIVATE_EXPEDITED", CmdRegisterPrivateExpedited, m.RegisterErrno)
	}
	return nil
}

func (m *Mock) BarrierPrivateExpedited() error {
	m.mu.Lock()
	m.privateCalls++
	m.mu.Unlock()
	return nil
}

func (m *Mock) BarrierGlobal() error {
	m.mu.Lock()
	m.globalCalls++
	m.mu.Unlock()
	return nil
}

func (m *Mock) NativeFlushAvailable() bool { return m.Native }

func (m *Mock) NativeFlush() error {
	m.mu.Lock()
	m.nativeCalls++
	m.mu.Unlock()

	if !m.Native {
		return wrapErrno("NATIVE_FLUSH", 0, syscall.ENOSYS)
	}
	return nil
}

// CallCounts returns the number of times each primitive was invoked.
func (m *Mock) CallCounts() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return map[string]int{
		"query":    m.queryCalls,
		"register": m.registerCalls,
		"private":  m.privateCalls,
		"global":   m.globalCalls,
		"native":   m.nativeCalls,
	}
}

// QueryCalls returns how many times QueryCommands ran. The detector's
// monotonicity tests use this to prove probing happens at most once.
func (m *Mock) QueryCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queryCalls
}

// Reset clears all call counters.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.queryCalls = 0
	m.registerCalls = 0
	m.privateCalls = 0
	m.globalCalls = 0
	m.nativeCalls = 0
}

// Compile-time interface check.
var _ Calls = (*Mock)(nil)
