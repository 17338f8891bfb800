package barrier

import "github.com/ShaoG-R/swmr-barrier/internal/capability"

// Test hooks. Production code never resets the capability cell; these
// exist so tests can exercise specific strategies, in particular the
// Unsupported fallback where both barrier sides must pay a full fence.

// ForceCapability pins the resolved capability, overriding detection.
// Call ResetCapability afterwards; leaving a forced value in place
// changes the behavior of every subsequent barrier call in the process.
func ForceCapability(s State) {
	capability.Force(s)
}

// ResetCapability clears the cached capability so the next barrier call
// probes again.
func ResetCapability() {
	capability.Reset()
}

// ResetMetrics zeroes the process-wide barrier metrics.
func ResetMetrics() {
	metrics.Reset()
}
