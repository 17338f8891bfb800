// Package sim is a deterministic interleaving explorer for bounded
// litmus programs over the barrier primitives.
//
// A Prog is a fixed set of threads, each a straight-line list of plain
// stores, plain loads and fence ops. The explorer enumerates every
// intra-thread reordering the fence placement permits, every thread
// interleaving, and every weak load result, then checks an invariant in
// each execution. OS primitives never run here; the fence ops carry
// their semantics in the simulated machine (see explore.go), preserving
// the production strength relationship: light is compiler-only, full is
// thread-local, heavy is global.
package sim

import "fmt"

// OpType enumerates the operations a litmus thread may perform.
type OpType int

const (
	// OpStore is a plain (relaxed) store of Val to Var.
	OpStore OpType = iota

	// OpLoad is a plain (relaxed) load of Var.
	OpLoad

	// OpHeavyFence models the OS-assisted heavy barrier: a full fence
	// forced onto every thread of the process.
	OpHeavyFence

	// OpFullFence models a sequentially-consistent fence on the
	// executing thread only.
	OpFullFence

	// OpLightFence models a compiler-only fence: it pins instruction
	// order but has no machine effect.
	OpLightFence
)

// Op is one operation in a litmus thread.
type Op struct {
	Type OpType
	Var  int
	Val  int
}

func (o Op) String() string {
	switch o.Type {
	case OpStore:
		return fmt.Sprintf("store(v%d,%d)", o.Var, o.Val)
	case OpLoad:
		return fmt.Sprintf("load(v%d)", o.Var)
	case OpHeavyFence:
		return "heavy"
	case OpFullFence:
		return "full"
	case OpLightFence:
		return "light"
	default:
		return "invalid"
	}
}

// isFence reports whether no operation may cross o in program order.
// A compiler-only fence pins order too: the reader's loads stay in
// program order, which together with the heavy fence's global effect is
// exactly what makes the asymmetric pairing sound.
func (o Op) isFence() bool {
	switch o.Type {
	case OpHeavyFence, OpFullFence, OpLightFence:
		return true
	}
	return false
}

// Constructors for readable litmus definitions.

func Store(v, val int) Op { return Op{Type: OpStore, Var: v, Val: val} }
func Load(v int) Op       { return Op{Type: OpLoad, Var: v} }
func HeavyFence() Op      { return Op{Type: OpHeavyFence} }
func FullFence() Op       { return Op{Type: OpFullFence} }
func LightFence() Op      { return Op{Type: OpLightFence} }

// Thread is a straight-line op sequence executed by one thread.
type Thread []Op

// Prog is a bounded litmus program. All variables start at zero.
type Prog struct {
	Threads []Thread
	NumVars int
}

// LoadKey identifies a load by thread and program-order index, so
// invariant checks can read results regardless of how the explorer
// reordered the ops.
type LoadKey struct {
	Thread int
	Index  int
}

// Loads maps each executed load to the value it observed.
type Loads map[LoadKey]int

// MessagePassing is the canonical SWMR litmus: the writer publishes
// variable 0 then variable 1 with writerFence between the stores, and
// the reader loads variable 1 then variable 0 with readerFence between
// the loads. The asymmetric visibility invariant is that a reader which
// observed the second store must also observe the first.
func MessagePassing(writerFence, readerFence Op) Prog {
	return Prog{
		Threads: []Thread{
			{Store(0, 1), writerFence, Store(1, 1)},
			{Load(1), readerFence, Load(0)},
		},
		NumVars: 2,
	}
}

// CheckMessagePassing is the invariant for MessagePassing programs:
// seeing v1==1 implies seeing v0==1.
func CheckMessagePassing(loads Loads) error {
	if loads[LoadKey{1, 0}] == 1 && loads[LoadKey{1, 2}] != 1 {
		return fmt.Errorf("reader saw v1=1 but v0=%d", loads[LoadKey{1, 2}])
	}
	return nil
}
