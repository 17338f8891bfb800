package sim

import (
	"fmt"
	"testing"
)

// Every strategy pairing the dispatcher can select must uphold the
// asymmetric visibility invariant in every interleaving.
func TestMessagePassingAllStrategies(t *testing.T) {
	tests := []struct {
		name        string
		writerFence Op
		readerFence Op
	}{
		{"os assisted: heavy writer, compiler-only reader", HeavyFence(), LightFence()},
		{"unsupported: full fence both sides", FullFence(), FullFence()},
		{"heavy writer with full-fence reader", HeavyFence(), FullFence()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Explore(MessagePassing(tt.writerFence, tt.readerFence), CheckMessagePassing)
			if res.Err != nil {
				t.Errorf("Invariant violated: %v\ntrace: %s", res.Err, res.Trace)
			}
			if res.Executions == 0 {
				t.Error("Explorer enumerated no executions")
			}
		})
	}
}

// Removing the reader's fence must let the explorer find the load
// reordering that breaks the invariant. This is the model-power check:
// a model that cannot fail cannot prove anything.
func TestMessagePassingReaderFenceRequired(t *testing.T) {
	p := Prog{
		Threads: []Thread{
			{Store(0, 1), HeavyFence(), Store(1, 1)},
			{Load(1), Load(0)},
		},
		NumVars: 2,
	}
	check := func(loads Loads) error {
		if loads[LoadKey{1, 0}] == 1 && loads[LoadKey{1, 1}] != 1 {
			return fmt.Errorf("saw v1=1 but v0=%d", loads[LoadKey{1, 1}])
		}
		return nil
	}

	res := Explore(p, check)
	if res.Err == nil {
		t.Error("Expected a violation without the reader fence, explorer found none")
	}
}

// A thread-local full fence on the writer must not be enough to pair
// with a compiler-only reader: the reader may still observe stale
// values because no fence ever executed on its own thread.
func TestMessagePassingLocalWriterFenceInsufficient(t *testing.T) {
	res := Explore(MessagePassing(FullFence(), LightFence()), CheckMessagePassing)
	if res.Err == nil {
		t.Error("Expected a stale-read violation with a thread-local writer fence, explorer found none")
	}
}

// With no fences at all the litmus must fail.
func TestMessagePassingNoFences(t *testing.T) {
	p := Prog{
		Threads: []Thread{
			{Store(0, 1), Store(1, 1)},
			{Load(1), Load(0)},
		},
		NumVars: 2,
	}
	check := func(loads Loads) error {
		if loads[LoadKey{1, 0}] == 1 && loads[LoadKey{1, 1}] != 1 {
			return fmt.Errorf("saw v1=1 but v0=%d", loads[LoadKey{1, 1}])
		}
		return nil
	}

	res := Explore(p, check)
	if res.Err == nil {
		t.Error("Expected a violation with no fences, explorer found none")
	}
}

// Two readers: the SWMR shape. Both readers must observe the invariant
// independently.
func TestMessagePassingTwoReaders(t *testing.T) {
	reader := Thread{Load(1), LightFence(), Load(0)}
	p := Prog{
		Threads: []Thread{
			{Store(0, 1), HeavyFence(), Store(1, 1)},
			reader,
			reader,
		},
		NumVars: 2,
	}
	check := func(loads Loads) error {
		for _, tid := range []int{1, 2} {
			if loads[LoadKey{tid, 0}] == 1 && loads[LoadKey{tid, 2}] != 1 {
				return fmt.Errorf("reader %d saw v1=1 but v0=%d", tid, loads[LoadKey{tid, 2}])
			}
		}
		return nil
	}

	res := Explore(p, check)
	if res.Err != nil {
		t.Errorf("Invariant violated: %v\ntrace: %s", res.Err, res.Trace)
	}
}

// Chained publication: store a, heavy, store b, heavy, store c. A
// reader walking back from c with light fences must see the whole
// chain.
func TestMultiVariableChain(t *testing.T) {
	p := Prog{
		Threads: []Thread{
			{Store(0, 1), HeavyFence(), Store(1, 1), HeavyFence(), Store(2, 1)},
			{Load(2), LightFence(), Load(1), LightFence(), Load(0)},
		},
		NumVars: 3,
	}
	check := func(loads Loads) error {
		c := loads[LoadKey{1, 0}]
		b := loads[LoadKey{1, 2}]
		a := loads[LoadKey{1, 4}]
		if c == 1 && (b != 1 || a != 1) {
			return fmt.Errorf("saw c=1 but b=%d a=%d", b, a)
		}
		if b == 1 && a != 1 {
			return fmt.Errorf("saw b=1 but a=%d", a)
		}
		return nil
	}

	res := Explore(p, check)
	if res.Err != nil {
		t.Errorf("Invariant violated: %v\ntrace: %s", res.Err, res.Trace)
	}
}

// Loads of the same variable on one thread stay coherent: a thread
// never observes an older value after a newer one.
func TestCoherentReads(t *testing.T) {
	p := Prog{
		Threads: []Thread{
			{Store(0, 1)},
			{Load(0), Load(0)},
		},
		NumVars: 1,
	}
	check := func(loads Loads) error {
		if loads[LoadKey{1, 0}] == 1 && loads[LoadKey{1, 1}] == 0 {
			return fmt.Errorf("read went backwards: 1 then 0")
		}
		return nil
	}

	res := Explore(p, check)
	if res.Err != nil {
		t.Errorf("Coherence violated: %v\ntrace: %s", res.Err, res.Trace)
	}
}

func TestThreadOrders(t *testing.T) {
	// Two independent loads may reorder: two orders.
	free := Thread{Load(0), Load(1)}
	if got := len(threadOrders(free)); got != 2 {
		t.Errorf("Expected 2 orders for fence-free independent loads, got %d", got)
	}

	// A fence between them pins the order.
	pinned := Thread{Load(0), LightFence(), Load(1)}
	if got := len(threadOrders(pinned)); got != 1 {
		t.Errorf("Expected 1 order with a fence between loads, got %d", got)
	}

	// Same-variable ops keep program order even without a fence.
	sameVar := Thread{Store(0, 1), Load(0)}
	if got := len(threadOrders(sameVar)); got != 1 {
		t.Errorf("Expected 1 order for same-variable ops, got %d", got)
	}
}

func TestExploreCountsExecutions(t *testing.T) {
	res := Explore(MessagePassing(HeavyFence(), LightFence()), CheckMessagePassing)
	// 3+3 ops across two pinned threads interleave in C(6,3)=20 ways,
	// and weak load choices multiply on top.
	if res.Executions < 20 {
		t.Errorf("Expected at least 20 executions, got %d", res.Executions)
	}
}

func TestOpString(t *testing.T) {
	cases := map[string]Op{
		"store(v0,1)": Store(0, 1),
		"load(v1)":    Load(1),
		"heavy":       HeavyFence(),
		"full":        FullFence(),
		"light":       LightFence(),
	}
	for want, op := range cases {
		if op.String() != want {
			t.Errorf("Expected %q, got %q", want, op.String())
		}
	}
}
