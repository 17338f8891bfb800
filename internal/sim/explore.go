package sim

import (
	"fmt"
	"strings"
)

// Machine semantics. Each variable carries a global history of committed
// values. Loads are coherent but weak: a thread may observe any history
// entry no older than (a) the newest entry committed at or before the
// thread's visibility horizon and (b) whatever the thread last observed
// for that variable. A thread-local full fence advances the executing
// thread's horizon to the present; a heavy fence advances every
// thread's, which is the broadcast effect membarrier(2) and
// FlushProcessWriteBuffers buy. A light fence only constrains
// reordering (Op.isFence) and leaves the machine untouched.

// entry is one committed value in a variable's history.
type entry struct {
	val  int
	time int
}

// opRef pairs an op with its program-order index in its thread, so load
// results stay addressable after reordering.
type opRef struct {
	op  Op
	idx int
}

// Result summarizes an exploration.
type Result struct {
	Executions int    // executions enumerated before stopping
	Err        error  // first invariant violation, nil if none
	Trace      string // event trace of the violating execution
}

// Explore enumerates every execution of p and applies check to each.
// It stops at the first violation. The per-thread op orders themselves
// range over all reorderings permitted by the fence placement; ops on
// the same variable keep program order (coherence).
func Explore(p Prog, check func(Loads) error) *Result {
	e := &explorer{prog: p, check: check, result: &Result{}}

	perThread := make([][][]opRef, len(p.Threads))
	for tid, t := range p.Threads {
		perThread[tid] = threadOrders(t)
	}
	e.forEachOrderSet(perThread, 0, make([][]opRef, len(p.Threads)))
	return e.result
}

type explorer struct {
	prog   Prog
	check  func(Loads) error
	orders [][]opRef
	result *Result
}

// forEachOrderSet walks the cartesian product of per-thread orders.
func (e *explorer) forEachOrderSet(perThread [][][]opRef, tid int, chosen [][]opRef) {
	if e.result.Err != nil {
		return
	}
	if tid == len(perThread) {
		e.orders = chosen
		e.run(newMachine(e.prog))
		return
	}
	for _, order := range perThread[tid] {
		chosen[tid] = order
		e.forEachOrderSet(perThread, tid+1, chosen)
	}
}

// machine is the execution state at one point of the search tree.
type machine struct {
	step    int
	hist    [][]entry // per variable, index 0 is the initial zero
	horizon []int     // per thread
	seen    [][]int   // per thread per variable, history index floor
	pos     []int     // per thread, next op in its order
	loads   Loads
	trace   []string
}

func newMachine(p Prog) *machine {
	m := &machine{
		hist:    make([][]entry, p.NumVars),
		horizon: make([]int, len(p.Threads)),
		seen:    make([][]int, len(p.Threads)),
		pos:     make([]int, len(p.Threads)),
		loads:   make(Loads),
	}
	for v := range m.hist {
		m.hist[v] = []entry{{val: 0, time: 0}}
	}
	for t := range m.seen {
		m.seen[t] = make([]int, p.NumVars)
	}
	return m
}

func (m *machine) clone() *machine {
	c := &machine{
		step:    m.step,
		hist:    make([][]entry, len(m.hist)),
		horizon: append([]int(nil), m.horizon...),
		seen:    make([][]int, len(m.seen)),
		pos:     append([]int(nil), m.pos...),
		loads:   make(Loads, len(m.loads)),
		trace:   append([]string(nil), m.trace...),
	}
	for v := range m.hist {
		c.hist[v] = append([]entry(nil), m.hist[v]...)
	}
	for t := range m.seen {
		c.seen[t] = append([]int(nil), m.seen[t]...)
	}
	for k, v := range m.loads {
		c.loads[k] = v
	}
	return c
}

// run explores all interleavings and weak load choices from state m.
func (e *explorer) run(m *machine) {
	if e.result.Err != nil {
		return
	}

	done := true
	for tid := range e.orders {
		if m.pos[tid] < len(e.orders[tid]) {
			done = false
			break
		}
	}
	if done {
		e.result.Executions++
		if err := e.check(m.loads); err != nil {
			e.result.Err = err
			e.result.Trace = strings.Join(m.trace, "; ")
		}
		return
	}

	for tid := range e.orders {
		if m.pos[tid] >= len(e.orders[tid]) {
			continue
		}
		ref := e.orders[tid][m.pos[tid]]

		switch ref.op.Type {
		case OpLoad:
			for _, i := range m.visible(tid, ref.op.Var) {
				c := m.clone()
				c.applyLoad(tid, ref, i)
				e.run(c)
				if e.result.Err != nil {
					return
				}
			}
		default:
			c := m.clone()
			c.apply(tid, ref)
			e.run(c)
			if e.result.Err != nil {
				return
			}
		}
	}
}

// visible returns the history indices a load of v by thread tid may
// observe.
func (m *machine) visible(tid, v int) []int {
	h := m.hist[v]
	floor := 0
	for i, en := range h {
		if en.time <= m.horizon[tid] {
			floor = i
		}
	}
	if s := m.seen[tid][v]; s > floor {
		floor = s
	}
	idxs := make([]int, 0, len(h)-floor)
	for i := floor; i < len(h); i++ {
		idxs = append(idxs, i)
	}
	return idxs
}

func (m *machine) applyLoad(tid int, ref opRef, histIdx int) {
	m.step++
	val := m.hist[ref.op.Var][histIdx].val
	m.seen[tid][ref.op.Var] = histIdx
	m.loads[LoadKey{Thread: tid, Index: ref.idx}] = val
	m.trace = append(m.trace, fmt.Sprintf("t%d:%s=%d", tid, ref.op, val))
	m.pos[tid]++
}

func (m *machine) apply(tid int, ref opRef) {
	m.step++
	switch ref.op.Type {
	case OpStore:
		m.hist[ref.op.Var] = append(m.hist[ref.op.Var], entry{val: ref.op.Val, time: m.step})
	case OpHeavyFence:
		for t := range m.horizon {
			m.horizon[t] = m.step
		}
	case OpFullFence:
		m.horizon[tid] = m.step
	case OpLightFence:
		// Reorder constraint only.
	}
	m.trace = append(m.trace, fmt.Sprintf("t%d:%s", tid, ref.op))
	m.pos[tid]++
}

// threadOrders returns every execution order of t the hardware may
// produce: linear extensions of the partial order in which fences are
// ordered against everything and same-variable ops keep program order.
func threadOrders(t Thread) [][]opRef {
	refs := make([]opRef, len(t))
	for i, op := range t {
		refs[i] = opRef{op: op, idx: i}
	}

	prec := func(a, b opRef) bool {
		if a.idx >= b.idx {
			return false
		}
		if a.op.isFence() || b.op.isFence() {
			return true
		}
		if a.op.Var == b.op.Var {
			return true
		}
		return false
	}

	var out [][]opRef
	placed := make([]bool, len(refs))
	cur := make([]opRef, 0, len(refs))

	var rec func()
	rec = func() {
		if len(cur) == len(refs) {
			out = append(out, append([]opRef(nil), cur...))
			return
		}
		for i, r := range refs {
			if placed[i] {
				continue
			}
			ready := true
			for j, q := range refs {
				if j != i && !placed[j] && prec(q, r) {
					ready = false
					break
				}
			}
			if !ready {
				continue
			}
			placed[i] = true
			cur = append(cur, r)
			rec()
			cur = cur[:len(cur)-1]
			placed[i] = false
		}
	}
	rec()
	return out
}
