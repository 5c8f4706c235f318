//go:build !tinygo

package mmio

import "sync"

type Op uint8

const (
	OpRead Op = iota
	OpWrite
)

func (o Op) String() string {
	if o == OpWrite {
		return "write"
	}
	return "read"
}

// Access is one traced register access. Value is what crossed the bus: the
// value the CPU wrote, or the value a read returned.
type Access struct {
	Reg   *Register32
	Op    Op
	Value uint32
}

// Trace records register accesses in program order while it is active.
type Trace struct {
	mu  sync.Mutex
	acc []Access
}

var (
	traceMu sync.Mutex
	active  *Trace
)

// StartTrace begins recording and returns the recorder. Only one trace is
// active at a time; starting a new one replaces the old one.
func StartTrace() *Trace {
	t := &Trace{}
	traceMu.Lock()
	active = t
	traceMu.Unlock()
	return t
}

// Stop ends recording.
func (t *Trace) Stop() {
	traceMu.Lock()
	if active == t {
		active = nil
	}
	traceMu.Unlock()
}

func record(r *Register32, op Op, v uint32) {
	traceMu.Lock()
	t := active
	traceMu.Unlock()
	if t == nil {
		return
	}
	t.mu.Lock()
	t.acc = append(t.acc, Access{Reg: r, Op: op, Value: v})
	t.mu.Unlock()
}

// Accesses returns a copy of everything recorded so far.
func (t *Trace) Accesses() []Access {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Access(nil), t.acc...)
}

// Writes returns the values written to r, in order.
func (t *Trace) Writes(r *Register32) []uint32 {
	var out []uint32
	for _, a := range t.Accesses() {
		if a.Reg == r && a.Op == OpWrite {
			out = append(out, a.Value)
		}
	}
	return out
}

// FirstWrite returns the position of the first write to r, or -1.
func (t *Trace) FirstWrite(r *Register32) int {
	for i, a := range t.Accesses() {
		if a.Reg == r && a.Op == OpWrite {
			return i
		}
	}
	return -1
}

// FirstWriteWhere returns the position of the first write to r whose value
// satisfies pred, or -1.
func (t *Trace) FirstWriteWhere(r *Register32, pred func(v uint32) bool) int {
	for i, a := range t.Accesses() {
		if a.Reg == r && a.Op == OpWrite && pred(a.Value) {
			return i
		}
	}
	return -1
}

// Reset drops all recorded accesses.
func (t *Trace) Reset() {
	t.mu.Lock()
	t.acc = t.acc[:0]
	t.mu.Unlock()
}
