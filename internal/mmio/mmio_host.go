//go:build !tinygo

package mmio

import (
	"sync"
	"sync/atomic"
)

// Register32 is the host stand-in for a memory-mapped 32-bit register. It
// keeps the same single-word layout as the firmware type so register blocks
// have identical offsets on both builds.
type Register32 struct {
	Reg uint32
}

// Hooks model hardware side effects on a host register.
//
// Read sees the stored value and returns what the reader observes. Write sees
// the stored value and the value being written and returns what is stored.
type Hooks struct {
	Read  func(cur uint32) uint32
	Write func(old, v uint32) uint32
}

var (
	hookMu sync.RWMutex
	hooks  = map[*Register32]Hooks{}
)

// Attach installs hooks on r, replacing any previous ones.
func Attach(r *Register32, h Hooks) {
	hookMu.Lock()
	hooks[r] = h
	hookMu.Unlock()
}

// DetachAll removes every installed hook.
func DetachAll() {
	hookMu.Lock()
	hooks = map[*Register32]Hooks{}
	hookMu.Unlock()
}

func hooksFor(r *Register32) (Hooks, bool) {
	hookMu.RLock()
	h, ok := hooks[r]
	hookMu.RUnlock()
	return h, ok
}

func (r *Register32) load() uint32 { return atomic.LoadUint32(&r.Reg) }

func (r *Register32) read() uint32 {
	v := r.load()
	if h, ok := hooksFor(r); ok && h.Read != nil {
		v = h.Read(v)
	}
	record(r, OpRead, v)
	return v
}

func (r *Register32) store(v uint32) {
	stored := v
	if h, ok := hooksFor(r); ok && h.Write != nil {
		stored = h.Write(r.load(), v)
	}
	atomic.StoreUint32(&r.Reg, stored)
	record(r, OpWrite, v)
}

// Get returns the register value.
func (r *Register32) Get() uint32 { return r.read() }

// Set writes v to the register.
func (r *Register32) Set(v uint32) { r.store(v) }

// SetBits sets the bits of v (read-modify-write).
func (r *Register32) SetBits(v uint32) { r.store(r.load() | v) }

// ClearBits clears the bits of v (read-modify-write).
func (r *Register32) ClearBits(v uint32) { r.store(r.load() &^ v) }

// HasBits reports whether any bit of v is set.
func (r *Register32) HasBits(v uint32) bool { return r.read()&v > 0 }

// ReplaceBits replaces the field mask<<pos with value<<pos.
func (r *Register32) ReplaceBits(value uint32, mask uint32, pos uint8) {
	r.store(r.load()&^(mask<<pos) | value<<pos)
}

// Get8 reads the lowest byte.
func (r *Register32) Get8() uint8 { return uint8(r.read()) }

// Set8 writes the lowest byte. The write hook sees the byte zero-extended.
func (r *Register32) Set8(v uint8) { r.store(uint32(v)) }

// Poke stores v without running hooks or recording a trace entry. Simulators
// use it to move hardware-owned status bits.
func (r *Register32) Poke(v uint32) { atomic.StoreUint32(&r.Reg, v) }

// Peek loads the register without running hooks or tracing.
func (r *Register32) Peek() uint32 { return r.load() }
