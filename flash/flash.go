// Package flash owns the embedded flash interface registers that the clock
// configurator has to touch.
package flash

import (
	"wlhal/internal/mmio"
	"wlhal/pac"
	"wlhal/units"
	"wlhal/x/mathx"
)

// Unlock keys for FLASH_KEYR.
const (
	KEY1 = 0x4567_0123
	KEY2 = 0xCDEF_89AB
)

// Highest wait-state count the clock configurator programs.
const MaxLatency = 4

// Parts is the split form of the FLASH peripheral.
type Parts struct {
	ACR  ACR
	KEYR KEYR
}

// ACR is the access control register: wait states, prefetch and caches.
type ACR struct {
	regs *pac.FLASH_Type
}

// Constrain consumes the FLASH handle.
func Constrain(p pac.FLASH) *Parts {
	if p.Ptr() == nil {
		panic("flash: zero FLASH handle")
	}
	return &Parts{ACR: ACR{regs: p.Ptr()}, KEYR: KEYR{regs: p.Ptr()}}
}

// Latency returns the programmed wait-state count.
func (a *ACR) Latency() uint8 {
	return uint8(mmio.Field(a.regs.ACR.Get(), pac.FLASH_ACR_LATENCY_Msk, pac.FLASH_ACR_LATENCY_Pos))
}

// SetLatency programs ws wait states. The new value is read back so the
// access that follows is already served with it.
func (a *ACR) SetLatency(ws uint8) {
	if ws > MaxLatency {
		panic("flash: latency out of range")
	}
	a.regs.ACR.ReplaceBits(uint32(ws), pac.FLASH_ACR_LATENCY_Msk, pac.FLASH_ACR_LATENCY_Pos)
	for a.Latency() != ws {
	}
}

// LatencyFor returns the smallest wait-state count rated for hclk. Each wait
// state covers another 16 MHz.
func LatencyFor(hclk units.Hertz) uint8 {
	const step = units.Hertz(16_000_000)
	if hclk <= step {
		return 0
	}
	return uint8(mathx.Min(mathx.CeilDiv(hclk, step)-1, MaxLatency))
}

// KEYR is the program/erase unlock register together with the lock bit in
// FLASH_CR.
type KEYR struct {
	regs *pac.FLASH_Type
}

// Unlock writes the key sequence. A wrong sequence locks the interface until
// the next reset, so the keys are always written as a pair.
func (k *KEYR) Unlock() {
	if !k.IsLocked() {
		return
	}
	k.regs.KEYR.Set(KEY1)
	k.regs.KEYR.Set(KEY2)
}

// Lock sets FLASH_CR.LOCK again.
func (k *KEYR) Lock() { k.regs.CR.SetBits(pac.FLASH_CR_LOCK) }

// IsLocked reports FLASH_CR.LOCK.
func (k *KEYR) IsLocked() bool { return k.regs.CR.HasBits(pac.FLASH_CR_LOCK) }
