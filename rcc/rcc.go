// Package rcc splits the reset and clock control block into bus-enable
// handles and the clock configuration builder.
//
// Peripheral drivers take the bus handle they sit on (gpio takes *AHB2, SPI1
// takes *APB2, ...) and use it to enable and reset their instance. The CFGR
// builder selects the system clock source and prescalers; Freeze commits the
// configuration, programs flash wait states and returns the frozen Clocks.
package rcc

import (
	"wlhal/internal/mmio"
	"wlhal/pac"
)

// Rcc is the constrained RCC peripheral.
type Rcc struct {
	AHB2 AHB2
	APB1 APB1
	APB2 APB2
	APB3 APB3
	CFGR CFGR
}

// Constrain consumes the RCC handle and partitions it.
func Constrain(p pac.RCC) *Rcc {
	r := p.Ptr()
	if r == nil {
		panic("rcc: zero RCC handle")
	}
	return &Rcc{
		AHB2: AHB2{bus{enr: &r.AHB2ENR, rstr: &r.AHB2RSTR}},
		APB1: APB1{bus{enr: &r.APB1ENR1, rstr: &r.APB1RSTR1}},
		APB2: APB2{bus{enr: &r.APB2ENR, rstr: &r.APB2RSTR}},
		APB3: APB3{bus{enr: &r.APB3ENR, rstr: &r.APB3RSTR}},
		CFGR: CFGR{regs: r},
	}
}

// bus is one enable/reset register pair. Bits in the RSTR register sit at
// the same position as in the ENR register.
type bus struct {
	enr  *mmio.Register32
	rstr *mmio.Register32
}

// Enable turns on the clock of every peripheral in mask. The read back
// covers the two-cycle delay before the peripheral registers are usable.
func (b *bus) Enable(mask uint32) {
	b.enr.SetBits(mask)
	_ = b.enr.Get()
}

// Disable gates the clock of every peripheral in mask.
func (b *bus) Disable(mask uint32) { b.enr.ClearBits(mask) }

// IsEnabled reports whether all of mask is clocked.
func (b *bus) IsEnabled(mask uint32) bool { return b.enr.Get()&mask == mask }

// Reset pulses the reset line of every peripheral in mask.
func (b *bus) Reset(mask uint32) {
	b.rstr.SetBits(mask)
	b.rstr.ClearBits(mask)
}

// AHB2 owns AHB2ENR and AHB2RSTR (GPIO ports).
type AHB2 struct{ bus }

// APB1 owns APB1ENR1 and APB1RSTR1 (SPI2 among others).
type APB1 struct{ bus }

// APB2 owns APB2ENR and APB2RSTR (SPI1).
type APB2 struct{ bus }

// APB3 owns APB3ENR and APB3RSTR (SUBGHZSPI).
type APB3 struct{ bus }
