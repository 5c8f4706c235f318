//go:build !tinygo

package pactest

import (
	"wlhal/internal/mmio"
	"wlhal/pac"
)

// SPIBus models one SPI instance in master mode with an 8-bit frame and a
// single-frame FIFO.
//
// A byte written to DR while SPE is set is shifted out: it is appended to
// Sent, Respond picks the byte clocked in, and after Busy status reads both
// TXE and RXNE come up together. Writing another frame while the previous
// one is still unread in DR raises OVR.
type SPIBus struct {
	regs *pac.SPI_Type

	Sent    []byte
	Respond func(out byte) byte
	Busy    int

	rx       byte
	inflight bool
	pending  int

	ovrArmed  bool
	modfArmed bool
}

func newSPIBus(r *pac.SPI_Type) *SPIBus {
	b := &SPIBus{regs: r}
	b.reset()

	mmio.Attach(&r.DR, mmio.Hooks{
		Write: func(old, v uint32) uint32 {
			b.shift(uint8(v))
			return old
		},
		Read: func(uint32) uint32 {
			sr := r.SR.Peek()
			if sr&pac.SPI_SR_OVR != 0 {
				b.ovrArmed = true
			}
			r.SR.Poke(sr &^ pac.SPI_SR_RXNE)
			return uint32(b.rx)
		},
	})
	mmio.Attach(&r.SR, mmio.Hooks{
		Read: func(cur uint32) uint32 { return b.status(cur) },
		// Only CRCERR is writable, and only towards zero.
		Write: func(old, v uint32) uint32 {
			return old&^pac.SPI_SR_CRCERR | old&v&pac.SPI_SR_CRCERR
		},
	})
	mmio.Attach(&r.CR1, mmio.Hooks{
		Write: func(_, v uint32) uint32 {
			if b.modfArmed {
				r.SR.Poke(r.SR.Peek() &^ pac.SPI_SR_MODF)
				b.modfArmed = false
			}
			return v
		},
	})
	return b
}

func (b *SPIBus) reset() {
	r := b.regs
	r.CR1.Poke(0)
	r.CR2.Poke(pac.SPI_CR2_RESET_VALUE)
	r.SR.Poke(pac.SPI_SR_RESET_VALUE)
	r.DR.Poke(0)
	r.CRCPR.Poke(7)
	r.RXCRCR.Poke(0)
	r.TXCRCR.Poke(0)
	b.Sent = nil
	b.rx, b.inflight, b.pending = 0, false, 0
	b.ovrArmed, b.modfArmed = false, false
}

func (b *SPIBus) shift(out byte) {
	r := b.regs
	if r.CR1.Peek()&pac.SPI_CR1_SPE == 0 {
		return
	}
	sr := r.SR.Peek()
	if sr&pac.SPI_SR_RXNE != 0 {
		r.SR.Poke(sr | pac.SPI_SR_OVR)
	}
	b.Sent = append(b.Sent, out)
	in := out
	if b.Respond != nil {
		in = b.Respond(out)
	}
	b.rx = in
	b.inflight = true
	b.pending = b.Busy
	r.SR.Poke(r.SR.Peek()&^(pac.SPI_SR_TXE|pac.SPI_SR_RXNE) | pac.SPI_SR_BSY)
}

func (b *SPIBus) status(cur uint32) uint32 {
	if b.ovrArmed {
		b.ovrArmed = false
		cur &^= pac.SPI_SR_OVR
		b.regs.SR.Poke(cur)
	}
	if cur&pac.SPI_SR_MODF != 0 {
		b.modfArmed = true
	}
	if !b.inflight {
		return cur
	}
	if b.pending > 0 {
		b.pending--
		return cur
	}
	b.inflight = false
	cur = cur&^pac.SPI_SR_BSY | pac.SPI_SR_TXE | pac.SPI_SR_RXNE
	b.regs.SR.Poke(cur)
	return cur
}

// Inject raises status flags (OVR, MODF, CRCERR, ...) as hardware would.
func (b *SPIBus) Inject(flags uint32) {
	b.regs.SR.Poke(b.regs.SR.Peek() | flags)
}
