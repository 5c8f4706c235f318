// Package spi drives SPI1, SPI2 and SUBGHZSPI as full-duplex masters with
// 8-bit frames.
//
// A bus can only be built from pins whose type proves they are routed to
// that instance; anything else fails to compile. Send and Read are the
// non-blocking primitives: each inspects SR once and reports a fault,
// ErrWouldBlock, or success. Fault flags are never cleared by the driver;
// ClearFaults runs the hardware clear sequences when the caller decides to
// recover. The blocking helpers (Write, Transfer, Tx, TransferInPlace) spin
// on the primitives and satisfy io.Writer and tinygo.org/x/drivers.SPI.
package spi

import (
	"io"

	pspi "periph.io/x/conn/v3/spi"
	"tinygo.org/x/drivers"

	"wlhal/errcode"
	"wlhal/gpio"
	"wlhal/pac"
	"wlhal/rcc"
	"wlhal/units"
	"wlhal/x/mathx"
)

// Mode is the clock polarity and phase, optionally with LSBFirst.
type Mode = pspi.Mode

const (
	Mode0    = pspi.Mode0
	Mode1    = pspi.Mode1
	Mode2    = pspi.Mode2
	Mode3    = pspi.Mode3
	LSBFirst = pspi.LSBFirst
)

const (
	ErrOverrun    = errcode.Overrun
	ErrModeFault  = errcode.ModeFault
	ErrCRC        = errcode.CRC
	ErrWouldBlock = errcode.WouldBlock
)

type handle interface {
	pac.SPI1 | pac.SPI2 | pac.SUBGHZSPI
	Ptr() *pac.SPI_Type
}

type busEnable interface {
	Enable(mask uint32)
	Reset(mask uint32)
}

// instance is the per-peripheral data the generic driver needs.
type instance struct {
	name string
	en   uint32
	pclk func(rcc.Clocks) units.Hertz
}

var (
	spi1   = instance{"spi1", pac.RCC_APB2ENR_SPI1EN, rcc.Clocks.PCLK2}
	spi2   = instance{"spi2", pac.RCC_APB1ENR1_SPI2EN, rcc.Clocks.PCLK1}
	subghz = instance{"subghzspi", pac.RCC_APB3ENR_SUBGHZSPIEN, rcc.Clocks.PCLK3}
)

// SPI is a configured bus. H is the peripheral handle, P the pin tuple;
// both come back out of Free.
type SPI[H handle, P any] struct {
	h    H
	regs *pac.SPI_Type
	pins P
	inst instance
}

// NewSPI1 configures SPI1 (APB2, clocked from PCLK2).
func NewSPI1[SCK SPI1SCK, MISO SPI1MISO, MOSI SPI1MOSI, NSS SPI1NSS](
	p pac.SPI1, pins Pins[SCK, MISO, MOSI, NSS], mode Mode, freq units.Hertz, clocks rcc.Clocks, apb *rcc.APB2,
) *SPI[pac.SPI1, Pins[SCK, MISO, MOSI, NSS]] {
	return newSPI(p, pins, hasNSS(pins.NSS), mode, freq, clocks, apb, spi1)
}

// NewSPI2 configures SPI2 (APB1, clocked from PCLK1).
func NewSPI2[SCK SPI2SCK, MISO SPI2MISO, MOSI SPI2MOSI, NSS SPI2NSS](
	p pac.SPI2, pins Pins[SCK, MISO, MOSI, NSS], mode Mode, freq units.Hertz, clocks rcc.Clocks, apb *rcc.APB1,
) *SPI[pac.SPI2, Pins[SCK, MISO, MOSI, NSS]] {
	return newSPI(p, pins, hasNSS(pins.NSS), mode, freq, clocks, apb, spi2)
}

// NewSubGHz configures SUBGHZSPI, the radio's internal bus (APB3, clocked
// from PCLK3).
func NewSubGHz[SCK SubGHzSCK, MISO SubGHzMISO, MOSI SubGHzMOSI, NSS SubGHzNSS](
	p pac.SUBGHZSPI, pins Pins[SCK, MISO, MOSI, NSS], mode Mode, freq units.Hertz, clocks rcc.Clocks, apb *rcc.APB3,
) *SPI[pac.SUBGHZSPI, Pins[SCK, MISO, MOSI, NSS]] {
	return newSPI(p, pins, hasNSS(pins.NSS), mode, freq, clocks, apb, subghz)
}

func newSPI[H handle, P any](h H, pins P, nss bool, mode Mode, freq units.Hertz, clocks rcc.Clocks, bus busEnable, inst instance) *SPI[H, P] {
	regs := h.Ptr()
	if regs == nil {
		panic("spi: zero " + inst.name + " handle")
	}
	if mode&pspi.HalfDuplex != 0 {
		panic("spi: half duplex is not supported")
	}

	bus.Enable(inst.en)
	bus.Reset(inst.en)

	cr2 := uint32(pac.SPI_CR2_FRXTH | 0b0111<<pac.SPI_CR2_DS_Pos)
	if nss {
		cr2 |= pac.SPI_CR2_SSOE
	}
	regs.CR2.Set(cr2)

	cr1 := uint32(pac.SPI_CR1_MSTR|pac.SPI_CR1_SSI) | BaudRateDivider(inst.pclk(clocks), freq)<<pac.SPI_CR1_BR_Pos
	if mode&pspi.Mode1 != 0 {
		cr1 |= pac.SPI_CR1_CPHA
	}
	if mode&pspi.Mode2 != 0 {
		cr1 |= pac.SPI_CR1_CPOL
	}
	if mode&pspi.LSBFirst != 0 {
		cr1 |= pac.SPI_CR1_LSBFIRST
	}
	if !nss {
		cr1 |= pac.SPI_CR1_SSM
	}
	regs.CR1.Set(cr1)
	regs.CR1.SetBits(pac.SPI_CR1_SPE)

	return &SPI[H, P]{h: h, regs: regs, pins: pins, inst: inst}
}

// BaudRateDivider returns the CR1.BR code d whose SCK, bus/2^(d+1), is the
// fastest not above freq. Requests below bus/256 get the /256 setting; a
// freq above the bus clock panics.
func BaudRateDivider(bus, freq units.Hertz) uint32 {
	if freq == 0 {
		panic("spi: zero frequency")
	}
	if bus/freq == 0 {
		panic("spi: frequency above bus clock")
	}
	ratio := mathx.CeilDiv(bus, freq)
	var d uint32
	for d < 7 && units.Hertz(2)<<d < ratio {
		d++
	}
	return d
}

// check maps one SR snapshot to the result of a primitive waiting for
// ready. Faults take precedence in the order OVR, MODF, CRCERR.
func check(sr, ready uint32) error {
	switch {
	case sr&pac.SPI_SR_OVR != 0:
		return ErrOverrun
	case sr&pac.SPI_SR_MODF != 0:
		return ErrModeFault
	case sr&pac.SPI_SR_CRCERR != 0:
		return ErrCRC
	case sr&ready == 0:
		return ErrWouldBlock
	}
	return nil
}

// Send queues b if the transmit buffer has room.
func (s *SPI[H, P]) Send(b byte) error {
	if err := check(s.regs.SR.Get(), pac.SPI_SR_TXE); err != nil {
		return err
	}
	s.regs.DR.Set8(b)
	return nil
}

// Read returns the next received byte if there is one.
func (s *SPI[H, P]) Read() (byte, error) {
	if err := check(s.regs.SR.Get(), pac.SPI_SR_RXNE); err != nil {
		return 0, err
	}
	return s.regs.DR.Get8(), nil
}

func (s *SPI[H, P]) xfer(b byte) (byte, error) {
	for {
		err := s.Send(b)
		if err == nil {
			break
		}
		if err != ErrWouldBlock {
			return 0, err
		}
	}
	for {
		in, err := s.Read()
		if err != ErrWouldBlock {
			return in, err
		}
	}
}

func (s *SPI[H, P]) wrap(op string, err error) error {
	return errcode.Wrap(s.inst.name+"."+op, err)
}

// Write clocks out p, discarding what comes back.
func (s *SPI[H, P]) Write(p []byte) (int, error) {
	for i, b := range p {
		if _, err := s.xfer(b); err != nil {
			return i, s.wrap("write", err)
		}
	}
	return len(p), nil
}

// Transfer clocks out b and returns the byte clocked in.
func (s *SPI[H, P]) Transfer(b byte) (byte, error) {
	in, err := s.xfer(b)
	return in, s.wrap("transfer", err)
}

// Tx clocks out w while filling r. A nil w sends zeros, a nil r discards;
// when both are given they must have the same length.
func (s *SPI[H, P]) Tx(w, r []byte) error {
	n := len(w)
	switch {
	case w == nil:
		n = len(r)
	case r != nil && len(r) != len(w):
		return &errcode.E{C: errcode.InvalidParams, Op: s.inst.name + ".tx", Msg: "read and write buffers differ in length"}
	}
	for i := 0; i < n; i++ {
		var out byte
		if w != nil {
			out = w[i]
		}
		in, err := s.xfer(out)
		if err != nil {
			return s.wrap("tx", err)
		}
		if r != nil {
			r[i] = in
		}
	}
	return nil
}

// TransferInPlace replaces every byte of buf with the byte clocked in while
// it was sent.
func (s *SPI[H, P]) TransferInPlace(buf []byte) error {
	for i, b := range buf {
		in, err := s.xfer(b)
		if err != nil {
			return s.wrap("transfer", err)
		}
		buf[i] = in
	}
	return nil
}

// idle waits until the frame in flight has left the shift register.
func (s *SPI[H, P]) idle() {
	for s.regs.SR.Get()&pac.SPI_SR_BSY != 0 {
	}
}

// Reclock changes the SCK frequency. BR is only sampled while SPE is
// clear, so the peripheral is disabled around the write once the frame in
// flight has finished.
func (s *SPI[H, P]) Reclock(freq units.Hertz, clocks rcc.Clocks) {
	br := BaudRateDivider(s.inst.pclk(clocks), freq)
	s.idle()
	s.regs.CR1.ClearBits(pac.SPI_CR1_SPE)
	s.regs.CR1.ReplaceBits(br, pac.SPI_CR1_BR_Msk, pac.SPI_CR1_BR_Pos)
	s.regs.CR1.SetBits(pac.SPI_CR1_SPE)
}

// ClearFaults runs the clear sequence of every fault flag currently set.
// A mode fault drops the peripheral out of master mode; it is restored.
func (s *SPI[H, P]) ClearFaults() {
	sr := s.regs.SR.Get()
	if sr&pac.SPI_SR_OVR != 0 {
		_ = s.regs.DR.Get8()
		_ = s.regs.SR.Get()
	}
	if sr&pac.SPI_SR_MODF != 0 {
		s.regs.CR1.SetBits(pac.SPI_CR1_MSTR | pac.SPI_CR1_SPE)
	}
	if sr&pac.SPI_SR_CRCERR != 0 {
		s.regs.SR.ClearBits(pac.SPI_SR_CRCERR)
	}
}

// Free waits for the frame in flight, disables the peripheral and hands
// back the handle and pins.
func (s *SPI[H, P]) Free() (H, P) {
	s.idle()
	s.regs.CR1.ClearBits(pac.SPI_CR1_SPE)
	return s.h, s.pins
}

// SubGHzPins is the pin tuple of the radio bus with its debug pads routed.
type SubGHzPins = Pins[
	gpio.Alternate[gpio.A, gpio.P5, gpio.AF13, gpio.PushPull],
	gpio.Alternate[gpio.A, gpio.P6, gpio.AF13, gpio.PushPull],
	gpio.Alternate[gpio.A, gpio.P7, gpio.AF13, gpio.PushPull],
	gpio.Alternate[gpio.A, gpio.P4, gpio.AF13, gpio.PushPull],
]

var (
	_ drivers.SPI = (*SPI[pac.SUBGHZSPI, SubGHzPins])(nil)
	_ io.Writer   = (*SPI[pac.SUBGHZSPI, SubGHzPins])(nil)
)
