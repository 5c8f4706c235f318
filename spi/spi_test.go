//go:build !tinygo

package spi

import (
	"errors"
	"testing"

	pspi "periph.io/x/conn/v3/spi"

	"wlhal/errcode"
	"wlhal/flash"
	"wlhal/gpio"
	"wlhal/internal/mmio"
	"wlhal/pac"
	"wlhal/pac/pactest"
	"wlhal/rcc"
	"wlhal/units"
)

type spi1Pins = Pins[gpio.Alternate[gpio.A, gpio.P5, gpio.AF5, gpio.PushPull], gpio.Alternate[gpio.A, gpio.P6, gpio.AF5, gpio.PushPull], gpio.Alternate[gpio.A, gpio.P7, gpio.AF5, gpio.PushPull], NoNSS]

// bring resets the simulator and freezes the clock tree with cfg applied.
func bring(t *testing.T, cfg func(*rcc.CFGR) *rcc.CFGR) (*pactest.Sim, *rcc.Rcc, rcc.Clocks) {
	t.Helper()
	sim := pactest.New(t)
	r := rcc.Constrain(sim.P.RCC)
	fl := flash.Constrain(sim.P.FLASH)
	c := &r.CFGR
	if cfg != nil {
		c = cfg(c)
	}
	return sim, r, c.Freeze(&fl.ACR)
}

func spi1Bus(t *testing.T, mode Mode, freq units.Hertz) (*pactest.Sim, *SPI[pac.SPI1, spi1Pins]) {
	t.Helper()
	sim, r, clocks := bring(t, nil)
	pa := gpio.SplitA(sim.P.GPIOA, &r.AHB2)
	sck := gpio.IntoAF[gpio.AF5](pa.PA5, &pa.MODER, &pa.OTYPER, &pa.AFRL)
	miso := gpio.IntoAF[gpio.AF5](pa.PA6, &pa.MODER, &pa.OTYPER, &pa.AFRL)
	mosi := gpio.IntoAF[gpio.AF5](pa.PA7, &pa.MODER, &pa.OTYPER, &pa.AFRL)
	return sim, NewSPI1(sim.P.SPI1, NewPins(sck, miso, mosi, NoNSS{}), mode, freq, clocks, &r.APB2)
}

func TestBaudRateDivider(t *testing.T) {
	cases := []struct {
		bus, freq units.Hertz
		want      uint32
	}{
		{80e6, 500e3, 0b111},
		{80e6, 40e6, 0b000},
		{16e6, 16e6, 0b000},
		{16e6, 8e6, 0b000},
		{16e6, 5e6, 0b001},
		{16e6, 4e6, 0b001},
		{16e6, 3e6, 0b010},
		{16e6, 1e6, 0b011},
		{48e6, 100e3, 0b111},
		{32e6, 250e3, 0b110},
	}
	for _, c := range cases {
		if got := BaudRateDivider(c.bus, c.freq); got != c.want {
			t.Fatalf("BaudRateDivider(%v, %v) = %03b, want %03b", c.bus, c.freq, got, c.want)
		}
	}
}

func TestBaudRateNeverExceedsRequest(t *testing.T) {
	const bus = units.Hertz(48e6)
	for freq := units.Hertz(200e3); freq <= bus; freq += 137e3 {
		d := BaudRateDivider(bus, freq)
		sck := bus >> (d + 1)
		if sck > freq {
			t.Fatalf("freq %v: code %d gives %v, above request", freq, d, sck)
		}
		if d > 0 && bus>>d <= freq {
			t.Fatalf("freq %v: code %d is not the fastest legal setting", freq, d)
		}
	}
}

func TestBaudRateDividerPanics(t *testing.T) {
	for _, c := range [][2]units.Hertz{{16e6, 32e6}, {16e6, 0}} {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("BaudRateDivider(%v, %v): expected panic", c[0], c[1])
				}
			}()
			BaudRateDivider(c[0], c[1])
		}()
	}
}

func TestNewSPI1WithoutNSS(t *testing.T) {
	sim, _ := spi1Bus(t, Mode3, units.MHz(1))
	regs := sim.P.SPI1.Ptr()
	rregs := sim.P.RCC.Ptr()

	if rregs.APB2ENR.Peek()&pac.RCC_APB2ENR_SPI1EN == 0 {
		t.Fatal("SPI1 clock not enabled")
	}
	if n := sim.RCC.PulseCount(&rregs.APB2RSTR, pac.RCC_APB2ENR_SPI1EN); n != 1 {
		t.Fatalf("reset pulses = %d, want 1", n)
	}
	if got, want := regs.CR2.Peek(), uint32(pac.SPI_CR2_FRXTH|0b0111<<pac.SPI_CR2_DS_Pos); got != want {
		t.Fatalf("CR2 = %#x, want %#x", got, want)
	}
	want := uint32(pac.SPI_CR1_MSTR | pac.SPI_CR1_SSI | pac.SPI_CR1_SSM |
		pac.SPI_CR1_CPHA | pac.SPI_CR1_CPOL | pac.SPI_CR1_SPE | 0b011<<pac.SPI_CR1_BR_Pos)
	if got := regs.CR1.Peek(); got != want {
		t.Fatalf("CR1 = %#x, want %#x", got, want)
	}
}

func TestNewSPI2WithNSS(t *testing.T) {
	sim, r, clocks := bring(t, nil)
	pb := gpio.SplitB(sim.P.GPIOB, &r.AHB2)
	sck := gpio.IntoAF[gpio.AF5](pb.PB13, &pb.MODER, &pb.OTYPER, &pb.AFRH)
	miso := gpio.IntoAF[gpio.AF5](pb.PB14, &pb.MODER, &pb.OTYPER, &pb.AFRH)
	mosi := gpio.IntoAF[gpio.AF5](pb.PB15, &pb.MODER, &pb.OTYPER, &pb.AFRH)
	od := gpio.IntoOpenDrainOutput(pb.PB12, &pb.MODER, &pb.OTYPER)
	nss := gpio.IntoAF[gpio.AF5](od, &pb.MODER, &pb.OTYPER, &pb.AFRH)

	NewSPI2(sim.P.SPI2, NewPins(sck, miso, mosi, nss), Mode0, units.MHz(8), clocks, &r.APB1)

	regs := sim.P.SPI2.Ptr()
	rregs := sim.P.RCC.Ptr()
	if rregs.APB1ENR1.Peek()&pac.RCC_APB1ENR1_SPI2EN == 0 {
		t.Fatal("SPI2 clock not enabled")
	}
	if n := sim.RCC.PulseCount(&rregs.APB1RSTR1, pac.RCC_APB1ENR1_SPI2EN); n != 1 {
		t.Fatalf("reset pulses = %d, want 1", n)
	}
	if regs.CR2.Peek()&pac.SPI_CR2_SSOE == 0 {
		t.Fatal("SSOE must be set when an NSS pin is supplied")
	}
	want := uint32(pac.SPI_CR1_MSTR | pac.SPI_CR1_SSI | pac.SPI_CR1_SPE)
	if got := regs.CR1.Peek(); got != want {
		t.Fatalf("CR1 = %#x, want %#x", got, want)
	}
	if got := (sim.P.GPIOB.Ptr().AFRH.Peek() >> (4 * (12 - 8))) & 0xF; got != 5 {
		t.Fatalf("PB12 AF = %d, want 5", got)
	}
	if sim.P.GPIOB.Ptr().OTYPER.Peek()&(1<<12) != 0 {
		t.Fatal("PB12 kept its open-drain stage as a push-pull NSS")
	}
}

func TestEnableIsLastWrite(t *testing.T) {
	tr := mmio.StartTrace()
	defer tr.Stop()
	sim, _ := spi1Bus(t, Mode0, units.MHz(2))
	regs := sim.P.SPI1.Ptr()

	w := tr.Writes(&regs.CR1)
	if len(w) < 2 {
		t.Fatalf("CR1 writes = %d, want at least 2", len(w))
	}
	for _, v := range w[:len(w)-1] {
		if v&pac.SPI_CR1_SPE != 0 {
			t.Fatalf("SPE set before the final write: %#x", v)
		}
	}
	if w[len(w)-1]&pac.SPI_CR1_SPE == 0 {
		t.Fatal("final CR1 write must set SPE")
	}
	if cr2, spe := tr.FirstWrite(&regs.CR2), tr.FirstWriteWhere(&regs.CR1, func(v uint32) bool { return v&pac.SPI_CR1_SPE != 0 }); cr2 > spe {
		t.Fatalf("CR2 written at %d, after enable at %d", cr2, spe)
	}
}

func TestLSBFirst(t *testing.T) {
	sim, _ := spi1Bus(t, Mode0|LSBFirst, units.MHz(1))
	if sim.P.SPI1.Ptr().CR1.Peek()&pac.SPI_CR1_LSBFIRST == 0 {
		t.Fatal("LSBFIRST not set")
	}
}

func TestHalfDuplexPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for half duplex")
		}
	}()
	spi1Bus(t, Mode0|pspi.HalfDuplex, units.MHz(1))
}

func TestZeroHandlePanics(t *testing.T) {
	_, r, clocks := bring(t, nil)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	NewSPI1(pac.SPI1{}, spi1Pins{}, Mode0, units.MHz(1), clocks, &r.APB2)
}

func TestStatusPrecedence(t *testing.T) {
	sim, s := spi1Bus(t, Mode0, units.MHz(1))
	sr := &sim.P.SPI1.Ptr().SR

	cases := []struct {
		sr   uint32
		want error
	}{
		{pac.SPI_SR_OVR | pac.SPI_SR_MODF | pac.SPI_SR_CRCERR | pac.SPI_SR_TXE | pac.SPI_SR_RXNE, ErrOverrun},
		{pac.SPI_SR_MODF | pac.SPI_SR_CRCERR | pac.SPI_SR_TXE | pac.SPI_SR_RXNE, ErrModeFault},
		{pac.SPI_SR_CRCERR | pac.SPI_SR_TXE | pac.SPI_SR_RXNE, ErrCRC},
		{0, ErrWouldBlock},
	}
	for _, c := range cases {
		sr.Poke(c.sr)
		if err := s.Send(0xAA); err != c.want {
			t.Fatalf("Send with SR=%#x: got %v, want %v", c.sr, err, c.want)
		}
		if _, err := s.Read(); err != c.want {
			t.Fatalf("Read with SR=%#x: got %v, want %v", c.sr, err, c.want)
		}
		if got := sr.Peek(); got != c.sr {
			t.Fatalf("SR changed from %#x to %#x; faults must not be cleared", c.sr, got)
		}
	}
	if len(sim.SPI1.Sent) != 0 {
		t.Fatalf("DR written while not ready: %v", sim.SPI1.Sent)
	}
}

func TestSendReadWouldBlockWhileBusy(t *testing.T) {
	sim, s := spi1Bus(t, Mode0, units.MHz(1))
	sim.SPI1.Busy = 2
	sim.SPI1.Respond = func(b byte) byte { return b + 1 }

	if err := s.Send(0x41); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := s.Send(0x42); err != ErrWouldBlock {
		t.Fatalf("second Send = %v, want would block", err)
	}
	if _, err := s.Read(); err != ErrWouldBlock {
		t.Fatalf("Read = %v, want would block", err)
	}
	b, err := s.Read()
	if err != nil || b != 0x42 {
		t.Fatalf("Read = %#x, %v; want 0x42", b, err)
	}
	if !errcode.Retryable(ErrWouldBlock) {
		t.Fatal("would block must be retryable")
	}
}

func TestWriteHello(t *testing.T) {
	sim, s := spi1Bus(t, Mode0, units.MHz(1))
	sim.SPI1.Busy = 3
	regs := sim.P.SPI1.Ptr()

	tr := mmio.StartTrace()
	defer tr.Stop()
	n, err := s.Write([]byte("Hello"))
	if err != nil || n != 5 {
		t.Fatalf("Write = %d, %v", n, err)
	}
	if string(sim.SPI1.Sent) != "Hello" {
		t.Fatalf("sent %q", sim.SPI1.Sent)
	}
	w := tr.Writes(&regs.DR)
	if len(w) != 5 {
		t.Fatalf("DR writes = %d, want 5", len(w))
	}
	for i, v := range w {
		if byte(v) != "Hello"[i] {
			t.Fatalf("DR write %d = %q, want %q", i, byte(v), "Hello"[i])
		}
	}
	var reads int
	for _, a := range tr.Accesses() {
		if a.Reg == &regs.SR && a.Op == mmio.OpRead {
			reads++
		}
	}
	// One check per send and read, plus Busy polls per byte.
	if reads < 5*(2+3) {
		t.Fatalf("SR reads = %d, driver did not poll", reads)
	}
	if regs.SR.Peek()&pac.SPI_SR_OVR != 0 {
		t.Fatal("Write left an overrun behind")
	}
}

func TestTransferAndTx(t *testing.T) {
	sim, s := spi1Bus(t, Mode0, units.MHz(1))
	sim.SPI1.Respond = func(b byte) byte { return ^b }

	in, err := s.Transfer(0x0F)
	if err != nil || in != 0xF0 {
		t.Fatalf("Transfer = %#x, %v", in, err)
	}

	r := make([]byte, 3)
	if err := s.Tx([]byte{1, 2, 3}, r); err != nil {
		t.Fatalf("Tx: %v", err)
	}
	if r[0] != ^byte(1) || r[1] != ^byte(2) || r[2] != ^byte(3) {
		t.Fatalf("Tx read %v", r)
	}

	sim.SPI1.Sent = nil
	r = make([]byte, 2)
	if err := s.Tx(nil, r); err != nil {
		t.Fatalf("Tx(nil, r): %v", err)
	}
	if string(sim.SPI1.Sent) != "\x00\x00" || r[0] != 0xFF {
		t.Fatalf("Tx(nil, r) sent %v read %v", sim.SPI1.Sent, r)
	}

	if err := s.Tx([]byte{9}, nil); err != nil {
		t.Fatalf("Tx(w, nil): %v", err)
	}

	sim.SPI1.Sent = nil
	err = s.Tx([]byte{1, 2}, make([]byte, 3))
	if !errors.Is(err, errcode.InvalidParams) {
		t.Fatalf("length mismatch = %v, want invalid_params", err)
	}
	if len(sim.SPI1.Sent) != 0 {
		t.Fatal("mismatched Tx must not clock anything")
	}

	buf := []byte{0x00, 0x55}
	if err := s.TransferInPlace(buf); err != nil || buf[0] != 0xFF || buf[1] != 0xAA {
		t.Fatalf("TransferInPlace = %v, %v", buf, err)
	}
}

func TestFaultsAreReportedAndCleared(t *testing.T) {
	sim, s := spi1Bus(t, Mode0, units.MHz(1))
	regs := sim.P.SPI1.Ptr()

	for _, c := range []struct {
		flag uint32
		want errcode.Code
	}{
		{pac.SPI_SR_OVR, errcode.Overrun},
		{pac.SPI_SR_MODF, errcode.ModeFault},
		{pac.SPI_SR_CRCERR, errcode.CRC},
	} {
		sim.SPI1.Inject(c.flag)
		n, err := s.Write([]byte{1, 2})
		if n != 0 || !errors.Is(err, c.want) || errcode.Of(err) != c.want {
			t.Fatalf("Write with %s = %d, %v", c.want, n, err)
		}
		if got := err.Error(); got != "spi1.write: "+string(c.want) {
			t.Fatalf("Error() = %q", got)
		}
		if _, err := s.Transfer(0); !errors.Is(err, c.want) {
			t.Fatalf("fault %s was cleared by the driver", c.want)
		}

		s.ClearFaults()
		if regs.SR.Peek()&c.flag != 0 {
			t.Fatalf("ClearFaults left %s set", c.want)
		}
		if regs.CR1.Peek()&(pac.SPI_CR1_MSTR|pac.SPI_CR1_SPE) != pac.SPI_CR1_MSTR|pac.SPI_CR1_SPE {
			t.Fatalf("after %s: CR1 = %#x, not an enabled master", c.want, regs.CR1.Peek())
		}
		if _, err := s.Write([]byte{3}); err != nil {
			t.Fatalf("Write after clearing %s: %v", c.want, err)
		}
	}
}

func TestReclockOrdering(t *testing.T) {
	sim, s := spi1Bus(t, Mode0, units.MHz(8))
	regs := sim.P.SPI1.Ptr()
	setup, err := rcc.Plan(rcc.Config{})
	if err != nil {
		t.Fatal(err)
	}
	clocks := setup.Clocks

	tr := mmio.StartTrace()
	defer tr.Stop()
	s.Reclock(units.KHz(500), clocks)

	w := tr.Writes(&regs.CR1)
	if len(w) != 3 {
		t.Fatalf("CR1 writes = %d, want 3", len(w))
	}
	br := func(v uint32) uint32 { return mmio.Field(v, pac.SPI_CR1_BR_Msk, pac.SPI_CR1_BR_Pos) }
	if w[0]&pac.SPI_CR1_SPE != 0 || br(w[0]) != 0b000 {
		t.Fatalf("first write %#x must clear SPE and keep the old BR", w[0])
	}
	if w[1]&pac.SPI_CR1_SPE != 0 || br(w[1]) != 0b100 {
		t.Fatalf("second write %#x must set BR with SPE clear", w[1])
	}
	if w[2]&pac.SPI_CR1_SPE == 0 || br(w[2]) != 0b100 {
		t.Fatalf("third write %#x must re-enable", w[2])
	}
}

func TestSPI1ClockedFromPCLK2(t *testing.T) {
	sim, r, clocks := bring(t, func(c *rcc.CFGR) *rcc.CFGR { return c.PCLK2Divider(4) })
	if clocks.PCLK2() != units.MHz(4) || clocks.PCLK1() != units.MHz(16) {
		t.Fatalf("clocks = %v", clocks)
	}
	pa := gpio.SplitA(sim.P.GPIOA, &r.AHB2)
	pb := gpio.SplitB(sim.P.GPIOB, &r.AHB2)
	sck := gpio.IntoAF[gpio.AF5](pb.PB3, &pb.MODER, &pb.OTYPER, &pb.AFRL)
	miso := gpio.IntoAF[gpio.AF5](pb.PB4, &pb.MODER, &pb.OTYPER, &pb.AFRL)
	mosi := gpio.IntoAF[gpio.AF5](pa.PA12, &pa.MODER, &pa.OTYPER, &pa.AFRH)
	NewSPI1(sim.P.SPI1, NewPins(sck, miso, mosi, NoNSS{}), Mode0, units.MHz(1), clocks, &r.APB2)

	br := mmio.Field(sim.P.SPI1.Ptr().CR1.Peek(), pac.SPI_CR1_BR_Msk, pac.SPI_CR1_BR_Pos)
	if br != 0b001 {
		t.Fatalf("BR = %03b, want 001 (4MHz/4)", br)
	}
}

func TestSubGHzClockedFromPCLK3(t *testing.T) {
	sim, r, clocks := bring(t, func(c *rcc.CFGR) *rcc.CFGR {
		return c.HCLKDivider(2).PCLK1Divider(2).PCLK2Divider(2)
	})
	if clocks.PCLK3() != units.MHz(8) || clocks.PCLK2() != units.MHz(4) {
		t.Fatalf("clocks = %v", clocks)
	}
	pa := gpio.SplitA(sim.P.GPIOA, &r.AHB2)
	sck := gpio.IntoAF[gpio.AF13](pa.PA5, &pa.MODER, &pa.OTYPER, &pa.AFRL)
	miso := gpio.IntoAF[gpio.AF13](pa.PA6, &pa.MODER, &pa.OTYPER, &pa.AFRL)
	mosi := gpio.IntoAF[gpio.AF13](pa.PA7, &pa.MODER, &pa.OTYPER, &pa.AFRL)
	s := NewSubGHz(sim.P.SUBGHZSPI, NewPins(sck, miso, mosi, NoNSS{}), Mode0, units.MHz(1), clocks, &r.APB3)

	if sim.P.RCC.Ptr().APB3ENR.Peek()&pac.RCC_APB3ENR_SUBGHZSPIEN == 0 {
		t.Fatal("SUBGHZSPI clock not enabled")
	}
	br := mmio.Field(sim.P.SUBGHZSPI.Ptr().CR1.Peek(), pac.SPI_CR1_BR_Msk, pac.SPI_CR1_BR_Pos)
	if br != 0b010 {
		t.Fatalf("BR = %03b, want 010 (8MHz/8)", br)
	}
	if _, err := s.Write([]byte{0x80}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Tx([]byte{1}, nil); err != nil || len(sim.SubGHz.Sent) != 2 {
		t.Fatalf("Tx: %v, sent %v", err, sim.SubGHz.Sent)
	}
}

func TestFree(t *testing.T) {
	sim, s := spi1Bus(t, Mode0, units.MHz(1))
	h, pins := s.Free()
	if h != sim.P.SPI1 {
		t.Fatal("Free returned a different handle")
	}
	if sim.P.SPI1.Ptr().CR1.Peek()&pac.SPI_CR1_SPE != 0 {
		t.Fatal("Free must disable the peripheral")
	}
	if pins.SCK.String() != "PA5" || pins.MOSI.Index() != 7 {
		t.Fatalf("pins = %s %d", pins.SCK, pins.MOSI.Index())
	}
}

func TestDisableWaitsForFrameInFlight(t *testing.T) {
	sim, s := spi1Bus(t, Mode0, units.MHz(1))
	sim.SPI1.Busy = 3
	regs := sim.P.SPI1.Ptr()
	setup, err := rcc.Plan(rcc.Config{})
	if err != nil {
		t.Fatal(err)
	}

	// spe returns whether SR showed BSY clear right before SPE was first
	// cleared, and how many polls saw it set.
	spe := func(tr *mmio.Trace) (idle bool, busy int) {
		sr := uint32(pac.SPI_SR_BSY)
		for _, a := range tr.Accesses() {
			switch {
			case a.Reg == &regs.SR && a.Op == mmio.OpRead:
				sr = a.Value
				if sr&pac.SPI_SR_BSY != 0 {
					busy++
				}
			case a.Reg == &regs.CR1 && a.Op == mmio.OpWrite && a.Value&pac.SPI_CR1_SPE == 0:
				return sr&pac.SPI_SR_BSY == 0, busy
			}
		}
		t.Fatal("SPE never cleared")
		return false, 0
	}

	for _, c := range []struct {
		name string
		run  func()
	}{
		{"Reclock", func() { s.Reclock(units.KHz(500), setup.Clocks) }},
		{"Free", func() { s.Free() }},
	} {
		if err := s.Send(0x11); err != nil {
			t.Fatalf("%s: Send: %v", c.name, err)
		}
		tr := mmio.StartTrace()
		c.run()
		tr.Stop()
		idle, busy := spe(tr)
		if !idle || busy == 0 {
			t.Fatalf("%s: SPE cleared with BSY set (idle=%v, busy polls=%d)", c.name, idle, busy)
		}
		if b, err := s.Read(); err != nil || b != 0x11 {
			t.Fatalf("%s: frame in flight lost: %#x, %v", c.name, b, err)
		}
	}
}
