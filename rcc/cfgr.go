package rcc

import (
	"wlhal/errcode"
	"wlhal/flash"
	"wlhal/internal/mmio"
	"wlhal/pac"
	"wlhal/units"
)

// MaxSYSCLK is the rated maximum system clock of the STM32WL.
const MaxSYSCLK units.Hertz = 48_000_000

// Fixed oscillator frequencies.
const (
	HSI16 units.Hertz = 16_000_000
	HSE32 units.Hertz = 32_000_000
)

// Source selects the system clock oscillator.
type Source uint8

const (
	SourceHSI16 Source = iota
	SourceMSI
	SourceHSE32
)

func (s Source) String() string {
	switch s {
	case SourceHSI16:
		return "HSI16"
	case SourceMSI:
		return "MSI"
	case SourceHSE32:
		return "HSE32"
	}
	return "unknown"
}

// MSIRange is the MSIRANGE field value.
type MSIRange uint8

const (
	MSIRange100k MSIRange = iota
	MSIRange200k
	MSIRange400k
	MSIRange800k
	MSIRange1M
	MSIRange2M
	MSIRange4M
	MSIRange8M
	MSIRange16M
	MSIRange24M
	MSIRange32M
	MSIRange48M
)

var msiHz = [...]units.Hertz{
	100_000, 200_000, 400_000, 800_000,
	1_000_000, 2_000_000, 4_000_000, 8_000_000,
	16_000_000, 24_000_000, 32_000_000, 48_000_000,
}

// Hz returns the nominal frequency of the range, or 0 for an invalid range.
func (r MSIRange) Hz() units.Hertz {
	if int(r) >= len(msiHz) {
		return 0
	}
	return msiHz[r]
}

// MSIRangeFor returns the range whose nominal frequency is exactly f.
func MSIRangeFor(f units.Hertz) (MSIRange, bool) {
	for i, hz := range msiHz {
		if hz == f {
			return MSIRange(i), true
		}
	}
	return 0, false
}

// PLLSource is the PLLSRC field value. The PLL itself is never started here;
// selecting a source only preloads PLLCFGR.
type PLLSource uint8

const (
	PLLSourceNone  PLLSource = 0b00
	PLLSourceMSI   PLLSource = 0b01
	PLLSourceHSI16 PLLSource = 0b10
	PLLSourceHSE32 PLLSource = 0b11
)

// Config is a clock configuration request. The zero value runs from HSI16
// with every prescaler at 1.
type Config struct {
	Source   Source
	MSIRange MSIRange

	// AHB, APB1 and APB2 dividers. Zero means 1.
	HPRE  uint16
	PPRE1 uint8
	PPRE2 uint8

	PLLSource PLLSource
}

// Setup is a resolved Config: the frequencies it yields and the register
// values that produce them.
type Setup struct {
	Clocks Clocks

	SW       uint32
	HPRE     uint32
	PPRE1    uint32
	PPRE2    uint32
	MSIRange MSIRange
	Latency  uint8
}

var hpreBits = map[uint16]uint32{
	1: 0b0000, 2: 0b1000, 3: 0b0001, 4: 0b1001, 5: 0b0010, 6: 0b0101,
	8: 0b1010, 10: 0b0110, 16: 0b1011, 32: 0b0111, 64: 0b1100,
	128: 0b1101, 256: 0b1110, 512: 0b1111,
}

// hpreDiv returns the AHB divider an HPRE field value selects. Encodings
// missing from hpreBits do not divide.
func hpreDiv(v uint32) units.Hertz {
	for d, bits := range hpreBits {
		if bits == v {
			return units.Hertz(d)
		}
	}
	return 1
}

var ppreBits = map[uint8]uint32{
	1: 0b000, 2: 0b100, 4: 0b101, 8: 0b110, 16: 0b111,
}

func invalid(msg string) error {
	return &errcode.E{C: errcode.InvalidParams, Op: "rcc.plan", Msg: msg}
}

// Plan resolves cfg without touching hardware.
func Plan(cfg Config) (Setup, error) {
	var s Setup

	var sysclk units.Hertz
	switch cfg.Source {
	case SourceHSI16:
		sysclk, s.SW = HSI16, pac.RCC_CFGR_SW_HSI16
	case SourceMSI:
		sysclk, s.SW = cfg.MSIRange.Hz(), pac.RCC_CFGR_SW_MSI
		if sysclk == 0 {
			return Setup{}, invalid("MSI range out of bounds")
		}
		s.MSIRange = cfg.MSIRange
	case SourceHSE32:
		sysclk, s.SW = HSE32, pac.RCC_CFGR_SW_HSE32
	default:
		return Setup{}, &errcode.E{C: errcode.Unsupported, Op: "rcc.plan", Msg: "clock source"}
	}
	if sysclk > MaxSYSCLK {
		return Setup{}, invalid("sysclk above rated maximum")
	}

	hpre, ppre1, ppre2 := cfg.HPRE, cfg.PPRE1, cfg.PPRE2
	if hpre == 0 {
		hpre = 1
	}
	if ppre1 == 0 {
		ppre1 = 1
	}
	if ppre2 == 0 {
		ppre2 = 1
	}
	var ok bool
	if s.HPRE, ok = hpreBits[hpre]; !ok {
		return Setup{}, invalid("AHB prescaler")
	}
	if s.PPRE1, ok = ppreBits[ppre1]; !ok {
		return Setup{}, invalid("APB1 prescaler")
	}
	if s.PPRE2, ok = ppreBits[ppre2]; !ok {
		return Setup{}, invalid("APB2 prescaler")
	}

	hclk := sysclk / units.Hertz(hpre)
	s.Clocks = Clocks{
		sysclk: sysclk,
		hclk:   hclk,
		pclk1:  hclk / units.Hertz(ppre1),
		pclk2:  hclk / units.Hertz(ppre2),
		pclk3:  hclk,
	}
	s.Latency = flash.LatencyFor(hclk)
	return s, nil
}

// CFGR merges the prescaler and switch fields of s into the register value
// v, leaving every other field alone.
func (s Setup) CFGR(v uint32) uint32 {
	v = mmio.With(v, s.HPRE, pac.RCC_CFGR_HPRE_Msk, pac.RCC_CFGR_HPRE_Pos)
	v = mmio.With(v, s.PPRE1, pac.RCC_CFGR_PPRE1_Msk, pac.RCC_CFGR_PPRE1_Pos)
	v = mmio.With(v, s.PPRE2, pac.RCC_CFGR_PPRE2_Msk, pac.RCC_CFGR_PPRE2_Pos)
	return mmio.With(v, s.SW, pac.RCC_CFGR_SW_Msk, pac.RCC_CFGR_SW_Pos)
}

// CFGR is the clock configuration builder. It owns CR, CFGR and PLLCFGR.
type CFGR struct {
	regs *pac.RCC_Type
	cfg  Config
}

// UseHSI16 runs the system clock from the 16 MHz internal oscillator.
func (c *CFGR) UseHSI16() *CFGR {
	c.cfg.Source = SourceHSI16
	return c
}

// UseMSI runs the system clock from the multi-speed oscillator at r.
func (c *CFGR) UseMSI(r MSIRange) *CFGR {
	c.cfg.Source, c.cfg.MSIRange = SourceMSI, r
	return c
}

// UseHSE32 runs the system clock from the 32 MHz external oscillator.
func (c *CFGR) UseHSE32() *CFGR {
	c.cfg.Source = SourceHSE32
	return c
}

// HCLKDivider sets the AHB prescaler (1, 2, 3, 4, 5, 6, 8, 10, 16, 32, ... 512).
func (c *CFGR) HCLKDivider(d uint16) *CFGR {
	c.cfg.HPRE = d
	return c
}

// PCLK1Divider sets the APB1 prescaler (1, 2, 4, 8, 16).
func (c *CFGR) PCLK1Divider(d uint8) *CFGR {
	c.cfg.PPRE1 = d
	return c
}

// PCLK2Divider sets the APB2 prescaler (1, 2, 4, 8, 16).
func (c *CFGR) PCLK2Divider(d uint8) *CFGR {
	c.cfg.PPRE2 = d
	return c
}

// PLLSource preloads the PLL input selection. The PLL is not started.
func (c *CFGR) PLLSource(s PLLSource) *CFGR {
	c.cfg.PLLSource = s
	return c
}

// Config returns the request built so far.
func (c *CFGR) Config() Config { return c.cfg }

// Freeze applies the configuration and returns the resulting clocks.
//
// Flash wait states are raised before any oscillator change to cover both
// the final HCLK and, when MSI is retuned while it drives SYSCLK, the MSI
// frequency under the current AHB prescaler. They are lowered after the
// switch. The oscillator ready and switch status polls do not time out.
// An invalid request panics.
func (c *CFGR) Freeze(acr *flash.ACR) Clocks {
	s, err := Plan(c.cfg)
	if err != nil {
		panic("rcc: " + err.Error())
	}
	r := c.regs

	// Raised before any oscillator change: retuning MSI while it drives
	// SYSCLK takes effect immediately, under the old AHB prescaler.
	need := s.Latency
	if cfgr := r.CFGR.Get(); c.cfg.Source == SourceMSI &&
		mmio.Field(cfgr, pac.RCC_CFGR_SWS_Msk, pac.RCC_CFGR_SWS_Pos) == pac.RCC_CFGR_SW_MSI {
		hpre := hpreDiv(mmio.Field(cfgr, pac.RCC_CFGR_HPRE_Msk, pac.RCC_CFGR_HPRE_Pos))
		need = max(need, flash.LatencyFor(s.MSIRange.Hz()/hpre))
	}
	cur := acr.Latency()
	if need > cur {
		acr.SetLatency(need)
		cur = need
	}

	switch c.cfg.Source {
	case SourceHSI16:
		r.CR.SetBits(pac.RCC_CR_HSION)
		for !r.CR.HasBits(pac.RCC_CR_HSIRDY) {
		}
	case SourceMSI:
		// MSIRANGE may only change while MSI is off or ready.
		for r.CR.HasBits(pac.RCC_CR_MSION) && !r.CR.HasBits(pac.RCC_CR_MSIRDY) {
		}
		cr := mmio.With(r.CR.Get(), uint32(s.MSIRange), pac.RCC_CR_MSIRANGE_Msk, pac.RCC_CR_MSIRANGE_Pos)
		r.CR.Set(cr | pac.RCC_CR_MSIRGSEL | pac.RCC_CR_MSION)
		for !r.CR.HasBits(pac.RCC_CR_MSIRDY) {
		}
	case SourceHSE32:
		r.CR.SetBits(pac.RCC_CR_HSEON)
		for !r.CR.HasBits(pac.RCC_CR_HSERDY) {
		}
	}

	if c.cfg.PLLSource != PLLSourceNone {
		r.PLLCFGR.ReplaceBits(uint32(c.cfg.PLLSource), pac.RCC_PLLCFGR_PLLSRC_Msk, pac.RCC_PLLCFGR_PLLSRC_Pos)
	}

	r.CFGR.Set(s.CFGR(r.CFGR.Get()))
	for mmio.Field(r.CFGR.Get(), pac.RCC_CFGR_SWS_Msk, pac.RCC_CFGR_SWS_Pos) != s.SW {
	}

	if s.Latency < cur {
		acr.SetLatency(s.Latency)
	}

	// MSI is on out of reset.
	if c.cfg.Source != SourceMSI {
		r.CR.ClearBits(pac.RCC_CR_MSION | pac.RCC_CR_MSIPLLEN)
	}
	return s.Clocks
}
