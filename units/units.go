// Package units holds the frequency type shared by the clock and bus
// drivers.
package units

import (
	"time"

	"golang.org/x/exp/constraints"
	"periph.io/x/conn/v3/physic"

	"wlhal/x/conv"
	"wlhal/x/mathx"
	"wlhal/x/timex"
)

// Hertz is a frequency in whole hertz. Every clock on the part fits in 32
// bits.
type Hertz uint32

// Hz returns n hertz.
func Hz[T constraints.Integer](n T) Hertz { return Hertz(n) }

// KHz returns n kilohertz.
func KHz[T constraints.Integer](n T) Hertz { return Hertz(n) * 1_000 }

// MHz returns n megahertz.
func MHz[T constraints.Integer](n T) Hertz { return Hertz(n) * 1_000_000 }

// Period returns the duration of one cycle. Zero is treated as 1 Hz.
func (f Hertz) Period() time.Duration { return timex.PeriodFromHz(uint32(f)) }

// Frequency converts to the periph.io representation.
func (f Hertz) Frequency() physic.Frequency { return physic.Frequency(f) * physic.Hertz }

// FromFrequency truncates a periph.io frequency to whole hertz. Values
// outside the 32-bit range saturate.
func FromFrequency(f physic.Frequency) Hertz {
	return Hertz(mathx.Clamp(f/physic.Hertz, 0, physic.Frequency(^uint32(0))))
}

// String renders f with the largest unit that divides it exactly, e.g.
// "48MHz", "500kHz", "32768Hz".
func (f Hertz) String() string {
	var buf [16]byte
	n, unit := uint64(f), "Hz"
	switch {
	case n != 0 && n%1_000_000 == 0:
		n, unit = n/1_000_000, "MHz"
	case n != 0 && n%1_000 == 0:
		n, unit = n/1_000, "kHz"
	}
	return string(conv.Utoa(buf[:], n)) + unit
}
