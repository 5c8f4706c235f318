package rcc

import "wlhal/units"

// Clocks are the frozen bus frequencies. Drivers take a Clocks from Freeze,
// which only returns once the tree and flash wait states are programmed;
// Plan yields the same value without touching hardware.
type Clocks struct {
	sysclk units.Hertz
	hclk   units.Hertz
	pclk1  units.Hertz
	pclk2  units.Hertz
	pclk3  units.Hertz
}

// SYSCLK returns the system (core) frequency.
func (c Clocks) SYSCLK() units.Hertz { return c.sysclk }

// HCLK returns the AHB frequency.
func (c Clocks) HCLK() units.Hertz { return c.hclk }

// PCLK1 returns the APB1 frequency.
func (c Clocks) PCLK1() units.Hertz { return c.pclk1 }

// PCLK2 returns the APB2 frequency.
func (c Clocks) PCLK2() units.Hertz { return c.pclk2 }

// PCLK3 returns the APB3 frequency, which equals HCLK.
func (c Clocks) PCLK3() units.Hertz { return c.pclk3 }

func (c Clocks) String() string {
	return "sysclk=" + c.sysclk.String() +
		" hclk=" + c.hclk.String() +
		" pclk1=" + c.pclk1.String() +
		" pclk2=" + c.pclk2.String() +
		" pclk3=" + c.pclk3.String()
}
