//go:build !tinygo

package pactest

import (
	"wlhal/internal/mmio"
	"wlhal/pac"
)

const crReady = pac.RCC_CR_MSIRDY | pac.RCC_CR_HSIRDY | pac.RCC_CR_HSERDY | pac.RCC_CR_PLLRDY

// RCC models the oscillators and the system clock switch.
//
// A ready flag follows its ON bit and SWS follows SW. Lag delays both by that
// many status reads after each write, so the driver's spin loops actually
// spin.
type RCC struct {
	regs *pac.RCC_Type

	Lag int

	crPending   int
	cfgrPending int

	// Pulses counts completed reset pulses per reset register bit.
	Pulses map[*mmio.Register32]map[uint32]int
}

func newRCC(p pac.Peripherals, s *Sim) *RCC {
	r := p.RCC.Ptr()
	for _, reg := range []*mmio.Register32{
		&r.ICSCR, &r.CFGR, &r.PLLCFGR, &r.CIER, &r.CIFR, &r.CICR,
		&r.AHB1RSTR, &r.AHB2RSTR, &r.AHB3RSTR,
		&r.APB1RSTR1, &r.APB1RSTR2, &r.APB2RSTR, &r.APB3RSTR,
		&r.AHB1ENR, &r.AHB2ENR, &r.AHB3ENR,
		&r.APB1ENR1, &r.APB1ENR2, &r.APB2ENR, &r.APB3ENR,
	} {
		reg.Poke(0)
	}
	r.CR.Poke(pac.RCC_CR_RESET_VALUE)

	m := &RCC{regs: r, Pulses: map[*mmio.Register32]map[uint32]int{}}

	mmio.Attach(&r.CR, mmio.Hooks{
		Write: func(_, v uint32) uint32 {
			m.crPending = m.Lag
			return v&^crReady | readyFor(v)
		},
		Read: func(cur uint32) uint32 {
			if m.crPending > 0 {
				m.crPending--
				return cur &^ crReady
			}
			return cur
		},
	})
	mmio.Attach(&r.CFGR, mmio.Hooks{
		Write: func(_, v uint32) uint32 {
			m.cfgrPending = m.Lag
			sw := mmio.Field(v, pac.RCC_CFGR_SW_Msk, pac.RCC_CFGR_SW_Pos)
			return mmio.With(v, sw, pac.RCC_CFGR_SWS_Msk, pac.RCC_CFGR_SWS_Pos)
		},
		Read: func(cur uint32) uint32 {
			if m.cfgrPending > 0 {
				m.cfgrPending--
				// Still running from the previous source.
				return cur &^ (pac.RCC_CFGR_SWS_Msk << pac.RCC_CFGR_SWS_Pos)
			}
			return cur
		},
	})

	g := map[uint32]func(){
		pac.RCC_AHB2ENR_GPIOAEN: func() {
			resetGPIO(p.GPIOA.Ptr(), pac.GPIOA_MODER_RESET_VALUE, pac.GPIOA_OSPEEDR_RESET_VALUE, pac.GPIOA_PUPDR_RESET_VALUE)
		},
		pac.RCC_AHB2ENR_GPIOBEN: func() {
			resetGPIO(p.GPIOB.Ptr(), pac.GPIOB_MODER_RESET_VALUE, pac.GPIOB_OSPEEDR_RESET_VALUE, pac.GPIOB_PUPDR_RESET_VALUE)
		},
	}
	m.attachReset(&r.AHB2RSTR, g)
	m.attachReset(&r.APB1RSTR1, map[uint32]func(){pac.RCC_APB1ENR1_SPI2EN: s.SPI2.reset})
	m.attachReset(&r.APB2RSTR, map[uint32]func(){pac.RCC_APB2ENR_SPI1EN: s.SPI1.reset})
	m.attachReset(&r.APB3RSTR, map[uint32]func(){pac.RCC_APB3ENR_SUBGHZSPIEN: s.SubGHz.reset})
	return m
}

func readyFor(cr uint32) uint32 {
	var rdy uint32
	if cr&pac.RCC_CR_MSION != 0 {
		rdy |= pac.RCC_CR_MSIRDY
	}
	if cr&pac.RCC_CR_HSION != 0 {
		rdy |= pac.RCC_CR_HSIRDY
	}
	if cr&pac.RCC_CR_HSEON != 0 {
		rdy |= pac.RCC_CR_HSERDY
	}
	if cr&pac.RCC_CR_PLLON != 0 {
		rdy |= pac.RCC_CR_PLLRDY
	}
	return rdy
}

// A peripheral is held in reset while its bit is set and released on the
// falling edge, which is when a pulse counts.
func (m *RCC) attachReset(reg *mmio.Register32, targets map[uint32]func()) {
	m.Pulses[reg] = map[uint32]int{}
	mmio.Attach(reg, mmio.Hooks{
		Write: func(old, v uint32) uint32 {
			for bit, reset := range targets {
				if v&bit != 0 {
					reset()
				}
				if old&bit != 0 && v&bit == 0 {
					m.Pulses[reg][bit]++
				}
			}
			return v
		},
	})
}

// PulseCount reports how many complete reset pulses bit received on reg.
func (m *RCC) PulseCount(reg *mmio.Register32, bit uint32) int {
	return m.Pulses[reg][bit]
}
