package gpio

import (
	"wlhal/internal/mmio"
	"wlhal/pac"
)

func block[PT Port]() *pac.GPIO_Type {
	var p PT
	return pac.GPIOPort(p.port())
}

// MODER owns the port mode register.
type MODER[PT Port] struct{}

func (*MODER[PT]) reg() *mmio.Register32 { return &block[PT]().MODER }

// OTYPER owns the output type register.
type OTYPER[PT Port] struct{}

func (*OTYPER[PT]) reg() *mmio.Register32 { return &block[PT]().OTYPER }

// OSPEEDR owns the output speed register.
type OSPEEDR[PT Port] struct{}

func (*OSPEEDR[PT]) reg() *mmio.Register32 { return &block[PT]().OSPEEDR }

// PUPDR owns the pull-up/pull-down register.
type PUPDR[PT Port] struct{}

func (*PUPDR[PT]) reg() *mmio.Register32 { return &block[PT]().PUPDR }

// AFRL owns the alternate function selectors of pins 0 to 7.
type AFRL[PT Port] struct{}

// AFRH owns the alternate function selectors of pins 8 to 15.
type AFRH[PT Port] struct{}

func (*AFRL[PT]) afr(PT) (*mmio.Register32, bool) { return &block[PT]().AFRL, false }
func (*AFRH[PT]) afr(PT) (*mmio.Register32, bool) { return &block[PT]().AFRH, true }

// AFR is either half of the alternate function register of port PT.
//
// Which half a pin needs depends on its number. The pairing is checked when
// the transition runs: handing AFRL to pin 8 or above (or AFRH to a pin below
// 8) panics.
type AFR[PT Port] interface {
	afr(PT) (reg *mmio.Register32, high bool)
}
