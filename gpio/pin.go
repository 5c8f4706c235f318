package gpio

import (
	"wlhal/pac"
	"wlhal/x/conv"
)

// pin is the state-independent core embedded in every state type.
type pin[PT Port, N Num] struct{}

func (p pin[PT, N]) core() pin[PT, N] { return p }

func (pin[PT, N]) regs() *pac.GPIO_Type { return block[PT]() }

// Index returns the pin number within its port.
func (pin[PT, N]) Index() uint8 {
	var n N
	return n.num()
}

// Port returns the port letter.
func (pin[PT, N]) Port() byte {
	var p PT
	return 'A' + p.port()
}

// String returns the pin name, e.g. "PA5".
func (p pin[PT, N]) String() string {
	var buf [2]byte
	return "P" + string(p.Port()) + string(conv.Utoa(buf[:], uint64(p.Index())))
}

func (p pin[PT, N]) setMode(moder *MODER[PT], mode uint32) {
	moder.reg().ReplaceBits(mode, 0b11, 2*p.Index())
}

func (p pin[PT, N]) setPull(pupdr *PUPDR[PT], pull uint32) {
	pupdr.reg().ReplaceBits(pull, 0b11, 2*p.Index())
}

func (p pin[PT, N]) setOpenDrain(otyper *OTYPER[PT], od bool) {
	if od {
		otyper.reg().SetBits(1 << p.Index())
	} else {
		otyper.reg().ClearBits(1 << p.Index())
	}
}

func (p pin[PT, N]) setSpeed(ospeedr *OSPEEDR[PT], s Speed) {
	ospeedr.reg().ReplaceBits(uint32(s), 0b11, 2*p.Index())
}

func (p pin[PT, N]) write(l Level) {
	if l {
		p.regs().BSRR.Set(1 << p.Index())
	} else {
		p.regs().BSRR.Set(1 << (p.Index() + 16))
	}
}

// Pin is pin N of port PT in any state. Every transition accepts it, so the
// argument's type fixes the port and number of the pin that comes back.
type Pin[PT Port, N Num] interface {
	core() pin[PT, N]
}

// IntoFloatingInput configures p as an input with no pull.
func IntoFloatingInput[PT Port, N Num](p Pin[PT, N], moder *MODER[PT], pupdr *PUPDR[PT]) Input[PT, N, Floating] {
	return intoInput[Floating](p.core(), moder, pupdr, pullNone)
}

// IntoPullUpInput configures p as an input with the pull-up enabled.
func IntoPullUpInput[PT Port, N Num](p Pin[PT, N], moder *MODER[PT], pupdr *PUPDR[PT]) Input[PT, N, PullUp] {
	return intoInput[PullUp](p.core(), moder, pupdr, pullUp)
}

// IntoPullDownInput configures p as an input with the pull-down enabled.
func IntoPullDownInput[PT Port, N Num](p Pin[PT, N], moder *MODER[PT], pupdr *PUPDR[PT]) Input[PT, N, PullDown] {
	return intoInput[PullDown](p.core(), moder, pupdr, pullDown)
}

func intoInput[PULL InputMode, PT Port, N Num](c pin[PT, N], moder *MODER[PT], pupdr *PUPDR[PT], pull uint32) Input[PT, N, PULL] {
	c.setMode(moder, modeInput)
	c.setPull(pupdr, pull)
	return Input[PT, N, PULL]{c}
}

// IntoOpenDrainOutput configures p as an open-drain output.
func IntoOpenDrainOutput[PT Port, N Num](p Pin[PT, N], moder *MODER[PT], otyper *OTYPER[PT]) Output[PT, N, OpenDrain] {
	c := p.core()
	c.setMode(moder, modeOutput)
	c.setOpenDrain(otyper, true)
	return Output[PT, N, OpenDrain]{c}
}

// IntoPushPullOutput configures p as a push-pull output driving low.
func IntoPushPullOutput[PT Port, N Num](p Pin[PT, N], moder *MODER[PT], otyper *OTYPER[PT]) Output[PT, N, PushPull] {
	return IntoPushPullOutputWithState(p, moder, otyper, Low)
}

// IntoPushPullOutputWithState configures p as a push-pull output driving l.
// The level is latched in ODR before the mode switches, so the pin never
// drives the previous level.
func IntoPushPullOutputWithState[PT Port, N Num](p Pin[PT, N], moder *MODER[PT], otyper *OTYPER[PT], l Level) Output[PT, N, PushPull] {
	c := p.core()
	c.write(l)
	c.setMode(moder, modeOutput)
	c.setOpenDrain(otyper, false)
	return Output[PT, N, PushPull]{c}
}

// IntoAnalog configures p for the ADC or comparators and drops any pull.
func IntoAnalog[PT Port, N Num](p Pin[PT, N], moder *MODER[PT], pupdr *PUPDR[PT]) Analog[PT, N] {
	c := p.core()
	c.setMode(moder, modeAnalog)
	c.setPull(pupdr, pullNone)
	return Analog[PT, N]{c}
}

// IntoAF routes p to alternate function AF with a push-pull output stage.
// afr must be the half that holds the pin's selector: AFRL for pins 0 to 7,
// AFRH for 8 to 15.
//
//	sck := gpio.IntoAF[gpio.AF5](pa.PA5, &pa.MODER, &pa.OTYPER, &pa.AFRL)
func IntoAF[AF AltFunc, PT Port, N Num](p Pin[PT, N], moder *MODER[PT], otyper *OTYPER[PT], afr AFR[PT]) Alternate[PT, N, AF, PushPull] {
	var (
		af   AF
		port PT
	)
	c := p.core()
	i := c.Index()
	reg, high := afr.afr(port)
	if high != (i >= 8) {
		if high {
			panic("gpio: " + c.String() + " is selected through AFRL, got AFRH")
		}
		panic("gpio: " + c.String() + " is selected through AFRH, got AFRL")
	}
	// Selector and output stage first, so the pin never routes to whatever
	// was left there.
	reg.ReplaceBits(af.code(), 0xF, 4*(i%8))
	c.setOpenDrain(otyper, false)
	c.setMode(moder, modeAlternate)
	return Alternate[PT, N, AF, PushPull]{c}
}
