package gpio

// Input is a digital input with pull configuration PULL.
type Input[PT Port, N Num, PULL InputMode] struct {
	pin[PT, N]
}

// IsHigh samples the pin.
func (p Input[PT, N, PULL]) IsHigh() (bool, error) {
	return p.regs().IDR.Get()&(1<<p.Index()) != 0, nil
}

// IsLow samples the pin.
func (p Input[PT, N, PULL]) IsLow() (bool, error) {
	h, err := p.IsHigh()
	return !h, err
}

// Output is a digital output with driver type OT.
type Output[PT Port, N Num, OT OutputMode] struct {
	pin[PT, N]
}

// SetHigh drives the pin high with a single BSRR write.
func (p Output[PT, N, OT]) SetHigh() error {
	p.write(High)
	return nil
}

// SetLow drives the pin low with a single BSRR write.
func (p Output[PT, N, OT]) SetLow() error {
	p.write(Low)
	return nil
}

// Set drives the pin to l.
func (p Output[PT, N, OT]) Set(l Level) error {
	p.write(l)
	return nil
}

// Toggle inverts the level latched in ODR.
func (p Output[PT, N, OT]) Toggle() error {
	h, _ := p.IsSetHigh()
	p.write(Level(!h))
	return nil
}

// IsSetHigh reports the level the pin is driven to, not the level sampled
// on the pad.
func (p Output[PT, N, OT]) IsSetHigh() (bool, error) {
	return p.regs().ODR.Get()&(1<<p.Index()) != 0, nil
}

// IsSetLow is the complement of IsSetHigh.
func (p Output[PT, N, OT]) IsSetLow() (bool, error) {
	h, err := p.IsSetHigh()
	return !h, err
}

// SetSpeed sets the output slew rate.
func (p Output[PT, N, OT]) SetSpeed(ospeedr *OSPEEDR[PT], s Speed) Output[PT, N, OT] {
	p.setSpeed(ospeedr, s)
	return p
}

// InternalPullUp enables or disables the pull-up. Useful on open-drain
// outputs without an external resistor.
func (p Output[PT, N, OT]) InternalPullUp(pupdr *PUPDR[PT], on bool) {
	if on {
		p.setPull(pupdr, pullUp)
	} else {
		p.setPull(pupdr, pullNone)
	}
}

// Downgrade erases the pin number so pins of one port and driver type can
// share a slice or array.
func (p Output[PT, N, OT]) Downgrade() ErasedOutput[PT, OT] {
	return ErasedOutput[PT, OT]{i: p.Index()}
}

// Analog is a pin in analog mode, the reset state of most pins.
type Analog[PT Port, N Num] struct {
	pin[PT, N]
}

// Alternate is a pin routed to alternate function AF with output stage OT.
type Alternate[PT Port, N Num, AF AltFunc, OT OutputMode] struct {
	pin[PT, N]
}

// SetSpeed sets the output slew rate.
func (p Alternate[PT, N, AF, OT]) SetSpeed(ospeedr *OSPEEDR[PT], s Speed) Alternate[PT, N, AF, OT] {
	p.setSpeed(ospeedr, s)
	return p
}

// InternalPullUp enables or disables the pull-up.
func (p Alternate[PT, N, AF, OT]) InternalPullUp(pupdr *PUPDR[PT], on bool) Alternate[PT, N, AF, OT] {
	if on {
		p.setPull(pupdr, pullUp)
	} else {
		p.setPull(pupdr, pullNone)
	}
	return p
}

// SetOpenDrain switches the output stage to open drain.
func (p Alternate[PT, N, AF, OT]) SetOpenDrain(otyper *OTYPER[PT]) Alternate[PT, N, AF, OpenDrain] {
	p.setOpenDrain(otyper, true)
	return Alternate[PT, N, AF, OpenDrain]{p.pin}
}

// SetPushPull switches the output stage back to push-pull.
func (p Alternate[PT, N, AF, OT]) SetPushPull(otyper *OTYPER[PT]) Alternate[PT, N, AF, PushPull] {
	p.setOpenDrain(otyper, false)
	return Alternate[PT, N, AF, PushPull]{p.pin}
}

// ErasedOutput is an output whose pin number is only known at run time.
type ErasedOutput[PT Port, OT OutputMode] struct {
	i uint8
}

// Index returns the pin number within its port.
func (p ErasedOutput[PT, OT]) Index() uint8 { return p.i }

// Port returns the port letter.
func (p ErasedOutput[PT, OT]) Port() byte {
	var pt PT
	return 'A' + pt.port()
}

// SetHigh drives the pin high with a single BSRR write.
func (p ErasedOutput[PT, OT]) SetHigh() error {
	block[PT]().BSRR.Set(1 << p.i)
	return nil
}

// SetLow drives the pin low with a single BSRR write.
func (p ErasedOutput[PT, OT]) SetLow() error {
	block[PT]().BSRR.Set(1 << (p.i + 16))
	return nil
}

// Set drives the pin to l.
func (p ErasedOutput[PT, OT]) Set(l Level) error {
	if l {
		return p.SetHigh()
	}
	return p.SetLow()
}

// IsSetHigh reports the level latched in ODR.
func (p ErasedOutput[PT, OT]) IsSetHigh() (bool, error) {
	return block[PT]().ODR.Get()&(1<<p.i) != 0, nil
}

// Toggle inverts the level latched in ODR.
func (p ErasedOutput[PT, OT]) Toggle() error {
	h, _ := p.IsSetHigh()
	return p.Set(Level(!h))
}

var (
	_ OutputPin  = Output[A, P0, PushPull]{}
	_ OutputPin  = ErasedOutput[B, OpenDrain]{}
	_ InputPin   = Input[A, P0, Floating]{}
	_ Pin[B, P4] = Alternate[B, P4, AF0, PushPull]{}
)
