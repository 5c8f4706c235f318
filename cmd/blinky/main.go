//go:build tinygo

package main

import (
	"time"

	"wlhal/flash"
	"wlhal/gpio"
	"wlhal/pac"
	"wlhal/rcc"
)

func main() {
	p, ok := pac.Take()
	if !ok {
		panic("peripherals already taken")
	}

	fl := flash.Constrain(p.FLASH)
	r := rcc.Constrain(p.RCC)
	clocks := r.CFGR.UseMSI(rcc.MSIRange48M).Freeze(&fl.ACR)
	println("clocks:", clocks.String())

	pb := gpio.SplitB(p.GPIOB, &r.AHB2)

	// LED next to the USB connector.
	led := gpio.IntoPushPullOutput(pb.PB5, &pb.MODER, &pb.OTYPER)

	// Two more outputs, driven as a group.
	spare := [...]gpio.ErasedOutput[gpio.B, gpio.PushPull]{
		gpio.IntoPushPullOutput(pb.PB9, &pb.MODER, &pb.OTYPER).Downgrade(),
		gpio.IntoPushPullOutput(pb.PB15, &pb.MODER, &pb.OTYPER).Downgrade(),
	}

	for i := 0; ; i++ {
		led.Toggle()
		for j, o := range spare {
			o.Set(gpio.Level(i%len(spare) == j))
		}
		time.Sleep(250 * time.Millisecond)
	}
}
