//go:build !tinygo

package main

import (
	"periph.io/x/conn/v3/physic"

	"wlhal/errcode"
	"wlhal/rcc"
	"wlhal/units"
)

// freqValue lets a physic.Frequency ("48MHz", "500kHz") be a flag.
type freqValue struct{ f *physic.Frequency }

func (v freqValue) String() string {
	if v.f == nil {
		return ""
	}
	return v.f.String()
}
func (v freqValue) Set(s string) error { return v.f.Set(s) }
func (v freqValue) Type() string       { return "frequency" }

func hertz(f physic.Frequency) units.Hertz { return units.FromFrequency(f) }

func badFlag(msg string) error {
	return &errcode.E{C: errcode.InvalidParams, Op: "wlclk", Msg: msg}
}

func parseSource(s string) (rcc.Source, error) {
	switch s {
	case "hsi16", "HSI16":
		return rcc.SourceHSI16, nil
	case "msi", "MSI":
		return rcc.SourceMSI, nil
	case "hse32", "HSE32":
		return rcc.SourceHSE32, nil
	}
	return 0, badFlag("unknown clock source " + s)
}

func parsePLLSource(s string) (rcc.PLLSource, error) {
	switch s {
	case "", "none":
		return rcc.PLLSourceNone, nil
	case "msi":
		return rcc.PLLSourceMSI, nil
	case "hsi16":
		return rcc.PLLSourceHSI16, nil
	case "hse32":
		return rcc.PLLSourceHSE32, nil
	}
	return 0, badFlag("unknown PLL source " + s)
}
