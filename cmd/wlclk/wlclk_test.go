//go:build !tinygo

package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"periph.io/x/conn/v3/physic"

	"wlhal/errcode"
	"wlhal/rcc"
)

// run executes the root command with args after restoring every flag
// default, and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	planOpts.source, planOpts.msi, planOpts.pll, planOpts.spi = "hsi16", 4*physic.MegaHertz, "none", 0
	planOpts.hpre, planOpts.ppre1, planOpts.ppre2 = 1, 1, 1
	baudOpts.bus, baudOpts.freq = 16*physic.MegaHertz, 0

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestParseSource(t *testing.T) {
	cases := []struct {
		in   string
		want rcc.Source
	}{
		{"hsi16", rcc.SourceHSI16},
		{"MSI", rcc.SourceMSI},
		{"hse32", rcc.SourceHSE32},
	}
	for _, c := range cases {
		if got, err := parseSource(c.in); err != nil || got != c.want {
			t.Fatalf("parseSource(%q) = %v, %v; want %v", c.in, got, err, c.want)
		}
	}
	if _, err := parseSource("pll"); !errors.Is(err, errcode.InvalidParams) {
		t.Fatalf("parseSource(pll) = %v, want invalid_params", err)
	}
}

func TestParsePLLSource(t *testing.T) {
	cases := []struct {
		in   string
		want rcc.PLLSource
	}{
		{"", rcc.PLLSourceNone},
		{"none", rcc.PLLSourceNone},
		{"msi", rcc.PLLSourceMSI},
		{"hsi16", rcc.PLLSourceHSI16},
		{"hse32", rcc.PLLSourceHSE32},
	}
	for _, c := range cases {
		if got, err := parsePLLSource(c.in); err != nil || got != c.want {
			t.Fatalf("parsePLLSource(%q) = %v, %v; want %v", c.in, got, err, c.want)
		}
	}
	if _, err := parsePLLSource("lse"); !errors.Is(err, errcode.InvalidParams) {
		t.Fatalf("parsePLLSource(lse) = %v, want invalid_params", err)
	}
}

func TestPlanConfig(t *testing.T) {
	planOpts.source, planOpts.msi, planOpts.pll = "msi", 24*physic.MegaHertz, "hse32"
	planOpts.hpre, planOpts.ppre1, planOpts.ppre2 = 2, 4, 1
	cfg, err := planConfig()
	if err != nil {
		t.Fatalf("planConfig: %v", err)
	}
	want := rcc.Config{Source: rcc.SourceMSI, MSIRange: rcc.MSIRange24M, HPRE: 2, PPRE1: 4, PPRE2: 1, PLLSource: rcc.PLLSourceHSE32}
	if cfg != want {
		t.Fatalf("planConfig = %+v, want %+v", cfg, want)
	}

	planOpts.msi = 5 * physic.MegaHertz
	if _, err := planConfig(); !errors.Is(err, errcode.InvalidParams) {
		t.Fatalf("5MHz MSI: %v, want invalid_params", err)
	}
}

func TestPlanCommand(t *testing.T) {
	out, err := run(t, "plan", "-s", "msi", "--msi", "48MHz", "--hpre", "2", "--spi", "1MHz")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	for _, want := range []string{"source   MSI", "latency  1 WS", "MSIRANGE 11", "spi1      BR=100"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPlanRejectsSubHertzSPI(t *testing.T) {
	out, err := run(t, "plan", "--spi", "500mHz")
	if !errors.Is(err, errcode.InvalidParams) {
		t.Fatalf("plan --spi 500mHz = %v, want invalid_params", err)
	}
	if strings.Contains(out, "BR=") {
		t.Fatalf("printed a baud code:\n%s", out)
	}
}

func TestBaudCommand(t *testing.T) {
	out, err := run(t, "baud", "--bus", "80MHz", "--freq", "500kHz")
	if err != nil {
		t.Fatalf("baud: %v", err)
	}
	if !strings.HasPrefix(out, "BR=111 ") {
		t.Fatalf("baud output = %q", out)
	}
	for _, args := range [][]string{
		{"baud", "--freq", "500mHz"},
		{"baud", "--bus", "8MHz", "--freq", "16MHz"},
	} {
		if _, err := run(t, args...); !errors.Is(err, errcode.InvalidParams) {
			t.Fatalf("%v = %v, want invalid_params", args, err)
		}
	}
}
