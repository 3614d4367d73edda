package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"

	"github.com/retrosim/dmgcore/internal/cpu"
	"github.com/retrosim/dmgcore/internal/emu"
)

// coretrace steps the machine from the boot overlay and prints what the
// core executes, for poking at the CPU without a window.
func main() {
	steps := flag.Int("steps", 1_000_000, "max CPU steps to run")
	trace := flag.Bool("trace", false, "print every instruction")
	flag.Parse()

	cfg := log.DefaultConfig()
	if *trace {
		cfg.Level = log.DebugLevel
	}
	logger := log.NewWithConfig(cfg)

	ctx := app.Context()

	m := emu.New(emu.Config{Trace: *trace}, logger)
	c := m.CPU()

	start := time.Now()
	var cycles int
	i := 0
	for ; i < *steps; i++ {
		if i%4096 == 0 && ctx.Err() != nil {
			logger.Info("interrupted")
			break
		}
		cyc, err := m.Step()
		if err != nil {
			var derr *cpu.DecodeError
			if errors.As(err, &derr) {
				fmt.Fprintln(os.Stderr, derr.Dump())
				os.Exit(1)
			}
			logger.Fatal(err.Error())
		}
		cycles += cyc
	}

	logger.Info("done",
		log.Int("steps", i),
		log.Int("cycles", cycles),
		log.String("elapsed", time.Since(start).Truncate(time.Millisecond).String()),
		log.Hex("pc", c.Regs.PC),
		log.String("halted", fmt.Sprintf("%t", c.Halted())),
		log.String("boot_mapped", fmt.Sprintf("%t", m.Bus().BootMapped())))
}
