package main

import (
	"fmt"
	"os"

	"github.com/karlvr/chips"
	"github.com/spf13/cobra"
)

func main() {
	var org uint16
	var entry int
	var maxTicks uint64
	var maxInstr uint64
	var trace bool

	rootCmd := &cobra.Command{
		Use:   "z80run <image.bin>",
		Short: "Run a flat Z80 binary image on the cycle-stepped core",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading image: %w", err)
			}
			if len(image) > 0x10000-int(org) {
				return fmt.Errorf("image of %d bytes does not fit at 0x%04X", len(image), org)
			}

			r := chips.NewZ80Runner()
			r.Load(org, image)
			start := org
			if entry >= 0 {
				start = uint16(entry)
			}
			r.Prefetch(start)

			var instructions uint64
			for instructions < maxInstr && r.Ticks < maxTicks {
				// the overlapped fetch has already bumped PC past the
				// opcode about to execute
				pc := r.CPU.PC - 1
				r.RunInstruction()
				instructions++
				if trace {
					fmt.Printf("%04X  %02X  AF=%04X BC=%04X DE=%04X HL=%04X IX=%04X IY=%04X SP=%04X  T=%d\n",
						pc, r.CPU.IR, r.CPU.AF(), r.CPU.BC(), r.CPU.DE(), r.CPU.HL(),
						r.CPU.IX(), r.CPU.IY(), r.CPU.SP, r.Ticks)
				}
				if r.Pins()&chips.Z80PinHALT != 0 {
					break
				}
			}

			fmt.Printf("halted=%v instructions=%d tstates=%d\n",
				r.Pins()&chips.Z80PinHALT != 0, instructions, r.Ticks)
			fmt.Printf("PC=%04X SP=%04X AF=%04X BC=%04X DE=%04X HL=%04X IX=%04X IY=%04X I=%02X R=%02X\n",
				r.CPU.PC, r.CPU.SP, r.CPU.AF(), r.CPU.BC(), r.CPU.DE(), r.CPU.HL(),
				r.CPU.IX(), r.CPU.IY(), r.CPU.I, r.CPU.R)
			return nil
		},
	}

	rootCmd.Flags().Uint16Var(&org, "org", 0x0000, "Load address of the image")
	rootCmd.Flags().IntVar(&entry, "entry", -1, "Entry point (defaults to the load address)")
	rootCmd.Flags().Uint64Var(&maxTicks, "ticks", 1_000_000_000, "Stop after this many T-states")
	rootCmd.Flags().Uint64Var(&maxInstr, "instructions", 1_000_000_000, "Stop after this many instructions")
	rootCmd.Flags().BoolVarP(&trace, "trace", "t", false, "Print one line per instruction")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
