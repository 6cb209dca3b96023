package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"vip8/emu"
)

var (
	dumpStart  string
	dumpLength string
)

var dumpCmd = &cobra.Command{
	Use:   "dump <path/to/rom>",
	Short: "load a ROM and print a hexdump of machine memory",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().StringVar(&dumpStart, "start", "0x200", "first address to dump")
	dumpCmd.Flags().StringVar(&dumpLength, "length", "256", "number of bytes to dump")
}

func runDump(cmd *cobra.Command, args []string) error {
	start, err := strconv.ParseUint(dumpStart, 0, 16)
	if err != nil {
		return fmt.Errorf("parsing start address %q: %w", dumpStart, err)
	}
	length, err := strconv.ParseUint(dumpLength, 0, 16)
	if err != nil {
		return fmt.Errorf("parsing length %q: %w", dumpLength, err)
	}

	rom, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading rom: %w", err)
	}

	vm := emu.New(newLogger())
	if err := vm.LoadROM(rom); err != nil {
		return fmt.Errorf("loading rom: %w", err)
	}

	fmt.Print(vm.MemoryDump(uint16(start), uint16(length)))
	return nil
}
