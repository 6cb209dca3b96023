package cmd

import (
	"fmt"
	"os"

	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vip8/emu"
	"vip8/emu/audio"
	"vip8/emu/screen"
)

// maxCyclesPerFrame caps how many instructions one 60Hz frame may execute, so
// a misconfigured clock cannot run away with the frame budget.
const maxCyclesPerFrame = 50

var startCmd = &cobra.Command{
	Use:   "start <path/to/rom>",
	Short: "load a ROM and start the emulator",
	Args:  cobra.ExactArgs(1),
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)

	startCmd.Flags().IntP("clock", "c", 700, "instructions per second")
	startCmd.Flags().IntP("scale", "s", 10, "window pixels per Chip-8 pixel")
	startCmd.Flags().Bool("mute", false, "disable the beeper")
	cobra.CheckErr(viper.BindPFlag("clock", startCmd.Flags().Lookup("clock")))
	cobra.CheckErr(viper.BindPFlag("scale", startCmd.Flags().Lookup("scale")))
	cobra.CheckErr(viper.BindPFlag("mute", startCmd.Flags().Lookup("mute")))
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	romPath := args[0]

	rom, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("reading rom: %w", err)
	}

	vm := emu.New(logger)
	if err := vm.LoadROM(rom); err != nil {
		return fmt.Errorf("loading rom: %w", err)
	}
	if seed := viper.GetInt64("seed"); seed != 0 {
		vm.SeedRandom(seed)
	}

	win, err := screen.New("vip8 - "+romPath, viper.GetInt("scale"))
	if err != nil {
		return err
	}

	beeper, err := audio.New(viper.GetFloat64("tone"), viper.GetFloat64("volume"), !viper.GetBool("mute"))
	if err != nil {
		return err
	}

	clock := viper.GetInt("clock")
	cyclesPerFrame := (clock + 59) / 60
	if cyclesPerFrame < 1 {
		cyclesPerFrame = 1
	}
	if cyclesPerFrame > maxCyclesPerFrame {
		logger.Info("clock capped", log.Int("cycles_per_frame", maxCyclesPerFrame))
		cyclesPerFrame = maxCyclesPerFrame
	}

	logger.Info("starting emulation",
		log.String("rom", romPath),
		log.Int("bytes", len(rom)),
		log.Int("clock", clock))

	vm.Start()
	runLoop(vm, win, beeper, cyclesPerFrame, logger)

	logger.Info("emulation finished")
	logger.Info(vm.Stats())
	return nil
}

// runLoop is the 60Hz host frame loop. Per frame: keypad edges in, a batch of
// instructions, one timer tick, one rasterisation, one beeper level update.
// The window's vsync paces the loop.
func runLoop(vm *emu.VM, win *screen.Window, beeper *audio.Beeper, cyclesPerFrame int, logger *log.Logger) {
	for !win.Closed() {
		win.PollKeys(vm.KeyDown, vm.KeyUp)

		for i := 0; i < cyclesPerFrame; i++ {
			vm.Cycle()
		}

		vm.TickTimers()
		win.Draw(vm.DisplayBuffer())
		beeper.SetActive(vm.Running() && vm.BeeperActive())

		if vm.Running() && !vm.Healthy() {
			vm.Stop()
			win.SetTitle("vip8 - stopped on faults")
			logger.Error("stopping, machine unhealthy", nil, log.Int("faults", vm.ErrorCount()))
			logger.Info(vm.DebugInfo())
		}
	}
}
