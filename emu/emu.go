// Package emu assembles the Chip-8 virtual machine from its parts: memory,
// display, keypad, timers and the CPU. The host owns a single VM and drives
// it through this package; nothing here spawns goroutines or blocks.
package emu

import (
	"github.com/retroenv/retrogolib/log"

	"vip8/emu/cpu"
	"vip8/emu/display"
	"vip8/emu/keypad"
	"vip8/emu/memory"
	"vip8/emu/timers"
)

// VM is the complete virtual machine. The running flag only gates the Cycle
// entry point; the host scheduling loop is expected to consult Running too.
type VM struct {
	mem    *memory.Memory
	disp   *display.Display
	keys   *keypad.Keypad
	timers *timers.Timers
	cpu    *cpu.CPU

	logger  *log.Logger
	running bool
}

// New returns a fully initialised machine: fontset installed, display
// cleared, registers zeroed, PC at 0x200, stopped.
func New(logger *log.Logger) *VM {
	mem := memory.New()
	disp := display.New()
	keys := keypad.New()
	tm := timers.New()

	return &VM{
		mem:    mem,
		disp:   disp,
		keys:   keys,
		timers: tm,
		cpu:    cpu.New(mem, disp, keys, tm, logger),
		logger: logger,
	}
}

// LoadROM copies a program image into memory at 0x200 and rewinds execution
// to the program start. Registers and the display are left alone; use Reset
// for a cold start.
func (vm *VM) LoadROM(rom []byte) error {
	if err := vm.mem.LoadROM(rom); err != nil {
		return err
	}

	vm.cpu.Restart()
	vm.logger.Info("rom loaded", log.Int("bytes", len(rom)))
	return nil
}

// Reset restores the power-on state and stops the machine.
func (vm *VM) Reset() {
	vm.mem.Reset()
	vm.disp.Clear()
	vm.keys.Reset()
	vm.timers.Reset()
	vm.cpu.Reset()
	vm.running = false
}

// Start allows Cycle to execute instructions.
func (vm *VM) Start() {
	vm.running = true
}

// Stop prevents further Cycle calls from executing. Idempotent.
func (vm *VM) Stop() {
	vm.running = false
}

// Running reports whether the machine is started.
func (vm *VM) Running() bool {
	return vm.running
}

// Cycle executes one instruction if the machine is started.
func (vm *VM) Cycle() {
	if vm.running {
		vm.cpu.Cycle()
	}
}

// TickTimers decrements the delay and sound timers. The host calls this once
// per 60Hz frame, never from Cycle.
func (vm *VM) TickTimers() {
	vm.timers.Tick()
}

// KeyDown presses a keypad key, 0x0-0xF. Other values are ignored.
func (vm *VM) KeyDown(key uint8) {
	vm.keys.KeyDown(key)
}

// KeyUp releases a keypad key, 0x0-0xF. Other values are ignored.
func (vm *VM) KeyUp(key uint8) {
	vm.keys.KeyUp(key)
}

// DisplayBuffer returns the 2048 byte frame buffer view, row-major, one byte
// per pixel, 0 or 255. Valid until the next Cycle or Reset.
func (vm *VM) DisplayBuffer() []uint8 {
	return vm.disp.Buffer()
}

// BeeperActive reports whether the sound timer is above zero. The host turns
// this level into tone edges.
func (vm *VM) BeeperActive() bool {
	return vm.timers.BeeperActive()
}

// SeedRandom makes the RND instruction deterministic.
func (vm *VM) SeedRandom(seed int64) {
	vm.cpu.SeedRandom(seed)
}

// MemoryDump formats a region of memory as a hexdump.
func (vm *VM) MemoryDump(start, length uint16) string {
	return vm.mem.Dump(start, length)
}

// DebugInfo returns the CPU register summary with stable keys.
func (vm *VM) DebugInfo() string {
	return vm.cpu.DebugInfo()
}

// Stats returns one-line execution and memory summaries.
func (vm *VM) Stats() string {
	return vm.cpu.Stats() + "\n" + vm.mem.Stats()
}

// KeypadState lists the held keys for debug output.
func (vm *VM) KeypadState() string {
	return vm.keys.DebugState()
}

// ErrorCount returns the CPU fault count.
func (vm *VM) ErrorCount() int {
	return vm.cpu.ErrorCount()
}

// CycleCount returns the number of executed instructions.
func (vm *VM) CycleCount() uint64 {
	return vm.cpu.CycleCount()
}

// Healthy reports whether execution should continue. The scheduling loop
// stops the machine once this turns false.
func (vm *VM) Healthy() bool {
	return vm.cpu.Healthy()
}
