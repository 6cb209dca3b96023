// Package cpu implements the Chip-8 fetch-decode-execute engine: 16 general
// registers, the index register, program counter, call stack and the full
// 35 opcode instruction set.
//
// Cycle executes exactly one instruction. It never ticks the timers; the host
// does that at 60Hz regardless of the configured instruction rate.
package cpu

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/retroenv/retrogolib/log"

	"vip8/emu/display"
	"vip8/emu/keypad"
	"vip8/emu/memory"
	"vip8/emu/timers"
)

const (
	programStart = memory.ProgramStart
	memoryTop    = memory.Size

	stackSize = 16

	// errorLimit is the fault count the CPU tolerates; once the count exceeds
	// it the CPU refuses to run further until it is reset. The host usually
	// stops execution before this, once Healthy turns false.
	errorLimit   = 10
	errorHealthy = 5
)

// RandByte produces one pseudo-random byte. It is swappable so tests can pin
// the RND instruction down.
type RandByte func() uint8

func seededRand(seed int64) RandByte {
	r := rand.New(rand.NewSource(seed))
	return func() uint8 {
		return uint8(r.Intn(256))
	}
}

// CPU drives memory, display, keypad and timers through one instruction per
// Cycle call. It owns no goroutines and never blocks; the wait-for-key
// instruction is a state, not a wait.
type CPU struct {
	v     [16]uint8
	i     uint16
	pc    uint16
	stack [stackSize]uint16
	sp    uint8

	mem    *memory.Memory
	disp   *display.Display
	keys   *keypad.Keypad
	timers *timers.Timers

	rand   RandByte
	logger *log.Logger

	halted bool
	errors int
	cycles uint64
}

// New wires the CPU to its peers. The random source starts time-seeded; use
// SeedRandom for deterministic runs.
func New(mem *memory.Memory, disp *display.Display, keys *keypad.Keypad,
	tm *timers.Timers, logger *log.Logger) *CPU {
	return &CPU{
		pc:     programStart,
		mem:    mem,
		disp:   disp,
		keys:   keys,
		timers: tm,
		rand:   seededRand(time.Now().UnixNano()),
		logger: logger,
	}
}

// Reset restores the power-on register state. The peers are reset by their
// owner, not here.
func (c *CPU) Reset() {
	c.v = [16]uint8{}
	c.i = 0
	c.pc = programStart
	c.stack = [stackSize]uint16{}
	c.sp = 0
	c.halted = false
	c.errors = 0
	c.cycles = 0
}

// Restart rewinds execution to the program start without touching registers
// or memory. Called after a new ROM is loaded.
func (c *CPU) Restart() {
	c.pc = programStart
	c.halted = false
	c.errors = 0
	c.cycles = 0
}

// SeedRandom replaces the random source with one seeded deterministically.
func (c *CPU) SeedRandom(seed int64) {
	c.rand = seededRand(seed)
}

// SetRandSource replaces the random source entirely.
func (c *CPU) SetRandSource(r RandByte) {
	c.rand = r
}

// Cycle fetches and executes one instruction. It is a no-op while the CPU is
// halted or blocked waiting for a key; a blocked cycle does not advance the
// cycle counter.
func (c *CPU) Cycle() {
	if c.halted {
		return
	}

	if c.keys.Waiting() {
		return
	}
	if dest, key, ok := c.keys.TakeResolved(); ok {
		c.v[dest&0x0F] = key
	}

	if c.errors > errorLimit {
		c.halted = true
		c.logger.Error("cpu halted, fault limit reached", nil, log.Int("faults", c.errors))
		return
	}

	c.cycles++

	if !c.validatePC() {
		return
	}

	opcode := c.mem.ReadWord(c.pc)
	c.pc += 2
	c.execute(opcode)
}

// validatePC forces the program counter back to the program start if it has
// left memory, and realigns it if it is odd. Either case counts as a fault.
// Addresses below 0x200 are legal: a program may jump into the font or
// reserved areas.
func (c *CPU) validatePC() bool {
	if c.pc >= memoryTop {
		c.fault("pc out of range", "pc", c.pc)
		c.pc = programStart
		return false
	}
	if c.pc%2 != 0 {
		c.fault("pc misaligned", "pc", c.pc)
		c.pc &= 0xFFFE
	}
	return true
}

func (c *CPU) execute(opcode uint16) {
	nnn := opcode & 0x0FFF
	kk := uint8(opcode)
	n := uint8(opcode & 0x000F)
	x := uint8((opcode & 0x0F00) >> 8)
	y := uint8((opcode & 0x00F0) >> 4)

	switch opcode & 0xF000 {
	case 0x0000:
		c.execute0(opcode)
	case 0x1000: // JP nnn
		c.jump(nnn)
	case 0x2000: // CALL nnn
		c.call(nnn)
	case 0x3000: // SE Vx, kk
		if c.v[x] == kk {
			c.pc += 2
		}
	case 0x4000: // SNE Vx, kk
		if c.v[x] != kk {
			c.pc += 2
		}
	case 0x5000: // SE Vx, Vy
		if n != 0 {
			c.fault("unknown opcode", "opcode", opcode)
			return
		}
		if c.v[x] == c.v[y] {
			c.pc += 2
		}
	case 0x6000: // LD Vx, kk
		c.v[x] = kk
	case 0x7000: // ADD Vx, kk
		c.v[x] += kk
	case 0x8000:
		c.execute8(opcode, x, y)
	case 0x9000: // SNE Vx, Vy
		if n != 0 {
			c.fault("unknown opcode", "opcode", opcode)
			return
		}
		if c.v[x] != c.v[y] {
			c.pc += 2
		}
	case 0xA000: // LD I, nnn
		c.i = nnn
	case 0xB000: // JP V0, nnn
		c.jump(nnn + uint16(c.v[0]))
	case 0xC000: // RND Vx, kk
		c.v[x] = c.rand() & kk
	case 0xD000: // DRW Vx, Vy, n
		c.draw(x, y, n)
	case 0xE000:
		c.executeE(opcode, x)
	case 0xF000:
		c.executeF(opcode, x)
	}
}

func (c *CPU) execute0(opcode uint16) {
	switch opcode {
	case 0x00E0: // CLS
		c.disp.Clear()
	case 0x00EE: // RET
		if c.sp == 0 {
			c.fault("stack underflow", "pc", c.pc)
			return
		}
		c.sp--
		c.pc = c.stack[c.sp]
	case 0x0000:
		// executing zeroed memory; stop instead of looping through it
		c.halted = true
		c.logger.Debug("halt on zero instruction", log.Uint16("pc", c.pc))
	default:
		// 0nnn SYS, a machine call on the original COSMAC VIP. Ignored.
	}
}

// jump moves the program counter. Any address in memory is a valid target,
// including the font and reserved areas; only a target past the top of memory
// (reachable through Bnnn's V0 offset) or a misaligned one is a fault, and
// leaves the counter where it was.
func (c *CPU) jump(addr uint16) {
	if addr >= memoryTop || addr%2 != 0 {
		c.fault("jump target out of range", "target", addr)
		return
	}
	c.pc = addr
}

func (c *CPU) call(addr uint16) {
	if addr >= memoryTop || addr%2 != 0 {
		c.fault("call target out of range", "target", addr)
		return
	}
	if c.sp >= stackSize {
		c.fault("stack overflow", "target", addr)
		return
	}
	c.stack[c.sp] = c.pc
	c.sp++
	c.pc = addr
}

// execute8 covers the register-to-register arithmetic group. The flag value
// is computed first and written after the result, so an instruction naming VF
// as its destination ends up with the flag, not the arithmetic result.
func (c *CPU) execute8(opcode uint16, x, y uint8) {
	switch opcode & 0x000F {
	case 0x0: // LD Vx, Vy
		c.v[x] = c.v[y]
	case 0x1: // OR Vx, Vy
		c.v[x] |= c.v[y]
	case 0x2: // AND Vx, Vy
		c.v[x] &= c.v[y]
	case 0x3: // XOR Vx, Vy
		c.v[x] ^= c.v[y]
	case 0x4: // ADD Vx, Vy
		sum := uint16(c.v[x]) + uint16(c.v[y])
		var flag uint8
		if sum > 0xFF {
			flag = 1
		}
		c.v[x] = uint8(sum)
		c.v[0xF] = flag
	case 0x5: // SUB Vx, Vy
		var flag uint8
		if c.v[x] >= c.v[y] {
			flag = 1
		}
		c.v[x] -= c.v[y]
		c.v[0xF] = flag
	case 0x6: // SHR Vx
		flag := c.v[x] & 0x01
		c.v[x] >>= 1
		c.v[0xF] = flag
	case 0x7: // SUBN Vx, Vy
		var flag uint8
		if c.v[y] >= c.v[x] {
			flag = 1
		}
		c.v[x] = c.v[y] - c.v[x]
		c.v[0xF] = flag
	case 0xE: // SHL Vx
		flag := c.v[x] >> 7
		c.v[x] <<= 1
		c.v[0xF] = flag
	default:
		c.fault("unknown opcode", "opcode", opcode)
	}
}

func (c *CPU) draw(x, y, n uint8) {
	if n == 0 {
		// a zero height sprite draws nothing
		return
	}

	sprite := c.mem.ReadBytes(c.i, n)
	collision := c.disp.DrawSprite(c.v[x], c.v[y], sprite)

	if collision {
		c.v[0xF] = 1
	} else {
		c.v[0xF] = 0
	}
}

func (c *CPU) executeE(opcode uint16, x uint8) {
	key := c.v[x]
	if key >= keypad.Keys {
		// not a keypad key, neither variant skips
		return
	}

	switch opcode & 0x00FF {
	case 0x9E: // SKP Vx
		if c.keys.IsPressed(key) {
			c.pc += 2
		}
	case 0xA1: // SKNP Vx
		if !c.keys.IsPressed(key) {
			c.pc += 2
		}
	default:
		c.fault("unknown opcode", "opcode", opcode)
	}
}

func (c *CPU) executeF(opcode uint16, x uint8) {
	switch opcode & 0x00FF {
	case 0x07: // LD Vx, DT
		c.v[x] = c.timers.Delay()
	case 0x0A: // LD Vx, K
		c.keys.BeginWait(x)
	case 0x15: // LD DT, Vx
		c.timers.SetDelay(c.v[x])
	case 0x18: // LD ST, Vx
		c.timers.SetSound(c.v[x])
	case 0x1E: // ADD I, Vx
		// the register may grow past 12 bits here; memory masks on access
		c.i += uint16(c.v[x])
	case 0x29: // LD F, Vx
		c.i = c.mem.FontAddress(c.v[x])
	case 0x33: // LD B, Vx
		value := c.v[x]
		c.mem.WriteByte(c.i, value/100)
		c.mem.WriteByte(c.i+1, (value/10)%10)
		c.mem.WriteByte(c.i+2, value%10)
	case 0x55: // LD [I], Vx
		for reg := uint8(0); reg <= x; reg++ {
			c.mem.WriteByte(c.i+uint16(reg), c.v[reg])
		}
	case 0x65: // LD Vx, [I]
		for reg := uint8(0); reg <= x; reg++ {
			c.v[reg] = c.mem.ReadByte(c.i + uint16(reg))
		}
	default:
		c.fault("unknown opcode", "opcode", opcode)
	}
}

// fault counts a recoverable error. Faulting instructions leave no partial
// state behind; execution continues with the next instruction until the fault
// limit trips.
func (c *CPU) fault(msg, key string, value uint16) {
	c.errors++
	c.logger.Debug(msg, log.Uint16(key, value))
}

// PC returns the program counter.
func (c *CPU) PC() uint16 {
	return c.pc
}

// Index returns the I register.
func (c *CPU) Index() uint16 {
	return c.i
}

// Register returns one of V0-VF.
func (c *CPU) Register(n uint8) uint8 {
	return c.v[n&0x0F]
}

// SP returns the stack depth.
func (c *CPU) SP() uint8 {
	return c.sp
}

// Halted reports whether the CPU stopped itself.
func (c *CPU) Halted() bool {
	return c.halted
}

// ErrorCount returns the number of faults since the last reset or restart.
func (c *CPU) ErrorCount() int {
	return c.errors
}

// CycleCount returns the number of executed instructions.
func (c *CPU) CycleCount() uint64 {
	return c.cycles
}

// Healthy reports whether execution is still trustworthy. The host stops the
// machine when this turns false.
func (c *CPU) Healthy() bool {
	return !c.halted && c.errors < errorHealthy && c.sp < stackSize
}

// Stats returns a one-line execution summary.
func (c *CPU) Stats() string {
	return fmt.Sprintf("Cycles: %d | Errors: %d | Halted: %t | Stack: %d/%d",
		c.cycles, c.errors, c.halted, c.sp, stackSize)
}

// DebugInfo formats the full register state. The keys are stable: PC, I, SP,
// DT, ST, Cycles, Err and V0 through VF.
func (c *CPU) DebugInfo() string {
	var b strings.Builder
	fmt.Fprintf(&b, "PC: 0x%04X | I: 0x%04X | SP: %d | DT: %d | ST: %d | Cycles: %d | Err: %d\n",
		c.pc, c.i, c.sp, c.timers.Delay(), c.timers.Sound(), c.cycles, c.errors)
	for reg := 0; reg < len(c.v); reg++ {
		if reg > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "V%X: %02X", reg, c.v[reg])
	}
	return b.String()
}
