package memory

import (
	"errors"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestFontInstalledAtZero(t *testing.T) {
	mem := New()

	// glyph "0" occupies the first five bytes
	assert.Equal(t, []uint8{0xF0, 0x90, 0x90, 0x90, 0xF0}, mem.ReadBytes(0x000, 5))

	// glyph "F" ends the table at 0x04F
	assert.Equal(t, uint16(75), mem.FontAddress(0xF))
	assert.Equal(t, []uint8{0xF0, 0x80, 0xF0, 0x80, 0x80}, mem.ReadBytes(75, 5))

	// nothing beyond the table
	assert.Equal(t, uint8(0), mem.ReadByte(0x050))
}

func TestFontAddressMasksDigit(t *testing.T) {
	mem := New()

	assert.Equal(t, mem.FontAddress(0x7), mem.FontAddress(0x17))
	assert.Equal(t, uint16(0), mem.FontAddress(0x10))
}

func TestLoadROM(t *testing.T) {
	mem := New()

	rom := []byte{0x60, 0x20, 0x61, 0x10}
	assert.NoError(t, mem.LoadROM(rom))
	assert.Equal(t, uint8(0x60), mem.ReadByte(ProgramStart))
	assert.Equal(t, uint8(0x10), mem.ReadByte(ProgramStart+3))
}

func TestLoadROMSizeLimits(t *testing.T) {
	mem := New()

	err := mem.LoadROM(nil)
	assert.True(t, errors.Is(err, ErrEmptyROM))

	assert.NoError(t, mem.LoadROM(make([]byte, MaxROMSize)))

	err = mem.LoadROM(make([]byte, MaxROMSize+1))
	assert.True(t, errors.Is(err, ErrROMTooLarge))
}

func TestLoadROMClearsPreviousProgram(t *testing.T) {
	mem := New()

	long := make([]byte, 64)
	for i := range long {
		long[i] = 0xEE
	}
	assert.NoError(t, mem.LoadROM(long))

	assert.NoError(t, mem.LoadROM([]byte{0x12, 0x00}))
	assert.Equal(t, uint8(0), mem.ReadByte(ProgramStart+2))
	assert.Equal(t, uint8(0), mem.ReadByte(ProgramStart+63))
}

func TestAddressMasking(t *testing.T) {
	mem := New()

	mem.WriteByte(0x1234, 0x42)
	assert.Equal(t, uint8(0x42), mem.ReadByte(0x234))
	assert.Equal(t, uint8(0x42), mem.ReadByte(0x1234))
}

func TestReadWordBigEndian(t *testing.T) {
	mem := New()

	mem.WriteByte(0x300, 0xAB)
	mem.WriteByte(0x301, 0xCD)
	assert.Equal(t, uint16(0xABCD), mem.ReadWord(0x300))
}

func TestReadBytesMasksEachAddress(t *testing.T) {
	mem := New()

	mem.WriteByte(0xFFF, 0x11)
	// address 0x000 holds the first font byte
	assert.Equal(t, []uint8{0x11, 0xF0}, mem.ReadBytes(0xFFF, 2))
}

func TestReset(t *testing.T) {
	mem := New()

	assert.NoError(t, mem.LoadROM([]byte{0xAA}))
	mem.WriteByte(0x000, 0x00) // clobber the font

	mem.Reset()

	assert.Equal(t, uint8(0xF0), mem.ReadByte(0x000))
	assert.Equal(t, uint8(0), mem.ReadByte(ProgramStart))
}

func TestDumpFormat(t *testing.T) {
	mem := New()
	assert.NoError(t, mem.LoadROM([]byte{0x60, 0x20, 0x48, 0x69}))

	dump := mem.Dump(0x200, 16)
	assert.True(t, strings.HasPrefix(dump, "0200: 60 20 48 69"))
	assert.True(t, strings.Contains(dump, "|` Hi"))
	assert.True(t, strings.HasSuffix(dump, "|\n"))
}

func TestDumpClampsAtTopOfMemory(t *testing.T) {
	mem := New()

	dump := mem.Dump(0xFF0, 64)
	assert.Equal(t, 1, strings.Count(dump, "\n"))
	assert.True(t, strings.HasPrefix(dump, "0FF0:"))
}

func TestAddressInfo(t *testing.T) {
	mem := New()

	assert.True(t, strings.Contains(mem.AddressInfo(0x000), "font"))
	assert.True(t, strings.Contains(mem.AddressInfo(0x100), "reserved"))
	assert.True(t, strings.Contains(mem.AddressInfo(0x300), "program"))
	assert.True(t, strings.Contains(mem.AddressInfo(0x000), "0xF0"))
}

func TestStats(t *testing.T) {
	mem := New()
	assert.NoError(t, mem.LoadROM([]byte{0x01, 0x02, 0x03}))
	mem.WriteByte(0x400, 1)

	stats := mem.Stats()
	assert.True(t, strings.Contains(stats, "4B program"))
	assert.True(t, strings.Contains(stats, "1 writes"))
}
