package is31fl373x

import (
	"periph.io/x/conn/v3/i2c"
)

// Pin is the connection of an ADDR pin on the chip. The I2C address of a
// device is derived from how its ADDR pin(s) are wired.
type Pin int

const (
	GND Pin = 0 // ADDR pin tied to ground
	VCC Pin = 1 // ADDR pin tied to VCC
	SDA Pin = 2 // ADDR pin tied to the SDA line
	SCL Pin = 3 // ADDR pin tied to the SCL line
)

// chip describes the matrix geometry and register-space shape of one family
// member. All three chips share the 16-byte row stride; they differ in true
// column count and in how a CS pin maps to an offset within a row.
type chip struct {
	name   string
	width  int
	height int

	// colOffset converts a 1-based CS pin number to the register offset
	// within a row. The IS31FL3737 overrides the base step to skip the
	// two-register hole in the middle of each row.
	colOffset func(cs int) int
	// colFromOffset inverts colOffset. Only valid for offsets that
	// colOffset can produce.
	colFromOffset func(offset int) int
}

// enableRegs is the number of LED on/off registers on page 0, one bit per
// LED across the full register stride.
func (c chip) enableRegs() int {
	return registerStride * c.height / 8
}

func baseColOffset(cs int) int { return cs - 1 }

func baseColFromOffset(offset int) int { return offset + 1 }

// gapColOffset implements the IS31FL3737 row layout: CS7-CS12 sit at
// offsets 8-13, leaving offsets 6, 7, 14 and 15 permanently unused.
func gapColOffset(cs int) int {
	if cs >= 7 {
		return cs + 1
	}
	return cs - 1
}

func gapColFromOffset(offset int) int {
	if offset >= 8 {
		return offset - 1
	}
	return offset + 1
}

var (
	chip3733  = chip{"IS31FL3733", 16, 12, baseColOffset, baseColFromOffset}
	chip3737  = chip{"IS31FL3737", 12, 12, gapColOffset, gapColFromOffset}
	chip3737B = chip{"IS31FL3737B", 12, 12, baseColOffset, baseColFromOffset}
)

// addr3733 builds the 7-bit address of an IS31FL3733 from its two ADDR
// pins. Each pin contributes two address bits; the Pin constant values are
// the hardware bit patterns.
func addr3733(addr1, addr2 Pin) uint16 {
	return baseAddress | uint16(addr2&3)<<2 | uint16(addr1&3)
}

// addrNibble is the 4-bit address pattern for the single ADDR pin of the
// IS31FL3737 and IS31FL3737B. The patterns are hardware-defined and not
// sequential: GND=0000, SCL=0101, SDA=1010, VCC=1111.
var addrNibble = [4]uint16{
	GND: 0b0000,
	VCC: 0b1111,
	SDA: 0b1010,
	SCL: 0b0101,
}

func addr3737(addr Pin) uint16 {
	return baseAddress | addrNibble[addr&3]
}

// New3733 returns a device handle for an IS31FL3733 (16x12 matrix) with
// the given ADDR1/ADDR2 pin wiring. No I2C traffic happens until Init.
func New3733(bus i2c.Bus, addr1, addr2 Pin) *Dev {
	return newDev(bus, addr3733(addr1, addr2), chip3733)
}

// New3737 returns a device handle for an IS31FL3737 (12x12 matrix) with
// the given ADDR pin wiring. No I2C traffic happens until Init.
func New3737(bus i2c.Bus, addr Pin) *Dev {
	return newDev(bus, addr3737(addr), chip3737)
}

// New3737B returns a device handle for an IS31FL3737B (12x12 matrix) with
// the given ADDR pin wiring. No I2C traffic happens until Init.
func New3737B(bus i2c.Bus, addr Pin) *Dev {
	return newDev(bus, addr3737(addr), chip3737B)
}
