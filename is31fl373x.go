// Package is31fl373x controls IS31FL3733, IS31FL3737 and IS31FL3737B LED
// matrix drivers via I2C.
//
// These chips drive a matrix of up to 16x12 single-color LEDs with 8-bit
// PWM per LED. The register space is paged; this driver hides the paging
// and the chips' non-rectangular register layout behind a flat (x, y)
// frame buffer.
//
// See the examples for how to use this package.
package is31fl373x

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"periph.io/x/conn/v3/i2c"
)

const (
	// Register paging. Every page switch must first write the unlock
	// value to the lock register; the lock re-engages after one command
	// register write.
	regUnlock   byte = 0xFE
	regCommand  byte = 0xFD
	unlockValue byte = 0xC5

	pageLEDControl byte = 0x00 // LED on/off bits
	pagePWM        byte = 0x01 // one PWM byte per LED
	pageAutoBreath byte = 0x02 // auto breath mode assignment (unused here)
	pageFunction   byte = 0x03 // configuration and control

	// Function page registers.
	funcConfiguration byte = 0x00
	funcGlobalCurrent byte = 0x01
	funcReset         byte = 0x11

	// Configuration register bit 0: normal operation (software shutdown
	// when cleared).
	confNormalOperation byte = 0x01

	// All chips lay out each matrix row across 16 register addresses,
	// even the 12-column ones.
	registerStride = 16

	// 7-bit base address shared by the whole family.
	baseAddress uint16 = 0x50

	// Settle time after triggering a chip reset.
	resetSettle = 10 * time.Millisecond
)

var (
	errNotInitialized = errors.New("is31fl373x: device not initialized")
	errHalted         = errors.New("is31fl373x: halted")
)

// PixelMapping assigns one logical pixel index to a hardware pin pair.
// Pin numbers are 1-based: CS1-CS16 and SW1-SW12 on the IS31FL3733,
// CS1-CS12 and SW1-SW12 on the 12-column chips.
type PixelMapping struct {
	CS uint8
	SW uint8
}

// Dev is the device handle for one chip.
//
// A Dev is created by New3733, New3737 or New3737B with purely static
// parameters and touches the bus for the first time in Init. Drawing
// operations before a successful Init are silent no-ops so that a failed
// or skipped matrix degrades gracefully instead of crashing the caller.
type Dev struct {
	bus  i2c.Bus
	addr uint16
	chip chip

	// Created lazily in Init; the bus may not be usable at construction
	// time.
	d *i2c.Dev

	// One PWM byte per logical pixel, row-major, allocated in Init.
	buffer []byte

	current    byte // hardware global current, function page
	brightness byte // software master brightness, applied on writes

	// Borrowed from the caller; must outlive the device.
	layout []PixelMapping

	// Additive shift applied to logical coordinates before hardware pin
	// conversion, for pin-compatible cross-variant wiring.
	csOffset int
	swOffset int

	halted bool
}

func newDev(bus i2c.Bus, addr uint16, c chip) *Dev {
	return &Dev{
		bus:        bus,
		addr:       addr,
		chip:       c,
		current:    128,
		brightness: 255,
	}
}

// Init allocates the frame buffer and configures the chip for normal
// operation: reset, all LEDs enabled, configured global current, PWM page
// selected. It is safe to call again on an already initialized device.
//
// On failure the device stays uninitialized and drawing operations remain
// inert.
func (d *Dev) Init() error {
	if d.bus == nil {
		return errors.New("is31fl373x: no bus")
	}
	if d.d == nil {
		d.d = &i2c.Dev{Bus: d.bus, Addr: d.addr}
	}
	if d.buffer == nil {
		d.buffer = make([]byte, d.chip.width*d.chip.height)
	} else {
		clear(d.buffer)
	}
	if err := d.configure(); err != nil {
		d.buffer = nil
		return err
	}
	d.halted = false
	return nil
}

// configure runs the chip initialization sequence. The LED on/off bits
// must be set before PWM values have any visible effect.
func (d *Dev) configure() error {
	// Reading the reset register restores all pages to their default
	// values.
	if err := d.selectPage(pageFunction); err != nil {
		return fmt.Errorf("is31fl373x: reset: %w", err)
	}
	if _, err := d.readRegister(funcReset); err != nil {
		return fmt.Errorf("is31fl373x: reset: %w", err)
	}
	time.Sleep(resetSettle)

	// Enable every LED so the PWM page alone controls intensity.
	if err := d.selectPage(pageLEDControl); err != nil {
		return fmt.Errorf("is31fl373x: led enable: %w", err)
	}
	for reg := 0; reg < d.chip.enableRegs(); reg++ {
		if err := d.writeRegister(byte(reg), 0xFF); err != nil {
			return fmt.Errorf("is31fl373x: led enable: %w", err)
		}
	}

	if err := d.selectPage(pageFunction); err != nil {
		return fmt.Errorf("is31fl373x: configure: %w", err)
	}
	if err := d.writeRegister(funcConfiguration, confNormalOperation); err != nil {
		return fmt.Errorf("is31fl373x: configure: %w", err)
	}
	if err := d.writeRegister(funcGlobalCurrent, d.current); err != nil {
		return fmt.Errorf("is31fl373x: configure: %w", err)
	}

	// Leave the PWM page selected for subsequent Show calls.
	if err := d.selectPage(pagePWM); err != nil {
		return fmt.Errorf("is31fl373x: configure: %w", err)
	}
	return nil
}

// selectPage unlocks the command register and selects a register page.
// The unlock re-engages after one command write, so both steps repeat on
// every switch.
func (d *Dev) selectPage(page byte) error {
	if err := d.writeRegister(regUnlock, unlockValue); err != nil {
		return err
	}
	return d.writeRegister(regCommand, page)
}

func (d *Dev) writeRegister(reg, value byte) error {
	return d.d.Tx([]byte{reg, value}, nil)
}

func (d *Dev) readRegister(reg byte) (byte, error) {
	var r [1]byte
	if err := d.d.Tx([]byte{reg}, r[:]); err != nil {
		return 0, err
	}
	return r[0], nil
}

// CoordToAddr translates a logical coordinate to the PWM register address
// for this chip, applying the configured coordinate offset. The caller is
// responsible for bounds checking; coordinates inside [0,Width)x[0,Height)
// always produce a valid address.
func (d *Dev) CoordToAddr(x, y int) int {
	cs := x + d.csOffset + 1
	sw := y + d.swOffset + 1
	return d.pinsToAddr(cs, sw)
}

// pinsToAddr converts 1-based hardware pins to a register address. The
// row stride is 16 for every chip regardless of true column count; the
// per-chip colOffset step absorbs the IS31FL3737 row gap.
func (d *Dev) pinsToAddr(cs, sw int) int {
	return (sw-1)*registerStride + d.chip.colOffset(cs)
}

// AddrToCoord is the inverse of CoordToAddr. It is only defined for
// addresses that CoordToAddr can produce.
func (d *Dev) AddrToCoord(addr int) (x, y int) {
	sw := addr/registerStride + 1
	cs := d.chip.colFromOffset(addr % registerStride)
	return cs - 1 - d.csOffset, sw - 1 - d.swOffset
}

// SetCoordinateOffset shifts all logical coordinates by the given amounts
// before hardware pin conversion. Used to drive a pin-compatible chip
// whose pin numbering starts at a different base.
func (d *Dev) SetCoordinateOffset(cs, sw int) {
	d.csOffset = cs
	d.swOffset = sw
}

// scale applies the software master brightness to a requested intensity.
func (d *Dev) scale(intensity byte) byte {
	return byte(int(intensity) * int(d.brightness) / 255)
}

// SetPixel sets the intensity of one pixel in the frame buffer. Out of
// range coordinates are silently ignored. The value is scaled by the
// master brightness before storage; nothing reaches the chip until Show.
func (d *Dev) SetPixel(x, y int, intensity byte) {
	if d.buffer == nil || x < 0 || y < 0 || x >= d.chip.width || y >= d.chip.height {
		return
	}
	d.buffer[y*d.chip.width+x] = d.scale(intensity)
}

// SetPixelIndex sets the intensity of a pixel by its linear buffer index.
// With a custom layout active the index has no geometric meaning; it
// simply selects the layout entry written by Show.
func (d *Dev) SetPixelIndex(index int, intensity byte) {
	if index < 0 || index >= len(d.buffer) {
		return
	}
	d.buffer[index] = d.scale(intensity)
}

// Clear zero-fills the frame buffer. It performs no bus I/O.
func (d *Dev) Clear() {
	clear(d.buffer)
}

// PixelAt returns the stored intensity at a coordinate, or 0 when out of
// range or before initialization.
func (d *Dev) PixelAt(x, y int) byte {
	if d.buffer == nil || x < 0 || y < 0 || x >= d.chip.width || y >= d.chip.height {
		return 0
	}
	return d.buffer[y*d.chip.width+x]
}

// PixelAtIndex returns the stored intensity at a linear index, or 0 when
// out of range or before initialization.
func (d *Dev) PixelAtIndex(index int) byte {
	if index < 0 || index >= len(d.buffer) {
		return 0
	}
	return d.buffer[index]
}

// NonZeroCount returns the number of lit pixels in the frame buffer.
func (d *Dev) NonZeroCount() int {
	n := 0
	for _, v := range d.buffer {
		if v != 0 {
			n++
		}
	}
	return n
}

// PixelSum returns the sum of all stored intensities.
func (d *Dev) PixelSum() int {
	sum := 0
	for _, v := range d.buffer {
		sum += int(v)
	}
	return sum
}

// SetLayout installs a custom pixel mapping: buffer index i is written to
// the register addressed by layout[i] instead of the rectangular mapping.
// The slice is borrowed and must stay valid for the lifetime of the
// device. A nil or empty slice restores the rectangular mapping.
func (d *Dev) SetLayout(layout []PixelMapping) {
	if len(layout) == 0 {
		d.layout = nil
		return
	}
	d.layout = layout
}

// LayoutActive reports whether a custom pixel mapping is installed.
func (d *Dev) LayoutActive() bool {
	return d.layout != nil
}

// LayoutSize returns the number of entries in the custom pixel mapping.
func (d *Dev) LayoutSize() int {
	return len(d.layout)
}

// Show transfers the frame buffer to the chip. Each pixel is written to
// its own translated register address; the register rows are wider than
// the matrix (and on the IS31FL3737 contain holes), so there is no bulk
// copy across a row. The buffer is not modified.
func (d *Dev) Show() error {
	if d.halted {
		return errHalted
	}
	if d.buffer == nil {
		return errNotInitialized
	}
	if err := d.selectPage(pagePWM); err != nil {
		return err
	}
	if d.layout != nil {
		n := len(d.layout)
		if n > len(d.buffer) {
			n = len(d.buffer)
		}
		for i := 0; i < n; i++ {
			m := d.layout[i]
			addr := d.pinsToAddr(int(m.CS)+d.csOffset, int(m.SW)+d.swOffset)
			if err := d.writeRegister(byte(addr), d.buffer[i]); err != nil {
				return err
			}
		}
		return nil
	}
	for y := 0; y < d.chip.height; y++ {
		for x := 0; x < d.chip.width; x++ {
			addr := d.CoordToAddr(x, y)
			if err := d.writeRegister(byte(addr), d.buffer[y*d.chip.width+x]); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetGlobalCurrent sets the hardware output current (0-255). Before Init
// the value is stored and written during the initialization sequence; on
// an initialized device the register is updated immediately and the PWM
// page is reselected.
func (d *Dev) SetGlobalCurrent(current byte) error {
	d.current = current
	if d.buffer == nil {
		return nil
	}
	if err := d.selectPage(pageFunction); err != nil {
		return err
	}
	if err := d.writeRegister(funcGlobalCurrent, current); err != nil {
		return err
	}
	return d.selectPage(pagePWM)
}

// SetMasterBrightness sets the software brightness scale (0-255) applied
// to subsequent pixel writes. Already stored pixels are unaffected.
// Global current and master brightness compose multiplicatively; callers
// always pass flat 0-255 intensities.
func (d *Dev) SetMasterBrightness(brightness byte) {
	d.brightness = brightness
}

// GlobalCurrent returns the configured hardware output current.
func (d *Dev) GlobalCurrent() byte {
	return d.current
}

// MasterBrightness returns the software brightness scale.
func (d *Dev) MasterBrightness() byte {
	return d.brightness
}

// Addr returns the 7-bit I2C address derived from the ADDR pin wiring.
func (d *Dev) Addr() uint16 {
	return d.addr
}

// Width returns the logical matrix width in pixels.
func (d *Dev) Width() int {
	return d.chip.width
}

// Height returns the logical matrix height in pixels.
func (d *Dev) Height() int {
	return d.chip.height
}

// ColorModel returns the color model of the matrix.
func (d *Dev) ColorModel() color.Model {
	return color.GrayModel
}

// Bounds returns the image bounds of the matrix.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.chip.width, d.chip.height)
}

// Draw renders an image onto the matrix and transfers it to the chip.
// The source is converted to grayscale; dst selects the destination
// region and is clipped to the matrix bounds.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if d.buffer == nil {
		return errNotInitialized
	}
	dst = dst.Intersect(d.Bounds())
	if dst.Empty() {
		return nil
	}
	for y := dst.Min.Y; y < dst.Max.Y; y++ {
		for x := dst.Min.X; x < dst.Max.X; x++ {
			c := color.GrayModel.Convert(src.At(sp.X+x-dst.Min.X, sp.Y+y-dst.Min.Y)).(color.Gray)
			d.SetPixel(x, y, c.Y)
		}
	}
	return d.Show()
}

// Halt blanks the matrix and puts the chip in software shutdown. Init
// brings it back.
func (d *Dev) Halt() error {
	d.halted = true
	if d.d == nil {
		return nil
	}
	if err := d.selectPage(pageFunction); err != nil {
		return err
	}
	return d.writeRegister(funcConfiguration, 0x00)
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("%s{%dx%d@%#02x}", d.chip.name, d.chip.width, d.chip.height, d.addr)
}
