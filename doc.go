// Package is31fl373x controls the Lumissil IS31FL3733, IS31FL3737 and
// IS31FL3737B LED matrix drivers via I2C.
//
// The three chips share one register architecture: four register pages
// (LED on/off, PWM, auto breath assignment, function) behind an
// unlock/command pair, with one PWM byte per LED. They differ in matrix
// size and register-map shape:
//
//   - IS31FL3733: 16x12 LEDs, two ADDR pins (up to 16 chips per bus)
//   - IS31FL3737: 12x12 LEDs, one ADDR pin, with a two-register hole in
//     the middle of every register row
//   - IS31FL3737B: 12x12 LEDs, one ADDR pin, contiguous rows
//
// Every chip spreads each matrix row across 16 register addresses even
// when it has only 12 columns. Writing into the unused addresses corrupts
// the chip's internal address pointer without any error indication, so
// all register addressing goes through per-chip coordinate translation.
// The chips expose no identification register; the caller selects the
// variant with the matching constructor.
//
// # Hardware Connection
//
// Connect the chip to your system via I2C:
//
//	Chip Pin → System Pin
//	GND      → GND
//	VCC      → 3.3V (VIO to logic supply)
//	SCL      → I2C Clock
//	SDA      → I2C Data
//	ADDR(s)  → GND, VCC, SDA or SCL (selects the I2C address)
//	SDB      → High (or GPIO to hard-shutdown the chip)
//
// # Basic Usage
//
//	package main
//
//	import (
//		"log"
//
//		"github.com/flavioheleno/is31fl373x"
//		"periph.io/x/conn/v3/i2c/i2creg"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		// Initialize periph.io
//		if _, err := host.Init(); err != nil {
//			log.Fatal(err)
//		}
//
//		// Open I2C bus
//		bus, err := i2creg.Open("")
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer bus.Close()
//
//		// Create the device; no I2C traffic happens yet
//		dev := is31fl373x.New3737B(bus, is31fl373x.GND)
//
//		// Reset and configure the chip
//		if err := dev.Init(); err != nil {
//			log.Fatal(err)
//		}
//		defer dev.Halt()
//
//		// Draw into the frame buffer, then transfer it
//		dev.SetPixel(5, 5, 255)
//		if err := dev.Show(); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// # Drawing Model
//
// All drawing goes into an in-memory frame buffer; nothing reaches the
// chip until Show. SetPixel addresses the buffer by (x, y), SetPixelIndex
// by linear index. Out of range coordinates are silently ignored, which
// keeps call sites that legitimately compute off-matrix coordinates
// (scrolling text, sprites) free of clipping logic.
//
// Dev also implements the periph.io display.Drawer interface: Draw
// converts any image.Image to grayscale, renders it into the buffer and
// transfers it in one call.
//
// # Brightness
//
// Two multiplicative brightness tiers sit below the per-pixel intensity:
//
//   - SetGlobalCurrent drives the chip's global current register, scaling
//     the LED output current in hardware.
//   - SetMasterBrightness scales all subsequent pixel writes in software.
//
// Callers always pass flat 0-255 intensities; both tiers are invisible at
// the call site.
//
// # Custom Layouts
//
// Products that wire LEDs to arbitrary CS/SW pins (rings, segment signs,
// non-rectangular faces) can install a table mapping logical index to pin
// pair with SetLayout. SetPixelIndex then addresses LEDs by table index
// and Show writes each buffered value to its mapped register.
//
// # Multi-Chip Canvases
//
// Canvas chains several devices into one logical rectangle, horizontally
// or vertically, routing each coordinate to the owning device. Devices of
// different sizes can be mixed:
//
//	left := is31fl373x.New3733(bus, is31fl373x.GND, is31fl373x.GND) // 16x12
//	right := is31fl373x.New3737B(bus, is31fl373x.VCC)               // 12x12
//	sign := is31fl373x.NewCanvas(28, 12, []*is31fl373x.Dev{left, right}, is31fl373x.Horizontal)
//	if err := sign.Init(); err != nil {
//		log.Fatal(err)
//	}
//	sign.SetPixel(20, 3, 200) // lands on the right chip at (4, 3)
//	sign.Show()
//
// # Datasheets
//
// https://lumissil.com/assets/pdf/core/IS31FL3733_DS.pdf
//
// https://lumissil.com/assets/pdf/core/IS31FL3737_DS.pdf
//
// https://lumissil.com/assets/pdf/core/IS31FL3737B_DS.pdf
package is31fl373x
