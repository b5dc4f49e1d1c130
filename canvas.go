package is31fl373x

import (
	"fmt"
	"image"
	"image/color"
)

// Layout is the chaining direction of the devices forming a Canvas.
type Layout int

const (
	Horizontal Layout = iota
	Vertical
)

// Canvas presents several devices as one logical rectangle. Devices are
// chained left to right (Horizontal) or top to bottom (Vertical) in slice
// order and may have different sizes.
//
// The device slice is borrowed from the caller; the canvas never closes
// or frees the devices.
type Canvas struct {
	width   int
	height  int
	devices []*Dev
	layout  Layout
}

// NewCanvas creates a canvas of the declared logical size over the given
// devices. Coordinates that fall outside every device's extent are
// silently dropped by the drawing operations.
func NewCanvas(width, height int, devices []*Dev, layout Layout) *Canvas {
	return &Canvas{
		width:   width,
		height:  height,
		devices: devices,
		layout:  layout,
	}
}

// Init initializes every member device. It is all-or-nothing: a nil
// device slot or a device-level failure makes the whole canvas report
// failure. Devices that initialized successfully stay initialized; there
// is no rollback.
func (c *Canvas) Init() error {
	var firstErr error
	for i, d := range c.devices {
		if d == nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("is31fl373x: canvas device %d is nil", i)
			}
			continue
		}
		if err := d.Init(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("is31fl373x: canvas device %d: %w", i, err)
		}
	}
	return firstErr
}

// locate resolves a canvas coordinate to a device and its local
// coordinate by walking the chain and accumulating extents. It returns a
// nil device when the coordinate resolves to no device.
func (c *Canvas) locate(x, y int) (*Dev, int, int) {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return nil, 0, 0
	}
	cursor := 0
	for _, d := range c.devices {
		if d == nil {
			continue
		}
		switch c.layout {
		case Horizontal:
			if x < cursor+d.Width() {
				if y >= d.Height() {
					return nil, 0, 0
				}
				return d, x - cursor, y
			}
			cursor += d.Width()
		case Vertical:
			if y < cursor+d.Height() {
				if x >= d.Width() {
					return nil, 0, 0
				}
				return d, x, y - cursor
			}
			cursor += d.Height()
		}
	}
	return nil, 0, 0
}

// SetPixel routes a canvas coordinate to the owning device. Coordinates
// outside the canvas or beyond the chained devices are silently dropped.
func (c *Canvas) SetPixel(x, y int, intensity byte) {
	if d, lx, ly := c.locate(x, y); d != nil {
		d.SetPixel(lx, ly, intensity)
	}
}

// PixelAt returns the stored intensity at a canvas coordinate, or 0 when
// it resolves to no device.
func (c *Canvas) PixelAt(x, y int) byte {
	if d, lx, ly := c.locate(x, y); d != nil {
		return d.PixelAt(lx, ly)
	}
	return 0
}

// Show transfers every device's frame buffer to its chip. All devices are
// attempted; the first error is returned.
func (c *Canvas) Show() error {
	var firstErr error
	for _, d := range c.devices {
		if d == nil {
			continue
		}
		if err := d.Show(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Clear zero-fills every device's frame buffer.
func (c *Canvas) Clear() {
	for _, d := range c.devices {
		if d != nil {
			d.Clear()
		}
	}
}

// SetGlobalCurrent sets the hardware output current on every device.
func (c *Canvas) SetGlobalCurrent(current byte) error {
	var firstErr error
	for _, d := range c.devices {
		if d == nil {
			continue
		}
		if err := d.SetGlobalCurrent(current); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SetMasterBrightness sets the software brightness scale on every device.
func (c *Canvas) SetMasterBrightness(brightness byte) {
	for _, d := range c.devices {
		if d != nil {
			d.SetMasterBrightness(brightness)
		}
	}
}

// NonZeroCount returns the number of lit pixels across all devices.
func (c *Canvas) NonZeroCount() int {
	n := 0
	for _, d := range c.devices {
		if d != nil {
			n += d.NonZeroCount()
		}
	}
	return n
}

// DeviceCount returns the number of device slots in the chain, including
// nil slots.
func (c *Canvas) DeviceCount() int {
	return len(c.devices)
}

// Device returns the device at a chain position, or nil when the position
// is out of range.
func (c *Canvas) Device(i int) *Dev {
	if i < 0 || i >= len(c.devices) {
		return nil
	}
	return c.devices[i]
}

// ColorModel returns the color model of the canvas.
func (c *Canvas) ColorModel() color.Model {
	return color.GrayModel
}

// Bounds returns the declared logical bounds of the canvas.
func (c *Canvas) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.width, c.height)
}

// Draw renders an image across the chained devices and transfers it.
func (c *Canvas) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	dst = dst.Intersect(c.Bounds())
	if dst.Empty() {
		return nil
	}
	for y := dst.Min.Y; y < dst.Max.Y; y++ {
		for x := dst.Min.X; x < dst.Max.X; x++ {
			g := color.GrayModel.Convert(src.At(sp.X+x-dst.Min.X, sp.Y+y-dst.Min.Y)).(color.Gray)
			c.SetPixel(x, y, g.Y)
		}
	}
	return c.Show()
}

// String returns a string representation of the canvas.
func (c *Canvas) String() string {
	dir := "horizontal"
	if c.layout == Vertical {
		dir = "vertical"
	}
	return fmt.Sprintf("is31fl373x.Canvas{%dx%d, %d devices, %s}", c.width, c.height, len(c.devices), dir)
}
