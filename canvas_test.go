package is31fl373x

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

// testCanvas builds a canvas of 12x12 devices with in-memory buffers.
func testCanvas(w, h, n int, layout Layout) (*Canvas, []*Dev) {
	devs := make([]*Dev, n)
	for i := range devs {
		devs[i] = withBuffer(New3737B(nil, GND))
	}
	return NewCanvas(w, h, devs, layout), devs
}

func TestCanvasHorizontalRouting(t *testing.T) {
	c, devs := testCanvas(36, 12, 3, Horizontal)

	c.SetPixel(11, 0, 255) // last column of device 0
	c.SetPixel(12, 0, 128) // first column of device 1
	c.SetPixel(35, 5, 64)  // last column of device 2
	c.SetPixel(36, 0, 255) // outside the declared canvas

	assert.Equal(t, 1, devs[0].NonZeroCount())
	assert.Equal(t, 1, devs[1].NonZeroCount())
	assert.Equal(t, 1, devs[2].NonZeroCount())
	assert.Equal(t, 3, c.NonZeroCount())

	assert.Equal(t, byte(255), devs[0].PixelAt(11, 0))
	assert.Equal(t, byte(128), devs[1].PixelAt(0, 0))
	assert.Equal(t, byte(64), devs[2].PixelAt(11, 5))

	// Read back through the canvas.
	assert.Equal(t, byte(128), c.PixelAt(12, 0))
	assert.Equal(t, byte(0), c.PixelAt(36, 0))
}

func TestCanvasVerticalRouting(t *testing.T) {
	c, devs := testCanvas(12, 24, 2, Vertical)

	c.SetPixel(3, 11, 255) // bottom row of device 0
	c.SetPixel(3, 12, 128) // top row of device 1
	c.SetPixel(3, 24, 64)  // outside

	assert.Equal(t, byte(255), devs[0].PixelAt(3, 11))
	assert.Equal(t, byte(128), devs[1].PixelAt(3, 0))
	assert.Equal(t, 2, c.NonZeroCount())
}

func TestCanvasMixedWidths(t *testing.T) {
	// 16-wide IS31FL3733 followed by a 12-wide IS31FL3737B; the router
	// walks real device extents rather than assuming a uniform width.
	left := withBuffer(New3733(nil, GND, GND))
	right := withBuffer(New3737B(nil, VCC))
	c := NewCanvas(28, 12, []*Dev{left, right}, Horizontal)

	c.SetPixel(15, 6, 123) // last column of the 3733
	c.SetPixel(16, 6, 45)  // first column of the 3737B

	assert.Equal(t, byte(123), left.PixelAt(15, 6))
	assert.Equal(t, byte(45), right.PixelAt(0, 6))
	assert.Equal(t, 1, left.NonZeroCount())
	assert.Equal(t, 1, right.NonZeroCount())
}

func TestCanvasCoordinateBeyondChain(t *testing.T) {
	// Declared wider than the chained devices: the uncovered span drops
	// writes silently.
	c, devs := testCanvas(40, 12, 2, Horizontal)
	c.SetPixel(30, 0, 255)
	assert.Equal(t, 0, devs[0].NonZeroCount()+devs[1].NonZeroCount())

	// Taller than a member device: y is bounds-checked per device.
	c.SetPixel(0, 12, 255)
	assert.Equal(t, 0, c.NonZeroCount())
}

func TestCanvasInit(t *testing.T) {
	d0 := New3737B(&i2ctest.Playback{Ops: initOps(0x50, 128), DontPanic: true}, GND)
	d1 := New3737B(&i2ctest.Playback{Ops: initOps(0x5F, 128), DontPanic: true}, VCC)
	c := NewCanvas(24, 12, []*Dev{d0, d1}, Horizontal)

	require.NoError(t, c.Init())
	assert.Equal(t, 2, c.DeviceCount())
	assert.NotNil(t, c.Device(0))
	assert.NotNil(t, c.Device(1))
	assert.Nil(t, c.Device(2))
}

func TestCanvasInitNilDeviceFails(t *testing.T) {
	d0 := New3737B(&i2ctest.Playback{Ops: initOps(0x50, 128), DontPanic: true}, GND)
	c := NewCanvas(24, 12, []*Dev{d0, nil}, Horizontal)

	// All-or-nothing: one nil slot fails the whole canvas, but the
	// valid device still gets initialized.
	require.Error(t, c.Init())
	assert.Equal(t, 144, len(d0.buffer))
}

func TestCanvasInitDeviceFailure(t *testing.T) {
	good := New3737B(&i2ctest.Playback{Ops: initOps(0x50, 128), DontPanic: true}, GND)
	bad := New3737B(&i2ctest.Playback{DontPanic: true}, VCC)
	c := NewCanvas(24, 12, []*Dev{bad, good}, Horizontal)

	// The failing device poisons the canvas result; the good one is
	// still attempted and stays initialized.
	require.Error(t, c.Init())
	assert.NotNil(t, good.buffer)
	assert.Nil(t, bad.buffer)
}

func TestCanvasFanOut(t *testing.T) {
	c, devs := testCanvas(36, 12, 3, Horizontal)

	require.NoError(t, c.SetGlobalCurrent(100))
	c.SetMasterBrightness(200)
	for _, d := range devs {
		assert.Equal(t, byte(100), d.GlobalCurrent())
		assert.Equal(t, byte(200), d.MasterBrightness())
	}

	c.SetPixel(5, 5, 255)
	require.NotZero(t, c.NonZeroCount())
	c.Clear()
	assert.Equal(t, 0, c.NonZeroCount())
}

func TestCanvasShowUninitialized(t *testing.T) {
	// Without Init the devices have no buffers; drawing is inert and
	// Show reports the failure without crashing.
	devs := []*Dev{New3737B(nil, GND)}
	c := NewCanvas(12, 12, devs, Horizontal)

	c.Clear()
	c.SetPixel(5, 5, 255)
	assert.Equal(t, 0, c.NonZeroCount())
	assert.ErrorIs(t, c.Show(), errNotInitialized)
}

func TestCanvasShow(t *testing.T) {
	rec0 := &i2ctest.Record{}
	rec1 := &i2ctest.Record{}
	d0 := withBuffer(New3737B(rec0, GND))
	d1 := withBuffer(New3737B(rec1, VCC))
	c := NewCanvas(24, 12, []*Dev{d0, d1}, Horizontal)

	c.SetPixel(13, 2, 0x42) // device 1, local (1, 2)
	require.NoError(t, c.Show())

	// Both devices got a full transfer; the pixel write shows up on
	// device 1 at register (2*16)+1.
	assert.Equal(t, 2+144, len(rec0.Ops))
	assert.Equal(t, 2+144, len(rec1.Ops))
	found := false
	for _, op := range rec1.Ops[2:] {
		if op.W[0] == 33 && op.W[1] == 0x42 {
			found = true
		}
	}
	assert.True(t, found)

	// Show leaves the buffers untouched.
	assert.Equal(t, 1, c.NonZeroCount())
}

func TestCanvasBoundsAndString(t *testing.T) {
	c, _ := testCanvas(36, 12, 3, Horizontal)
	assert.Equal(t, 36, c.Bounds().Dx())
	assert.Equal(t, 12, c.Bounds().Dy())
	assert.Equal(t, "is31fl373x.Canvas{36x12, 3 devices, horizontal}", c.String())
}
