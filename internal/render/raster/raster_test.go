package raster

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCanvas(t *testing.T) *Canvas {
	t.Helper()
	c, err := New(Options{Width: 64, Height: 64})
	require.NoError(t, err)
	return c
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := New(Options{Width: 0, Height: 10})
	assert.Error(t, err)
	_, err = New(Options{Width: 10, Height: 10, Background: "not-a-colour"})
	assert.Error(t, err)
	_, err = New(Options{Width: 10, Height: 10, Format: "gif"})
	assert.Error(t, err)
}

func TestClearFillsBackground(t *testing.T) {
	c, err := New(Options{Width: 8, Height: 8, Background: "#102030"})
	require.NoError(t, err)
	r, g, b, a := c.Image().At(3, 3).RGBA()
	assert.Equal(t, uint32(0x10), r>>8)
	assert.Equal(t, uint32(0x20), g>>8)
	assert.Equal(t, uint32(0x30), b>>8)
	assert.Equal(t, uint32(0xffff), a)
}

func TestCircleFillsCentre(t *testing.T) {
	c := newCanvas(t)
	c.SetColor(0, 100, 50)
	c.Circle(10)

	r, g, b, _ := c.Image().At(32, 32).RGBA()
	assert.Greater(t, r>>8, uint32(200))
	assert.Less(t, g>>8, uint32(40))
	assert.Less(t, b>>8, uint32(40))

	// outside the radius stays white
	r, g, b, _ = c.Image().At(2, 2).RGBA()
	assert.Equal(t, []uint32{0xff, 0xff, 0xff}, []uint32{r >> 8, g >> 8, b >> 8})
}

func TestShapesDoNotMoveCursor(t *testing.T) {
	c := newCanvas(t)
	before := c.CurrentTransform()
	c.Rect(10, 5)
	c.Triangle(12)
	c.Ellipse(8, 3)
	c.Line(20)
	c.Noise(3, 6)
	assert.Equal(t, before, c.CurrentTransform())
}

func TestNoiseIsPixelReproducible(t *testing.T) {
	a := newCanvas(t)
	b := newCanvas(t)
	a.SetColor(120, 60, 40)
	b.SetColor(120, 60, 40)
	a.Noise(1234, 20)
	b.Noise(1234, 20)
	assert.Equal(t, a.Image().Pix, b.Image().Pix)

	c := newCanvas(t)
	c.SetColor(120, 60, 40)
	c.Noise(4321, 20)
	assert.NotEqual(t, a.Image().Pix, c.Image().Pix)
}

func TestExportPNG(t *testing.T) {
	c := newCanvas(t)
	c.Circle(12)

	var buf bytes.Buffer
	require.NoError(t, c.Export(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
}

func TestExportScaled(t *testing.T) {
	c, err := New(Options{Width: 64, Height: 32, ExportWidth: 128})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, c.Export(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
	assert.Equal(t, 64, img.Bounds().Dy())
}

func TestExportTerminalFormats(t *testing.T) {
	for _, f := range []Format{FormatSixel, FormatSixelPlan9} {
		t.Run(string(f), func(t *testing.T) {
			c := newCanvas(t)
			require.NoError(t, c.SetFormat(f))
			c.Circle(8)

			var buf bytes.Buffer
			require.NoError(t, c.Export(&buf))
			assert.Contains(t, buf.String(), "\x1bP", "sixel output opens a DCS sequence")
		})
	}

	c := newCanvas(t)
	require.NoError(t, c.SetFormat(FormatIterm))
	var buf bytes.Buffer
	require.NoError(t, c.Export(&buf))
	assert.Contains(t, buf.String(), "1337;File=")
}

func TestParseFormat(t *testing.T) {
	for _, f := range Formats() {
		got, err := ParseFormat(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	_, err := ParseFormat("bmp")
	assert.Error(t, err)
	assert.False(t, FormatPNG.IsTerminal())
	assert.True(t, FormatSixel.IsTerminal())
}
