package raster

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/png"
	"io"

	"github.com/BourgeoisBear/rasterm"
	"github.com/mattn/go-sixel"
	xdraw "golang.org/x/image/draw"
)

// Format selects the encoding used by Export
type Format string

const (
	FormatPNG        Format = "png"
	FormatSixel      Format = "sixel"
	FormatSixelPlan9 Format = "sixel-plan9"
	FormatIterm      Format = "iterm"
)

// Formats lists every supported export format
func Formats() []Format {
	return []Format{FormatPNG, FormatSixel, FormatSixelPlan9, FormatIterm}
}

// ParseFormat validates a format name
func ParseFormat(name string) (Format, error) {
	for _, f := range Formats() {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown image format %q", name)
}

// IsTerminal reports whether the format is an inline terminal graphics protocol
func (f Format) IsTerminal() bool {
	return f != FormatPNG
}

// SetFormat changes the export format
func (c *Canvas) SetFormat(f Format) error {
	if _, err := ParseFormat(string(f)); err != nil {
		return err
	}
	c.opts.Format = f
	return nil
}

// SetExportWidth rescales future exports to width pixels, keeping the aspect ratio
func (c *Canvas) SetExportWidth(width int) {
	c.opts.ExportWidth = width
}

// Export encodes the canvas in the configured format
func (c *Canvas) Export(w io.Writer) error {
	img := c.scaled()
	switch c.opts.Format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatSixel:
		enc := sixel.NewEncoder(w)
		enc.Dither = true
		return enc.Encode(img)
	case FormatSixelPlan9:
		bounds := img.Bounds()
		paletted := image.NewPaletted(bounds, palette.Plan9)
		draw.FloydSteinberg.Draw(paletted, bounds, img, bounds.Min)
		return rasterm.SixelWriteImage(w, paletted)
	case FormatIterm:
		return rasterm.ItermWriteImage(w, img)
	default:
		return fmt.Errorf("unknown image format %q", c.opts.Format)
	}
}

func (c *Canvas) scaled() image.Image {
	ew := c.opts.ExportWidth
	bounds := c.img.Bounds()
	if ew <= 0 || ew == bounds.Dx() {
		return c.img
	}
	eh := bounds.Dy() * ew / bounds.Dx()
	if eh < 1 {
		eh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, ew, eh))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), c.img, bounds, xdraw.Src, nil)
	return dst
}
