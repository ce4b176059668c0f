// Package raster implements the pixel canvas surface of the genome VM.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"codonvm/internal/render"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/vector"
)

const (
	strokeWidth   = 1.5
	curveSegments = 64

	noiseShadeBins = 5
)

var _ render.Renderer = (*Canvas)(nil)

// Options configures a raster canvas
type Options struct {
	Width      int
	Height     int
	MinScale   float64
	Background string // hex colour, "#ffffff" when empty
	Format     Format
	// ExportWidth rescales the exported image; zero keeps the canvas size
	ExportWidth int
}

// Canvas rasterizes VM drawing calls onto an RGBA image
type Canvas struct {
	render.Canvas
	opts       Options
	img        *image.RGBA
	background color.Color
	z          *vector.Rasterizer
}

// New creates a cleared raster canvas
func New(opts Options) (*Canvas, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", opts.Width, opts.Height)
	}
	if opts.Background == "" {
		opts.Background = "#ffffff"
	}
	bg, err := colorful.Hex(opts.Background)
	if err != nil {
		return nil, fmt.Errorf("invalid background colour %q: %w", opts.Background, err)
	}
	if opts.Format == "" {
		opts.Format = FormatPNG
	}
	if _, err := ParseFormat(string(opts.Format)); err != nil {
		return nil, err
	}

	c := &Canvas{
		Canvas:     render.NewCanvas(float64(opts.Width), float64(opts.Height), opts.MinScale),
		opts:       opts,
		img:        image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height)),
		background: bg,
		z:          vector.NewRasterizer(opts.Width, opts.Height),
	}
	c.Clear()
	return c, nil
}

// Image returns the backing image
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

func (c *Canvas) Clear() {
	draw.Draw(c.img, c.img.Bounds(), &image.Uniform{C: c.background}, image.Point{}, draw.Src)
}

func (c *Canvas) Circle(radius float64) {
	c.shape(ellipsePoints(radius, radius))
}

func (c *Canvas) Ellipse(rx, ry float64) {
	c.shape(ellipsePoints(rx, ry))
}

func (c *Canvas) Rect(width, height float64) {
	w, h := width/2, height/2
	c.shape([]point{{-w, -h}, {w, -h}, {w, h}, {-w, h}})
}

// Triangle draws an equilateral triangle with the given side, pointing along the heading
func (c *Canvas) Triangle(size float64) {
	r := size / math.Sqrt(3)
	pts := make([]point, 3)
	for i := range pts {
		a := (-90 + float64(i)*120) * math.Pi / 180
		pts[i] = point{r * math.Cos(a), r * math.Sin(a)}
	}
	c.shape(pts)
}

// Line draws from the cursor along the current heading
func (c *Canvas) Line(length float64) {
	pts := c.place([]point{{0, 0}, {0, -length}})
	c.z.Reset(c.opts.Width, c.opts.Height)
	strokeSegment(c.z, pts[0], pts[1], strokeWidth)
	c.fill(c.strokeColor())
}

// Noise scatters a deterministic speckle field around the cursor
func (c *Canvas) Noise(seed int64, intensity float64) {
	tr := c.CurrentTransform()
	base := c.CurrentColor()

	// Speckles are binned by shade so each bin is one rasterizer pass.
	var bins [noiseShadeBins][]render.Speckle
	for _, s := range render.NoiseField(seed, intensity) {
		bin := int(math.Round((s.Shade + 20) / 40 * (noiseShadeBins - 1)))
		bins[bin] = append(bins[bin], s)
	}
	for i, speckles := range bins {
		if len(speckles) == 0 {
			continue
		}
		c.z.Reset(c.opts.Width, c.opts.Height)
		for _, s := range speckles {
			center := point{tr.X + s.DX*tr.Scale, tr.Y + s.DY*tr.Scale}
			polygon(c.z, translatePoints(ellipsePoints(s.Radius*tr.Scale, s.Radius*tr.Scale), center))
		}
		shade := -20 + 40*float64(i)/(noiseShadeBins-1)
		l := math.Max(0, math.Min(100, base.L+shade))
		c.fill(hsl(base.H, base.S, l))
	}
}

// shape fills and strokes a closed polygon given in cursor-local coordinates
func (c *Canvas) shape(local []point) {
	pts := c.place(local)

	c.z.Reset(c.opts.Width, c.opts.Height)
	polygon(c.z, pts)
	col := c.CurrentColor()
	c.fill(hsl(col.H, col.S, col.L))

	c.z.Reset(c.opts.Width, c.opts.Height)
	for i := range pts {
		strokeSegment(c.z, pts[i], pts[(i+1)%len(pts)], strokeWidth)
	}
	c.fill(c.strokeColor())
}

func (c *Canvas) fill(col color.Color) {
	c.z.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{})
}

func (c *Canvas) strokeColor() color.Color {
	col := c.CurrentColor()
	return hsl(col.H, col.S, col.L*0.6)
}

// place applies scale, rotation and translation of the current transform
func (c *Canvas) place(local []point) []point {
	tr := c.CurrentTransform()
	rad := tr.Rotation * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	out := make([]point, len(local))
	for i, p := range local {
		x, y := p.x*tr.Scale, p.y*tr.Scale
		out[i] = point{tr.X + x*cos - y*sin, tr.Y + x*sin + y*cos}
	}
	return out
}

func hsl(h, s, l float64) color.Color {
	return colorful.Hsl(h, s/100, l/100).Clamped()
}

type point struct {
	x, y float64
}

func ellipsePoints(rx, ry float64) []point {
	pts := make([]point, curveSegments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / curveSegments
		pts[i] = point{rx * math.Cos(a), ry * math.Sin(a)}
	}
	return pts
}

func translatePoints(pts []point, by point) []point {
	out := make([]point, len(pts))
	for i, p := range pts {
		out[i] = point{p.x + by.x, p.y + by.y}
	}
	return out
}

func polygon(z *vector.Rasterizer, pts []point) {
	if len(pts) < 3 {
		return
	}
	z.MoveTo(float32(pts[0].x), float32(pts[0].y))
	for _, p := range pts[1:] {
		z.LineTo(float32(p.x), float32(p.y))
	}
	z.ClosePath()
}

// strokeSegment adds a quad of the given width around a-b
func strokeSegment(z *vector.Rasterizer, a, b point, width float64) {
	dx, dy := b.x-a.x, b.y-a.y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	nx, ny := -dy/length*width/2, dx/length*width/2
	polygon(z, []point{
		{a.x + nx, a.y + ny},
		{b.x + nx, b.y + ny},
		{b.x - nx, b.y - ny},
		{a.x - nx, a.y - ny},
	})
}
