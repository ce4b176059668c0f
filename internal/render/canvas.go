package render

import "math"

// DefaultMinScale is the smallest scale a surface accepts
const DefaultMinScale = 0.01

// Canvas implements the transform and colour half of Renderer. Surfaces
// embed it so clamping and wraparound behave the same everywhere.
type Canvas struct {
	width     float64
	height    float64
	minScale  float64
	transform Transform
	color     Color
}

// NewCanvas creates a canvas state centred on a width x height surface
func NewCanvas(width, height, minScale float64) Canvas {
	if minScale <= 0 {
		minScale = DefaultMinScale
	}
	c := Canvas{width: width, height: height, minScale: minScale}
	c.ResetTransform()
	return c
}

// ResetTransform returns the cursor to the centre with no rotation, unit scale and black
func (c *Canvas) ResetTransform() {
	c.transform = Transform{X: c.width / 2, Y: c.height / 2, Rotation: 0, Scale: 1}
	c.color = Color{}
}

func (c *Canvas) Width() float64 {
	return c.width
}

func (c *Canvas) Height() float64 {
	return c.height
}

// MinScale returns the clamp applied by SetScale
func (c *Canvas) MinScale() float64 {
	return c.minScale
}

func (c *Canvas) SetPosition(x, y float64) {
	c.transform.X = x
	c.transform.Y = y
}

func (c *Canvas) Translate(dx, dy float64) {
	c.transform.X += dx
	c.transform.Y += dy
}

func (c *Canvas) SetRotation(degrees float64) {
	c.transform.Rotation = wrapDegrees(degrees)
}

func (c *Canvas) Rotate(degrees float64) {
	c.SetRotation(c.transform.Rotation + degrees)
}

// SetScale clamps silently to the minimum scale
func (c *Canvas) SetScale(scale float64) {
	if math.IsNaN(scale) || scale < c.minScale {
		scale = c.minScale
	}
	c.transform.Scale = scale
}

func (c *Canvas) Scale(factor float64) {
	c.SetScale(c.transform.Scale * factor)
}

func (c *Canvas) SetColor(h, s, l float64) {
	c.color = Color{H: wrapDegrees(h), S: clampPercent(s), L: clampPercent(l)}
}

func (c *Canvas) CurrentTransform() Transform {
	return c.transform
}

// CurrentColor returns the active fill colour
func (c *Canvas) CurrentColor() Color {
	return c.color
}

func wrapDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

func clampPercent(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
