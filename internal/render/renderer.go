// Package render defines the drawing surface the codon VM executes against.
package render

import (
	"fmt"
	"io"
)

// Renderer is the capability the VM calls into. Shapes are filled and
// stroked at the current transform, anchored at their centre, and never
// move the position.
type Renderer interface {
	Width() float64
	Height() float64

	Clear()

	Circle(radius float64)
	Rect(width, height float64)
	Line(length float64)
	Triangle(size float64)
	Ellipse(rx, ry float64)
	Noise(seed int64, intensity float64)

	SetPosition(x, y float64)
	Translate(dx, dy float64)
	SetRotation(degrees float64)
	Rotate(degrees float64)
	SetScale(scale float64)
	Scale(factor float64)
	SetColor(h, s, l float64)

	// CurrentTransform returns the surface's own, possibly clamped, state
	CurrentTransform() Transform

	Export(w io.Writer) error
}

// Transform is the position, heading and scale of the drawing cursor
type Transform struct {
	X        float64
	Y        float64
	Rotation float64 // degrees in [0, 360)
	Scale    float64
}

// Color is an HSL colour: hue in degrees, saturation and lightness in percent
type Color struct {
	H float64
	S float64
	L float64
}

func (c Color) String() string {
	return fmt.Sprintf("hsl(%g, %g%%, %g%%)", c.H, c.S, c.L)
}
