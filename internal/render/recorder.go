package render

import (
	"fmt"
	"io"
	"strings"
)

var _ Renderer = (*Recorder)(nil)

// Call is one recorded renderer invocation
type Call struct {
	Op   string
	Args []float64
}

func (c Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = fmt.Sprintf("%g", a)
	}
	return fmt.Sprintf("%s(%s)", c.Op, strings.Join(args, ", "))
}

// Recorder is a headless surface that logs every call it receives. Noise
// calls record the seed, intensity, speckle count and the summed speckle
// offsets, which pins the generated field.
type Recorder struct {
	Canvas
	calls []Call
}

// NewRecorder creates a recorder for a width x height surface
func NewRecorder(width, height float64) *Recorder {
	return &Recorder{Canvas: NewCanvas(width, height, DefaultMinScale)}
}

func (r *Recorder) record(op string, args ...float64) {
	r.calls = append(r.calls, Call{Op: op, Args: args})
}

// Calls returns a copy of the recorded calls
func (r *Recorder) Calls() []Call {
	out := make([]Call, len(r.calls))
	for i, c := range r.calls {
		out[i] = Call{Op: c.Op, Args: append([]float64(nil), c.Args...)}
	}
	return out
}

// Reset forgets every recorded call
func (r *Recorder) Reset() {
	r.calls = nil
}

func (r *Recorder) Clear() {
	r.record("clear")
}

func (r *Recorder) Circle(radius float64) {
	r.record("circle", radius)
}

func (r *Recorder) Rect(width, height float64) {
	r.record("rect", width, height)
}

func (r *Recorder) Line(length float64) {
	r.record("line", length)
}

func (r *Recorder) Triangle(size float64) {
	r.record("triangle", size)
}

func (r *Recorder) Ellipse(rx, ry float64) {
	r.record("ellipse", rx, ry)
}

func (r *Recorder) Noise(seed int64, intensity float64) {
	field := NoiseField(seed, intensity)
	var sumX, sumY float64
	for _, s := range field {
		sumX += s.DX
		sumY += s.DY
	}
	r.record("noise", float64(seed), intensity, float64(len(field)), sumX, sumY)
}

func (r *Recorder) SetPosition(x, y float64) {
	r.Canvas.SetPosition(x, y)
	r.record("setPosition", x, y)
}

func (r *Recorder) Translate(dx, dy float64) {
	r.Canvas.Translate(dx, dy)
	r.record("translate", dx, dy)
}

func (r *Recorder) SetRotation(degrees float64) {
	r.Canvas.SetRotation(degrees)
	r.record("setRotation", degrees)
}

func (r *Recorder) Rotate(degrees float64) {
	r.Canvas.Rotate(degrees)
	r.record("rotate", degrees)
}

func (r *Recorder) SetScale(scale float64) {
	r.Canvas.SetScale(scale)
	r.record("setScale", scale)
}

func (r *Recorder) Scale(factor float64) {
	r.Canvas.Scale(factor)
	r.record("scale", factor)
}

func (r *Recorder) SetColor(h, s, l float64) {
	r.Canvas.SetColor(h, s, l)
	r.record("setColor", h, s, l)
}

// Export writes one call per line
func (r *Recorder) Export(w io.Writer) error {
	for _, c := range r.calls {
		if _, err := fmt.Fprintln(w, c.String()); err != nil {
			return err
		}
	}
	return nil
}
