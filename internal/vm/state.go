package vm

import (
	"codonvm/internal/genome/codon"
	"codonvm/internal/render"
)

// Status is the lifecycle position of the virtual machine
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusHalted
	StatusFaulted
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusHalted:
		return "halted"
	case StatusFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// Point is a position on the drawing surface
type Point struct {
	X float64
	Y float64
}

// State holds the registers, operand stack and saved states of the VM.
// Snapshots and saved states are independent deep copies made with Clone.
type State struct {
	Position         Point
	Rotation         float64
	Scale            float64
	Color            render.Color
	Stack            []int
	IP               int
	StateStack       []State
	InstructionCount int
	Seed             int64
	LastOpcode       codon.Opcode
	LastCodon        string // empty until the first instruction completes
}

// Clone returns a deep copy that shares no memory with s
func (s State) Clone() State {
	c := s
	if s.Stack != nil {
		c.Stack = make([]int, len(s.Stack))
		copy(c.Stack, s.Stack)
	}
	if s.StateStack != nil {
		c.StateStack = make([]State, len(s.StateStack))
		for i, saved := range s.StateStack {
			c.StateStack[i] = saved.Clone()
		}
	}
	return c
}

// Transform returns the drawing registers as a renderer transform
func (s State) Transform() render.Transform {
	return render.Transform{X: s.Position.X, Y: s.Position.Y, Rotation: s.Rotation, Scale: s.Scale}
}

// Executed reports whether the snapshot follows at least one instruction
func (s State) Executed() bool {
	return s.LastCodon != ""
}
