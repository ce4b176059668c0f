// Package vm implements the codon stack machine. It walks a token sequence,
// drives a render.Renderer and records a deep-copied snapshot of its state
// after every pushed, executed or halting instruction.
package vm

import (
	"errors"
	"fmt"

	"codonvm/internal/genome/codon"
	"codonvm/internal/genome/lexer"
	"codonvm/internal/log"
	"codonvm/internal/render"
)

const (
	DefaultInstructionLimit = 10000
	DefaultSeed             = 12345
	DefaultMaxStackDepth    = 4096

	// literalRange is the number of distinct literal values; operands are
	// scaled as fractions of it
	literalRange = float64(codon.MaxLiteral + 1)
)

// Config holds the per-run limits of a virtual machine
type Config struct {
	InstructionLimit int   // cap on dispatched instructions; PUSH and STOP are free
	Seed             int64 // added to every NOISE seed operand
	MaxStackDepth    int   // operand stack capacity, 0 means DefaultMaxStackDepth
}

// DefaultConfig returns the stock limits
func DefaultConfig() Config {
	return Config{
		InstructionLimit: DefaultInstructionLimit,
		Seed:             DefaultSeed,
		MaxStackDepth:    DefaultMaxStackDepth,
	}
}

// VirtualMachine executes codon programs against one renderer. A machine is
// not safe for concurrent use, but separate machines share nothing.
type VirtualMachine struct {
	renderer render.Renderer
	config   Config
	state    State
	history  []HistoryEntry
	status   Status
}

// New creates a virtual machine bound to r
func New(r render.Renderer, cfg Config) (*VirtualMachine, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil renderer", ErrInvalidConfig)
	}
	if cfg.InstructionLimit <= 0 {
		return nil, fmt.Errorf("%w: instruction limit must be positive, got %d", ErrInvalidConfig, cfg.InstructionLimit)
	}
	if cfg.MaxStackDepth < 0 {
		return nil, fmt.Errorf("%w: negative stack depth %d", ErrInvalidConfig, cfg.MaxStackDepth)
	}
	if cfg.MaxStackDepth == 0 {
		cfg.MaxStackDepth = DefaultMaxStackDepth
	}

	vm := &VirtualMachine{
		renderer: r,
		config:   cfg,
	}
	vm.Reset()
	return vm, nil
}

// Reset clears the stacks, history and counter and returns both the
// registers and the renderer to their initial transform
func (vm *VirtualMachine) Reset() {
	vm.renderer.Clear()
	vm.state = State{
		Position: Point{X: vm.renderer.Width() / 2, Y: vm.renderer.Height() / 2},
		Scale:    1,
		Seed:     vm.config.Seed,
	}
	vm.history = nil
	vm.status = StatusIdle

	vm.renderer.SetPosition(vm.state.Position.X, vm.state.Position.Y)
	vm.renderer.SetRotation(0)
	vm.renderer.SetScale(1)
	vm.renderer.SetColor(0, 0, 0)
	vm.syncTransform()
}

// Run resets the machine and executes tokens until STOP, the end of the
// sequence or a fault. On a fault it returns the snapshots taken so far
// together with an *ExecutionError.
func (vm *VirtualMachine) Run(tokens []lexer.Token) ([]State, error) {
	vm.Reset()
	vm.status = StatusRunning
	log.Debug("vm: run start", "tokens", len(tokens), "limit", vm.config.InstructionLimit)

	var snapshots []State
	ip := 0
	for ip < len(tokens) {
		tok := tokens[ip]
		vm.state.IP = ip

		op, ok := codon.Lookup(tok.Text)
		if !ok {
			return snapshots, vm.fault(ErrUnknownCodon, tok, op, ip)
		}

		switch op {
		case codon.OpPush:
			if ip+1 >= len(tokens) {
				return snapshots, vm.fault(ErrMissingLiteral, tok, op, ip)
			}
			value, err := codon.DecodeLiteral(tokens[ip+1].Text)
			if err != nil {
				return snapshots, vm.fault(err, tok, op, ip)
			}
			if err := vm.push(value); err != nil {
				return snapshots, vm.fault(err, tok, op, ip)
			}
			vm.history = append(vm.history, HistoryEntry{Opcode: op, Codon: tok.Text, Literal: value, HasLiteral: true})
			vm.mark(op, tok.Text)
			snapshots = append(snapshots, vm.Snapshot())
			ip += 2

		case codon.OpStop:
			vm.mark(op, tok.Text)
			snapshots = append(snapshots, vm.Snapshot())
			vm.status = StatusHalted
			log.Debug("vm: halted on STOP", "ip", ip, "instructions", vm.state.InstructionCount)
			return snapshots, nil

		default:
			if op != codon.OpLoop {
				vm.history = append(vm.history, HistoryEntry{Opcode: op, Codon: tok.Text})
			}
			if err := vm.execute(op, tok.Text); err != nil {
				return snapshots, vm.fault(err, tok, op, ip)
			}
			vm.mark(op, tok.Text)
			// START opens the reading frame and is metered, but the
			// trace begins with the first instruction after it
			if op != codon.OpStart {
				snapshots = append(snapshots, vm.Snapshot())
			}
			ip++
		}
	}

	vm.status = StatusHalted
	log.Debug("vm: tokens exhausted", "instructions", vm.state.InstructionCount)
	return snapshots, nil
}

// fault stops the run and tags err with the token that raised it
func (vm *VirtualMachine) fault(err error, tok lexer.Token, op codon.Opcode, ip int) error {
	vm.status = StatusFaulted
	execErr := &ExecutionError{Err: err, Codon: tok.Text, Opcode: op, IP: ip, Line: tok.Line}
	log.Warn("vm: execution fault", "error", execErr)
	return execErr
}

func (vm *VirtualMachine) mark(op codon.Opcode, text string) {
	vm.state.LastOpcode = op
	vm.state.LastCodon = text
}

// Snapshot returns an independent deep copy of the current state
func (vm *VirtualMachine) Snapshot() State {
	return vm.state.Clone()
}

// Restore replaces the machine state with a deep copy of s and pushes its
// registers out to the renderer
func (vm *VirtualMachine) Restore(s State) {
	vm.state = s.Clone()
	vm.applyRegisters(s)
}

// applyRegisters sends the drawing registers of s to the renderer and reads
// back whatever the renderer settled on
func (vm *VirtualMachine) applyRegisters(s State) {
	vm.renderer.SetPosition(s.Position.X, s.Position.Y)
	vm.renderer.SetRotation(s.Rotation)
	vm.renderer.SetScale(s.Scale)
	vm.renderer.SetColor(s.Color.H, s.Color.S, s.Color.L)
	vm.state.Color = s.Color
	vm.syncTransform()
	vm.syncColor()
}

// syncTransform copies the renderer's transform into the registers
func (vm *VirtualMachine) syncTransform() {
	t := vm.renderer.CurrentTransform()
	vm.state.Position = Point{X: t.X, Y: t.Y}
	vm.state.Rotation = t.Rotation
	vm.state.Scale = t.Scale
}

// colorReporter is implemented by renderers that expose their normalized colour
type colorReporter interface {
	CurrentColor() render.Color
}

func (vm *VirtualMachine) syncColor() {
	if cr, ok := vm.renderer.(colorReporter); ok {
		vm.state.Color = cr.CurrentColor()
	}
}

// State returns a deep copy of the live state
func (vm *VirtualMachine) State() State {
	return vm.state.Clone()
}

// InstructionCount returns the number of dispatched instructions in this run
func (vm *VirtualMachine) InstructionCount() int {
	return vm.state.InstructionCount
}

func (vm *VirtualMachine) Status() Status {
	return vm.status
}

func (vm *VirtualMachine) Config() Config {
	return vm.config
}

func (vm *VirtualMachine) Renderer() render.Renderer {
	return vm.renderer
}

// IsFault reports whether err is an execution fault raised by Run
func IsFault(err error) bool {
	var execErr *ExecutionError
	return errors.As(err, &execErr)
}
