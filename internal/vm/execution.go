package vm

import (
	"fmt"

	"codonvm/internal/genome/codon"
)

const (
	degreesPerTurn = 360.0
	percentMax     = 100.0
	scaleDivisor   = 8.0
)

// execute dispatches one metered instruction. PUSH and STOP are handled by
// Run and never reach here.
func (vm *VirtualMachine) execute(op codon.Opcode, text string) error {
	vm.state.InstructionCount++
	if vm.state.InstructionCount > vm.config.InstructionLimit {
		return fmt.Errorf("%w: limit %d", ErrInstructionLimit, vm.config.InstructionLimit)
	}

	switch op {
	case codon.OpStart:
		return nil

	case codon.OpCircle:
		r, err := vm.popScaled()
		if err != nil {
			return err
		}
		vm.renderer.Circle(r)
		return nil

	case codon.OpRect:
		h, err := vm.popScaled()
		if err != nil {
			return err
		}
		w, err := vm.popScaled()
		if err != nil {
			return err
		}
		vm.renderer.Rect(w, h)
		return nil

	case codon.OpLine:
		length, err := vm.popScaled()
		if err != nil {
			return err
		}
		vm.renderer.Line(length)
		return nil

	case codon.OpTriangle:
		size, err := vm.popScaled()
		if err != nil {
			return err
		}
		vm.renderer.Triangle(size)
		return nil

	case codon.OpEllipse:
		ry, err := vm.popScaled()
		if err != nil {
			return err
		}
		rx, err := vm.popScaled()
		if err != nil {
			return err
		}
		vm.renderer.Ellipse(rx, ry)
		return nil

	case codon.OpNoise:
		intensity, err := vm.popScaled()
		if err != nil {
			return err
		}
		seed, err := vm.pop()
		if err != nil {
			return err
		}
		vm.renderer.Noise(vm.state.Seed+int64(seed), intensity)
		return nil

	case codon.OpTranslate:
		dy, err := vm.pop()
		if err != nil {
			return err
		}
		dx, err := vm.pop()
		if err != nil {
			return err
		}
		vm.renderer.Translate(scaleOperand(dx, vm.renderer.Width()), scaleOperand(dy, vm.renderer.Height()))
		vm.syncTransform()
		return nil

	case codon.OpRotate:
		v, err := vm.pop()
		if err != nil {
			return err
		}
		vm.renderer.Rotate(scaleOperand(v, degreesPerTurn))
		vm.syncTransform()
		return nil

	case codon.OpScale:
		v, err := vm.pop()
		if err != nil {
			return err
		}
		vm.renderer.Scale(float64(v) / scaleDivisor)
		vm.syncTransform()
		return nil

	case codon.OpColor:
		l, err := vm.pop()
		if err != nil {
			return err
		}
		s, err := vm.pop()
		if err != nil {
			return err
		}
		h, err := vm.pop()
		if err != nil {
			return err
		}
		hue := scaleOperand(h, degreesPerTurn)
		sat := scaleOperand(s, percentMax)
		light := scaleOperand(l, percentMax)
		vm.renderer.SetColor(hue, sat, light)
		vm.state.Color.H, vm.state.Color.S, vm.state.Color.L = hue, sat, light
		vm.syncColor()
		return nil

	case codon.OpDup:
		v, err := vm.pop()
		if err != nil {
			return err
		}
		if err := vm.push(v); err != nil {
			return err
		}
		return vm.push(v)

	case codon.OpPop:
		_, err := vm.pop()
		return err

	case codon.OpSwap:
		a, b, err := vm.pop2()
		if err != nil {
			return err
		}
		if err := vm.push(b); err != nil {
			return err
		}
		return vm.push(a)

	case codon.OpAdd, codon.OpSub, codon.OpMul, codon.OpEq, codon.OpLt:
		a, b, err := vm.pop2()
		if err != nil {
			return err
		}
		return vm.push(binary(op, a, b))

	case codon.OpDiv:
		b, err := vm.pop()
		if err != nil {
			return err
		}
		if b == 0 {
			return ErrDivisionByZero
		}
		a, err := vm.pop()
		if err != nil {
			return err
		}
		return vm.push(floorDiv(a, b))

	case codon.OpLoop:
		return vm.loop()

	case codon.OpSaveState:
		vm.state.StateStack = append(vm.state.StateStack, vm.state.Clone())
		return nil

	case codon.OpRestoreState:
		n := len(vm.state.StateStack)
		if n == 0 {
			return ErrEmptyStateStack
		}
		saved := vm.state.StateStack[n-1]
		vm.state.StateStack = vm.state.StateStack[:n-1]
		vm.applyRegisters(saved)
		return nil

	case codon.OpPush, codon.OpStop:
		return fmt.Errorf("%s (%s) is not dispatchable", op, text)

	default:
		return fmt.Errorf("unhandled opcode %s (%s)", op, text)
	}
}

// binary evaluates the arithmetic and comparison opcodes as a OP b
func binary(op codon.Opcode, a, b int) int {
	switch op {
	case codon.OpAdd:
		return a + b
	case codon.OpSub:
		return a - b
	case codon.OpMul:
		return a * b
	case codon.OpEq:
		return boolInt(a == b)
	case codon.OpLt:
		return boolInt(a < b)
	}
	return 0
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// floorDiv divides rounding toward negative infinity
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// loop pops loopCount then instructionCount and replays the selected slice
// of history. Replayed instructions are metered but not re-recorded.
func (vm *VirtualMachine) loop() error {
	loopCount, err := vm.pop()
	if err != nil {
		return err
	}
	instructionCount, err := vm.pop()
	if err != nil {
		return err
	}
	if loopCount < 0 {
		return fmt.Errorf("%w: negative loop count %d", ErrInvalidLoop, loopCount)
	}
	body, err := loopBody(vm.history, instructionCount)
	if err != nil {
		return err
	}
	if len(body) == 0 || loopCount == 0 {
		return nil
	}

	for i := 0; i < loopCount; i++ {
		for _, entry := range body {
			if entry.HasLiteral {
				if err := vm.push(entry.Literal); err != nil {
					return err
				}
				continue
			}
			if err := vm.execute(entry.Opcode, entry.Codon); err != nil {
				return err
			}
		}
	}
	return nil
}
