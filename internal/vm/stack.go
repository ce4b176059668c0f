package vm

// push adds a value to the operand stack
func (vm *VirtualMachine) push(v int) error {
	if len(vm.state.Stack) >= vm.config.MaxStackDepth {
		return ErrStackOverflow
	}
	vm.state.Stack = append(vm.state.Stack, v)
	return nil
}

// pop removes and returns the top of the operand stack
func (vm *VirtualMachine) pop() (int, error) {
	n := len(vm.state.Stack)
	if n == 0 {
		return 0, ErrStackUnderflow
	}
	v := vm.state.Stack[n-1]
	vm.state.Stack = vm.state.Stack[:n-1]
	return v, nil
}

// pop2 pops b then a, the operand order of binary instructions
func (vm *VirtualMachine) pop2() (a, b int, err error) {
	if b, err = vm.pop(); err != nil {
		return 0, 0, err
	}
	if a, err = vm.pop(); err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

// popScaled pops a value and maps it onto the surface: v / 64 * width
func (vm *VirtualMachine) popScaled() (float64, error) {
	v, err := vm.pop()
	if err != nil {
		return 0, err
	}
	return scaleOperand(v, vm.renderer.Width()), nil
}

func scaleOperand(v int, extent float64) float64 {
	return float64(v) / literalRange * extent
}

// StackDepth returns the number of values on the operand stack
func (vm *VirtualMachine) StackDepth() int {
	return len(vm.state.Stack)
}

// SavedDepth returns the number of entries on the saved-state stack
func (vm *VirtualMachine) SavedDepth() int {
	return len(vm.state.StateStack)
}
