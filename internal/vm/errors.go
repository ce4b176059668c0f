package vm

import (
	"errors"
	"fmt"

	"codonvm/internal/genome/codon"
)

// Execution faults. Each aborts the run; Run wraps them in *ExecutionError.
var (
	ErrUnknownCodon     = errors.New("unknown codon")
	ErrMissingLiteral   = errors.New("PUSH has no literal")
	ErrStackUnderflow   = errors.New("stack underflow")
	ErrStackOverflow    = errors.New("stack overflow")
	ErrDivisionByZero   = errors.New("division by zero")
	ErrInstructionLimit = errors.New("instruction limit exceeded")
	ErrInvalidLoop      = errors.New("invalid loop parameters")
	ErrEmptyStateStack  = errors.New("restore from empty state stack")
	ErrInvalidConfig    = errors.New("invalid vm configuration")
)

// ExecutionError ties a fault to the token that raised it
type ExecutionError struct {
	Err    error
	Codon  string
	Opcode codon.Opcode
	IP     int // token index
	Line   int // source line, 0 when unknown
}

func (e *ExecutionError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: token %d (%s): %v", e.Line, e.IP, e.Codon, e.Err)
	}
	return fmt.Sprintf("token %d (%s): %v", e.IP, e.Codon, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
