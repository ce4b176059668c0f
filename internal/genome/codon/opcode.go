package codon

// Opcode represents one instruction kind of the codon VM
type Opcode int

// OpInvalid tags codons that have no table entry
const OpInvalid Opcode = -1

const (
	// Control
	OpStart Opcode = iota
	OpStop

	// Drawing
	OpCircle
	OpRect
	OpLine
	OpTriangle
	OpEllipse
	OpNoise

	// Transform
	OpTranslate
	OpRotate
	OpScale
	OpColor

	// Stack
	OpPush
	OpDup
	OpPop
	OpSwap

	// Arithmetic
	OpAdd
	OpSub
	OpMul
	OpDiv

	// Comparison
	OpEq
	OpLt

	// Control flow and state
	OpLoop
	OpSaveState
	OpRestoreState

	opcodeCount
)

var opcodeNames = [opcodeCount]string{
	OpStart:        "START",
	OpStop:         "STOP",
	OpCircle:       "CIRCLE",
	OpRect:         "RECT",
	OpLine:         "LINE",
	OpTriangle:     "TRIANGLE",
	OpEllipse:      "ELLIPSE",
	OpNoise:        "NOISE",
	OpTranslate:    "TRANSLATE",
	OpRotate:       "ROTATE",
	OpScale:        "SCALE",
	OpColor:        "COLOR",
	OpPush:         "PUSH",
	OpDup:          "DUP",
	OpPop:          "POP",
	OpSwap:         "SWAP",
	OpAdd:          "ADD",
	OpSub:          "SUB",
	OpMul:          "MUL",
	OpDiv:          "DIV",
	OpEq:           "EQ",
	OpLt:           "LT",
	OpLoop:         "LOOP",
	OpSaveState:    "SAVE_STATE",
	OpRestoreState: "RESTORE_STATE",
}

// String returns the mnemonic of the opcode
func (op Opcode) String() string {
	if op < 0 || op >= opcodeCount {
		return "UNKNOWN"
	}
	return opcodeNames[op]
}

// Valid reports whether op is a member of the enumeration
func (op Opcode) Valid() bool {
	return op >= 0 && op < opcodeCount
}

// IsDraw reports whether op calls a renderer shape primitive
func (op Opcode) IsDraw() bool {
	switch op {
	case OpCircle, OpRect, OpLine, OpTriangle, OpEllipse, OpNoise:
		return true
	}
	return false
}

// IsTerminal reports whether op ends execution
func (op Opcode) IsTerminal() bool {
	return op == OpStop
}

// Opcodes returns every opcode in declaration order
func Opcodes() []Opcode {
	ops := make([]Opcode, 0, opcodeCount)
	for op := Opcode(0); op < opcodeCount; op++ {
		ops = append(ops, op)
	}
	return ops
}

// ParseOpcode maps a mnemonic back to its opcode
func ParseOpcode(name string) (Opcode, bool) {
	for op, n := range opcodeNames {
		if n == name {
			return Opcode(op), true
		}
	}
	return 0, false
}
