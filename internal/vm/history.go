package vm

import (
	"fmt"

	"codonvm/internal/genome/codon"
)

// HistoryEntry records one dispatched instruction for LOOP replay. PUSH
// entries carry their decoded literal so a replay never re-decodes.
type HistoryEntry struct {
	Opcode     codon.Opcode
	Codon      string
	Literal    int
	HasLiteral bool
}

func (e HistoryEntry) String() string {
	if e.HasLiteral {
		return fmt.Sprintf("%s %s %d", e.Codon, e.Opcode, e.Literal)
	}
	return fmt.Sprintf("%s %s", e.Codon, e.Opcode)
}

// loopParamEntries is the number of history entries occupied by the two
// PUSHes that supply LOOP's own operands
const loopParamEntries = 2

// loopBody selects the entries a LOOP replays.
//
// With h history entries, the last two are the PUSHes of LOOP's parameters,
// so the body is the n entries ending just before them:
//
//	body = history[h-2-n : h-2]
//
// n must satisfy 0 <= n <= h-2.
func loopBody(history []HistoryEntry, n int) ([]HistoryEntry, error) {
	available := len(history) - loopParamEntries
	if available < 0 {
		available = 0
	}
	if n < 0 || n > available {
		return nil, fmt.Errorf("%w: %d instructions requested, %d available", ErrInvalidLoop, n, available)
	}
	if n == 0 {
		return nil, nil
	}
	end := len(history) - loopParamEntries
	body := make([]HistoryEntry, n)
	copy(body, history[end-n:end])
	return body, nil
}

// History returns a copy of the instruction history
func (vm *VirtualMachine) History() []HistoryEntry {
	out := make([]HistoryEntry, len(vm.history))
	copy(out, vm.history)
	return out
}
