package trace

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/samber/lo"

	"codonvm/internal/vm"
)

// Columns is the header row of WriteTable
var Columns = []string{"#", "IP", "CODON", "OPCODE", "COUNT", "X", "Y", "ROT", "SCALE", "COLOR", "SAVED", "STACK"}

// Row formats one snapshot as table cells
func Row(i int, s vm.State) []string {
	opcode := "-"
	if s.Executed() {
		opcode = s.LastOpcode.String()
	}
	return []string{
		strconv.Itoa(i),
		strconv.Itoa(s.IP),
		lo.Ternary(s.LastCodon == "", "-", s.LastCodon),
		opcode,
		strconv.Itoa(s.InstructionCount),
		formatFloat(s.Position.X),
		formatFloat(s.Position.Y),
		formatFloat(s.Rotation),
		formatFloat(s.Scale),
		s.Color.String(),
		strconv.Itoa(len(s.StateStack)),
		FormatStack(s.Stack),
	}
}

// FormatStack renders an operand stack bottom to top
func FormatStack(stack []int) string {
	return "[" + strings.Join(lo.Map(stack, func(v int, _ int) string {
		return strconv.Itoa(v)
	}), " ") + "]"
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// WriteTable writes one aligned row per snapshot
func WriteTable(w io.Writer, states []vm.State) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, strings.Join(Columns, "\t")); err != nil {
		return err
	}
	for i, s := range states {
		if _, err := fmt.Fprintln(tw, strings.Join(Row(i, s), "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}
