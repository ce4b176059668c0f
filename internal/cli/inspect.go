package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"codonvm/internal/genome/codon"
	"codonvm/internal/genome/lexer"
	"codonvm/internal/genome/mutation"
)

// lintJSON is the --json shape of one lint
type lintJSON struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
	Token    int    `json:"token"`
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) newLintCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint GENOME",
		Short: "Report frame and structure problems in a genome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := a.loadProgram(cmd, args[0], true)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				lints := make([]lintJSON, len(prog.Lints))
				for i, l := range prog.Lints {
					lints[i] = lintJSON{
						Severity: l.Severity.String(),
						Message:  l.Message,
						Line:     l.Line,
						Column:   l.Column,
						Token:    l.TokenIndex,
					}
				}
				if err := writeJSON(out, lints); err != nil {
					return err
				}
			} else {
				for _, l := range prog.Lints {
					fmt.Fprintf(out, "%s:%s\n", args[0], l)
				}
				if len(prog.Lints) == 0 {
					fmt.Fprintf(out, "%s: %d codons, no findings\n", args[0], len(prog.Tokens))
				}
			}

			if lexer.HasErrors(prog.Lints) {
				return fmt.Errorf("%s has lint errors", args[0])
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print findings as JSON")
	return cmd
}

// tokenRow describes one token of a genome as the VM will read it
type tokenRow struct {
	Index   int    `json:"index"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Codon   string `json:"codon"`
	Opcode  string `json:"opcode"`
	Literal *int   `json:"literal,omitempty"`
}

// tokenRows follows PUSH operands the same way the VM does
func tokenRows(tokens []lexer.Token) []tokenRow {
	rows := make([]tokenRow, 0, len(tokens))
	operand := false
	for i, tok := range tokens {
		row := tokenRow{Index: i, Line: tok.Line, Column: tok.Column, Codon: tok.Text}
		switch op, ok := codon.Lookup(tok.Text); {
		case operand:
			row.Opcode = "literal"
			if v, err := codon.DecodeLiteral(tok.Text); err == nil {
				row.Literal = &v
			}
			operand = false
		case !ok:
			row.Opcode = "?"
		default:
			row.Opcode = op.String()
			operand = op == codon.OpPush
		}
		rows = append(rows, row)
	}
	return rows
}

func (a *app) newTokensCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens GENOME",
		Short: "List the codons of a genome with their opcodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := a.loadProgram(cmd, args[0], true)
			if err != nil {
				return err
			}
			rows := tokenRows(prog.Tokens)

			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(out, rows)
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tPOS\tCODON\tOPCODE\tVALUE")
			for _, r := range rows {
				value := ""
				if r.Literal != nil {
					value = fmt.Sprint(*r.Literal)
				}
				fmt.Fprintf(tw, "%d\t%d:%d\t%s\t%s\t%s\n", r.Index, r.Line, r.Column, r.Codon, r.Opcode, value)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Bool("json", false, "print tokens as JSON")
	return cmd
}

func (a *app) newCodonsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "codons",
		Short: "Print the codon table with mutation robustness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeCodonTable(cmd.OutOrStdout())
		},
	}
}

func writeCodonTable(w io.Writer) error {
	families := codon.Families()
	ops := make([]codon.Opcode, 0, len(families))
	for op := range families {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OPCODE\tCODONS\tSILENT")
	for _, op := range ops {
		silent := 0.0
		for _, c := range families[op] {
			r, err := mutation.Robustness(c)
			if err != nil {
				return err
			}
			silent += r
		}
		silent /= float64(len(families[op]))
		fmt.Fprintf(tw, "%s\t%v\t%.0f%%\n", op, families[op], silent*100)
	}
	fmt.Fprintf(tw, "(unmapped)\t%v\t\n", codon.Unmapped())
	return tw.Flush()
}

func (a *app) newGraphCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render the single-base mutation graph of the codon table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("format")
			format, err := mutation.ParseFormat(name)
			if err != nil {
				return err
			}
			g, err := mutation.Graph()
			if err != nil {
				return err
			}

			output, _ := cmd.Flags().GetString("output")
			if output == "" {
				return mutation.Render(contextOf(cmd), g, format, cmd.OutOrStdout())
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := mutation.Render(contextOf(cmd), g, format, f); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringP("format", "f", string(mutation.FormatDot), "graph format: dot, svg or png")
	cmd.Flags().StringP("output", "o", "", "write the graph to this file")
	return cmd
}
