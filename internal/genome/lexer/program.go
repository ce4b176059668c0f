package lexer

import (
	"fmt"
	"strings"
)

// DirectiveMarker starts a directive line such as "@mode forward"
const DirectiveMarker = '@'

// Mode is the numeric interpretation requested by a @mode directive. It is
// carried as metadata for callers; the VM does not read it.
type Mode string

const (
	ModeUnspecified   Mode = ""
	ModeForward       Mode = "forward"
	ModeBidirectional Mode = "bidirectional"
)

// Program is a tokenized genome together with its directives and lints
type Program struct {
	Tokens []Token
	Mode   Mode
	Lints  []Lint
}

// ParseProgram extracts directive lines, tokenizes the remaining source and
// collects frame and structure lints. Directive lines are blanked rather
// than removed so token line numbers still match the original text.
func ParseProgram(source string) (*Program, error) {
	prog := &Program{}

	lines := strings.Split(source, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(stripComment(line))
		if !strings.HasPrefix(trimmed, string(DirectiveMarker)) {
			continue
		}
		lines[i] = ""
		if lint, ok := prog.applyDirective(trimmed, i+1); !ok {
			prog.Lints = append(prog.Lints, lint)
		}
	}

	body := strings.Join(lines, "\n")
	tokens, err := Tokenize(body)
	if err != nil {
		return nil, err
	}
	prog.Tokens = tokens
	prog.Lints = append(prog.Lints, ValidateFrame(body)...)
	prog.Lints = append(prog.Lints, ValidateStructure(tokens)...)
	return prog, nil
}

func (p *Program) applyDirective(directive string, line int) (Lint, bool) {
	fields := strings.Fields(directive[1:])
	bad := func(msg string) (Lint, bool) {
		return Lint{Severity: SeverityWarning, Message: msg, Line: line, Column: 1, TokenIndex: -1}, false
	}
	if len(fields) == 0 {
		return bad("empty directive")
	}
	switch strings.ToLower(fields[0]) {
	case "mode":
		if len(fields) != 2 {
			return bad("@mode expects one argument: forward or bidirectional")
		}
		switch m := Mode(strings.ToLower(fields[1])); m {
		case ModeForward, ModeBidirectional:
			p.Mode = m
			return Lint{}, true
		default:
			return bad(fmt.Sprintf("unknown mode %q", fields[1]))
		}
	default:
		return bad(fmt.Sprintf("unknown directive @%s", fields[0]))
	}
}
