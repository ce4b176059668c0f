package lexer

import (
	"fmt"
	"unicode"

	"codonvm/internal/genome/codon"
)

// Severity grades a lint
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Lint is an advisory finding. Lints never stop tokenization or execution.
type Lint struct {
	Severity   Severity
	Message    string
	Line       int
	Column     int
	TokenIndex int // -1 when the lint is not tied to a token
}

func (l Lint) String() string {
	if l.Line > 0 {
		return fmt.Sprintf("%d:%d: %s: %s", l.Line, l.Column, l.Severity, l.Message)
	}
	return fmt.Sprintf("%s: %s", l.Severity, l.Message)
}

// HasErrors reports whether any lint is error severity
func HasErrors(lints []Lint) bool {
	for _, l := range lints {
		if l.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidateFrame warns about whitespace that splits a codon, such as "AT G".
// Each whitespace run strictly inside a three-base group yields one lint.
func ValidateFrame(source string) []Lint {
	var lints []Lint

	count := 0
	gapLine, gapColumn := 0, 0
	inGap := false

	line, column := 1, 0
	inComment := false
	for _, r := range source {
		if r == '\n' {
			if count%codon.Length != 0 && !inGap {
				inGap = true
				gapLine, gapColumn = line, column+1
			}
			line++
			column = 0
			inComment = false
			continue
		}
		column++
		if inComment {
			continue
		}
		if r == CommentMarker {
			inComment = true
			if count%codon.Length != 0 && !inGap {
				inGap = true
				gapLine, gapColumn = line, column
			}
			continue
		}
		if unicode.IsSpace(r) {
			if count%codon.Length != 0 && !inGap {
				inGap = true
				gapLine, gapColumn = line, column
			}
			continue
		}
		if !codon.IsBase(r) {
			continue
		}
		if inGap {
			lints = append(lints, Lint{
				Severity:   SeverityWarning,
				Message:    fmt.Sprintf("whitespace splits codon %d after base %d of %d", count/codon.Length+1, count%codon.Length, codon.Length),
				Line:       gapLine,
				Column:     gapColumn,
				TokenIndex: count / codon.Length,
			})
			inGap = false
		}
		count++
	}
	return lints
}

// ValidateStructure checks where a token sequence starts and stops and what
// its reading frame reaches.
//
// START and STOP checks are token level: a START codon anywhere after the
// first STOP codon is unreachable, and the final token should be a STOP.
// Error lints come only from the reachable reading frame, where a PUSH
// consumes the following token as data and the first STOP instruction ends
// execution.
func ValidateStructure(tokens []Token) []Lint {
	var lints []Lint

	if len(tokens) == 0 {
		return append(lints, Lint{
			Severity:   SeverityError,
			Message:    fmt.Sprintf("genome is empty: expected START codon %s", codon.StartCodon),
			TokenIndex: -1,
		})
	}

	if !codon.IsStart(tokens[0].Text) {
		lints = append(lints, tokenLint(tokens, 0, SeverityError,
			fmt.Sprintf("genome must begin with START codon %s, found %s", codon.StartCodon, tokens[0].Text)))
	}

walk:
	for i := 0; i < len(tokens); i++ {
		op, ok := codon.Lookup(tokens[i].Text)
		if !ok {
			lints = append(lints, tokenLint(tokens, i, SeverityError,
				fmt.Sprintf("codon %s has no instruction", tokens[i].Text)))
			continue
		}
		switch op {
		case codon.OpStop:
			break walk
		case codon.OpPush:
			if i+1 >= len(tokens) {
				lints = append(lints, tokenLint(tokens, i, SeverityError,
					fmt.Sprintf("PUSH codon %s has no literal", tokens[i].Text)))
				continue
			}
			i++
		}
	}

	seenStop := false
	for i, tok := range tokens {
		switch {
		case codon.IsStop(tok.Text):
			seenStop = true
		case seenStop && codon.IsStart(tok.Text):
			lints = append(lints, tokenLint(tokens, i, SeverityWarning,
				fmt.Sprintf("unreachable code: START codon %s after STOP", tok.Text)))
		}
	}

	if last := len(tokens) - 1; !codon.IsStop(tokens[last].Text) {
		lints = append(lints, tokenLint(tokens, last, SeverityWarning,
			"genome does not end with a STOP codon"))
	}
	return lints
}

func tokenLint(tokens []Token, i int, severity Severity, message string) Lint {
	return Lint{
		Severity:   severity,
		Message:    message,
		Line:       tokens[i].Line,
		Column:     tokens[i].Column,
		TokenIndex: i,
	}
}
