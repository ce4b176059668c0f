// Package lexer turns genome text into positioned codon tokens and reports
// advisory lints about its layout and structure.
package lexer

import (
	"fmt"
	"strings"
	"unicode"

	"codonvm/internal/genome/codon"
)

// CommentMarker starts a comment that runs to the end of the line
const CommentMarker = ';'

// Token is one codon of a genome
type Token struct {
	Text   string // three upper-case bases, U folded to T
	Offset int    // offset of the first base in the cleaned source
	Line   int    // 1-indexed source line of the first base
	Column int    // 1-indexed rune column of the first base
}

func (t Token) String() string {
	return fmt.Sprintf("%s@%d", t.Text, t.Offset)
}

// LexicalError reports a character outside the base alphabet
type LexicalError struct {
	Char   rune
	Line   int
	Column int
}

func (e *LexicalError) Error() string {
	return fmt.Sprintf("invalid character %q at line %d, column %d", e.Char, e.Line, e.Column)
}

// LengthError reports a cleaned source that does not divide into codons
type LengthError struct {
	Length  int // number of bases after cleaning
	Missing int // bases needed to complete the last codon
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("genome length %d is not a multiple of %d: missing %d base(s)", e.Length, codon.Length, e.Missing)
}

// base is a cleaned base with the position it came from
type base struct {
	b      byte
	line   int
	column int
}

// stripComment returns line without its trailing comment
func stripComment(line string) string {
	if i := strings.IndexRune(line, CommentMarker); i >= 0 {
		return line[:i]
	}
	return line
}

// clean strips comments and whitespace and validates the alphabet
func clean(source string) ([]base, error) {
	var bases []base
	for lineNo, line := range strings.Split(source, "\n") {
		column := 0
		for _, r := range stripComment(line) {
			column++
			if unicode.IsSpace(r) {
				continue
			}
			if !codon.IsBase(r) {
				return nil, &LexicalError{Char: r, Line: lineNo + 1, Column: column}
			}
			bases = append(bases, base{
				b:      codon.Normalize(string(r))[0],
				line:   lineNo + 1,
				column: column,
			})
		}
	}
	return bases, nil
}

// Tokenize converts genome source into codon tokens.
//
// Comments and whitespace are removed first; the remaining bases are
// chunked into consecutive codons. Lower-case letters and U are accepted
// and normalized.
func Tokenize(source string) ([]Token, error) {
	bases, err := clean(source)
	if err != nil {
		return nil, err
	}

	if rem := len(bases) % codon.Length; rem != 0 {
		return nil, &LengthError{Length: len(bases), Missing: codon.Length - rem}
	}

	tokens := make([]Token, 0, len(bases)/codon.Length)
	for i := 0; i < len(bases); i += codon.Length {
		first := bases[i]
		tokens = append(tokens, Token{
			Text:   string([]byte{bases[i].b, bases[i+1].b, bases[i+2].b}),
			Offset: i,
			Line:   first.line,
			Column: first.column,
		})
	}
	return tokens, nil
}

// Texts returns the codon text of every token
func Texts(tokens []Token) []string {
	texts := make([]string, len(tokens))
	for i, t := range tokens {
		texts[i] = t.Text
	}
	return texts
}
