package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"codonvm/internal/genome/lexer"
)

// readGenome reads a genome file, or standard input for "-"
func (a *app) readGenome(cmd *cobra.Command, path string) (string, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}

	src, err := lexer.ReadSource(r, a.cfg.Output.Encoding)
	if err != nil {
		return "", fmt.Errorf("cannot read %s: %w", path, err)
	}
	return src, nil
}

// loadProgram reads and parses a genome, printing its lints to stderr
func (a *app) loadProgram(cmd *cobra.Command, path string, quiet bool) (*lexer.Program, error) {
	src, err := a.readGenome(cmd, path)
	if err != nil {
		return nil, err
	}
	prog, err := lexer.ParseProgram(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if !quiet {
		for _, l := range prog.Lints {
			if l.Severity >= lexer.SeverityWarning {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s:%s\n", path, l)
			}
		}
	}
	return prog, nil
}
