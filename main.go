package main

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"codonvm/internal/cli"
	"codonvm/internal/log"
	"codonvm/internal/vm"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	exitFault = 2
	exitError = 1
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic recovered", "error", r, "stack", string(debug.Stack()))
			fmt.Fprintf(os.Stderr, "codonvm crashed: %v\n", r)
			os.Exit(exitError)
		}
	}()

	cli.Version = fmt.Sprintf("%s (%s, %s)", version, commit, date)
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var execErr *vm.ExecutionError
		if errors.As(err, &execErr) {
			os.Exit(exitFault)
		}
		os.Exit(exitError)
	}
}
