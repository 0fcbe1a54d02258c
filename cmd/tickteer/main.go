package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(reportError(err))
	}
}

// reportError prints err and picks the process exit status. A command that
// `lock exec` ran keeps its own exit status.
func reportError(err error) int {
	if !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "tickteer: %v\n", err)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}
	return 1
}
