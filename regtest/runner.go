package regtest

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner launches external processes.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands with os/exec and waits for them to exit.
// bitcoind started with -daemon forks and returns immediately.
type ExecRunner struct{}

// Compile-time interface check.
var _ Runner = ExecRunner{}

// Run executes name with args. Output is captured and attached to the error
// on failure.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(out.String()))
	}
	return nil
}
