package sweep

import (
	"context"
	"fmt"
	"io"
	"os/exec"
)

// Runner runs one simulation and waits for it to finish.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs the simulator as a child process.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Run starts name with args and waits for it. A non-zero exit status is an
// error.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("simulator %s failed: %w", name, err)
	}
	return nil
}
