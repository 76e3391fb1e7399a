package solver

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/pkg/errors"
)

// Run invokes the external arc-routing solver on an instance file and
// returns its combined output for DecodeRoute. The command receives the
// instance path as its final argument. Timeout and cancellation are the
// caller's responsibility via ctx; a killed solver surfaces as an error.
func Run(ctx context.Context, command []string, instancePath string) ([]byte, error) {
	if len(command) == 0 {
		return nil, errors.New("no solver command configured")
	}

	args := append(append([]string(nil), command[1:]...), instancePath)
	cmd := exec.CommandContext(ctx, command[0], args...)

	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), "solver cancelled")
		}
		return nil, errors.Wrapf(err, "solver failed: %s", tail(out, 512))
	}
	return out, nil
}

// tail returns at most n trailing bytes of output for error context.
func tail(out []byte, n int) string {
	out = bytes.TrimSpace(out)
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return string(out)
}
