// Package ffmpeg implements the engine's external capability ports by
// shelling out to a local ffmpeg binary: scene-change detection, single-frame
// thumbnail extraction, and grayscale frame sampling for the fallback
// sampler.
package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"shotsplit/internal/logging"
)

// Executor runs ffmpeg commands. It is safe for concurrent use.
type Executor struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
}

// NewExecutor constructs an executor around the given ffmpeg binary. A zero
// timeout disables per-invocation deadlines.
func NewExecutor(binary string, timeout time.Duration, logger *slog.Logger) *Executor {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Executor{
		binary:  binary,
		timeout: timeout,
		logger:  logging.NewComponentLogger(logger, "ffmpeg"),
	}
}

// run executes ffmpeg with the given arguments, returning stdout and stderr
// separately. ffmpeg writes filter diagnostics to stderr, so callers parsing
// showinfo output read stderr even on success.
func (e *Executor) run(ctx context.Context, args []string) ([]byte, []byte, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, e.binary, append([]string{"-hide_banner", "-nostdin"}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	e.logger.Debug("ffmpeg finished",
		logging.String("args", strings.Join(args, " ")),
		logging.Duration("elapsed", time.Since(start)),
		logging.Error(err),
	)
	if err != nil {
		if ctx.Err() != nil {
			return stdout.Bytes(), stderr.Bytes(), ctx.Err()
		}
		return stdout.Bytes(), stderr.Bytes(), fmt.Errorf("ffmpeg: %w: %s", err, lastStderrLine(stderr.String()))
	}
	return stdout.Bytes(), stderr.Bytes(), nil
}

func lastStderrLine(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
