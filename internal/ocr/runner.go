package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// maxStderr caps how much tool output ends up in logs and errors.
const maxStderr = 4 << 10

// Runner executes tesseract and the HEIC converters. Tests swap it out.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	attrs := []any{
		"cmd", name,
		"args", strings.Join(args, " "),
		"duration_ms", time.Since(start).Milliseconds(),
	}
	switch {
	case err == nil:
		r.logger.Debug("ocr.exec.ok", append(attrs, "stdout_bytes", stdout.Len())...)
	case errors.Is(err, exec.ErrNotFound):
		r.logger.Error("ocr.exec.missing_binary", attrs...)
		err = fmt.Errorf("%s is not installed or not on PATH: %w", name, err)
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			attrs = append(attrs, "exit_code", exitErr.ExitCode())
		}
		msg := clip(strings.TrimSpace(stderr.String()), maxStderr)
		r.logger.Error("ocr.exec.failed", append(attrs, "stderr", msg, "error", err)...)
		if msg != "" {
			err = fmt.Errorf("%s: %w: %s", name, err, msg)
		}
	}
	return stdout.Bytes(), stderr.Bytes(), err
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}
