package foldx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ExecTool runs a local FoldX binary with the work directory as cwd.
type ExecTool struct {
	Binary    string
	Packaging Packaging
	Options   Options
	Timeout   time.Duration
}

// LogFileName is where the combined output of an invocation is kept.
func LogFileName(inv Invocation) string {
	stem := strings.TrimSuffix(inv.Input, filepath.Ext(inv.Input))
	return fmt.Sprintf("%s_%s.log", stem, inv.Command)
}

func (t *ExecTool) Invoke(ctx context.Context, inv Invocation) (*Result, error) {
	args, err := BuildArgs(t.Packaging, inv, t.Options)
	if err != nil {
		return nil, err
	}
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, t.Binary, args...)
	cmd.Dir = inv.WorkDir
	cmd.WaitDelay = 5 * time.Second

	start := time.Now()
	out, err := cmd.CombinedOutput()
	res := &Result{Duration: time.Since(start)}
	if writeErr := os.WriteFile(filepath.Join(inv.WorkDir, LogFileName(inv)), out, 0o644); writeErr != nil {
		return nil, fmt.Errorf("writing foldx log: %w", writeErr)
	}

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		res.ExitCode = 124
		res.TimedOut = true
		return res, nil
	case ctx.Err() != nil:
		return nil, ctx.Err()
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return nil, fmt.Errorf("running %s: %w", t.Binary, err)
	}
	return res, nil
}
