// Package foldx invokes the FoldX binary, either locally or inside a
// container, for one model and one command at a time.
package foldx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Command selects the FoldX operation.
type Command string

const (
	Repair    Command = "RepairPDB"
	Stability Command = "Stability"
)

// Invocation is one FoldX call. Input and Output are file names inside
// WorkDir; Output is the artifact the call is expected to produce.
type Invocation struct {
	Command Command
	Input   string
	Output  string
	WorkDir string
}

// Result describes a finished FoldX process.
type Result struct {
	ExitCode int
	TimedOut bool
	Duration time.Duration
}

// Tool runs FoldX. Invoke returns an error only when the process could not
// be run at all; a non-zero exit is reported through Result.
type Tool interface {
	Invoke(ctx context.Context, inv Invocation) (*Result, error)
}

// InvocationError is a failed FoldX call for one model.
type InvocationError struct {
	Command  Command
	Input    string
	ExitCode int
	TimedOut bool
	Missing  string
	Err      error
}

func (e *InvocationError) Error() string {
	prefix := fmt.Sprintf("foldx %s %s", e.Command, e.Input)
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", prefix, e.Err)
	case e.TimedOut:
		return prefix + ": timed out"
	case e.ExitCode != 0:
		return fmt.Sprintf("%s: exit code %d", prefix, e.ExitCode)
	default:
		return fmt.Sprintf("%s: expected artifact %s not produced", prefix, e.Missing)
	}
}

func (e *InvocationError) Unwrap() error { return e.Err }

// Reason is a short machine-friendly failure label.
func (e *InvocationError) Reason() string {
	switch {
	case e.Err != nil:
		return "error"
	case e.TimedOut:
		return ExitReasonFromCode(e.ExitCode, true)
	case e.ExitCode != 0:
		return ExitReasonFromCode(e.ExitCode, false)
	default:
		return "missing_artifact"
	}
}

// ExitReasonFromCode maps a process exit to a label.
func ExitReasonFromCode(code int, timedOut bool) string {
	if timedOut {
		return "timeout"
	}
	if code == 0 {
		return "completed"
	}
	return "crashed"
}

// Run invokes tool and checks that the expected artifact exists. Any
// failure is returned as *InvocationError.
func Run(ctx context.Context, tool Tool, inv Invocation) (*Result, error) {
	res, err := tool.Invoke(ctx, inv)
	if err != nil {
		return nil, &InvocationError{Command: inv.Command, Input: inv.Input, Err: err}
	}
	if res.TimedOut || res.ExitCode != 0 {
		return res, &InvocationError{Command: inv.Command, Input: inv.Input, ExitCode: res.ExitCode, TimedOut: res.TimedOut}
	}
	if inv.Output != "" {
		info, err := os.Stat(filepath.Join(inv.WorkDir, inv.Output))
		if err != nil || !info.Mode().IsRegular() {
			return res, &InvocationError{Command: inv.Command, Input: inv.Input, Missing: inv.Output}
		}
	}
	return res, nil
}
