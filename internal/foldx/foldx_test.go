package foldx_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/signalnine/foldrun/internal/foldx"
	"github.com/signalnine/foldrun/internal/foldx/foldxtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildArgsCLI(t *testing.T) {
	inv := foldx.Invocation{Command: foldx.Repair, Input: "seq_model1.pdb"}
	args, err := foldx.BuildArgs(foldx.PackagingCLI, inv, foldx.DefaultOptions)
	require.NoError(t, err)
	assert.Equal(t, "--command=RepairPDB", args[0])
	assert.Equal(t, "--pdb=seq_model1.pdb", args[1])
	assert.Contains(t, args, "--temperature=298")
	assert.Contains(t, args, "--pH=7")
	assert.Contains(t, args, "--ionStrength=0.05")
	assert.Contains(t, args, "--water=-CRYSTAL")
	assert.Contains(t, args, "--vdwDesign=2")
	assert.Contains(t, args, "--pdbHydrogens=false")
}

func TestBuildArgsConfig(t *testing.T) {
	dir := t.TempDir()
	inv := foldx.Invocation{Command: foldx.Stability, Input: "mut_model2_Repair.pdb", WorkDir: dir}
	args, err := foldx.BuildArgs(foldx.PackagingConfig, inv, foldx.DefaultOptions)
	require.NoError(t, err)
	assert.Equal(t, []string{"-f", "mut_model2_Repair_Stability.cfg"}, args)

	data, err := os.ReadFile(filepath.Join(dir, "mut_model2_Repair_Stability.cfg"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, "command=Stability", lines[0])
	assert.Equal(t, "pdb=mut_model2_Repair.pdb", lines[1])
	assert.Contains(t, lines, "metal=-CRYSTAL")
}

func TestBuildArgsUnknownPackaging(t *testing.T) {
	_, err := foldx.BuildArgs("batch", foldx.Invocation{}, foldx.DefaultOptions)
	assert.Error(t, err)
}

func TestExitReasonFromCode(t *testing.T) {
	tests := []struct {
		code     int
		timedOut bool
		want     string
	}{
		{0, false, "completed"},
		{1, false, "crashed"},
		{124, true, "timeout"},
		{42, false, "crashed"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, foldx.ExitReasonFromCode(tt.code, tt.timedOut))
	}
}

func newExecTool(t *testing.T, p foldx.Packaging) (*foldx.ExecTool, string) {
	t.Helper()
	work := t.TempDir()
	bin := foldxtest.WriteBinary(t, t.TempDir())
	return &foldx.ExecTool{Binary: bin, Packaging: p, Options: foldx.DefaultOptions, Timeout: 30 * time.Second}, work
}

func TestExecToolRepairAndStability(t *testing.T) {
	for _, p := range []foldx.Packaging{foldx.PackagingCLI, foldx.PackagingConfig} {
		t.Run(string(p), func(t *testing.T) {
			tool, work := newExecTool(t, p)
			foldxtest.WriteModel(t, work, "seq_model1.pdb", 10, "")
			ctx := context.Background()

			_, err := foldx.Run(ctx, tool, foldx.Invocation{
				Command: foldx.Repair, Input: "seq_model1.pdb", Output: "seq_model1_Repair.pdb", WorkDir: work,
			})
			require.NoError(t, err)

			res, err := foldx.Run(ctx, tool, foldx.Invocation{
				Command: foldx.Stability, Input: "seq_model1_Repair.pdb", Output: "seq_model1_Repair_0_ST.fxout", WorkDir: work,
			})
			require.NoError(t, err)
			assert.Equal(t, 0, res.ExitCode)
			assert.FileExists(t, filepath.Join(work, "seq_model1_Repair_0_ST.fxout"))
			assert.FileExists(t, filepath.Join(work, "seq_model1_Repair_Stability.log"))
		})
	}
}

func TestRunFailures(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		command foldx.Command
		reason  string
	}{
		{"non-zero exit", "fail-repair", foldx.Repair, "crashed"},
		{"missing artifact", "skip-repair", foldx.Repair, "missing_artifact"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool, work := newExecTool(t, foldx.PackagingCLI)
			foldxtest.WriteModel(t, work, "mut_model1.pdb", 1, tt.mode)
			_, err := foldx.Run(context.Background(), tool, foldx.Invocation{
				Command: tt.command, Input: "mut_model1.pdb", Output: "mut_model1_Repair.pdb", WorkDir: work,
			})
			require.Error(t, err)
			var ie *foldx.InvocationError
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, tt.reason, ie.Reason())
			assert.Contains(t, err.Error(), "mut_model1.pdb")
		})
	}
}

func TestExecToolTimeout(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "slow")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\nexec sleep 10\n"), 0o755))
	tool := &foldx.ExecTool{Binary: bin, Timeout: 200 * time.Millisecond}

	_, err := foldx.Run(context.Background(), tool, foldx.Invocation{Command: foldx.Repair, Input: "x.pdb", WorkDir: dir})
	var ie *foldx.InvocationError
	require.True(t, errors.As(err, &ie))
	assert.True(t, ie.TimedOut)
	assert.Equal(t, "timeout", ie.Reason())
}

func TestExecToolMissingBinary(t *testing.T) {
	tool := &foldx.ExecTool{Binary: filepath.Join(t.TempDir(), "nope")}
	_, err := foldx.Run(context.Background(), tool, foldx.Invocation{Command: foldx.Repair, Input: "x.pdb", WorkDir: t.TempDir()})
	var ie *foldx.InvocationError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "error", ie.Reason())
}

func TestDockerTool(t *testing.T) {
	if os.Getenv("FOLDRUN_DOCKER_TESTS") == "" {
		t.Skip("set FOLDRUN_DOCKER_TESTS=1 to run Docker tests")
	}
	work := t.TempDir()
	foldxtest.WriteModel(t, work, "seq_model1.pdb", 10, "")
	foldxtest.WriteBinary(t, work)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	tool := &foldx.DockerTool{
		Image:     "alpine:latest",
		Binary:    "/work/foldx",
		Packaging: foldx.PackagingCLI,
		Options:   foldx.DefaultOptions,
		Timeout:   30 * time.Second,
		UserID:    foldx.HostUser(),
	}
	_, err := foldx.Run(ctx, tool, foldx.Invocation{
		Command: foldx.Repair, Input: "seq_model1.pdb", Output: "seq_model1_Repair.pdb", WorkDir: work,
	})
	require.NoError(t, err)
}
