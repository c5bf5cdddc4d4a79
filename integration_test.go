//go:build integration

package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/signalnine/foldrun/internal/analysis"
	"github.com/signalnine/foldrun/internal/foldx"
	"github.com/signalnine/foldrun/internal/foldx/foldxtest"
	"github.com/signalnine/foldrun/internal/registry"
	"github.com/signalnine/foldrun/internal/report"
	"github.com/signalnine/foldrun/internal/result"
	"github.com/signalnine/foldrun/internal/runner"
)

// createEnsemble writes a small sequence/mutant ensemble plus a native
// structure understood by the stand-in FoldX.
func createEnsemble(t *testing.T) (seqDir, mutDir, native string) {
	t.Helper()
	root := t.TempDir()
	seqDir = filepath.Join(root, "lysozyme")
	mutDir = filepath.Join(root, "mutants")
	for _, dir := range []string{seqDir, mutDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	foldxtest.WriteModel(t, seqDir, "model1.pdb", 10, "")
	foldxtest.WriteModel(t, seqDir, "model2.pdb", 20, "")
	foldxtest.WriteModel(t, seqDir, "model3.pdb", 30, "fail-stability")
	foldxtest.WriteModel(t, mutDir, "model1.pdb", 5, "")
	native = foldxtest.WriteModel(t, root, "2lzm.pdb", 1, "")
	return seqDir, mutDir, native
}

func TestDockerPipelineIntegration(t *testing.T) {
	if os.Getenv("FOLDRUN_DOCKER_TESTS") == "" {
		t.Skip("set FOLDRUN_DOCKER_TESTS=1 to run integration tests")
	}

	seqDir, mutDir, native := createEnsemble(t)
	set, err := registry.Discover(seqDir, mutDir, native)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	layout, err := result.CreateRunDir(t.TempDir())
	if err != nil {
		t.Fatalf("CreateRunDir: %v", err)
	}
	models, err := runner.StageModels(set, layout.Scratch, nil)
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	foldxtest.WriteBinary(t, layout.Scratch)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pipeline := &runner.Pipeline{
		Tool: &foldx.DockerTool{
			Image:     "alpine:latest",
			Binary:    "/work/foldx",
			Packaging: foldx.PackagingConfig,
			Options:   foldx.DefaultOptions,
			Timeout:   60 * time.Second,
			UserID:    foldx.HostUser(),
		},
		WorkDir:   layout.Scratch,
		Parallel:  2,
		ReportExt: registry.DefaultReportExt,
	}
	sum := pipeline.Run(ctx, models)
	if sum.Repair.Succeeded != 5 {
		t.Errorf("repair succeeded: got %d, want 5", sum.Repair.Succeeded)
	}
	if sum.Skipped != 1 {
		t.Errorf("skipped: got %d, want 1", sum.Skipped)
	}

	a := analysis.Analyze(analysis.Options{Title: set.EnsembleName(), Candidates: runner.Candidates(models)})
	if err := a.Err(); err != nil {
		t.Fatalf("analysis: %v", err)
	}
	if _, err := report.WriteFiles(layout, a, "text"); err != nil {
		t.Fatalf("WriteFiles: %v", err)
	}
	data, err := os.ReadFile(layout.ReportPath("text"))
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if !strings.Contains(string(data), "WT Predicted Data:\n\ntotal energy Mean: 15.000000\ntotal energy STD: 5.000000\n") {
		t.Errorf("unexpected report:\n%s", data)
	}
	if _, err := os.Stat(filepath.Join(layout.Scratch, "seq_model1_RepairPDB.log")); os.IsNotExist(err) {
		t.Error("container log not saved")
	}
}
