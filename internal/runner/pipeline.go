package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/signalnine/foldrun/internal/foldx"
	"github.com/signalnine/foldrun/internal/registry"
	"github.com/signalnine/foldrun/internal/result"
)

// Pipeline runs RepairPDB over every model, then Stability over the models
// whose repair succeeded.
type Pipeline struct {
	Tool      foldx.Tool
	WorkDir   string
	Parallel  int
	ReportExt string
	Logger    *slog.Logger
}

// Run invokes each phase exactly once per eligible model. Per-model
// failures are recorded on the model and never abort its siblings.
func (p *Pipeline) Run(ctx context.Context, models []*StagedModel) *result.Summary {
	sum := &result.Summary{Models: len(models)}
	sum.Repair = p.phase(ctx, models, foldx.Repair)
	sum.Stability = p.phase(ctx, models, foldx.Stability)
	for _, m := range models {
		if !m.OK() {
			sum.Skipped++
		}
	}
	p.logger().Info("pipeline finished",
		"models", sum.Models,
		"repaired", sum.Repair.Succeeded,
		"reported", sum.Stability.Succeeded,
		"skipped", sum.Skipped)
	return sum
}

func (p *Pipeline) phase(ctx context.Context, models []*StagedModel, cmd foldx.Command) result.PhaseCounts {
	var eligible []*StagedModel
	for _, m := range models {
		if m.OK() {
			eligible = append(eligible, m)
		}
	}
	p.logger().Info("phase started", "command", string(cmd), "models", len(eligible), "parallel", p.Parallel)

	jobs := make([]Job, len(eligible))
	for i, m := range eligible {
		jobs[i] = func(ctx context.Context) error { return p.invoke(ctx, m, cmd) }
	}
	errs := RunPool(ctx, p.Parallel, jobs)
	return result.PhaseCounts{
		Attempted: len(eligible),
		Succeeded: len(eligible) - len(errs),
		Failed:    len(errs),
	}
}

// invoke writes only to m, so concurrent jobs never share state.
func (p *Pipeline) invoke(ctx context.Context, m *StagedModel, cmd foldx.Command) error {
	inv := foldx.Invocation{Command: cmd, WorkDir: p.WorkDir}
	failed := StatusRepairFailed
	if cmd == foldx.Repair {
		inv.Input = m.Staged
		inv.Output = registry.RepairedName(m.Staged)
	} else {
		inv.Input = m.Repaired
		inv.Output = registry.ReportName(m.Repaired, p.ReportExt)
		failed = StatusStabilityFailed
	}

	log := p.logger().With("model", m.Identity.Label(), "command", string(cmd))
	// Success is judged by the artifact, so one left by an earlier run
	// must not count.
	if err := os.Remove(filepath.Join(p.WorkDir, inv.Output)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		m.fail(failed, "error", fmt.Sprintf("removing stale %s: %v", inv.Output, err))
		log.Warn("cannot clear previous artifact", "error", err)
		return err
	}
	log.Debug("invoking foldx", "input", inv.Input)
	res, err := foldx.Run(ctx, p.Tool, inv)
	if err != nil {
		label := "error"
		var ie *foldx.InvocationError
		if errors.As(err, &ie) {
			label = ie.Reason()
		}
		m.fail(failed, label, err.Error())
		log.Warn("foldx failed", "error", err, "failure", label)
		return err
	}
	log.Info("foldx finished", "output", inv.Output, "duration", res.Duration.Round(time.Millisecond))

	if cmd == foldx.Repair {
		m.Repaired = inv.Output
		m.advance(StageRepaired)
	} else {
		m.ReportPath = filepath.Join(p.WorkDir, inv.Output)
		m.advance(StageReported)
	}
	return nil
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
