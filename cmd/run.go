package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/signalnine/foldrun/internal/analysis"
	"github.com/signalnine/foldrun/internal/config"
	"github.com/signalnine/foldrun/internal/registry"
	"github.com/signalnine/foldrun/internal/report"
	"github.com/signalnine/foldrun/internal/result"
	"github.com/signalnine/foldrun/internal/runner"
	"github.com/spf13/cobra"
)

var (
	flagFoldX    string
	flagOutput   string
	flagParallel int
	flagFormat   string
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <seq-dir> <mut-dir> <native.pdb> [foldx] [output-dir]",
		Short: "Repair and score every model, then write the ensemble report",
		Args:  cobra.RangeArgs(3, 5),
		RunE:  runPipeline,
	}
	cmd.Flags().StringVar(&flagFoldX, "foldx", "", "FoldX binary (overrides config)")
	cmd.Flags().StringVar(&flagOutput, "output", "", "results directory (overrides config)")
	cmd.Flags().IntVar(&flagParallel, "parallel", 0, "max concurrent FoldX invocations (overrides config)")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "extra report format (text, markdown, json)")
	return cmd
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyRunOverrides(cfg, args); err != nil {
		return err
	}
	level, err := config.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		return err
	}

	set, err := registry.Discover(args[0], args[1], args[2])
	if err != nil {
		return err
	}

	layout, err := result.CreateRunDir(cfg.Results.Dir)
	if err != nil {
		return err
	}
	logger, closeLog := config.SetupLogger(layout.LogPath(), level)
	defer closeLog()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run directory: %s\n", layout.Root)

	manifest := &result.RunManifest{
		ID:          uuid.NewString(),
		Ensemble:    set.EnsembleName(),
		SequenceDir: set.SequenceDir,
		MutantDir:   set.MutantDir,
		NativePath:  set.NativePath,
		Runtime:     cfg.FoldX.Runtime,
		Tool:        toolName(&cfg.FoldX),
		Packaging:   string(cfg.FoldX.Packaging),
		ReportExt:   cfg.FoldX.ReportExt,
		Parallel:    cfg.Parallel,
		StartedAt:   time.Now().UTC(),
	}
	if err := result.WriteManifest(layout, manifest); err != nil {
		return err
	}
	logger = logger.With("run", manifest.ID)
	logger.Info("models discovered",
		"ensemble", manifest.Ensemble,
		"sequence", len(set.Sequence),
		"mutant", len(set.Mutant))

	models, err := runner.StageModels(set, layout.Scratch, cfg.FoldX.ResolvedAuxFiles())
	if err != nil {
		logger.Error("staging failed", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline := &runner.Pipeline{
		Tool:      cfg.FoldX.Tool(),
		WorkDir:   layout.Scratch,
		Parallel:  cfg.Parallel,
		ReportExt: cfg.FoldX.ReportExt,
		Logger:    logger,
	}
	sum := pipeline.Run(ctx, models)
	if err := result.WriteModels(layout, models); err != nil {
		return err
	}

	a := analysis.Analyze(analysis.Options{
		Title:      set.EnsembleName(),
		Candidates: runner.Candidates(models),
		Anomalies:  discoveryAnomalies(set),
		Logger:     logger,
	})
	return finish(out, layout, manifest, sum, a, flagFormat)
}

func applyRunOverrides(cfg *config.Config, args []string) error {
	if len(args) > 3 {
		cfg.FoldX.Binary = args[3]
	}
	if len(args) > 4 {
		cfg.Results.Dir = args[4]
	}
	if flagFoldX != "" {
		cfg.FoldX.Binary = flagFoldX
	}
	if flagOutput != "" {
		cfg.Results.Dir = flagOutput
	}
	if flagParallel < 0 {
		return fmt.Errorf("--parallel must be at least 1")
	}
	if flagParallel > 0 {
		cfg.Parallel = flagParallel
	}
	if !report.ValidFormat(flagFormat) {
		return fmt.Errorf("unknown format %q (want one of %v)", flagFormat, report.Formats)
	}
	return nil
}

func toolName(f *config.FoldX) string {
	if f.Runtime == config.RuntimeDocker {
		return f.Image
	}
	return f.Binary
}

func discoveryAnomalies(set *registry.Set) []analysis.Anomaly {
	dirs := map[registry.Group]string{registry.Sequence: set.SequenceDir, registry.Mutant: set.MutantDir}
	return emptyGroupAnomalies(dirs, set.Empty)
}

// emptyGroupAnomalies reports each model group for which empty is true,
// naming the directory it was read from.
func emptyGroupAnomalies(dirs map[registry.Group]string, empty func(registry.Group) bool) []analysis.Anomaly {
	var out []analysis.Anomaly
	for _, g := range []registry.Group{registry.Sequence, registry.Mutant} {
		if empty(g) {
			out = append(out, analysis.Anomaly{
				Kind:    analysis.AnomalyDiscoveryEmpty,
				Subject: g.String(),
				Detail:  "no model files in " + dirs[g],
			})
		}
	}
	return out
}

// finish writes the reports and manifest, prints the run summary and
// returns an error only when no ensemble produced statistics.
func finish(out io.Writer, layout *result.Layout, manifest *result.RunManifest, sum *result.Summary, a *analysis.Analysis, format string) error {
	sum.Skipped = len(a.Skipped)
	sum.Analyzed = sum.Models - sum.Skipped

	paths, err := report.WriteFiles(layout, a, format)
	if err != nil {
		return err
	}
	finished := time.Now().UTC()
	manifest.FinishedAt = &finished
	manifest.Summary = sum
	if err := result.WriteManifest(layout, manifest); err != nil {
		return err
	}

	fmt.Fprintln(out, "\n--- Results ---")
	if err := report.WriteSummary(sum, out); err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintf(out, "Report: %s\n", p)
	}
	return a.Err()
}
