package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/signalnine/foldrun/internal/analysis"
	"github.com/signalnine/foldrun/internal/config"
	"github.com/signalnine/foldrun/internal/registry"
	"github.com/signalnine/foldrun/internal/report"
	"github.com/signalnine/foldrun/internal/result"
	"github.com/signalnine/foldrun/internal/runner"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "analyze [run-dir]",
		Short: "Re-derive model state from a run's files and render its report",
		Long: "Rebuild every model's status from the files left in the run's scratch area, " +
			"then parse, aggregate and render the report again. Defaults to <results>/latest.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if !report.ValidFormat(format) {
				return fmt.Errorf("unknown format %q (want one of %v)", format, report.Formats)
			}
			runDir := filepath.Join(cfg.Results.Dir, "latest")
			if len(args) > 0 {
				runDir = args[0]
			}
			layout, err := result.OpenRunDir(runDir)
			if err != nil {
				return err
			}
			level, err := config.ParseLogLevel(cfg.Log.Level)
			if err != nil {
				return err
			}
			logger, closeLog := config.SetupLogger(layout.LogPath(), level)
			defer closeLog()

			title, ext := filepath.Base(layout.Root), cfg.FoldX.ReportExt
			dirs := map[registry.Group]string{registry.Sequence: layout.Scratch, registry.Mutant: layout.Scratch}
			if m, err := result.ReadManifest(layout); err == nil {
				title, ext = m.Ensemble, m.ReportExt
				dirs[registry.Sequence], dirs[registry.Mutant] = m.SequenceDir, m.MutantDir
			} else {
				logger.Warn("run manifest unavailable, using config defaults", "error", err)
			}

			models, err := runner.Scan(layout.Scratch, ext)
			if err != nil {
				return err
			}
			if err := result.WriteModels(layout, models); err != nil {
				return err
			}
			found := map[registry.Group]bool{}
			for _, m := range models {
				found[m.Identity.Group] = true
			}
			a := analysis.Analyze(analysis.Options{
				Title:      title,
				Candidates: runner.Candidates(models),
				Anomalies:  emptyGroupAnomalies(dirs, func(g registry.Group) bool { return !found[g] }),
				Logger:     logger,
			})
			if _, err := report.WriteFiles(layout, a, format); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := report.Generate(a, format, out); err != nil {
				return err
			}
			sum := runner.Summarize(models)
			sum.Skipped = len(a.Skipped)
			sum.Analyzed = sum.Models - sum.Skipped
			fmt.Fprintln(out)
			if err := report.WriteSummary(sum, out); err != nil {
				return err
			}
			return a.Err()
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format (text, markdown, json)")
	return cmd
}
