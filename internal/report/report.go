// Package report renders an analysis as text, markdown or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/signalnine/foldrun/internal/analysis"
	"github.com/signalnine/foldrun/internal/registry"
	"github.com/signalnine/foldrun/internal/result"
)

const (
	emptyGroupNote = "No usable reports (empty group)."
	noNativeNote   = "No native record available."
)

// Formats lists the accepted --format values.
var Formats = []string{"text", "markdown", "json"}

// ValidFormat reports whether format is one of Formats.
func ValidFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// Generate renders a in the given format. Unknown formats fall back to text.
func Generate(a *analysis.Analysis, format string, w io.Writer) error {
	switch format {
	case "markdown":
		return writeMarkdown(a, w)
	case "json":
		return writeJSON(a, w)
	default:
		return writeText(a, w)
	}
}

// WriteFiles writes the text report into the run's data directory, plus
// the requested format when it is not text. It returns the written paths.
func WriteFiles(l *result.Layout, a *analysis.Analysis, format string) ([]string, error) {
	formats := []string{"text"}
	if format != "text" && ValidFormat(format) {
		formats = append(formats, format)
	}
	var paths []string
	for _, f := range formats {
		path := l.ReportPath(f)
		if err := writeFile(path, a, f); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, a *analysis.Analysis, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	if err := Generate(a, format, f); err != nil {
		f.Close()
		return fmt.Errorf("rendering %s report: %w", format, err)
	}
	return f.Close()
}

// ew keeps the first write error so rendering code can stay linear.
type ew struct {
	w   io.Writer
	err error
}

func (e *ew) printf(format string, args ...any) {
	if e.err == nil {
		_, e.err = fmt.Fprintf(e.w, format, args...)
	}
}

func writeText(a *analysis.Analysis, w io.Writer) error {
	out := &ew{w: w}
	out.printf("Analysis Output for %s\n\n", a.Title)

	for _, g := range []registry.Group{registry.Mutant, registry.Sequence} {
		out.printf("%s:\n\n", blockTitle(g))
		stats, _ := a.Stats(g)
		if stats == nil {
			out.printf("%s\n", emptyGroupNote)
		} else {
			for _, c := range stats.Components {
				s := stats.PerComponent[c]
				out.printf("%s Mean: %f\n", c, s.Mean)
				out.printf("%s STD: %f\n", c, s.Std)
			}
		}
		out.printf("\n\n")
	}

	out.printf("WT Experimental Data:\n\n")
	if a.Native == nil {
		out.printf("%s\n", noNativeNote)
	} else {
		for _, c := range analysis.Components() {
			if v, ok := a.Native.Value(c); ok {
				out.printf("%s: %s\n", c, formatValue(v))
			}
		}
	}

	if len(a.Skipped) > 0 {
		out.printf("\n\nSkipped Models:\n\n")
		for _, s := range a.Skipped {
			out.printf("%s (%s): %s: %s\n", s.Model, s.Group, s.Status, s.Reason)
		}
	}
	if len(a.Anomalies) > 0 {
		out.printf("\n\nAnomalies:\n\n")
		for _, an := range a.Anomalies {
			out.printf("%s\n", an)
		}
	}
	return out.err
}

func blockTitle(g registry.Group) string {
	if g == registry.Mutant {
		return "Mutant Predicted Data"
	}
	return "WT Predicted Data"
}

// formatValue prints a native value with the shortest exact representation,
// which is how FoldX wrote it.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeMarkdown(a *analysis.Analysis, w io.Writer) error {
	out := &ew{w: w}
	out.printf("# Analysis Output for %s\n\n", a.Title)
	out.printf("| Component | Mutant Mean | Mutant STD | WT Mean | WT STD | WT Experimental |\n")
	out.printf("|---|---|---|---|---|---|\n")
	for _, c := range analysis.Components() {
		mm, ms := statCells(a.Mutant, c)
		sm, ss := statCells(a.Sequence, c)
		native := "n/a"
		if a.Native != nil {
			if v, ok := a.Native.Value(c); ok {
				native = formatValue(v)
			}
		}
		out.printf("| %s | %s | %s | %s | %s | %s |\n", c, mm, ms, sm, ss, native)
	}
	for _, g := range []registry.Group{registry.Mutant, registry.Sequence} {
		if stats, err := a.Stats(g); stats == nil {
			out.printf("\n%s: %s (%v)\n", blockTitle(g), emptyGroupNote, err)
		}
	}
	if a.Native == nil {
		out.printf("\nWT Experimental Data: %s\n", noNativeNote)
	}

	if len(a.Skipped) > 0 {
		out.printf("\n## Skipped Models\n\n")
		for _, s := range a.Skipped {
			out.printf("- `%s` (%s): %s: %s\n", s.Model, s.Group, s.Status, s.Reason)
		}
	}
	if len(a.Anomalies) > 0 {
		out.printf("\n## Anomalies\n\n")
		for _, an := range a.Anomalies {
			out.printf("- %s\n", an)
		}
	}
	return out.err
}

func statCells(stats *analysis.GroupStatistics, component string) (string, string) {
	if stats == nil {
		return "n/a", "n/a"
	}
	s, ok := stats.PerComponent[component]
	if !ok {
		return "n/a", "n/a"
	}
	return fmt.Sprintf("%f", s.Mean), fmt.Sprintf("%f", s.Std)
}

type jsonReport struct {
	Title         string                    `json:"title"`
	Mutant        *analysis.GroupStatistics `json:"mutant"`
	MutantError   string                    `json:"mutant_error,omitempty"`
	Sequence      *analysis.GroupStatistics `json:"sequence"`
	SequenceError string                    `json:"sequence_error,omitempty"`
	Native        *analysis.EnergyReport    `json:"native"`
	Components    []string                  `json:"components"`
	Skipped       []analysis.Skipped        `json:"skipped"`
	Anomalies     []analysis.Anomaly        `json:"anomalies"`
}

func writeJSON(a *analysis.Analysis, w io.Writer) error {
	r := jsonReport{
		Title:      a.Title,
		Mutant:     a.Mutant,
		Sequence:   a.Sequence,
		Native:     a.Native,
		Components: analysis.Components(),
		Skipped:    a.Skipped,
		Anomalies:  a.Anomalies,
	}
	if a.MutantErr != nil {
		r.MutantError = a.MutantErr.Error()
	}
	if a.SequenceErr != nil {
		r.SequenceError = a.SequenceErr.Error()
	}
	if r.Skipped == nil {
		r.Skipped = []analysis.Skipped{}
	}
	if r.Anomalies == nil {
		r.Anomalies = []analysis.Anomaly{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteSummary prints the per-phase counts of a run.
func WriteSummary(sum *result.Summary, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PHASE\tATTEMPTED\tSUCCEEDED\tFAILED")
	fmt.Fprintln(tw, strings.Repeat("-", 44))
	for _, p := range []struct {
		name   string
		counts result.PhaseCounts
	}{
		{"repair", sum.Repair},
		{"stability", sum.Stability},
	} {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", p.name, p.counts.Attempted, p.counts.Succeeded, p.counts.Failed)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%s analyzed, %s skipped\n", Models(sum.Analyzed), Models(sum.Skipped))
	return err
}

// Models formats a model count: "1 model", "3 models".
func Models(n int) string {
	if n == 1 {
		return "1 model"
	}
	return strconv.Itoa(n) + " models"
}
