package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/signalnine/foldrun/internal/registry"
	"github.com/signalnine/foldrun/internal/result"
)

// Scan rebuilds the models of a work directory from the files present in
// it. A staged model without a repaired file counts as repair_failed, one
// without a report as stability_failed. Nothing from earlier in-memory
// state is trusted.
func Scan(workDir, reportExt string) ([]*StagedModel, error) {
	entries, err := os.ReadDir(workDir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", workDir, err)
	}

	var models []*StagedModel
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		id, ok := registry.ParseStagedName(e.Name())
		if !ok {
			continue
		}
		staged, repaired, report := registry.StageNames(id, reportExt)
		m := &StagedModel{Identity: id, Staged: staged, Stage: StageStaged, Status: StatusOK}
		switch {
		case !exists(filepath.Join(workDir, repaired)):
			m.fail(StatusRepairFailed, "missing_artifact", "no repaired structure "+repaired)
		case !exists(filepath.Join(workDir, report)):
			m.Repaired = repaired
			m.advance(StageRepaired)
			m.fail(StatusStabilityFailed, "missing_artifact", "no stability report "+report)
		default:
			m.Repaired = repaired
			m.ReportPath = filepath.Join(workDir, report)
			m.advance(StageReported)
		}
		models = append(models, m)
	}

	sort.SliceStable(models, func(i, j int) bool {
		return models[i].Identity.Group < models[j].Identity.Group
	})
	return models, nil
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Summarize recomputes phase counts from model stages, for runs whose
// models were rebuilt by Scan.
func Summarize(models []*StagedModel) *result.Summary {
	sum := &result.Summary{Models: len(models)}
	for _, m := range models {
		sum.Repair.Attempted++
		if m.Stage < StageRepaired {
			sum.Repair.Failed++
			sum.Skipped++
			continue
		}
		sum.Repair.Succeeded++
		sum.Stability.Attempted++
		if m.Stage < StageReported {
			sum.Stability.Failed++
			sum.Skipped++
			continue
		}
		sum.Stability.Succeeded++
	}
	return sum
}
