// Package runner stages model files and drives them through the FoldX
// repair and stability phases.
package runner

import (
	"github.com/signalnine/foldrun/internal/analysis"
	"github.com/signalnine/foldrun/internal/registry"
)

// Stage is how far a model has advanced through the pipeline.
type Stage int

const (
	StageRaw Stage = iota
	StageStaged
	StageRepaired
	StageReported
)

var stageNames = []string{"raw", "staged", "repaired", "reported"}

func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return "unknown"
}

func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Stage) UnmarshalText(text []byte) error {
	for i, name := range stageNames {
		if name == string(text) {
			*s = Stage(i)
			return nil
		}
	}
	*s = StageRaw
	return nil
}

// Status is the per-model outcome slot.
type Status string

const (
	StatusOK              Status = "ok"
	StatusRepairFailed    Status = "repair_failed"
	StatusStabilityFailed Status = "stability_failed"
)

// StagedModel tracks one model through the pipeline. Staged and Repaired
// are file names inside the work directory.
type StagedModel struct {
	Identity   registry.Identity `json:"identity"`
	Raw        string            `json:"raw,omitempty"`
	Staged     string            `json:"staged"`
	Repaired   string            `json:"repaired,omitempty"`
	ReportPath string            `json:"report_path,omitempty"`
	Stage      Stage             `json:"stage"`
	Status     Status            `json:"status"`
	Failure    string            `json:"failure,omitempty"`
	Reason     string            `json:"reason,omitempty"`
}

// advance moves the model forward. Moving backwards is ignored.
func (m *StagedModel) advance(s Stage) {
	if s > m.Stage {
		m.Stage = s
	}
}

// fail records the outcome. failure is a short label such as crashed or
// missing_artifact; reason is the full message.
func (m *StagedModel) fail(s Status, failure, reason string) {
	m.Status = s
	m.Failure = failure
	m.Reason = reason
}

// OK reports whether the model is still eligible for the next phase.
func (m *StagedModel) OK() bool {
	return m.Status == StatusOK
}

// Candidates turns the models into analysis input. Failed models are
// passed along as already skipped.
func Candidates(models []*StagedModel) []analysis.Candidate {
	cands := make([]analysis.Candidate, 0, len(models))
	for _, m := range models {
		c := analysis.Candidate{
			Label: registry.StagedName(m.Identity),
			Group: m.Identity.Group,
		}
		if m.OK() {
			c.ReportPath = m.ReportPath
		} else {
			c.SkipStatus = string(m.Status)
			c.SkipReason = m.Reason
		}
		cands = append(cands, c)
	}
	return cands
}
