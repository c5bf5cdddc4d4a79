package result

import "time"

// RunManifest describes one foldrun invocation.
type RunManifest struct {
	ID          string     `json:"id"`
	Ensemble    string     `json:"ensemble"`
	SequenceDir string     `json:"sequence_dir"`
	MutantDir   string     `json:"mutant_dir"`
	NativePath  string     `json:"native_path"`
	Runtime     string     `json:"runtime"`
	Tool        string     `json:"tool"`
	Packaging   string     `json:"packaging"`
	ReportExt   string     `json:"report_ext"`
	Parallel    int        `json:"parallel"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	Summary     *Summary   `json:"summary,omitempty"`
}

// PhaseCounts tallies one pipeline phase.
type PhaseCounts struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Summary is the outcome of a run across phases.
type Summary struct {
	Models    int         `json:"models"`
	Repair    PhaseCounts `json:"repair"`
	Stability PhaseCounts `json:"stability"`
	Analyzed  int         `json:"analyzed"`
	Skipped   int         `json:"skipped"`
}
