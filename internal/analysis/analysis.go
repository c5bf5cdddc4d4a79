package analysis

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/signalnine/foldrun/internal/registry"
)

// Candidate is one model offered to the analysis. A candidate with a
// non-empty SkipStatus was already excluded upstream and is only listed.
type Candidate struct {
	Label      string
	Group      registry.Group
	ReportPath string
	SkipStatus string
	SkipReason string
}

// Skipped is a model left out of the statistics.
type Skipped struct {
	Model  string         `json:"model"`
	Group  registry.Group `json:"group"`
	Status string         `json:"status"`
	Reason string         `json:"reason"`
}

// StatusParseFailed marks a candidate whose report could not be parsed.
const StatusParseFailed = "parse_failed"

// Options configure Analyze.
type Options struct {
	Title      string
	Candidates []Candidate
	Anomalies  []Anomaly
	Logger     *slog.Logger
}

// Analysis is the aggregate outcome of a run.
type Analysis struct {
	Title       string
	Sequence    *GroupStatistics
	SequenceErr error
	Mutant      *GroupStatistics
	MutantErr   error
	Native      *EnergyReport
	Anomalies   []Anomaly
	Skipped     []Skipped
}

// Stats returns the statistics and aggregation error for an ensemble.
func (a *Analysis) Stats(g registry.Group) (*GroupStatistics, error) {
	switch g {
	case registry.Sequence:
		return a.Sequence, a.SequenceErr
	case registry.Mutant:
		return a.Mutant, a.MutantErr
	default:
		return nil, fmt.Errorf("no statistics for %s group", g)
	}
}

// Err is non-nil only when neither ensemble produced statistics.
func (a *Analysis) Err() error {
	if a.Sequence == nil && a.Mutant == nil {
		return fmt.Errorf("%w: %w; %w", ErrNoUsableData, a.SequenceErr, a.MutantErr)
	}
	return nil
}

// Analyze parses and classifies the candidates' reports and aggregates
// each ensemble. Per-model problems become Skipped entries and anomalies;
// the returned Analysis is always non-nil.
func Analyze(opts Options) *Analysis {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	a := &Analysis{Title: opts.Title, Anomalies: append([]Anomaly(nil), opts.Anomalies...)}

	var seqs, muts []*EnergyReport
	for _, c := range opts.Candidates {
		if c.SkipStatus != "" {
			a.Skipped = append(a.Skipped, Skipped{Model: c.Label, Group: c.Group, Status: c.SkipStatus, Reason: c.SkipReason})
			continue
		}
		rep, err := ParseReportFile(c.ReportPath)
		if err != nil {
			log.Warn("report rejected", "model", c.Label, "error", err)
			a.Skipped = append(a.Skipped, Skipped{Model: c.Label, Group: c.Group, Status: StatusParseFailed, Reason: err.Error()})
			continue
		}

		g := Classify(rep.Name)
		if g != c.Group {
			a.Anomalies = append(a.Anomalies, Anomaly{
				Kind:    AnomalyGroupMismatch,
				Subject: c.Label,
				Detail:  fmt.Sprintf("report name %q classifies as %s", rep.Name, g),
			})
		}
		switch g {
		case registry.Mutant:
			muts = append(muts, rep)
		case registry.Sequence:
			seqs = append(seqs, rep)
		default:
			a.addNative(c.Label, rep)
		}
	}

	if a.Native == nil {
		a.Anomalies = append(a.Anomalies, Anomaly{
			Kind:    AnomalyMissingNative,
			Subject: registry.Native.String(),
			Detail:  "no report classified as native",
		})
	}

	var anomalies []Anomaly
	a.Sequence, anomalies, a.SequenceErr = Aggregate(registry.Sequence, seqs)
	a.Anomalies = append(a.Anomalies, anomalies...)
	a.Mutant, anomalies, a.MutantErr = Aggregate(registry.Mutant, muts)
	a.Anomalies = append(a.Anomalies, anomalies...)

	for _, err := range []error{a.SequenceErr, a.MutantErr} {
		var empty *EmptyGroupError
		if errors.As(err, &empty) {
			log.Warn("group has no usable reports", "group", empty.Group.String())
		}
	}
	for _, an := range a.Anomalies {
		log.Warn("anomaly", "kind", string(an.Kind), "subject", an.Subject, "detail", an.Detail)
	}
	return a
}

// addNative keeps the first native record and flags the rest.
func (a *Analysis) addNative(label string, rep *EnergyReport) {
	if !IsDeclaredNative(rep.Name) {
		a.Anomalies = append(a.Anomalies, Anomaly{
			Kind:    AnomalyUnrecognizedName,
			Subject: label,
			Detail:  fmt.Sprintf("report name %q matches neither seq, mut nor the native structure; treated as native", rep.Name),
		})
	}
	if a.Native != nil {
		a.Anomalies = append(a.Anomalies, Anomaly{
			Kind:    AnomalyDuplicateNative,
			Subject: label,
			Detail:  fmt.Sprintf("keeping first native record %q, ignoring %q", a.Native.Name, rep.Name),
		})
		return
	}
	a.Native = rep
}
