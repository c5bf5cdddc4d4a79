package analysis

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/signalnine/foldrun/internal/registry"
)

var (
	// ErrEmptyGroup is matched by every *EmptyGroupError.
	ErrEmptyGroup = errors.New("empty group")
	// ErrNoUsableData means no ensemble produced statistics.
	ErrNoUsableData = errors.New("no usable reports in any group")
)

// EmptyGroupError is returned when an ensemble has no usable reports, so
// its mean and standard deviation are undefined.
type EmptyGroupError struct {
	Group registry.Group
}

func (e *EmptyGroupError) Error() string {
	return fmt.Sprintf("aggregating %s group: no usable reports", e.Group)
}

func (e *EmptyGroupError) Is(target error) bool {
	return target == ErrEmptyGroup
}

// Stat is the mean and population standard deviation of one component.
type Stat struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// GroupStatistics holds per-component statistics for one ensemble.
// Components lists the keys of PerComponent in report order.
type GroupStatistics struct {
	Group        registry.Group  `json:"group"`
	N            int             `json:"n"`
	Components   []string        `json:"components"`
	PerComponent map[string]Stat `json:"per_component"`
}

// Aggregate reduces the reports of one ensemble. Components missing from
// any report are dropped and reported as anomalies.
func Aggregate(g registry.Group, reports []*EnergyReport) (*GroupStatistics, []Anomaly, error) {
	if len(reports) == 0 {
		return nil, nil, &EmptyGroupError{Group: g}
	}
	stats := &GroupStatistics{
		Group:        g,
		N:            len(reports),
		PerComponent: make(map[string]Stat, len(components)),
	}
	var anomalies []Anomaly
	values := make([]float64, len(reports))
	for _, c := range components {
		var missing []string
		for i, r := range reports {
			v, ok := r.Value(c)
			if !ok {
				missing = append(missing, r.Name)
				continue
			}
			values[i] = v
		}
		if len(missing) > 0 {
			anomalies = append(anomalies, Anomaly{
				Kind:    AnomalyKeyMismatch,
				Subject: g.String(),
				Detail:  fmt.Sprintf("component %q missing from %s; dropped", c, strings.Join(missing, ", ")),
			})
			continue
		}
		stats.Components = append(stats.Components, c)
		stats.PerComponent[c] = MeanStd(values)
	}
	return stats, anomalies, nil
}

// MeanStd returns the arithmetic mean and the population standard
// deviation (sum of squared deviations divided by n) of values.
func MeanStd(values []float64) Stat {
	if len(values) == 0 {
		return Stat{Mean: math.NaN(), Std: math.NaN()}
	}
	n := float64(len(values))
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return Stat{Mean: mean, Std: math.Sqrt(ss / n)}
}
