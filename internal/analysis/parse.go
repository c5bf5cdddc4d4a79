package analysis

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// EnergyReport is one parsed stability report.
type EnergyReport struct {
	Name       string             `json:"name"`
	Residues   int                `json:"residues"`
	Components map[string]float64 `json:"components"`
	Source     string             `json:"source,omitempty"`
}

// Value returns the value of an energetic component.
func (r *EnergyReport) Value(component string) (float64, bool) {
	v, ok := r.Components[component]
	return v, ok
}

// ParseError describes why a report could not be used.
type ParseError struct {
	Path   string
	Line   int
	Field  string
	Reason string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parsing report")
	if e.Path != "" {
		b.WriteString(" " + e.Path)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " line %d", e.Line)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " field %q", e.Field)
	}
	b.WriteString(": " + e.Reason)
	return b.String()
}

// ParseReportFile parses the report at path.
func ParseReportFile(path string) (*EnergyReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Reason: err.Error()}
	}
	defer f.Close()
	rep, err := ParseReport(f)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	rep.Source = path
	return rep, nil
}

// ParseReport reads a single-row FoldX stability report. Blank lines are
// ignored and an optional header line must match the schema exactly.
// Exactly one data row is accepted.
func ParseReport(r io.Reader) (*EnergyReport, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		row     []string
		rowLine int
		lineNo  int
	)
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := splitRow(line)
		if isHeader(fields) {
			if row != nil {
				return nil, &ParseError{Line: lineNo, Reason: "header after data row"}
			}
			continue
		}
		if row != nil {
			return nil, &ParseError{Line: lineNo, Reason: fmt.Sprintf("more than one data row (first at line %d)", rowLine)}
		}
		row, rowLine = fields, lineNo
	}
	if err := sc.Err(); err != nil {
		return nil, &ParseError{Reason: err.Error()}
	}
	if row == nil {
		return nil, &ParseError{Reason: "no data row"}
	}
	return parseRow(row, rowLine)
}

// splitRow splits a tab-separated line. FoldX terminates rows with a tab,
// which would otherwise show up as an extra empty field.
func splitRow(line string) []string {
	fields := strings.Split(line, "\t")
	if len(fields) == len(schema)+1 && strings.TrimSpace(fields[len(fields)-1]) == "" {
		fields = fields[:len(fields)-1]
	}
	return fields
}

func parseRow(fields []string, line int) (*EnergyReport, error) {
	if len(fields) != len(schema) {
		return nil, &ParseError{Line: line, Reason: fmt.Sprintf("got %d fields, want %d", len(fields), len(schema))}
	}
	rep := &EnergyReport{Components: make(map[string]float64, len(components))}
	for i, field := range schema {
		raw := strings.TrimSpace(fields[i])
		switch field {
		case FieldName:
			if raw == "" {
				return nil, &ParseError{Line: line, Field: field, Reason: "empty name"}
			}
			rep.Name = raw
		case FieldResidues:
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				return nil, &ParseError{Line: line, Field: field, Reason: fmt.Sprintf("not a residue count: %q", raw)}
			}
			rep.Residues = n
		default:
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &ParseError{Line: line, Field: field, Reason: fmt.Sprintf("not a number: %q", raw)}
			}
			rep.Components[field] = v
		}
	}
	return rep, nil
}
