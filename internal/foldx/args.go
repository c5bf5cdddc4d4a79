package foldx

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Packaging selects how an invocation is handed to FoldX.
type Packaging string

const (
	// PackagingCLI passes everything as --key=value arguments.
	PackagingCLI Packaging = "cli"
	// PackagingConfig writes a per-model job file and runs foldx -f <file>.
	PackagingConfig Packaging = "config"
)

// Options are the FoldX physical options applied to every call.
type Options struct {
	Temperature  float64 `yaml:"temperature" json:"temperature"`
	PH           float64 `yaml:"ph" json:"ph"`
	IonStrength  float64 `yaml:"ion_strength" json:"ion_strength"`
	Water        string  `yaml:"water" json:"water"`
	Metal        string  `yaml:"metal" json:"metal"`
	VdWDesign    int     `yaml:"vdw_design" json:"vdw_design"`
	OutPDB       bool    `yaml:"out_pdb" json:"out_pdb"`
	PDBHydrogens bool    `yaml:"pdb_hydrogens" json:"pdb_hydrogens"`
}

// DefaultOptions are FoldX's standard conditions.
var DefaultOptions = Options{
	Temperature:  298,
	PH:           7,
	IonStrength:  0.050,
	Water:        "-CRYSTAL",
	Metal:        "-CRYSTAL",
	VdWDesign:    2,
	OutPDB:       true,
	PDBHydrogens: false,
}

type kv struct{ key, value string }

func (inv Invocation) pairs(opts Options) []kv {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []kv{
		{"command", string(inv.Command)},
		{"pdb", inv.Input},
		{"temperature", f(opts.Temperature)},
		{"pH", f(opts.PH)},
		{"ionStrength", f(opts.IonStrength)},
		{"water", opts.Water},
		{"metal", opts.Metal},
		{"vdwDesign", strconv.Itoa(opts.VdWDesign)},
		{"out-pdb", strconv.FormatBool(opts.OutPDB)},
		{"pdbHydrogens", strconv.FormatBool(opts.PDBHydrogens)},
		{"output-dir", "."},
	}
}

// ConfigFileName is the job file written for an invocation under
// PackagingConfig.
func ConfigFileName(inv Invocation) string {
	stem := strings.TrimSuffix(inv.Input, filepath.Ext(inv.Input))
	return fmt.Sprintf("%s_%s.cfg", stem, inv.Command)
}

// BuildArgs returns the FoldX arguments for inv. Under PackagingConfig the
// job file is written into inv.WorkDir first.
func BuildArgs(p Packaging, inv Invocation, opts Options) ([]string, error) {
	pairs := inv.pairs(opts)
	switch p {
	case PackagingCLI, "":
		args := make([]string, 0, len(pairs))
		for _, kv := range pairs {
			args = append(args, "--"+kv.key+"="+kv.value)
		}
		return args, nil
	case PackagingConfig:
		var b strings.Builder
		for _, kv := range pairs {
			fmt.Fprintf(&b, "%s=%s\n", kv.key, kv.value)
		}
		name := ConfigFileName(inv)
		if err := os.WriteFile(filepath.Join(inv.WorkDir, name), []byte(b.String()), 0o644); err != nil {
			return nil, fmt.Errorf("writing job file: %w", err)
		}
		return []string{"-f", name}, nil
	default:
		return nil, fmt.Errorf("unknown packaging %q", p)
	}
}
