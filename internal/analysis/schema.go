// Package analysis parses FoldX stability reports, classifies them into
// ensembles and reduces each ensemble to per-component statistics.
package analysis

import "strings"

const (
	// FieldName holds the structure name FoldX evaluated.
	FieldName = "Pdb"
	// FieldResidues holds the residue count of the structure.
	FieldResidues = "Number of Residues"
)

// schema is the column order of a FoldX Stability report row. It is a
// contract with FoldX's output format.
var schema = []string{
	FieldName,
	"total energy",
	"Backbone Hbond",
	"Sidechain Hbond",
	"Van der Waals",
	"Electrostatics",
	"Solvation Polar",
	"Solvation Hydrophobic",
	"Van der Waals clashes",
	"entropy sidechain",
	"entropy mainchain",
	"sloop_entropy",
	"mloop_entropy",
	"cis_bond",
	"torsional clash",
	"backbone clash",
	"helix dipole",
	"water bridge",
	"disulfide",
	"electrostatic kon",
	"partial covalent bonds",
	"energy Ionisation",
	"Entropy Complex",
	FieldResidues,
}

// components is schema minus the reserved metadata fields.
var components = func() []string {
	var out []string
	for _, f := range schema {
		if !reserved(f) {
			out = append(out, f)
		}
	}
	return out
}()

// Schema returns the report columns in order.
func Schema() []string {
	return append([]string(nil), schema...)
}

// Components returns the energetic terms in report order. Renderers iterate
// this list, never a map.
func Components() []string {
	return append([]string(nil), components...)
}

func reserved(field string) bool {
	return field == FieldName || field == FieldResidues
}

func isHeader(fields []string) bool {
	if len(fields) != len(schema) {
		return false
	}
	first := strings.TrimSpace(fields[0])
	if first != "" && !strings.EqualFold(first, FieldName) {
		return false
	}
	for i := 1; i < len(schema); i++ {
		if !strings.EqualFold(strings.TrimSpace(fields[i]), schema[i]) {
			return false
		}
	}
	return true
}
