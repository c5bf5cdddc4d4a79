package analysis

import (
	"fmt"
	"path"
	"strings"

	"github.com/signalnine/foldrun/internal/registry"
)

// AnomalyKind identifies a data-integrity condition that does not stop the
// run but must be visible in its output.
type AnomalyKind string

const (
	AnomalyDiscoveryEmpty   AnomalyKind = "discovery_empty"
	AnomalyUnrecognizedName AnomalyKind = "unrecognized_name"
	AnomalyDuplicateNative  AnomalyKind = "duplicate_native"
	AnomalyMissingNative    AnomalyKind = "missing_native"
	AnomalyGroupMismatch    AnomalyKind = "group_mismatch"
	AnomalyKeyMismatch      AnomalyKind = "key_mismatch"
)

type Anomaly struct {
	Kind    AnomalyKind `json:"kind"`
	Subject string      `json:"subject"`
	Detail  string      `json:"detail"`
}

func (a Anomaly) String() string {
	return fmt.Sprintf("%s: %s: %s", a.Kind, a.Subject, a.Detail)
}

// nativeStem is the name FoldX reports for the repaired native structure.
var nativeStem = recordStem(registry.RepairedName(registry.NativeStagedName))

// Classify assigns a report to an ensemble from its name field. Only the
// base name is inspected so directories in the name cannot leak into the
// match. mut is checked before seq.
func Classify(name string) registry.Group {
	stem := recordStem(name)
	switch {
	case strings.Contains(stem, "mut"):
		return registry.Mutant
	case strings.Contains(stem, "seq"):
		return registry.Sequence
	default:
		return registry.Native
	}
}

// IsDeclaredNative reports whether name is the repaired native structure.
func IsDeclaredNative(name string) bool {
	return recordStem(name) == nativeStem
}

// recordStem strips directories and a .pdb extension from a report name.
// FoldX writes names like ./seq_model3_Repair.pdb.
func recordStem(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), `\`, "/")
	return strings.TrimSuffix(path.Base(name), ".pdb")
}
