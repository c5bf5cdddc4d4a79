package registry

import (
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// NativeStagedName is the staged name of the reference structure,
	// independent of the input file name.
	NativeStagedName = "native.pdb"

	// DefaultReportExt is the extension FoldX gives stability reports.
	DefaultReportExt = "fxout"

	repairSuffix    = "_Repair.pdb"
	stabilitySuffix = "_0_ST."
)

// StagedName is the file name a model gets in the scratch area:
// seq_<base> or mut_<base>, and native.pdb for the reference.
func StagedName(id Identity) string {
	if id.Group == Native {
		return NativeStagedName
	}
	return id.Group.Prefix() + "_" + id.BaseName
}

// RepairedName is the file FoldX RepairPDB writes for a staged file.
func RepairedName(staged string) string {
	return stem(staged) + repairSuffix
}

// ReportName is the file FoldX Stability writes for a repaired file.
func ReportName(repaired, ext string) string {
	if ext == "" {
		ext = DefaultReportExt
	}
	return stem(repaired) + stabilitySuffix + strings.TrimPrefix(ext, ".")
}

// StageNames returns the staged, repaired and report names for an identity.
func StageNames(id Identity, ext string) (staged, repaired, report string) {
	staged = StagedName(id)
	repaired = RepairedName(staged)
	report = ReportName(repaired, ext)
	return staged, repaired, report
}

// ParseStagedName inverts StagedName. It reports false for names that are
// not staged model names, including repaired and report artifacts.
func ParseStagedName(name string) (Identity, bool) {
	name = filepath.Base(name)
	if name == NativeStagedName {
		return Identity{Group: Native, BaseName: NativeStagedName}, true
	}
	for _, g := range []Group{Sequence, Mutant} {
		prefix := g.Prefix() + "_"
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		base := strings.TrimPrefix(name, prefix)
		index, ok := matchModel(base)
		if !ok {
			return Identity{}, false
		}
		return Identity{Group: g, Index: index, BaseName: base}, true
	}
	return Identity{}, false
}

func stem(name string) string {
	name = filepath.Base(name)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func matchModel(base string) (*int, bool) {
	m := modelPattern.FindStringSubmatch(base)
	if m == nil {
		return nil, false
	}
	if m[1] == "" {
		return nil, true
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, true
	}
	return &n, true
}
