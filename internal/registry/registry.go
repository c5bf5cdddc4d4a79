package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var modelPattern = regexp.MustCompile(`^model([0-9]*)\.pdb$`)

// Set is the result of discovery: both ensembles plus the native reference.
type Set struct {
	SequenceDir string
	MutantDir   string
	NativePath  string

	Sequence []Identity
	Mutant   []Identity
	Native   Identity
}

// Discover lists the model files of both ensembles. Only regular files
// directly inside each directory are considered; subdirectories are not
// traversed. An empty ensemble is not an error here.
func Discover(seqDir, mutDir, nativePath string) (*Set, error) {
	seqs, err := ScanDir(seqDir, Sequence)
	if err != nil {
		return nil, err
	}
	muts, err := ScanDir(mutDir, Mutant)
	if err != nil {
		return nil, err
	}
	return &Set{
		SequenceDir: seqDir,
		MutantDir:   mutDir,
		NativePath:  nativePath,
		Sequence:    seqs,
		Mutant:      muts,
		Native:      Identity{Group: Native, BaseName: filepath.Base(nativePath)},
	}, nil
}

// ScanDir returns the identities of the model files in dir, in directory
// listing order.
func ScanDir(dir string, g Group) ([]Identity, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s models in %s: %w", g, dir, err)
	}
	var ids []Identity
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		index, ok := matchModel(e.Name())
		if !ok {
			continue
		}
		ids = append(ids, Identity{Group: g, Index: index, BaseName: e.Name()})
	}
	return ids, nil
}

// All returns every identity in run order: sequence, mutant, native.
func (s *Set) All() []Identity {
	all := make([]Identity, 0, len(s.Sequence)+len(s.Mutant)+1)
	all = append(all, s.Sequence...)
	all = append(all, s.Mutant...)
	return append(all, s.Native)
}

// Empty reports whether discovery found no models for g.
func (s *Set) Empty(g Group) bool {
	switch g {
	case Sequence:
		return len(s.Sequence) == 0
	case Mutant:
		return len(s.Mutant) == 0
	default:
		return false
	}
}

// SourcePath is where the input file for id lives.
func (s *Set) SourcePath(id Identity) string {
	switch id.Group {
	case Sequence:
		return filepath.Join(s.SequenceDir, id.BaseName)
	case Mutant:
		return filepath.Join(s.MutantDir, id.BaseName)
	default:
		return s.NativePath
	}
}

// EnsembleName is the title used for the analysis: the base name of the
// sequence directory.
func (s *Set) EnsembleName() string {
	return filepath.Base(filepath.Clean(s.SequenceDir))
}
