package runner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/signalnine/foldrun/internal/registry"
)

// StagingError is a missing or unreadable input that FoldX cannot run
// without. It is fatal to the run.
type StagingError struct {
	Path string
	Err  error
}

func (e *StagingError) Error() string {
	return fmt.Sprintf("staging %s: %v", e.Path, e.Err)
}

func (e *StagingError) Unwrap() error { return e.Err }

// StageModels checks the native structure and auxiliary files, then copies every
// model of set into workDir under its staged name. Aux files keep their
// base name.
func StageModels(set *registry.Set, workDir string, auxFiles []string) ([]*StagedModel, error) {
	if err := requireFile(set.NativePath); err != nil {
		return nil, err
	}
	for _, aux := range auxFiles {
		if err := requireFile(aux); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, &StagingError{Path: workDir, Err: err}
	}

	for _, aux := range auxFiles {
		if err := copyFile(aux, filepath.Join(workDir, filepath.Base(aux))); err != nil {
			return nil, &StagingError{Path: aux, Err: err}
		}
	}

	ids := set.All()
	models := make([]*StagedModel, 0, len(ids))
	for _, id := range ids {
		raw := set.SourcePath(id)
		staged := registry.StagedName(id)
		if err := copyFile(raw, filepath.Join(workDir, staged)); err != nil {
			return nil, &StagingError{Path: raw, Err: err}
		}
		models = append(models, &StagedModel{
			Identity: id,
			Raw:      raw,
			Staged:   staged,
			Stage:    StageStaged,
			Status:   StatusOK,
		})
	}
	return models, nil
}

func requireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &StagingError{Path: path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return &StagingError{Path: path, Err: fmt.Errorf("not a regular file")}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
