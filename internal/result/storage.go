package result

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const (
	manifestFile = "run.json"
	modelsFile   = "models.json"
	logFile      = "foldrun.log"
)

// Layout is the on-disk shape of a run: scratch/ holds staged inputs and
// every FoldX artifact, data/ holds what foldrun writes.
type Layout struct {
	Root    string
	Scratch string
	Data    string
}

func layoutFor(root string) *Layout {
	return &Layout{
		Root:    root,
		Scratch: filepath.Join(root, "scratch"),
		Data:    filepath.Join(root, "data"),
	}
}

// CreateRunDir creates <base>/runs/<timestamp>/{scratch,data} and points
// <base>/latest at it. Every call gets a fresh directory; runs started in
// the same second get a numeric suffix.
func CreateRunDir(baseDir string) (*Layout, error) {
	runsDir, err := filepath.Abs(filepath.Join(baseDir, "runs"))
	if err != nil {
		return nil, fmt.Errorf("resolving run dir: %w", err)
	}
	if err := os.MkdirAll(runsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating run dir: %w", err)
	}
	runDir, err := claimRunDir(runsDir, time.Now().UTC().Format("2006-01-02T15-04-05"))
	if err != nil {
		return nil, err
	}
	l := layoutFor(runDir)
	for _, dir := range []string{l.Scratch, l.Data} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating run dir: %w", err)
		}
	}
	latest := filepath.Join(baseDir, "latest")
	os.Remove(latest)
	if err := os.Symlink(runDir, latest); err != nil {
		return nil, fmt.Errorf("creating latest symlink: %w", err)
	}
	return l, nil
}

// claimRunDir creates a run directory that did not exist before. os.Mkdir
// fails on an existing path, so a concurrent run never shares it.
func claimRunDir(runsDir, stamp string) (string, error) {
	const maxAttempts = 100
	for i := 0; i < maxAttempts; i++ {
		name := stamp
		if i > 0 {
			name = fmt.Sprintf("%s.%d", stamp, i)
		}
		dir := filepath.Join(runsDir, name)
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			return dir, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("creating run dir: %w", err)
		}
	}
	return "", fmt.Errorf("creating run dir: %s already used %d times", stamp, maxAttempts)
}

// OpenRunDir resolves an existing run directory, following symlinks such
// as latest.
func OpenRunDir(dir string) (*Layout, error) {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving run dir: %w", err)
	}
	l := layoutFor(resolved)
	if info, err := os.Stat(l.Scratch); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%s is not a run directory: missing scratch/", dir)
	}
	if err := os.MkdirAll(l.Data, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return l, nil
}

// ReportPath is where the rendered report for format goes.
func (l *Layout) ReportPath(format string) string {
	ext := map[string]string{"markdown": "md", "json": "json"}[format]
	if ext == "" {
		ext = "txt"
	}
	return filepath.Join(l.Data, "report."+ext)
}

func (l *Layout) LogPath() string {
	return filepath.Join(l.Data, logFile)
}

func WriteManifest(l *Layout, m *RunManifest) error {
	return writeJSON(filepath.Join(l.Root, manifestFile), m)
}

func ReadManifest(l *Layout) (*RunManifest, error) {
	var m RunManifest
	if err := readJSON(filepath.Join(l.Root, manifestFile), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// WriteModels stores the per-model status ledger. It is informational:
// analysis re-derives model state from the files in scratch/.
func WriteModels(l *Layout, models any) error {
	return writeJSON(filepath.Join(l.Data, modelsFile), models)
}

func ReadModels(l *Layout, models any) error {
	return readJSON(filepath.Join(l.Data, modelsFile), models)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, data, 0o644)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return nil
}
