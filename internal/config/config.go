package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/signalnine/foldrun/internal/foldx"
	"github.com/signalnine/foldrun/internal/registry"
	"gopkg.in/yaml.v3"
)

type Config struct {
	FoldX    FoldX   `yaml:"foldx"`
	Parallel int     `yaml:"parallel"`
	Results  Results `yaml:"results"`
	Log      Log     `yaml:"log"`
}

type FoldX struct {
	Binary         string          `yaml:"binary"`
	Runtime        string          `yaml:"runtime"`
	Image          string          `yaml:"image"`
	Packaging      foldx.Packaging `yaml:"packaging"`
	TimeoutMinutes int             `yaml:"timeout_minutes"`
	ReportExt      string          `yaml:"report_ext"`
	AuxFiles       []string        `yaml:"aux_files"`
	CPULimit       float64         `yaml:"cpu_limit"`
	MemoryLimit    int64           `yaml:"memory_limit"`
	Options        foldx.Options   `yaml:"options"`
}

type Results struct {
	Dir string `yaml:"dir"`
}

type Log struct {
	Level string `yaml:"level"`
}

const (
	RuntimeExec   = "exec"
	RuntimeDocker = "docker"
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{FoldX: FoldX{Options: foldx.DefaultOptions}}
	if err := validate(cfg); err != nil {
		panic(err)
	}
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg := &Config{FoldX: FoldX{Options: foldx.DefaultOptions}}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path, falling back to Default when the file does not
// exist and was not asked for explicitly.
func LoadOrDefault(path string, explicit bool) (*Config, error) {
	cfg, err := Load(path)
	if err != nil && !explicit && errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func validate(cfg *Config) error {
	f := &cfg.FoldX
	if f.Runtime == "" {
		f.Runtime = RuntimeExec
	}
	switch f.Runtime {
	case RuntimeExec:
		if f.Binary == "" {
			f.Binary = "./foldx"
		}
	case RuntimeDocker:
		if f.Image == "" {
			return fmt.Errorf("foldx.image is required for the docker runtime")
		}
		if f.Binary == "" {
			f.Binary = "foldx"
		}
	default:
		return fmt.Errorf("foldx.runtime must be %q or %q, got %q", RuntimeExec, RuntimeDocker, f.Runtime)
	}
	if f.Packaging == "" {
		f.Packaging = foldx.PackagingCLI
	}
	if f.Packaging != foldx.PackagingCLI && f.Packaging != foldx.PackagingConfig {
		return fmt.Errorf("foldx.packaging must be %q or %q, got %q", foldx.PackagingCLI, foldx.PackagingConfig, f.Packaging)
	}
	if f.TimeoutMinutes < 0 {
		return fmt.Errorf("foldx.timeout_minutes must not be negative")
	}
	if f.TimeoutMinutes == 0 {
		f.TimeoutMinutes = 30
	}
	f.ReportExt = strings.TrimPrefix(f.ReportExt, ".")
	if f.ReportExt == "" {
		f.ReportExt = registry.DefaultReportExt
	}
	if f.Options.Temperature <= 0 {
		return fmt.Errorf("foldx.options.temperature must be positive")
	}
	if f.Options.PH < 0 || f.Options.PH > 14 {
		return fmt.Errorf("foldx.options.ph must be within 0-14")
	}
	if cfg.Parallel == 0 {
		cfg.Parallel = 1
	}
	if cfg.Parallel < 1 {
		return fmt.Errorf("parallel must be at least 1")
	}
	if cfg.Results.Dir == "" {
		cfg.Results.Dir = "results"
	}
	if _, err := ParseLogLevel(cfg.Log.Level); err != nil {
		return err
	}
	return nil
}

// Timeout is the per-invocation limit.
func (f *FoldX) Timeout() time.Duration {
	return time.Duration(f.TimeoutMinutes) * time.Minute
}

// ResolvedAuxFiles lists the host files FoldX needs in its working
// directory. Without explicit aux_files the local runtime expects
// rotabase.txt next to the binary.
func (f *FoldX) ResolvedAuxFiles() []string {
	if len(f.AuxFiles) > 0 || f.Runtime != RuntimeExec {
		return f.AuxFiles
	}
	return []string{filepath.Join(filepath.Dir(f.Binary), "rotabase.txt")}
}

// Tool builds the FoldX runner for the configured runtime.
func (f *FoldX) Tool() foldx.Tool {
	if f.Runtime == RuntimeDocker {
		return &foldx.DockerTool{
			Image:       f.Image,
			Binary:      f.Binary,
			Packaging:   f.Packaging,
			Options:     f.Options,
			Timeout:     f.Timeout(),
			CPULimit:    f.CPULimit,
			MemoryLimit: f.MemoryLimit,
			UserID:      foldx.HostUser(),
		}
	}
	binary := f.Binary
	if abs, err := filepath.Abs(binary); err == nil && strings.ContainsRune(binary, filepath.Separator) {
		binary = abs
	}
	return &foldx.ExecTool{
		Binary:    binary,
		Packaging: f.Packaging,
		Options:   f.Options,
		Timeout:   f.Timeout(),
	}
}

// ParseLogLevel maps a level name to a slog level. Empty means info.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(s) {
	case "", "INFO":
		return slog.LevelInfo, nil
	case "DEBUG":
		return slog.LevelDebug, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
