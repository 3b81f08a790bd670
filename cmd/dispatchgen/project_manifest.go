package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"dispatchgen/internal/diag"
	"dispatchgen/internal/dispatch"
)

const manifestName = "dispatchgen.toml"

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Generate  generateConfig    `toml:"generate"`
	Exclude   excludeConfig     `toml:"exclude"`
	Wrap      wrapConfig        `toml:"wrap"`
	Bootstrap []bootstrapConfig `toml:"bootstrap"`

	hasParamTypes bool
	hasWrap       bool
	hasBootstrap  bool
}

type generateConfig struct {
	Dir   string   `toml:"dir"`
	Files []string `toml:"files"`
	Jobs  int      `toml:"jobs"`
}

type excludeConfig struct {
	ParamTypes []string `toml:"param_types"`
	Functions  []string `toml:"functions"`
}

type wrapConfig struct {
	Functions []string `toml:"functions"`
}

type bootstrapConfig struct {
	Name   string `toml:"name"`
	Loader string `toml:"loader"`
}

func findManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, manifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadProjectManifest reads explicit when set, otherwise the nearest
// dispatchgen.toml above startDir. A missing implicit manifest is not an
// error.
func loadProjectManifest(startDir, explicit string) (*projectManifest, bool, error) {
	path := explicit
	if path == "" {
		found, ok, err := findManifest(startDir)
		if err != nil || !ok {
			return nil, false, err
		}
		path = found
	}
	cfg, err := loadProjectConfig(path)
	if err != nil {
		return nil, true, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return &projectManifest{Path: abs, Root: filepath.Dir(abs), Config: cfg}, true, nil
}

func loadProjectConfig(path string) (projectConfig, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		var perr toml.ParseError
		if errors.As(err, &perr) {
			return projectConfig{}, diag.Errorf(diag.CfgParse, path, "%s", perr.ErrorWithPosition())
		}
		return projectConfig{}, diag.Wrap(diag.CfgParse, path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return projectConfig{}, diag.Errorf(diag.CfgBadValue, path, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if cfg.Generate.Jobs < 0 {
		return projectConfig{}, diag.Errorf(diag.CfgBadValue, path, "[generate].jobs must be >= 0, got %d", cfg.Generate.Jobs)
	}
	for i, b := range cfg.Bootstrap {
		if strings.TrimSpace(b.Name) == "" {
			return projectConfig{}, diag.Errorf(diag.CfgBadValue, path, "[[bootstrap]] #%d has no name", i+1)
		}
		if !strings.Contains(b.Loader, dispatch.NamePlaceholder) {
			return projectConfig{}, diag.Errorf(diag.CfgBadValue, path, "[[bootstrap]] %s: loader %q lacks %s", b.Name, b.Loader, dispatch.NamePlaceholder)
		}
	}
	cfg.hasParamTypes = meta.IsDefined("exclude", "param_types")
	cfg.hasWrap = meta.IsDefined("wrap", "functions")
	cfg.hasBootstrap = meta.IsDefined("bootstrap")
	return cfg, nil
}

// options overlays the manifest onto the stock generator options.
func (c projectConfig) options() dispatch.Options {
	opts := dispatch.DefaultOptions()
	paramTypes := dispatch.DefaultParamTypeExclusions
	if c.hasParamTypes {
		paramTypes = c.Exclude.ParamTypes
	}
	opts.Exclude = dispatch.AnyOf(
		dispatch.ExcludeParamTypes(paramTypes...),
		dispatch.ExcludeNames(c.Exclude.Functions...),
	)
	if c.hasWrap {
		opts.Wrapped = append([]string(nil), c.Wrap.Functions...)
	}
	if c.hasBootstrap {
		opts.Bootstrap = opts.Bootstrap[:0]
		for _, b := range c.Bootstrap {
			opts.Bootstrap = append(opts.Bootstrap, dispatch.Bootstrap{
				Name:   strings.TrimSpace(b.Name),
				Loader: dispatch.Loader(b.Loader),
			})
		}
	}
	return opts
}

// resolve makes a manifest-relative path absolute.
func (m *projectManifest) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Root, filepath.FromSlash(p))
}
