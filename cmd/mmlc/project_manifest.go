package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"mml/internal/abi"
)

const noManifestMessage = "no mml.toml found\nplease specify the module explicitly, e.g.:\n  mmlc check path/to/module"

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Package packageConfig  `toml:"package"`
	Build   buildConfig    `toml:"build"`
	Types   []nativeStruct `toml:"types"`
}

type packageConfig struct {
	Name string `toml:"name"`
	Main string `toml:"main"`
}

type buildConfig struct {
	Target string `toml:"target"`
}

// nativeStruct declares the field layout of a foreign aggregate the
// runtime hands across the call boundary. Types used by the module
// but not declared here stay opaque during lowering.
type nativeStruct struct {
	Name   string   `toml:"name"`
	Fields []string `toml:"fields"`
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
		candidate := filepath.Join(dir, "mml.toml")
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

func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	path, ok, err := findManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	var cfg projectConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, true, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	return &projectManifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, true, nil
}

// structLayouts builds the frozen ABI layout table from the manifest's
// native type declarations.
func (p *projectManifest) structLayouts() (*abi.StructLayouts, error) {
	layouts := abi.NewStructLayouts()
	for _, decl := range p.Config.Types {
		fields := make([]abi.FieldKind, 0, len(decl.Fields))
		for _, f := range decl.Fields {
			kind, err := abi.ParseFieldKind(f)
			if err != nil {
				return nil, fmt.Errorf("%s: type %q: %w", p.Path, decl.Name, err)
			}
			fields = append(fields, kind)
		}
		layouts.Define(decl.Name, fields...)
	}
	return layouts.Freeze(), nil
}

func (p *projectManifest) target() string {
	if p == nil || p.Config.Build.Target == "" {
		return "x86_64-linux-gnu"
	}
	return p.Config.Build.Target
}

func (p *projectManifest) entryPoint() string {
	if p == nil || p.Config.Package.Main == "" {
		return "main"
	}
	return p.Config.Package.Main
}
