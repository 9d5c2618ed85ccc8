// Package projectfile reads checker project manifests (leanpkg.toml or elabd.yaml).
package projectfile

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/uber/elabd/src/elabd/internal/fs"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Manifest describes a checker project.
type Manifest struct {
	// File is the path the manifest was read from.
	File    string
	Package Package
	// Dependencies are keyed by package name.
	Dependencies map[string]Dependency
}

// Package is the [package] section of a manifest.
type Package struct {
	Name           string `toml:"name" yaml:"name"`
	Version        string `toml:"version" yaml:"version"`
	CheckerVersion string `toml:"lean_version" yaml:"lean_version"`
	// SourceDir is the directory holding the sources, relative to the manifest.
	SourceDir string `toml:"path" yaml:"path"`
}

// Dependency is fetched from git at a revision or found at a local path.
type Dependency struct {
	Git  string `toml:"git" yaml:"git"`
	Rev  string `toml:"rev" yaml:"rev"`
	Path string `toml:"path" yaml:"path"`
}

type rawManifest struct {
	Package      Package               `toml:"package" yaml:"package"`
	Dependencies map[string]Dependency `toml:"dependencies" yaml:"dependencies"`
}

// Load reads and validates the manifest at path.
func Load(fsys fs.ElabdFS, path string) (Manifest, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("reading project file %q: %w", path, err)
	}
	return Parse(path, bytes.NewReader(data))
}

// Parse decodes a manifest, choosing the format from the file extension, and validates it.
// On validation failure the decoded manifest is returned along with every problem found.
func Parse(path string, r io.Reader) (Manifest, error) {
	var raw rawManifest
	switch ext := filepath.Ext(path); ext {
	case ".toml":
		if _, err := toml.NewDecoder(r).Decode(&raw); err != nil {
			return Manifest{}, fmt.Errorf("parsing %q: %w", path, err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&raw); err != nil && err != io.EOF {
			return Manifest{}, fmt.Errorf("parsing %q: %w", path, err)
		}
	default:
		return Manifest{}, fmt.Errorf("unsupported project file %q", path)
	}

	m := Manifest{
		File:         path,
		Package:      raw.Package,
		Dependencies: raw.Dependencies,
	}
	if m.Dependencies == nil {
		m.Dependencies = make(map[string]Dependency)
	}
	return m, m.Validate()
}

// Validate reports every problem in the manifest.
func (m Manifest) Validate() (err error) {
	if m.Package.Name == "" {
		err = multierr.Append(err, fmt.Errorf("%s: package.name is required", m.File))
	}
	if filepath.IsAbs(m.Package.SourceDir) {
		err = multierr.Append(err, fmt.Errorf("%s: package.path %q must be relative", m.File, m.Package.SourceDir))
	}
	for _, name := range m.DependencyNames() {
		dep := m.Dependencies[name]
		switch {
		case dep.Git == "" && dep.Path == "":
			err = multierr.Append(err, fmt.Errorf("%s: dependency %q needs git or path", m.File, name))
		case dep.Git != "" && dep.Path != "":
			err = multierr.Append(err, fmt.Errorf("%s: dependency %q has both git and path", m.File, name))
		case dep.Git != "" && dep.Rev == "":
			err = multierr.Append(err, fmt.Errorf("%s: git dependency %q needs a rev", m.File, name))
		}
	}
	return err
}

// DependencyNames returns the dependency names in sorted order.
func (m Manifest) DependencyNames() []string {
	names := make([]string, 0, len(m.Dependencies))
	for name := range m.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
