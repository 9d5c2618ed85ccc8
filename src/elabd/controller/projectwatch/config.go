package projectwatch

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/config"
)

const (
	_projectFilesKey = "projectFiles"
	_debounceKey     = "projectWatch"
)

// Config names the manifests whose changes restart the checker.
type Config struct {
	// ProjectFiles are base names looked up in the workspace root.
	ProjectFiles []string
	// Debounce coalesces the bursts of events produced by a single save.
	Debounce time.Duration
}

type debounceConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// DefaultConfig returns the configuration used for keys missing from the config files.
func DefaultConfig() Config {
	return Config{
		ProjectFiles: []string{"leanpkg.toml", "elabd.yaml"},
		Debounce:     250 * time.Millisecond,
	}
}

// LoadConfig reads the project file configuration, filling in defaults.
func LoadConfig(provider config.Provider) (Config, error) {
	defaults := DefaultConfig()

	files := defaults.ProjectFiles
	if err := provider.Get(_projectFilesKey).Populate(&files); err != nil {
		return Config{}, fmt.Errorf("getting config field %q: %w", _projectFilesKey, err)
	}
	dc := debounceConfig{Debounce: defaults.Debounce}
	if err := provider.Get(_debounceKey).Populate(&dc); err != nil {
		return Config{}, fmt.Errorf("getting config field %q: %w", _debounceKey, err)
	}

	if dc.Debounce < 0 {
		return Config{}, errors.New("projectWatch.debounce must not be negative")
	}
	for _, name := range files {
		if name == "" || filepath.Base(name) != name {
			return Config{}, fmt.Errorf("projectFiles: %q must be a file name", name)
		}
	}
	return Config{ProjectFiles: files, Debounce: dc.Debounce}, nil
}
