package docsync

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/config"
)

const (
	_syncConfigKey      = "sync"
	_documentsConfigKey = "documents"
)

// Config controls which documents activate the checker and how long it outlives them.
type Config struct {
	// GracePeriod is how long the checker keeps running after the last relevant document closes.
	GracePeriod time.Duration
	Languages   []string
	Extensions  []string
}

type syncConfig struct {
	GracePeriod time.Duration `yaml:"gracePeriod"`
}

type documentsConfig struct {
	Languages  []string `yaml:"languages"`
	Extensions []string `yaml:"extensions"`
}

// DefaultConfig returns the configuration used for keys missing from the config files.
func DefaultConfig() Config {
	return Config{
		GracePeriod: 10 * time.Second,
		Languages:   []string{"lean"},
		Extensions:  []string{".lean"},
	}
}

// LoadConfig reads the sync and documents configuration, filling in defaults.
func LoadConfig(provider config.Provider) (Config, error) {
	defaults := DefaultConfig()

	sc := syncConfig{GracePeriod: defaults.GracePeriod}
	if err := provider.Get(_syncConfigKey).Populate(&sc); err != nil {
		return Config{}, fmt.Errorf("getting config field %q: %w", _syncConfigKey, err)
	}
	dc := documentsConfig{Languages: defaults.Languages, Extensions: defaults.Extensions}
	if err := provider.Get(_documentsConfigKey).Populate(&dc); err != nil {
		return Config{}, fmt.Errorf("getting config field %q: %w", _documentsConfigKey, err)
	}

	if sc.GracePeriod < 0 {
		return Config{}, errors.New("sync.gracePeriod must not be negative")
	}
	if len(dc.Languages) == 0 && len(dc.Extensions) == 0 {
		return Config{}, errors.New("documents: at least one language or extension is required")
	}
	for i, ext := range dc.Extensions {
		if !strings.HasPrefix(ext, ".") {
			dc.Extensions[i] = "." + ext
		}
	}

	return Config{
		GracePeriod: sc.GracePeriod,
		Languages:   dc.Languages,
		Extensions:  dc.Extensions,
	}, nil
}
