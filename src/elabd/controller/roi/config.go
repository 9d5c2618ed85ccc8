package roi

import (
	"errors"
	"fmt"
	"time"

	"github.com/uber/elabd/src/elabd/entity"
	"go.uber.org/config"
)

const _configKey = "roi"

// Config controls how editor signals are turned into regions of interest.
type Config struct {
	// Debounce is the window in which viewport and cursor signals for one file are coalesced.
	Debounce time.Duration `yaml:"debounce"`
	Mode     string        `yaml:"mode"`
}

// DefaultConfig returns the configuration used for keys missing from the config files.
func DefaultConfig() Config {
	return Config{
		Debounce: 100 * time.Millisecond,
		Mode:     string(entity.ROIModeVisible),
	}
}

// LoadConfig reads the ROI configuration, filling in defaults.
func LoadConfig(provider config.Provider) (Config, error) {
	cfg := DefaultConfig()
	if err := provider.Get(_configKey).Populate(&cfg); err != nil {
		return Config{}, fmt.Errorf("getting config field %q: %w", _configKey, err)
	}
	if cfg.Debounce <= 0 {
		return Config{}, errors.New("roi.debounce must be positive")
	}
	if _, err := entity.ParseROIMode(cfg.Mode); err != nil {
		return Config{}, fmt.Errorf("roi.mode: %w", err)
	}
	return cfg, nil
}
