package broadcast

import (
	"errors"
	"fmt"

	"go.uber.org/config"
)

const _configKey = "broadcast"

// Config controls subscriber delivery.
type Config struct {
	// PendingWarn is the queue depth at which a slow subscriber is logged. Zero disables the warning.
	PendingWarn int `yaml:"pendingWarn"`
}

// DefaultConfig returns the configuration used for keys missing from the config files.
func DefaultConfig() Config {
	return Config{PendingWarn: 256}
}

// LoadConfig reads the broadcast configuration, filling in defaults.
func LoadConfig(provider config.Provider) (Config, error) {
	cfg := DefaultConfig()
	if err := provider.Get(_configKey).Populate(&cfg); err != nil {
		return Config{}, fmt.Errorf("getting config field %q: %w", _configKey, err)
	}
	if cfg.PendingWarn < 0 {
		return Config{}, errors.New("broadcast.pendingWarn must not be negative")
	}
	return cfg, nil
}
