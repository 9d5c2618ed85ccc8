package checker

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/config"
)

const _configKey = "checker"

// Config controls how the checker process is spawned and supervised.
type Config struct {
	Path             string        `yaml:"path"`
	Args             []string      `yaml:"args"`
	RequestTimeout   time.Duration `yaml:"requestTimeout"`
	HandshakeTimeout time.Duration `yaml:"handshakeTimeout"`
	AutoRestart      bool          `yaml:"autoRestart"`
	Restart          RestartPolicy `yaml:"restart"`
}

// RestartPolicy controls automatic recovery after the checker exits unexpectedly.
type RestartPolicy struct {
	BackoffBase time.Duration `yaml:"backoffBase"`
	BackoffCap  time.Duration `yaml:"backoffCap"`
	Multiplier  float64       `yaml:"multiplier"`
	MaxAttempts int           `yaml:"maxAttempts"`
	// ResetWindow is how long an instance must stay ready before earlier failures are forgotten.
	ResetWindow time.Duration `yaml:"resetWindow"`
}

// DefaultConfig returns the configuration used for keys missing from the config files.
func DefaultConfig() Config {
	return Config{
		Path:             "lean",
		Args:             []string{"--server"},
		RequestTimeout:   30 * time.Second,
		HandshakeTimeout: 10 * time.Second,
		AutoRestart:      true,
		Restart: RestartPolicy{
			BackoffBase: 500 * time.Millisecond,
			BackoffCap:  30 * time.Second,
			Multiplier:  2,
			MaxAttempts: 5,
			ResetWindow: 5 * time.Minute,
		},
	}
}

// LoadConfig reads the checker configuration, filling in defaults.
func LoadConfig(provider config.Provider) (Config, error) {
	cfg := DefaultConfig()
	if err := provider.Get(_configKey).Populate(&cfg); err != nil {
		return Config{}, fmt.Errorf("getting config field %q: %w", _configKey, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch {
	case c.Path == "":
		return errors.New("checker.path must be set")
	case c.RequestTimeout <= 0:
		return errors.New("checker.requestTimeout must be positive")
	case c.HandshakeTimeout <= 0:
		return errors.New("checker.handshakeTimeout must be positive")
	case c.Restart.BackoffBase <= 0 || c.Restart.BackoffCap < c.Restart.BackoffBase:
		return errors.New("checker.restart backoff must satisfy 0 < backoffBase <= backoffCap")
	case c.Restart.Multiplier < 1:
		return errors.New("checker.restart.multiplier must be at least 1")
	case c.Restart.MaxAttempts < 0:
		return errors.New("checker.restart.maxAttempts must not be negative")
	}
	return nil
}

// Backoff returns the delay before the given restart attempt, counting from 1.
func (p RestartPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := float64(p.BackoffBase) * math.Pow(p.Multiplier, float64(attempt-1))
	if delay > float64(p.BackoffCap) || math.IsInf(delay, 0) {
		return p.BackoffCap
	}
	return time.Duration(delay)
}
