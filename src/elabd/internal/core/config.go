package core

import (
	"fmt"
	"os"
	"path/filepath"

	uber_config "go.uber.org/config"
	"go.uber.org/fx"
)

const (
	_envConfigDir     = "ELABD_CONFIG_DIR"
	_defaultConfigDir = "src/elabd/config"
	_metaFile         = "meta.yaml"
)

// ConfigModule provides the merged daemon configuration.
var ConfigModule = fx.Options(
	fx.Provide(NewConfig),
)

// Config is the merged YAML configuration of the daemon.
type Config struct {
	provider uber_config.Provider
}

func (c Config) Get(path string) uber_config.Value {
	return c.provider.Get(path)
}

func (c Config) Name() string {
	return "config"
}

// NewConfig merges the files listed in meta.yaml, later files overriding earlier ones.
// Listed files that do not exist are skipped. ${VAR:default} references are expanded from the environment.
func NewConfig() (uber_config.Provider, error) {
	dir := getConfigDir()
	files, err := listedFiles(dir)
	if err != nil {
		return nil, err
	}

	options := make([]uber_config.YAMLOption, 0, len(files)+1)
	for _, f := range files {
		options = append(options, uber_config.File(f))
	}
	options = append(options, uber_config.Expand(os.LookupEnv))

	provider, err := uber_config.NewYAML(options...)
	if err != nil {
		return nil, fmt.Errorf("loading configuration from %s: %w", dir, err)
	}
	return Config{provider: provider}, nil
}

func listedFiles(dir string) ([]string, error) {
	meta, err := uber_config.NewYAML(
		uber_config.File(filepath.Join(dir, _metaFile)),
		uber_config.Expand(os.LookupEnv),
	)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", _metaFile, err)
	}

	var names []string
	if err := meta.Get("files").Populate(&names); err != nil {
		return nil, fmt.Errorf("reading files list from %s: %w", _metaFile, err)
	}

	var files []string
	for _, name := range names {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			files = append(files, path)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no configuration files found in %s", dir)
	}
	return files, nil
}

func getConfigDir() string {
	if dir := os.Getenv(_envConfigDir); dir != "" {
		return dir
	}
	// Relative to the workspace root the binary is run from.
	return _defaultConfigDir
}
