package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigDir(t *testing.T, files map[string]string) string {
	dir := t.TempDir()
	for name, contents := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0644))
	}
	return dir
}

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name        string
		files       map[string]string
		expectError bool
		expected    map[string]string
	}{
		{
			name: "merges files in meta order",
			files: map[string]string{
				"meta.yaml": "files:\n  - base.yaml\n  - ${ELABD_ENVIRONMENT:local}.yaml\n",
				"base.yaml": "service:\n  name: elabd\nlogging:\n  level: info\nroi:\n  mode: visible\n",
				"local.yaml": "logging:\n  level: debug\n",
			},
			expected: map[string]string{
				"service.name":  "elabd",
				"logging.level": "debug",
				"roi.mode":      "visible",
			},
		},
		{
			name: "skips missing files",
			files: map[string]string{
				"meta.yaml": "files:\n  - base.yaml\n  - missing.yaml\n",
				"base.yaml": "service:\n  name: elabd\n",
			},
			expected: map[string]string{
				"service.name": "elabd",
			},
		},
		{
			name: "expands environment variables",
			files: map[string]string{
				"meta.yaml": "files:\n  - base.yaml\n",
				"base.yaml": "jsonrpc:\n  address: ${ELABD_TEST_ADDRESS:localhost:27883}\n",
			},
			expected: map[string]string{
				"jsonrpc.address": "localhost:27883",
			},
		},
		{
			name: "no files found",
			files: map[string]string{
				"meta.yaml": "files:\n  - missing.yaml\n",
			},
			expectError: true,
		},
		{
			name:        "missing meta.yaml",
			files:       map[string]string{},
			expectError: true,
		},
		{
			name: "malformed files list",
			files: map[string]string{
				"meta.yaml": "files:\n  key: value\n",
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(_envConfigDir, writeConfigDir(t, tt.files))

			provider, err := NewConfig()
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, provider)
				return
			}

			require.NoError(t, err)
			cfg := provider.(Config)
			assert.Equal(t, "config", cfg.Name())
			for key, want := range tt.expected {
				val := cfg.Get(key)
				assert.True(t, val.HasValue(), key)
				assert.Equal(t, want, val.String(), key)
			}
		})
	}
}

func TestBundledConfig(t *testing.T) {
	// The bundled configuration must load with the same loader the daemon uses.
	t.Setenv(_envConfigDir, filepath.Join("..", "..", "config"))
	t.Setenv("HOME", "/test/home")
	t.Setenv("ELABD_ENVIRONMENT", "local")

	provider, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "elabd", provider.Get("service.name").String())
	assert.Equal(t, "/test/home/.elabd/server-info.json", provider.Get("serverInfoFilePath").String())
	assert.Equal(t, "30s", provider.Get("checker.requestTimeout").String())
	assert.Equal(t, "visible", provider.Get("roi.mode").String())
}

func TestGetConfigDir(t *testing.T) {
	tests := []struct {
		name           string
		envValue       string
		expectedResult string
	}{
		{
			name:           "returns environment variable when set",
			envValue:       "/custom/config/path",
			expectedResult: "/custom/config/path",
		},
		{
			name:           "returns default path when environment variable not set",
			envValue:       "",
			expectedResult: "src/elabd/config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(_envConfigDir, tt.envValue)
			assert.Equal(t, tt.expectedResult, getConfigDir())
		})
	}
}
