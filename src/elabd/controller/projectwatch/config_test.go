package projectwatch

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/config"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    Config
		wantErr string
	}{
		{
			name: "defaults",
			yaml: "service:\n  name: elabd\n",
			want: DefaultConfig(),
		},
		{
			name: "overrides",
			yaml: "projectFiles: [lakefile.toml]\nprojectWatch:\n  debounce: 1s\n",
			want: Config{ProjectFiles: []string{"lakefile.toml"}, Debounce: time.Second},
		},
		{
			name:    "nested path",
			yaml:    "projectFiles: [sub/leanpkg.toml]\n",
			wantErr: "must be a file name",
		},
		{
			name:    "negative debounce",
			yaml:    "projectWatch:\n  debounce: -1s\n",
			wantErr: "must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := config.NewYAML(config.Source(strings.NewReader(tt.yaml)))
			require.NoError(t, err)

			cfg, err := LoadConfig(provider)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg)
		})
	}
}
