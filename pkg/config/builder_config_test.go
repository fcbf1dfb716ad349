package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "builder.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadBuilderConfig(t *testing.T) {
	path := writeConfig(t, `
grid_size: 10
history_limit: 25
media_service_url: http://media.internal
user_directory_url: http://users.internal
`)

	config, err := LoadBuilderConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 10, config.GridSize)
	assert.Equal(t, 25, config.HistoryLimit)
	assert.Equal(t, "http://media.internal", config.MediaServiceURL)
	assert.Equal(t, "http://users.internal", config.UserDirectoryURL)
}

func TestLoadBuilderConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "grid_size: 8\n")

	config, err := LoadBuilderConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8, config.GridSize)
	assert.Equal(t, defaultHistoryLimit, config.HistoryLimit)
}

func TestLoadBuilderConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "negative grid", content: "grid_size: -1\n"},
		{name: "zero history", content: "history_limit: 0\n"},
		{name: "bad yaml", content: "grid_size: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)

			_, err := LoadBuilderConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadBuilderConfigOrDefault_MissingFile(t *testing.T) {
	config := LoadBuilderConfigOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Equal(t, DefaultBuilderConfig(), config)
}
