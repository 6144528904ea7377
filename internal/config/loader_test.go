package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestGenerateDefaultConfigFileRoundTrip(t *testing.T) {
	file := filepath.Join(t.TempDir(), "docpipe.yaml")
	require.NoError(t, GenerateDefaultConfigFile(file))

	data, err := os.ReadFile(file)
	require.NoError(t, err)

	var cfg Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, DefaultConfig(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestConfigYAMLKeys(t *testing.T) {
	raw := `
log_level: debug
convert:
  batch_size: 4
  max_file_size_mb: 16
pipeline:
  ocr:
    enabled: false
    languages: [deu, eng]
  table_structure: false
output:
  format: json
`
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(raw), &cfg))
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 4, cfg.Convert.BatchSize)
	assert.Equal(t, int64(16), cfg.Convert.MaxFileSizeMB)
	assert.False(t, cfg.Pipeline.OCR.Enabled)
	assert.Equal(t, []string{"deu", "eng"}, cfg.Pipeline.OCR.Languages)
	assert.False(t, cfg.Pipeline.TableStructure)
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestGetConfigSearchPaths(t *testing.T) {
	paths := GetConfigSearchPaths()
	require.NotEmpty(t, paths)
	assert.Equal(t, ".", paths[0])
	assert.Contains(t, paths, "/etc/docpipe")
}
