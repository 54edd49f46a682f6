package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	config, err := Load("config.yaml")
	require.NoError(t, err)
	assert.Equal(t, Default(), config)
	assert.Equal(t, "student_performance_model.json", config.Artifact.Path)
}

func TestLoadYAMLAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "config.yaml")
	payload := `
http:
  port: 9000
  timeout: 5s
artifact:
  path: models/bundle.json
  watch: true
history:
  enabled: true
  path: history.db
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))
	t.Setenv("STUDENTPERF_HTTP_PORT", "9100")
	t.Setenv("STUDENTPERF_CACHE_SIZE", "0")

	config, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, config.Http.Port)
	assert.Equal(t, 5*time.Second, config.Http.Timeout)
	assert.Equal(t, "models/bundle.json", config.Artifact.Path)
	assert.True(t, config.Artifact.Watch)
	assert.Equal(t, 0, config.Cache.Size)
	assert.True(t, config.History.Enabled)
	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, int64(1<<16), config.Http.MaxBodyBytes, "unset keys keep defaults")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STUDENTPERF_ARTIFACT_PATH=from-dotenv.json\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("STUDENTPERF_ARTIFACT_PATH") })

	config, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.json", config.Artifact.Path)
}

func TestValidate(t *testing.T) {
	config := Default()
	config.Http.Port = 0
	assert.Error(t, config.Validate())

	config = Default()
	config.History.Enabled = true
	config.History.Path = ""
	assert.Error(t, config.Validate())

	config = Default()
	config.Artifact.Path = ""
	assert.Error(t, config.Validate())
}
