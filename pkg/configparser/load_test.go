package configparser

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
database:
  host: db.local
  port: 5432
companion:
  tick_interval: 2s
notification:
  api_key: "${NIVA_TEST_KEY:-fallback}"
  channels: [sms, email]
empty:
`

func TestFlatten(t *testing.T) {
	vars, err := Flatten([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "db.local", vars["DATABASE_HOST"])
	assert.Equal(t, "5432", vars["DATABASE_PORT"])
	assert.Equal(t, "2s", vars["COMPANION_TICK_INTERVAL"])
	assert.Equal(t, "fallback", vars["NOTIFICATION_API_KEY"])
	assert.Equal(t, "sms,email", vars["NOTIFICATION_CHANNELS"])
	assert.NotContains(t, vars, "EMPTY")
}

func TestFlatten_Substitution(t *testing.T) {
	t.Setenv("NIVA_TEST_KEY", "from-env")

	vars, err := Flatten([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, "from-env", vars["NOTIFICATION_API_KEY"])
}

func TestFlatten_Invalid(t *testing.T) {
	_, err := Flatten([]byte("a: [b"))
	assert.Error(t, err)
}

type testConfig struct {
	Host string        `env:"DATABASE_HOST" envDefault:"localhost"`
	Port int           `env:"DATABASE_PORT"`
	Tick time.Duration `env:"COMPANION_TICK_INTERVAL" envDefault:"1s"`
	Name string        `env:"SERVICE_NAME" envDefault:"niva"`
}

func TestLoadAndParseYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	// an explicitly exported variable is not overridden by the file
	t.Setenv("DATABASE_HOST", "override")
	t.Setenv("DATABASE_PORT", "")
	t.Setenv("COMPANION_TICK_INTERVAL", "")
	os.Unsetenv("DATABASE_PORT")
	os.Unsetenv("COMPANION_TICK_INTERVAL")

	var cfg testConfig
	require.NoError(t, LoadAndParseYaml(path, &cfg))

	assert.Equal(t, "override", cfg.Host)
	assert.Equal(t, 5432, cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.Tick)
	assert.Equal(t, "niva", cfg.Name)
}

func TestLoadYamlFile_NoPath(t *testing.T) {
	assert.ErrorIs(t, LoadYamlFile(""), ErrNoFilePath)
}
