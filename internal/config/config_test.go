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
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "./data/printd.db", cfg.Database.Path)
	assert.Equal(t, 500*time.Millisecond, cfg.Queue.CopyDelay)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "printd.yaml")
	body := `
server:
  port: 9090
database:
  path: /tmp/test-printd.db
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/tmp/test-printd.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched sections keep their defaults.
	assert.Equal(t, 500*time.Millisecond, cfg.Queue.CopyDelay)
	assert.Equal(t, time.Second, cfg.Queue.JobDelay)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := defaults()
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = defaults()
	cfg.Logging.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg = defaults()
	cfg.Database.Path = ""
	assert.Error(t, cfg.Validate())
}
