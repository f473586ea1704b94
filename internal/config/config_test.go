package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
remote:
  url: "https://example.com/api"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Remote.TimeoutSeconds)
	assert.Equal(t, 300, cfg.Cache.ValiditySeconds)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, 60, cfg.Booking.SlotDurationMinutes)
	assert.Equal(t, "@every 1m", cfg.Booking.ArchiveSweepSchedule)
	assert.Equal(t, "09:00", cfg.Booking.DefaultWorkStart)
	assert.Equal(t, "21:00", cfg.Booking.DefaultWorkEnd)

	assert.Equal(t, 5*time.Minute, cfg.CacheValidity())
	assert.Equal(t, 30*time.Second, cfg.RemoteTimeout())
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TEST_REMOTE_URL", "https://script.example/exec")

	path := writeConfig(t, `
remote:
  url: "${TEST_REMOTE_URL}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://script.example/exec", cfg.Remote.URL)
}

func TestLoadMissingRemoteURL(t *testing.T) {
	path := writeConfig(t, `
app:
  name: test
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remote url")
}

func TestLoadInvalidWorkHours(t *testing.T) {
	path := writeConfig(t, `
remote:
  url: "https://example.com/api"
booking:
  default_work_start: "21:00"
  default_work_end: "09:00"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "work hours")
}

func TestLoadNegativeSlotDuration(t *testing.T) {
	path := writeConfig(t, `
remote:
  url: "https://example.com/api"
booking:
  slot_duration_minutes: -15
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slot duration")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
