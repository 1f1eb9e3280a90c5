package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	blockrec "github.com/arran4/golang-blockrec"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blockrec.yaml")
	cfg, err := Load(path)
	require.NoError(t, err)
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "Load must not create the file")
}

func TestLoad_EmptyPath(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_Normalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blockrec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
calendar_path: bookings.ics
log_level: DEBUG
records:
  unrecognized: Reject
  lines: sometimes
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	want := &Config{
		CalendarPath: "bookings.ics",
		ProductID:    defaultProductID,
		LogLevel:     "debug",
		SearchDays:   defaultSearchDays,
		Records:      PolicyConfig{Unrecognized: "reject"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blockrec.yaml")
	require.NoError(t, os.WriteFile(path, []byte("records: [unterminated"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "blockrec.yaml")
	cfg := DefaultConfig()
	cfg.Events.Lines = "lenient"
	require.NoError(t, cfg.Save(path))

	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), st.Mode().Perm())

	back, err := Load(path)
	require.NoError(t, err)
	if diff := cmp.Diff(cfg, back); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestSave_Nil(t *testing.T) {
	assert.Error(t, Save(filepath.Join(t.TempDir(), "x.yaml"), nil))
}

func TestPolicyConfig_Ops(t *testing.T) {
	assert.Empty(t, PolicyConfig{}.Ops())
	assert.Equal(t, []any{blockrec.UnrecognizedWarn, blockrec.LinesStrict},
		PolicyConfig{Unrecognized: "warn", Lines: "strict"}.Ops())
}

func TestConfig_Level(t *testing.T) {
	for level, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"bogus": slog.LevelInfo,
	} {
		c := &Config{LogLevel: level}
		assert.Equal(t, want, c.Level(), level)
	}
}
