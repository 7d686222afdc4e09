package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seqrun.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadScript(t *testing.T) {
	r := require.New(t)
	path := writeConfig(t, `
log:
  level: debug
  format: json
frame_interval: 16ms
timeout: 2s
script:
  - type: delay
    duration: 300ms
  - type: Parallel
    durations: [10ms, 20ms]
  - type: frame
  - type: log
    message: hello
`)

	cfg, err := Load(path)
	r.NoError(err)
	r.Equal("debug", cfg.Log.Level)
	r.Equal("json", cfg.Log.Format)
	r.Equal([]string{"stderr"}, cfg.Log.Outputs)
	r.Equal(16*time.Millisecond, cfg.FrameInterval)
	r.Equal(2*time.Second, cfg.Timeout)
	r.Equal([]StepConfig{
		{Type: StepDelay, Duration: 300 * time.Millisecond},
		{Type: StepParallel, Durations: []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}},
		{Type: StepFrame},
		{Type: StepLog, Message: "hello"},
	}, cfg.Script)
}

func TestLoadEnvOverride(t *testing.T) {
	r := require.New(t)
	path := writeConfig(t, "log:\n  level: info\n")
	t.Setenv("SEQRUN_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	r.NoError(err)
	r.Equal("warn", cfg.Log.Level)
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	r := require.New(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SEQRUN_CONFIG", "")

	cfg, err := Load("")
	r.NoError(err)
	r.Equal(Default().Log, cfg.Log)
	r.Empty(cfg.Script)
}

func TestLoadRejectsInvalid(t *testing.T) {
	for name, body := range map[string]string{
		"level":          "log:\n  level: loud\n",
		"step type":      "script:\n  - type: teleport\n",
		"empty parallel": "script:\n  - type: parallel\n",
		"frame interval": "script:\n  - type: frame\n",
		"negative delay": "script:\n  - type: delay\n    duration: -1s\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			require.Error(t, err)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
