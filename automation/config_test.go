package automation

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.json"))
	require.Error(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestConfig_SaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := DefaultConfig()
	cfg.OldDir = "/tmp/old"
	cfg.NewDir = "/tmp/new"
	cfg.Format = "png"
	cfg.DryRun = false
	cfg.CaptureCount = 7
	cfg.CaptureInterval = 1.5

	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}

func TestConfig_Capture(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CaptureCount = 5
	cfg.CaptureInterval = 2
	cfg.CaptureStartDelay = 3
	cfg.CaptureKey = "f11"

	capture := cfg.Capture()
	require.Equal(t, CaptureConfig{Count: 5, IntervalSec: 2, StartDelaySec: 3, Key: "f11"}, capture)
	require.NoError(t, capture.Validate())
}

func TestDefaultConfig_CaptureIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Capture().Validate())
}
