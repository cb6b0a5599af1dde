package automation

import (
	"encoding/json"
	"os"
)

// Config хранит настройки сессии между запусками.
type Config struct {
	OldDir       string `json:"old_dir"`
	NewDir       string `json:"new_dir"`
	Format       string `json:"format"` // "auto" | "jpg" | "png"
	DryRun       bool   `json:"dry_run"`
	PreviewLimit int    `json:"preview_limit"`

	CaptureCount      int     `json:"capture_count"`
	CaptureInterval   float64 `json:"capture_interval_seconds"`
	CaptureStartDelay float64 `json:"capture_start_delay_seconds"`
	CaptureKey        string  `json:"capture_key"`
}

func DefaultConfig() Config {
	return Config{
		Format:            "auto",
		DryRun:            true,
		PreviewLimit:      20,
		CaptureCount:      10,
		CaptureInterval:   2,
		CaptureStartDelay: 3,
		CaptureKey:        "f12",
	}
}

func LoadConfig(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return DefaultConfig(), err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return DefaultConfig(), err
	}

	return config, nil
}

func (c *Config) Save(filename string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0644)
}

// Capture собирает настройки цикла автосъёмки в CaptureConfig.
func (c *Config) Capture() CaptureConfig {
	return CaptureConfig{
		Count:         c.CaptureCount,
		IntervalSec:   c.CaptureInterval,
		StartDelaySec: c.CaptureStartDelay,
		Key:           c.CaptureKey,
	}
}
