package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Feed.URL == "" {
		t.Error("Expected default feed URL to be set")
	}
	if cfg.Feed.PollInterval != 10*time.Second {
		t.Errorf("Expected default poll interval 10s, got %v", cfg.Feed.PollInterval)
	}
	if cfg.Region.CountryCode != "MM" {
		t.Errorf("Expected default country code MM, got %s", cfg.Region.CountryCode)
	}
	if cfg.Time.TargetOffset != 6*time.Hour+30*time.Minute {
		t.Errorf("Expected default target offset +06:30, got %v", cfg.Time.TargetOffset)
	}
	if cfg.Notify.WindowMax != 20 {
		t.Errorf("Expected default window max 20, got %d", cfg.Notify.WindowMax)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	os.Setenv("FEED_POLL_INTERVAL", "1m")
	os.Setenv("REGION_COUNTRY_CODE", "TH")
	os.Setenv("NOTIFY_WINDOW_MAX", "5")
	defer func() {
		os.Unsetenv("FEED_POLL_INTERVAL")
		os.Unsetenv("REGION_COUNTRY_CODE")
		os.Unsetenv("NOTIFY_WINDOW_MAX")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Feed.PollInterval != time.Minute {
		t.Errorf("Expected poll interval 1m, got %v", cfg.Feed.PollInterval)
	}
	if cfg.Region.CountryCode != "TH" {
		t.Errorf("Expected country code TH, got %s", cfg.Region.CountryCode)
	}
	if cfg.Notify.WindowMax != 5 {
		t.Errorf("Expected window max 5, got %d", cfg.Notify.WindowMax)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"invalid port", func(c *Config) { c.Server.Port = 0 }, true},
		{"missing feed URL", func(c *Config) { c.Feed.URL = "" }, true},
		{"zero poll interval", func(c *Config) { c.Feed.PollInterval = 0 }, true},
		{"no dedup backend", func(c *Config) {
			c.Dedup.FilePath = ""
			c.Dedup.DatabaseURL = ""
			c.Dedup.RedisURL = ""
		}, true},
		{"zero window max", func(c *Config) { c.Notify.WindowMax = 0 }, true},
		{"zero window length", func(c *Config) { c.Notify.WindowLength = 0 }, true},
		{"bad country code", func(c *Config) { c.Region.CountryCode = "Myanmar" }, true},
		{"zero record attempts", func(c *Config) { c.Dedup.RecordAttempts = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}
