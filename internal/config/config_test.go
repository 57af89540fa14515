package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yegors/spotten/internal/spot"
)

const minimalConfig = `
[server]
port = 8080

[[dropzones]]
id = "home"
latitude = 59.3
longitude = 18.0
fixed_landing_directions = [90, 270]
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func loadValid(t *testing.T, content string) *Config {
	t.Helper()
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return cfg
}

func TestLoadFillsDefaults(t *testing.T) {
	cfg := loadValid(t, minimalConfig)

	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Errorf("logging defaults not applied: %+v", cfg.Logging)
	}
	if cfg.Storage.Type != "sqlite" || cfg.Storage.SQLitePath == "" {
		t.Errorf("storage defaults not applied: %+v", cfg.Storage)
	}
	if cfg.Preview.SendBufferSize != 256 || cfg.Preview.MaxMessageBytes != 4096 {
		t.Errorf("preview defaults not applied: %+v", cfg.Preview)
	}
	if got, want := cfg.Calculator.SpotConfig(), spot.DefaultConfig(); got != want {
		t.Errorf("calculator defaults = %+v, want %+v", got, want)
	}

	dz := cfg.Dropzones[0]
	if dz.Name != "home" {
		t.Errorf("dropzone name should default to its id, got %q", dz.Name)
	}
	if len(dz.FixedLandingDirections) != 2 || dz.FixedLandingDirections[1] != 270 {
		t.Errorf("landing directions = %v", dz.FixedLandingDirections)
	}
}

func TestCalculatorOverrides(t *testing.T) {
	cfg := loadValid(t, minimalConfig+`
[calculator]
exit_altitude = 3000
jump_run_tas = 40
`)

	got := spot.BuildConfig(cfg.Calculator.Overrides())
	if got.ExitAltitude != 3000 || got.JumpRunTAS != 40 {
		t.Errorf("overrides not applied: %+v", got)
	}
	if got.DeplAltitude != spot.DefaultConfig().DeplAltitude {
		t.Errorf("unset value changed: %f", got.DeplAltitude)
	}
}

func TestCalculatorExplicitZeroIsKept(t *testing.T) {
	cfg := loadValid(t, minimalConfig+`
[calculator]
final_altitude = 0
green_light_time = 0
min_time_between_groups = 0
`)

	got := cfg.Calculator.SpotConfig()
	if got.FinalAltitude != 0 || got.GreenLightTime != 0 || got.MinTimeBetweenGroups != 0 {
		t.Errorf("explicit zeros replaced by defaults: %+v", got)
	}
	if got.DeplAltitude != spot.DefaultConfig().DeplAltitude {
		t.Errorf("unset value changed: %f", got.DeplAltitude)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing port",
			content: "[[dropzones]]\nid = \"a\"\n",
			wantErr: "invalid server port",
		},
		{
			name:    "duplicate additional port",
			content: "[server]\nport = 8080\nadditional_ports = [8080]\n[[dropzones]]\nid = \"a\"\n",
			wantErr: "duplicate port",
		},
		{
			name:    "no dropzones",
			content: "[server]\nport = 8080\n",
			wantErr: "at least one dropzone",
		},
		{
			name:    "duplicate dropzone",
			content: "[server]\nport = 8080\n[[dropzones]]\nid = \"a\"\n[[dropzones]]\nid = \"a\"\n",
			wantErr: "duplicate dropzone id",
		},
		{
			name:    "bad latitude",
			content: "[server]\nport = 8080\n[[dropzones]]\nid = \"a\"\nlatitude = 91.0\n",
			wantErr: "invalid latitude",
		},
		{
			name:    "bad landing direction",
			content: "[server]\nport = 8080\n[[dropzones]]\nid = \"a\"\nfixed_landing_directions = [400]\n",
			wantErr: "invalid landing direction",
		},
		{
			name:    "deployment above exit",
			content: minimalConfig + "[calculator]\nexit_altitude = 600\n",
			wantErr: "must be below exit_altitude",
		},
		{
			name:    "exit above the troposphere",
			content: minimalConfig + "[calculator]\nexit_altitude = 50000\n",
			wantErr: "exit_altitude",
		},
		{
			name:    "zero sink rate",
			content: minimalConfig + "[calculator]\nvertical_canopy_speed = 0\n",
			wantErr: "vertical_canopy_speed must be positive",
		},
		{
			name:    "bad log format",
			content: minimalConfig + "[logging]\nformat = \"xml\"\n",
			wantErr: "invalid logging format",
		},
		{
			name:    "rate limit without rate",
			content: minimalConfig + "[rate_limit]\nenabled = true\n",
			wantErr: "requests_per_second",
		},
		{
			name:    "missing static dir",
			content: "[server]\nport = 8080\nstatic_files_dir = \"/does/not/exist\"\n[[dropzones]]\nid = \"a\"\n",
			wantErr: "static files directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			err = cfg.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestLoadWithFallbackPrefersGivenPath(t *testing.T) {
	path := writeConfig(t, minimalConfig)
	cfg, err := LoadWithFallback(path)
	if err != nil {
		t.Fatalf("LoadWithFallback: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
}

func TestSampleConfigIsValid(t *testing.T) {
	cfg, err := Load("../../configs/config.toml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(cfg.Dropzones) < 2 {
		t.Errorf("expected the sample dropzones, got %d", len(cfg.Dropzones))
	}
}
