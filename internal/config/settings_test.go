package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeSettings(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault_Valid(t *testing.T) {
	s := Default()
	if err := s.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	g := s.Grid
	if g.Rows != 128 || g.Cols != 128 || g.SpatialStep != 1 || g.TimeStep != 0.03 || g.Speed != 4 || g.Damping != 0.2 {
		t.Errorf("Default().Grid = %+v", g)
	}
	if got := s.Rain.Interval(); got != 250*time.Millisecond {
		t.Errorf("Rain.Interval() = %v, want 250ms", got)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s != Default() {
		t.Errorf("Load() = %+v, want defaults", s)
	}

	s, err = Load("")
	if err != nil || s != Default() {
		t.Errorf("Load(\"\") = %+v, %v, want defaults", s, err)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeSettings(t, `{
		"grid": {"rows": 64, "cols": 32},
		"rain": {"enabled": false},
		"server": {"addr": "127.0.0.1:9000"}
	}`)
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Grid.Rows != 64 || s.Grid.Cols != 32 {
		t.Errorf("grid = %dx%d, want 64x32", s.Grid.Rows, s.Grid.Cols)
	}
	if s.Grid.TimeStep != 0.03 {
		t.Errorf("timeStep = %v, want default 0.03", s.Grid.TimeStep)
	}
	if s.Rain.Enabled {
		t.Error("rain still enabled")
	}
	if s.Server.Addr != "127.0.0.1:9000" || s.Server.UpdateIntervalMs != 33 {
		t.Errorf("server = %+v", s.Server)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		invalid bool
	}{
		{"syntax", `{"grid": `, false},
		{"unknown field", `{"grid": {"rowz": 4}}`, false},
		{"small grid", `{"grid": {"rows": 2}}`, true},
		{"zero timestep", `{"grid": {"timeStep": 0}}`, true},
		{"negative damping", `{"grid": {"damping": -1}}`, true},
		{"inverted magnitudes", `{"rain": {"minMagnitude": 1, "maxMagnitude": 0.5}}`, true},
		{"zero interval", `{"rain": {"intervalMs": 0}}`, true},
		{"zero scale", `{"viewer": {"scale": 0}}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeSettings(t, tt.body))
			if err == nil {
				t.Fatal("Load() error = nil")
			}
			if got := errors.Is(err, ErrInvalid); got != tt.invalid {
				t.Errorf("errors.Is(%v, ErrInvalid) = %v, want %v", err, got, tt.invalid)
			}
		})
	}
}

func TestValidate_DisabledRainSkipsRainChecks(t *testing.T) {
	s := Default()
	s.Rain = RainSettings{Enabled: false, IntervalMs: -1}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}
