package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"wavesim/internal/app"
	"wavesim/internal/config"
)

func quietLogger() *slog.Logger {
	return newLogger(io.Discard, slog.LevelError)
}

func TestApplyFlags(t *testing.T) {
	defer func(r, c, w int, seed int64) {
		*rowsFlag, *colsFlag, *workersFlag, *seedFlag = r, c, w, seed
	}(*rowsFlag, *colsFlag, *workersFlag, *seedFlag)

	*rowsFlag, *colsFlag, *workersFlag, *seedFlag = 32, 48, 3, 7
	s, err := applyFlags(config.Default(), map[string]bool{"rows": true, "cols": true, "seed": true})
	if err != nil {
		t.Fatalf("applyFlags() error = %v", err)
	}
	if s.Grid.Rows != 32 || s.Grid.Cols != 48 {
		t.Errorf("grid = %dx%d, want 32x48", s.Grid.Rows, s.Grid.Cols)
	}
	if s.Rain.Seed != 7 {
		t.Errorf("Rain.Seed = %d, want 7", s.Rain.Seed)
	}
	if s.Solver.Workers != config.Default().Solver.Workers {
		t.Errorf("Solver.Workers = %d, unset flag must not override", s.Solver.Workers)
	}
}

func TestApplyFlags_Invalid(t *testing.T) {
	defer func(r int) { *rowsFlag = r }(*rowsFlag)
	*rowsFlag = 2
	if _, err := applyFlags(config.Default(), map[string]bool{"rows": true}); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("applyFlags() error = %v, want config.ErrInvalid", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"WARN", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", 0, true},
	}
	for _, tt := range tests {
		got, err := parseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, slog.LevelWarn)
	log.Info("hidden")
	log.Warn("shown")
	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("log output = %q", out)
	}
}

func newTestApp(t *testing.T, rain bool) *app.App {
	t.Helper()
	s := config.Default()
	s.Grid.Rows, s.Grid.Cols = 24, 24
	s.Rain.Enabled = rain
	s.Rain.Seed = 1
	s.Solver.Workers = 2
	s.Server.Addr = "127.0.0.1:0"
	a, err := app.New(s, app.WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func TestRunHeadless(t *testing.T) {
	a := newTestApp(t, true)
	st, err := runHeadless(context.Background(), a, 50)
	if err != nil {
		t.Fatalf("runHeadless() error = %v", err)
	}
	if st.Steps != 50 {
		t.Errorf("Steps = %d, want 50", st.Steps)
	}
	if st.Drops == 0 {
		t.Error("Drops = 0, want rain during 1.5s of simulated time")
	}
}

func TestRunHeadless_StopsOnCancel(t *testing.T) {
	a := newTestApp(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	st, err := runHeadless(ctx, a, 50)
	if err != nil {
		t.Fatalf("runHeadless() error = %v", err)
	}
	if st.Steps != 0 {
		t.Errorf("Steps = %d after cancel, want 0", st.Steps)
	}
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	a := newTestApp(t, false)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- serve(ctx, a, a.Settings().Server, quietLogger()) }()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve() error = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("serve() did not return after the context ended")
	}
}

func TestStartCPUProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cpu.pprof")
	stop, err := startCPUProfile(path)
	if err != nil {
		t.Fatalf("startCPUProfile() error = %v", err)
	}
	stop()
	stop()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Size() == 0 {
		t.Error("profile file is empty")
	}
}

func TestExportOBJ(t *testing.T) {
	a := newTestApp(t, false)
	if err := a.DropCentre(1); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "surface.obj")
	if err := exportOBJ(path, a.Grid()); err != nil {
		t.Fatalf("exportOBJ() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(data), "\nf "); got != a.Grid().TriangleCount() {
		t.Errorf("faces = %d, want %d", got, a.Grid().TriangleCount())
	}
}
