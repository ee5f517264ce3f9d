package app

import (
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"strings"
	"testing"
	"time"

	"wavesim/internal/clock"
	"wavesim/internal/config"
	"wavesim/waves"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSettings() config.Settings {
	s := config.Default()
	s.Grid.Rows, s.Grid.Cols = 16, 16
	s.Rain.Enabled = false
	s.Solver.Workers = 1
	return s
}

func newTestApp(t *testing.T, s config.Settings, opts ...Option) (*App, *fakeClock) {
	t.Helper()
	c := &fakeClock{t: time.Unix(0, 0)}
	opts = append([]Option{WithTimer(clock.NewTimerWithSource(c.now)), WithLogger(quietLogger())}, opts...)
	a, err := New(s, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(a.Close)
	return a, c
}

func TestNew_InvalidSettings(t *testing.T) {
	s := testSettings()
	s.Grid.Rows = 2
	if _, err := New(s, WithLogger(quietLogger())); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("New() error = %v, want config.ErrInvalid", err)
	}
}

func TestNew_OpenCLFallsBackToCPU(t *testing.T) {
	s := testSettings()
	s.Solver.PreferOpenCL = true
	a, _ := newTestApp(t, s)
	if a.Grid() == nil {
		t.Fatal("Grid() = nil")
	}
	a.DropCentre(1)
	if err := a.Advance(0.03); err != nil {
		t.Errorf("Advance() error = %v", err)
	}
}

func TestFrame_AdvancesByRealTime(t *testing.T) {
	a, c := newTestApp(t, testSettings())
	if err := a.DropCentre(1); err != nil {
		t.Fatal(err)
	}

	c.t = c.t.Add(10 * time.Millisecond)
	a.Frame()
	if a.Grid().Steps() != 0 {
		t.Fatalf("stepped after 10ms")
	}
	c.t = c.t.Add(25 * time.Millisecond)
	a.Frame()
	if a.Grid().Steps() != 1 {
		t.Errorf("Steps() = %d after 35ms, want 1", a.Grid().Steps())
	}
}

func TestPause(t *testing.T) {
	a, c := newTestApp(t, testSettings())
	a.TogglePause()
	if !a.Paused() {
		t.Fatal("Paused() = false")
	}
	c.t = c.t.Add(time.Second)
	a.Frame()
	if a.Grid().Steps() != 0 {
		t.Errorf("stepped while paused")
	}
	a.TogglePause()
	c.t = c.t.Add(40 * time.Millisecond)
	a.Frame()
	if a.Grid().Steps() != 1 {
		t.Errorf("Steps() = %d after resume, want 1", a.Grid().Steps())
	}
}

func TestAdjustSpeed(t *testing.T) {
	a, _ := newTestApp(t, testSettings())
	a.AdjustSpeed(-5)
	if a.Speed() != MinSpeed {
		t.Errorf("Speed() = %d, want %d", a.Speed(), MinSpeed)
	}
	a.AdjustSpeed(100)
	if a.Speed() != MaxSpeed {
		t.Errorf("Speed() = %d, want %d", a.Speed(), MaxSpeed)
	}

	a.AdjustSpeed(-(MaxSpeed - 3))
	if err := a.Advance(0.03); err != nil {
		t.Fatal(err)
	}
	if a.Grid().Steps() != 3 {
		t.Errorf("Steps() = %d at 3x, want 3", a.Grid().Steps())
	}
}

func TestRainDrops(t *testing.T) {
	s := testSettings()
	s.Rain.Enabled = true
	a, _ := newTestApp(t, s, WithRand(rand.New(rand.NewSource(9))))
	for k := 0; k < 10; k++ {
		if err := a.Advance(0.09); err != nil {
			t.Fatal(err)
		}
	}
	st := a.Status()
	if st.Drops != 3 {
		t.Errorf("Drops = %d after 0.9s, want 3", st.Drops)
	}
	if st.Steps != 10 {
		t.Errorf("Steps = %d, want 10", st.Steps)
	}
	var moved bool
	for _, h := range a.Grid().Heights() {
		if h != 0 {
			moved = true
			break
		}
	}
	if !moved {
		t.Error("grid still flat after rain")
	}
}

func TestDisturbAndReset(t *testing.T) {
	a, _ := newTestApp(t, testSettings())
	if err := a.Disturb(0, 0, 1); !errors.Is(err, waves.ErrOutOfRange) {
		t.Errorf("Disturb(0,0) error = %v, want ErrOutOfRange", err)
	}
	if err := a.Disturb(5, 5, 1); err != nil {
		t.Fatal(err)
	}
	a.Reset()
	if h := a.Grid().Height(5, 5); h != 0 {
		t.Errorf("Height(5,5) after Reset = %v", h)
	}
}

func TestStatusString(t *testing.T) {
	a, _ := newTestApp(t, testSettings())
	a.Pause()
	out := a.Status().String()
	for _, want := range []string{"Steps: 0", "Speed: 1x", "paused", "Courant: 0.120"} {
		if !strings.Contains(out, want) {
			t.Errorf("Status().String() = %q, missing %q", out, want)
		}
	}
}
