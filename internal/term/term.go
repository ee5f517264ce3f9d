// Package term renders the wave field in a terminal with tcell.
//
// Each character cell shows two grid samples using the upper half block:
// the foreground is the upper sample and the background the lower one.
// The bottom line carries the status text.
package term

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"wavesim/internal/app"
	"wavesim/internal/shade"
	"wavesim/waves"
)

const (
	halfBlock     = '▀'
	dropMagnitude = 0.5
)

// View draws an App onto a tcell screen and maps keys to app controls.
type View struct {
	screen  tcell.Screen
	app     *app.App
	palette shade.Palette
	pixels  []byte
	log     *slog.Logger
}

// New binds an initialised screen to a.
func New(screen tcell.Screen, a *app.App, log *slog.Logger) *View {
	if log == nil {
		log = slog.Default()
	}
	p := shade.Water
	if hs := a.Settings().Viewer.HeightScale; hs > 0 {
		p.HeightScale = hs
	}
	return &View{screen: screen, app: a, palette: p, log: log}
}

// Draw paints the field scaled to the screen and the status line.
func (v *View) Draw() {
	g := v.app.Grid()
	v.pixels = shade.Fill(g, v.palette, v.pixels)

	w, h := v.screen.Size()
	if w <= 0 || h <= 0 {
		return
	}
	v.screen.Clear()

	rows, cols := g.RowCount(), g.ColumnCount()
	lines := max(h-1, 1)
	for y := 0; y < lines; y++ {
		top := (2 * y) * rows / (2 * lines)
		bottom := (2*y + 1) * rows / (2 * lines)
		for x := 0; x < w; x++ {
			col := x * cols / w
			style := tcell.StyleDefault.
				Foreground(v.cellColor(top*cols + col)).
				Background(v.cellColor(bottom*cols + col))
			v.screen.SetContent(x, y, halfBlock, nil, style)
		}
	}
	if h > 1 {
		v.drawStatus(h-1, w)
	}
	v.screen.Show()
}

func (v *View) cellColor(idx int) tcell.Color {
	r, g, b := shade.At(v.pixels, idx)
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func (v *View) drawStatus(y, w int) {
	text := strings.ReplaceAll(v.app.Status().String(), "\n", "  ")
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	x := 0
	for _, r := range text {
		if x >= w {
			break
		}
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
	for ; x < w; x++ {
		v.screen.SetContent(x, y, ' ', nil, style)
	}
}

// HandleKey applies a key press and reports whether the view should quit.
func (v *View) HandleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
	default:
		return false
	}
	switch ev.Rune() {
	case 'q', 'Q':
		return true
	case ' ':
		if err := v.app.DropCentre(dropMagnitude); err != nil && !errors.Is(err, waves.ErrOutOfRange) {
			v.log.Warn("drop failed", "err", err)
		}
	case 'p', 'P':
		v.app.TogglePause()
	case 'r', 'R':
		v.app.Reset()
	case '+', '=':
		v.app.AdjustSpeed(1)
	case '-', '_':
		v.app.AdjustSpeed(-1)
	}
	return false
}

// Run initialises screen, then advances and redraws a every interval until
// ctx ends, a quit key arrives, or a frame fails. The screen is finalised on
// return.
func Run(ctx context.Context, screen tcell.Screen, a *app.App, interval time.Duration, log *slog.Logger) error {
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	v := New(screen, a, log)
	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	v.Draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if v.HandleKey(ev) {
					return nil
				}
			case *tcell.EventResize:
				screen.Sync()
				v.Draw()
			}
		case <-ticker.C:
			if err := a.Frame(); err != nil {
				return err
			}
			v.Draw()
		}
	}
}
