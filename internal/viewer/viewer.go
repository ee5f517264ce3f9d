// Package viewer shows the wave field in a window.
package viewer

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"wavesim/internal/app"
	"wavesim/internal/shade"
	"wavesim/waves"
)

const (
	clickMagnitude = 1.0
	audioGain      = 4.0
	speedStep      = 1
)

// Game adapts an app.App to ebiten.Game.
type Game struct {
	app     *app.App
	scale   int
	debug   bool
	palette shade.Palette

	pixels []byte
	field  *ebiten.Image

	audioStream *centerAudioStream
	audioPlayer *audio.Player
	log         *slog.Logger
}

// New builds the window front-end for a. Audio is started when the settings
// ask for it; a failure there is logged and the viewer runs silent.
func New(a *app.App, log *slog.Logger) *Game {
	s := a.Settings().Viewer
	if log == nil {
		log = slog.Default()
	}
	g := &Game{
		app:     a,
		scale:   s.Scale,
		debug:   s.Debug,
		palette: shade.Water,
		log:     log,
	}
	g.palette.HeightScale = s.HeightScale
	grid := a.Grid()
	g.field = ebiten.NewImage(grid.ColumnCount(), grid.RowCount())

	if s.Audio {
		ctx := audio.NewContext(audioSampleRate)
		g.audioStream = newCenterAudioStream(audioGain)
		player, err := ctx.NewPlayer(g.audioStream)
		if err != nil {
			log.Warn("audio player creation failed", "err", err)
		} else {
			g.audioPlayer = player
			g.audioPlayer.Play()
		}
	}
	return g
}

// Run opens the window and blocks until it is closed.
func Run(a *app.App, log *slog.Logger) error {
	g := New(a, log)
	s := a.Settings().Viewer
	grid := a.Grid()
	ebiten.SetWindowSize(grid.ColumnCount()*s.Scale, grid.RowCount()*s.Scale)
	ebiten.SetWindowTitle(s.Title)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

// Update handles input and advances the simulation by one frame.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	g.handleControls()
	g.handleClick()

	if err := g.app.Frame(); err != nil {
		return fmt.Errorf("advancing simulation: %w", err)
	}
	if g.audioStream != nil {
		grid := g.app.Grid()
		g.audioStream.SetSample(grid.Height(grid.RowCount()/2, grid.ColumnCount()/2))
	}
	return nil
}

func (g *Game) handleControls() {
	if inpututil.IsKeyJustPressed(ebiten.KeyP) || inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.app.TogglePause()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.app.Reset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.debug = !g.debug
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract) {
		g.app.AdjustSpeed(-speedStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd) {
		g.app.AdjustSpeed(speedStep)
	}
}

// handleClick drops a droplet under the cursor while the left button is held.
func (g *Game) handleClick() {
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		return
	}
	x, y := ebiten.CursorPosition()
	i, j := cellAt(x, y, g.scale)
	if err := g.app.Disturb(i, j, clickMagnitude); err != nil && !errors.Is(err, waves.ErrOutOfRange) {
		g.log.Warn("disturb failed", "row", i, "col", j, "err", err)
	}
}

// cellAt maps a screen position to the grid cell drawn there.
func cellAt(x, y, scale int) (row, col int) {
	if scale < 1 {
		scale = 1
	}
	return y / scale, x / scale
}

// Draw renders the shaded field and the optional overlay.
func (g *Game) Draw(screen *ebiten.Image) {
	g.pixels = shade.Fill(g.app.Grid(), g.palette, g.pixels)
	g.field.WritePixels(g.pixels)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.scale), float64(g.scale))
	screen.DrawImage(g.field, op)

	if g.debug {
		ebitenutil.DebugPrint(screen, g.app.Status().String())
	}
}

// Layout reports the logical screen size: the grid at the configured scale.
func (g *Game) Layout(_, _ int) (int, int) {
	grid := g.app.Grid()
	return grid.ColumnCount() * g.scale, grid.RowCount() * g.scale
}
