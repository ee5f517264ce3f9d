// Command wavesim runs the damped wave simulation in a window, a terminal,
// as a websocket stream, or headless.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"

	"wavesim/internal/app"
	"wavesim/internal/config"
	"wavesim/internal/mesh"
	"wavesim/internal/stream"
	"wavesim/internal/term"
	"wavesim/internal/viewer"
	"wavesim/waves"
)

const (
	termFrameInterval = 33 * time.Millisecond
	shutdownTimeout   = 5 * time.Second
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "wavesim:", err)
		os.Exit(1)
	}
}

func run() error {
	level, err := parseLevel(*logLevelFlag)
	if err != nil {
		return err
	}
	log := newLogger(os.Stderr, level)
	slog.SetDefault(log)
	waves.SetLogger(log)

	s, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	s, err = applyFlags(s, setFlags())
	if err != nil {
		return err
	}

	if *cpuProfileFlag != "" {
		stop, err := startCPUProfile(*cpuProfileFlag)
		if err != nil {
			return fmt.Errorf("cpu profile: %w", err)
		}
		defer stop()
		log.Info("writing CPU profile", "path", *cpuProfileFlag)
	}

	a, err := app.New(s, app.WithLogger(log))
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch *modeFlag {
	case "window":
		return viewer.Run(a, log)
	case "term":
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("terminal: %w", err)
		}
		return term.Run(ctx, screen, a, termFrameInterval, log)
	case "serve":
		return serve(ctx, a, s.Server, log)
	case "headless":
		st, err := runHeadless(ctx, a, *stepsFlag)
		if err != nil {
			return err
		}
		log.Info("headless run finished",
			"steps", st.Steps, "drops", st.Drops, "courant", st.Courant, "stable", st.Stable)
		if *exportFlag != "" {
			return exportOBJ(*exportFlag, a.Grid())
		}
		return nil
	default:
		return fmt.Errorf("unknown mode %q", *modeFlag)
	}
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// runHeadless advances a one grid time step at a time until steps updates
// have run or ctx ends.
func runHeadless(ctx context.Context, a *app.App, steps int) (app.Status, error) {
	dt := a.Grid().TimeStep()
	start := time.Now()
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			break
		}
		if err := a.Advance(dt); err != nil {
			return a.Status(), err
		}
	}
	st := a.Status()
	slog.Debug("headless timing", "steps", st.Steps, "elapsed", time.Since(start))
	return st, nil
}

// exportOBJ writes the current surface of g to path.
func exportOBJ(path string, g *waves.Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	verts := mesh.Snapshot(g, nil)
	if err := mesh.WriteOBJ(f, verts, mesh.GridIndices(g.RowCount(), g.ColumnCount())); err != nil {
		f.Close()
		return fmt.Errorf("export %s: %w", path, err)
	}
	return f.Close()
}

// serve exposes the simulation over a websocket at /ws until ctx ends or the
// listener fails.
func serve(ctx context.Context, a *app.App, cfg config.ServerSettings, log *slog.Logger) error {
	hub, err := stream.NewHub(stream.NewMeshMessage(a.Grid()), log)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: shutdownTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("serving wave stream", "addr", cfg.Addr, "path", "/ws")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return stream.Run(ctx, a, hub, cfg.UpdateInterval())
	})
	g.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
