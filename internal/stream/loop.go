package stream

import (
	"context"
	"errors"
	"time"

	"wavesim/waves"
)

// Simulation is the part of app.App the broadcast loop drives.
type Simulation interface {
	Frame() error
	Disturb(i, j int, magnitude float32) error
	Grid() *waves.Grid
}

// Run owns sim until ctx is done: every interval it applies queued client
// disturbances, advances one frame and broadcasts the heights.
func Run(ctx context.Context, sim Simulation, hub *Hub, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var buf []byte
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		hub.Drain(func(d Disturbance) {
			if err := sim.Disturb(d.Row, d.Col, d.Magnitude); err != nil {
				if errors.Is(err, waves.ErrOutOfRange) {
					hub.log.Debug("rejected client disturbance", "row", d.Row, "col", d.Col)
					return
				}
				hub.log.Warn("client disturbance failed", "err", err)
			}
		})
		if err := sim.Frame(); err != nil {
			return err
		}
		g := sim.Grid()
		buf = AppendFrame(buf[:0], g.RowCount(), g.ColumnCount(), g.Steps(), g.Heights())
		hub.Broadcast(buf)
	}
}

