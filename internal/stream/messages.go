package stream

import (
	"wavesim/internal/mesh"
	"wavesim/waves"
)

// MeshMessage is sent once as JSON when a client connects. It carries the
// parts of the grid that never change.
type MeshMessage struct {
	Type        string    `json:"type"`
	Rows        int       `json:"rows"`
	Cols        int       `json:"cols"`
	SpatialStep float32   `json:"spatialStep"`
	TimeStep    float32   `json:"timeStep"`
	X           []float32 `json:"x"`
	Z           []float32 `json:"z"`
	Indices     []uint32  `json:"indices"`
}

// NewMeshMessage describes g. It must be called by the grid's owner.
func NewMeshMessage(g *waves.Grid) MeshMessage {
	rows, cols := g.RowCount(), g.ColumnCount()
	m := MeshMessage{
		Type:        "mesh",
		Rows:        rows,
		Cols:        cols,
		SpatialStep: g.SpatialStep(),
		TimeStep:    g.TimeStep(),
		X:           make([]float32, cols),
		Z:           make([]float32, rows),
		Indices:     mesh.GridIndices(rows, cols),
	}
	for j := range m.X {
		m.X[j] = g.Position(j)[0]
	}
	for i := range m.Z {
		m.Z[i] = g.Position(i * cols)[2]
	}
	return m
}

// Disturbance is a droplet requested by a client.
type Disturbance struct {
	Row       int     `json:"row"`
	Col       int     `json:"col"`
	Magnitude float32 `json:"magnitude"`
}

// clientMessage is the envelope of everything a client sends.
type clientMessage struct {
	Type string `json:"type"`
	Disturbance
}
