// Package mesh turns a wave grid into vertex and index buffers.
package mesh

import (
	"bufio"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is one grid sample as a renderer consumes it.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	TangentU mgl32.Vec3
	TexC     mgl32.Vec2
}

// Surface is the read side of waves.Grid.
type Surface interface {
	RowCount() int
	ColumnCount() int
	VertexCount() int
	Position(index int) mgl32.Vec3
	Normal(index int) mgl32.Vec3
	Tangent(index int) mgl32.Vec3
}

// GridIndices returns the triangle list of a rows×cols grid, two triangles
// per quad in clockwise order seen from +Y.
func GridIndices(rows, cols int) []uint32 {
	if rows < 2 || cols < 2 {
		return nil
	}
	indices := make([]uint32, 0, (rows-1)*(cols-1)*6)
	n := uint32(cols)
	for i := uint32(0); i < uint32(rows-1); i++ {
		for j := uint32(0); j < n-1; j++ {
			indices = append(indices,
				i*n+j, i*n+j+1, (i+1)*n+j,
				(i+1)*n+j, i*n+j+1, (i+1)*n+j+1,
			)
		}
	}
	return indices
}

// Snapshot copies every vertex of s into dst, growing it when needed, and
// returns the filled slice. Texture coordinates span [0,1] across the grid.
func Snapshot(s Surface, dst []Vertex) []Vertex {
	count := s.VertexCount()
	if cap(dst) < count {
		dst = make([]Vertex, count)
	}
	dst = dst[:count]

	rows, cols := s.RowCount(), s.ColumnCount()
	du := 1 / float32(cols-1)
	dv := 1 / float32(rows-1)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			idx := i*cols + j
			dst[idx] = Vertex{
				Position: s.Position(idx),
				Normal:   s.Normal(idx),
				TangentU: s.Tangent(idx),
				TexC:     mgl32.Vec2{float32(j) * du, float32(i) * dv},
			}
		}
	}
	return dst
}

// WriteOBJ writes vs and the triangle list as a Wavefront OBJ mesh. Faces
// are flipped to counter-clockwise order, which OBJ treats as front facing.
func WriteOBJ(w io.Writer, vs []Vertex, indices []uint32) error {
	if len(indices)%3 != 0 {
		return fmt.Errorf("mesh: %d indices is not a triangle list", len(indices))
	}
	bw := bufio.NewWriter(w)
	for _, v := range vs {
		fmt.Fprintf(bw, "v %g %g %g\n", v.Position[0], v.Position[1], v.Position[2])
	}
	for _, v := range vs {
		fmt.Fprintf(bw, "vn %g %g %g\n", v.Normal[0], v.Normal[1], v.Normal[2])
	}
	for _, v := range vs {
		fmt.Fprintf(bw, "vt %g %g\n", v.TexC[0], 1-v.TexC[1])
	}
	for t := 0; t < len(indices); t += 3 {
		a, b, c := indices[t]+1, indices[t+1]+1, indices[t+2]+1
		fmt.Fprintf(bw, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, c, c, c, b, b, b)
	}
	return bw.Flush()
}
