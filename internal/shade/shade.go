// Package shade colours a wave field for display.
package shade

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Field is the read side of waves.Grid used for shading.
type Field interface {
	RowCount() int
	ColumnCount() int
	Heights() []float32
	Normal(index int) mgl32.Vec3
}

// Palette controls how heights and slopes map to colour.
type Palette struct {
	Deep    mgl32.Vec3 // colour of a trough at -HeightScale
	Shallow mgl32.Vec3 // colour of a crest at +HeightScale
	Light   mgl32.Vec3 // direction towards the light, normalised by Fill
	Ambient float32
	// HeightScale is the height that saturates the tint.
	HeightScale float32
}

// Water is the default palette.
var Water = Palette{
	Deep:        mgl32.Vec3{0.02, 0.10, 0.30},
	Shallow:     mgl32.Vec3{0.55, 0.80, 0.95},
	Light:       mgl32.Vec3{-0.4, 0.8, 0.45},
	Ambient:     0.35,
	HeightScale: 1,
}

// Fill writes rows×cols RGBA pixels for f into dst, growing it when needed,
// and returns the filled slice. Row 0 of the grid becomes the top scanline.
func Fill(f Field, p Palette, dst []byte) []byte {
	rows, cols := f.RowCount(), f.ColumnCount()
	size := rows * cols * 4
	if cap(dst) < size {
		dst = make([]byte, size)
	}
	dst = dst[:size]

	light := p.Light.Normalize()
	scale := p.HeightScale
	if scale <= 0 {
		scale = 1
	}
	heights := f.Heights()
	for idx, h := range heights {
		t := mgl32.Clamp(0.5+0.5*h/scale, 0, 1)
		base := p.Deep.Add(p.Shallow.Sub(p.Deep).Mul(t))
		diffuse := max(f.Normal(idx).Dot(light), 0)
		c := base.Mul(p.Ambient + (1-p.Ambient)*diffuse)
		o := idx * 4
		dst[o] = toByte(c[0])
		dst[o+1] = toByte(c[1])
		dst[o+2] = toByte(c[2])
		dst[o+3] = 0xff
	}
	return dst
}

// At returns the RGB of cell idx in a buffer filled by Fill.
func At(pixels []byte, idx int) (r, g, b uint8) {
	o := idx * 4
	return pixels[o], pixels[o+1], pixels[o+2]
}

func toByte(v float32) byte {
	return byte(mgl32.Clamp(v, 0, 1)*255 + 0.5)
}
