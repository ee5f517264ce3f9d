package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Binary frame layout, little-endian:
//
//	[0:4)   magic "WAVE"
//	[4:8)   rows
//	[8:12)  cols
//	[12:20) completed simulation steps
//	[20:)   rows*cols binary16 heights, row-major
const (
	frameMagic      = "WAVE"
	frameHeaderSize = 20
)

var ErrBadFrame = errors.New("stream: malformed frame")

// Frame is a decoded height snapshot.
type Frame struct {
	Rows    int
	Cols    int
	Step    uint64
	Heights []float32
}

// AppendFrame encodes heights of a rows×cols grid after step steps onto dst.
func AppendFrame(dst []byte, rows, cols int, step uint64, heights []float32) []byte {
	dst = append(dst, frameMagic...)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(rows))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(cols))
	dst = binary.LittleEndian.AppendUint64(dst, step)
	for _, h := range heights[:rows*cols] {
		dst = binary.LittleEndian.AppendUint16(dst, float32ToFloat16Bits(h))
	}
	return dst
}

// DecodeFrame parses a frame produced by AppendFrame.
func DecodeFrame(b []byte) (Frame, error) {
	if len(b) < frameHeaderSize || string(b[:4]) != frameMagic {
		return Frame{}, fmt.Errorf("%w: missing header", ErrBadFrame)
	}
	f := Frame{
		Rows: int(binary.LittleEndian.Uint32(b[4:8])),
		Cols: int(binary.LittleEndian.Uint32(b[8:12])),
		Step: binary.LittleEndian.Uint64(b[12:20]),
	}
	body := b[frameHeaderSize:]
	if len(body) != f.Rows*f.Cols*2 {
		return Frame{}, fmt.Errorf("%w: %d body bytes for %dx%d grid", ErrBadFrame, len(body), f.Rows, f.Cols)
	}
	f.Heights = make([]float32, f.Rows*f.Cols)
	for i := range f.Heights {
		f.Heights[i] = float16BitsToFloat32(binary.LittleEndian.Uint16(body[2*i:]))
	}
	return f, nil
}
