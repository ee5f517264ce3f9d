package stream

import (
	"math"
	"testing"
)

func TestFloat16Bits(t *testing.T) {
	tests := []struct {
		in   float32
		want uint16
	}{
		{0, 0x0000},
		{float32(math.Copysign(0, -1)), 0x8000},
		{1, 0x3c00},
		{-2, 0xc000},
		{0.5, 0x3800},
		{65504, 0x7bff},
		{1e6, 0x7c00},
		{float32(math.Inf(-1)), 0xfc00},
		{5.9604645e-08, 0x0001},
		{1e-9, 0x0000},
	}
	for _, tt := range tests {
		if got := float32ToFloat16Bits(tt.in); got != tt.want {
			t.Errorf("float32ToFloat16Bits(%v) = %#04x, want %#04x", tt.in, got, tt.want)
		}
	}
}

func TestFloat16_RoundTripPrecision(t *testing.T) {
	for _, v := range []float32{0.1, -0.37, 0.0031, 1.25, -0.999} {
		got := float16BitsToFloat32(float32ToFloat16Bits(v))
		if rel := math.Abs(float64(got-v) / float64(v)); rel > 1.0/2048 {
			t.Errorf("round trip %v -> %v, relative error %v", v, got, rel)
		}
	}
	if got := float16BitsToFloat32(0x7e00); !math.IsNaN(float64(got)) {
		t.Errorf("float16BitsToFloat32(NaN) = %v", got)
	}
}
