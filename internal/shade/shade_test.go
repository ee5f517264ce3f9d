package shade

import (
	"testing"

	"wavesim/waves"
)

func TestFill_FlatFieldIsUniform(t *testing.T) {
	g, err := waves.Create(4, 6, 1, 0.03, 4, 0.2, waves.WithWorkers(1))
	if err != nil {
		t.Fatal(err)
	}
	px := Fill(g, Water, nil)
	if len(px) != 4*6*4 {
		t.Fatalf("len = %d, want %d", len(px), 4*6*4)
	}
	r0, g0, b0 := At(px, 0)
	for idx := 0; idx < 24; idx++ {
		r, gg, b := At(px, idx)
		if r != r0 || gg != g0 || b != b0 || px[idx*4+3] != 0xff {
			t.Fatalf("pixel %d = %d,%d,%d,%d, want %d,%d,%d,255", idx, r, gg, b, px[idx*4+3], r0, g0, b0)
		}
	}
}

func TestFill_CrestBrighterThanTrough(t *testing.T) {
	g, err := waves.Create(9, 9, 1, 0.03, 4, 0.2, waves.WithWorkers(1))
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Disturb(4, 4, 0.8); err != nil {
		t.Fatal(err)
	}
	flat := Water
	flat.Ambient = 1 // tint only
	px := Fill(g, flat, nil)
	_, _, bCrest := At(px, 4*9+4)
	_, _, bFlat := At(px, 0)
	if bCrest <= bFlat {
		t.Errorf("crest blue %d not above flat blue %d", bCrest, bFlat)
	}
}

func TestFill_ReusesBuffer(t *testing.T) {
	g, _ := waves.Create(3, 3, 1, 0.03, 4, 0.2, waves.WithWorkers(1))
	buf := make([]byte, 0, 64)
	px := Fill(g, Water, buf)
	if cap(px) != 64 {
		t.Errorf("cap = %d, want reused 64", cap(px))
	}
}

func TestToByte(t *testing.T) {
	tests := []struct {
		in   float32
		want byte
	}{
		{-1, 0}, {0, 0}, {0.5, 128}, {1, 255}, {3, 255},
	}
	for _, tt := range tests {
		if got := toByte(tt.in); got != tt.want {
			t.Errorf("toByte(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
