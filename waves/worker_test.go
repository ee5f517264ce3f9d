package waves

import (
	"runtime"
	"sync/atomic"
	"testing"
)

func interiorRows(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i + 1
	}
	return rows
}

func TestAssignRows_RoundRobin(t *testing.T) {
	masks := assignRows(3, interiorRows(7))
	want := [][]int{{1, 4, 7}, {2, 5}, {3, 6}}
	if len(masks) != len(want) {
		t.Fatalf("len(masks) = %d, want %d", len(masks), len(want))
	}
	for w := range want {
		if len(masks[w]) != len(want[w]) {
			t.Fatalf("masks[%d] = %v, want %v", w, masks[w], want[w])
		}
		for i := range want[w] {
			if masks[w][i] != want[w][i] {
				t.Errorf("masks[%d] = %v, want %v", w, masks[w], want[w])
				break
			}
		}
	}
}

func TestRowPool_WorkerCount(t *testing.T) {
	tests := []struct {
		workers, rows, want int
	}{
		{1, 10, 1},
		{4, 10, 4},
		{16, 3, 3},
		{4, 0, 1},
		{0, 1000, min(runtime.GOMAXPROCS(0), 1000)},
	}
	for _, tt := range tests {
		p := newRowPool(tt.workers, interiorRows(tt.rows))
		if got := p.workers(); got != tt.want {
			t.Errorf("newRowPool(%d, %d rows).workers() = %d, want %d", tt.workers, tt.rows, got, tt.want)
		}
		p.close()
	}
}

func TestRowPool_RunsEveryRowOncePerPhase(t *testing.T) {
	for _, workers := range []int{1, 2, 5, 32} {
		p := newRowPool(workers, interiorRows(31))
		counts := make([]int32, 32)
		for phase := 0; phase < 50; phase++ {
			p.run(func(row int) {
				atomic.AddInt32(&counts[row], 1)
			})
		}
		p.close()

		if counts[0] != 0 {
			t.Errorf("workers=%d: row 0 ran %d times, want 0", workers, counts[0])
		}
		for row := 1; row < 32; row++ {
			if counts[row] != 50 {
				t.Errorf("workers=%d: row %d ran %d times, want 50", workers, row, counts[row])
			}
		}
	}
}

func TestRowPool_JoinsBeforeReturning(t *testing.T) {
	p := newRowPool(4, interiorRows(64))
	defer p.close()

	var done atomic.Int32
	p.run(func(int) {
		runtime.Gosched()
		done.Add(1)
	})
	if got := done.Load(); got != 64 {
		t.Errorf("rows done when run returned = %d, want 64", got)
	}
}

func TestRowPool_RunAfterClose(t *testing.T) {
	p := newRowPool(4, interiorRows(8))
	p.close()

	var done atomic.Int32
	p.run(func(int) { done.Add(1) })
	if got := done.Load(); got != 8 {
		t.Errorf("rows done after close = %d, want 8", got)
	}
}

func BenchmarkUpdate128(b *testing.B) {
	g, err := Create(128, 128, 1, 0.03, 4, 0.2)
	if err != nil {
		b.Fatal(err)
	}
	defer g.Close()
	g.Disturb(64, 64, 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.Update(0.03)
	}
}
