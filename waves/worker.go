package waves

import (
	"runtime"
	"sync"
)

// rowPool runs a per-row job over a fixed set of rows on persistent worker
// goroutines. Each call to run is one fork/join phase: workers are woken by
// a broadcast, process their own rows and the caller waits for all of them.
type rowPool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	step    int
	pending int
	closed  bool
	job     func(row int)

	// masks[w] lists the rows owned by worker w.
	masks [][]int
}

// newRowPool distributes rows over at most workers goroutines. With a single
// worker no goroutine is started and run executes inline.
func newRowPool(workers int, rows []int) *rowPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(rows) {
		workers = len(rows)
	}
	if workers < 1 {
		workers = 1
	}
	p := &rowPool{masks: assignRows(workers, rows)}
	p.cond = sync.NewCond(&p.mu)
	if workers > 1 {
		for i := range p.masks {
			go p.workerLoop(i)
		}
	}
	return p
}

// assignRows deals rows out to workers round robin.
func assignRows(workers int, rows []int) [][]int {
	if workers < 1 {
		workers = 1
	}
	masks := make([][]int, workers)
	for idx, row := range rows {
		w := idx % workers
		masks[w] = append(masks[w], row)
	}
	return masks
}

func (p *rowPool) workers() int {
	return len(p.masks)
}

// run executes job for every row and returns once all rows are done.
func (p *rowPool) run(job func(row int)) {
	if len(p.masks) == 1 {
		for _, row := range p.masks[0] {
			job(row)
		}
		return
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		for _, rows := range p.masks {
			for _, row := range rows {
				job(row)
			}
		}
		return
	}
	p.job = job
	p.pending = len(p.masks)
	p.step++
	p.cond.Broadcast()
	for p.pending > 0 {
		p.cond.Wait()
	}
	p.job = nil
	p.mu.Unlock()
}

func (p *rowPool) workerLoop(index int) {
	lastStep := 0
	p.mu.Lock()
	for {
		for p.step == lastStep && !p.closed {
			p.cond.Wait()
		}
		if p.closed {
			p.mu.Unlock()
			return
		}
		lastStep = p.step
		job := p.job
		rows := p.masks[index]
		p.mu.Unlock()

		for _, row := range rows {
			job(row)
		}

		p.mu.Lock()
		p.pending--
		if p.pending == 0 {
			p.cond.Broadcast()
		}
	}
}

// close stops the worker goroutines. run keeps working afterwards, inline.
func (p *rowPool) close() {
	p.mu.Lock()
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()
}
