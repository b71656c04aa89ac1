package game

import (
	"runtime"
	"sync"

	"github.com/pthm-cable/arena/systems"
)

// workChunk represents a range of plan requests for a worker to process.
type workChunk struct {
	start, end int
}

// parallelState holds the persistent route planning worker pool.
type parallelState struct {
	reqs       []systems.PlanRequest // batch being planned
	numWorkers int
	threshold  int // min requests before fanning out

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

func newParallelState(workers, threshold int) *parallelState {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if threshold < 1 {
		threshold = 1
	}
	return &parallelState{
		numWorkers: workers,
		threshold:  threshold,
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(plan func(*systems.PlanRequest)) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(plan)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *parallelState) worker(plan func(*systems.PlanRequest)) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			for i := chunk.start; i < chunk.end; i++ {
				plan(&p.reqs[i])
			}
			p.doneChan <- struct{}{}
		}
	}
}

// planRoutes fills every request's Waypoints/Err. Each request is written
// by exactly one worker, so the merged result does not depend on
// scheduling.
func (g *Game) planRoutes(reqs []systems.PlanRequest) {
	n := len(reqs)
	if n == 0 {
		return
	}

	p := g.parallel
	if n < p.threshold || p.numWorkers < 2 {
		for i := range reqs {
			g.combat.Plan(&reqs[i])
		}
		return
	}

	if !p.running {
		p.startWorkers(g.combat.Plan)
	}
	p.reqs = reqs

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers
	chunksDispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		p.workChan <- workChunk{start: start, end: end}
		chunksDispatched++
	}

	// Wait for all chunks to complete
	for i := 0; i < chunksDispatched; i++ {
		<-p.doneChan
	}
	p.reqs = nil
}

// stopParallelWorkers should be called when shutting down the game.
func (g *Game) stopParallelWorkers() {
	if g.parallel != nil {
		g.parallel.stopWorkers()
	}
}
