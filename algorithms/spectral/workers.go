package spectral

import (
	"runtime"
	"sync"
)

// OptimalWorkerCount picks a worker count for numFrames independent frames
func OptimalWorkerCount(numFrames int) int {
	numCPU := runtime.NumCPU()

	// For small workloads, don't over-parallelize
	if numFrames < 100 {
		return max(1, min(numCPU/2, numFrames))
	}

	if numFrames < 1000 {
		return min(numCPU, 8)
	}

	return numCPU
}

// ParallelFrames calls fn once for every frame index in [0, numFrames) on
// a pool of workers. fn receives the worker id so callers can keep
// per-worker scratch buffers. workers <= 0 picks OptimalWorkerCount.
// fn must only write state owned by its frame index.
func ParallelFrames(numFrames, workers int, fn func(worker, frame int)) {
	if numFrames <= 0 {
		return
	}
	if workers <= 0 {
		workers = OptimalWorkerCount(numFrames)
	}
	workers = min(workers, numFrames)

	if workers == 1 {
		for i := range numFrames {
			fn(0, i)
		}
		return
	}

	jobs := make(chan int, numFrames)
	for i := range numFrames {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for frame := range jobs {
				fn(worker, frame)
			}
		}(w)
	}
	wg.Wait()
}
