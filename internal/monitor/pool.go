package monitor

import (
	"context"
	"sync"
)

type checkJob struct {
	userID   string
	lat, lng float64
	location string
}

type processFunc func(ctx context.Context, job checkJob)

// workerPool runs saved-location checks concurrently so one slow upstream
// call does not stall the whole sweep.
type workerPool struct {
	numWorkers int
	jobs       chan checkJob
	processor  processFunc
	wg         sync.WaitGroup
}

func newWorkerPool(numWorkers, bufferSize int, processor processFunc) *workerPool {
	return &workerPool{
		numWorkers: numWorkers,
		jobs:       make(chan checkJob, bufferSize),
		processor:  processor,
	}
}

func (wp *workerPool) Start(ctx context.Context) {
	for i := 1; i <= wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx)
	}
}

func (wp *workerPool) worker(ctx context.Context) {
	defer wp.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-wp.jobs:
			if !ok {
				return
			}
			wp.processor(ctx, job)
		}
	}
}

func (wp *workerPool) Submit(job checkJob) {
	wp.jobs <- job
}

func (wp *workerPool) Stop() {
	close(wp.jobs)
	wp.wg.Wait()
}
