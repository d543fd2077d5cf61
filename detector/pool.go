package detector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"VisionAlertServer/iface"
	"VisionAlertServer/logger"
)

type job struct {
	ctx    context.Context
	image  []byte
	result chan jobResult
}

type jobResult struct {
	candidates []iface.Candidate
	err        error
}

// Pool bounds concurrent access to the inference collaborator with a fixed
// number of workers pulling from a job channel. Workers recover from panics
// and restart after one second.
type Pool struct {
	backend   iface.Detector
	jobs      chan job
	closeOnce sync.Once
}

// NewPool starts workers goroutines over backend.
func NewPool(backend iface.Detector, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	p := &Pool{
		backend: backend,
		jobs:    make(chan job, workers),
	}
	for i := 0; i < workers; i++ {
		go p.runWorker(i)
	}
	return p
}

func (p *Pool) runWorker(workerID int) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log().Error(fmt.Sprintf("detector worker %d panic: %v. Restarting in 1s...", workerID, r))
			time.Sleep(1 * time.Second)
			go p.runWorker(workerID)
		}
	}()
	logger.S().Infof("detector worker %d started", workerID)
	for j := range p.jobs {
		candidates, err := p.backend.Detect(j.ctx, j.image)
		j.result <- jobResult{candidates: candidates, err: err}
	}
}

// Detect implements iface.Detector by queueing the frame for a worker.
// Cancellation of ctx abandons the job; the buffered result channel lets
// the worker complete without blocking.
func (p *Pool) Detect(ctx context.Context, jpeg []byte) ([]iface.Candidate, error) {
	result := make(chan jobResult, 1)
	select {
	case p.jobs <- job{ctx: ctx, image: jpeg, result: result}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case res := <-result:
		return res.candidates, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops the workers and closes the backend.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.jobs)
	})
	p.backend.Close()
}
