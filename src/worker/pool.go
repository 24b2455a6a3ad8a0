package worker

import (
	"context"
	"image"
	"log"
	"sync"

	"hoversnap/src/capture"
	"hoversnap/src/display"
	"hoversnap/src/geometry"
)

// Job is one capture request. SessionID stamps the result so the event loop
// can drop completions from sessions that were torn down while the capture
// was in flight.
type Job struct {
	SessionID uint64
	Rect      geometry.Rect
	Displays  []display.Descriptor
	DisplayID int
}

// Result of a capture job.
type Result struct {
	SessionID uint64
	Image     image.Image
	Err       error
}

// ResultCallback is invoked on completion from the worker goroutine. The
// event loop passes a closure that posts the result back onto itself; the
// callback must not touch loop state directly.
type ResultCallback func(Result)

// Pool runs capture jobs off the event loop. The platform grab may suspend
// for 100ms or more, and the loop must keep ticking underneath it. A single
// worker suffices, but the queue holds two jobs: a fresh session may submit
// while the previous session's grab is still in flight, and that submission
// must not be refused.
type Pool struct {
	engine *capture.Engine
	jobs   chan queued
	wg     sync.WaitGroup
}

type queued struct {
	ctx context.Context
	job Job
	cb  ResultCallback
}

// New starts the pool.
func New(engine *capture.Engine) *Pool {
	p := &Pool{engine: engine, jobs: make(chan queued, 2)}
	p.wg.Add(1)
	go p.run()
	return p
}

func (p *Pool) run() {
	defer p.wg.Done()
	for q := range p.jobs {
		if q.ctx.Err() != nil {
			q.cb(Result{SessionID: q.job.SessionID, Err: q.ctx.Err()})
			continue
		}
		log.Printf("worker: capturing %gx%g on display %d", q.job.Rect.W, q.job.Rect.H, q.job.DisplayID)
		img, err := p.engine.Capture(q.job.Rect, q.job.Displays, q.job.DisplayID)
		q.cb(Result{SessionID: q.job.SessionID, Image: img, Err: err})
	}
}

// Submit enqueues a job if a slot is free. Returns false when dropped, which
// only happens with a capture running and another already waiting.
func (p *Pool) Submit(ctx context.Context, job Job, cb ResultCallback) bool {
	select {
	case p.jobs <- queued{ctx: ctx, job: job, cb: cb}:
		return true
	default:
		return false
	}
}

// Close drains current work and stops the worker.
func (p *Pool) Close() {
	close(p.jobs)
	p.wg.Wait()
}
