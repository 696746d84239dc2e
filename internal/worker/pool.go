// Package worker warms the analysis cache in the background so that later
// compatibility requests do not wait on the analysis service.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultJobTimeout = 2 * time.Minute

// Warmer makes sure a song's analysis is cached.
type Warmer interface {
	WarmAnalysis(ctx context.Context, songID string) error
}

// Job represents a queued cache-warming request.
type Job struct {
	ID     string
	SongID string
}

// Pool manages background workers for async jobs.
type Pool struct {
	warmer     Warmer
	log        *zap.SugaredLogger
	workers    int
	jobTimeout time.Duration
	jobs       chan Job
	wg         sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// NewPool creates a worker pool with the given worker count and queue size.
// A non-positive jobTimeout selects the default.
func NewPool(warmer Warmer, log *zap.SugaredLogger, workers, queueSize int, jobTimeout time.Duration) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	if jobTimeout <= 0 {
		jobTimeout = defaultJobTimeout
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Pool{
		warmer:     warmer,
		log:        log,
		workers:    workers,
		jobTimeout: jobTimeout,
		jobs:       make(chan Job, queueSize),
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.processJob(job)
			}
		}()
	}
}

// Stop rejects new jobs and waits for the queued ones to finish.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
}

// Submit queues a warming job without blocking. It reports false when the
// queue is full or the pool is stopped.
func (p *Pool) Submit(songID string) (string, bool) {
	job := Job{ID: uuid.NewString(), SongID: songID}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		p.log.Warnw("worker: pool stopped, dropping job", "song_id", songID)
		return "", false
	}

	select {
	case p.jobs <- job:
		return job.ID, true
	default:
		p.log.Warnw("worker: queue full, dropping job", "song_id", songID)
		return "", false
	}
}

func (p *Pool) processJob(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), p.jobTimeout)
	defer cancel()

	start := time.Now()
	if err := p.warmer.WarmAnalysis(ctx, job.SongID); err != nil {
		p.log.Warnw("worker: failed to warm analysis", "job_id", job.ID, "song_id", job.SongID, "error", err)
		return
	}
	p.log.Infow("worker: analysis cached", "job_id", job.ID, "song_id", job.SongID, "duration", time.Since(start))
}
