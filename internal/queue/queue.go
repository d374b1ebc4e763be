// Package queue schedules media processing jobs over a fixed pool of
// workers. Admission is bounded by the backlog size, concurrency by the
// worker count; a job picked up by a worker always runs to completion or
// failure, there is no cancellation and no retry.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"muxminus-backend/internal/entity"
	"muxminus-backend/internal/media"
	"muxminus-backend/internal/metrics"
	"muxminus-backend/internal/store"
)

var ErrQueueFull = errors.New("job queue is full")

const (
	DefaultMaxConcurrent = 2
	DefaultMaxQueueSize  = 50
)

// Sink receives the final snapshot of every job that reaches a terminal
// state. Sink errors are logged and never affect the job.
type Sink interface {
	RecordTerminal(ctx context.Context, job entity.Job)
}

// MultiSink fans a terminal snapshot out to several sinks.
type MultiSink []Sink

func (m MultiSink) RecordTerminal(ctx context.Context, job entity.Job) {
	for _, s := range m {
		s.RecordTerminal(ctx, job)
	}
}

type Options struct {
	MaxConcurrent int
	MaxQueueSize  int
	OutputsDir    string
	Metrics       *metrics.Collector // optional
	Sink          Sink               // optional
}

type Scheduler struct {
	maxConcurrent int
	maxQueueSize  int
	outputsDir    string

	store     *store.Store
	processor media.Processor
	metrics   *metrics.Collector
	sink      Sink

	// submitMu serializes admission so duplicate and capacity checks are
	// atomic with the enqueue.
	submitMu sync.Mutex
	backlog  chan string
	active   atomic.Int64

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

func New(st *store.Store, processor media.Processor, opts Options) *Scheduler {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = DefaultMaxConcurrent
	}
	if opts.MaxQueueSize <= 0 {
		opts.MaxQueueSize = DefaultMaxQueueSize
	}
	return &Scheduler{
		maxConcurrent: opts.MaxConcurrent,
		maxQueueSize:  opts.MaxQueueSize,
		outputsDir:    opts.OutputsDir,
		store:         st,
		processor:     processor,
		metrics:       opts.Metrics,
		sink:          opts.Sink,
		backlog:       make(chan string, opts.MaxQueueSize),
	}
}

// Start launches the worker pool. Calling Start on a running scheduler is
// a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	for i := 0; i < s.maxConcurrent; i++ {
		s.wg.Add(1)
		go s.worker(i, s.stopCh)
	}
	log.Printf("[queue] started workers=%d max_queue_size=%d", s.maxConcurrent, s.maxQueueSize)
}

// Stop signals all workers to exit after their current job and waits for
// them to drain. Calling Stop on a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	log.Printf("[queue] stopped")
}

type SubmitRequest struct {
	ID        string
	InputPath string
	Config    entity.JobConfig
}

// Submit validates and admits a job. The job is rejected before any state
// change on a duplicate id, a full backlog, or an invalid config.
func (s *Scheduler) Submit(req SubmitRequest) (entity.Job, error) {
	if req.ID == "" {
		return entity.Job{}, fmt.Errorf("%w: empty job id", entity.ErrInvalidConfig)
	}
	if req.Config == nil {
		return entity.Job{}, fmt.Errorf("%w: missing config", entity.ErrInvalidConfig)
	}
	if err := req.Config.Validate(); err != nil {
		return entity.Job{}, err
	}

	s.submitMu.Lock()
	defer s.submitMu.Unlock()

	if _, err := s.store.Get(req.ID); err == nil {
		return entity.Job{}, store.ErrDuplicateJob
	}
	// Workers only ever drain the backlog, so under submitMu this check
	// guarantees the send below cannot block.
	if len(s.backlog) >= s.maxQueueSize {
		return entity.Job{}, ErrQueueFull
	}

	outputDir := filepath.Join(s.outputsDir, req.ID)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return entity.Job{}, fmt.Errorf("create output dir: %w", err)
	}

	job := entity.Job{
		ID:          req.ID,
		Kind:        req.Config.Kind(),
		InputPath:   req.InputPath,
		OutputDir:   outputDir,
		Config:      req.Config,
		Status:      entity.StatusQueued,
		OutputFiles: []string{},
		CreatedAt:   time.Now().UTC(),
	}

	t, err := s.store.Insert(job)
	if err != nil {
		return entity.Job{}, err
	}
	s.backlog <- req.ID

	if s.metrics != nil {
		s.metrics.RecordSubmitted(string(job.Kind))
		s.metrics.SetQueueDepth(len(s.backlog))
	}
	log.Printf("[queue] job_id=%s type=%s submitted", job.ID, job.Kind)
	return t.Snapshot(), nil
}

func (s *Scheduler) GetJob(id string) (entity.Job, error) {
	return s.store.Get(id)
}

func (s *Scheduler) ListJobs() []entity.Job {
	return s.store.List()
}

// RemoveJob drops a terminal job from tracking. Output files on disk are
// untouched.
func (s *Scheduler) RemoveJob(id string) error {
	return s.store.Remove(id)
}

func (s *Scheduler) QueueSize() int { return len(s.backlog) }

func (s *Scheduler) ActiveCount() int { return int(s.active.Load()) }

func (s *Scheduler) CanAccept() bool { return len(s.backlog) < s.maxQueueSize }

func (s *Scheduler) MaxConcurrent() int { return s.maxConcurrent }

type Status struct {
	QueueSize     int  `json:"queue_size"`
	ActiveJobs    int  `json:"active_jobs"`
	MaxConcurrent int  `json:"max_concurrent"`
	CanAcceptJobs bool `json:"can_accept_jobs"`
}

func (s *Scheduler) QueueStatus() Status {
	return Status{
		QueueSize:     s.QueueSize(),
		ActiveJobs:    s.ActiveCount(),
		MaxConcurrent: s.maxConcurrent,
		CanAcceptJobs: s.CanAccept(),
	}
}
