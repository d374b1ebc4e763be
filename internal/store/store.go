// Package store keeps the live job registry in process memory. Jobs are
// registered at submission and stay until an explicit remove after they
// reach a terminal state; there is no eviction.
package store

import (
	"errors"
	"sync"
	"time"

	"muxminus-backend/internal/entity"
)

var (
	ErrDuplicateJob = errors.New("job already exists")
	ErrNotFound     = errors.New("job not found")
	ErrNotTerminal  = errors.New("job is not in a terminal state")
)

// Tracked is one registered job. The worker that dequeued the job is its
// only writer; status pollers read consistent copies via Snapshot.
type Tracked struct {
	mu  sync.Mutex
	job entity.Job
}

func (t *Tracked) Snapshot() entity.Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.job
}

// MarkProcessing transitions queued -> processing and stamps the start time.
func (t *Tracked) MarkProcessing(step string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.job.Status = entity.StatusProcessing
	t.job.StartedAt = time.Now().UTC()
	t.job.CurrentStep = step
}

// SetProgress updates the progress percentage and step label. Values are
// clamped to [0,100].
func (t *Tracked) SetProgress(progress float64, step string) {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.job.Progress = progress
	t.job.CurrentStep = step
}

// Complete finalizes the job with its output artifacts. The terminal
// transition, not the last progress callback, is what sets 100%.
func (t *Tracked) Complete(outputFiles []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.job.Status = entity.StatusCompleted
	t.job.Progress = 100
	t.job.CurrentStep = "Complete"
	t.job.OutputFiles = outputFiles
	t.finalize()
}

// Fail finalizes the job with an error message. Output files stay empty.
func (t *Tracked) Fail(errMsg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.job.Status = entity.StatusFailed
	t.job.ErrorMsg = errMsg
	t.finalize()
}

// caller holds t.mu
func (t *Tracked) finalize() {
	t.job.CompletedAt = time.Now().UTC()
	if !t.job.StartedAt.IsZero() {
		t.job.ProcessingTime = t.job.CompletedAt.Sub(t.job.StartedAt).Seconds()
	}
}

type Store struct {
	mu   sync.RWMutex
	jobs map[string]*Tracked
}

func New() *Store {
	return &Store{jobs: make(map[string]*Tracked)}
}

// Insert registers a new job and returns its tracked cell. Fails with
// ErrDuplicateJob if the id is already present.
func (s *Store) Insert(job entity.Job) (*Tracked, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; ok {
		return nil, ErrDuplicateJob
	}
	t := &Tracked{job: job}
	s.jobs[job.ID] = t
	return t, nil
}

// Tracked returns the mutable cell for a job, or nil if unknown. Only the
// owning worker should mutate through it.
func (s *Store) Tracked(id string) *Tracked {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobs[id]
}

func (s *Store) Get(id string) (entity.Job, error) {
	s.mu.RLock()
	t := s.jobs[id]
	s.mu.RUnlock()
	if t == nil {
		return entity.Job{}, ErrNotFound
	}
	return t.Snapshot(), nil
}

func (s *Store) List() []entity.Job {
	s.mu.RLock()
	tracked := make([]*Tracked, 0, len(s.jobs))
	for _, t := range s.jobs {
		tracked = append(tracked, t)
	}
	s.mu.RUnlock()

	jobs := make([]entity.Job, 0, len(tracked))
	for _, t := range tracked {
		jobs = append(jobs, t.Snapshot())
	}
	return jobs
}

// Remove drops a job from the registry. Only terminal jobs may be removed.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if !t.Snapshot().Status.Terminal() {
		return ErrNotTerminal
	}
	delete(s.jobs, id)
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
