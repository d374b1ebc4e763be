package queue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"time"

	"muxminus-backend/internal/entity"
	"muxminus-backend/internal/store"
)

func (s *Scheduler) worker(n int, stopCh <-chan struct{}) {
	defer s.wg.Done()
	log.Printf("[worker-%d] started", n)

	for {
		// Drain no further once stop is signalled, even with a non-empty
		// backlog.
		select {
		case <-stopCh:
			log.Printf("[worker-%d] stopped", n)
			return
		default:
		}

		select {
		case <-stopCh:
			log.Printf("[worker-%d] stopped", n)
			return
		case jobID := <-s.backlog:
			s.active.Add(1)
			if s.metrics != nil {
				s.metrics.SetActive(int(s.active.Load()))
				s.metrics.SetQueueDepth(len(s.backlog))
			}

			s.process(jobID, n)

			s.active.Add(-1)
			if s.metrics != nil {
				s.metrics.SetActive(int(s.active.Load()))
			}
		}
	}
}

func (s *Scheduler) process(jobID string, workerID int) {
	t := s.store.Tracked(jobID)
	if t == nil {
		log.Printf("[worker-%d] job_id=%s not found in store, skipping", workerID, jobID)
		return
	}
	job := t.Snapshot()
	log.Printf("[worker-%d] job_id=%s type=%s status=processing", workerID, jobID, job.Kind)

	t.MarkProcessing("Starting job")
	start := time.Now()

	outputFiles, err := s.dispatch(t, job)
	elapsed := time.Since(start)

	if err != nil {
		t.Fail(err.Error())
		if s.metrics != nil {
			s.metrics.RecordFailed(elapsed.Seconds())
		}
		log.Printf("[worker-%d] job_id=%s type=%s status=failed duration_ms=%d error=%s",
			workerID, jobID, job.Kind, elapsed.Milliseconds(), err)
	} else {
		t.Complete(outputFiles)
		if s.metrics != nil {
			s.metrics.RecordCompleted(elapsed.Seconds())
		}
		log.Printf("[worker-%d] job_id=%s type=%s status=completed duration_ms=%d outputs=%d",
			workerID, jobID, job.Kind, elapsed.Milliseconds(), len(outputFiles))
	}

	if s.sink != nil {
		s.sink.RecordTerminal(context.Background(), t.Snapshot())
	}
}

// dispatch routes to the kind-specific handler. A panic inside a handler is
// converted into a job failure so one bad job cannot take a worker down.
func (s *Scheduler) dispatch(t *store.Tracked, job entity.Job) (files []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			files = nil
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	switch cfg := job.Config.(type) {
	case entity.SeparationConfig:
		return s.runSeparation(t, job, cfg)
	case entity.TranscriptionConfig:
		return s.runTranscription(t, job, cfg)
	case entity.PipelineConfig:
		return s.runPipeline(t, job, cfg)
	default:
		return nil, fmt.Errorf("unknown job type: %s", job.Kind)
	}
}

func (s *Scheduler) runSeparation(t *store.Tracked, job entity.Job, cfg entity.SeparationConfig) ([]string, error) {
	t.SetProgress(0, "Loading audio file")

	// The last 10% is reserved for finalization bookkeeping; the terminal
	// transition sets 100.
	stems, err := s.processor.Separate(context.Background(), job.InputPath, job.OutputDir, cfg,
		func(pct float64, state string) {
			t.SetProgress(pct*0.9, "Separating ("+state+")")
		})
	if err != nil {
		return nil, err
	}
	return sortedValues(stems), nil
}

func (s *Scheduler) runTranscription(t *store.Tracked, job entity.Job, cfg entity.TranscriptionConfig) ([]string, error) {
	t.SetProgress(0, "Loading audio/video file")

	outputs, err := s.processor.Transcribe(context.Background(), job.InputPath, job.OutputDir, cfg,
		func(pct float64, state string) {
			t.SetProgress(pct, "Transcribing ("+state+")")
		})
	if err != nil {
		return nil, err
	}
	return sortedValues(outputs), nil
}

// runPipeline chains vocal isolation and lyrics transcription. Phase 1 maps
// onto progress 0-50, phase 2 onto 50-100.
func (s *Scheduler) runPipeline(t *store.Tracked, job entity.Job, cfg entity.PipelineConfig) ([]string, error) {
	t.SetProgress(0, "Isolating vocals (step 1/2)")

	sepCfg := entity.SeparationConfig{
		Model:        entity.ModelHTDemucs,
		TwoStem:      entity.StemVocals,
		OutputFormat: entity.FormatWAV, // WAV intermediate transcribes better than mp3
	}
	stems, err := s.processor.Separate(context.Background(), job.InputPath, filepath.Join(job.OutputDir, "vocals"), sepCfg,
		func(pct float64, state string) {
			t.SetProgress(pct*0.5, "Isolating vocals ("+state+")")
		})
	if err != nil {
		return nil, err
	}

	vocalsPath := stems["vocals"]
	if vocalsPath == "" {
		return nil, errors.New("failed to isolate vocals")
	}

	t.SetProgress(50, "Generating lyrics (step 2/2)")

	trCfg := entity.TranscriptionConfig{
		Type:     entity.TranscriptionLyrics,
		Format:   entity.TranscriptionLRC,
		Language: cfg.Language,
	}
	outputs, err := s.processor.Transcribe(context.Background(), vocalsPath, job.OutputDir, trCfg,
		func(pct float64, state string) {
			t.SetProgress(50+pct*0.5, "Generating lyrics ("+state+")")
		})
	if err != nil {
		return nil, err
	}

	return append([]string{vocalsPath}, sortedValues(outputs)...), nil
}

// sortedValues flattens an artifact map into a deterministically ordered
// file list.
func sortedValues(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}
