package store_test

import (
	"errors"
	"testing"

	"muxminus-backend/internal/entity"
	"muxminus-backend/internal/store"
)

func newJob(id string) entity.Job {
	return entity.Job{
		ID:     id,
		Kind:   entity.KindSeparation,
		Status: entity.StatusQueued,
		Config: entity.SeparationConfig{Model: entity.ModelHTDemucs, OutputFormat: entity.FormatMP3},
	}
}

func TestStore_InsertRejectsDuplicate(t *testing.T) {
	s := store.New()

	if _, err := s.Insert(newJob("j1")); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if _, err := s.Insert(newJob("j1")); !errors.Is(err, store.ErrDuplicateJob) {
		t.Fatalf("expected ErrDuplicateJob, got %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 job in store, got %d", s.Len())
	}
}

func TestStore_GetUnknown(t *testing.T) {
	s := store.New()
	if _, err := s.Get("nope"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_SnapshotSeesWorkerWrites(t *testing.T) {
	s := store.New()
	tr, err := s.Insert(newJob("j1"))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	tr.MarkProcessing("Starting job")
	tr.SetProgress(42, "Separating (running)")

	got, err := s.Get("j1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != entity.StatusProcessing {
		t.Fatalf("expected processing, got %s", got.Status)
	}
	if got.Progress != 42 {
		t.Fatalf("expected progress=42, got %v", got.Progress)
	}
	if got.CurrentStep != "Separating (running)" {
		t.Fatalf("unexpected step %q", got.CurrentStep)
	}
	if got.StartedAt.IsZero() {
		t.Fatal("expected started_at to be set")
	}
}

func TestStore_ProgressClamped(t *testing.T) {
	s := store.New()
	tr, _ := s.Insert(newJob("j1"))

	tr.SetProgress(-5, "")
	if got, _ := s.Get("j1"); got.Progress != 0 {
		t.Fatalf("expected progress clamped to 0, got %v", got.Progress)
	}
	tr.SetProgress(150, "")
	if got, _ := s.Get("j1"); got.Progress != 100 {
		t.Fatalf("expected progress clamped to 100, got %v", got.Progress)
	}
}

func TestStore_CompleteFinalizes(t *testing.T) {
	s := store.New()
	tr, _ := s.Insert(newJob("j1"))
	tr.MarkProcessing("Starting job")
	tr.Complete([]string{"out/vocals.mp3"})

	got, _ := s.Get("j1")
	if got.Status != entity.StatusCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}
	if got.Progress != 100 {
		t.Fatalf("expected progress=100, got %v", got.Progress)
	}
	if len(got.OutputFiles) != 1 {
		t.Fatalf("expected one output file, got %v", got.OutputFiles)
	}
	if got.CompletedAt.IsZero() {
		t.Fatal("expected completed_at to be set")
	}
}

func TestStore_FailFinalizes(t *testing.T) {
	s := store.New()
	tr, _ := s.Insert(newJob("j1"))
	tr.MarkProcessing("Starting job")
	tr.Fail("disk full")

	got, _ := s.Get("j1")
	if got.Status != entity.StatusFailed {
		t.Fatalf("expected failed, got %s", got.Status)
	}
	if got.ErrorMsg != "disk full" {
		t.Fatalf("expected error message, got %q", got.ErrorMsg)
	}
	if len(got.OutputFiles) != 0 {
		t.Fatalf("expected no output files, got %v", got.OutputFiles)
	}
}

func TestStore_RemoveOnlyTerminal(t *testing.T) {
	s := store.New()
	tr, _ := s.Insert(newJob("j1"))

	if err := s.Remove("j1"); !errors.Is(err, store.ErrNotTerminal) {
		t.Fatalf("expected ErrNotTerminal for queued job, got %v", err)
	}

	tr.MarkProcessing("Starting job")
	if err := s.Remove("j1"); !errors.Is(err, store.ErrNotTerminal) {
		t.Fatalf("expected ErrNotTerminal for processing job, got %v", err)
	}

	tr.Complete(nil)
	if err := s.Remove("j1"); err != nil {
		t.Fatalf("expected removal of completed job, got %v", err)
	}
	if _, err := s.Get("j1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after removal, got %v", err)
	}

	if err := s.Remove("j1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestStore_List(t *testing.T) {
	s := store.New()
	s.Insert(newJob("a"))
	s.Insert(newJob("b"))

	jobs := s.List()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
}
