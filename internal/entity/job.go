package entity

import "time"

type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

type JobKind string

const (
	KindSeparation    JobKind = "separation"
	KindTranscription JobKind = "transcription"
	KindPipeline      JobKind = "lyrics_pipeline"
)

type Job struct {
	ID          string    `json:"job_id"`
	Kind        JobKind   `json:"job_type"`
	InputPath   string    `json:"-"`
	OutputDir   string    `json:"-"`
	Config      JobConfig `json:"-"`
	Status      JobStatus `json:"status"`
	Progress    float64   `json:"progress"`
	CurrentStep string    `json:"current_step"`
	OutputFiles []string  `json:"output_files"`
	ErrorMsg    string    `json:"error_message,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	StartedAt   time.Time `json:"started_at,omitzero"`
	CompletedAt time.Time `json:"completed_at,omitzero"`
	// Seconds between dequeue and terminal transition.
	ProcessingTime float64 `json:"processing_time,omitempty"`
}
