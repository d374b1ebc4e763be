package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"muxminus-backend/internal/entity"
	"muxminus-backend/internal/media"
	"muxminus-backend/internal/queue"
	"muxminus-backend/internal/store"
)

const Version = "1.0.0"

// Archive is the read side of the terminal-job mirror; pollers fall back
// to it for jobs already removed from the live registry.
type Archive interface {
	Get(ctx context.Context, jobID string) (entity.Job, error)
}

type Handler struct {
	sched      *queue.Scheduler
	archive    Archive // optional
	uploadsDir string
	device     string
}

func NewHandler(sched *queue.Scheduler, arch Archive, uploadsDir, device string) *Handler {
	return &Handler{sched: sched, archive: arch, uploadsDir: uploadsDir, device: device}
}

type createSeparationDTO struct {
	JobID        string `json:"job_id,omitempty"` // generated when empty
	InputPath    string `json:"input_path"`
	Model        string `json:"model,omitempty"`
	TwoStem      string `json:"two_stem,omitempty"`
	OutputFormat string `json:"output_format,omitempty"`
}

type createTranscriptionDTO struct {
	JobID     string `json:"job_id,omitempty"`
	InputPath string `json:"input_path"`
	Type      string `json:"type,omitempty"`
	Format    string `json:"format,omitempty"`
	Language  string `json:"language,omitempty"`
}

type createLyricsDTO struct {
	JobID     string `json:"job_id,omitempty"`
	InputPath string `json:"input_path"`
	Language  string `json:"language,omitempty"`
}

type healthResp struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	Device     string `json:"device"`
	QueueSize  int    `json:"queue_size"`
	ActiveJobs int    `json:"active_jobs"`
}

// submit resolves the input path and pushes the job through the scheduler,
// translating admission errors to status codes.
func (h *Handler) submit(w http.ResponseWriter, jobID, inputPath string, cfg entity.JobConfig) {
	if inputPath == "" {
		writeErr(w, http.StatusBadRequest, "input_path is required")
		return
	}
	if jobID == "" {
		jobID = uuid.NewString()
	}

	fullInput := filepath.Join(h.uploadsDir, inputPath)
	if _, err := os.Stat(fullInput); err != nil {
		writeErr(w, http.StatusNotFound, "input file not found: "+inputPath)
		return
	}

	job, err := h.sched.Submit(queue.SubmitRequest{
		ID:        jobID,
		InputPath: fullInput,
		Config:    cfg,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateJob):
			writeErr(w, http.StatusConflict, "job "+jobID+" already exists")
		case errors.Is(err, queue.ErrQueueFull):
			writeErr(w, http.StatusServiceUnavailable, "job queue is full, try again later")
		case errors.Is(err, entity.ErrInvalidConfig):
			writeErr(w, http.StatusBadRequest, err.Error())
		default:
			writeErr(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, job)
}

// CreateSeparationJob godoc
// @Summary Submit a separation job
// @Description Queues the input file for stem separation. Poll GET /jobs/{id} for progress and results.
// @Tags jobs
// @Accept json
// @Produce json
// @Param request body createSeparationDTO true "job payload"
// @Success 201 {object} entity.Job
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Failure 409 {object} apiError
// @Failure 503 {object} apiError
// @Router /jobs [post]
func (h *Handler) CreateSeparationJob(w http.ResponseWriter, r *http.Request) {
	var dto createSeparationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	cfg := entity.SeparationConfig{
		Model:        entity.Model(dto.Model),
		TwoStem:      entity.Stem(dto.TwoStem),
		OutputFormat: entity.AudioFormat(dto.OutputFormat),
	}
	if cfg.Model == "" {
		cfg.Model = entity.ModelHTDemucs
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = entity.FormatMP3
	}

	h.submit(w, dto.JobID, dto.InputPath, cfg)
}

// CreateTranscriptionJob godoc
// @Summary Submit a transcription job
// @Tags jobs
// @Accept json
// @Produce json
// @Param request body createTranscriptionDTO true "job payload"
// @Success 201 {object} entity.Job
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Failure 409 {object} apiError
// @Failure 503 {object} apiError
// @Router /transcribe [post]
func (h *Handler) CreateTranscriptionJob(w http.ResponseWriter, r *http.Request) {
	var dto createTranscriptionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	cfg := entity.TranscriptionConfig{
		Type:     entity.TranscriptionType(dto.Type),
		Format:   entity.TranscriptionFormat(dto.Format),
		Language: dto.Language,
	}
	if cfg.Type == "" {
		cfg.Type = entity.TranscriptionBasic
	}
	if cfg.Format == "" {
		cfg.Format = entity.TranscriptionTXT
	}

	h.submit(w, dto.JobID, dto.InputPath, cfg)
}

// CreateLyricsJob godoc
// @Summary Submit a lyrics pipeline job
// @Description Isolates vocals with htdemucs, then transcribes them to an LRC lyrics file.
// @Tags jobs
// @Accept json
// @Produce json
// @Param request body createLyricsDTO true "job payload"
// @Success 201 {object} entity.Job
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Failure 409 {object} apiError
// @Failure 503 {object} apiError
// @Router /lyrics [post]
func (h *Handler) CreateLyricsJob(w http.ResponseWriter, r *http.Request) {
	var dto createLyricsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	h.submit(w, dto.JobID, dto.InputPath, entity.PipelineConfig{Language: dto.Language})
}

// GetJob godoc
// @Summary Get job status
// @Tags jobs
// @Produce json
// @Param id path string true "job id"
// @Success 200 {object} entity.Job
// @Failure 404 {object} apiError
// @Router /jobs/{id} [get]
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	job, err := h.sched.GetJob(id)
	if err != nil {
		if h.archive != nil {
			if archived, aerr := h.archive.Get(r.Context(), id); aerr == nil {
				writeJSON(w, http.StatusOK, archived)
				return
			}
		}
		writeErr(w, http.StatusNotFound, "job "+id+" not found")
		return
	}

	writeJSON(w, http.StatusOK, job)
}

// ListJobs godoc
// @Summary List all tracked jobs
// @Tags jobs
// @Produce json
// @Success 200 {array} entity.Job
// @Router /jobs [get]
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sched.ListJobs())
}

// DeleteJob godoc
// @Summary Remove a terminal job from tracking
// @Description Output files on disk are not deleted.
// @Tags jobs
// @Produce json
// @Param id path string true "job id"
// @Success 200 {object} map[string]string
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Router /jobs/{id} [delete]
func (h *Handler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.sched.RemoveJob(id); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeErr(w, http.StatusNotFound, "job "+id+" not found")
		case errors.Is(err, store.ErrNotTerminal):
			writeErr(w, http.StatusBadRequest, "job "+id+" is still queued or processing")
		default:
			writeErr(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"job_id": id, "status": "removed"})
}

// QueueStatus godoc
// @Summary Queue capacity and load
// @Tags queue
// @Produce json
// @Success 200 {object} queue.Status
// @Router /queue/status [get]
func (h *Handler) QueueStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sched.QueueStatus())
}

// Health godoc
// @Summary Service health
// @Tags health
// @Produce json
// @Success 200 {object} healthResp
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResp{
		Status:     "healthy",
		Version:    Version,
		Device:     h.device,
		QueueSize:  h.sched.QueueSize(),
		ActiveJobs: h.sched.ActiveCount(),
	})
}

// ListModels godoc
// @Summary List available separation models
// @Tags models
// @Produce json
// @Success 200 {array} media.ModelInfo
// @Router /models [get]
func (h *Handler) ListModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, media.Models())
}

// GetModel godoc
// @Summary Get one separation model
// @Tags models
// @Produce json
// @Param name path string true "model name"
// @Success 200 {object} media.ModelInfo
// @Failure 404 {object} apiError
// @Router /models/{name} [get]
func (h *Handler) GetModel(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	info, ok := media.LookupModel(name)
	if !ok {
		writeErr(w, http.StatusNotFound, "model "+name+" not found")
		return
	}
	writeJSON(w, http.StatusOK, info)
}
