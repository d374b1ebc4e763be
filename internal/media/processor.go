// Package media is the boundary to the actual audio processing tools.
// The scheduler only sees the Processor interface; the shipped
// implementation shells out to the demucs and whisper CLIs.
package media

import (
	"context"

	"muxminus-backend/internal/entity"
)

// ProgressFunc receives progress updates from a running operation.
// Implementations call it synchronously from the processing goroutine, so
// it must not block.
type ProgressFunc func(percent float64, state string)

// Processor performs the expensive part of a job. Both operations return a
// map of artifact name to the produced file path.
type Processor interface {
	Separate(ctx context.Context, inputPath, outputDir string, cfg entity.SeparationConfig, progress ProgressFunc) (map[string]string, error)
	Transcribe(ctx context.Context, inputPath, outputDir string, cfg entity.TranscriptionConfig, progress ProgressFunc) (map[string]string, error)
}

type ModelInfo struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Stems           []string `json:"stems"`
	SupportsTwoStem bool     `json:"supports_two_stem"`
}

var modelCatalog = []ModelInfo{
	{
		Name:            string(entity.ModelHTDemucs),
		Description:     "Hybrid Transformer Demucs - Fast with great quality",
		Stems:           []string{"vocals", "drums", "bass", "other"},
		SupportsTwoStem: true,
	},
	{
		Name:            string(entity.ModelHTDemucsFT),
		Description:     "Fine-tuned Hybrid Transformer - Best quality, 4x slower",
		Stems:           []string{"vocals", "drums", "bass", "other"},
		SupportsTwoStem: true,
	},
	{
		Name:            string(entity.ModelHTDemucs6S),
		Description:     "6-stem model - Includes guitar and piano",
		Stems:           []string{"vocals", "drums", "bass", "guitar", "piano", "other"},
		SupportsTwoStem: true,
	},
}

// Models lists the available separation models.
func Models() []ModelInfo {
	out := make([]ModelInfo, len(modelCatalog))
	copy(out, modelCatalog)
	return out
}

// LookupModel returns the catalog entry for name, if any.
func LookupModel(name string) (ModelInfo, bool) {
	for _, m := range modelCatalog {
		if m.Name == name {
			return m, true
		}
	}
	return ModelInfo{}, false
}
