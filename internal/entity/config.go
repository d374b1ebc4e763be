package entity

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every validation failure so callers can
// match the whole class with errors.Is.
var ErrInvalidConfig = errors.New("invalid job config")

type Model string

const (
	ModelHTDemucs   Model = "htdemucs"
	ModelHTDemucsFT Model = "htdemucs_ft"
	ModelHTDemucs6S Model = "htdemucs_6s"
)

type Stem string

const (
	StemVocals Stem = "vocals"
	StemDrums  Stem = "drums"
	StemBass   Stem = "bass"
)

type AudioFormat string

const (
	FormatMP3 AudioFormat = "mp3"
	FormatWAV AudioFormat = "wav"
)

type TranscriptionType string

const (
	TranscriptionBasic       TranscriptionType = "basic"
	TranscriptionTimestamped TranscriptionType = "timestamped"
	TranscriptionSubtitles   TranscriptionType = "subtitles"
	TranscriptionLyrics      TranscriptionType = "lyrics"
)

type TranscriptionFormat string

const (
	TranscriptionTXT  TranscriptionFormat = "txt"
	TranscriptionSRT  TranscriptionFormat = "srt"
	TranscriptionVTT  TranscriptionFormat = "vtt"
	TranscriptionLRC  TranscriptionFormat = "lrc"
	TranscriptionJSON TranscriptionFormat = "json"
)

// JobConfig is the kind-specific half of a Job. Each kind carries only its
// own parameters, so a separation job cannot hold a transcription language
// and vice versa.
type JobConfig interface {
	Kind() JobKind
	Validate() error
}

type SeparationConfig struct {
	Model        Model       `json:"model"`
	TwoStem      Stem        `json:"two_stem,omitempty"` // empty = full 4/6-stem split
	OutputFormat AudioFormat `json:"output_format"`
}

func (SeparationConfig) Kind() JobKind { return KindSeparation }

func (c SeparationConfig) Validate() error {
	switch c.Model {
	case ModelHTDemucs, ModelHTDemucsFT, ModelHTDemucs6S:
	default:
		return fmt.Errorf("%w: unsupported model %q", ErrInvalidConfig, c.Model)
	}
	switch c.TwoStem {
	case "", StemVocals, StemDrums, StemBass:
	default:
		return fmt.Errorf("%w: unsupported stem %q", ErrInvalidConfig, c.TwoStem)
	}
	switch c.OutputFormat {
	case FormatMP3, FormatWAV:
	default:
		return fmt.Errorf("%w: unsupported output format %q", ErrInvalidConfig, c.OutputFormat)
	}
	return nil
}

type TranscriptionConfig struct {
	Type     TranscriptionType   `json:"type"`
	Format   TranscriptionFormat `json:"format"`
	Language string              `json:"language,omitempty"` // empty = auto-detect
}

func (TranscriptionConfig) Kind() JobKind { return KindTranscription }

func (c TranscriptionConfig) Validate() error {
	switch c.Type {
	case TranscriptionBasic, TranscriptionTimestamped, TranscriptionSubtitles, TranscriptionLyrics:
	default:
		return fmt.Errorf("%w: unsupported transcription type %q", ErrInvalidConfig, c.Type)
	}
	switch c.Format {
	case TranscriptionTXT, TranscriptionSRT, TranscriptionVTT, TranscriptionLRC, TranscriptionJSON:
	default:
		return fmt.Errorf("%w: unsupported transcription format %q", ErrInvalidConfig, c.Format)
	}
	return nil
}

// PipelineConfig drives the two-phase lyrics job: htdemucs vocal isolation
// followed by LRC transcription of the isolated vocals. Everything except the
// language is fixed by the pipeline itself.
type PipelineConfig struct {
	Language string `json:"language,omitempty"`
}

func (PipelineConfig) Kind() JobKind { return KindPipeline }

func (PipelineConfig) Validate() error { return nil }
