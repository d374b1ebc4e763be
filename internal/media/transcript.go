package media

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"muxminus-backend/internal/entity"
)

type whisperSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type whisperResult struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Segments []whisperSegment `json:"segments"`
}

func loadWhisperResult(path string) (*whisperResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read whisper output: %w", err)
	}
	var res whisperResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("parse whisper output: %w", err)
	}
	return &res, nil
}

// writeTranscript renders the whisper result into the requested artifact.
// The returned map keys the artifact by its role (transcription, subtitles,
// lyrics), matching what downstream consumers expect.
func writeTranscript(res *whisperResult, outputDir string, cfg entity.TranscriptionConfig) (map[string]string, error) {
	var (
		key  string
		name string
		body string
	)

	switch cfg.Type {
	case entity.TranscriptionSubtitles:
		key = "subtitles"
		name = "subtitles." + string(cfg.Format)
	case entity.TranscriptionLyrics:
		key = "lyrics"
		name = "lyrics." + string(cfg.Format)
	default:
		key = "transcription"
		name = "transcription." + string(cfg.Format)
	}

	switch cfg.Format {
	case entity.TranscriptionTXT:
		if cfg.Type == entity.TranscriptionBasic {
			body = strings.TrimSpace(res.Text) + "\n"
		} else {
			body = renderTimestampedText(res.Segments)
		}
	case entity.TranscriptionSRT:
		body = renderSRT(res.Segments)
	case entity.TranscriptionVTT:
		body = renderVTT(res.Segments)
	case entity.TranscriptionLRC:
		body = renderLRC(res.Segments)
	case entity.TranscriptionJSON:
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return nil, err
		}
		body = string(data) + "\n"
	default:
		return nil, fmt.Errorf("%w: unsupported transcription format %q", entity.ErrInvalidConfig, cfg.Format)
	}

	path := filepath.Join(outputDir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return nil, fmt.Errorf("write transcript: %w", err)
	}
	return map[string]string{key: path}, nil
}

func renderTimestampedText(segs []whisperSegment) string {
	var b strings.Builder
	for _, s := range segs {
		fmt.Fprintf(&b, "[%s] %s\n", srtTimestamp(s.Start), strings.TrimSpace(s.Text))
	}
	return b.String()
}

func renderSRT(segs []whisperSegment) string {
	var b strings.Builder
	for i, s := range segs {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			i+1, srtTimestamp(s.Start), srtTimestamp(s.End), strings.TrimSpace(s.Text))
	}
	return b.String()
}

func renderVTT(segs []whisperSegment) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, s := range segs {
		fmt.Fprintf(&b, "%s --> %s\n%s\n\n",
			vttTimestamp(s.Start), vttTimestamp(s.End), strings.TrimSpace(s.Text))
	}
	return b.String()
}

func renderLRC(segs []whisperSegment) string {
	var b strings.Builder
	for _, s := range segs {
		fmt.Fprintf(&b, "%s%s\n", lrcTimestamp(s.Start), strings.TrimSpace(s.Text))
	}
	return b.String()
}

// srtTimestamp formats seconds as HH:MM:SS,mmm.
func srtTimestamp(seconds float64) string {
	millis := int(seconds*1000 + 0.5)
	h := millis / 3600000
	m := millis % 3600000 / 60000
	s := millis % 60000 / 1000
	ms := millis % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// vttTimestamp formats seconds as HH:MM:SS.mmm.
func vttTimestamp(seconds float64) string {
	return strings.Replace(srtTimestamp(seconds), ",", ".", 1)
}

// lrcTimestamp formats seconds as [MM:SS.xx].
func lrcTimestamp(seconds float64) string {
	m := int(seconds) / 60
	s := seconds - float64(m*60)
	return fmt.Sprintf("[%02d:%05.2f]", m, s)
}
