package media

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"muxminus-backend/internal/entity"
)

func TestDemucsArgs(t *testing.T) {
	p := NewCLIProcessor("cpu", 320)

	args := p.demucsArgs(entity.SeparationConfig{
		Model:        entity.ModelHTDemucs,
		OutputFormat: entity.FormatMP3,
	}, "/out", "/in/song.mp3")

	want := []string{"-n", "htdemucs", "-d", "cpu", "--mp3", "--mp3-bitrate", "320", "-o", "/out", "/in/song.mp3"}
	if !reflect.DeepEqual(args, want) {
		t.Fatalf("expected %v, got %v", want, args)
	}
}

func TestDemucsArgs_TwoStemWAV(t *testing.T) {
	p := NewCLIProcessor("cuda", 320)

	args := p.demucsArgs(entity.SeparationConfig{
		Model:        entity.ModelHTDemucs,
		TwoStem:      entity.StemVocals,
		OutputFormat: entity.FormatWAV,
	}, "/out", "/in/song.mp3")

	joined := strings.Join(args, " ")
	if strings.Contains(joined, "--mp3") {
		t.Fatalf("wav output must not pass --mp3: %v", args)
	}
	if !strings.Contains(joined, "--two-stems vocals") {
		t.Fatalf("expected two-stems flag: %v", args)
	}
	if !strings.Contains(joined, "-d cuda") {
		t.Fatalf("expected device flag: %v", args)
	}
}

func TestWhisperArgs(t *testing.T) {
	p := NewCLIProcessor("cpu", 320)

	args := p.whisperArgs(entity.TranscriptionConfig{
		Type:     entity.TranscriptionLyrics,
		Format:   entity.TranscriptionLRC,
		Language: "en",
	}, "/out", "/in/vocals.wav")

	joined := strings.Join(args, " ")
	for _, want := range []string{"--model base", "--output_format json", "--language en", "--word_timestamps True"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in args %v", want, args)
		}
	}
}

func TestWhisperArgs_BasicNoTimestamps(t *testing.T) {
	p := NewCLIProcessor("cpu", 320)

	args := p.whisperArgs(entity.TranscriptionConfig{
		Type:   entity.TranscriptionBasic,
		Format: entity.TranscriptionTXT,
	}, "/out", "/in/a.mp3")

	joined := strings.Join(args, " ")
	if strings.Contains(joined, "--word_timestamps") {
		t.Fatalf("basic transcription must not request word timestamps: %v", args)
	}
	if strings.Contains(joined, "--language") {
		t.Fatalf("empty language must mean auto-detect: %v", args)
	}
}

func TestCollectStems(t *testing.T) {
	dir := t.TempDir()
	trackDir := filepath.Join(dir, "htdemucs", "song")
	if err := os.MkdirAll(trackDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"vocals.mp3", "drums.mp3"} {
		if err := os.WriteFile(filepath.Join(trackDir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	stems, err := collectStems(dir, "htdemucs", "mp3")
	if err != nil {
		t.Fatalf("collectStems: %v", err)
	}
	if len(stems) != 2 {
		t.Fatalf("expected 2 stems, got %v", stems)
	}
	if !strings.HasSuffix(stems["vocals"], "vocals.mp3") {
		t.Fatalf("unexpected vocals path %q", stems["vocals"])
	}
}

func TestCollectStems_Empty(t *testing.T) {
	if _, err := collectStems(t.TempDir(), "htdemucs", "mp3"); err == nil {
		t.Fatal("expected error when no stems were produced")
	}
}

func TestLookupModel(t *testing.T) {
	info, ok := LookupModel("htdemucs_6s")
	if !ok {
		t.Fatal("expected htdemucs_6s in catalog")
	}
	if len(info.Stems) != 6 {
		t.Fatalf("expected 6 stems, got %v", info.Stems)
	}
	if _, ok := LookupModel("mdx23"); ok {
		t.Fatal("expected unknown model to miss")
	}
}
