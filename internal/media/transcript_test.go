package media

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"muxminus-backend/internal/entity"
)

var testSegments = []whisperSegment{
	{Start: 0.5, End: 2.25, Text: " Hello world"},
	{Start: 62.04, End: 65.5, Text: " second line "},
}

func TestSRTTimestamp(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "00:00:00,000"},
		{1.5, "00:00:01,500"},
		{62.04, "00:01:02,040"},
		{3661.007, "01:01:01,007"},
	}
	for _, c := range cases {
		if got := srtTimestamp(c.in); got != c.want {
			t.Fatalf("srtTimestamp(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestLRCTimestamp(t *testing.T) {
	if got := lrcTimestamp(62.04); got != "[01:02.04]" {
		t.Fatalf("lrcTimestamp = %q", got)
	}
	if got := lrcTimestamp(0); got != "[00:00.00]" {
		t.Fatalf("lrcTimestamp(0) = %q", got)
	}
}

func TestRenderSRT(t *testing.T) {
	out := renderSRT(testSegments)
	if !strings.Contains(out, "1\n00:00:00,500 --> 00:00:02,250\nHello world\n") {
		t.Fatalf("unexpected srt output:\n%s", out)
	}
	if !strings.Contains(out, "2\n00:01:02,040 --> 00:01:05,500\nsecond line\n") {
		t.Fatalf("unexpected srt output:\n%s", out)
	}
}

func TestRenderVTT(t *testing.T) {
	out := renderVTT(testSegments)
	if !strings.HasPrefix(out, "WEBVTT\n\n") {
		t.Fatalf("vtt output missing header:\n%s", out)
	}
	if !strings.Contains(out, "00:00:00.500 --> 00:00:02.250") {
		t.Fatalf("unexpected vtt output:\n%s", out)
	}
}

func TestRenderLRC(t *testing.T) {
	out := renderLRC(testSegments)
	want := "[00:00.50]Hello world\n[01:02.04]second line\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestWriteTranscript_Basic(t *testing.T) {
	dir := t.TempDir()
	res := &whisperResult{Text: "  Hello world  ", Segments: testSegments, Language: "en"}

	files, err := writeTranscript(res, dir, entity.TranscriptionConfig{
		Type:   entity.TranscriptionBasic,
		Format: entity.TranscriptionTXT,
	})
	if err != nil {
		t.Fatalf("writeTranscript: %v", err)
	}

	path := files["transcription"]
	if filepath.Base(path) != "transcription.txt" {
		t.Fatalf("unexpected file name %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Hello world\n" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestWriteTranscript_Lyrics(t *testing.T) {
	dir := t.TempDir()
	res := &whisperResult{Segments: testSegments}

	files, err := writeTranscript(res, dir, entity.TranscriptionConfig{
		Type:   entity.TranscriptionLyrics,
		Format: entity.TranscriptionLRC,
	})
	if err != nil {
		t.Fatalf("writeTranscript: %v", err)
	}

	path := files["lyrics"]
	if filepath.Base(path) != "lyrics.lrc" {
		t.Fatalf("unexpected file name %q", path)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "[00:00.50]Hello world") {
		t.Fatalf("unexpected lyrics content %q", data)
	}
}

func TestWriteTranscript_Subtitles(t *testing.T) {
	dir := t.TempDir()
	res := &whisperResult{Segments: testSegments}

	files, err := writeTranscript(res, dir, entity.TranscriptionConfig{
		Type:   entity.TranscriptionSubtitles,
		Format: entity.TranscriptionSRT,
	})
	if err != nil {
		t.Fatalf("writeTranscript: %v", err)
	}
	if filepath.Base(files["subtitles"]) != "subtitles.srt" {
		t.Fatalf("unexpected file name %q", files["subtitles"])
	}
}
