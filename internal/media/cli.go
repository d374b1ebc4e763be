package media

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"muxminus-backend/internal/entity"
)

// CLIProcessor runs demucs and whisper through their command-line
// interfaces. demucs 4.x has no stable Python-free API either, so the CLI
// is the supported integration path.
type CLIProcessor struct {
	DemucsBin    string
	WhisperBin   string
	WhisperModel string
	Device       string
	MP3Bitrate   int
}

func NewCLIProcessor(device string, mp3Bitrate int) *CLIProcessor {
	return &CLIProcessor{
		DemucsBin:    "demucs",
		WhisperBin:   "whisper",
		WhisperModel: "base",
		Device:       device,
		MP3Bitrate:   mp3Bitrate,
	}
}

var percentRe = regexp.MustCompile(`(\d{1,3})%`)

func (p *CLIProcessor) Separate(ctx context.Context, inputPath, outputDir string, cfg entity.SeparationConfig, progress ProgressFunc) (map[string]string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	args := p.demucsArgs(cfg, outputDir, inputPath)
	cmd := exec.CommandContext(ctx, p.DemucsBin, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("demucs stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("demucs start: %w", err)
	}

	// demucs writes its progress bar to stderr; the bar is \r-terminated.
	var lastLine string
	sc := bufio.NewScanner(stderr)
	sc.Split(scanCRLF)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		lastLine = line
		if progress != nil {
			if m := percentRe.FindStringSubmatch(line); m != nil {
				pct, _ := strconv.ParseFloat(m[1], 64)
				progress(pct, "separating")
			}
		}
	}

	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("demucs failed: %v | %s", err, lastLine)
	}

	return collectStems(outputDir, string(cfg.Model), string(cfg.OutputFormat))
}

func (p *CLIProcessor) demucsArgs(cfg entity.SeparationConfig, outputDir, inputPath string) []string {
	args := []string{"-n", string(cfg.Model), "-d", p.Device}
	if cfg.OutputFormat == entity.FormatMP3 {
		args = append(args, "--mp3", "--mp3-bitrate", strconv.Itoa(p.MP3Bitrate))
	}
	if cfg.TwoStem != "" {
		args = append(args, "--two-stems", string(cfg.TwoStem))
	}
	args = append(args, "-o", outputDir, inputPath)
	return args
}

// collectStems finds the per-stem files demucs wrote under
// outputDir/<model>/<track>/.
func collectStems(outputDir, model, ext string) (map[string]string, error) {
	pattern := filepath.Join(outputDir, model, "*", "*."+ext)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no output stems produced under %s", outputDir)
	}
	stems := make(map[string]string, len(matches))
	for _, m := range matches {
		name := strings.TrimSuffix(filepath.Base(m), filepath.Ext(m))
		stems[name] = m
	}
	return stems, nil
}

func (p *CLIProcessor) Transcribe(ctx context.Context, inputPath, outputDir string, cfg entity.TranscriptionConfig, progress ProgressFunc) (map[string]string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	report := func(pct float64, state string) {
		if progress != nil {
			progress(pct, state)
		}
	}
	report(10, "loading_model")

	args := p.whisperArgs(cfg, outputDir, inputPath)
	cmd := exec.CommandContext(ctx, p.WhisperBin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	report(20, "transcribing")
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("whisper failed: %v | %s", err, strings.TrimSpace(stderr.String()))
	}

	report(70, "formatting")

	// whisper emits <input base>.json next to the other outputs; everything
	// the caller asked for is rendered from that.
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	result, err := loadWhisperResult(filepath.Join(outputDir, base+".json"))
	if err != nil {
		return nil, err
	}

	files, err := writeTranscript(result, outputDir, cfg)
	if err != nil {
		return nil, err
	}

	report(100, "completed")
	return files, nil
}

func (p *CLIProcessor) whisperArgs(cfg entity.TranscriptionConfig, outputDir, inputPath string) []string {
	args := []string{
		inputPath,
		"--model", p.WhisperModel,
		"--device", p.Device,
		"--output_dir", outputDir,
		"--output_format", "json",
		"--verbose", "False",
	}
	if cfg.Language != "" {
		args = append(args, "--language", cfg.Language)
	}
	if cfg.Type != entity.TranscriptionBasic {
		args = append(args, "--word_timestamps", "True")
	}
	return args
}

// scanCRLF splits on \n or \r so progress-bar rewrites show up as lines.
func scanCRLF(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
