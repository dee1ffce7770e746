// Package transcribe wraps the external Whisper ASR as a narrow contract:
// audio file in, timestamped segments out.
package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Segment is one timestamped span of ASR output. AvgLogprob is the model's
// average log-probability for the span, carried through as confidence.
type Segment struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	AvgLogprob float64 `json:"avg_logprob"`
}

// WhisperTranscriber runs Python Whisper via `python -m whisper` and parses
// its JSON output.
type WhisperTranscriber struct {
	model    string
	language string
	tempDir  string
	log      zerolog.Logger
}

// NewWhisperTranscriber creates a transcriber using the named Whisper model
// (tiny, base, small, medium, large).
func NewWhisperTranscriber(model, language, tempDir string, log zerolog.Logger) *WhisperTranscriber {
	return &WhisperTranscriber{
		model:    model,
		language: language,
		tempDir:  tempDir,
		log:      log.With().Str("component", "whisper").Logger(),
	}
}

// Transcribe processes an audio file and returns its segments in order.
func (wt *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) ([]Segment, error) {
	outDir, err := os.MkdirTemp(wt.tempDir, "whisper_output_")
	if err != nil {
		return nil, fmt.Errorf("creating whisper output dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	absPath, err := filepath.Abs(audioPath)
	if err != nil {
		return nil, fmt.Errorf("resolving audio path: %w", err)
	}

	cmd := exec.CommandContext(ctx, "python", "-m", "whisper",
		absPath,
		"--model", wt.model,
		"--output_dir", outDir,
		"--output_format", "json",
		"--language", wt.language,
		"--fp16", "False",
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("whisper transcription failed: %w\noutput: %s", err, string(output))
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	jsonPath := filepath.Join(outDir, baseName+".json")
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("reading whisper output: %w", err)
	}

	segments, err := ParseOutput(data)
	if err != nil {
		return nil, err
	}
	wt.log.Info().Int("segments", len(segments)).Str("audio", audioPath).Msg("transcription completed")
	return segments, nil
}

// whisperOutput matches Python Whisper's JSON output format.
type whisperOutput struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		ID         int     `json:"id"`
		Start      float64 `json:"start"`
		End        float64 `json:"end"`
		Text       string  `json:"text"`
		AvgLogprob float64 `json:"avg_logprob"`
	} `json:"segments"`
}

// ParseOutput decodes Whisper's JSON file into ordered segments.
func ParseOutput(data []byte) ([]Segment, error) {
	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parsing whisper JSON: %w", err)
	}

	segments := make([]Segment, len(out.Segments))
	for i, seg := range out.Segments {
		segments[i] = Segment{
			Start:      seg.Start,
			End:        seg.End,
			Text:       strings.TrimSpace(seg.Text),
			AvgLogprob: seg.AvgLogprob,
		}
	}
	return segments, nil
}
