package session

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/codebuildervaibhav/meeting-recorder/internal/audio"
	"github.com/codebuildervaibhav/meeting-recorder/internal/diarize"
	"github.com/codebuildervaibhav/meeting-recorder/internal/meeting"
	"github.com/codebuildervaibhav/meeting-recorder/internal/transcribe"
)

// Transcriber converts a recording into ordered, timestamped segments.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]transcribe.Segment, error)
}

// Embedder produces a fixed-dimension vector for one audio window.
type Embedder interface {
	Embed(ctx context.Context, samples []float64, sampleRate int) ([]float64, error)
}

// Summarizer produces free text from a transcript. It must degrade rather
// than fail: the returned string is always usable as a summary.
type Summarizer interface {
	Summarize(ctx context.Context, transcript []meeting.TranscriptSegment) string
}

// MeetingSaver persists a completed meeting.
type MeetingSaver interface {
	Save(m *meeting.Meeting) error
}

// Processor runs the post-capture pipeline: read WAV, segment, embed,
// cluster, transcribe, align, summarize, persist. Stages run strictly in
// sequence; any failure before summarization aborts without persisting a
// meeting (the audio artifact stays on disk).
type Processor struct {
	WindowSeconds float64
	MaxSpeakers   int
	Transcriber   Transcriber
	Embedder      Embedder
	Summarizer    Summarizer
	Store         MeetingSaver
	Log           zerolog.Logger
}

// Process turns a finished recording into a stored Meeting, publishing
// progress through publish as stages advance.
func (p *Processor) Process(ctx context.Context, audioPath, title string, startedAt time.Time, publish func(stage, msg string)) (*meeting.Meeting, error) {
	publish("load", "Loading audio file...")
	samples, sampleRate, err := audio.ReadWAV(audioPath)
	if err != nil {
		return nil, fmt.Errorf("loading audio: %w", err)
	}
	var duration float64
	if sampleRate > 0 {
		duration = float64(len(samples)) / float64(sampleRate)
	}

	publish("diarize", "Analyzing speakers...")
	windows := diarize.Windows(len(samples), sampleRate, p.WindowSeconds)

	embeddings := make([][]float64, len(windows))
	for i, w := range windows {
		publish("diarize", fmt.Sprintf("Processing audio... %d%%", i*100/max(len(windows), 1)))
		emb, err := p.Embedder.Embed(ctx, diarize.Extract(samples, w, sampleRate, p.WindowSeconds), sampleRate)
		if err != nil {
			return nil, fmt.Errorf("embedding window %d: %w", i, err)
		}
		embeddings[i] = emb
	}

	publish("diarize", "Identifying speakers...")
	labels := diarize.Labels(diarize.Cluster(embeddings, p.MaxSpeakers))
	speakerWindows := diarize.SpeakerWindows(windows, labels)

	publish("transcribe", "Transcribing audio...")
	segments, err := p.Transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("transcribing: %w", err)
	}

	transcript := diarize.Align(segments, speakerWindows)

	if title == "" {
		title = meeting.DefaultTitle(startedAt)
	}
	m := &meeting.Meeting{
		ID:         meeting.NewID(audioPath, startedAt),
		Title:      title,
		Date:       startedAt,
		Duration:   duration,
		AudioPath:  audioPath,
		Transcript: transcript,
	}

	// Summarization is the one stage allowed to fail: the client degrades
	// to an inline error string and the meeting still completes.
	publish("summarize", "Generating summary...")
	m.Summary = p.Summarizer.Summarize(ctx, transcript)

	publish("persist", "Saving meeting...")
	if err := p.Store.Save(m); err != nil {
		return nil, fmt.Errorf("saving meeting: %w", err)
	}

	p.Log.Info().
		Str("meeting_id", m.ID).
		Int("segments", len(transcript)).
		Int("windows", len(windows)).
		Float64("duration", duration).
		Msg("pipeline completed")
	return m, nil
}
