// Package meeting defines the persistent meeting record and its transcript.
package meeting

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// TranscriptSegment is one speaker-attributed span of the transcript.
// Segments are immutable once produced and ordered by StartTime.
// Confidence is the ASR average log-probability, not a 0-1 score.
type TranscriptSegment struct {
	Speaker    string  `json:"speaker"`
	Text       string  `json:"text"`
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
	Confidence float64 `json:"confidence"`
}

// Meeting is a fully processed recording: transcript, summary, and tags.
// A Meeting is created once at the end of the pipeline; only Summary and
// Tags change afterwards.
type Meeting struct {
	ID        string              `json:"id"`
	Title     string              `json:"title"`
	Date      time.Time           `json:"date"`
	Duration  float64             `json:"duration"`
	AudioPath string              `json:"audio_path"`
	Transcript []TranscriptSegment `json:"transcript"`
	Summary   string              `json:"summary,omitempty"`
	Tags      []string            `json:"tags"`
}

// NewID derives a stable meeting ID from the audio artifact path and the
// creation instant. The pair is unique per recording, so the hash is a
// usable primary key.
func NewID(audioPath string, at time.Time) string {
	sum := sha256.Sum256([]byte(audioPath + at.Format(time.RFC3339Nano)))
	return hex.EncodeToString(sum[:])
}

// DefaultTitle names untitled meetings after their start time.
func DefaultTitle(at time.Time) string {
	return "Meeting " + at.Format("2006-01-02 15:04")
}
