package diarize

import (
	"strings"

	"github.com/codebuildervaibhav/meeting-recorder/internal/meeting"
	"github.com/codebuildervaibhav/meeting-recorder/internal/transcribe"
)

// UnknownSpeaker labels transcript segments whose midpoint falls outside
// every speaker window.
const UnknownSpeaker = "Unknown"

// SpeakerWindow pairs a window with its speaker label.
type SpeakerWindow struct {
	Window
	Label string
}

// SpeakerWindows zips windows with their cluster labels.
func SpeakerWindows(windows []Window, labels []string) []SpeakerWindow {
	out := make([]SpeakerWindow, len(windows))
	for i, w := range windows {
		out[i] = SpeakerWindow{Window: w, Label: labels[i]}
	}
	return out
}

// Align attributes each ASR segment to the speaker of the first window
// containing the segment's temporal midpoint. Segments outside every
// window are labeled Unknown; no segment is ever dropped.
func Align(segments []transcribe.Segment, windows []SpeakerWindow) []meeting.TranscriptSegment {
	out := make([]meeting.TranscriptSegment, 0, len(segments))
	for _, seg := range segments {
		mid := (seg.Start + seg.End) / 2

		speaker := UnknownSpeaker
		for _, w := range windows {
			if w.Start <= mid && mid <= w.End {
				speaker = w.Label
				break
			}
		}

		out = append(out, meeting.TranscriptSegment{
			Speaker:    speaker,
			Text:       strings.TrimSpace(seg.Text),
			StartTime:  seg.Start,
			EndTime:    seg.End,
			Confidence: seg.AvgLogprob,
		})
	}
	return out
}
