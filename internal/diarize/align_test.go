package diarize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codebuildervaibhav/meeting-recorder/internal/transcribe"
)

func speakerWindows() []SpeakerWindow {
	return []SpeakerWindow{
		{Window: Window{Start: 0, End: 3}, Label: "Speaker_1"},
		{Window: Window{Start: 3, End: 6}, Label: "Speaker_2"},
		{Window: Window{Start: 6, End: 7.5}, Label: "Speaker_1"},
	}
}

func TestAlignAssignsByMidpoint(t *testing.T) {
	segments := []transcribe.Segment{
		{Start: 0.5, End: 2.5, Text: " hello ", AvgLogprob: -0.2},
		{Start: 2.8, End: 4.0, Text: "spans the boundary", AvgLogprob: -0.4},
		{Start: 6.2, End: 7.0, Text: "wrap up", AvgLogprob: -0.1},
	}

	out := Align(segments, speakerWindows())
	require.Len(t, out, 3)

	assert.Equal(t, "Speaker_1", out[0].Speaker)
	assert.Equal(t, "hello", out[0].Text)
	assert.Equal(t, -0.2, out[0].Confidence)

	// Midpoint 3.4 lands in the second window even though the segment
	// started in the first.
	assert.Equal(t, "Speaker_2", out[1].Speaker)
	assert.Equal(t, "Speaker_1", out[2].Speaker)
}

func TestAlignOutOfRangeIsUnknown(t *testing.T) {
	segments := []transcribe.Segment{
		{Start: 8.0, End: 9.0, Text: "after the last window"},
	}
	out := Align(segments, speakerWindows())
	require.Len(t, out, 1)
	assert.Equal(t, UnknownSpeaker, out[0].Speaker)
}

func TestAlignNeverDropsSegments(t *testing.T) {
	segments := []transcribe.Segment{
		{Start: 0, End: 1, Text: "a"},
		{Start: 100, End: 101, Text: "b"},
		{Start: 4, End: 5, Text: "c"},
	}
	out := Align(segments, speakerWindows())
	assert.Len(t, out, len(segments))
}

func TestAlignEmptyInputs(t *testing.T) {
	assert.Empty(t, Align(nil, speakerWindows()))
	// Zero-length audio: no windows at all, segments become Unknown.
	out := Align([]transcribe.Segment{{Start: 0, End: 1, Text: "x"}}, nil)
	require.Len(t, out, 1)
	assert.Equal(t, UnknownSpeaker, out[0].Speaker)
}

func TestSpeakerWindowsZip(t *testing.T) {
	windows := []Window{{Start: 0, End: 3}, {Start: 3, End: 6}}
	zipped := SpeakerWindows(windows, []string{"Speaker_1", "Speaker_2"})
	require.Len(t, zipped, 2)
	assert.Equal(t, "Speaker_2", zipped[1].Label)
	assert.Equal(t, 3.0, zipped[1].Start)
}
