package export

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codebuildervaibhav/meeting-recorder/internal/meeting"
)

func exportMeeting() *meeting.Meeting {
	return &meeting.Meeting{
		ID:       "abcdef1234567890",
		Title:    "Sprint Planning",
		Date:     time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC),
		Duration: 125.5,
		Transcript: []meeting.TranscriptSegment{
			{Speaker: "Speaker_1", Text: "Let's review the backlog.", StartTime: 0, EndTime: 3.2, Confidence: -0.2},
			{Speaker: "Speaker_2", Text: "Starting with the top item.", StartTime: 3.2, EndTime: 6.0, Confidence: -0.4},
		},
		Summary: "Backlog review and prioritization.",
		Tags:    []string{"planning", "sprint"},
	}
}

func TestWriteText(t *testing.T) {
	path, err := Write(exportMeeting(), "txt", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, path, "meeting_20250314_1030_abcdef12.txt")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "Meeting: Sprint Planning")
	assert.Contains(t, text, "Speaker_1 (0.0s - 3.2s):")
	assert.Contains(t, text, "Let's review the backlog.")
	assert.Contains(t, text, "Backlog review and prioritization.")
}

func TestWriteJSON(t *testing.T) {
	path, err := Write(exportMeeting(), "json", t.TempDir())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var m meeting.Meeting
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "Sprint Planning", m.Title)
	assert.Len(t, m.Transcript, 2)
	assert.Equal(t, []string{"planning", "sprint"}, m.Tags)
}

func TestWriteMarkdown(t *testing.T) {
	path, err := Write(exportMeeting(), "md", t.TempDir())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "# Sprint Planning")
	assert.Contains(t, text, "**Tags:** planning, sprint")
	assert.Contains(t, text, "## Transcript")
	assert.Contains(t, text, "**Speaker_2** (3.2s - 6.0s):")
	assert.Contains(t, text, "## Summary")
}

func TestWriteUnsupportedFormat(t *testing.T) {
	_, err := Write(exportMeeting(), "pdf", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported export format")
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("txt"))
	assert.True(t, Supported("json"))
	assert.True(t, Supported("md"))
	assert.False(t, Supported("pdf"))
}
