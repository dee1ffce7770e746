// Package export serializes a meeting to plain text, JSON, or Markdown.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/codebuildervaibhav/meeting-recorder/internal/meeting"
)

// Formats maps supported format labels to MIME types.
var Formats = map[string]string{
	"txt":  "text/plain",
	"json": "application/json",
	"md":   "text/markdown",
}

// Supported reports whether format is a known export format.
func Supported(format string) bool {
	_, ok := Formats[format]
	return ok
}

// Write serializes the meeting in the given format into dir and returns
// the file path.
func Write(m *meeting.Meeting, format, dir string) (string, error) {
	if !Supported(format) {
		return "", fmt.Errorf("unsupported export format %q", format)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	var content []byte
	var err error
	switch format {
	case "json":
		content, err = json.MarshalIndent(m, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encoding meeting: %w", err)
		}
	case "md":
		content = []byte(renderMarkdown(m))
	default:
		content = []byte(renderText(m))
	}

	path := filepath.Join(dir, fmt.Sprintf("meeting_%s_%s.%s",
		m.Date.Format("20060102_1504"), m.ID[:8], format))
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("writing export: %w", err)
	}
	return path, nil
}

func renderText(m *meeting.Meeting) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Meeting: %s\n", m.Title)
	fmt.Fprintf(&sb, "Date: %s\n", m.Date.Format("2006-01-02 15:04"))
	fmt.Fprintf(&sb, "Duration: %.1f seconds\n\n", m.Duration)
	sb.WriteString("Transcript:\n")
	for _, seg := range m.Transcript {
		fmt.Fprintf(&sb, "\n%s (%.1fs - %.1fs):\n%s\n", seg.Speaker, seg.StartTime, seg.EndTime, seg.Text)
	}
	sb.WriteString("\nSummary:\n")
	sb.WriteString(m.Summary)
	sb.WriteString("\n")
	return sb.String()
}

func renderMarkdown(m *meeting.Meeting) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", m.Title)
	fmt.Fprintf(&sb, "- **Date:** %s\n", m.Date.Format("2006-01-02 15:04"))
	fmt.Fprintf(&sb, "- **Duration:** %.1f seconds\n", m.Duration)
	if len(m.Tags) > 0 {
		fmt.Fprintf(&sb, "- **Tags:** %s\n", strings.Join(m.Tags, ", "))
	}
	sb.WriteString("\n## Transcript\n")
	for _, seg := range m.Transcript {
		fmt.Fprintf(&sb, "\n**%s** (%.1fs - %.1fs):\n%s\n", seg.Speaker, seg.StartTime, seg.EndTime, seg.Text)
	}
	sb.WriteString("\n## Summary\n\n")
	sb.WriteString(m.Summary)
	sb.WriteString("\n")
	return sb.String()
}
