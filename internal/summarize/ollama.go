// Package summarize turns an aligned transcript into a free-text summary
// via a local Ollama endpoint.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/codebuildervaibhav/meeting-recorder/internal/meeting"
)

const promptTemplate = `As an AI meeting assistant, analyze this meeting transcript and provide:
1. Key Topics: Main subjects that were introduced or discussed
2. Context: Any background information or setup provided
3. Next Steps: Suggested follow-ups based on the topics mentioned

Keep the summary concise and focus on the introductory nature of the discussion if it was brief.

Meeting Transcript:
%s`

// Client generates summaries through Ollama's generate API.
type Client struct {
	url     string
	model   string
	timeout time.Duration
	client  *http.Client
}

// NewClient creates a summarization client. timeout bounds the generate
// call; on expiry the summary degrades rather than failing the pipeline.
func NewClient(url, model string, timeout time.Duration) *Client {
	return &Client{
		url:     url,
		model:   model,
		timeout: timeout,
		client:  &http.Client{},
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Summarize produces a summary for the transcript. Timeouts and network
// failures degrade to an inline error string; the returned summary is
// always usable.
func (c *Client) Summarize(ctx context.Context, transcript []meeting.TranscriptSegment) string {
	var sb strings.Builder
	for _, seg := range transcript {
		sb.WriteString(seg.Speaker)
		sb.WriteString(": ")
		sb.WriteString(seg.Text)
		sb.WriteString("\n")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: fmt.Sprintf(promptTemplate, sb.String()),
		Stream: false,
	})
	if err != nil {
		return fmt.Sprintf("Error generating summary: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Sprintf("Error generating summary: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
			return fmt.Sprintf("Error: Summary generation timed out after %d seconds", int(c.timeout.Seconds()))
		}
		return fmt.Sprintf("Error generating summary: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Sprintf("Error generating summary: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("Error generating summary: HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var out generateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return fmt.Sprintf("Error generating summary: %v", err)
	}
	return out.Response
}
