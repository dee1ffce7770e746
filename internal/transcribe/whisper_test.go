package transcribe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutput(t *testing.T) {
	data := []byte(`{
		"text": " Hello everyone. Let's begin.",
		"language": "en",
		"segments": [
			{"id": 0, "start": 0.0, "end": 2.4, "text": " Hello everyone.", "avg_logprob": -0.21},
			{"id": 1, "start": 2.4, "end": 4.1, "text": " Let's begin.", "avg_logprob": -0.35}
		]
	}`)

	segments, err := ParseOutput(data)
	require.NoError(t, err)
	require.Len(t, segments, 2)

	assert.Equal(t, "Hello everyone.", segments[0].Text)
	assert.Equal(t, 0.0, segments[0].Start)
	assert.Equal(t, 2.4, segments[0].End)
	assert.Equal(t, -0.21, segments[0].AvgLogprob)

	assert.Equal(t, "Let's begin.", segments[1].Text)
	assert.Equal(t, -0.35, segments[1].AvgLogprob)
}

func TestParseOutputEmptySegments(t *testing.T) {
	segments, err := ParseOutput([]byte(`{"text": "", "segments": []}`))
	require.NoError(t, err)
	assert.Empty(t, segments)
}

func TestParseOutputInvalidJSON(t *testing.T) {
	_, err := ParseOutput([]byte("not json"))
	assert.Error(t, err)
}
