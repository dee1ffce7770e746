package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codebuildervaibhav/meeting-recorder/internal/audio"
	"github.com/codebuildervaibhav/meeting-recorder/internal/meeting"
	"github.com/codebuildervaibhav/meeting-recorder/internal/transcribe"
)

// fakeRecorder materializes a tiny real WAV on Stop so the processor can
// read it back.
type fakeRecorder struct {
	dir      string
	startErr error
	started  int
}

func (r *fakeRecorder) Start(deviceID int) error {
	if r.startErr != nil {
		return r.startErr
	}
	r.started++
	return nil
}

func (r *fakeRecorder) Stop() (string, float64, error) {
	path := filepath.Join(r.dir, fmt.Sprintf("meeting_%d.wav", r.started))
	samples := make([]int, 8000) // 0.5s at 16kHz
	for i := range samples {
		samples[i] = 1000
	}
	if err := audio.WriteWAV(path, samples, 16000); err != nil {
		return "", 0, err
	}
	return path, 0.5, nil
}

type fakeDevices struct{}

func (fakeDevices) Devices() ([]audio.Device, error) {
	return []audio.Device{{ID: 0, Name: "Test Mic", Channels: 1, Default: true}}, nil
}

type fakeEmbedder struct {
	err error
}

func (e fakeEmbedder) Embed(_ context.Context, samples []float64, _ int) ([]float64, error) {
	if e.err != nil {
		return nil, e.err
	}
	return []float64{1, 0, 0}, nil
}

type fakeTranscriber struct {
	segments []transcribe.Segment
	err      error
}

func (f fakeTranscriber) Transcribe(context.Context, string) ([]transcribe.Segment, error) {
	return f.segments, f.err
}

type fakeSummarizer struct {
	summary string
}

func (f fakeSummarizer) Summarize(context.Context, []meeting.TranscriptSegment) string {
	return f.summary
}

type fakeSaver struct {
	saved []*meeting.Meeting
	err   error
}

func (f *fakeSaver) Save(m *meeting.Meeting) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, m)
	return nil
}

func newTestSession(t *testing.T, rec Recorder, p *Processor) *Session {
	t.Helper()
	return New(rec, fakeDevices{}, p, NewBroker(), zerolog.Nop())
}

func newTestProcessor(saver *fakeSaver) *Processor {
	return &Processor{
		WindowSeconds: 3,
		MaxSpeakers:   3,
		Transcriber: fakeTranscriber{segments: []transcribe.Segment{
			{Start: 0, End: 0.4, Text: "hello there", AvgLogprob: -0.3},
		}},
		Embedder:   fakeEmbedder{},
		Summarizer: fakeSummarizer{summary: "Short sync."},
		Store:      saver,
		Log:        zerolog.Nop(),
	}
}

// waitForFinal polls Status until the session leaves processing. The final
// status is returned exactly once before the session resets to idle.
func waitForFinal(t *testing.T, s *Session) Status {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		st := s.Status()
		switch st.State {
		case StateComplete, StateError:
			return st
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("session never reached a final state")
	return Status{}
}

func TestStartWhileRecordingConflicts(t *testing.T) {
	saver := &fakeSaver{}
	s := newTestSession(t, &fakeRecorder{dir: t.TempDir()}, newTestProcessor(saver))

	require.NoError(t, s.Start("standup"))
	assert.ErrorIs(t, s.Start("another"), ErrConflict)
}

func TestStopWhileIdleIsInvalid(t *testing.T) {
	saver := &fakeSaver{}
	s := newTestSession(t, &fakeRecorder{dir: t.TempDir()}, newTestProcessor(saver))

	assert.ErrorIs(t, s.Stop(), ErrInvalidState)
}

func TestDeviceSelectionRejectedWhileRecording(t *testing.T) {
	saver := &fakeSaver{}
	s := newTestSession(t, &fakeRecorder{dir: t.TempDir()}, newTestProcessor(saver))

	require.NoError(t, s.SelectDevice(0))
	require.NoError(t, s.Start(""))
	assert.ErrorIs(t, s.SelectDevice(1), ErrInvalidState)
}

func TestStartFailsOnDeviceError(t *testing.T) {
	saver := &fakeSaver{}
	rec := &fakeRecorder{dir: t.TempDir(), startErr: fmt.Errorf("%w: no such device", audio.ErrDevice)}
	s := newTestSession(t, rec, newTestProcessor(saver))

	err := s.Start("")
	require.Error(t, err)
	assert.ErrorIs(t, err, audio.ErrDevice)

	st := s.Status()
	assert.Equal(t, StateError, st.State)
	assert.Contains(t, st.Progress, "no such device")

	// The error status was acknowledged; the session is idle again and no
	// meeting was persisted.
	assert.Equal(t, StateIdle, s.Status().State)
	assert.Empty(t, saver.saved)
}

func TestFullLifecycle(t *testing.T) {
	saver := &fakeSaver{}
	s := newTestSession(t, &fakeRecorder{dir: t.TempDir()}, newTestProcessor(saver))

	require.NoError(t, s.Start("weekly sync"))
	assert.Equal(t, StateRecording, s.Status().State)

	require.NoError(t, s.Stop())

	st := waitForFinal(t, s)
	require.Equal(t, StateComplete, st.State)
	assert.NotEmpty(t, st.MeetingID)

	require.Len(t, saver.saved, 1)
	m := saver.saved[0]
	assert.Equal(t, st.MeetingID, m.ID)
	assert.Equal(t, "weekly sync", m.Title)
	assert.Equal(t, "Short sync.", m.Summary)
	require.Len(t, m.Transcript, 1)
	assert.Equal(t, "Speaker_1", m.Transcript[0].Speaker)
	assert.InDelta(t, 0.5, m.Duration, 1e-6)

	// Fetching the final status acknowledged it.
	assert.Equal(t, StateIdle, s.Status().State)
	require.NoError(t, s.Start("next meeting"))
}

func TestUntitledMeetingGetsDefaultTitle(t *testing.T) {
	saver := &fakeSaver{}
	s := newTestSession(t, &fakeRecorder{dir: t.TempDir()}, newTestProcessor(saver))

	require.NoError(t, s.Start(""))
	require.NoError(t, s.Stop())
	waitForFinal(t, s)

	require.Len(t, saver.saved, 1)
	assert.Contains(t, saver.saved[0].Title, "Meeting ")
}

func TestPipelineFailureDiscardsMeeting(t *testing.T) {
	saver := &fakeSaver{}
	p := newTestProcessor(saver)
	p.Transcriber = fakeTranscriber{err: errors.New("asr unavailable")}
	s := newTestSession(t, &fakeRecorder{dir: t.TempDir()}, p)

	require.NoError(t, s.Start(""))
	require.NoError(t, s.Stop())

	st := waitForFinal(t, s)
	assert.Equal(t, StateError, st.State)
	assert.Contains(t, st.Progress, "asr unavailable")
	assert.Empty(t, saver.saved)

	// Error acknowledged, message retained for one query only.
	assert.Equal(t, StateIdle, s.Status().State)
}

func TestEmbedderFailureDiscardsMeeting(t *testing.T) {
	saver := &fakeSaver{}
	p := newTestProcessor(saver)
	p.Embedder = fakeEmbedder{err: errors.New("embedding service down")}
	s := newTestSession(t, &fakeRecorder{dir: t.TempDir()}, p)

	require.NoError(t, s.Start(""))
	require.NoError(t, s.Stop())

	st := waitForFinal(t, s)
	assert.Equal(t, StateError, st.State)
	assert.Empty(t, saver.saved)
}

func TestProcessFileGuardsSingleSession(t *testing.T) {
	saver := &fakeSaver{}
	s := newTestSession(t, &fakeRecorder{dir: t.TempDir()}, newTestProcessor(saver))

	require.NoError(t, s.Start(""))
	assert.ErrorIs(t, s.ProcessFile("ignored.wav", ""), ErrConflict)
}

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "upload.wav")
	samples := make([]int, 16000)
	require.NoError(t, audio.WriteWAV(path, samples, 16000))

	saver := &fakeSaver{}
	s := newTestSession(t, &fakeRecorder{dir: dir}, newTestProcessor(saver))

	require.NoError(t, s.ProcessFile(path, "uploaded"))
	st := waitForFinal(t, s)
	require.Equal(t, StateComplete, st.State)
	require.Len(t, saver.saved, 1)
	assert.Equal(t, "uploaded", saver.saved[0].Title)
	assert.Equal(t, path, saver.saved[0].AudioPath)
}

func TestProgressEventsPublished(t *testing.T) {
	saver := &fakeSaver{}
	s := newTestSession(t, &fakeRecorder{dir: t.TempDir()}, newTestProcessor(saver))

	id, events := s.Broker().Subscribe()
	defer s.Broker().Unsubscribe(id)

	require.NoError(t, s.Start(""))
	require.NoError(t, s.Stop())
	waitForFinal(t, s)

	stages := make(map[string]bool)
	for {
		select {
		case ev := <-events:
			stages[ev.Stage] = true
			if ev.Stage == "complete" {
				for _, want := range []string{"record", "load", "diarize", "transcribe", "summarize", "persist", "complete"} {
					assert.True(t, stages[want], "missing stage %q", want)
				}
				return
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for completion event")
		}
	}
}
