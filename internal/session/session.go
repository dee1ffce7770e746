// Package session owns the recording lifecycle: the single-active-session
// state machine, the post-capture pipeline, and progress publication.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/codebuildervaibhav/meeting-recorder/internal/audio"
)

// State is the recording session state.
type State string

const (
	StateIdle       State = "idle"
	StateRecording  State = "recording"
	StateProcessing State = "processing"
	StateComplete   State = "complete"
	StateError      State = "error"
)

var (
	// ErrConflict reports a start while a session is already active.
	ErrConflict = errors.New("a recording is already in progress")
	// ErrInvalidState reports an operation invalid for the current state.
	ErrInvalidState = errors.New("operation invalid for current state")
)

// Recorder captures audio from an input device and materializes it as a
// WAV artifact.
type Recorder interface {
	Start(deviceID int) error
	Stop() (path string, duration float64, err error)
}

// DeviceLister enumerates input devices.
type DeviceLister interface {
	Devices() ([]audio.Device, error)
}

// Status is a non-blocking snapshot of the session.
type Status struct {
	State     State  `json:"status"`
	Progress  string `json:"progress,omitempty"`
	MeetingID string `json:"meeting_id,omitempty"`
}

// Session is the process-wide recording session. At most one recording or
// processing run is live at a time; concurrent starts fail rather than
// queue.
type Session struct {
	recorder  Recorder
	devices   DeviceLister
	processor *Processor
	broker    *Broker
	log       zerolog.Logger

	mu        sync.Mutex
	state     State
	progress  string
	meetingID string
	title     string
	startedAt time.Time
	deviceID  int
}

// New creates an idle session using the system default input device.
func New(recorder Recorder, devices DeviceLister, processor *Processor, broker *Broker, log zerolog.Logger) *Session {
	return &Session{
		recorder:  recorder,
		devices:   devices,
		processor: processor,
		broker:    broker,
		log:       log.With().Str("component", "session").Logger(),
		state:     StateIdle,
		deviceID:  -1,
	}
}

// Broker exposes the progress event stream for subscribers.
func (s *Session) Broker() *Broker {
	return s.broker
}

// Devices lists available input devices.
func (s *Session) Devices() ([]audio.Device, error) {
	return s.devices.Devices()
}

// SelectDevice changes the input device used by subsequent Start calls.
// Rejected while a session is active.
func (s *Session) SelectDevice(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return fmt.Errorf("%w: cannot select device while %s", ErrInvalidState, s.state)
	}
	s.deviceID = id
	return nil
}

// Start opens capture against the selected device and moves to recording.
// Fails with ErrConflict unless idle.
func (s *Session) Start(title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return ErrConflict
	}

	if err := s.recorder.Start(s.deviceID); err != nil {
		s.state = StateError
		s.progress = err.Error()
		s.log.Error().Err(err).Msg("starting capture")
		return err
	}

	s.state = StateRecording
	s.progress = ""
	s.meetingID = ""
	s.title = title
	s.startedAt = time.Now()
	s.broker.Publish("record", "Recording started")
	s.log.Info().Str("title", title).Msg("recording started")
	return nil
}

// Stop finalizes the capture into a WAV artifact and kicks off pipeline
// processing in the background. Fails with ErrInvalidState unless
// recording. Stop only ends capture; in-flight processing cannot be
// cancelled.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRecording {
		return fmt.Errorf("%w: no active recording", ErrInvalidState)
	}

	path, _, err := s.recorder.Stop()
	if err != nil {
		s.state = StateError
		s.progress = err.Error()
		s.log.Error().Err(err).Msg("finalizing capture")
		return err
	}

	s.state = StateProcessing
	s.broker.Publish("process", "Processing recording...")
	go s.process(path, s.title, s.startedAt)
	return nil
}

// ProcessFile runs the pipeline over an already-materialized audio file
// (the upload path), under the same single-session guard as a live
// recording.
func (s *Session) ProcessFile(path, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return ErrConflict
	}

	s.state = StateProcessing
	s.progress = ""
	s.meetingID = ""
	s.startedAt = time.Now()
	s.broker.Publish("process", "Processing uploaded recording...")
	go s.process(path, title, s.startedAt)
	return nil
}

// Status returns the current snapshot without blocking on processing.
// Fetching a final status (complete or error) acknowledges it: the session
// resets to idle and the message is gone on the next query.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{State: s.state, Progress: s.progress, MeetingID: s.meetingID}
	if s.state == StateComplete || s.state == StateError {
		s.state = StateIdle
		s.progress = ""
	}
	return st
}

func (s *Session) process(path, title string, startedAt time.Time) {
	publish := func(stage, msg string) {
		s.mu.Lock()
		s.progress = msg
		s.mu.Unlock()
		s.broker.Publish(stage, msg)
	}

	m, err := s.processor.Process(context.Background(), path, title, startedAt, publish)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		// The audio artifact stays on disk for inspection; no partial
		// meeting row exists.
		s.state = StateError
		s.progress = err.Error()
		s.broker.Publish("error", err.Error())
		s.log.Error().Err(err).Str("audio", path).Msg("pipeline failed")
		return
	}
	s.state = StateComplete
	s.progress = "Meeting saved"
	s.meetingID = m.ID
	s.broker.Publish("complete", "Meeting saved")
}
