package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/rs/zerolog"
)

// CaptureBuffer accumulates raw audio frames pushed by the device callback.
// Append runs on the audio subsystem's goroutine; everything else on the
// session's, hence the mutex.
type CaptureBuffer struct {
	mu     sync.Mutex
	frames [][]int16
	total  int
}

// Append copies one frame into the buffer.
func (b *CaptureBuffer) Append(frame []int16) {
	cp := make([]int16, len(frame))
	copy(cp, frame)

	b.mu.Lock()
	b.frames = append(b.frames, cp)
	b.total += len(cp)
	b.mu.Unlock()
}

// Samples concatenates all buffered frames.
func (b *CaptureBuffer) Samples() []int {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]int, 0, b.total)
	for _, frame := range b.frames {
		for _, s := range frame {
			out = append(out, int(s))
		}
	}
	return out
}

// Len returns the number of buffered samples.
func (b *CaptureBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total
}

// Reset discards all buffered frames.
func (b *CaptureBuffer) Reset() {
	b.mu.Lock()
	b.frames = nil
	b.total = 0
	b.mu.Unlock()
}

// CaptureRecorder records mono 16-bit audio from a PortAudio input device
// into a CaptureBuffer and materializes it as a WAV artifact on stop.
type CaptureRecorder struct {
	devices       *DeviceManager
	sampleRate    int
	recordingsDir string
	log           zerolog.Logger

	mu     sync.Mutex
	stream *portaudio.Stream
	buf    CaptureBuffer
}

// NewCaptureRecorder creates a recorder writing WAV files into recordingsDir.
func NewCaptureRecorder(devices *DeviceManager, sampleRate int, recordingsDir string, log zerolog.Logger) (*CaptureRecorder, error) {
	if err := os.MkdirAll(recordingsDir, 0755); err != nil {
		return nil, fmt.Errorf("creating recordings directory: %w", err)
	}
	return &CaptureRecorder{
		devices:       devices,
		sampleRate:    sampleRate,
		recordingsDir: recordingsDir,
		log:           log.With().Str("component", "recorder").Logger(),
	}, nil
}

// Start opens a capture stream against the given device (negative id means
// system default) and begins accepting frames.
func (r *CaptureRecorder) Start(deviceID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stream != nil {
		return fmt.Errorf("%w: capture stream already open", ErrDevice)
	}

	info, err := r.devices.resolve(deviceID)
	if err != nil {
		return err
	}

	params := portaudio.LowLatencyParameters(info, nil)
	params.Input.Channels = 1
	params.SampleRate = float64(r.sampleRate)
	params.FramesPerBuffer = 1024

	r.buf.Reset()
	stream, err := portaudio.OpenStream(params, func(in []int16) {
		r.buf.Append(in)
	})
	if err != nil {
		return fmt.Errorf("%w: opening capture stream: %v", ErrDevice, err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("%w: starting capture stream: %v", ErrDevice, err)
	}

	r.stream = stream
	r.log.Info().Str("device", info.Name).Int("sample_rate", r.sampleRate).Msg("capture started")
	return nil
}

// Stop closes the capture stream and writes the buffered audio to a WAV
// file whose name embeds the capture timestamp. Returns the file path and
// the recorded duration in seconds.
func (r *CaptureRecorder) Stop() (string, float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stream == nil {
		return "", 0, fmt.Errorf("%w: no capture stream open", ErrDevice)
	}
	if err := r.stream.Stop(); err != nil {
		r.log.Warn().Err(err).Msg("stopping capture stream")
	}
	r.stream.Close()
	r.stream = nil

	samples := r.buf.Samples()
	r.buf.Reset()
	if len(samples) == 0 {
		return "", 0, fmt.Errorf("%w: no audio captured", ErrDevice)
	}

	path := filepath.Join(r.recordingsDir,
		fmt.Sprintf("meeting_%s.wav", time.Now().Format("20060102_150405")))
	if err := WriteWAV(path, samples, r.sampleRate); err != nil {
		return "", 0, err
	}

	duration := float64(len(samples)) / float64(r.sampleRate)
	r.log.Info().Str("path", path).Float64("duration", duration).Msg("recording saved")
	return path, duration, nil
}
