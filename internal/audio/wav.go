package audio

import (
	"fmt"
	"os"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV writes mono 16-bit PCM samples to path.
func WriteWAV(path string, samples []int, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating wav file: %w", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("writing wav data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav file: %w", err)
	}
	return nil
}

// ReadWAV reads a WAV file and returns its samples normalized to [-1, 1],
// downmixed to mono by channel-averaging, plus the sample rate.
func ReadWAV(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening wav file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decoding wav file: %w", err)
	}
	if buf.Format == nil || len(buf.Data) == 0 {
		return nil, int(dec.SampleRate), nil
	}

	samples := Downmix(buf.Data, buf.Format.NumChannels)
	scale := float64(int(1) << (dec.BitDepth - 1))
	for i := range samples {
		samples[i] /= scale
	}
	return samples, buf.Format.SampleRate, nil
}

// Downmix averages interleaved multi-channel samples into a mono signal.
// A mono input is passed through unchanged (as float64).
func Downmix(interleaved []int, channels int) []float64 {
	if channels < 1 {
		channels = 1
	}
	mono := make([]float64, len(interleaved)/channels)
	for i := range mono {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(interleaved[i*channels+c])
		}
		mono[i] = sum / float64(channels)
	}
	return mono
}
