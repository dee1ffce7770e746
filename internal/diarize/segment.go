// Package diarize slices a recording into speaker windows, clusters their
// embeddings into speakers, and aligns ASR segments to those speakers.
package diarize

// Window is one fixed-length slice of the signal. Start and End reflect
// true signal extent; the final window's End may fall short of its nominal
// length.
type Window struct {
	Start float64
	End   float64
}

// Windows partitions a signal of numSamples at sampleRate into consecutive
// windows of windowSeconds. The windows tile [0, duration) with no gaps and
// no overlaps.
func Windows(numSamples, sampleRate int, windowSeconds float64) []Window {
	if numSamples <= 0 || sampleRate <= 0 {
		return nil
	}

	step := int(float64(sampleRate) * windowSeconds)
	duration := float64(numSamples) / float64(sampleRate)

	var windows []Window
	for i := 0; i < numSamples; i += step {
		end := float64(i+step) / float64(sampleRate)
		if end > duration {
			end = duration
		}
		windows = append(windows, Window{
			Start: float64(i) / float64(sampleRate),
			End:   end,
		})
	}
	return windows
}

// Extract returns the samples for window w, zero-padded to the full nominal
// window length. Padding feeds the embedding model only; the window's
// reported boundaries are untouched.
func Extract(samples []float64, w Window, sampleRate int, windowSeconds float64) []float64 {
	length := int(float64(sampleRate) * windowSeconds)
	lo := int(w.Start * float64(sampleRate))
	hi := lo + length
	if hi > len(samples) {
		hi = len(samples)
	}

	out := make([]float64, length)
	copy(out, samples[lo:hi])
	return out
}
