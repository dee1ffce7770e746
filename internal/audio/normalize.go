package audio

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Normalize converts an uploaded audio file to mono 16-bit PCM WAV at the
// given sample rate, writing the result into dir. Requires ffmpeg on PATH.
func Normalize(inputPath, dir string, sampleRate int) (string, error) {
	outputPath := filepath.Join(dir, fmt.Sprintf("normalized_%s.wav", uuid.New().String()))

	cmd := exec.Command("ffmpeg",
		"-i", inputPath,
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-y",
		outputPath,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg failed: %w\noutput: %s", err, string(output))
	}
	return outputPath, nil
}

// SupportedFormat checks whether the file extension is an accepted upload
// format.
func SupportedFormat(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".mp3", ".wav", ".m4a", ".ogg", ".flac", ".webm", ".aac", ".wma":
		return true
	}
	return false
}
