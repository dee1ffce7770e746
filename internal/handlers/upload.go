package handlers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/codebuildervaibhav/meeting-recorder/internal/audio"
	"github.com/codebuildervaibhav/meeting-recorder/internal/session"
)

// UploadHandler accepts an audio file upload and runs it through the same
// processing pipeline as a live recording.
type UploadHandler struct {
	session    *session.Session
	tempDir    string
	sampleRate int
	maxSizeMB  int
	log        zerolog.Logger
}

// NewUploadHandler creates an upload handler.
func NewUploadHandler(s *session.Session, tempDir string, sampleRate, maxSizeMB int, log zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		session:    s,
		tempDir:    tempDir,
		sampleRate: sampleRate,
		maxSizeMB:  maxSizeMB,
		log:        log.With().Str("component", "upload").Logger(),
	}
}

// Handle normalizes the uploaded file to mono 16-bit WAV and starts
// processing under the single-session guard.
func (h *UploadHandler) Handle(c *fiber.Ctx) error {
	file, err := c.FormFile("audio")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No audio file provided",
			"code":  "ERR_NO_FILE",
		})
	}

	if file.Size > int64(h.maxSizeMB)*1024*1024 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("File too large (max %dMB)", h.maxSizeMB),
			"code":  "ERR_FILE_TOO_LARGE",
		})
	}
	if !audio.SupportedFormat(file.Filename) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unsupported audio format",
			"code":  "ERR_INVALID_FORMAT",
		})
	}

	tempPath := filepath.Join(h.tempDir, uuid.New().String()+filepath.Ext(file.Filename))
	if err := c.SaveFile(file, tempPath); err != nil {
		h.log.Error().Err(err).Msg("saving uploaded file")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save file",
			"code":  "ERR_SAVE_FAILED",
		})
	}
	defer os.Remove(tempPath)

	normalized, err := audio.Normalize(tempPath, h.tempDir, h.sampleRate)
	if err != nil {
		h.log.Error().Err(err).Msg("normalizing upload")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to normalize audio",
			"code":  "ERR_NORMALIZE_FAILED",
		})
	}

	if err := h.session.ProcessFile(normalized, c.FormValue("title")); err != nil {
		os.Remove(normalized)
		return respondSessionError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Recording uploaded, processing started"})
}
