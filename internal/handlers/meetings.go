package handlers

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/codebuildervaibhav/meeting-recorder/internal/export"
	"github.com/codebuildervaibhav/meeting-recorder/internal/store"
)

// MeetingsHandler serves stored meetings: listing, retrieval, deletion,
// tags, audio, and export.
type MeetingsHandler struct {
	store     *store.Store
	exportDir string
	log       zerolog.Logger
}

// NewMeetingsHandler creates a meetings handler.
func NewMeetingsHandler(s *store.Store, exportDir string, log zerolog.Logger) *MeetingsHandler {
	return &MeetingsHandler{
		store:     s,
		exportDir: exportDir,
		log:       log.With().Str("component", "handlers").Logger(),
	}
}

// List returns meetings matching the optional tag/title/transcript filters,
// most recent first.
func (h *MeetingsHandler) List(c *fiber.Ctx) error {
	filter := store.Filter{
		TitleSearch:      c.Query("title"),
		TranscriptSearch: c.Query("transcript"),
	}
	if tags := c.Query("tags"); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				filter.Tags = append(filter.Tags, tag)
			}
		}
	}

	meetings, err := h.store.List(filter)
	if err != nil {
		return respondStoreError(c, err)
	}
	return c.JSON(fiber.Map{"meetings": meetings})
}

// Get returns one meeting with its transcript and tags.
func (h *MeetingsHandler) Get(c *fiber.Ctx) error {
	m, err := h.store.Get(c.Params("id"))
	if err != nil {
		return respondStoreError(c, err)
	}
	return c.JSON(m)
}

// Delete removes a meeting, its audio file, and its exports.
func (h *MeetingsHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	m, err := h.store.Get(id)
	if err != nil {
		return respondStoreError(c, err)
	}

	if err := h.store.Delete(id); err != nil {
		return respondStoreError(c, err)
	}

	if err := os.Remove(m.AudioPath); err != nil && !os.IsNotExist(err) {
		h.log.Warn().Err(err).Str("path", m.AudioPath).Msg("removing audio file")
	}
	exports, _ := filepath.Glob(filepath.Join(h.exportDir, "meeting_*_"+id[:8]+".*"))
	for _, f := range exports {
		if err := os.Remove(f); err != nil {
			h.log.Warn().Err(err).Str("path", f).Msg("removing export file")
		}
	}

	return c.JSON(fiber.Map{"message": "Meeting deleted successfully"})
}

// Audio streams the meeting's WAV artifact.
func (h *MeetingsHandler) Audio(c *fiber.Ctx) error {
	m, err := h.store.Get(c.Params("id"))
	if err != nil {
		return respondStoreError(c, err)
	}
	if _, err := os.Stat(m.AudioPath); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Audio file not found",
			"code":  "ERR_NOT_FOUND",
		})
	}
	c.Set(fiber.HeaderContentType, "audio/wav")
	return c.SendFile(m.AudioPath)
}

// Export writes the meeting in the requested format and serves the file.
func (h *MeetingsHandler) Export(c *fiber.Ctx) error {
	format := c.Query("format", "txt")
	if !export.Supported(format) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid export format",
			"code":  "ERR_INVALID_FORMAT",
		})
	}

	m, err := h.store.Get(c.Params("id"))
	if err != nil {
		return respondStoreError(c, err)
	}

	path, err := export.Write(m, format, h.exportDir)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "ERR_EXPORT",
		})
	}
	c.Set(fiber.HeaderContentType, export.Formats[format])
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filepath.Base(path)+`"`)
	return c.SendFile(path)
}

// Tags lists all known tags.
func (h *MeetingsHandler) Tags(c *fiber.Ctx) error {
	tags, err := h.store.Tags()
	if err != nil {
		return respondStoreError(c, err)
	}
	return c.JSON(fiber.Map{"tags": tags})
}

// AddTag attaches a tag to a meeting.
func (h *MeetingsHandler) AddTag(c *fiber.Ctx) error {
	var body struct {
		Tag string `json:"tag"`
	}
	if err := c.BodyParser(&body); err != nil || strings.TrimSpace(body.Tag) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No tag provided",
			"code":  "ERR_NO_TAG",
		})
	}
	if err := h.store.AddTag(c.Params("id"), strings.TrimSpace(body.Tag)); err != nil {
		return respondStoreError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Tag added successfully"})
}

// RemoveTag detaches a tag from a meeting, pruning the tag if unused.
func (h *MeetingsHandler) RemoveTag(c *fiber.Ctx) error {
	if err := h.store.RemoveTag(c.Params("id"), c.Params("tag")); err != nil {
		return respondStoreError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Tag removed successfully"})
}

func respondStoreError(c *fiber.Ctx, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Meeting not found",
			"code":  "ERR_NOT_FOUND",
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
		"code":  "ERR_STORAGE",
	})
}
