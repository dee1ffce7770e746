// Package handlers exposes the HTTP surface. Handlers stay thin: they call
// the session and store and translate errors to status codes.
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/codebuildervaibhav/meeting-recorder/internal/audio"
	"github.com/codebuildervaibhav/meeting-recorder/internal/session"
)

// RecordingHandler handles the recording lifecycle and device selection.
type RecordingHandler struct {
	session *session.Session
}

// NewRecordingHandler creates a recording handler.
func NewRecordingHandler(s *session.Session) *RecordingHandler {
	return &RecordingHandler{session: s}
}

// Devices lists available input devices.
func (h *RecordingHandler) Devices(c *fiber.Ctx) error {
	devices, err := h.session.Devices()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "ERR_DEVICE",
		})
	}
	return c.JSON(fiber.Map{"devices": devices})
}

// SelectDevice sets the input device for subsequent recordings.
func (h *RecordingHandler) SelectDevice(c *fiber.Ctx) error {
	var body struct {
		DeviceID *int `json:"device_id"`
	}
	if err := c.BodyParser(&body); err != nil || body.DeviceID == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No device ID provided",
			"code":  "ERR_NO_DEVICE",
		})
	}
	if err := h.session.SelectDevice(*body.DeviceID); err != nil {
		return respondSessionError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Device selected successfully"})
}

// Start begins a new recording.
func (h *RecordingHandler) Start(c *fiber.Ctx) error {
	var body struct {
		Title string `json:"title"`
	}
	_ = c.BodyParser(&body)

	if err := h.session.Start(body.Title); err != nil {
		return respondSessionError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Recording started"})
}

// Stop ends the current recording and starts processing.
func (h *RecordingHandler) Stop(c *fiber.Ctx) error {
	if err := h.session.Stop(); err != nil {
		return respondSessionError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Recording stopped, processing started"})
}

// Status reports the session snapshot. Reading a final status acknowledges
// it and returns the session to idle.
func (h *RecordingHandler) Status(c *fiber.Ctx) error {
	return c.JSON(h.session.Status())
}

func respondSessionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, session.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "ERR_CONFLICT",
		})
	case errors.Is(err, session.ErrInvalidState):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "ERR_INVALID_STATE",
		})
	case errors.Is(err, audio.ErrDevice):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "ERR_DEVICE",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "ERR_INTERNAL",
		})
	}
}