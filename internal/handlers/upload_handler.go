package handlers

import (
	"errors"

	"github.com/driftline/driftline-backend/internal/dto"
	"github.com/driftline/driftline-backend/internal/identity"
	"github.com/driftline/driftline-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
)

type UploadHandler struct {
	store storage.ObjectStorage
}

func NewUploadHandler(store storage.ObjectStorage) *UploadHandler {
	return &UploadHandler{store: store}
}

// Presign handles POST /api/uploads. It hands back an upload URL and the
// public URL the client should attach to its message.
func (h *UploadHandler) Presign(c *fiber.Ctx) error {
	if _, err := identity.GetUserID(c); err != nil {
		return unauthorized(c)
	}

	var req dto.UploadRequest
	if err := c.BodyParser(&req); err != nil || req.Filename == "" || req.ContentType == "" {
		return badRequest(c, "Invalid request body")
	}

	ticket, err := h.store.PresignUpload(req.Filename, req.ContentType)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedContentType) {
			return badRequest(c, err.Error())
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to prepare upload",
		})
	}

	return c.JSON(dto.UploadResponse{
		UploadURL: ticket.UploadURL,
		PublicURL: ticket.PublicURL,
	})
}
