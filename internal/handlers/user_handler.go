package handlers

import (
	"errors"

	"github.com/driftline/driftline-backend/internal/dto"
	"github.com/driftline/driftline-backend/internal/identity"
	"github.com/driftline/driftline-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Me handles GET /api/me
func (h *UserHandler) Me(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	user, err := h.service.GetByID(userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return dmError(c, err)
	}

	return c.JSON(user)
}

// UpdatePrivacy handles PUT /api/me/privacy
func (h *UserHandler) UpdatePrivacy(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.UpdatePrivacyRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.service.UpdatePrivacy(userID, req.AllowDMsFrom)
	if err != nil {
		return dmError(c, err)
	}

	return c.JSON(user)
}
