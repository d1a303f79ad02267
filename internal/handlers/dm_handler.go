package handlers

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/driftline/driftline-backend/internal/dto"
	"github.com/driftline/driftline-backend/internal/identity"
	"github.com/driftline/driftline-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// DMHandler handles HTTP requests for direct messaging.
type DMHandler struct {
	service *services.DMService
}

func NewDMHandler(service *services.DMService) *DMHandler {
	return &DMHandler{service: service}
}

// ListConversations handles GET /api/conversations
func (h *DMHandler) ListConversations(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	limit, offset := pagination(c)
	search := c.Query("search")

	convs, err := h.service.ListConversations(userID, limit, offset, search)
	if err != nil {
		return dmError(c, err)
	}

	return c.JSON(fiber.Map{
		"data": convs, "limit": limit, "offset": offset,
	})
}

// CreateConversation handles POST /api/conversations
func (h *DMHandler) CreateConversation(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateConversationRequest
	if err := c.BodyParser(&req); err != nil || req.RecipientID == uuid.Nil {
		return badRequest(c, "Invalid request body")
	}

	conv, err := h.service.GetOrCreateConversation(userID, req.RecipientID)
	if err != nil {
		return dmError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(conv)
}

// DeleteConversation handles DELETE /api/conversations/:id
func (h *DMHandler) DeleteConversation(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	conversationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid conversation ID")
	}

	if err := h.service.DeleteConversation(userID, conversationID); err != nil {
		return dmError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Conversation deleted"})
}

// ListMessages handles GET /api/conversations/:id/messages
func (h *DMHandler) ListMessages(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	conversationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid conversation ID")
	}

	limit, offset := pagination(c)

	msgs, err := h.service.ListMessages(userID, conversationID, limit, offset)
	if err != nil {
		return dmError(c, err)
	}

	return c.JSON(fiber.Map{
		"data": msgs, "limit": limit, "offset": offset,
	})
}

// SendMessage handles POST /api/messages
func (h *DMHandler) SendMessage(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	msg, err := h.service.SendMessage(userID, &req)
	if err != nil {
		return dmError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(msg)
}

// DeleteMessage handles DELETE /api/messages/:id
func (h *DMHandler) DeleteMessage(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	messageID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid message ID")
	}

	if err := h.service.DeleteMessage(userID, messageID); err != nil {
		return dmError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Message deleted"})
}

// MarkRead handles POST /api/conversations/:id/read
func (h *DMHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	conversationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid conversation ID")
	}

	if err := h.service.MarkConversationRead(userID, conversationID); err != nil {
		return dmError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Conversation marked read"})
}

// TotalUnread handles GET /api/messages/unread-count
func (h *DMHandler) TotalUnread(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	count, err := h.service.TotalUnread(userID)
	if err != nil {
		return dmError(c, err)
	}

	return c.JSON(dto.TotalUnreadResponse{UnreadCount: count})
}

// CanMessage handles GET /api/users/:id/can-message
func (h *DMHandler) CanMessage(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	recipientID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid user ID")
	}

	allowed, reason, err := h.service.CanSendTo(userID, recipientID)
	if err != nil {
		return dmError(c, err)
	}

	return c.JSON(dto.CanMessageResponse{CanMessage: allowed, Reason: reason})
}

func pagination(c *fiber.Ctx) (int, int) {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: msg,
	})
}

// dmError maps service sentinel errors onto HTTP statuses.
func dmError(c *fiber.Ctx, err error) error {
	var code int
	switch {
	case errors.Is(err, services.ErrEmptyContent),
		errors.Is(err, services.ErrContentTooLong),
		errors.Is(err, services.ErrTargetRequired),
		errors.Is(err, services.ErrSelfMessage),
		errors.Is(err, services.ErrInvalidPrivacy):
		code = fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotParticipant),
		errors.Is(err, services.ErrNotSender),
		errors.Is(err, services.ErrBlockedByRecipient),
		errors.Is(err, services.ErrBlockedRecipient),
		errors.Is(err, services.ErrDMsClosed),
		errors.Is(err, services.ErrMustFollow):
		code = fiber.StatusForbidden
	case errors.Is(err, services.ErrConversationNotFound),
		errors.Is(err, services.ErrMessageNotFound),
		errors.Is(err, services.ErrRecipientNotFound),
		errors.Is(err, services.ErrUserNotFound):
		code = fiber.StatusNotFound
	default:
		slog.Error("messaging operation failed", "method", c.Method(), "path", c.Path(), "error", err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	return c.Status(code).JSON(dto.ErrorResponse{
		Error: true, Message: err.Error(),
	})
}
