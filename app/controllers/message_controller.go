package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/celumarket/celumarket/internal/pkg/apperror"
	"github.com/celumarket/celumarket/internal/pkg/messaging"
	"github.com/celumarket/celumarket/internal/pkg/viewmodel"
)

type SendMessageRequest struct {
	Content string `json:"content" form:"content"`
}

// MessageController exposes buyer/seller conversations.
type MessageController struct {
	messaging *messaging.Service
}

func NewMessageController(svc *messaging.Service) *MessageController {
	return &MessageController{messaging: svc}
}

// HandleList returns the caller's conversations, most recent first.
func (mc *MessageController) HandleList(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	summaries, err := mc.messaging.List(userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"conversations": viewmodel.NewConversationSummaries(summaries)})
}

// HandleOpen returns one conversation and marks the caller's unread messages read.
func (mc *MessageController) HandleOpen(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	conversation, err := mc.messaging.Open(userID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"conversation": viewmodel.NewConversation(conversation)})
}

// HandleSend posts a message into a conversation.
func (mc *MessageController) HandleSend(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperror.NewValidation("invalid request body"))
	}

	message, err := mc.messaging.Send(c.UserContext(), userID, id, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": viewmodel.NewMessage(message)})
}

// HandleStart opens the conversation with the seller of a listing.
func (mc *MessageController) HandleStart(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	listingID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	conversation, err := mc.messaging.Start(userID, listingID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"conversation": viewmodel.NewConversation(conversation)})
}
