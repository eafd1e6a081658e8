package api

import (
	"strings"

	"github.com/giverr/giverr/internal/metrics"
	"github.com/giverr/giverr/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type storyInput struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

type confirmationInput struct {
	IsConfirmed      *bool   `json:"isConfirmed"`
	ConfirmationNote *string `json:"confirmationNote"`
}

func (handler *Handler) ListStories(c *fiber.Ctx) error {
	var forUserID *string
	if userID := strings.TrimSpace(c.Query("userId")); userID != "" {
		forUserID = &userID
	}
	return handler.respondFeed(c, forUserID)
}

func (handler *Handler) ListUserStories(c *fiber.Ctx) error {
	userID := c.Params("id")
	return handler.respondFeed(c, &userID)
}

func (handler *Handler) respondFeed(c *fiber.Ctx, forUserID *string) error {
	stories, err := handler.ledger.ListFeed(c.UserContext(), forUserID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(stories)
}

func (handler *Handler) ListPendingStories(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	stories, err := handler.ledger.ListPending(c.UserContext(), user.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(stories)
}

func (handler *Handler) CreateStory(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	input := storyInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	story, err := handler.ledger.Submit(c.UserContext(), user.ID, input.ReceiverID, input.Content)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	metrics.RecordStorySubmitted()
	return c.Status(fiber.StatusCreated).JSON(story)
}

// ConfirmStory lets the receiver of a pending story confirm or reject it.
func (handler *Handler) ConfirmStory(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	input := confirmationInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	if input.IsConfirmed == nil {
		return apiError(c, fiber.StatusBadRequest, "isConfirmed is required")
	}

	storyID := c.Params("id")
	story, err := handler.ledger.FindStory(c.UserContext(), storyID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	if story.ReceiverID != user.ID {
		return handler.respondServiceError(c, services.ErrNotStoryReceiver)
	}
	if story.Status.Terminal() {
		return handler.respondServiceError(c, services.ErrStoryAlreadyResolved)
	}

	resolved, err := handler.ledger.Confirm(c.UserContext(), storyID, *input.IsConfirmed, input.ConfirmationNote)
	if err != nil {
		return handler.respondServiceError(c, err, zap.String("story_id", storyID))
	}
	metrics.RecordStoryResolution(*input.IsConfirmed)
	return c.JSON(resolved)
}
