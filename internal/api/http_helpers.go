package api

import (
	"errors"
	"strings"

	"github.com/giverr/giverr/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const internalErrorMessage = "internal server error"

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"message": message})
}

// respondServiceError maps the service error taxonomy onto HTTP statuses. Client errors echo
// the specific message; anything else is logged and reported generically.
func (handler *Handler) respondServiceError(c *fiber.Ctx, err error, fields ...zap.Field) error {
	categories := []struct {
		category error
		status   int
	}{
		{services.ErrValidation, fiber.StatusBadRequest},
		{services.ErrNotFound, fiber.StatusNotFound},
		{services.ErrForbidden, fiber.StatusForbidden},
		{services.ErrConflict, fiber.StatusConflict},
	}
	for _, candidate := range categories {
		if errors.Is(err, candidate.category) {
			return apiError(c, candidate.status, publicMessage(err, candidate.category))
		}
	}

	fields = append(fields,
		zap.Error(err),
		zap.String("request_id", requestID(c)),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
	)
	handler.logger.Error("request failed", fields...)
	return apiError(c, fiber.StatusInternalServerError, internalErrorMessage)
}

func publicMessage(err error, category error) string {
	message := strings.TrimPrefix(err.Error(), category.Error()+": ")
	if message == "" {
		return category.Error()
	}
	return message
}

func requestID(c *fiber.Ctx) string {
	if value, ok := c.Locals("requestid").(string); ok && value != "" {
		return value
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}

func bearerToken(c *fiber.Ctx) string {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("Bearer "):])
}
