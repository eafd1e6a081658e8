package api

import (
	"errors"
	"io"
	"strings"

	"github.com/giverr/giverr/internal/metrics"
	"github.com/giverr/giverr/internal/models"
	"github.com/giverr/giverr/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type importContactsInput struct {
	Contacts []models.Contact `json:"contacts"`
}

type importUsernamesInput struct {
	Usernames string `json:"usernames"`
}

func (handler *Handler) ListConnections(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	connections, err := handler.directory.ListConnections(c.UserContext(), user.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(connections)
}

func (handler *Handler) ImportContacts(c *fiber.Ctx) error {
	input := importContactsInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	return handler.importContacts(c, input.Contacts)
}

// ImportContactsCSV accepts CSV either as the raw request body or as a multipart "file" field.
func (handler *Handler) ImportContactsCSV(c *fiber.Ctx) error {
	text, err := readContactsUpload(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	contacts, err := services.ParseContactsCSV(text)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	if len(contacts) == 0 {
		return handler.respondServiceError(c, services.ErrNoContacts)
	}
	return handler.importContacts(c, contacts)
}

func (handler *Handler) ImportUsernames(c *fiber.Ctx) error {
	input := importUsernamesInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	contacts := services.ParseUsernameList(input.Usernames)
	if len(contacts) == 0 {
		return handler.respondServiceError(c, services.ErrNoContacts)
	}
	return handler.importContacts(c, contacts)
}

func (handler *Handler) importContacts(c *fiber.Ctx, contacts []models.Contact) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	if !handler.importLimiter.allow(user.ID, handler.now(), handler.importLimit, handler.importWindow) {
		return apiError(c, fiber.StatusTooManyRequests, "too many import requests")
	}

	result, err := handler.directory.ImportContacts(c.UserContext(), user.ID, contacts)
	metrics.RecordImport(result.ConnectedCount, result.SkippedCount)
	if err != nil {
		return handler.respondServiceError(c, err,
			zap.Int("connected_count", result.ConnectedCount),
			zap.Int("skipped_count", result.SkippedCount),
		)
	}
	return c.JSON(result)
}

var (
	errContactsTooLarge    = errors.New("contacts file is too large")
	errContactsFileMissing = errors.New("file is required")
	errContactsFileNotRead = errors.New("file could not be read")
)

func readContactsUpload(c *fiber.Ctx) (string, error) {
	if !strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm) {
		body := c.Body()
		if len(body) > maxContactsUploadBytes {
			return "", errContactsTooLarge
		}
		return string(body), nil
	}

	header, err := c.FormFile("file")
	if err != nil {
		return "", errContactsFileMissing
	}
	if header.Size > maxContactsUploadBytes {
		return "", errContactsTooLarge
	}

	file, err := header.Open()
	if err != nil {
		return "", errContactsFileNotRead
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxContactsUploadBytes+1))
	if err != nil {
		return "", errContactsFileNotRead
	}
	if len(content) > maxContactsUploadBytes {
		return "", errContactsTooLarge
	}
	return string(content), nil
}
