package api

import "github.com/gofiber/fiber/v2"

func (handler *Handler) SearchUsers(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	users, err := handler.directory.Search(c.UserContext(), c.Query("query"), user.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(users)
}

func (handler *Handler) GetUser(c *fiber.Ctx) error {
	user, err := handler.identities.FindUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(user)
}

func (handler *Handler) GetUserStats(c *fiber.Ctx) error {
	stats, err := handler.ledger.UserStats(c.UserContext(), c.Params("id"))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(stats)
}
