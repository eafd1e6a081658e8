package api

import "github.com/gofiber/fiber/v2"

func (handler *Handler) CurrentUser(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}
	return c.JSON(user)
}

// SyncProfile re-applies the token's profile claims to the stored user.
func (handler *Handler) SyncProfile(c *fiber.Ctx) error {
	claims, ok := currentClaims(c)
	if !ok {
		return unauthorized(c)
	}

	user, err := handler.identities.SyncUser(c.UserContext(), identityFromClaims(claims))
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(user)
}

func (handler *Handler) AuditCurrentUser(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	audit, err := handler.ledger.AuditUser(c.UserContext(), user.ID)
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(audit)
}
