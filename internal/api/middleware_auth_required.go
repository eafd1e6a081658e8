package api

import (
	"strings"
	"time"

	"github.com/giverr/giverr/internal/models"
	"github.com/giverr/giverr/internal/security"
	"github.com/giverr/giverr/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthRequired resolves the identity token into a stored user, creating the user on first
// sight, and stores both in the request locals.
func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	rawToken := bearerToken(c)
	if rawToken == "" {
		rawToken = strings.TrimSpace(c.Cookies(authCookieName))
	}
	if rawToken == "" {
		return unauthorized(c)
	}

	claims, err := security.ParseIdentityToken(handler.identitySecret, rawToken)
	if err != nil {
		return unauthorized(c)
	}

	user, err := handler.identities.EnsureUser(c.UserContext(), identityFromClaims(claims))
	if err != nil {
		return handler.respondServiceError(c, err, zap.String("subject", claims.Subject))
	}

	c.Locals(contextUserKey, &user)
	c.Locals(contextClaims, claims)
	return c.Next()
}

func identityFromClaims(claims *security.IdentityClaims) services.Identity {
	return services.Identity{
		Subject:         claims.Subject,
		Email:           claims.Email,
		FirstName:       claims.FirstName,
		LastName:        claims.LastName,
		ProfileImageURL: claims.ProfileImageURL,
	}
}

func currentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(contextUserKey).(*models.User)
	return user, ok && user != nil
}

func currentClaims(c *fiber.Ctx) (*security.IdentityClaims, bool) {
	claims, ok := c.Locals(contextClaims).(*security.IdentityClaims)
	return claims, ok && claims != nil
}

// RequestLogger logs one line per request with its outcome and latency.
func (handler *Handler) RequestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if fiberErr, ok := err.(*fiber.Error); ok {
		status = fiberErr.Code
	}

	fields := []zap.Field{
		zap.String("request_id", requestID(c)),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", status),
		zap.Duration("latency", time.Since(start)),
	}
	if user, ok := currentUser(c); ok {
		fields = append(fields, zap.String("user_id", user.ID))
	}

	switch {
	case status >= fiber.StatusInternalServerError:
		handler.logger.Warn("request completed", fields...)
	default:
		handler.logger.Info("request completed", fields...)
	}
	return err
}
