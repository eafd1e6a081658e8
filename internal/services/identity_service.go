package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/giverr/giverr/internal/models"
	"gorm.io/gorm"
)

type IdentityUserRepository interface {
	FindByID(ctx context.Context, userID string) (models.User, error)
	Upsert(ctx context.Context, user *models.User) error
}

// Identity is the profile asserted by the identity provider for one sign-in.
type Identity struct {
	Subject         string
	Email           string
	FirstName       string
	LastName        string
	ProfileImageURL string
}

type IdentityService struct {
	users IdentityUserRepository
	now   func() time.Time
}

func NewIdentityService(users IdentityUserRepository) *IdentityService {
	return &IdentityService{
		users: users,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// EnsureUser returns the stored user for the identity, creating it on first sight.
func (service *IdentityService) EnsureUser(ctx context.Context, identity Identity) (models.User, error) {
	if strings.TrimSpace(identity.Subject) == "" {
		return models.User{}, ErrMissingSubject
	}

	user, err := service.users.FindByID(ctx, identity.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, dependencyError("load user", err)
	}
	return service.SyncUser(ctx, identity)
}

// SyncUser writes the identity's profile fields onto the user keyed by its subject.
// Reputation counters are left as stored.
func (service *IdentityService) SyncUser(ctx context.Context, identity Identity) (models.User, error) {
	subject := strings.TrimSpace(identity.Subject)
	if subject == "" {
		return models.User{}, ErrMissingSubject
	}

	now := service.now()
	user := models.User{
		ID:              subject,
		Email:           optionalString(strings.ToLower(identity.Email)),
		FirstName:       strings.TrimSpace(identity.FirstName),
		LastName:        strings.TrimSpace(identity.LastName),
		ProfileImageURL: optionalString(identity.ProfileImageURL),
		KindnessLevel:   models.DefaultKindnessLevel,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := service.users.Upsert(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, dependencyError("upsert user", err)
	}
	return service.FindUser(ctx, subject)
}

func (service *IdentityService) FindUser(ctx context.Context, userID string) (models.User, error) {
	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, dependencyError("load user", err)
	}
	return user, nil
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
