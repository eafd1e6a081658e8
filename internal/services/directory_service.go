package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/giverr/giverr/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SearchResultLimit caps the number of users returned by Search.
const SearchResultLimit = 10

type DirectoryUserRepository interface {
	Search(ctx context.Context, query string, excludeUserID string, limit int) ([]models.User, error)
	ListByNormalizedEmail(ctx context.Context, email string, limit int) ([]models.User, error)
	FindFirstByNameFragments(ctx context.Context, firstName string, lastName string, excludeUserID string) (models.User, bool, error)
}

type DirectoryConnectionRepository interface {
	Exists(ctx context.Context, userID string, connectedUserID string) (bool, error)
	Create(ctx context.Context, connection *models.UserConnection) error
	ListByUser(ctx context.Context, userID string) ([]models.UserConnection, error)
}

type DirectoryService struct {
	users       DirectoryUserRepository
	connections DirectoryConnectionRepository
	now         func() time.Time
}

type ImportResult struct {
	ConnectedCount int `json:"connectedCount"`
	SkippedCount   int `json:"skippedCount"`
}

func NewDirectoryService(users DirectoryUserRepository, connections DirectoryConnectionRepository) *DirectoryService {
	return &DirectoryService{
		users:       users,
		connections: connections,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Search returns up to SearchResultLimit users other than the caller whose first name, last
// name, email or full name contains query, ignoring case.
func (service *DirectoryService) Search(ctx context.Context, query string, excludeUserID string) ([]models.User, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptySearchQuery
	}

	users, err := service.users.Search(ctx, query, excludeUserID, SearchResultLimit)
	if err != nil {
		return nil, dependencyError("search users", err)
	}
	return users, nil
}

// ImportContacts connects the current user to every contact that resolves to another
// existing user. Contacts are processed in order and each insert stands on its own, so on
// error the counts reflect the work already done.
func (service *DirectoryService) ImportContacts(ctx context.Context, currentUserID string, contacts []models.Contact) (ImportResult, error) {
	result := ImportResult{}
	for _, contact := range contacts {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		connected, err := service.importContact(ctx, currentUserID, contact)
		if err != nil {
			return result, err
		}
		if connected {
			result.ConnectedCount++
		} else {
			result.SkippedCount++
		}
	}
	return result, nil
}

func (service *DirectoryService) importContact(ctx context.Context, currentUserID string, contact models.Contact) (bool, error) {
	match, found, err := service.matchContact(ctx, currentUserID, contact)
	if err != nil {
		return false, err
	}
	if !found || match.ID == currentUserID {
		return false, nil
	}

	exists, err := service.connections.Exists(ctx, currentUserID, match.ID)
	if err != nil {
		return false, dependencyError("check connection", err)
	}
	if exists {
		return false, nil
	}

	connection := models.UserConnection{
		ID:              uuid.NewString(),
		UserID:          currentUserID,
		ConnectedUserID: match.ID,
		ConnectionType:  models.ConnectionFriend,
		CreatedAt:       service.now(),
	}
	if err := service.connections.Create(ctx, &connection); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, dependencyError("create connection", err)
	}
	return true, nil
}

// matchContact prefers an unambiguous email match and falls back to the first user whose
// names contain the contact's name components.
func (service *DirectoryService) matchContact(ctx context.Context, currentUserID string, contact models.Contact) (models.User, bool, error) {
	if contact.HasEmail() {
		users, err := service.users.ListByNormalizedEmail(ctx, contact.Email, 2)
		if err != nil {
			return models.User{}, false, dependencyError("match contact email", err)
		}
		if len(users) == 1 {
			return users[0], true, nil
		}
	}

	if contact.HasName() {
		user, found, err := service.users.FindFirstByNameFragments(ctx, contact.FirstName, contact.LastName, currentUserID)
		if err != nil {
			return models.User{}, false, dependencyError("match contact name", err)
		}
		return user, found, nil
	}
	return models.User{}, false, nil
}

func (service *DirectoryService) ListConnections(ctx context.Context, userID string) ([]models.UserConnection, error) {
	connections, err := service.connections.ListByUser(ctx, userID)
	if err != nil {
		return nil, dependencyError("list connections", err)
	}

	hydrated := make([]models.UserConnection, 0, len(connections))
	for _, connection := range connections {
		if connection.ConnectedUser != nil {
			hydrated = append(hydrated, connection)
		}
	}
	return hydrated, nil
}
