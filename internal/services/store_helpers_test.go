package services

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/giverr/giverr/internal/db"
	"github.com/giverr/giverr/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testStore struct {
	database *gorm.DB
	repos    *db.Repositories
}

func newTestStore(t *testing.T) testStore {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "giverr-services.db"))
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return testStore{database: database, repos: db.NewRepositories(database)}
}

func (store testStore) ledger() *LedgerService {
	return NewLedgerService(store.repos.Stories, store.repos.Users)
}

func (store testStore) directory() *DirectoryService {
	return NewDirectoryService(store.repos.Users, store.repos.Connections)
}

func (store testStore) createUser(t *testing.T, id string, firstName string, lastName string, email string) models.User {
	t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:            id,
		FirstName:     firstName,
		LastName:      lastName,
		KindnessLevel: models.DefaultKindnessLevel,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if email != "" {
		user.Email = &email
	}
	require.NoError(t, store.repos.Users.Upsert(context.Background(), &user))
	return user
}

func (store testStore) loadUser(t *testing.T, id string) models.User {
	t.Helper()

	user, err := store.repos.Users.FindByID(context.Background(), id)
	require.NoError(t, err)
	return user
}

func storyContent(length int) string {
	return strings.Repeat("a", length)
}

// steppedClock returns a clock advancing one minute per call so created_at ordering is stable.
func steppedClock() func() time.Time {
	current := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		current = current.Add(time.Minute)
		return current
	}
}
