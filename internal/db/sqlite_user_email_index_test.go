package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/giverr/giverr/internal/models"
	"gorm.io/gorm"
)

func openRepositoryTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := OpenSQLite(filepath.Join(t.TempDir(), "giverr-repo.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return database
}

func stringPointer(value string) *string {
	return &value
}

func TestOpenSQLiteCreatesCaseInsensitiveUserEmailUniqueIndex(t *testing.T) {
	database := openRepositoryTestDatabase(t)

	firstUser := models.User{
		ID:            "qa-1",
		Email:         stringPointer("QA-Test2@Giverr.Local"),
		KindnessLevel: models.DefaultKindnessLevel,
		CreatedAt:     time.Now().UTC(),
	}
	if err := database.Create(&firstUser).Error; err != nil {
		t.Fatalf("create first user: %v", err)
	}

	secondUser := models.User{
		ID:            "qa-2",
		Email:         stringPointer("qa-test2@giverr.local"),
		KindnessLevel: models.DefaultKindnessLevel,
		CreatedAt:     time.Now().UTC(),
	}
	err := database.Create(&secondUser).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected duplicate normalized email insert to fail with ErrDuplicatedKey, got %v", err)
	}

	for _, id := range []string{"no-email-1", "no-email-2"} {
		user := models.User{ID: id, KindnessLevel: models.DefaultKindnessLevel, CreatedAt: time.Now().UTC()}
		if err := database.Create(&user).Error; err != nil {
			t.Fatalf("expected users without email to coexist, got %v", err)
		}
	}
}

func TestUserRepositoryUpsertKeepsReputationCounters(t *testing.T) {
	database := openRepositoryTestDatabase(t)
	repo := NewUserRepository(database)
	ctx := context.Background()
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

	user := models.User{ID: "ada", FirstName: "Ada", KindnessLevel: models.DefaultKindnessLevel, CreatedAt: now, UpdatedAt: now}
	if err := repo.Upsert(ctx, &user); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	if err := database.Exec("UPDATE users SET total_reps = 60, total_stars = 10, weekly_growth = 20 WHERE id = ?", "ada").Error; err != nil {
		t.Fatalf("seed counters: %v", err)
	}

	refreshed := models.User{
		ID:            "ada",
		FirstName:     "Augusta",
		LastName:      "King",
		Email:         stringPointer("ada@example.com"),
		KindnessLevel: models.DefaultKindnessLevel,
		CreatedAt:     now.Add(time.Hour),
		UpdatedAt:     now.Add(time.Hour),
	}
	if err := repo.Upsert(ctx, &refreshed); err != nil {
		t.Fatalf("upsert user: %v", err)
	}

	stored, err := repo.FindByID(ctx, "ada")
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	if stored.FirstName != "Augusta" || stored.LastName != "King" || stored.Email == nil || *stored.Email != "ada@example.com" {
		t.Fatalf("expected identity fields to refresh, got %+v", stored)
	}
	if stored.TotalReps != 60 || stored.TotalStars != 10 || stored.WeeklyGrowth != 20 {
		t.Fatalf("expected counters to survive upsert, got %+v", stored)
	}
}

func TestUserRepositoryListByNormalizedEmail(t *testing.T) {
	database := openRepositoryTestDatabase(t)
	repo := NewUserRepository(database)
	ctx := context.Background()

	user := models.User{ID: "ada", Email: stringPointer("ada@example.com"), KindnessLevel: models.DefaultKindnessLevel}
	if err := repo.Upsert(ctx, &user); err != nil {
		t.Fatalf("insert user: %v", err)
	}

	users, err := repo.ListByNormalizedEmail(ctx, "  ADA@Example.com ", 2)
	if err != nil {
		t.Fatalf("lookup by email: %v", err)
	}
	if len(users) != 1 || users[0].ID != "ada" {
		t.Fatalf("expected ada, got %+v", users)
	}
}

func TestContainsPatternEscapesWildcards(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "Ada", expected: "%ada%"},
		{input: "50%", expected: `%50\%%`},
		{input: "a_b", expected: `%a\_b%`},
		{input: `c:\x`, expected: `%c:\\x%`},
	}

	for _, test := range tests {
		if actual := containsPattern(test.input); actual != test.expected {
			t.Fatalf("containsPattern(%q) = %q, want %q", test.input, actual, test.expected)
		}
	}
}

func TestConnectionRepositoryRejectsDuplicatePair(t *testing.T) {
	database := openRepositoryTestDatabase(t)
	repos := NewRepositories(database)
	ctx := context.Background()

	for _, id := range []string{"ada", "alan"} {
		user := models.User{ID: id, KindnessLevel: models.DefaultKindnessLevel}
		if err := repos.Users.Upsert(ctx, &user); err != nil {
			t.Fatalf("insert user: %v", err)
		}
	}

	first := models.UserConnection{ID: "c1", UserID: "ada", ConnectedUserID: "alan", ConnectionType: models.ConnectionFriend, CreatedAt: time.Now().UTC()}
	if err := repos.Connections.Create(ctx, &first); err != nil {
		t.Fatalf("create connection: %v", err)
	}

	exists, err := repos.Connections.Exists(ctx, "ada", "alan")
	if err != nil || !exists {
		t.Fatalf("expected connection to exist, exists=%v err=%v", exists, err)
	}

	second := models.UserConnection{ID: "c2", UserID: "ada", ConnectedUserID: "alan", ConnectionType: models.ConnectionFriend, CreatedAt: time.Now().UTC()}
	if err := repos.Connections.Create(ctx, &second); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected ErrDuplicatedKey, got %v", err)
	}
}

func TestOpenSQLiteBackfillsSearchKeysForRawRows(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "giverr-search-keys.db")

	first, err := OpenSQLite(databasePath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := first.Exec(
		`INSERT INTO users (id, first_name, last_name, email) VALUES (?, ?, ?, ?)`,
		"elodie", "Élodie", "Ørsted", "Elodie@Example.com",
	).Error; err != nil {
		t.Fatalf("insert raw user: %v", err)
	}
	firstSQLDB, err := first.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	if err := firstSQLDB.Close(); err != nil {
		t.Fatalf("close sql db: %v", err)
	}

	database, err := OpenSQLite(databasePath)
	if err != nil {
		t.Fatalf("reopen sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	var keys struct {
		SearchFirstName string `gorm:"column:search_first_name"`
		SearchLastName  string `gorm:"column:search_last_name"`
		SearchEmail     string `gorm:"column:search_email"`
	}
	if err := database.Raw(`SELECT search_first_name, search_last_name, search_email FROM users WHERE id = ?`, "elodie").Scan(&keys).Error; err != nil {
		t.Fatalf("load search keys: %v", err)
	}
	if keys.SearchFirstName != "élodie" || keys.SearchLastName != "ørsted" || keys.SearchEmail != "elodie@example.com" {
		t.Fatalf("unexpected search keys %+v", keys)
	}

	users, err := NewUserRepository(database).Search(context.Background(), "ØRSTED", "nobody", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(users) != 1 || users[0].ID != "elodie" {
		t.Fatalf("expected backfilled user to be found, got %+v", users)
	}
}
