package db

import (
	"context"
	"strings"
	"time"

	"github.com/giverr/giverr/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	database *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{database: database}
}

func (repo *UserRepository) FindByID(ctx context.Context, userID string) (models.User, error) {
	var user models.User
	if err := repo.database.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Upsert inserts the user or refreshes its identity fields. Reputation counters are never overwritten.
func (repo *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	return repo.database.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"email", "first_name", "last_name", "profile_image_url", "updated_at",
				"search_first_name", "search_last_name", "search_email",
			}),
		}).
		Create(user).Error
}

func (repo *UserRepository) Search(ctx context.Context, query string, excludeUserID string, limit int) ([]models.User, error) {
	pattern := containsPattern(query)
	users := make([]models.User, 0)
	if err := repo.database.WithContext(ctx).
		Where("id <> ?", excludeUserID).
		Where(
			`(search_first_name LIKE ? ESCAPE '\' OR search_last_name LIKE ? ESCAPE '\' OR search_email LIKE ? ESCAPE '\' OR (search_first_name || ' ' || search_last_name) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern, pattern,
		).
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ListByNormalizedEmail returns at most limit users whose trimmed, lower-cased email equals email.
func (repo *UserRepository) ListByNormalizedEmail(ctx context.Context, email string, limit int) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := repo.database.WithContext(ctx).
		Where("lower(trim(email)) = ?", strings.ToLower(strings.TrimSpace(email))).
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// FindFirstByNameFragments returns the first user, in store order, whose names contain the
// given fragments. A blank fragment matches any name.
func (repo *UserRepository) FindFirstByNameFragments(ctx context.Context, firstName string, lastName string, excludeUserID string) (models.User, bool, error) {
	query := repo.database.WithContext(ctx).Model(&models.User{}).Where("id <> ?", excludeUserID)
	if first := strings.TrimSpace(firstName); first != "" {
		query = query.Where(`search_first_name LIKE ? ESCAPE '\'`, containsPattern(first))
	}
	if last := strings.TrimSpace(lastName); last != "" {
		query = query.Where(`search_last_name LIKE ? ESCAPE '\'`, containsPattern(last))
	}

	user := models.User{}
	result := query.Limit(1).Find(&user)
	if result.Error != nil {
		return models.User{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.User{}, false, nil
	}
	return user, true, nil
}

func (repo *UserRepository) ListReputationCounters(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := repo.database.WithContext(ctx).
		Select("id", "email", "first_name", "last_name", "total_reps", "total_stars").
		Order("id ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (repo *UserRepository) ResetWeeklyGrowth(ctx context.Context, at time.Time) (int64, error) {
	result := repo.database.WithContext(ctx).
		Model(&models.User{}).
		Where("weekly_growth <> ?", 0).
		Updates(map[string]any{
			"weekly_growth": 0,
			"updated_at":    at,
		})
	return result.RowsAffected, result.Error
}

// BackfillSearchKeys fills search keys for rows written before the keys existed or by raw SQL.
func (repo *UserRepository) BackfillSearchKeys(ctx context.Context) (int, error) {
	stale := make([]models.User, 0)
	if err := repo.database.WithContext(ctx).
		Select("id", "email", "first_name", "last_name").
		Where(`(search_first_name = '' AND first_name <> '') OR (search_last_name = '' AND last_name <> '') OR (search_email = '' AND coalesce(email, '') <> '')`).
		Find(&stale).Error; err != nil {
		return 0, err
	}

	for index := range stale {
		user := &stale[index]
		user.RefreshSearchKeys()
		if err := repo.database.WithContext(ctx).
			Model(&models.User{}).
			Where("id = ?", user.ID).
			UpdateColumns(map[string]any{
				"search_first_name": user.SearchFirstName,
				"search_last_name":  user.SearchLastName,
				"search_email":      user.SearchEmail,
			}).Error; err != nil {
			return index, err
		}
	}
	return len(stale), nil
}
