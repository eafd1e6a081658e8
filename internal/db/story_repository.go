package db

import (
	"context"
	"errors"
	"time"

	"github.com/giverr/giverr/internal/models"
	"gorm.io/gorm"
)

var (
	ErrStoryNotPending    = errors.New("gratitude story is not pending")
	ErrParticipantMissing = errors.New("gratitude story participant missing")
)

// StoryResolution is the terminal state applied to a pending story together with the
// points credited to its participants.
type StoryResolution struct {
	Status           models.StoryStatus
	ConfirmationNote *string
	RepsEarned       int
	StarsGiven       int
	At               time.Time
}

type StoryRepository struct {
	database *gorm.DB
}

func NewStoryRepository(database *gorm.DB) *StoryRepository {
	return &StoryRepository{database: database}
}

func (repo *StoryRepository) Create(ctx context.Context, story *models.GratitudeStory) error {
	return repo.database.WithContext(ctx).Omit("Giver", "Receiver").Create(story).Error
}

func (repo *StoryRepository) FindByID(ctx context.Context, storyID string) (models.GratitudeStory, error) {
	var story models.GratitudeStory
	if err := repo.database.WithContext(ctx).Where("id = ?", storyID).First(&story).Error; err != nil {
		return models.GratitudeStory{}, err
	}
	return story, nil
}

func (repo *StoryRepository) ListConfirmed(ctx context.Context, forUserID *string) ([]models.GratitudeStory, error) {
	query := repo.withParticipants(ctx).Where("is_confirmed = ?", true)
	if forUserID != nil {
		query = query.Where("(giver_id = ? OR receiver_id = ?)", *forUserID, *forUserID)
	}

	stories := make([]models.GratitudeStory, 0)
	if err := query.Order("created_at DESC").Find(&stories).Error; err != nil {
		return nil, err
	}
	return stories, nil
}

func (repo *StoryRepository) ListPendingForReceiver(ctx context.Context, receiverID string) ([]models.GratitudeStory, error) {
	stories := make([]models.GratitudeStory, 0)
	if err := repo.withParticipants(ctx).
		Where("receiver_id = ? AND status = ?", receiverID, models.StoryPending).
		Order("created_at DESC").
		Find(&stories).Error; err != nil {
		return nil, err
	}
	return stories, nil
}

func (repo *StoryRepository) withParticipants(ctx context.Context) *gorm.DB {
	return repo.database.WithContext(ctx).Preload("Giver").Preload("Receiver")
}

// Resolve moves a pending story to its terminal state and credits the participants in one
// transaction. It returns ErrStoryNotPending when the story was already resolved,
// gorm.ErrRecordNotFound when it does not exist, and ErrParticipantMissing when a user row
// to credit is gone.
func (repo *StoryRepository) Resolve(ctx context.Context, storyID string, resolution StoryResolution) (models.GratitudeStory, error) {
	var resolved models.GratitudeStory
	err := repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.GratitudeStory{}).
			Where("id = ? AND status = ?", storyID, models.StoryPending).
			Updates(map[string]any{
				"is_confirmed":      resolution.Status == models.StoryConfirmed,
				"status":            resolution.Status,
				"confirmation_note": resolution.ConfirmationNote,
				"reps_earned":       resolution.RepsEarned,
				"stars_given":       resolution.StarsGiven,
				"updated_at":        resolution.At,
			})
		if result.Error != nil {
			return result.Error
		}

		if err := tx.Where("id = ?", storyID).First(&resolved).Error; err != nil {
			return err
		}
		if result.RowsAffected == 0 {
			return ErrStoryNotPending
		}

		if resolution.RepsEarned != 0 {
			if err := creditUser(tx, resolved.ReceiverID, resolution.At, map[string]any{
				"total_reps":    gorm.Expr("total_reps + ?", resolution.RepsEarned),
				"weekly_growth": gorm.Expr("weekly_growth + ?", resolution.RepsEarned),
			}); err != nil {
				return err
			}
		}
		if resolution.StarsGiven != 0 {
			if err := creditUser(tx, resolved.GiverID, resolution.At, map[string]any{
				"total_stars": gorm.Expr("total_stars + ?", resolution.StarsGiven),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.GratitudeStory{}, err
	}
	return resolved, nil
}

func creditUser(tx *gorm.DB, userID string, at time.Time, updates map[string]any) error {
	updates["updated_at"] = at
	result := tx.Model(&models.User{}).Where("id = ?", userID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrParticipantMissing
	}
	return nil
}

func (repo *StoryRepository) CountsForUser(ctx context.Context, userID string) (models.StoryCounts, error) {
	counts := models.StoryCounts{}
	database := repo.database.WithContext(ctx).Model(&models.GratitudeStory{})

	if err := database.Session(&gorm.Session{}).
		Where("giver_id = ? AND is_confirmed = ?", userID, true).
		Count(&counts.Given).Error; err != nil {
		return models.StoryCounts{}, err
	}
	if err := database.Session(&gorm.Session{}).
		Where("receiver_id = ? AND is_confirmed = ?", userID, true).
		Count(&counts.Received).Error; err != nil {
		return models.StoryCounts{}, err
	}
	if err := database.Session(&gorm.Session{}).
		Where("receiver_id = ? AND status = ?", userID, models.StoryPending).
		Count(&counts.Pending).Error; err != nil {
		return models.StoryCounts{}, err
	}
	return counts, nil
}

type confirmedSumRow struct {
	UserID string `gorm:"column:user_id"`
	Total  int    `gorm:"column:total"`
}

// ConfirmedTallies sums the points of confirmed stories per user: reps by receiver and stars
// by giver. Users without confirmed stories are absent from the map.
func (repo *StoryRepository) ConfirmedTallies(ctx context.Context) (map[string]models.ReputationTally, error) {
	reps := make([]confirmedSumRow, 0)
	if err := repo.database.WithContext(ctx).
		Model(&models.GratitudeStory{}).
		Select("receiver_id AS user_id, coalesce(sum(reps_earned), 0) AS total").
		Where("is_confirmed = ?", true).
		Group("receiver_id").
		Scan(&reps).Error; err != nil {
		return nil, err
	}

	stars := make([]confirmedSumRow, 0)
	if err := repo.database.WithContext(ctx).
		Model(&models.GratitudeStory{}).
		Select("giver_id AS user_id, coalesce(sum(stars_given), 0) AS total").
		Where("is_confirmed = ?", true).
		Group("giver_id").
		Scan(&stars).Error; err != nil {
		return nil, err
	}

	tallies := make(map[string]models.ReputationTally, len(reps)+len(stars))
	for _, row := range reps {
		tally := tallies[row.UserID]
		tally.Reps = row.Total
		tallies[row.UserID] = tally
	}
	for _, row := range stars {
		tally := tallies[row.UserID]
		tally.Stars = row.Total
		tallies[row.UserID] = tally
	}
	return tallies, nil
}

func (repo *StoryRepository) ConfirmedTallyForUser(ctx context.Context, userID string) (models.ReputationTally, error) {
	var tally models.ReputationTally
	if err := repo.database.WithContext(ctx).
		Model(&models.GratitudeStory{}).
		Select("coalesce(sum(reps_earned), 0)").
		Where("receiver_id = ? AND is_confirmed = ?", userID, true).
		Scan(&tally.Reps).Error; err != nil {
		return models.ReputationTally{}, err
	}
	if err := repo.database.WithContext(ctx).
		Model(&models.GratitudeStory{}).
		Select("coalesce(sum(stars_given), 0)").
		Where("giver_id = ? AND is_confirmed = ?", userID, true).
		Scan(&tally.Stars).Error; err != nil {
		return models.ReputationTally{}, err
	}
	return tally, nil
}
