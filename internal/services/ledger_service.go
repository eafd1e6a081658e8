package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/giverr/giverr/internal/db"
	"github.com/giverr/giverr/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// RepReward is credited to the receiver's total and weekly reps when a story is confirmed.
	RepReward = 20
	// StarReward is credited to the giver's total stars when a story is confirmed.
	StarReward = 5
)

type LedgerStoryRepository interface {
	Create(ctx context.Context, story *models.GratitudeStory) error
	FindByID(ctx context.Context, storyID string) (models.GratitudeStory, error)
	ListConfirmed(ctx context.Context, forUserID *string) ([]models.GratitudeStory, error)
	ListPendingForReceiver(ctx context.Context, receiverID string) ([]models.GratitudeStory, error)
	Resolve(ctx context.Context, storyID string, resolution db.StoryResolution) (models.GratitudeStory, error)
	CountsForUser(ctx context.Context, userID string) (models.StoryCounts, error)
	ConfirmedTallies(ctx context.Context) (map[string]models.ReputationTally, error)
	ConfirmedTallyForUser(ctx context.Context, userID string) (models.ReputationTally, error)
}

type LedgerUserRepository interface {
	FindByID(ctx context.Context, userID string) (models.User, error)
	ListReputationCounters(ctx context.Context) ([]models.User, error)
	ResetWeeklyGrowth(ctx context.Context, at time.Time) (int64, error)
}

type LedgerService struct {
	stories LedgerStoryRepository
	users   LedgerUserRepository
	now     func() time.Time
}

type UserStats struct {
	UserID          string `json:"userId"`
	TotalReps       int    `json:"totalReps"`
	TotalStars      int    `json:"totalStars"`
	WeeklyGrowth    int    `json:"weeklyGrowth"`
	KindnessLevel   string `json:"kindnessLevel"`
	StoriesGiven    int64  `json:"storiesGiven"`
	StoriesReceived int64  `json:"storiesReceived"`
	PendingCount    int64  `json:"pendingCount"`
}

// ReputationAudit compares a user's stored counters with the points of their confirmed stories.
type ReputationAudit struct {
	UserID        string `json:"userId"`
	DisplayName   string `json:"displayName"`
	StoredReps    int    `json:"storedReps"`
	ExpectedReps  int    `json:"expectedReps"`
	StoredStars   int    `json:"storedStars"`
	ExpectedStars int    `json:"expectedStars"`
	Consistent    bool   `json:"consistent"`
}

func NewLedgerService(stories LedgerStoryRepository, users LedgerUserRepository) *LedgerService {
	return &LedgerService{
		stories: stories,
		users:   users,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ValidateStoryContent enforces the submission length bounds, counted in characters.
func ValidateStoryContent(content string) error {
	length := utf8.RuneCountInString(content)
	if length < models.MinStoryContentLength || length > models.MaxStoryContentLength {
		return ErrStoryContentLength
	}
	return nil
}

// Submit records a pending story from giver about receiver. No points move until the
// receiver confirms it.
func (service *LedgerService) Submit(ctx context.Context, giverID string, receiverID string, content string) (models.GratitudeStory, error) {
	receiverID = strings.TrimSpace(receiverID)
	if receiverID == "" {
		return models.GratitudeStory{}, ErrReceiverRequired
	}
	if err := ValidateStoryContent(content); err != nil {
		return models.GratitudeStory{}, err
	}
	if receiverID == giverID {
		return models.GratitudeStory{}, ErrSelfGratitude
	}

	if _, err := service.users.FindByID(ctx, receiverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.GratitudeStory{}, ErrUserNotFound
		}
		return models.GratitudeStory{}, dependencyError("load receiver", err)
	}

	now := service.now()
	story := models.GratitudeStory{
		ID:         uuid.NewString(),
		GiverID:    giverID,
		ReceiverID: receiverID,
		Content:    content,
		Status:     models.StoryPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := service.stories.Create(ctx, &story); err != nil {
		return models.GratitudeStory{}, dependencyError("create story", err)
	}
	return story, nil
}

func (service *LedgerService) FindStory(ctx context.Context, storyID string) (models.GratitudeStory, error) {
	story, err := service.stories.FindByID(ctx, storyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.GratitudeStory{}, ErrStoryNotFound
		}
		return models.GratitudeStory{}, dependencyError("load story", err)
	}
	return story, nil
}

// Confirm resolves a pending story. Confirming credits RepReward to the receiver and
// StarReward to the giver; rejecting only records the decision. A story resolves once:
// later calls fail with ErrStoryAlreadyResolved and credit nothing.
func (service *LedgerService) Confirm(ctx context.Context, storyID string, isConfirmed bool, confirmationNote *string) (models.GratitudeStory, error) {
	resolution := db.StoryResolution{
		Status:           models.StoryRejected,
		ConfirmationNote: normalizeNote(confirmationNote),
		At:               service.now(),
	}
	if isConfirmed {
		resolution.Status = models.StoryConfirmed
		resolution.RepsEarned = RepReward
		resolution.StarsGiven = StarReward
	}

	story, err := service.stories.Resolve(ctx, storyID, resolution)
	switch {
	case err == nil:
		return story, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.GratitudeStory{}, ErrStoryNotFound
	case errors.Is(err, db.ErrStoryNotPending):
		return models.GratitudeStory{}, ErrStoryAlreadyResolved
	case errors.Is(err, db.ErrParticipantMissing):
		return models.GratitudeStory{}, ErrUserNotFound
	default:
		return models.GratitudeStory{}, dependencyError("resolve story", err)
	}
}

func normalizeNote(note *string) *string {
	if note == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*note)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// ListFeed returns confirmed stories, newest first, optionally limited to those the user gave
// or received. Stories whose giver or receiver no longer resolves are left out.
func (service *LedgerService) ListFeed(ctx context.Context, forUserID *string) ([]models.GratitudeStory, error) {
	stories, err := service.stories.ListConfirmed(ctx, forUserID)
	if err != nil {
		return nil, dependencyError("list feed", err)
	}
	return hydratedOnly(stories), nil
}

func (service *LedgerService) ListPending(ctx context.Context, receiverID string) ([]models.GratitudeStory, error) {
	stories, err := service.stories.ListPendingForReceiver(ctx, receiverID)
	if err != nil {
		return nil, dependencyError("list pending", err)
	}
	return hydratedOnly(stories), nil
}

func hydratedOnly(stories []models.GratitudeStory) []models.GratitudeStory {
	filtered := make([]models.GratitudeStory, 0, len(stories))
	for _, story := range stories {
		if story.Hydrated() {
			filtered = append(filtered, story)
		}
	}
	return filtered
}

func (service *LedgerService) UserStats(ctx context.Context, userID string) (UserStats, error) {
	user, err := service.findUser(ctx, userID)
	if err != nil {
		return UserStats{}, err
	}

	counts, err := service.stories.CountsForUser(ctx, userID)
	if err != nil {
		return UserStats{}, dependencyError("count stories", err)
	}

	return UserStats{
		UserID:          user.ID,
		TotalReps:       user.TotalReps,
		TotalStars:      user.TotalStars,
		WeeklyGrowth:    user.WeeklyGrowth,
		KindnessLevel:   user.KindnessLevel,
		StoriesGiven:    counts.Given,
		StoriesReceived: counts.Received,
		PendingCount:    counts.Pending,
	}, nil
}

func (service *LedgerService) AuditUser(ctx context.Context, userID string) (ReputationAudit, error) {
	user, err := service.findUser(ctx, userID)
	if err != nil {
		return ReputationAudit{}, err
	}

	tally, err := service.stories.ConfirmedTallyForUser(ctx, userID)
	if err != nil {
		return ReputationAudit{}, dependencyError("tally confirmed stories", err)
	}
	return newReputationAudit(user, tally), nil
}

// AuditAll audits every user, ordered by id.
func (service *LedgerService) AuditAll(ctx context.Context) ([]ReputationAudit, error) {
	users, err := service.users.ListReputationCounters(ctx)
	if err != nil {
		return nil, dependencyError("list users", err)
	}
	tallies, err := service.stories.ConfirmedTallies(ctx)
	if err != nil {
		return nil, dependencyError("tally confirmed stories", err)
	}

	audits := make([]ReputationAudit, 0, len(users))
	for _, user := range users {
		audits = append(audits, newReputationAudit(user, tallies[user.ID]))
	}
	return audits, nil
}

func newReputationAudit(user models.User, tally models.ReputationTally) ReputationAudit {
	return ReputationAudit{
		UserID:        user.ID,
		DisplayName:   user.DisplayName(),
		StoredReps:    user.TotalReps,
		ExpectedReps:  tally.Reps,
		StoredStars:   user.TotalStars,
		ExpectedStars: tally.Stars,
		Consistent:    user.TotalReps == tally.Reps && user.TotalStars == tally.Stars,
	}
}

// ResetWeeklyGrowth starts a new growth period for every user.
func (service *LedgerService) ResetWeeklyGrowth(ctx context.Context) (int64, error) {
	affected, err := service.users.ResetWeeklyGrowth(ctx, service.now())
	if err != nil {
		return 0, dependencyError("reset weekly growth", err)
	}
	return affected, nil
}

func (service *LedgerService) findUser(ctx context.Context, userID string) (models.User, error) {
	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, dependencyError("load user", err)
	}
	return user, nil
}
