package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

const DefaultKindnessLevel = "Rising Star"

type User struct {
	ID              string    `gorm:"primaryKey" json:"id"`
	Email           *string   `gorm:"uniqueIndex" json:"email"`
	FirstName       string    `gorm:"not null;default:''" json:"firstName"`
	LastName        string    `gorm:"not null;default:''" json:"lastName"`
	ProfileImageURL *string   `gorm:"column:profile_image_url" json:"profileImageUrl"`
	Bio             *string   `json:"bio"`
	TotalReps       int       `gorm:"not null;default:0" json:"totalReps"`
	TotalStars      int       `gorm:"not null;default:0" json:"totalStars"`
	WeeklyGrowth    int       `gorm:"not null;default:0" json:"weeklyGrowth"`
	KindnessLevel   string    `gorm:"not null;default:Rising Star" json:"kindnessLevel"`
	SearchFirstName string    `gorm:"column:search_first_name;not null;default:''" json:"-"`
	SearchLastName  string    `gorm:"column:search_last_name;not null;default:''" json:"-"`
	SearchEmail     string    `gorm:"column:search_email;not null;default:''" json:"-"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// DisplayName joins the name parts, falling back to the email when both are blank.
func (user User) DisplayName() string {
	switch {
	case user.FirstName != "" && user.LastName != "":
		return user.FirstName + " " + user.LastName
	case user.FirstName != "":
		return user.FirstName
	case user.LastName != "":
		return user.LastName
	case user.Email != nil:
		return *user.Email
	default:
		return user.ID
	}
}

// BeforeSave keeps the lower-cased search keys in step with the name and email.
// SQLite's lower() only folds ASCII, so search queries match against these keys.
func (user *User) BeforeSave(*gorm.DB) error {
	user.RefreshSearchKeys()
	return nil
}

func (user *User) RefreshSearchKeys() {
	user.SearchFirstName = strings.ToLower(user.FirstName)
	user.SearchLastName = strings.ToLower(user.LastName)
	user.SearchEmail = ""
	if user.Email != nil {
		user.SearchEmail = strings.ToLower(*user.Email)
	}
}
