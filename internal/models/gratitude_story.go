package models

import "time"

type StoryStatus string

const (
	StoryPending   StoryStatus = "pending"
	StoryConfirmed StoryStatus = "confirmed"
	StoryRejected  StoryStatus = "rejected"
)

// Terminal reports whether the receiver has already acted on the story.
func (status StoryStatus) Terminal() bool {
	return status == StoryConfirmed || status == StoryRejected
}

const (
	MinStoryContentLength = 100
	MaxStoryContentLength = 1000
)

type GratitudeStory struct {
	ID               string      `gorm:"primaryKey" json:"id"`
	GiverID          string      `gorm:"not null;index" json:"giverId"`
	ReceiverID       string      `gorm:"not null;index" json:"receiverId"`
	Content          string      `gorm:"not null" json:"content"`
	RepsEarned       int         `gorm:"not null;default:0" json:"repsEarned"`
	StarsGiven       int         `gorm:"not null;default:0" json:"starsGiven"`
	IsConfirmed      bool        `gorm:"not null;default:false" json:"isConfirmed"`
	Status           StoryStatus `gorm:"not null;default:pending" json:"status"`
	ConfirmationNote *string     `json:"confirmationNote"`
	Likes            int         `gorm:"not null;default:0" json:"likes"`
	Comments         int         `gorm:"not null;default:0" json:"comments"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`

	Giver    *User `gorm:"foreignKey:GiverID;references:ID" json:"giver,omitempty"`
	Receiver *User `gorm:"foreignKey:ReceiverID;references:ID" json:"receiver,omitempty"`
}

// Hydrated reports whether both participants were resolved when the story was loaded.
func (story GratitudeStory) Hydrated() bool {
	return story.Giver != nil && story.Receiver != nil
}
