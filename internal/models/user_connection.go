package models

import "time"

// ConnectionFriend is the type recorded for connections created by contact import.
const ConnectionFriend = "friend"

type UserConnection struct {
	ID              string    `gorm:"primaryKey" json:"id"`
	UserID          string    `gorm:"not null;uniqueIndex:uidx_user_connection" json:"userId"`
	ConnectedUserID string    `gorm:"not null;uniqueIndex:uidx_user_connection" json:"connectedUserId"`
	ConnectionType  string    `gorm:"not null;default:colleague" json:"connectionType"`
	CreatedAt       time.Time `json:"createdAt"`

	ConnectedUser *User `gorm:"foreignKey:ConnectedUserID;references:ID" json:"connectedUser,omitempty"`
}
