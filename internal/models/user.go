package models

import "time"

// User represents a registered account. The password is stored only as a
// bcrypt hash and is never serialized.
type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:text;not null" json:"-"`
	IsActive     bool      `gorm:"not null;default:true" json:"isActive"`
	AvatarURL    *string   `gorm:"size:255" json:"avatarUrl,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Projects   []Project  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Categories []Category `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Tasks      []Task     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
