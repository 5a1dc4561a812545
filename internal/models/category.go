package models

// Category labels tasks inside a project. It is owned by the same user as
// its parent project.
type Category struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID uint   `gorm:"not null;index" json:"projectId"`
	UserID    uint   `gorm:"not null;index" json:"userId"`
	Name      string `gorm:"size:100;not null" json:"name"`
}
