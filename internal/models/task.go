package models

import "time"

// Task priorities and statuses accepted by the API.
const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"

	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in-progress"
	TaskStatusCompleted  = "completed"
)

// Task is a single unit of work owned by a user, optionally attached to a
// project and a category.
type Task struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"userId"`
	ProjectID   *uint      `gorm:"index" json:"projectId,omitempty"`
	CategoryID  *uint      `gorm:"index" json:"categoryId,omitempty"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Completed   bool       `gorm:"not null;default:false" json:"completed"`
	Priority    string     `gorm:"size:20;not null;default:medium" json:"priority"`
	Status      string     `gorm:"size:20;not null;default:pending" json:"status"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`

	Project  *Project  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Category *Category `gorm:"constraint:OnDelete:SET NULL" json:"-"`
}
