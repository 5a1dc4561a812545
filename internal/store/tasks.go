package store

import (
	"context"

	"gorm.io/gorm"

	"taskdeck/internal/models"
)

// ListTasks returns all tasks owned by userID.
func (s *Store) ListTasks(ctx context.Context, userID uint) ([]models.Task, error) {
	tasks := []models.Task{}
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&tasks).Error
	return tasks, err
}

// CreateTask inserts a task row; task.UserID must already be set to the
// authenticated subject.
func (s *Store) CreateTask(ctx context.Context, task *models.Task) error {
	return s.db.WithContext(ctx).Create(task).Error
}

// TaskForUser fetches a task only if it is owned by userID.
func (s *Store) TaskForUser(ctx context.Context, userID, id uint) (*models.Task, error) {
	var task models.Task
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&task).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &task, nil
}

// UpdateTask applies updates to the task only if it is owned by userID,
// then returns the resulting row.
func (s *Store) UpdateTask(ctx context.Context, userID, id uint, updates map[string]any) (*models.Task, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.TaskForUser(ctx, userID, id)
}

// DeleteTask removes the task only if it is owned by userID.
func (s *Store) DeleteTask(ctx context.Context, userID, id uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Task{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleTaskCompletion flips the completed flag in place with a single
// ownership-filtered UPDATE, then returns the resulting row.
func (s *Store) ToggleTaskCompletion(ctx context.Context, userID, id uint) (*models.Task, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ? AND user_id = ?", id, userID).
		UpdateColumn("completed", gorm.Expr("NOT completed"))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.TaskForUser(ctx, userID, id)
}
