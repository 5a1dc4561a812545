package store

import (
	"context"

	"taskdeck/internal/models"
)

// ListCategories returns all categories owned by userID.
func (s *Store) ListCategories(ctx context.Context, userID uint) ([]models.Category, error) {
	categories := []models.Category{}
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&categories).Error
	return categories, err
}

// CreateCategory inserts a category row; category.UserID must already be
// set to the authenticated subject.
func (s *Store) CreateCategory(ctx context.Context, category *models.Category) error {
	return s.db.WithContext(ctx).Create(category).Error
}

// CategoryForUser fetches a category only if it is owned by userID.
func (s *Store) CategoryForUser(ctx context.Context, userID, id uint) (*models.Category, error) {
	var category models.Category
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&category).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &category, nil
}

// UpdateCategory applies updates to the category only if it is owned by
// userID, then returns the resulting row.
func (s *Store) UpdateCategory(ctx context.Context, userID, id uint, updates map[string]any) (*models.Category, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var category models.Category
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&category).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &category, nil
}

// DeleteCategory removes the category only if it is owned by userID.
func (s *Store) DeleteCategory(ctx context.Context, userID, id uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Category{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
