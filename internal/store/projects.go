package store

import (
	"context"

	"taskdeck/internal/models"
)

// ListProjects returns all projects owned by userID.
func (s *Store) ListProjects(ctx context.Context, userID uint) ([]models.Project, error) {
	projects := []models.Project{}
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&projects).Error
	return projects, err
}

// CreateProject inserts a project row; project.UserID must already be set
// to the authenticated subject.
func (s *Store) CreateProject(ctx context.Context, project *models.Project) error {
	return s.db.WithContext(ctx).Create(project).Error
}

// ProjectForUser fetches a project only if it is owned by userID.
func (s *Store) ProjectForUser(ctx context.Context, userID, id uint) (*models.Project, error) {
	var project models.Project
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&project).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &project, nil
}

// UpdateProject applies updates to the project only if it is owned by
// userID, then returns the resulting row.
func (s *Store) UpdateProject(ctx context.Context, userID, id uint, updates map[string]any) (*models.Project, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.ProjectForUser(ctx, userID, id)
}

// DeleteProject removes the project only if it is owned by userID.
func (s *Store) DeleteProject(ctx context.Context, userID, id uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Project{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
