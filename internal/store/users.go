package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"taskdeck/internal/models"
)

// CreateUser inserts a new account row. A duplicate email yields
// ErrDuplicateEmail.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	err := s.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEmail
	}
	return err
}

// UserByEmail fetches an account by its exact email.
func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &user, nil
}

// UserByID fetches an account by primary key.
func (s *Store) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &user, nil
}
