package store

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound covers both a missing row and a row owned by another
	// user; callers must not distinguish the two.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail signals a unique constraint violation on the
	// users.email column.
	ErrDuplicateEmail = errors.New("email already registered")
)

// Store issues single-statement queries against the relational schema.
// Every mutation of an owned row carries a conjunctive ownership filter
// (id AND user_id) so a subject can never touch another subject's rows.
type Store struct {
	db *gorm.DB
}

// New wraps a GORM handle in a Store.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
