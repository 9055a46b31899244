package database

import (
	"errors"

	ierr "provider-subscription-api/internal/errors"

	"gorm.io/gorm"
)

// Store wraps the gorm handle used by the services.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store on top of an opened database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying handle
func (s *Store) DB() *gorm.DB {
	return s.db
}

// translate maps gorm errors onto the application sentinels.
func translate(err error, entity string, id string) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ierr.WithError(err).
			WithHintf("%s %s not found", entity, id).
			WithReportableDetails(map[string]any{"entity": entity, "id": id}).
			Mark(ierr.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ierr.WithError(err).
			WithHintf("%s already exists", entity).
			Mark(ierr.ErrAlreadyExists)
	default:
		return ierr.WithError(err).
			WithMessagef("%s %s", entity, id).
			WithHint("Database operation failed").
			Mark(ierr.ErrDatabase)
	}
}
