package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned for rows that do not exist or are not visible
	// to the scoped user.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidReference is returned when a write names a parent row that
	// does not exist or is not usable.
	ErrInvalidReference = errors.New("invalid reference")
	ErrDuplicate        = errors.New("duplicate record")
)

func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return ErrDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated), strings.Contains(err.Error(), "FOREIGN KEY constraint failed"):
		return ErrInvalidReference
	default:
		return err
	}
}
