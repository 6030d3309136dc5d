package models

import (
	"errors"

	"gorm.io/gorm"
)

// Ошибки уровня хранилища, общие для всех репозиториев.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrStale: a conditional write found the row in a different state.
	ErrStale = errors.New("record changed concurrently")
)

// FromGorm maps gorm errors onto the store errors above.
// The DB must be opened with TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
func FromGorm(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}
