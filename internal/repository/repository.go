package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrDuplicate is returned when an insert violates a unique index.
var ErrDuplicate = errors.New("duplicate record")

// ErrNotFound is returned when a write matched no row.
var ErrNotFound = errors.New("record not found")

const (
	DefaultBrandEvents = 100
	MaxBrandEvents     = 200
)

// BrandFilter selects one page of brands.
type BrandFilter struct {
	Search string
	Offset int
	Limit  int
}

// LikePattern turns a search term into a LIKE pattern matching it as a
// literal substring.
func LikePattern(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(term) + "%"
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}
