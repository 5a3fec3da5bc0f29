package repo

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Predicate narrows a query. It is a plain GORM scope so callers can compose
// conditions, ordering or joins without the repository knowing about them.
type Predicate func(*gorm.DB) *gorm.DB

func Where(query any, args ...any) Predicate {
	return func(db *gorm.DB) *gorm.DB { return db.Where(query, args...) }
}

func ByID(id uuid.UUID) Predicate { return Where("id = ?", id) }

func ByLogin(login string) Predicate { return Where("login = ?", login) }

func OrderBy(column string) Predicate {
	return func(db *gorm.DB) *gorm.DB { return db.Order(column) }
}

// All applies every predicate in order.
func All(preds ...Predicate) Predicate {
	return func(db *gorm.DB) *gorm.DB {
		for _, p := range scopes(preds) {
			db = p(db)
		}
		return db
	}
}

func scopes(preds []Predicate) []func(*gorm.DB) *gorm.DB {
	out := make([]func(*gorm.DB) *gorm.DB, 0, len(preds))
	for _, p := range preds {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}
