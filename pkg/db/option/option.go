// Package option provides composable query modifiers for the generic store.
package option

import (
	"github.com/dialplane/dialplane/pkg/db/pagination"
	"gorm.io/gorm"
)

type QueryOption func(*gorm.DB) *gorm.DB

// ApplyPagination over-fetches one row past the page size so the caller can
// detect a next page, and seeks past the cursor when a page token is present.
func ApplyPagination(p pagination.Pagination) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		limit := p.PageSize
		if limit <= 0 {
			limit = 50
		}
		db = db.Limit(limit + 1)

		if p.PageToken != "" {
			cursor, err := pagination.DecodeCursor(p.PageToken)
			if err == nil && cursor != nil {
				db = db.Where(
					"created_at < ? OR (created_at = ? AND id < ?)",
					cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
				)
			}
		}
		return db
	}
}

func SortByCreatedDesc() QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC, id DESC")
	}
}
