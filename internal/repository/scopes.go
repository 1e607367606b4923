package repository

import (
	"gorm.io/gorm"
)

// paginate applies the query's page window to a GORM query
func paginate(query TaskQuery) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !query.Paginated() {
			return db
		}
		return db.Offset(query.Offset()).Limit(query.PageSize)
	}
}
