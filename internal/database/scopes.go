package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yukikurage/task-manager-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// Search applies a case-insensitive substring match of term against the
// given columns, combined with OR.
func Search(term utils.SearchTerm, columns ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch term.Mode {
		case utils.SearchNothing:
			return db.Where("1 = 0")
		case utils.SearchContains:
			if len(columns) == 0 {
				return db.Where("1 = 0")
			}
			pattern := term.LikePattern()
			clauses := make([]string, len(columns))
			args := make([]interface{}, len(columns))
			for i, col := range columns {
				clauses[i] = fmt.Sprintf(`%s LIKE ? ESCAPE '\'`, lowerExpr(db, col))
				args[i] = pattern
			}
			return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
		default:
			return db
		}
	}
}
