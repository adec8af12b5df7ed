package database

import (
	"database/sql"
	"strings"
	"sync"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	sqliteDriverName = "sqlite3_unicode"

	// sqliteLowerFunc folds case like strings.ToLower. SQLite's built-in
	// LOWER only folds ASCII.
	sqliteLowerFunc = "unicode_lower"
)

var registerSQLite sync.Once

// SQLiteDialector opens dsn through a go-sqlite3 driver that has
// unicode_lower registered on every connection.
func SQLiteDialector(dsn string) gorm.Dialector {
	registerSQLite.Do(func() {
		sql.Register(sqliteDriverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc(sqliteLowerFunc, strings.ToLower, true)
			},
		})
	})
	return sqlite.New(sqlite.Config{DriverName: sqliteDriverName, DSN: dsn})
}

// lowerExpr returns a case-folding SQL expression for col on db's dialect.
func lowerExpr(db *gorm.DB, col string) string {
	if db.Dialector.Name() == "sqlite" {
		return sqliteLowerFunc + "(COALESCE(" + col + ", ''))"
	}
	return "LOWER(" + col + ")"
}
