package config

import (
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InitDB opens the database named by DB_DRIVER / DB_DSN. MySQL in
// production; the sqlite fallback keeps local runs and tests self-contained.
func InitDB() (*gorm.DB, error) {
	driver := os.Getenv("DB_DRIVER")
	dsn := os.Getenv("DB_DSN")

	switch driver {
	case "mysql":
		return gorm.Open(mysql.Open(dsn), &gorm.Config{})
	default:
		if dsn == "" {
			dsn = "kitchen_queue.db"
		}
		return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	}
}
