package db

import (
	"context"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"welltrend/internal/model"
)

// driverName is the database/sql name registered by modernc.org/sqlite.
const driverName = "sqlite"

// openORM opens a GORM SQLite connection on the pure-Go driver.
func openORM(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.New(sqlite.Config{
		DriverName: driverName,
		DSN:        dsn(path),
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
}

// dsn appends the pragmas the engine relies on. Timestamps are written in the
// sqlite layout so range predicates compare correctly.
func dsn(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_time_format=sqlite"
}

// migrateORM ensures the schema for all models exists.
func migrateORM(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Node{},
		&model.CatalogEntry{},
		&model.FacilityTag{},
		&model.LivePoint{},
		&model.ArchivePoint{},
	)
}

// closeORM closes the underlying SQL DB associated with the GORM connection.
func closeORM(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// insertLivePoints persists live partition rows in batches.
func insertLivePoints(ctx context.Context, db *gorm.DB, rows []model.LivePoint, batchSize int) error {
	if len(rows) == 0 {
		return nil
	}
	return db.WithContext(ctx).CreateInBatches(rows, batchSize).Error
}

// insertArchivePoints persists archive partition rows in batches.
func insertArchivePoints(ctx context.Context, db *gorm.DB, rows []model.ArchivePoint, batchSize int) error {
	if len(rows) == 0 {
		return nil
	}
	return db.WithContext(ctx).CreateInBatches(rows, batchSize).Error
}
