// Package testdb opens throwaway in-memory databases for service tests.
package testdb

import (
	"fmt"
	"testing"

	"sectorcheck/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a migrated in-memory database unique to the calling test. The
// named shared-cache DSN keeps every pooled connection on the same database.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&model.User{},
		&model.Sector{},
		&model.LeaderSector{},
		&model.ChecklistTemplate{},
		&model.ChecklistItem{},
		&model.ChecklistInstance{},
		&model.ChecklistItemResponse{},
	)
	require.NoError(t, err)
	return db
}
