// Package testutil provides shared test utilities for service and API tests.
package testutil

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bbernstein/lacylights-patterns/internal/database"
	"github.com/bbernstein/lacylights-patterns/internal/database/repositories"
)

// TestDB holds the test database and repositories.
type TestDB struct {
	DB             *gorm.DB
	LightRepo      *repositories.LightPresetRepository
	ReflectionRepo *repositories.ReflectionPresetRepository
	CurveRepo      *repositories.CurvePresetRepository
	SettingRepo    *repositories.SettingRepository
}

// SetupTestDB creates a migrated in-memory SQLite database. It is closed when the test
// ends.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	return &TestDB{
		DB:             db,
		LightRepo:      repositories.NewLightPresetRepository(db),
		ReflectionRepo: repositories.NewReflectionPresetRepository(db),
		CurveRepo:      repositories.NewCurvePresetRepository(db),
		SettingRepo:    repositories.NewSettingRepository(db),
	}
}
