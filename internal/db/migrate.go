package db

import (
	"fmt"

	"github.com/zulandar/drillplan/internal/models"
	"gorm.io/gorm"
)

// AllModels returns the GORM models to migrate.
func AllModels() []interface{} {
	return []interface{}{
		&models.Drill{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// SeedDrills inserts the seed drills when the drills table is empty and
// returns how many rows were written.
func SeedDrills(db *gorm.DB) (int, error) {
	var count int64
	if err := db.Model(&models.Drill{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("db: count drills: %w", err)
	}
	if count > 0 {
		return 0, nil
	}
	seeds := models.SeedDrills()
	if err := db.Create(&seeds).Error; err != nil {
		return 0, fmt.Errorf("db: seed drills: %w", err)
	}
	return len(seeds), nil
}
