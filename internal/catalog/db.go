package catalog

import (
	"context"
	"fmt"

	"github.com/zulandar/drillplan/internal/models"
	"gorm.io/gorm"
)

// DBStore keeps the catalog in the drills table. An empty table counts as
// "nothing persisted yet": Load returns the seed drills, and the first Append
// writes them before adding the new drill.
type DBStore struct {
	db *gorm.DB
}

// NewDBStore creates a store on an already migrated database.
func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

// Load returns all drills ordered by id.
func (s *DBStore) Load(ctx context.Context) ([]models.Drill, error) {
	var drills []models.Drill
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&drills).Error; err != nil {
		return nil, &StorageReadError{Path: "table drills", Err: err}
	}
	if len(drills) == 0 {
		return models.SeedDrills(), nil
	}
	return drills, nil
}

// Append inserts d with the next id inside a transaction.
func (s *DBStore) Append(ctx context.Context, d models.Drill) (int, error) {
	if err := Validate(d); err != nil {
		return 0, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Drill{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			seeds := models.SeedDrills()
			if err := tx.Create(&seeds).Error; err != nil {
				return fmt.Errorf("seed: %w", err)
			}
		}

		var maxID int
		if err := tx.Model(&models.Drill{}).Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error; err != nil {
			return err
		}
		d.ID = maxID + 1
		return tx.Create(&d).Error
	})
	if err != nil {
		return 0, fmt.Errorf("catalog: append drill: %w", err)
	}
	return d.ID, nil
}

// Filter queries drills by age category and sport. The result is filtered
// again in Go because MySQL's default collation compares case-insensitively.
func (s *DBStore) Filter(ctx context.Context, ageCategory, sport string) ([]models.Drill, error) {
	var drills []models.Drill
	err := s.db.WithContext(ctx).
		Where("age_category = ? AND sport = ?", ageCategory, sport).
		Order("id ASC").
		Find(&drills).Error
	if err != nil {
		return nil, &StorageReadError{Path: "table drills", Err: err}
	}
	if len(drills) == 0 {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Drill{}).Count(&count).Error; err != nil {
			return nil, &StorageReadError{Path: "table drills", Err: err}
		}
		if count == 0 {
			return Filter(models.SeedDrills(), ageCategory, sport), nil
		}
	}
	return Filter(drills, ageCategory, sport), nil
}

// Import replaces the table contents with drills, keeping their ids.
func (s *DBStore) Import(ctx context.Context, drills []models.Drill) error {
	if err := checkIDs(drills); err != nil {
		return fmt.Errorf("catalog: import: %w", err)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Drill{}).Error; err != nil {
			return err
		}
		if len(drills) == 0 {
			return nil
		}
		return tx.Create(&drills).Error
	})
	if err != nil {
		return fmt.Errorf("catalog: import: %w", err)
	}
	return nil
}
