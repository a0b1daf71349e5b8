// Package catalog owns the drill catalog: loading it from persisted storage,
// appending new drills, and filtering by age category and sport.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zulandar/drillplan/internal/models"
)

// Store is a persisted drill catalog.
type Store interface {
	// Load returns the full catalog in insertion order. When nothing has been
	// persisted yet it returns the seed drills.
	Load(ctx context.Context) ([]models.Drill, error)

	// Append assigns the next id to d, persists the full catalog and returns
	// the assigned id. Any id already set on d is ignored.
	Append(ctx context.Context, d models.Drill) (int, error)

	// Filter returns the drills matching both fields exactly, in catalog order.
	Filter(ctx context.Context, ageCategory, sport string) ([]models.Drill, error)
}

// ErrInvalidDrill is returned by Append when a drill is missing required fields.
var ErrInvalidDrill = errors.New("catalog: invalid drill")

// StorageReadError reports a catalog that exists but could not be read or
// decoded. It is never repaired automatically.
type StorageReadError struct {
	Path string
	Err  error
}

func (e *StorageReadError) Error() string {
	return fmt.Sprintf("catalog: read %s: %v", e.Path, e.Err)
}

func (e *StorageReadError) Unwrap() error { return e.Err }

// Filter returns the sub-sequence of drills whose AgeCategory and Sport equal
// the given values (case-sensitive), preserving order.
func Filter(drills []models.Drill, ageCategory, sport string) []models.Drill {
	out := make([]models.Drill, 0, len(drills))
	for _, d := range drills {
		if d.AgeCategory == ageCategory && d.Sport == sport {
			out = append(out, d)
		}
	}
	return out
}

// NextID returns max(existing ids)+1, or 1 for an empty catalog.
func NextID(drills []models.Drill) int {
	maxID := 0
	for _, d := range drills {
		if d.ID > maxID {
			maxID = d.ID
		}
	}
	return maxID + 1
}

// Validate checks the fields a drill needs before it can be appended.
func Validate(d models.Drill) error {
	var errs []string
	if strings.TrimSpace(d.Sport) == "" {
		errs = append(errs, "sport is required")
	}
	if strings.TrimSpace(d.AgeCategory) == "" {
		errs = append(errs, "age_category is required")
	}
	if strings.TrimSpace(d.Instruction) == "" {
		errs = append(errs, "instruction is required")
	}
	if d.DurationMinutes < 1 {
		errs = append(errs, "duration_minutes must be at least 1")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDrill, strings.Join(errs, "; "))
	}
	return nil
}

// checkIDs rejects catalogs with duplicate or non-positive ids.
func checkIDs(drills []models.Drill) error {
	seen := make(map[int]bool, len(drills))
	for i, d := range drills {
		if d.ID < 1 {
			return fmt.Errorf("drill at index %d has invalid id %d", i, d.ID)
		}
		if seen[d.ID] {
			return fmt.Errorf("duplicate drill id %d", d.ID)
		}
		seen[d.ID] = true
	}
	return nil
}
