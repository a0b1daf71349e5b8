package catalog

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/zulandar/drillplan/internal/models"
)

func TestFilter_SeedCatalog(t *testing.T) {
	got := Filter(models.SeedDrills(), "U12", "hockey")
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 3 {
		t.Errorf("ids = %d,%d, want 1,3", got[0].ID, got[1].ID)
	}
}

func TestFilter_OnlyExactMatchesInOrder(t *testing.T) {
	drills := []models.Drill{
		{ID: 5, Sport: "hockey", AgeCategory: "U12"},
		{ID: 2, Sport: "Hockey", AgeCategory: "U12"},
		{ID: 9, Sport: "hockey", AgeCategory: "u12"},
		{ID: 1, Sport: "hockey", AgeCategory: "U12"},
		{ID: 7, Sport: "voetbal", AgeCategory: "U12"},
		{ID: 3, Sport: "hockey", AgeCategory: "U12"},
	}
	got := Filter(drills, "U12", "hockey")
	want := []int{5, 1, 3}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, d := range got {
		if d.ID != want[i] {
			t.Errorf("got[%d].ID = %d, want %d", i, d.ID, want[i])
		}
		if d.Sport != "hockey" || d.AgeCategory != "U12" {
			t.Errorf("got[%d] = %+v does not match criteria", i, d)
		}
	}
}

func TestFilter_NoMatches(t *testing.T) {
	got := Filter(models.SeedDrills(), "U8", "hockey")
	if got == nil {
		t.Fatal("Filter should return an empty slice, not nil")
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestNextID(t *testing.T) {
	tests := []struct {
		name   string
		drills []models.Drill
		want   int
	}{
		{"empty", nil, 1},
		{"seeds", models.SeedDrills(), 4},
		{"gap", []models.Drill{{ID: 2}, {ID: 10}, {ID: 4}}, 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextID(tt.drills); got != tt.want {
				t.Errorf("NextID = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := models.Drill{Sport: "voetbal", AgeCategory: "U10", Instruction: "X", DurationMinutes: 10}
	if err := Validate(valid); err != nil {
		t.Fatalf("Validate(valid) = %v", err)
	}

	err := Validate(models.Drill{Sport: " ", DurationMinutes: 0})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, ErrInvalidDrill) {
		t.Errorf("error %v should wrap ErrInvalidDrill", err)
	}
	for _, want := range []string{"sport", "age_category", "instruction", "duration_minutes"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error = %q, want to mention %q", err.Error(), want)
		}
	}
}

func TestStorageReadError_Unwrap(t *testing.T) {
	err := &StorageReadError{Path: "x.json", Err: fs.ErrPermission}
	if !errors.Is(err, fs.ErrPermission) {
		t.Error("StorageReadError should unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "x.json") {
		t.Errorf("error = %q, want to contain path", err.Error())
	}
}

func TestCheckIDs(t *testing.T) {
	if err := checkIDs(models.SeedDrills()); err != nil {
		t.Errorf("checkIDs(seeds) = %v", err)
	}
	if err := checkIDs([]models.Drill{{ID: 1}, {ID: 1}}); err == nil {
		t.Error("expected duplicate id error")
	}
	if err := checkIDs([]models.Drill{{ID: 0}}); err == nil {
		t.Error("expected invalid id error")
	}
}
