package catalog

import (
	"testing"

	"github.com/zulandar/drillplan/internal/models"
)

func TestSearch(t *testing.T) {
	drills := models.SeedDrills()

	got := Search(drills, "stopwatch")
	if len(got) != 1 || got[0].ID != 2 {
		t.Errorf("Search(stopwatch) = %+v, want drill 2", got)
	}

	got = Search(drills, "passing")
	if len(got) == 0 || got[0].ID != 3 {
		t.Errorf("Search(passing) = %+v, want drill 3 first", got)
	}

	if got := Search(drills, "zzzqqq"); len(got) != 0 {
		t.Errorf("Search(no match) = %+v, want empty", got)
	}
}

func TestSearch_EmptyQueryReturnsAll(t *testing.T) {
	drills := models.SeedDrills()
	got := Search(drills, "  ")
	if len(got) != len(drills) {
		t.Fatalf("len = %d, want %d", len(got), len(drills))
	}
	got[0].Sport = "changed"
	if drills[0].Sport == "changed" {
		t.Error("Search must not alias the input slice")
	}
}
