package catalog

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/zulandar/drillplan/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// Every pooled connection would get its own :memory: database.
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.Drill{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func TestDBStore_LoadEmptyReturnsSeeds(t *testing.T) {
	db := testDB(t)
	s := NewDBStore(db)

	drills, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(drills, models.SeedDrills()) {
		t.Errorf("Load = %+v, want seeds", drills)
	}

	var count int64
	db.Model(&models.Drill{}).Count(&count)
	if count != 0 {
		t.Errorf("Load wrote %d rows, want 0", count)
	}
}

func TestDBStore_AppendOnSeedCatalog(t *testing.T) {
	db := testDB(t)
	s := NewDBStore(db)
	ctx := context.Background()

	id, err := s.Append(ctx, newDrill())
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if id != 4 {
		t.Errorf("id = %d, want 4", id)
	}

	drills, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(drills) != 4 {
		t.Fatalf("len = %d, want 4", len(drills))
	}
	want := newDrill()
	want.ID = 4
	if drills[3] != want {
		t.Errorf("drills[3] = %+v, want %+v", drills[3], want)
	}

	id, err = s.Append(ctx, newDrill())
	if err != nil {
		t.Fatalf("second Append: %v", err)
	}
	if id != 5 {
		t.Errorf("second id = %d, want 5", id)
	}
}

func TestDBStore_AppendRejectsInvalid(t *testing.T) {
	s := NewDBStore(testDB(t))
	if _, err := s.Append(context.Background(), models.Drill{}); !errors.Is(err, ErrInvalidDrill) {
		t.Errorf("err = %v, want ErrInvalidDrill", err)
	}
}

func TestDBStore_Filter(t *testing.T) {
	db := testDB(t)
	s := NewDBStore(db)
	ctx := context.Background()

	// Empty table filters the seeds.
	got, err := s.Filter(ctx, "U12", "hockey")
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Errorf("Filter(empty table) = %+v, want seeds 1 and 3", got)
	}

	if err := s.Import(ctx, []models.Drill{
		{ID: 1, Sport: "hockey", AgeCategory: "U12", Instruction: "a", DurationMinutes: 5},
		{ID: 2, Sport: "Hockey", AgeCategory: "U12", Instruction: "b", DurationMinutes: 5},
		{ID: 3, Sport: "hockey", AgeCategory: "U12", Instruction: "c", DurationMinutes: 5},
	}); err != nil {
		t.Fatalf("Import: %v", err)
	}
	got, err = s.Filter(ctx, "U12", "hockey")
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Errorf("Filter = %+v, want ids 1 and 3", got)
	}

	got, err = s.Filter(ctx, "U8", "hockey")
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Filter(no match) = %+v, want empty", got)
	}
}

func TestDBStore_ImportReplaces(t *testing.T) {
	s := NewDBStore(testDB(t))
	ctx := context.Background()

	if _, err := s.Append(ctx, newDrill()); err != nil {
		t.Fatal(err)
	}
	imported := []models.Drill{
		{ID: 10, Sport: "korfbal", AgeCategory: "U8", Instruction: "x", DurationMinutes: 5},
	}
	if err := s.Import(ctx, imported); err != nil {
		t.Fatalf("Import: %v", err)
	}
	drills, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(drills, imported) {
		t.Errorf("Load = %+v, want %+v", drills, imported)
	}

	if err := s.Import(ctx, []models.Drill{{ID: 1}, {ID: 1}}); err == nil {
		t.Error("Import should reject duplicate ids")
	}
}

func TestDBStore_MatchesFileStore(t *testing.T) {
	ctx := context.Background()
	stores := map[string]Store{
		"file": NewFileStore(t.TempDir() + "/catalog.json"),
		"db":   NewDBStore(testDB(t)),
	}
	results := make(map[string][]models.Drill)
	for name, s := range stores {
		if _, err := s.Append(ctx, newDrill()); err != nil {
			t.Fatalf("%s Append: %v", name, err)
		}
		drills, err := s.Load(ctx)
		if err != nil {
			t.Fatalf("%s Load: %v", name, err)
		}
		results[name] = drills
	}
	if !reflect.DeepEqual(results["file"], results["db"]) {
		t.Errorf("stores diverge:\nfile: %+v\ndb:   %+v", results["file"], results["db"])
	}
}
