// Package models defines the records shared by the catalog, the schedule
// generator and the presentation layers.
package models

// Drill is a single training exercise in the catalog.
type Drill struct {
	ID              int    `gorm:"primaryKey;autoIncrement:false" json:"id" yaml:"id"`
	Sport           string `gorm:"size:64;not null;index:idx_drills_filter,priority:2" json:"sport" yaml:"sport"`
	AgeCategory     string `gorm:"size:32;not null;index:idx_drills_filter,priority:1" json:"age_category" yaml:"age_category"`
	Category        string `gorm:"size:64" json:"category" yaml:"category"`
	Instruction     string `gorm:"type:text;not null" json:"instruction" yaml:"instruction"`
	Equipment       string `gorm:"type:text" json:"equipment" yaml:"equipment"`
	ImageURL        string `gorm:"type:text" json:"image_url" yaml:"image_url"`
	DurationMinutes int    `gorm:"default:10" json:"duration_minutes" yaml:"duration_minutes"`
}

// TableName pins the table name regardless of gorm naming strategy.
func (Drill) TableName() string { return "drills" }

// SeedDrills returns the built-in catalog used when no persisted catalog
// exists. Each call returns a fresh slice.
func SeedDrills() []Drill {
	return []Drill{
		{
			ID:              1,
			Sport:           "hockey",
			AgeCategory:     "U12",
			Category:        "techniek",
			Instruction:     "Dribbel met bal in slalom tussen pionnen.",
			Equipment:       "6 pylonen, 1 bal per speler",
			ImageURL:        "https://example.com/slalom.png",
			DurationMinutes: 10,
		},
		{
			ID:              2,
			Sport:           "voetbal",
			AgeCategory:     "U10",
			Category:        "conditie",
			Instruction:     "Sprint afstanden van 10, 20 en 30 meter.",
			Equipment:       "Pionnen, stopwatch",
			ImageURL:        "https://example.com/sprint.png",
			DurationMinutes: 8,
		},
		{
			ID:              3,
			Sport:           "hockey",
			AgeCategory:     "U12",
			Category:        "passing",
			Instruction:     "Oefen push-passes met tweetallen op 10 meter afstand.",
			Equipment:       "2 ballen, 4 pylonen",
			ImageURL:        "https://example.com/pushpass.png",
			DurationMinutes: 10,
		},
	}
}
