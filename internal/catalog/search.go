package catalog

import (
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/zulandar/drillplan/internal/models"
)

// drillSource adapts a drill slice to fuzzy.Source.
type drillSource []models.Drill

func (s drillSource) String(i int) string {
	d := s[i]
	return d.Instruction + " " + d.Category + " " + d.Equipment
}

func (s drillSource) Len() int { return len(s) }

// Search returns the drills whose instruction, category or equipment fuzzily
// match query, best match first. An empty query returns all drills.
func Search(drills []models.Drill, query string) []models.Drill {
	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]models.Drill, len(drills))
		copy(out, drills)
		return out
	}
	matches := fuzzy.FindFrom(query, drillSource(drills))
	out := make([]models.Drill, 0, len(matches))
	for _, m := range matches {
		out = append(out, drills[m.Index])
	}
	return out
}
