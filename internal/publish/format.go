package publish

import (
	"fmt"
	"strings"

	"github.com/zulandar/drillplan/internal/models"
)

// Color constants for section sidebars.
const (
	ColorComplete = "#36a64f"
	ColorShort    = "#ff9800"
)

// Format builds the chat message for a schedule.
func Format(s *models.Schedule) Message {
	msg := Message{
		Title: fmt.Sprintf("Training schedule %s %s", s.Sport, s.AgeCategory),
		Text: fmt.Sprintf("Training schedule for %s %s: %d sessions, %d drills of %d minutes each.",
			s.Sport, s.AgeCategory, len(s.Sessions), s.PerSession, s.MinutesPerDrill),
		Notice: s.Notice(),
	}

	color := ColorComplete
	if s.Short() {
		color = ColorShort
	}
	for _, sess := range s.Sessions {
		sec := Section{Title: sess.Label, Color: color}
		for _, e := range sess.Entries {
			sec.Fields = append(sec.Fields, Field{
				Name:  e.Label,
				Value: entryValue(e),
			})
		}
		msg.Sections = append(msg.Sections, sec)
	}
	return msg
}

func entryValue(e models.Entry) string {
	var b strings.Builder
	b.WriteString(e.Instruction)
	if e.Equipment != "" {
		fmt.Fprintf(&b, "\nEquipment: %s", e.Equipment)
	}
	fmt.Fprintf(&b, "\nDuration: %d minutes", e.Minutes)
	return b.String()
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
