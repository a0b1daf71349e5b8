package models

import (
	"fmt"
	"time"
)

// Entry is one assigned drill slot within a session.
type Entry struct {
	Label       string `json:"label"`
	DrillID     int    `json:"drill_id"`
	Category    string `json:"category"`
	Instruction string `json:"instruction"`
	Equipment   string `json:"equipment"`
	Minutes     int    `json:"minutes"`
	ImageURL    string `json:"image_url"`
}

// Session is one training within the week, e.g. "Session 2".
type Session struct {
	Label   string  `json:"label"`
	Entries []Entry `json:"entries"`
}

// Schedule is a generated week of sessions. It is never persisted.
type Schedule struct {
	Sport           string    `json:"sport"`
	AgeCategory     string    `json:"age_category"`
	MinutesPerDrill int       `json:"minutes_per_drill"`
	Requested       int       `json:"requested_per_session"`
	PerSession      int       `json:"drills_per_session"`
	Available       int       `json:"available"`
	Seed            uint64    `json:"seed"`
	GeneratedAt     time.Time `json:"generated_at"`
	Sessions        []Session `json:"sessions"`
}

// Short reports whether fewer drills were assigned per session than requested
// because the filtered catalog was too small.
func (s *Schedule) Short() bool {
	return s.PerSession < s.Requested
}

// Notice describes the shortfall for display, or returns "" when the
// schedule is complete.
func (s *Schedule) Notice() string {
	switch {
	case !s.Short():
		return ""
	case s.Available == 0:
		return fmt.Sprintf("No drills available for %s %s.", s.Sport, s.AgeCategory)
	default:
		return fmt.Sprintf("Only %d drills available for %s %s, fewer than the %d requested per session.",
			s.Available, s.Sport, s.AgeCategory, s.Requested)
	}
}

// Session returns the session with the given label.
func (s *Schedule) Session(label string) (Session, bool) {
	for _, sess := range s.Sessions {
		if sess.Label == label {
			return sess, true
		}
	}
	return Session{}, false
}

// TotalMinutes returns the planned minutes for one session.
func (s *Schedule) TotalMinutes() int {
	return s.PerSession * s.MinutesPerDrill
}
