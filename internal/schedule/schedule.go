// Package schedule assembles a week of training sessions by sampling drills
// from the catalog.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/zulandar/drillplan/internal/catalog"
	"github.com/zulandar/drillplan/internal/models"
)

// Params describes one schedule request.
type Params struct {
	AgeCategory      string `json:"age_category" form:"age_category"`
	Sport            string `json:"sport" form:"sport"`
	DrillsPerSession int    `json:"drills_per_session" form:"drills_per_session"`
	MinutesPerDrill  int    `json:"minutes_per_drill" form:"minutes_per_drill"`
	SessionCount     int    `json:"session_count" form:"session_count"`

	// Seed fixes the random draw. Zero picks a random seed, which is
	// reported back on the Schedule.
	Seed uint64 `json:"seed,omitempty" form:"seed"`
}

// ValidationError reports a request parameter that was rejected before any
// sampling took place.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schedule: invalid %s: %s", e.Field, e.Reason)
}

// Validate checks the request. All violations are returned joined; use
// errors.As to get the first *ValidationError.
func (p Params) Validate() error {
	var errs []error
	if strings.TrimSpace(p.Sport) == "" {
		errs = append(errs, &ValidationError{Field: "sport", Reason: "is required"})
	}
	if strings.TrimSpace(p.AgeCategory) == "" {
		errs = append(errs, &ValidationError{Field: "age_category", Reason: "is required"})
	}
	if p.SessionCount < 1 {
		errs = append(errs, &ValidationError{Field: "session_count", Reason: fmt.Sprintf("must be at least 1, got %d", p.SessionCount)})
	}
	if p.DrillsPerSession < 1 {
		errs = append(errs, &ValidationError{Field: "drills_per_session", Reason: fmt.Sprintf("must be at least 1, got %d", p.DrillsPerSession)})
	}
	if p.MinutesPerDrill < 1 {
		errs = append(errs, &ValidationError{Field: "minutes_per_drill", Reason: fmt.Sprintf("must be at least 1, got %d", p.MinutesPerDrill)})
	}
	return errors.Join(errs...)
}

// Filterer is the part of catalog.Store the generator needs.
type Filterer interface {
	Filter(ctx context.Context, ageCategory, sport string) ([]models.Drill, error)
}

// Build validates p, filters the store and generates a schedule.
func Build(ctx context.Context, store Filterer, p Params) (*models.Schedule, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	drills, err := store.Filter(ctx, p.AgeCategory, p.Sport)
	if err != nil {
		return nil, err
	}
	return generate(drills, p), nil
}

// Generate builds a schedule from a catalog snapshot. Each session draws
// min(DrillsPerSession, matching drills) distinct drills uniformly at random,
// independently of the other sessions. When fewer drills match than were
// requested the sessions are shorter; check Schedule.Short.
func Generate(drills []models.Drill, p Params) (*models.Schedule, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return generate(catalog.Filter(drills, p.AgeCategory, p.Sport), p), nil
}

// generate samples sessions from pool, which must already be filtered for p.
func generate(pool []models.Drill, p Params) *models.Schedule {
	seed := p.Seed
	if seed == 0 {
		seed = rand.Uint64() | 1
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	k := min(p.DrillsPerSession, len(pool))
	if k < p.DrillsPerSession {
		log.Printf("schedule: only %d %s/%s drills available, %d requested per session",
			len(pool), p.Sport, p.AgeCategory, p.DrillsPerSession)
	}

	s := &models.Schedule{
		Sport:           p.Sport,
		AgeCategory:     p.AgeCategory,
		MinutesPerDrill: p.MinutesPerDrill,
		Requested:       p.DrillsPerSession,
		PerSession:      k,
		Available:       len(pool),
		Seed:            seed,
		GeneratedAt:     time.Now().UTC(),
		Sessions:        make([]models.Session, 0, p.SessionCount),
	}
	for n := 1; n <= p.SessionCount; n++ {
		sess := models.Session{
			Label:   SessionLabel(n),
			Entries: make([]models.Entry, 0, k),
		}
		for i, idx := range rng.Perm(len(pool))[:k] {
			d := pool[idx]
			sess.Entries = append(sess.Entries, models.Entry{
				Label:       EntryLabel(n, i+1),
				DrillID:     d.ID,
				Category:    d.Category,
				Instruction: d.Instruction,
				Equipment:   d.Equipment,
				Minutes:     p.MinutesPerDrill,
				ImageURL:    d.ImageURL,
			})
		}
		s.Sessions = append(s.Sessions, sess)
	}
	return s
}

// SessionLabel returns the display label of session n (1-based).
func SessionLabel(n int) string {
	return fmt.Sprintf("Session %d", n)
}

// EntryLabel returns the display label of drill i (1-based) in session n.
func EntryLabel(n, i int) string {
	return fmt.Sprintf("Session %d - Drill %d", n, i)
}
