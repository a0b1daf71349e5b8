package publish

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/zulandar/drillplan/internal/config"
	"github.com/zulandar/drillplan/internal/models"
	"github.com/zulandar/drillplan/internal/schedule"
)

// Publisher builds schedules and sends them to every configured adapter.
type Publisher struct {
	store    schedule.Filterer
	adapters []Adapter
}

// NewPublisher creates a Publisher.
func NewPublisher(store schedule.Filterer, adapters ...Adapter) *Publisher {
	return &Publisher{store: store, adapters: adapters}
}

// Params converts the configured publish request into generator parameters.
func Params(r config.RequestConfig) schedule.Params {
	return schedule.Params{
		Sport:            r.Sport,
		AgeCategory:      r.AgeCategory,
		SessionCount:     r.SessionCount,
		DrillsPerSession: r.DrillsPerSession,
		MinutesPerDrill:  r.MinutesPerDrill,
	}
}

// Publish generates a schedule for p and sends it to all adapters. A failing
// adapter does not stop delivery to the others; all failures are returned
// joined.
func (p *Publisher) Publish(ctx context.Context, params schedule.Params) (*models.Schedule, error) {
	if len(p.adapters) == 0 {
		return nil, fmt.Errorf("publish: no adapters configured")
	}
	s, err := schedule.Build(ctx, p.store, params)
	if err != nil {
		return nil, fmt.Errorf("publish: build schedule: %w", err)
	}

	msg := Format(s)
	var errs []error
	for _, a := range p.adapters {
		if err := a.Send(ctx, msg); err != nil {
			log.Printf("publish: send to %s: %v", a.Name(), err)
			errs = append(errs, fmt.Errorf("publish: %s: %w", a.Name(), err))
		}
	}
	return s, errors.Join(errs...)
}

// Close closes all adapters.
func (p *Publisher) Close() error {
	var errs []error
	for _, a := range p.adapters {
		if err := a.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publish: close %s: %w", a.Name(), err))
		}
	}
	return errors.Join(errs...)
}
