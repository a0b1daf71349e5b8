package publish

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/zulandar/drillplan/internal/schedule"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Scheduler runs a job every time its cron schedule fires.
type Scheduler struct {
	sched cron.Schedule
	job   func(ctx context.Context)
}

// NewScheduler parses expr and returns a Scheduler for job.
func NewScheduler(expr string, job func(ctx context.Context)) (*Scheduler, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("publish: parse cron %q: %w", expr, err)
	}
	return &Scheduler{sched: sched, job: job}, nil
}

// Next returns the first fire time after from.
func (s *Scheduler) Next(from time.Time) time.Time {
	return s.sched.Next(from)
}

// Run blocks until ctx is cancelled, running the job on schedule. A fire
// that comes while the previous job is still running is skipped. Run waits
// for a running job to finish before returning.
func (s *Scheduler) Run(ctx context.Context) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.Schedule(s.sched, cron.FuncJob(func() { s.job(ctx) }))
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
}

// PublishJob returns a Scheduler job that publishes a schedule for params.
// Failures are logged; the next fire tries again.
func PublishJob(pub *Publisher, params schedule.Params) func(ctx context.Context) {
	return func(ctx context.Context) {
		s, err := pub.Publish(ctx, params)
		if err != nil {
			log.Printf("publish: scheduled run: %v", err)
		}
		if s != nil {
			log.Printf("publish: sent %s %s schedule with %d sessions", s.Sport, s.AgeCategory, len(s.Sessions))
		}
	}
}
