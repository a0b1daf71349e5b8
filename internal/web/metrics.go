package web

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/zulandar/drillplan/internal/images"
	"github.com/zulandar/drillplan/internal/pdf"
)

type metrics struct {
	schedules     prometheus.Counter
	shortfalls    prometheus.Counter
	appended      prometheus.Counter
	imageFailures prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		schedules: f.NewCounter(prometheus.CounterOpts{
			Namespace: "drillplan",
			Name:      "schedules_generated_total",
			Help:      "Schedules generated for pages, PDFs and the API.",
		}),
		shortfalls: f.NewCounter(prometheus.CounterOpts{
			Namespace: "drillplan",
			Name:      "schedule_shortfalls_total",
			Help:      "Schedules with fewer drills per session than requested.",
		}),
		appended: f.NewCounter(prometheus.CounterOpts{
			Namespace: "drillplan",
			Name:      "drills_appended_total",
			Help:      "Drills added to the catalog.",
		}),
		imageFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: "drillplan",
			Name:      "image_fetch_failures_total",
			Help:      "Drill images skipped in PDF exports because they could not be fetched.",
		}),
	}
}

// countingSource counts failed image fetches.
type countingSource struct {
	src      pdf.ImageSource
	failures prometheus.Counter
}

func (s *countingSource) Fetch(ctx context.Context, url string) (*images.Image, error) {
	img, err := s.src.Fetch(ctx, url)
	if err != nil {
		s.failures.Inc()
	}
	return img, err
}
