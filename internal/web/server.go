// Package web serves the schedule form, the generated schedule page, its
// PDF export and the drill catalog over HTTP.
package web

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zulandar/drillplan/internal/catalog"
	"github.com/zulandar/drillplan/internal/config"
	"github.com/zulandar/drillplan/internal/pdf"
)

// StartOpts holds configuration for the web server.
type StartOpts struct {
	Store    catalog.Store
	Defaults config.DefaultsConfig
	Images   pdf.ImageSource      // optional; nil exports PDFs without images
	Registry *prometheus.Registry // optional; a fresh registry is used when nil
	Port     int
	Out      io.Writer
}

// Start launches the web server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Store == nil {
		return fmt.Errorf("web: store is required")
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	gin.SetMode(gin.ReleaseMode)
	router, err := NewRouter(opts)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Drillplan running at http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("web: %w", err)
	}
	return nil
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(opts StartOpts) (*gin.Engine, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("web: store is required")
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("web: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := newMetrics(reg)

	h := &handlers{
		store:    opts.Store,
		defaults: opts.Defaults,
		metrics:  m,
	}
	if opts.Images != nil {
		h.images = &countingSource{src: opts.Images, failures: m.imageFailures}
	}
	registerRoutes(router, h, reg)
	return router, nil
}

// parseTemplates loads the embedded HTML templates.
func parseTemplates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}
