package web

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zulandar/drillplan/internal/catalog"
	"github.com/zulandar/drillplan/internal/config"
	"github.com/zulandar/drillplan/internal/models"
	"github.com/zulandar/drillplan/internal/pdf"
	"github.com/zulandar/drillplan/internal/schedule"
)

// Upper bounds for requests coming in over HTTP.
const (
	maxSessions         = 7
	maxDrillsPerSession = 10
	maxMinutesPerDrill  = 120
)

type handlers struct {
	store    catalog.Store
	defaults config.DefaultsConfig
	images   pdf.ImageSource
	metrics  *metrics
}

// registerRoutes sets up all routes on the Gin router.
func registerRoutes(router *gin.Engine, h *handlers, reg *prometheus.Registry) {
	staticFS, _ := fs.Sub(assetsFS, "assets")
	router.StaticFS("/static", http.FS(staticFS))

	// Pages.
	router.GET("/", h.handleForm)
	router.GET("/schedule", h.handleSchedulePage)
	router.GET("/schedule.pdf", h.handleSchedulePDF)
	router.GET("/drills", h.handleDrillList)
	router.POST("/drills", h.handleDrillAdd)

	// JSON API.
	api := router.Group("/api")
	api.GET("/drills", h.handleAPIDrills)
	api.POST("/drills", h.handleAPIDrillAdd)
	api.POST("/schedule", h.handleAPISchedule)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
}

// drillInput is the body of POST /drills and POST /api/drills.
type drillInput struct {
	Sport           string `json:"sport" form:"sport"`
	AgeCategory     string `json:"age_category" form:"age_category"`
	Category        string `json:"category" form:"category"`
	Instruction     string `json:"instruction" form:"instruction"`
	Equipment       string `json:"equipment" form:"equipment"`
	ImageURL        string `json:"image_url" form:"image_url"`
	DurationMinutes int    `json:"duration_minutes" form:"duration_minutes"`
}

func (in drillInput) drill() models.Drill {
	return models.Drill{
		Sport:           strings.TrimSpace(in.Sport),
		AgeCategory:     strings.TrimSpace(in.AgeCategory),
		Category:        strings.TrimSpace(in.Category),
		Instruction:     strings.TrimSpace(in.Instruction),
		Equipment:       strings.TrimSpace(in.Equipment),
		ImageURL:        strings.TrimSpace(in.ImageURL),
		DurationMinutes: in.DurationMinutes,
	}
}

func (h *handlers) handleForm(c *gin.Context) {
	c.HTML(http.StatusOK, "layout.html", h.formData(gin.H{"page": "form"}))
}

func (h *handlers) formData(data gin.H) gin.H {
	data["sports"] = h.defaults.Sports
	data["ages"] = h.defaults.AgeCategories
	data["sessionOptions"] = intRange(1, 5)
	data["drillOptions"] = intRange(1, 5)
	data["minuteOptions"] = intRange(5, 20)
	data["defaults"] = h.defaults
	return data
}

func (h *handlers) handleSchedulePage(c *gin.Context) {
	s, err := h.buildFromQuery(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.HTML(http.StatusOK, "layout.html", gin.H{
		"page":     "schedule",
		"schedule": s,
		"pdfURL":   pdfURL(s),
	})
}

func (h *handlers) handleSchedulePDF(c *gin.Context) {
	s, err := h.buildFromQuery(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := pdf.Render(c.Request.Context(), &buf, s, h.images); err != nil {
		h.renderError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pdf.Filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func (h *handlers) handleDrillList(c *gin.Context) {
	drills, err := h.store.Load(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	data := gin.H{
		"page":   "drills",
		"drills": narrow(drills, c.Query("sport"), c.Query("age_category"), c.Query("q")),
		"query":  c.Query("q"),
		"input":  drillInput{DurationMinutes: h.defaults.MinutesPerDrill},
	}
	if id, err := strconv.Atoi(c.Query("added")); err == nil && id > 0 {
		data["added"] = id
	}
	c.HTML(http.StatusOK, "layout.html", h.formData(data))
}

func (h *handlers) handleDrillAdd(c *gin.Context) {
	var in drillInput
	if err := c.ShouldBind(&in); err != nil {
		h.renderError(c, &schedule.ValidationError{Field: "drill", Reason: err.Error()})
		return
	}
	id, err := h.store.Append(c.Request.Context(), in.drill())
	if errors.Is(err, catalog.ErrInvalidDrill) {
		drills, loadErr := h.store.Load(c.Request.Context())
		if loadErr != nil {
			h.renderError(c, loadErr)
			return
		}
		c.HTML(http.StatusBadRequest, "layout.html", h.formData(gin.H{
			"page":   "drills",
			"drills": drills,
			"query":  "",
			"input":  in,
			"error":  err.Error(),
		}))
		return
	}
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.metrics.appended.Inc()
	c.Redirect(http.StatusSeeOther, "/drills?added="+strconv.Itoa(id))
}

func (h *handlers) handleAPIDrills(c *gin.Context) {
	drills, err := h.store.Load(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	drills = narrow(drills, c.Query("sport"), c.Query("age_category"), c.Query("q"))
	c.JSON(http.StatusOK, gin.H{"drills": drills, "count": len(drills)})
}

func (h *handlers) handleAPIDrillAdd(c *gin.Context) {
	var in drillInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := h.store.Append(c.Request.Context(), in.drill())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	h.metrics.appended.Inc()
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *handlers) handleAPISchedule(c *gin.Context) {
	var p schedule.Params
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s, err := h.build(c, p)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *handlers) buildFromQuery(c *gin.Context) (*models.Schedule, error) {
	var p schedule.Params
	if err := c.ShouldBindQuery(&p); err != nil {
		return nil, &schedule.ValidationError{Field: "query", Reason: err.Error()}
	}
	return h.build(c, p)
}

func (h *handlers) build(c *gin.Context, p schedule.Params) (*models.Schedule, error) {
	if err := checkLimits(p); err != nil {
		return nil, err
	}
	s, err := schedule.Build(c.Request.Context(), h.store, p)
	if err != nil {
		return nil, err
	}
	h.metrics.schedules.Inc()
	if s.Short() {
		h.metrics.shortfalls.Inc()
	}
	return s, nil
}

func (h *handlers) renderError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("web: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.HTML(status, "layout.html", gin.H{
		"page":   "error",
		"status": status,
		"error":  err.Error(),
	})
}

// statusFor maps rejected input to 400 and everything else, storage read
// failures included, to 500.
func statusFor(err error) int {
	var ve *schedule.ValidationError
	if errors.As(err, &ve) || errors.Is(err, catalog.ErrInvalidDrill) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func checkLimits(p schedule.Params) error {
	var errs []error
	if p.SessionCount > maxSessions {
		errs = append(errs, &schedule.ValidationError{Field: "session_count", Reason: fmt.Sprintf("must be at most %d", maxSessions)})
	}
	if p.DrillsPerSession > maxDrillsPerSession {
		errs = append(errs, &schedule.ValidationError{Field: "drills_per_session", Reason: fmt.Sprintf("must be at most %d", maxDrillsPerSession)})
	}
	if p.MinutesPerDrill > maxMinutesPerDrill {
		errs = append(errs, &schedule.ValidationError{Field: "minutes_per_drill", Reason: fmt.Sprintf("must be at most %d", maxMinutesPerDrill)})
	}
	return errors.Join(errs...)
}

// pdfURL links the PDF export of s. The seed is included so the download
// contains the same drills as the page.
func pdfURL(s *models.Schedule) string {
	v := url.Values{}
	v.Set("sport", s.Sport)
	v.Set("age_category", s.AgeCategory)
	v.Set("session_count", strconv.Itoa(len(s.Sessions)))
	v.Set("drills_per_session", strconv.Itoa(s.Requested))
	v.Set("minutes_per_drill", strconv.Itoa(s.MinutesPerDrill))
	v.Set("seed", strconv.FormatUint(s.Seed, 10))
	return "/schedule.pdf?" + v.Encode()
}

// narrow applies the optional list filters. Sport and age category match
// exactly; q is a fuzzy search.
func narrow(drills []models.Drill, sport, age, q string) []models.Drill {
	out := make([]models.Drill, 0, len(drills))
	for _, d := range drills {
		if sport != "" && d.Sport != sport {
			continue
		}
		if age != "" && d.AgeCategory != age {
			continue
		}
		out = append(out, d)
	}
	return catalog.Search(out, q)
}

func intRange(lo, hi int) []int {
	out := make([]int, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		out = append(out, i)
	}
	return out
}
