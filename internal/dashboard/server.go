// Package dashboard serves the reporting web UI and its JSON API.
package dashboard

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/UnknownOlympus/plutus/internal/metrics"
	"github.com/UnknownOlympus/plutus/internal/models"
	"github.com/UnknownOlympus/plutus/internal/report"
	"github.com/UnknownOlympus/plutus/internal/view"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed assets
var assetsFS embed.FS

const (
	defaultPort       = 8000
	defaultHeartbeat  = 15 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// TaskService logs and lists task entries.
type TaskService interface {
	Create(ctx context.Context, fields models.TaskFields) (string, error)
	List(ctx context.Context) ([]models.Task, error)
}

// GoalService reads and merges goal documents.
type GoalService interface {
	Save(ctx context.Context, agentName string, fields models.GoalFields) error
	Get(ctx context.Context, agentName string) (*models.Goal, error)
}

// Subscriber streams full snapshots of tasks and goals.
type Subscriber interface {
	SubscribeTasks(ctx context.Context, onUpdate func([]models.Task)) (func(), error)
	SubscribeGoal(ctx context.Context, agentName string, onUpdate func(*models.Goal)) (func(), error)
}

// StartOpts holds configuration for the dashboard server.
type StartOpts struct {
	Log     *slog.Logger
	Tasks   TaskService
	Goals   GoalService
	Live    Subscriber
	Metrics *metrics.Metrics
	Port    int
	// Heartbeat is the interval of keep-alive events on the live stream.
	Heartbeat time.Duration
	// Now defaults to time.Now. Goal proration and form defaults depend on it.
	Now func() time.Time
}

func (opts StartOpts) withDefaults() StartOpts {
	if opts.Log == nil {
		opts.Log = slog.New(slog.DiscardHandler)
	}
	if opts.Port <= 0 {
		opts.Port = defaultPort
	}
	if opts.Heartbeat <= 0 {
		opts.Heartbeat = defaultHeartbeat
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return opts
}

type handlers struct {
	log         *slog.Logger
	tasks       TaskService
	goals       GoalService
	live        Subscriber
	metrics     *metrics.Metrics
	heartbeat   time.Duration
	now         func() time.Time
	submissions *view.Submissions
}

// NewRouter builds the gin engine with every page and API route registered.
func NewRouter(opts StartOpts) (*gin.Engine, error) {
	if opts.Tasks == nil || opts.Goals == nil || opts.Live == nil {
		return nil, errors.New("dashboard: task, goal and live services are required")
	}
	opts = opts.withDefaults()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestDuration(opts.Metrics))

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	err = registerRoutes(router, &handlers{
		log:         opts.Log.With(slog.String("division", "dashboard")),
		tasks:       opts.Tasks,
		goals:       opts.Goals,
		live:        opts.Live,
		metrics:     opts.Metrics,
		heartbeat:   opts.Heartbeat,
		now:         opts.Now,
		submissions: view.NewSubmissions(),
	})
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	return router, nil
}

// Start launches the dashboard HTTP server. It blocks until ctx is cancelled,
// then shuts down gracefully. Live streams end with ctx.
func Start(ctx context.Context, opts StartOpts) error {
	opts = opts.withDefaults()
	router, err := NewRouter(opts)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(opts.Port),
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			opts.Log.Error("Dashboard shutdown failed", "error", err)
		}
	}()

	opts.Log.InfoContext(ctx, "Dashboard running", "port", opts.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// requestDuration records every request under its route pattern.
func requestDuration(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestDuration.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// parseTemplates loads the embedded HTML templates.
func parseTemplates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"num":    formatNumber,
		"signed": report.FormatDelta,
		"orNA": func(v any) string {
			if s, ok := v.(string); ok {
				if s == "" {
					return "N/A"
				}
				return s
			}
			if formatNumber(v) == "0" {
				return "N/A"
			}
			return formatNumber(v)
		},
		"dashboardURL": dashboardURL,
	}
}

func formatNumber(v any) string {
	if c, ok := v.(models.Counter); ok {
		v = c.Float()
	}
	return report.FormatNumber(cast.ToFloat64(v))
}
