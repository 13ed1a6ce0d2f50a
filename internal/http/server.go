package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"

	"finweb/internal/api"
	"finweb/internal/core"
	"finweb/internal/log"
	"finweb/internal/middleware/ratelimit"
	"finweb/internal/middleware/security"
	"finweb/internal/middleware/trace"
	"finweb/internal/services"
	"finweb/internal/session"
	appweb "finweb/web"
)

var errTemplatesNotLoaded = errors.New("templates not loaded")

// Exporter appends a month of expenses to an external sheet.
type Exporter interface {
	Export(ctx context.Context, month core.Month, expenses []core.Expense, names map[int64]string) (int, error)
}

// Deps are the collaborators of the web server.
type Deps struct {
	Gateway  services.Gateway
	Expenses *services.ExpenseService
	Sessions *session.Manager
	Exporter Exporter // nil disables Sheets export
	Logger   *log.Logger

	RateLimitPerMinute int
}

// Server serves pages and HTMX partials and calls the backend on the browser's behalf.
type Server struct {
	http.Server
	templates *template.Template
	gateway   services.Gateway
	expenses  *services.ExpenseService
	sessions  *session.Manager
	exporter  Exporter
	epochs    *api.Epochs
	validate  *validator.Validate
	logger    *log.Logger
	now       func() time.Time

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	appMetrics *appMetrics

	shutdownOnce sync.Once
}

type appMetrics struct {
	uptime          time.Time
	expensesCreated atomic.Int64
	generations     atomic.Int64
	staleDiscarded  atomic.Int64
	backendErrors   atomic.Int64
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Discard()
	}

	mux := http.NewServeMux()
	detector := security.NewDetector()
	limiterCfg := ratelimit.DefaultConfig()
	limiterCfg.RequestsPerMinute = deps.RateLimitPerMinute

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		gateway:          deps.Gateway,
		expenses:         deps.Expenses,
		sessions:         deps.Sessions,
		exporter:         deps.Exporter,
		epochs:           api.NewEpochs(),
		validate:         validator.New(),
		logger:           logger.WithComponent(log.ComponentHTTP),
		now:              time.Now,
		rateLimiter:      ratelimit.NewLimiter(limiterCfg),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(logger, detector.ExtractClientIP),
		appMetrics:       &appMetrics{uptime: time.Now()},
	}

	t, err := parseTemplates()
	if err != nil {
		s.logger.Warn("Failed parsing templates", log.FieldComponent, log.ComponentTemplate, log.FieldError, err.Error())
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err.Error())
	}

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)

	// Pages and partials behind the session gate
	mux.HandleFunc("/{$}", s.requireSession(s.handleDashboard))
	mux.HandleFunc("/ui/expenses", s.requireSession(s.handleExpensesPanel))
	mux.HandleFunc("/expenses", s.requireSession(s.handleCreateExpense))

	mux.HandleFunc("/categories", s.requireSession(s.handleCategories))
	mux.HandleFunc("/ui/categories", s.requireSession(s.handleCategoryList))
	mux.HandleFunc("/categories/{id}", s.requireSession(s.handleDeleteCategory))

	mux.HandleFunc("/recurring", s.requireSession(s.handleRecurringPage))
	mux.HandleFunc("/ui/recurring", s.requireSession(s.handleRecurringList))
	mux.HandleFunc("/recurring/{id}/generate", s.requireSession(s.handleGenerate))
	mux.HandleFunc("/recurring/generate-all", s.requireSession(s.handleGenerateAll))

	mux.HandleFunc("/analytics", s.requireSession(s.handleAnalyticsPage))
	mux.HandleFunc("/ui/analytics", s.requireSession(s.handleAnalyticsPanel))

	mux.HandleFunc("/export/expenses.csv", s.requireSession(s.handleExportCSV))
	mux.HandleFunc("/export/sheets", s.requireSession(s.handleExportSheets))

	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(detector.ExtractClientIP, s.onRateLimited)(handler)
	handler = detector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)
	s.Handler = handler

	return s
}

func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
}

var templateFuncs = template.FuncMap{
	"money": core.FormatAmount,
	"width": func(percent float64) template.CSS {
		if percent < 0 {
			percent = 0
		}
		if percent > 100 {
			percent = 100
		}
		return template.CSS(fmt.Sprintf("width: %.1f%%", percent))
	},
	"pct": func(percent float64) string {
		return fmt.Sprintf("%.1f%%", percent)
	},
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").Write(w)
}

// render executes a full page or partial, logging template failures.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	s.write(w, r, NewHTMXResponse().Status(status).Render(s.templates, name, data))
}

// write sends b, logging a rendering failure first.
func (s *Server) write(w http.ResponseWriter, r *http.Request, b *HTMXResponseBuilder) {
	if err := b.Err(); err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentTemplate).ErrorContext(r.Context(), "Template execution failed",
			log.FieldError, err.Error())
	}
	b.Write(w)
}

// logBackendError writes the diagnostic detail of a gateway failure.
func (s *Server) logBackendError(ctx context.Context, component, msg string, err error) {
	s.appMetrics.backendErrors.Add(1)
	logger := log.FromContext(ctx).WithComponent(component)
	args := []any{log.FieldError, err.Error()}
	if ae, ok := api.AsError(err); ok {
		args = append(args, log.FieldErrorKind, string(ae.Kind), log.FieldStatusCode, ae.Status, log.FieldBody, ae.Body)
	}
	logger.ErrorContext(ctx, msg, args...)
}

// Shutdown stops the rate limiter and gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
