// Package web serves the studyflow pages and JSON API.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bskcorona-github/studyflow/pkg/application"
	"github.com/bskcorona-github/studyflow/pkg/domain/events"
	"github.com/bskcorona-github/studyflow/pkg/domain/study"
	"github.com/bskcorona-github/studyflow/pkg/infrastructure/googleauth"
	"github.com/bskcorona-github/studyflow/pkg/infrastructure/sse"
)

//go:embed templates/*
var templatesFS embed.FS

var pages = []string{"index.html", "dashboard.html", "goals.html", "goal_new.html", "goal.html", "tasks.html", "error.html"}

// DefaultSessionTTL is the lifetime of a sign-in.
const DefaultSessionTTL = 24 * time.Hour

// SessionStore resolves session cookies to users.
type SessionStore interface {
	study.SessionRepository
	UpsertUser(ctx context.Context, u *study.User) error
	GetUser(ctx context.Context, id string) (*study.User, error)
}

// Authenticator runs the Google sign-in flow.
type Authenticator interface {
	Enabled() bool
	AuthCodeURL(state, verifier string) string
	Exchange(ctx context.Context, code, verifier string) (*googleauth.Identity, error)
}

// Options configures the HTTP server.
type Options struct {
	Addr       string
	BaseURL    string
	SessionTTL time.Duration
}

// Deps are the services the handlers call.
type Deps struct {
	Goals     *application.GoalService
	Tasks     *application.TaskService
	Planner   *application.PlannerService
	Dashboard *application.DashboardService
	Sessions  SessionStore
	Auth      Authenticator
	Publisher events.Publisher
	Logger    *zap.Logger
}

// Server is the studyflow HTTP server.
type Server struct {
	opts      Options
	goals     *application.GoalService
	tasks     *application.TaskService
	planner   *application.PlannerService
	dashboard *application.DashboardService
	sessions  SessionStore
	auth      Authenticator
	stream    *sse.Handler
	logger    *zap.Logger
	templates map[string]*template.Template
	server    *http.Server
	now       func() time.Time
}

// NewServer parses the page templates and wires the handlers.
func NewServer(opts Options, deps Deps) (*Server, error) {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	funcMap := template.FuncMap{
		"formatDate":  formatDate,
		"percent":     percent,
		"progress":    study.GoalProgress,
		"statusClass": statusClass,
	}
	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.New(page).Funcs(funcMap).ParseFS(templatesFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse templates: %w", err)
		}
		templates[page] = tmpl
	}

	s := &Server{
		opts:      opts,
		goals:     deps.Goals,
		tasks:     deps.Tasks,
		planner:   deps.Planner,
		dashboard: deps.Dashboard,
		sessions:  deps.Sessions,
		auth:      deps.Auth,
		logger:    logger,
		templates: templates,
		now:       time.Now,
	}
	if deps.Publisher != nil {
		s.stream = sse.NewHandler(deps.Publisher, func(r *http.Request) string {
			if u := userFrom(r.Context()); u != nil {
				return u.ID
			}
			return ""
		})
	}
	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       120 * time.Second,
		// No write timeout: event streams stay open.
	}
	return s, nil
}

// SetClock replaces the time source (tests).
func (s *Server) SetClock(now func() time.Time) { s.now = now }

// Handler returns the routed handler with session and logging middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /auth/signin", s.handleSignIn)
	mux.HandleFunc("GET /auth/callback", s.handleCallback)
	mux.HandleFunc("POST /auth/signout", s.handleSignOut)

	mux.HandleFunc("GET /dashboard", s.page(s.handleDashboard))
	mux.HandleFunc("GET /goals", s.page(s.handleGoals))
	mux.HandleFunc("GET /goals/new", s.page(s.handleGoalNew))
	mux.HandleFunc("POST /goals", s.page(s.handleGoalCreate))
	mux.HandleFunc("GET /goals/{id}", s.page(s.handleGoal))
	mux.HandleFunc("POST /goals/{id}/delete", s.page(s.handleGoalDelete))
	mux.HandleFunc("GET /tasks", s.page(s.handleTasks))
	mux.HandleFunc("POST /tasks/{id}/toggle", s.page(s.handleTaskToggle))

	mux.HandleFunc("POST /api/ai", s.api(s.handleAPISuggest))
	mux.HandleFunc("GET /api/goals", s.api(s.handleAPIListGoals))
	mux.HandleFunc("POST /api/goals", s.api(s.handleAPICreateGoal))
	mux.HandleFunc("DELETE /api/goals", s.api(s.handleAPIDeleteGoalQuery))
	mux.HandleFunc("GET /api/goals/{id}", s.api(s.handleAPIGetGoal))
	mux.HandleFunc("DELETE /api/goals/{id}", s.api(s.handleAPIDeleteGoal))
	mux.HandleFunc("POST /api/goals/{id}/export", s.api(s.handleAPIExportGoal))
	mux.HandleFunc("GET /api/tasks", s.api(s.handleAPIListTasks))
	mux.HandleFunc("POST /api/tasks", s.api(s.handleAPICreateTask))
	mux.HandleFunc("PATCH /api/tasks", s.api(s.handleAPIUpdateTask))
	mux.HandleFunc("DELETE /api/tasks", s.api(s.handleAPIDeleteTask))
	if s.stream != nil {
		mux.Handle("GET /api/events", s.stream)
	}

	return s.logRequests(s.withSession(mux))
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("web server starting", zap.String("addr", s.opts.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) secureCookies() bool {
	return strings.HasPrefix(s.opts.BaseURL, "https://")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(study.DateLayout)
}

func percent(fraction float64) int {
	return int(fraction*100 + 0.5)
}

func statusClass(status study.TaskStatus) string {
	return "status-" + string(status)
}
