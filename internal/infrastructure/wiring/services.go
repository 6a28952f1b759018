// Package wiring assembles studyflow's services from a loaded config.
package wiring

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bskcorona-github/studyflow/internal/infrastructure/config"
	infraai "github.com/bskcorona-github/studyflow/pkg/ai"
	"github.com/bskcorona-github/studyflow/pkg/application"
	"github.com/bskcorona-github/studyflow/pkg/infrastructure/googleauth"
	"github.com/bskcorona-github/studyflow/pkg/infrastructure/gtasks"
	"github.com/bskcorona-github/studyflow/pkg/infrastructure/web"
	"github.com/bskcorona-github/studyflow/pkg/storage"
)

// AppServices exposes the application layer services wired to one database.
type AppServices struct {
	Config    *config.Config
	Store     *storage.SQLiteRepository
	Provider  *infraai.SwappableProvider
	Publisher *application.InMemoryEventPublisher
	Planner   *application.PlannerService
	Goals     *application.GoalService
	Tasks     *application.TaskService
	Dashboard *application.DashboardService
	Auth      *googleauth.Provider
	Logger    *zap.Logger
}

// BuildAppServices opens the database and constructs the services in
// dependency order. Close releases the database.
func BuildAppServices(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*AppServices, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	provider, err := LoadAIProvider(cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("AI provider: %w", err)
	}

	if err := cfg.Paths().Ensure(); err != nil {
		return nil, err
	}
	dbPath, err := cfg.Database()
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(ctx, dbPath)
	if err != nil {
		return nil, err
	}

	swappable := infraai.NewSwappableProvider(provider)
	publisher := application.NewInMemoryEventPublisher(logger)

	planner := application.NewPlannerService(swappable, store, logger)
	planner.SetJSONMode(cfg.AI.JSONMode)
	goals := application.NewGoalService(store, planner, publisher, logger)
	tasks := application.NewTaskService(store, publisher, logger)

	oauthConfig := googleauth.Config(cfg.Auth.GoogleClientID, cfg.Auth.GoogleClientSecret, callbackURL(cfg.Server.BaseURL))
	auth := googleauth.NewProvider(oauthConfig)
	if auth.Enabled() {
		goals.SetExporter(gtasks.NewExporter(oauthConfig))
	}

	logger.Debug("services ready",
		zap.String("database", dbPath),
		zap.String("provider", swappable.ID()),
		zap.Bool("google_sign_in", auth.Enabled()))

	return &AppServices{
		Config:    cfg,
		Store:     store,
		Provider:  swappable,
		Publisher: publisher,
		Planner:   planner,
		Goals:     goals,
		Tasks:     tasks,
		Dashboard: application.NewDashboardService(goals, tasks),
		Auth:      auth,
		Logger:    logger,
	}, nil
}

// NewServer builds the HTTP server over the services.
func (s *AppServices) NewServer() (*web.Server, error) {
	return web.NewServer(web.Options{
		Addr:       s.Config.Server.Addr,
		BaseURL:    s.Config.Server.BaseURL,
		SessionTTL: s.Config.Auth.SessionTTL,
	}, web.Deps{
		Goals:     s.Goals,
		Tasks:     s.Tasks,
		Planner:   s.Planner,
		Dashboard: s.Dashboard,
		Sessions:  s.Store,
		Auth:      s.Auth,
		Publisher: s.Publisher,
		Logger:    s.Logger,
	})
}

// ReloadAI applies the ai section of a reloaded config.
func (s *AppServices) ReloadAI(cfg *config.Config) {
	ReloadAI(s.Provider, s.Logger)(cfg)
}

func (s *AppServices) Close() error {
	return s.Store.Close()
}

func callbackURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/auth/callback"
}
