package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bskcorona-github/studyflow/internal/infrastructure/config"
	"github.com/bskcorona-github/studyflow/internal/infrastructure/wiring"
)

const shutdownTimeout = 10 * time.Second

var watchConfig bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the studyflow web application",
	Long: `Serve the web pages and JSON API on server.addr.

Edits to the ai section of the config file are applied without a restart.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	services, err := wiring.BuildAppServices(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer services.Close()

	server, err := services.NewServer()
	if err != nil {
		return err
	}

	if watchConfig {
		go func() {
			if err := config.Watch(ctx, configPath, 0, logger, services.ReloadAI); err != nil {
				logger.Warn("config watcher stopped", zap.String("path", configPath), zap.Error(err))
			}
		}()
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Start()
	}()
	logger.Info("studyflow listening",
		zap.String("addr", cfg.Server.Addr),
		zap.String("base_url", cfg.Server.BaseURL),
		zap.String("ai_provider", services.Provider.ID()))

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-serveErr
}

func init() {
	serveCmd.Flags().BoolVar(&watchConfig, "watch-config", true, "reload the ai section when the config file changes")
	RootCmd.AddCommand(serveCmd)
}
