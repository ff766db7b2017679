package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/formapplication/internal/config"
	"github.com/deppfellow/formapplication/internal/database"
	"github.com/deppfellow/formapplication/internal/handler"
	"github.com/deppfellow/formapplication/internal/logger"
	"github.com/deppfellow/formapplication/internal/repository"
	"github.com/deppfellow/formapplication/internal/router"
	"github.com/deppfellow/formapplication/internal/server"
	"github.com/deppfellow/formapplication/internal/service"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func main() {
	root := &cobra.Command{
		Use:           "formapplication",
		Short:         "FormV1 REST service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCommand(), migrateCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCommand() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply PostgreSQL migrations before serving")

	return cmd
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply PostgreSQL migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.Database.Driver != config.DriverPostgres {
				return fmt.Errorf("migrations only apply to the %q driver, configured driver is %q",
					config.DriverPostgres, cfg.Database.Driver)
			}

			log := logger.NewLogger(cfg.Observability)
			if err := database.Migrate(cmd.Context(), &log, cfg); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}
			return nil
		},
	}
}

func serve(parent context.Context, migrate bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	defer loggerService.Shutdown()

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	if migrate && cfg.Database.Driver == config.DriverPostgres {
		if err := database.Migrate(parent, &log, cfg); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize server")
	}

	repos, err := repository.NewRepositories(srv)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize repositories")
	}
	services := service.NewServices(srv, repos)
	handlers := handler.NewHandlers(srv, services)
	r := router.NewRouter(srv, handlers)

	srv.SetupHTTPServer(r)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, srv, &log)
}

// lifecycle is the part of *server.Server that run drives.
type lifecycle interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// run serves until ctx is done or the server fails, then shuts down. A
// server failure is returned after shutdown, joined with any shutdown error.
func run(ctx context.Context, srv lifecycle, log *zerolog.Logger) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Start()
	}()

	var startErr error
	select {
	case startErr = <-serveErr:
		if startErr != nil {
			log.Error().Err(startErr).Msg("server stopped unexpectedly")
			startErr = fmt.Errorf("server stopped: %w", startErr)
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warn().Err(err).Msg("server shutdown timed out")
		} else {
			log.Error().Err(err).Msg("server forced to shutdown")
		}
		return errors.Join(startErr, err)
	}

	if startErr != nil {
		return startErr
	}

	log.Info().Msg("server exited properly")
	return nil
}
