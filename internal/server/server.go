// Package server defines the core Server struct that composes the app's main
// dependencies.
//
// It owns the lifecycle of:
//   - configuration
//   - logger
//   - database pool
//   - redis client (cache gateways + asynq backing store)
//   - upstream API client
//   - synchronization services
//   - background job worker server and cron schedule
//   - http.Server
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/statloop/fplsync/internal/cache"
	"github.com/statloop/fplsync/internal/config"
	"github.com/statloop/fplsync/internal/database"
	"github.com/statloop/fplsync/internal/lib/fpl"
	"github.com/statloop/fplsync/internal/lib/job"
	"github.com/statloop/fplsync/internal/repository"
	"github.com/statloop/fplsync/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Server is the application container that holds shared resources. It is not
// the HTTP server itself; the internal *http.Server is configured in
// SetupHTTPServer and run in Start.
type Server struct {
	Config   *config.Config
	Logger   *zerolog.Logger
	DB       *database.Database
	Redis    *redis.Client
	Services *service.Services
	Job      *job.JobService
	Cron     *job.Cron

	httpServer *http.Server
	jobErr     <-chan error
}

// New constructs a Server and initializes core dependencies, leaf-first:
// database pool, redis client, store gateways, services, job workers, cron.
//
// Redis connection failure does not block startup (reads fall back to the
// store; jobs will error loudly on their own). Database failure does.
func New(cfg *config.Config, logger *zerolog.Logger) (*Server, error) {
	db, err := database.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	redisClient := cache.NewClient(cfg, logger)

	repos := repository.NewRepositories(db.Pool)
	upstream := fpl.NewClient(cfg, logger)
	services := service.NewServices(cfg, repos, cache.NewStore(redisClient), upstream, logger)

	jobService := job.NewJobService(cfg, services.Coordinator, logger)
	jobErr := jobService.Start()

	cronSchedule, err := job.NewCron(cfg.Sync.CronSpec, jobService, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build cron schedule: %w", err)
	}
	cronSchedule.Start()

	return &Server{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Redis:    redisClient,
		Services: services,
		Job:      jobService,
		Cron:     cronSchedule,
		jobErr:   jobErr,
	}, nil
}

// SetupHTTPServer configures the internal net/http server with the given
// handler (the echo router).
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start runs the HTTP server. It blocks until the server stops or errors, or
// until the background job server reports a startup failure.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Msg("starting server")

	httpErr := make(chan error, 1)
	go func() {
		httpErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-httpErr:
		return err
	case err := <-s.jobErr:
		return fmt.Errorf("job server failed: %w", err)
	}
}

// Shutdown gracefully shuts down the server and its dependencies: HTTP first
// (finish inflight requests until ctx deadline), then cron, job workers,
// redis, and the database pool.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	if s.Cron != nil {
		s.Cron.Stop()
	}
	if s.Job != nil {
		s.Job.Stop()
	}
	if err := s.Redis.Close(); err != nil {
		s.Logger.Error().Err(err).Msg("failed to close redis client")
	}
	if err := s.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	return nil
}
