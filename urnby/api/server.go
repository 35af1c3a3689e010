// Package api serves a read-only JSON view of the camp: health, the
// dashboard snapshot and the replacement queue of a guild.
package api

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/urnby/campbot/urnby/database/models"
	"github.com/urnby/campbot/urnby/format"
	"github.com/urnby/campbot/urnby/logger"
)

// Snapshots computes dashboard views without posting them.
type Snapshots interface {
	Snapshot(ctx context.Context, guildID snowflake.ID) (format.View, error)
}

// Queues lists replacement queues.
type Queues interface {
	List(ctx context.Context, guildID snowflake.ID) ([]*models.Replacement, error)
	WaitMinutes(e *models.Replacement) int64
}

// Guilds reports which guilds are configured.
type Guilds interface {
	Guilds() ([]snowflake.ID, error)
}

type Server struct {
	app       *fiber.App
	snapshots Snapshots
	queues    Queues
	guilds    Guilds
	version   string
	commit    string
	startedAt time.Time
}

func New(snapshots Snapshots, queues Queues, guilds Guilds, version, commit string) *Server {
	s := &Server{
		snapshots: snapshots,
		queues:    queues,
		guilds:    guilds,
		version:   version,
		commit:    commit,
		startedAt: time.Now(),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "Urnby Status API",
		ServerHeader:          "Urnby",
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})
	s.app.Use(recover.New())
	s.app.Use(loggingMiddleware())

	s.app.Get("/healthz", s.health)
	guild := s.app.Group("/api/guilds")
	guild.Get("/:id/dashboard", s.withGuild(s.dashboard))
	guild.Get("/:id/queue", s.withGuild(s.queue))
	return s
}

// App exposes the router, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves on addr until ctx is cancelled. It returns the listen error, or
// the shutdown error once ctx is done.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		logger.LogSystem("Starting status API", slog.String("address", addr))
		errCh <- s.app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
}
