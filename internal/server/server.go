package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Server runs the digest viewer, optionally re-running the pipeline on a
// cron schedule so the served digest stays current.
type Server struct {
	handler  *Handler
	port     string
	schedule string
	log      *zap.Logger
}

// New creates a viewer server. schedule is a cron expression or empty for
// refresh-on-demand only.
func New(handler *Handler, port, schedule string, log *zap.Logger) *Server {
	return &Server{
		handler:  handler,
		port:     port,
		schedule: schedule,
		log:      log,
	}
}

// Run serves until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if s.schedule != "" {
		scheduler := cron.New()
		_, err := scheduler.AddFunc(s.schedule, func() {
			if err := s.handler.Refresh(ctx); err != nil {
				s.log.Error("Scheduled refresh failed", zap.Error(err))
			}
		})
		if err != nil {
			return fmt.Errorf("invalid refresh schedule %q: %w", s.schedule, err)
		}
		scheduler.Start()
		defer scheduler.Stop()
		s.log.Info("Scheduled digest refresh", zap.String("cron", s.schedule))
	}

	srv := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.handler,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Viewer listening", zap.String("port", s.port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.log.Info("Viewer shutting down")
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
