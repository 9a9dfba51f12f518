package main

import (
	"context"
	"time"

	"github.com/JaimeStill/actigraphy/internal/config"
	"github.com/JaimeStill/actigraphy/internal/infrastructure"
)

// Server owns the infrastructure, the mounted modules and the HTTP
// listener for one process.
type Server struct {
	infra           *infrastructure.Infrastructure
	modules         *Modules
	http            *httpServer
	shutdownTimeout time.Duration
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	infra.Logger.Info(
		"actigraphy starting",
		"version", cfg.Version,
		"env", cfg.Env(),
	)

	modules, err := NewModules(infra.Lifecycle.Context(), infra, cfg)
	if err != nil {
		return nil, err
	}

	router := buildRouter(infra, cfg.Version)
	modules.Mount(router)

	infra.Logger.Info("server initialized", "addr", cfg.Server.Addr())

	return &Server{
		infra:           infra,
		modules:         modules,
		http:            newHTTPServer(&cfg.Server, router, infra.Logger),
		shutdownTimeout: cfg.ShutdownTimeoutDuration(),
	}, nil
}

// Run starts every subsystem, serves until ctx is cancelled and then
// drains within the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}

	<-ctx.Done()
	return s.Shutdown(s.shutdownTimeout)
}

func (s *Server) Start() error {
	s.infra.Logger.Info("starting service")

	if err := s.infra.Start(); err != nil {
		return err
	}

	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		if err := s.infra.Lifecycle.WaitForStartup(); err != nil {
			s.infra.Logger.Error("startup failed, serving without readiness", "error", err)
			return
		}
		s.infra.Logger.Info("all subsystems ready")
	}()

	return nil
}

func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown", "timeout", timeout)
	if err := s.infra.Lifecycle.Shutdown(timeout); err != nil {
		return err
	}
	s.infra.Logger.Info("actigraphy stopped")
	return nil
}
