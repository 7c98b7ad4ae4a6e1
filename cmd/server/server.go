package main

import (
	"context"
	"time"

	"github.com/JaimeStill/agrocheck/internal/config"
	"github.com/JaimeStill/agrocheck/internal/infrastructure"
)

// Server owns the infrastructure, the mounted modules, and the HTTP listener.
type Server struct {
	infra           *infrastructure.Infrastructure
	modules         *Modules
	http            *httpServer
	shutdownTimeout time.Duration
}

// NewServer wires infrastructure and modules without starting anything.
func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, err
	}

	router := buildRouter(infra)
	modules.Mount(router)

	infra.Logger.Info(
		"server initialized",
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
		"env", cfg.Env(),
		"storage", cfg.Storage.Provider,
		"model", cfg.Model.Name,
		"auth", cfg.Auth.Mode,
		"cache", cfg.Cache.Enabled(),
	)

	return &Server{
		infra:           infra,
		modules:         modules,
		http:            newHTTPServer(&cfg.Server, router, infra.Logger),
		shutdownTimeout: cfg.ShutdownTimeoutDuration(),
	}, nil
}

// Run starts the server and blocks until ctx is done, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	if err := s.start(); err != nil {
		return err
	}

	<-ctx.Done()

	s.infra.Logger.Info("initiating shutdown", "timeout", s.shutdownTimeout)
	return s.infra.Lifecycle.Shutdown(s.shutdownTimeout)
}

// start registers subsystem hooks and begins listening. Readiness flips
// once every startup hook has finished.
func (s *Server) start() error {
	s.infra.Logger.Info("starting service")
	started := time.Now()

	if err := s.infra.Start(); err != nil {
		return err
	}
	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("all subsystems ready", "elapsed", time.Since(started))
	}()
	return nil
}
