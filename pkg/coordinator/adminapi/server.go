// Package adminapi implements the coordinator's authenticated HTTP admin
// surface: operator login and account management, and read-only cluster
// node listing. It is entirely separate from the unauthenticated
// client<->coordinator wire protocol (spec.md Non-goals exclude
// authentication there; SPEC_FULL.md §3 adds this lighter JWT/bcrypt pair
// for cluster operators instead).
package adminapi

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/corefs/docfs/internal/logger"
	"github.com/corefs/docfs/pkg/config"
	"github.com/corefs/docfs/pkg/metadatastore"
)

// Server is the coordinator's admin API HTTP server.
type Server struct {
	httpServer *http.Server
	store      *metadatastore.Store
	operators  *operatorStore
	jwt        *jwtService

	cfg          config.AdminAPIConfig
	shutdownOnce sync.Once
}

// NewServer builds a Server from cfg. cfg.JWTSecret must be set; operator
// accounts persist to <stateDir>/operators.json, bootstrapping an "admin"
// account with a generated password on first run.
func NewServer(cfg config.AdminAPIConfig, stateDir string, store *metadatastore.Store) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("adminapi: jwt_secret is required when admin_api.enabled is true")
	}

	operators := newOperatorStore(filepath.Join(stateDir, "operators.json"), cfg.BcryptCost)
	if err := operators.load(); err != nil {
		return nil, fmt.Errorf("adminapi: load operator store: %w", err)
	}
	if password, created, err := operators.bootstrapAdmin(newOperatorID); err != nil {
		return nil, fmt.Errorf("adminapi: bootstrap admin operator: %w", err)
	} else if created {
		logBootstrapPassword("admin", password)
	}

	s := &Server{
		store:     store,
		operators: operators,
		jwt:       newJWTService(cfg.JWTSecret, cfg.TokenTTL),
		cfg:       cfg,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.newRouter(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s, nil
}

// Start listens and serves until ctx is cancelled, then shuts down
// gracefully. Mirrors pkg/controlplane/api.Server.Start's shape.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("admin API listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("adminapi: server failed: %w", err)
	}
}

// Stop gracefully shuts the server down. Safe to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.httpServer.Shutdown(ctx)
	})
	return err
}
