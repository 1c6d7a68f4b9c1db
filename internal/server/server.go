// Package server assembles the sandbox API: store, services, handlers and the
// HTTP server around them.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/vitemonmedoc/medoc/internal/config"
	authHandler "github.com/vitemonmedoc/medoc/internal/handler/auth"
	"github.com/vitemonmedoc/medoc/internal/handler/health"
	patientHandler "github.com/vitemonmedoc/medoc/internal/handler/patient"
	userHandler "github.com/vitemonmedoc/medoc/internal/handler/user"
	"github.com/vitemonmedoc/medoc/internal/middleware"
	"github.com/vitemonmedoc/medoc/internal/repository"
	"github.com/vitemonmedoc/medoc/internal/repository/memory"
	"github.com/vitemonmedoc/medoc/internal/repository/postgres"
	"github.com/vitemonmedoc/medoc/internal/router"
	authService "github.com/vitemonmedoc/medoc/internal/service/auth"
	patientService "github.com/vitemonmedoc/medoc/internal/service/patient"
	userService "github.com/vitemonmedoc/medoc/internal/service/user"
	"github.com/vitemonmedoc/medoc/pkg/auth"
	"github.com/vitemonmedoc/medoc/pkg/logger"
	"github.com/vitemonmedoc/medoc/pkg/metrics"
	"github.com/vitemonmedoc/medoc/pkg/security"
)

type Server struct {
	cfg     *config.Config
	log     *logger.Logger
	router  *router.Router
	closers []func() error
}

type store struct {
	users    repository.UserRepository
	patients repository.PatientRepository
	ping     health.Pinger
	close    func() error
}

func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (*store, error) {
	if cfg.DatabaseURL == "" {
		log.Info("using in-memory store")
		db := memory.NewDB()
		return &store{
			users:    memory.NewUserRepository(db),
			patients: memory.NewPatientRepository(db),
			ping:     db,
			close:    func() error { return nil },
		}, nil
	}

	db, err := postgres.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	log.Info("using postgres store")
	return &store{
		users:    postgres.NewUserRepository(db),
		patients: postgres.NewPatientRepository(db),
		ping:     db,
		close:    db.Close,
	}, nil
}

// New wires everything and seeds the admin account.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.Nop()
	}

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	m := metrics.New("medoc_sandbox")
	hasher := security.NewBcryptHasher(cfg.BcryptCost, cfg.MinPasswordLen)
	tokens := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiry)

	authSvc := authService.NewService(st.users, hasher, tokens, log)
	userSvc := userService.NewService(st.users, hasher, log)
	patientSvc := patientService.NewService(st.patients, st.users, log)

	if err := userSvc.SeedAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		_ = st.close()
		return nil, fmt.Errorf("failed to seed admin: %w", err)
	}

	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	r := router.NewRouter(m, health.NewHandler(st.ping), router.RouterConfig{
		RateLimit:      rate.Limit(cfg.RateLimit),
		RateBurst:      cfg.RateBurst,
		RequestTimeout: cfg.RequestTimeout,
		AllowOrigins:   cfg.AllowOrigins,
		Logger:         &log.ZL,
	},
		authHandler.NewHandler(authSvc, m),
		userHandler.NewHandler(userSvc, m),
		patientHandler.NewHandler(patientSvc, authMiddleware, m),
	)

	return &Server{
		cfg:     cfg,
		log:     log.WithComponent("server"),
		router:  r,
		closers: []func() error{st.close},
	}, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	s.log.Info("server exited properly")
	return nil
}

func (s *Server) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
