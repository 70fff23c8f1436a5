// @title                       Company Directory API
// @version                     1.0
// @description                 Users register, sign in and manage the companies they own; the directory listing is public.
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bizdir/company-api/internal/api"
	"github.com/bizdir/company-api/internal/core/ports"
	"github.com/bizdir/company-api/internal/core/service"
	"github.com/bizdir/company-api/internal/pkg/config"
	"github.com/bizdir/company-api/internal/pkg/password"
	"github.com/bizdir/company-api/internal/pkg/token"
	"github.com/bizdir/company-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "company-api: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
		Service:     "company-api",
	})

	b, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.close()

	codec, err := token.NewCodec(cfg.JWT.Secret)
	if err != nil {
		return fmt.Errorf("token codec: %w", err)
	}
	hasher := password.NewHasher(password.DefaultParams)

	var locker ports.OwnerLocker
	if b.lock != nil {
		locker = b.lock
	}

	guard := service.NewGuard(b.companies, cfg.QuotaPolicy())
	media := service.NewMediaService(b.media, cfg.UploadPolicies(), logger.Component("media"))
	authService := service.NewAuthService(b.users, codec, hasher, cfg.JWT.TTL, logger.Component("auth_service"))
	companyService := service.NewCompanyService(b.companies, guard, media, locker, logger.Component("company_service"))
	resolver := service.NewPrincipalResolver(b.principals, codec, cfg.JWT.Scheme)

	e := api.NewRouter(api.Dependencies{
		AuthService:    authService,
		CompanyService: companyService,
		Resolver:       resolver,
		Pingers:        b.pingers,
		Logger:         log,
		CORSOrigins:    cfg.CORSAllowOrigins(),
		BodyLimit:      cfg.BodyLimit,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("storage", cfg.StorageBackend).
			Bool("create_lock", locker != nil).
			Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
