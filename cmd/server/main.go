package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"staffdir/docs"
	"staffdir/internal/auth"
	"staffdir/internal/cache"
	"staffdir/internal/config"
	"staffdir/internal/handler"
	"staffdir/internal/logging"
	"staffdir/internal/pagecache"
	"staffdir/internal/repository"
	"staffdir/internal/router"
	"staffdir/internal/routes"
	"staffdir/internal/service"
	"staffdir/internal/validation"
	"staffdir/internal/view"
)

// @title Staff Directory API
// @version 1.0
// @description Employee directory API: create, list, fetch and upsert employees keyed by identity provider id.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeStore, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store init", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer closeStore(context.Background()) //nolint:errcheck
	logger.Info("employee store ready", zap.String("driver", cfg.StoreDriver))

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(ctx); err != nil {
		logger.Warn("redis unavailable, caching disabled until it recovers", zap.Error(err))
	}
	pages := pagecache.New(cacheClient, cfg.PageCacheTTL, logger)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.IDPSigningKey, cfg.IDPIssuer)
	tokenStore := auth.NewTokenStore(cacheClient)
	authMiddleware := auth.NewMiddleware(jwtService, tokenStore, cfg.SessionCookie, routes.Login)

	manageSchema := validation.NewManageSchema(cfg.StrictNames)
	employeeService := service.NewEmployeeService(repo, cacheClient, pages, manageSchema, logger)

	renderer, err := view.New()
	if err != nil {
		logger.Fatal("templates", zap.Error(err))
	}

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer

	router.Register(e, authMiddleware, router.Handlers{
		Pages:     handler.NewPageHandler(employeeService, pages, renderer, validation.NewCreateSchema(), manageSchema, logger),
		Sessions:  handler.NewSessionHandler(authMiddleware, tokenStore, cfg.SessionCookie, cfg.IDPSignInURL, logger),
		Employees: handler.NewEmployeeHandler(employeeService, manageSchema),
		Imports:   handler.NewImportHandler(employeeService),
	}, logger)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	logger.Info("swagger documentation available", zap.String("url", swaggerURL(cfg)))

	go func() {
		addr := ":" + cfg.ServerPort
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
}

// swaggerURL returns the docs URL; SWAGGER_HOST may already include a scheme.
func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}
