package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fin-hub/config"
	"fin-hub/internal/adapter/gateway"
	adapterhandler "fin-hub/internal/adapter/handler"
	"fin-hub/internal/infrastructure/keyset"
	"fin-hub/internal/infrastructure/mongodb"
	infratoken "fin-hub/internal/infrastructure/token"
	"fin-hub/internal/infrastructure/vault"
	"fin-hub/internal/usecase"
	appmiddleware "fin-hub/middleware"
	"fin-hub/utils/logger"
	"fin-hub/utils/otel"
	"fin-hub/utils/validator"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Handle healthcheck subcommand (for Docker healthcheck in distroless image)
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		if err := runHealthcheck(); err != nil {
			fmt.Fprintf(os.Stderr, "Healthcheck failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize OpenTelemetry
	otelCfg := otel.ConfigFromEnv()
	otelShutdown, err := otel.InitProvider(ctx, otelCfg)
	if err != nil {
		slog.Warn("failed to initialize OpenTelemetry, continuing without tracing", "error", err)
		otelCfg.Enabled = false
	}

	// Initialize structured logger
	logger.Init(cfg.LogLevel, otelCfg.Enabled)

	slog.InfoContext(ctx, "configuration loaded",
		"issuer", cfg.Issuer(),
		"port", cfg.Port,
		"plaid_env", cfg.PlaidEnv,
		"jwks_cache_ttl", cfg.JWKSCacheTTL,
		"session_ttl", cfg.SessionTokenTTL)

	// Storage
	db, disconnect, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to mongodb", "error", err)
		os.Exit(1)
	}
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		slog.ErrorContext(ctx, "failed to ensure indexes", "error", err)
		os.Exit(1)
	}
	userRepo := mongodb.NewUserRepository(db)
	itemRepo := mongodb.NewItemRepository(db)

	// Infrastructure
	keys := keyset.NewCache(cfg.JWKSURL(), cfg.JWKSCacheTTL)
	verifier := infratoken.NewVerifier(keys, cfg.Auth0Audience, cfg.Issuer())
	sessionCodec := infratoken.NewCodec(cfg.SessionTokenSecret, cfg.SessionTokenTTL)

	cipher, err := vault.NewFernetCipher(cfg.AccessTokenEncryptionKey)
	if err != nil {
		slog.ErrorContext(ctx, "invalid access token encryption key", "error", err)
		os.Exit(1)
	}

	auth0, err := gateway.NewAuth0Gateway(ctx, cfg.Issuer(), cfg.Auth0ClientID, cfg.Auth0ClientSecret)
	if err != nil {
		slog.ErrorContext(ctx, "failed to set up identity provider gateway", "error", err)
		os.Exit(1)
	}
	plaidGateway := gateway.NewPlaidGateway(cfg.PlaidClientID, cfg.PlaidSecret, cfg.PlaidEnv)

	// Usecases
	loginUC := usecase.NewLogin(auth0, userRepo, sessionCodec, slog.Default())
	resolveUC := usecase.NewResolveSession(sessionCodec, userRepo, slog.Default())
	profileUC := usecase.NewGetProfile(userRepo, slog.Default())
	linkTokenUC := usecase.NewCreateLinkToken(plaidGateway, slog.Default())
	exchangeUC := usecase.NewExchangePublicToken(plaidGateway, itemRepo, cipher, slog.Default())
	transactionsUC := usecase.NewGetTransactions(itemRepo, cipher, plaidGateway, slog.Default())
	sandboxUC := usecase.NewCreateSandboxItem(plaidGateway, exchangeUC, slog.Default())

	// Handlers
	cookieCfg := adapterhandler.CookieConfig{Secure: cfg.CookieSecure, TTL: cfg.SessionTokenTTL}
	authHandler := adapterhandler.NewAuthHandler(loginUC, cookieCfg)
	usersHandler := adapterhandler.NewUsersHandler(profileUC)
	plaidHandler := adapterhandler.NewPlaidHandler(linkTokenUC, exchangeUC, transactionsUC, sandboxUC, cfg.PlaidEnv == "sandbox")
	healthHandler := adapterhandler.NewHealthHandler(otelCfg.ServiceName)

	// Setup Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator.New()

	// Security middleware
	e.Use(appmiddleware.SecurityHeaders())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))

	// OpenTelemetry tracing
	if otelCfg.Enabled {
		e.Use(otelecho.Middleware(otelCfg.ServiceName))
		e.Use(appmiddleware.OTelStatusMiddleware())
	}

	// Request logging
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			rctx := c.Request().Context()
			if v.Error == nil {
				slog.InfoContext(rctx, "request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				slog.ErrorContext(rctx, "request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))

	e.Use(middleware.Recover())

	// Auth middleware
	bearerAuth := appmiddleware.BearerAuth(verifier)
	sessionAuth := appmiddleware.SessionAuth(resolveUC, cfg.CookieSecure)

	// Rate limiters per endpoint group
	loginRL := appmiddleware.NewRateLimiter(10.0/60.0, 3) // 10 req/min
	apiRL := appmiddleware.NewRateLimiter(100.0/60.0, 10) // 100 req/min

	// Public routes
	e.GET("/", healthHandler.Root)
	e.GET("/health", healthHandler.Handle)

	api := e.Group("/api/v1")

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login, loginRL.Middleware())
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/session", authHandler.Session, sessionAuth)

	users := api.Group("/users", apiRL.Middleware(), bearerAuth)
	users.GET("/me", usersHandler.Me)

	plaidGroup := api.Group("/plaid", apiRL.Middleware(), sessionAuth)
	plaidGroup.POST("/link-token", plaidHandler.CreateLinkToken)
	plaidGroup.POST("/exchange", plaidHandler.Exchange)
	plaidGroup.POST("/items/:item_id/transactions", plaidHandler.Transactions)
	plaidGroup.POST("/sandbox/item", plaidHandler.SandboxItem)

	// Start server with errgroup for graceful shutdown
	address := fmt.Sprintf(":%s", cfg.Port)
	slog.InfoContext(ctx, "starting fin-hub server", "address", address)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := disconnect(shutdownCtx); err != nil {
			slog.Error("mongodb disconnect error", "error", err)
		}
		return otelShutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited properly")
}

// runHealthcheck performs a health check against the local server.
func runHealthcheck() error {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%s/health", port))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned status: %d", resp.StatusCode)
	}
	return nil
}
