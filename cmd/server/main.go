package main // Entry point package

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/platif-ai/spbu-pos/internal/config"
	"github.com/platif-ai/spbu-pos/internal/database"
	"github.com/platif-ai/spbu-pos/internal/handler"
	"github.com/platif-ai/spbu-pos/internal/middleware"
	"github.com/platif-ai/spbu-pos/internal/queue"
	"github.com/platif-ai/spbu-pos/internal/relay"
	"github.com/platif-ai/spbu-pos/internal/repository"
	"github.com/platif-ai/spbu-pos/internal/router"
	"github.com/platif-ai/spbu-pos/internal/service"
	"github.com/platif-ai/spbu-pos/internal/terminal"
	"github.com/platif-ai/spbu-pos/internal/web"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()
	slog.SetDefault(newLogger(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := database.Open(initCtx, database.Options{
		User: cfg.DBUser, Password: cfg.DBPass,
		Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
		MaxOpen: cfg.DBMaxOpen,
	})
	if err != nil {
		cancel()
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.CreateSchema(initCtx, db); err != nil {
		cancel()
		slog.Error("schema setup failed", "error", err)
		os.Exit(1)
	}
	cancel()

	// Redis is optional: without it the relay and terminal keep their state
	// in memory and rate limiting and caching are off.
	rdb := config.NewRedisClient(config.LoadRedisConfig())
	var (
		plates   relay.Store
		sessions terminal.Store
	)
	if rdb != nil {
		defer rdb.Close()
		plates = relay.NewRedisStore(rdb, cfg.RelayTTL)
		sessions = terminal.NewRedisStore(rdb, cfg.TerminalTTL)
	} else {
		plates = relay.NewMemoryStore(cfg.RelayTTL)
		sessions = terminal.NewMemoryStore(cfg.TerminalTTL)
	}
	plateRelay := relay.New(plates, cfg.StationID)

	// Repositories
	accountRepo := repository.NewAccountRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	recipientRepo := repository.NewRecipientRepo(db)
	priceRepo := repository.NewFuelPriceRepo(db)
	saleRepo := repository.NewSaleRepo(db)

	// Services
	authSvc := service.NewAuthService(cfg, accountRepo, tokenRepo)
	publisher := service.NewPublisher(cfg.RabbitURL)
	purchaseSvc := service.NewPurchaseService(recipientRepo, priceRepo, saleRepo, publisher, plateRelay,
		service.PurchaseOptions{Pump: cfg.PumpID, QuotaEnforce: cfg.QuotaEnforce})
	term := terminal.New(sessions, plateRelay, purchaseSvc, purchaseSvc, cfg.MaxNominal)

	seedCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	created, err := authSvc.EnsureAdmin(seedCtx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
	cancel()
	if err != nil {
		slog.Error("bootstrap admin failed", "error", err)
		os.Exit(1)
	}
	if created {
		slog.Info("bootstrap admin created", "email", cfg.AdminEmail)
	}
	purgeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if n, err := tokenRepo.PurgeExpired(purgeCtx, time.Now()); err != nil {
		slog.Warn("refresh token purge failed", "error", err)
	} else if n > 0 {
		slog.Info("purged refresh tokens", "count", n)
	}
	cancel()

	if cfg.RabbitURL != "" {
		startConsumers(ctx, cfg, plateRelay)
	} else {
		slog.Info("RABBITMQ_URL not set; events disabled")
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		slog.Error("templates failed to parse", "error", err)
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(requestLogger())

	pageSessions := middleware.NewSessions(cfg.SessionSecret, cfg.Env == "prod").WithAccounts(accountRepo)
	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)
	guards := router.Guards{
		Auth:        middleware.Authenticate(cfg.JWTSecret, pageSessions),
		Sessions:    pageSessions,
		AuthLimiter: middleware.NewLimiter(config.LoadRateLimitConfig("auth"), rdb),
		RelayLimit:  middleware.NewLimiter(config.LoadRateLimitConfig("relay"), rdb),
		Cache:       cache,
	}

	accounts := handler.NewAccountsHandler(accountRepo)
	recipients := handler.NewRecipientsHandler(recipientRepo)
	sales := handler.NewSalesHandler(saleRepo)
	terminalHandler := handler.NewTerminalHandler(term)

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(authSvc), guards)
	router.RegisterRelay(e, handler.NewRelayHandler(plateRelay), guards)
	router.RegisterTerminal(e, terminalHandler,
		handler.NewPurchaseHandler(purchaseSvc, plateRelay.Station, cfg.MaxNominal), guards)
	router.RegisterAdmin(e, router.AdminHandlers{
		Accounts:   accounts,
		Recipients: recipients,
		Sales:      sales,
		Prices:     handler.NewPricesHandler(priceRepo, cache),
	}, guards)
	router.RegisterPages(e, &handler.Pages{
		Auth:       authSvc,
		Sessions:   pageSessions,
		Terminal:   term,
		Accounts:   accounts,
		Recipients: recipients,
		Sales:      sales,
		Station:    plateRelay.Station,
	})

	addr := ":" + cfg.Port
	go func() {
		slog.Info("listening", "addr", addr, "env", cfg.Env, "station", cfg.StationID)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
	slog.Info("server stopped")
}

// newLogger writes JSON in production and text elsewhere.
func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Env, "prod") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func requestLogger() echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method, "uri", v.URI, "status", v.Status,
				"latency", v.Latency.String(), "request_id", v.RequestID,
			}
			if v.Error != nil {
				slog.Warn("request", append(attrs, "error", v.Error.Error())...)
				return nil
			}
			slog.Info("request", attrs...)
			return nil
		},
	})
}

// startConsumers runs the sale log writer and the broker-fed plate relay
// until ctx is cancelled.
func startConsumers(ctx context.Context, cfg config.Config, r *relay.Relay) {
	consumers := []*queue.Consumer{
		{URL: cfg.RabbitURL, Queue: queue.SaleRecordedQueue, Handle: (&queue.SalesLog{Dir: cfg.SalesLogDir}).Handle},
		{URL: cfg.RabbitURL, Queue: queue.PlateDetectedQueue, Handle: queue.PlateIngest(r)},
	}
	for _, c := range consumers {
		go func(c *queue.Consumer) {
			if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("consumer stopped", "queue", c.Queue, "error", err)
			}
		}(c)
	}
}
