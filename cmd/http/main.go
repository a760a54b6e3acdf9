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

	"github.com/jackc/pgx/v5/pgxpool"

	"campusmarket/trading/internal/auth"
	"campusmarket/trading/internal/config"
	"campusmarket/trading/internal/email"
	"campusmarket/trading/internal/handler"
	"campusmarket/trading/internal/logging"
	"campusmarket/trading/internal/repository"
	"campusmarket/trading/internal/repository/postgres"
	"campusmarket/trading/internal/repository/sqlite"
	"campusmarket/trading/internal/service"
	"campusmarket/trading/internal/service/supabase"
	"campusmarket/trading/internal/timetable"
	"campusmarket/trading/internal/vision"
)

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// run owns every resource opened after config is loaded, so deferred closes
// happen before main exits.
func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Local mirror
	mirror, err := sqlite.New(cfg.CachePath)
	if err != nil {
		return fmt.Errorf("failed to open cache %s: %w", cfg.CachePath, err)
	}
	defer mirror.Close()

	if n, err := timetable.EnsureLoaded(ctx, mirror, cfg.TimetablePath); err != nil {
		logger.Warn("timetable not loaded", "path", cfg.TimetablePath, "error", err)
	} else if n > 0 {
		logger.Info("timetable imported", "courses", n)
	}

	// 3. Remote
	var (
		remote repository.Remote
		images service.ImageStore
	)
	switch cfg.RemoteMode {
	case config.RemotePostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("failed to ping database: %w", err)
		}
		store := postgres.NewStore(pool)
		if err := store.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		remote = store
		logger.Info("connected to database")
	default:
		client := supabase.NewClient(supabase.Config{
			URL:     cfg.Supabase.URL,
			AnonKey: cfg.Supabase.AnonKey,
			Bucket:  cfg.Supabase.Bucket,
		})
		remote = client
		images = client
	}

	// 4. Outbound integrations
	var mailer email.Service = email.LogService{Logger: logger}
	if cfg.SendGrid.APIKey != "" {
		mailer = email.NewSendGrid(email.SendGridConfig{
			APIKey:    cfg.SendGrid.APIKey,
			FromEmail: cfg.SendGrid.FromEmail,
			FromName:  cfg.SendGrid.FromName,
		})
	}

	var classifier service.Classifier
	if cfg.VisionEnabled() {
		classifier = vision.NewClient(vision.Config{
			APIKey:    cfg.Baidu.APIKey,
			SecretKey: cfg.Baidu.SecretKey,
		})
	}

	// 5. Setup Logic
	items := repository.NewItemRepository(remote, mirror, logger)
	wishes := repository.NewWishlistRepository(remote, mirror, logger)
	users := repository.NewUserRepository(remote, mirror, logger)
	chat := repository.NewChatRepository(remote, mirror, logger)

	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	achievements := service.NewAchievementService(mirror, logger)
	wishlist := service.NewWishlistService(wishes, items, mailer, achievements, logger)

	h := handler.NewHandler(handler.Services{
		Auth:            service.NewAuthService(users, tokens, mailer, cfg.Auth.EmailDomain, logger),
		Items:           service.NewItemService(items, images, logger),
		Wishlist:        wishlist,
		Chat:            service.NewChatService(chat, users),
		Recommendations: service.NewRecommendationService(items, wishes, mirror, classifier),
		Achievements:    achievements,
	}, tokens, logger)

	if cfg.PriceAlertInterval > 0 {
		go watchPriceAlerts(ctx, wishlist, cfg.PriceAlertInterval, logger)
	}

	// 6. Setup Server
	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 7. Run Server with Graceful Shutdown
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", cfg.ServerPort, "remote", cfg.RemoteMode)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	logger.Info("server exiting")

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	default:
		return nil
	}
}

// watchPriceAlerts checks every wishlist entry on a fixed interval until ctx
// is done.
func watchPriceAlerts(ctx context.Context, wishlist *service.WishlistService, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := wishlist.CheckAllPriceAlerts(ctx)
			if err != nil {
				logger.Error("price alert check failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("price alerts sent", "count", n)
			}
		}
	}
}
