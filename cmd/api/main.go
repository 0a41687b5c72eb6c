package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"empanadas/internal/auth"
	"empanadas/internal/builder"
	"empanadas/internal/cart"
	"empanadas/internal/catalog"
	"empanadas/internal/config"
	"empanadas/internal/db"
	"empanadas/internal/draft"
	"empanadas/internal/logging"
	"empanadas/internal/menu"
	"empanadas/internal/order"
	"empanadas/internal/router"
	"empanadas/internal/storage"
	"empanadas/internal/totem"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {

	// ───────────────────────── ENV ─────────────────────────
	cfg, err := config.Load()
	if err != nil {
		// logger is not up yet
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	// ───────────────────────── LOGGING ─────────────────────────
	logger, err := logging.Init(cfg.LogMode, cfg.LogFile)
	if err != nil {
		os.Stderr.WriteString("logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ───────────────────────── DB ─────────────────────────
	var pgDB *pgxpool.Pool
	if cfg.StorageBackend == "postgres" {
		pgDB, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			zap.L().Fatal("postgres init failed", zap.Error(err))
		}
		defer pgDB.Close()
	}

	// ───────────────────────── STORAGE ─────────────────────────
	var images catalog.Storage
	if cfg.StorageEnabled() {
		r2Client, err := storage.NewR2Client(ctx, storage.Options{
			Endpoint:      cfg.R2Endpoint,
			AccessKey:     cfg.R2AccessKey,
			SecretKey:     cfg.R2SecretKey,
			Bucket:        cfg.R2Bucket,
			PublicBaseURL: cfg.R2PublicBaseURL,
		})
		if err != nil {
			zap.L().Fatal("r2 init failed", zap.Error(err))
		}
		images = r2Client
	} else {
		zap.L().Warn("R2 credentials missing, image uploads disabled")
	}

	// ───────────────────────── CORE REPOS ─────────────────────────
	var (
		userRepo    auth.UserRepository
		catalogRepo catalog.Repository
		orderRepo   order.Repository
	)
	if pgDB != nil {
		userRepo = auth.NewPostgresUserRepository(pgDB)
		catalogRepo = catalog.NewPostgresRepository(pgDB)
		orderRepo = order.NewPostgresRepository(pgDB)
	} else {
		zap.L().Warn("STORAGE_BACKEND=memory, data is lost on restart")
		userRepo = auth.NewInMemoryUserRepository()
		catalogRepo = catalog.NewInMemoryRepository()
		orderRepo = order.NewInMemoryRepository()
	}

	draftRepo, err := newDraftRepository(ctx, cfg, pgDB)
	if err != nil {
		zap.L().Fatal("draft store init failed", zap.Error(err), zap.String("backend", cfg.DraftBackend))
	}

	// ───────────────────────── SERVICES (ORDER MATTERS) ─────────────────────────
	authService := auth.NewService(userRepo)
	if created, err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		zap.L().Fatal("admin bootstrap failed", zap.Error(err))
	} else if created {
		zap.L().Info("initialized default admin account", zap.String("email", cfg.AdminEmail))
	}

	catalogService := catalog.NewService(catalogRepo, images)
	cartService := cart.NewService(cfg.CartTTL)
	builderService := builder.NewService(catalogService, draftRepo, cartService)
	orderService := order.NewService(orderRepo, catalogService, cartService)

	totemConfig, err := totem.LoadConfig(cfg.TotemConfigPath)
	if err != nil {
		zap.L().Fatal("totem config invalid", zap.Error(err))
	}

	// ───────────────────────── JOBS ─────────────────────────
	purger := draft.NewPurger(draftRepo, cfg.DraftTTL)
	if err := purger.Start(cfg.DraftPurgeSpec); err != nil {
		zap.L().Fatal("draft purger init failed", zap.Error(err), zap.String("spec", cfg.DraftPurgeSpec))
	}
	defer purger.Stop()

	// ───────────────────────── GIN ─────────────────────────
	r := router.NewRouter(router.Options{CORSOrigins: cfg.CORSOrigins}, router.Handlers{
		Auth:    auth.NewHandler(authService),
		Catalog: catalog.NewHandler(catalogService),
		Cart:    cart.NewHandler(cartService, catalogService),
		Builder: builder.NewHandler(builderService),
		Menu:    menu.NewHandler(menu.NewService(catalogService, images)),
		Order:   order.NewHandler(orderService),
		Totem:   totem.NewHandler(totemConfig, totem.NewEventLog(totemConfig.EventLogLimit)),
	})

	// ───────────────────────── START ─────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zap.L().Info("API running", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zap.L().Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("graceful shutdown failed", zap.Error(err))
	}
}

// --------------------------------------------------
func newDraftRepository(ctx context.Context, cfg *config.Config, pgDB *pgxpool.Pool) (draft.Repository, error) {
	switch cfg.DraftBackend {
	case "postgres":
		return draft.NewPostgresRepository(pgDB), nil
	case "redis":
		client, err := draft.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return draft.NewRedisRepository(client, cfg.DraftTTL), nil
	default:
		return draft.NewInMemoryRepository(cfg.DraftTTL), nil
	}
}
