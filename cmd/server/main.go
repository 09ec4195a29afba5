package main

import (
	"CodeVault/internal/config"
	"CodeVault/internal/handlers"
	"CodeVault/internal/middleware"
	"CodeVault/internal/repo"
	"CodeVault/internal/service"
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	usage, closeUsage, err := newUsageStore(cfg, gormDB)
	if err != nil {
		sugar.Fatalw("failed to initialize usage store", "store", cfg.UsageStore, "error", err)
	}
	defer closeUsage()

	userService := service.NewUserService(repo.NewUserRepository(gormDB))
	codeService := service.NewCodeService(usage, sugar)

	h := handlers.NewHandler(userService, codeService, sugar, cfg)

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"DatabaseDSN", cfg.DatabaseDSN,
		"UsageStore", cfg.UsageStore,
	)

	srv := &http.Server{Addr: cfg.BaseURL, Handler: h.Router}
	go func() {
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sugar.Errorw("Server shutdown failed", "error", err)
		}
	}()

	sugar.Infow("Starting server", "addr", cfg.BaseURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugar.Fatalw("Server failed", "error", err)
	}
}

// newUsageStore выбирает хранилище счётчиков показов по конфигурации.
func newUsageStore(cfg *config.Config, db *gorm.DB) (service.UsageStore, func(), error) {
	if cfg.UsageStore != config.UsageStoreRedis {
		return repo.NewUsageRepository(db), func() {}, nil
	}
	store, err := repo.NewRedisUsageStore(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, cfg.UsageTTL)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}
