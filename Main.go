package main

import (
	"context"
	"errors"
	"eshop/cache"
	"eshop/config"
	"eshop/jwt"
	"eshop/routers"
	"eshop/services"
	"eshop/uploads"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("無法讀取設定: %w", err)
	}
	logger := config.NewLogger(cfg.Server)
	slog.SetDefault(logger)

	db, err := config.SetupDatabase(cfg.Database)
	if err != nil {
		return fmt.Errorf("無法連接到資料庫: %w", err)
	}
	defer func() {
		dbInstance, err := db.DB()
		if err != nil {
			logger.Error("無法取得資料庫連線", "error", err)
			return
		}
		if err := dbInstance.Close(); err != nil {
			logger.Error("無法關閉資料庫連線", "error", err)
		}
	}()

	var productCache cache.ProductCache = cache.NoopProductCache{}
	if rdb := config.SetupRedisConnection(cfg.Redis); rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Error("無法關閉Redis連線", "error", err)
			}
		}()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warn("無法連接到Redis，停用商品快取", "error", err)
		} else {
			productCache = cache.NewRedisProductCache(rdb, cfg.Redis.TTL)
		}
	}

	store, err := uploads.NewStore(cfg.Uploads.Dir)
	if err != nil {
		return fmt.Errorf("無法建立uploads資料夾: %w", err)
	}

	issuer := jwt.NewIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	router := routers.SetupRouters(cfg, routers.Dependencies{
		Catalog: services.NewCatalogService(db, productCache, store, logger),
		Orders:  services.NewOrderService(db, logger, cfg.Database.TransactionalOrders()),
		Users:   services.NewUserService(db, issuer, logger),
		Issuer:  issuer,
		Logger:  logger,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server started", "port", cfg.Server.Port, "api", cfg.Server.APIURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
