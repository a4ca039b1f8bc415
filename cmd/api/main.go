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

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"

	"user-account-service/internal/core/auth"
	"user-account-service/internal/core/cache"
	"user-account-service/internal/core/config"
	"user-account-service/internal/core/database"
	"user-account-service/internal/core/logger"
	"user-account-service/internal/core/server"
	"user-account-service/internal/domain"
	"user-account-service/internal/feature/user"
	"user-account-service/internal/repo"
	"user-account-service/internal/transport/http/router"
	"user-account-service/pkg/utils"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, cleanup := logger.Build(logger.Options{
		Level:       cfg.Log.Level,
		JSON:        cfg.Log.JSON,
		AddCaller:   true,
		Development: !cfg.Log.JSON,
		Rotate: logger.FileRotate{
			Enable:     cfg.Log.File.Enable,
			Filename:   cfg.Log.File.Filename,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	defer cleanup()

	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	store, ping, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("open store", zap.String("driver", cfg.DB.Driver), zap.Error(err))
	}
	defer closeStore()
	log.Info("store ready", zap.String("driver", cfg.DB.Driver))

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.TTLHours) * time.Hour,
	}
	opts := []user.Option{user.WithLogger(log.Named("user"))}
	if cfg.Redis.Addr != "" {
		rc := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer func() { _ = rc.Close() }()
		opts = append(opts, user.WithReportCache(rc, time.Duration(cfg.Redis.ReportTTLSec)*time.Second))
		log.Info("report cache enabled", zap.String("redis", cfg.Redis.Addr))
	}
	svc := user.NewService(store, jwter, utils.NewHasher(cfg.Auth.BcryptCost), opts...)

	r := router.NewAPIEngine(log, svc, ping, router.Options{
		RequestTimeout: time.Duration(cfg.App.HTTP.RequestTimeoutSec) * time.Second,
		MaxInFlight:    cfg.App.HTTP.MaxInFlight,
		MaxBodyBytes:   cfg.App.HTTP.MaxBodyBytes,
	})

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	go func() {
		if err := server.StartHTTP(srv, log); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("user api start FAILED", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	log.Info("user api stopped gracefully")
}

// openStore builds the UserStore for cfg.DB.Driver together with its health check and closer.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (domain.UserStore, router.Pinger, func(), error) {
	switch cfg.DB.Driver {
	case "postgres", "mysql":
		db, err := database.NewGorm(database.Opts{
			Driver:             cfg.DB.Driver,
			DSN:                cfg.DB.DSN,
			Username:           cfg.DB.Username,
			Password:           cfg.DB.Password,
			MaxOpenConns:       cfg.DB.MaxOpenConns,
			MaxIdleConns:       cfg.DB.MaxIdleConns,
			ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
			LogLevel:           cfg.DB.LogLevel,
			Log:                log.Named("gorm"),
		})
		if err != nil {
			return nil, nil, nil, err
		}
		if cfg.DB.AutoMigrate {
			if err := database.Migrate(db); err != nil {
				return nil, nil, nil, fmt.Errorf("automigrate: %w", err)
			}
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, nil, err
		}
		return repo.NewUserRepo(db), sqlDB.PingContext, func() { _ = sqlDB.Close() }, nil

	case "mongo":
		client, mdb, err := database.NewMongo(ctx, database.MongoOpts{
			URI:            cfg.DB.DSN,
			Database:       cfg.DB.Database,
			MaxPoolSize:    uint64(max(cfg.DB.MaxOpenConns, 0)),
			ConnectTimeout: time.Duration(cfg.DB.ConnectTimeoutSec) * time.Second,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		mr := repo.NewMongoUserRepo(mdb)
		if err := mr.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, nil, fmt.Errorf("ensure indexes: %w", err)
		}
		ping := func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) }
		return mr, ping, func() { _ = client.Disconnect(context.Background()) }, nil

	case "memory":
		log.Warn("using in-memory store; data is lost on exit")
		return repo.NewMemoryUserRepo(), nil, func() {}, nil
	}
	return nil, nil, nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedDatabase, cfg.DB.Driver)
}
