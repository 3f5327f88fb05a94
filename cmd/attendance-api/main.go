package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/attendance-api/api/swagger"
	"github.com/noah-isme/attendance-api/internal/handler"
	"github.com/noah-isme/attendance-api/internal/models"
	"github.com/noah-isme/attendance-api/internal/repository"
	"github.com/noah-isme/attendance-api/internal/router"
	"github.com/noah-isme/attendance-api/internal/service"
	"github.com/noah-isme/attendance-api/pkg/cache"
	"github.com/noah-isme/attendance-api/pkg/config"
	"github.com/noah-isme/attendance-api/pkg/database"
	"github.com/noah-isme/attendance-api/pkg/logger"
	"github.com/noah-isme/attendance-api/pkg/storage"
)

type documentStore interface {
	Load(ctx context.Context) (*models.Document, error)
	Save(ctx context.Context, doc *models.Document) error
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// @title Attendance API
// @version 1.0.0
// @description Time and attendance tracking with break accounting and correction requests
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx := context.Background()

	repo, closer, err := openDocumentStore(ctx, cfg)
	if err != nil {
		logr.Fatal("failed to open document store", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer closer.Close() //nolint:errcheck

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	persister := service.NewPersistenceService(repo, metricsSvc, logr, service.PersistenceConfig{
		QueueBuffer:   cfg.Storage.QueueBuffer,
		AdminUsername: cfg.Seed.AdminUsername,
		AdminPassword: cfg.Seed.AdminPassword,
	})

	doc, seeded, err := persister.LoadOrSeed(ctx)
	if err != nil {
		logr.Fatal("failed to load application document", zap.Error(err))
	}
	logr.Info("application document loaded",
		zap.String("driver", cfg.Storage.Driver),
		zap.Bool("seeded", seeded),
		zap.Int("users", len(doc.Users)),
		zap.Int("corrections", len(doc.Requests)),
	)

	store := repository.NewStateStore(doc)
	store.OnChange(persister.Schedule)
	persister.Start(ctx, store)

	validate := validator.New()
	loc := cfg.Attendance.Location()

	authSvc := service.NewAuthService(store, validate, logr, service.SystemClock, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	attendanceSvc := service.NewAttendanceService(store, service.SystemClock, metricsSvc, logr, service.AttendanceConfig{Location: loc})
	correctionSvc := service.NewCorrectionService(store, validate, metricsSvc, logr, loc)
	userSvc := service.NewUserService(store, logr)

	engine := router.Setup(cfg, router.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Attendance: handler.NewAttendanceHandler(attendanceSvc, cfg.Attendance.TickInterval),
		Correction: handler.NewCorrectionHandler(correctionSvc),
		User:       handler.NewUserHandler(userSvc),
		Metrics:    handler.NewMetricsHandler(metricsSvc, func() bool { return true }),
	}, authSvc, metricsSvc, logr)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logr.Info("shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("http server shutdown", zap.Error(err))
	}
	if err := persister.Stop(shutdownCtx); err != nil {
		logr.Error("final document write failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

// openDocumentStore connects the configured backend. The returned closer
// releases its connection on shutdown.
func openDocumentStore(ctx context.Context, cfg *config.Config) (documentStore, io.Closer, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewRedisDocumentRepository(client, cfg.Storage.Key)
		return repo, repo, nil
	case config.StorageDriverPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewPostgresDocumentRepository(db, cfg.Storage.Key)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close() //nolint:errcheck
			return nil, nil, err
		}
		return repo, db, nil
	default:
		local, err := storage.NewLocalStorage(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewFileDocumentRepository(local, cfg.Storage.Key), nopCloser{}, nil
	}
}
