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

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/config"
	apphttp "finance-tracker/internal/http"
	"finance-tracker/internal/ratelimit"
	"finance-tracker/internal/repository/sqlite"
	"finance-tracker/internal/service"
	"finance-tracker/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}
	configureLogger(logger, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.OpenAndMigrate(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userService := service.NewUserService(sqlite.NewUserRepository(db))
	ledgerService := service.NewLedgerService(sqlite.NewTransactionRepository(db))
	tokens := auth.NewTokenService(userService, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	svc := apphttp.Services{
		Users:      userService,
		Tokens:     tokens,
		Guard:      auth.NewGuard(tokens),
		Categories: service.NewCategoryService(sqlite.NewCategoryRepository(db)),
		Ledger:     ledgerService,
		Summaries:  service.NewSummaryService(sqlite.NewSummaryRepository(db)),
	}

	storageSvc, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}
	if storageSvc != nil {
		svc.Exports = service.NewExportService(ledgerService, storageSvc, service.ExportOptions{
			Bucket:    cfg.Storage.Bucket,
			KeyPrefix: cfg.Storage.KeyPrefix,
			URLTTL:    cfg.Storage.URLTTL,
		}, logger.WithField("component", "export"))
	}

	if cfg.RateLimit.RedisURL != "" {
		client, err := ratelimit.NewClient(cfg.RateLimit.RedisURL)
		if err != nil {
			logger.Fatalf("setup rate limiter: %v", err)
		}
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warnf("redis ping failed, login throttling will fail open: %v", err)
		}
		svc.LoginLimiter = ratelimit.NewRedisLimiter(client, cfg.RateLimit.LoginsPerMinute)
	} else {
		logger.Info("no redis url configured, login throttling disabled")
	}

	gin.SetMode(gin.ReleaseMode)
	router, err := apphttp.NewRouter(apphttp.NewHandler(svc, logger), cfg.Server.TrustedProxies)
	if err != nil {
		logger.Fatalf("setup router: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Errorf("server stopped: %v", err)
	}
	logger.Info("bye")
}

func configureLogger(logger *logrus.Logger, cfg config.Config) {
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}

// buildStorage returns nil when no bucket is configured; statement export is
// then switched off.
func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Storage.Bucket == "" {
		logger.Info("no storage bucket configured, statement export disabled")
		return nil, nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client), nil
}
