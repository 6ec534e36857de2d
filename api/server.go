package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mytrueresume-stack/SprintTracker/api/auth"
	"github.com/mytrueresume-stack/SprintTracker/api/rest"
	"github.com/mytrueresume-stack/SprintTracker/env"
	"github.com/mytrueresume-stack/SprintTracker/middleware"
	"github.com/mytrueresume-stack/SprintTracker/services/export"
	"github.com/mytrueresume-stack/SprintTracker/services/mongo"
	"github.com/mytrueresume-stack/SprintTracker/services/redis"
	"github.com/mytrueresume-stack/SprintTracker/services/s3"
	"github.com/mytrueresume-stack/SprintTracker/services/tracker"
	"github.com/rs/cors"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := env.Load()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := mongo.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Warn("mongo disconnect failed", "error", err)
		}
	}()
	mongoService := mongo.New(client.Database(cfg.MongoDatabase))
	if err := mongoService.EnsureIndexes(ctx); err != nil {
		return err
	}
	logger.Info("connected to mongo", "database", cfg.MongoDatabase)

	users := mongo.NewUserService(mongoService)
	projects := mongo.NewProjectService(mongoService)
	sprints := mongo.NewSprintService(mongoService)
	tasks := mongo.NewTaskService(mongoService)
	submissions := mongo.NewSubmissionService(mongoService)
	metrics := mongo.NewMetricsService(mongoService)
	activity := mongo.NewActivityService(mongoService)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTDuration).WithAudience(cfg.JWTIssuer, cfg.JWTAudience)

	submissionService := tracker.NewSubmissionService(submissions, sprints, logger)
	reportService := tracker.NewReportService(sprints, submissions, users, logger)

	if cfg.CacheEnabled() {
		redisClient, err := redis.Init(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		cache := redis.NewReportCache(redisClient, cfg.ReportCacheTTL, logger)
		submissionService.WithCache(cache).WithEvents(redis.NewEventPublisher(redisClient))
		reportService.WithCache(cache)
		logger.Info("report cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.ReportCacheTTL)
	}

	var archive tracker.ReportArchive
	if cfg.ArchiveEnabled() {
		s3Service, err := s3.NewS3Service(ctx, &s3.S3ClientConfig{
			Bucket:    cfg.S3Bucket,
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.AccessKeyID,
			SecretKey: cfg.SecretAccessKey,
		}, logger)
		if err != nil {
			return err
		}
		archive = s3Service
		logger.Info("report archive enabled", "bucket", cfg.S3Bucket)
	}
	reportService.WithExport(export.NewPDFRenderer(), archive)

	authService := tracker.NewAuthService(users, jwtManager, logger)
	handler := rest.NewHandler(rest.Services{
		Auth:        authService,
		Projects:    tracker.NewProjectService(projects, users, logger),
		Sprints:     tracker.NewSprintService(sprints, projects, tasks, users, metrics, logger),
		Tasks:       tracker.NewTaskService(tasks, projects, sprints, users, activity, logger),
		Dashboard:   tracker.NewDashboardService(projects, sprints, tasks, submissions, activity, logger),
		Submissions: submissionService,
		Reports:     reportService,
		Users:       tracker.NewUserService(users, projects, logger),
		UserStore:   users,
	}, logger)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowCredentials: false,
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.CorrelationHeader},
		ExposedHeaders:   []string{middleware.CorrelationHeader, rest.ReportLocationHeader},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
	})

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: middleware.Chain(handler.Routes(jwtManager),
			middleware.Recover(logger),
			middleware.RequestLogger(logger),
			c.Handler,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting http server", "port", cfg.Port, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
