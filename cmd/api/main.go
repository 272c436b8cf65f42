package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/qrshelf/qrshelf-api/api/swagger"
	"github.com/qrshelf/qrshelf-api/internal/handler"
	"github.com/qrshelf/qrshelf-api/internal/middleware"
	"github.com/qrshelf/qrshelf-api/internal/privacy"
	"github.com/qrshelf/qrshelf-api/internal/ratelimit"
	"github.com/qrshelf/qrshelf-api/internal/repository"
	"github.com/qrshelf/qrshelf-api/internal/service"
	"github.com/qrshelf/qrshelf-api/pkg/cache"
	"github.com/qrshelf/qrshelf-api/pkg/config"
	"github.com/qrshelf/qrshelf-api/pkg/database"
	"github.com/qrshelf/qrshelf-api/pkg/logger"
	corsmiddleware "github.com/qrshelf/qrshelf-api/pkg/middleware/cors"
	reqidmiddleware "github.com/qrshelf/qrshelf-api/pkg/middleware/requestid"
	"github.com/qrshelf/qrshelf-api/pkg/storage"
)

// @title QRShelf API
// @version 1.0.0
// @description Multi-tenant QR code storefront backend
// @BasePath /
// @schemes http https

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, analytics caching disabled", "error", err)
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	store, err := storage.NewFileStore(cfg.Storage.Dir)
	if err != nil {
		logr.Sugar().Warnw("file store unavailable, qr caching and export archives disabled", "error", err)
		store = nil
	}

	downloadSecret := cfg.Storage.DownloadSecret
	if downloadSecret == "" {
		downloadSecret = cfg.JWT.Secret
	}
	signer := storage.NewDownloadSigner(downloadSecret, cfg.Storage.DownloadTTL)

	validate := validator.New()

	limiter := ratelimit.New(cfg.Tracking.RateLimitWindow, cfg.Tracking.RateLimitMax)
	defer limiter.Stop()

	hasher := privacy.NewHasher(cfg.Tracking.IPHashSecret)
	if hasher.UsingDefaultSecret() {
		logr.Warn("IP_HASH_SECRET is not set, visitor fingerprints use the built-in default salt")
	}

	userRepo := repository.NewUserRepository(db)
	shopRepo := repository.NewShopRepository(db)
	collectionRepo := repository.NewCollectionRepository(db)
	itemRepo := repository.NewItemRepository(db)
	qrRepo := repository.NewQrCodeRepository(db)
	eventRepo := repository.NewEventRepository(db)
	subscriberRepo := repository.NewSubscriberRepository(db)

	metricsSvc := service.NewMetricsService()

	mailerSvc := service.NewMailerService(service.MailerOptions{
		APIKey:    cfg.Mailer.ResendAPIKey,
		FromEmail: cfg.Mailer.FromEmail,
		BatchSize: cfg.Mailer.BatchSize,
		Workers:   cfg.Mailer.Workers,
	}, subscriberRepo, collectionRepo, logr)
	mailerSvc.Start(context.Background())
	defer mailerSvc.Stop()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "qrshelf-api",
		Audience:           []string{"qrshelf"},
	})
	shopSvc := service.NewShopService(shopRepo, mailerSvc, validate, logr)
	collectionSvc := service.NewCollectionService(collectionRepo, validate, logr)
	itemSvc := service.NewItemService(itemRepo, collectionRepo, mailerSvc, validate, logr)
	qrSvc := service.NewQrCodeService(qrRepo, collectionRepo, itemRepo, cacheRepo, validate, logr, store, cfg.PublicBaseURL)
	trackingSvc := service.NewTrackingService(qrRepo, eventRepo, limiter, hasher, metricsSvc, validate, logr, cfg.PublicBaseURL)
	analyticsSvc := service.NewAnalyticsService(eventRepo, cacheRepo, metricsSvc, cfg.Analytics.CacheTTL, logr)
	exportSvc := service.NewExportService(eventRepo, store, signer, cfg.Export.MaxRows, logr)
	subscriberSvc := service.NewSubscriberService(subscriberRepo, collectionRepo, validate, logr)
	metadataSvc := service.NewMetadataService(service.MetadataOptions{
		Timeout:            cfg.Metadata.Timeout,
		MaxBodyBytes:       cfg.Metadata.MaxBodyBytes,
		AmazonMaxBodyBytes: cfg.Metadata.AmazonMaxBodyBytes,
	}, validate, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	shopHandler := handler.NewShopHandler(shopSvc)
	collectionHandler := handler.NewCollectionHandler(collectionSvc, itemSvc)
	itemHandler := handler.NewItemHandler(itemSvc)
	qrHandler := handler.NewQrCodeHandler(qrSvc)
	redirectHandler := handler.NewRedirectHandler(trackingSvc)
	trackHandler := handler.NewTrackHandler(trackingSvc)
	subscribeHandler := handler.NewSubscribeHandler(subscriberSvc)
	metadataHandler := handler.NewMetadataHandler(metadataSvc)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Public scan and attribution surface. No auth so printed codes and
	// landing pages work for anonymous visitors.
	r.GET("/r/:code", redirectHandler.Redirect)
	r.POST("/api/track-scan", trackHandler.TrackScan)
	r.POST("/api/track-click", trackHandler.TrackClick)
	r.POST("/api/subscribe", subscribeHandler.Subscribe)

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
	}

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		authed.POST("/auth/logout", authHandler.Logout)
		authed.PUT("/auth/password", authHandler.ChangePassword)
		authed.GET("/auth/me", authHandler.Me)

		authed.POST("/metadata", metadataHandler.Fetch)
		authed.GET("/metrics/snapshot", metricsHandler.Snapshot)

		authed.POST("/shops", shopHandler.Create)
		authed.GET("/shops", shopHandler.List)

		// Invite acceptance happens before the caller is a member, so it
		// sits outside the shop-context membership gate.
		authed.POST("/shops/:slug/members/accept", shopHandler.AcceptInvite)
	}

	shop := api.Group("/shops/:slug")
	shop.Use(middleware.JWT(authSvc), middleware.ShopContext(shopSvc))
	{
		shop.GET("", shopHandler.Get)
		shop.PUT("", shopHandler.Update)

		shop.GET("/members", shopHandler.ListMembers)
		shop.POST("/members", shopHandler.InviteMember)
		shop.PUT("/members/:memberId", shopHandler.UpdateMemberRole)
		shop.DELETE("/members/:memberId", shopHandler.RemoveMember)

		shop.POST("/collections", collectionHandler.Create)
		shop.GET("/collections", collectionHandler.List)
		shop.GET("/collections/:id", collectionHandler.Get)
		shop.PUT("/collections/:id", collectionHandler.Update)
		shop.DELETE("/collections/:id", collectionHandler.Delete)
		shop.GET("/collections/:id/items", collectionHandler.ListItems)
		shop.GET("/collections/:id/shares", collectionHandler.ListShares)
		shop.POST("/collections/:id/shares", collectionHandler.Share)
		shop.DELETE("/collections/:id/shares/:userId", collectionHandler.Unshare)

		shop.POST("/items", itemHandler.Create)
		shop.GET("/items", itemHandler.ListStandalone)
		shop.GET("/items/:id", itemHandler.Get)
		shop.PUT("/items/:id", itemHandler.Update)
		shop.DELETE("/items/:id", itemHandler.Delete)

		shop.POST("/qr-codes", qrHandler.Create)
		shop.GET("/qr-codes", qrHandler.List)
		shop.GET("/qr-codes/:id", qrHandler.Get)
		shop.GET("/qr-codes/:id/image", qrHandler.PNG)
		shop.DELETE("/qr-codes/:id", qrHandler.Delete)

		shop.GET("/analytics", analyticsHandler.ShopAnalytics)
		shop.GET("/export", exportHandler.Export)
		shop.GET("/exports/scans", exportHandler.ExportScans)
		shop.GET("/exports/clicks", exportHandler.ExportClicks)
		shop.GET("/exports/download", exportHandler.Download)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
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
	<-quit
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
