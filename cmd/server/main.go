package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	httprouter "github.com/servilocal/listing-service/internal/adapter/http/router"

	"github.com/servilocal/listing-service/internal/adapter/http/handler"
	"github.com/servilocal/listing-service/internal/adapter/messaging/nats"
	"github.com/servilocal/listing-service/internal/adapter/repository/cache"
	"github.com/servilocal/listing-service/internal/adapter/repository/mongodb"
	"github.com/servilocal/listing-service/internal/adapter/storage/s3"
	"github.com/servilocal/listing-service/internal/config"
	"github.com/servilocal/listing-service/internal/listing/usecase"
	"github.com/servilocal/listing-service/internal/locality"
	"github.com/servilocal/listing-service/internal/mailer"
	"github.com/servilocal/listing-service/internal/platform/tracer"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	if cfg.Telemetry.OTLPEndpoint != "" {
		tp, err := tracer.InitTracer(cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			logger.Warn("Tracing disabled, exporter init failed", zap.Error(err))
		} else {
			defer func() {
				if err := tp.Shutdown(context.Background()); err != nil {
					logger.Warn("Tracer shutdown failed", zap.Error(err))
				}
			}()
		}
	}

	mongoClient, err := mongodb.NewConnection(&cfg.Mongo)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Warn("MongoDB disconnect failed", zap.Error(err))
		}
	}()
	db := mongoClient.Database(cfg.Mongo.Database)

	listingRepo := mongodb.NewListingRepository(db, logger)
	favoriteRepo := mongodb.NewFavoriteRepository(db)
	entitlementRepo := mongodb.NewEntitlementRepository(db)

	if err := listingRepo.EnsureIndexes(context.Background()); err != nil {
		logger.Fatal("Failed to ensure listing indexes", zap.Error(err))
	}
	if err := favoriteRepo.EnsureIndexes(context.Background()); err != nil {
		logger.Fatal("Failed to ensure favorite indexes", zap.Error(err))
	}

	// Optional dependencies degrade to nil; the use cases skip them.
	var listingCache usecase.ListingCache
	if redisCache, err := cache.NewListingCache(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, running without listing cache", zap.Error(err))
	} else {
		listingCache = redisCache
	}

	var publisher usecase.EventPublisher
	natsPublisher, err := nats.NewPublisher(&cfg.NATS)
	if err != nil {
		logger.Warn("NATS unavailable, running without event publishing", zap.Error(err))
	} else {
		publisher = natsPublisher
		defer natsPublisher.Close()
	}

	mediaStorage, err := s3.NewMediaStorage(&cfg.MinIO, logger)
	if err != nil {
		logger.Fatal("Failed to initialize media storage", zap.Error(err))
	}

	var promotionMailer usecase.PromotionMailer
	if cfg.SMTP.Host != "" {
		promotionMailer = mailer.New(&cfg.SMTP)
	}

	places, err := locality.Load(cfg.Locality.DatasetPath)
	if err != nil {
		logger.Warn("Locality dataset unavailable, autocomplete will be empty", zap.Error(err))
	}
	directory := locality.NewDirectory(places)

	promotionUC := usecase.NewPromotionUseCase(listingRepo, entitlementRepo, listingCache, publisher, promotionMailer, logger)
	searchUC := usecase.NewSearchUseCase(listingRepo, promotionUC, logger)
	listingUC := usecase.NewListingUseCase(listingRepo, favoriteRepo, listingCache, publisher, logger)
	photoUC := usecase.NewPhotoUseCase(listingRepo, mediaStorage, listingCache, logger)
	favoriteUC := usecase.NewFavoriteUseCase(favoriteRepo, listingRepo, logger)

	handlers := httprouter.Handlers{
		Listings:   handler.NewListingHandler(listingUC, searchUC, promotionUC, photoUC, logger),
		Favorites:  handler.NewFavoriteHandler(favoriteUC, logger),
		Admin:      handler.NewAdminHandler(listingUC, promotionUC, logger),
		Localities: handler.NewLocalityHandler(directory, logger),
	}

	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      httprouter.New(handlers, cfg.JWT.Secret, logger),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("port", cfg.HTTP.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
	logger.Info("Server stopped")
}
