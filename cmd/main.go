package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"greenbasket/internal/app/market/config"
	"greenbasket/internal/app/market/handler"
	"greenbasket/internal/app/market/processor"
	"greenbasket/internal/app/market/repository"
	"greenbasket/internal/app/market/service"
	"greenbasket/internal/app/market/util"
	"greenbasket/pkg/logger"
)

// Полный пересчет рейтингов выравнивает расхождения после сбоев consumer
const ratingCronSchedule = "@hourly"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init("greenbasket", cfg.Logging.Level)

	if cfg.Logging.LogstashAddr != "" {
		if err := logger.InitLogstash(cfg.Logging.LogstashAddr, "greenbasket", cfg.Logging.Level); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		} else {
			logger.Info().Str("logstash_addr", cfg.Logging.LogstashAddr).Msg("Connected to Logstash")
		}
	}

	pool, err := connectPostgres(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	logger.Info().
		Str("host", cfg.Database.Host).
		Str("database", cfg.Database.DBName).
		Msg("Connected to PostgreSQL")

	gormDB, err := connectGorm(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open gorm connection")
	}

	mongoClient, mongoDB, err := connectMongo(cfg.Mongo)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			logger.Error().Err(err).Msg("Failed to disconnect from MongoDB")
		}
	}()
	logger.Info().Str("database", cfg.Mongo.Database).Msg("Connected to MongoDB")

	redisClient, err := util.NewRedisClient(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	logger.Info().Str("address", cfg.Redis.Address()).Msg("Connected to Redis")

	purchaseProducer := util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.PurchaseTopic)
	defer purchaseProducer.Close()
	reviewProducer := util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.ReviewTopic)
	defer reviewProducer.Close()
	logger.Info().
		Str("purchase_topic", cfg.Kafka.PurchaseTopic).
		Str("review_topic", cfg.Kafka.ReviewTopic).
		Msg("Initialized Kafka producers")

	if err := os.MkdirAll(cfg.Uploads.Dir, 0o755); err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.Uploads.Dir).Msg("Failed to create uploads directory")
	}

	userRepo := repository.NewUserRepository(pool)
	basketRepo := repository.NewBasketRepository(pool)
	favoriteRepo := repository.NewFavoriteRepository(pool)
	purchaseRepo := repository.NewPurchaseRepository(pool)
	productRepo := repository.NewProductRepository(gormDB)
	reviewRepo := repository.NewReviewRepository(mongoDB)
	tokenRepo := repository.NewRedisTokenRepository(redisClient)

	productCache := util.NewProductCache(redisClient)
	jwtManager := util.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessDuration, cfg.JWT.RefreshDuration)

	authService := service.NewAuthService(userRepo, tokenRepo, jwtManager)
	catalogService := service.NewCatalogService(productRepo, reviewRepo, productCache)
	basketService := service.NewBasketService(basketRepo, productRepo)
	favoriteService := service.NewFavoriteService(favoriteRepo, productRepo)
	purchaseService := service.NewPurchaseService(purchaseRepo, purchaseProducer)
	reviewService := service.NewReviewService(reviewRepo, productRepo, reviewProducer)
	ratingService := service.NewRatingService(reviewRepo, productRepo, productCache)
	userService := service.NewUserService(userRepo, favoriteRepo, purchaseRepo, basketService)

	authMiddleware := handler.NewAuthMiddleware(jwtManager)
	authHandler := handler.NewAuthHandler(authService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	userHandler := handler.NewUserHandler(basketService, favoriteService, purchaseService, userService, cfg.Uploads.Dir)
	healthHandler := handler.NewHealthHandler(pool, mongoClient, redisClient)

	router := handler.SetupRoutes(
		authHandler,
		catalogHandler,
		reviewHandler,
		userHandler,
		healthHandler,
		authMiddleware,
		cfg.Uploads.Dir,
	)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	reviewConsumer := processor.NewReviewConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.ReviewTopic,
		cfg.Kafka.ConsumerGroup,
		ratingService,
	)
	reviewConsumer.Start(workerCtx)

	ratingScheduler := processor.NewRatingScheduler(ratingService)
	if err := ratingScheduler.Start(workerCtx, ratingCronSchedule); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start rating scheduler")
	}

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("address", cfg.Server.Address()).Msg("Starting Greenbasket")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Greenbasket...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	ratingScheduler.Stop()
	stopWorkers()
	reviewConsumer.Stop()

	logger.Info().Msg("Greenbasket stopped gracefully")
}

func connectPostgres(cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 5 * time.Minute
	poolConfig.MaxConnIdleTime = 1 * time.Minute

	var pool *pgxpool.Pool
	for i := 0; i < 10; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			err = pool.Ping(ctx)
			if err == nil {
				cancel()
				return pool, nil
			}
			pool.Close()
		}
		cancel()

		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to PostgreSQL, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}

func connectGorm(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.DBName, cfg.Port, cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	return db, nil
}

func connectMongo(cfg config.MongoConfig) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, err
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, nil, err
	}

	return client, client.Database(cfg.Database), nil
}
