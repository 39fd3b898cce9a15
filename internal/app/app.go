package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	mongoadapter "github.com/Abdurahmanit/GroupProject/tender-service/internal/adapter/mongo"
	natsadapter "github.com/Abdurahmanit/GroupProject/tender-service/internal/adapter/nats"
	redisadapter "github.com/Abdurahmanit/GroupProject/tender-service/internal/adapter/redis"
	"github.com/Abdurahmanit/GroupProject/tender-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/tender-service/internal/platform/clock"
	"github.com/Abdurahmanit/GroupProject/tender-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/tender-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/tender-service/internal/service"
	"github.com/Abdurahmanit/GroupProject/tender-service/internal/worker"
	natsio "github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	cfg         *config.Config
	log         logger.Logger
	sweeper     *worker.Sweeper
	metrics     *metrics.Manager
	mongoClient *mongo.Client
	redisClient *redis.Client
	natsConn    *natsio.Conn

	Tenders service.TenderService
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	appLogger, err := logger.NewZapLogger(logger.ZapLoggerConfig{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		TimeFormat: cfg.Logger.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLogger.Infof("Configuration loaded: Env=%s", cfg.Env)

	mongoClient, err := mongoadapter.NewClient(ctx, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MongoDB client: %w", err)
	}
	appLogger.Info("MongoDB client initialized")

	redisClient, err := redisadapter.NewClient(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis client: %w", err)
	}
	appLogger.Info("Redis client initialized")

	natsConn, err := natsadapter.NewConnection(cfg.NATS)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize NATS connection: %w", err)
	}
	appLogger.Info("NATS connection initialized")

	publisher, err := natsadapter.NewPublisher(natsConn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize NATS publisher: %w", err)
	}

	listingRepo := mongoadapter.NewListingRepository(mongoClient, cfg.MongoDB)
	bidRepo := mongoadapter.NewBidRepository(mongoClient, cfg.MongoDB)
	partnerRepo := redisadapter.NewPartnerRepository(redisClient)

	clk := clock.Real()
	metricsManager := metrics.NewManager("tender_service")
	gate := service.NewVisibilityGate(partnerRepo, clk)

	tenders := service.NewTenderService(listingRepo, bidRepo, gate, publisher, metricsManager, clk, appLogger)
	sweeper := worker.NewSweeper(tenders, listingRepo, cfg.Sweep.Interval, clk, metricsManager, appLogger)

	return &App{
		cfg:         cfg,
		log:         appLogger,
		sweeper:     sweeper,
		metrics:     metricsManager,
		mongoClient: mongoClient,
		redisClient: redisClient,
		natsConn:    natsConn,
		Tenders:     tenders,
	}, nil
}

func (a *App) Run() {
	a.log.Info("Starting application components...")

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go a.sweeper.Run(sweepCtx)

	go func() {
		if err := metrics.StartServer(a.cfg.Metrics.Port, a.log, a.metrics.Registry); err != nil {
			a.log.Errorf("Metrics server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit
	a.log.Infof("Received shutdown signal: %v. Shutting down...", receivedSignal)

	stopSweeper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.natsConn != nil {
		a.natsConn.Close()
		a.log.Info("NATS connection closed")
	}
	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(shutdownCtx); err != nil {
			a.log.Errorf("Error disconnecting from MongoDB: %v", err)
		} else {
			a.log.Info("MongoDB connection closed")
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Errorf("Error closing Redis client: %v", err)
		} else {
			a.log.Info("Redis client closed")
		}
	}

	a.log.Info("Application shut down successfully")
}
