package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lusohub/lusohub-backend/internal/config"
	"github.com/lusohub/lusohub-backend/internal/delivery/http"
	"github.com/lusohub/lusohub-backend/internal/delivery/http/handler"
	"github.com/lusohub/lusohub-backend/internal/delivery/http/middleware"
	"github.com/lusohub/lusohub-backend/internal/domain"
	"github.com/lusohub/lusohub-backend/internal/infrastructure/database"
	"github.com/lusohub/lusohub-backend/internal/infrastructure/gemini"
	"github.com/lusohub/lusohub-backend/internal/infrastructure/logger"
	"github.com/lusohub/lusohub-backend/internal/infrastructure/server"
	"github.com/lusohub/lusohub-backend/internal/repository/postgres"
	"github.com/lusohub/lusohub-backend/internal/repository/redisstore"
	"github.com/lusohub/lusohub-backend/internal/usecase/compatibility"
	"github.com/lusohub/lusohub-backend/internal/usecase/matches"
	"github.com/lusohub/lusohub-backend/internal/usecase/quiz"
	"github.com/lusohub/lusohub-backend/internal/worker"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Log    *zap.Logger
	DB     *sqlx.DB
	Redis  *redis.Client
	Server *server.Server
	Worker *worker.RecomputeWorker
	Gemini *gemini.GeminiClient
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	log, err := logger.New(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Initialize database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize Redis
	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	// Initialize Gemini client; insights degrade to rule-based without it
	var geminiClient *gemini.GeminiClient
	var insights compatibility.InsightGenerator
	if cfg.GeminiAPIKey != "" {
		geminiClient, err = gemini.NewGeminiClient(cfg.GeminiAPIKey)
		if err != nil {
			log.Warn("failed to initialize gemini client, insights stay rule-based", zap.Error(err))
		} else {
			insights = geminiClient
		}
	}

	// Initialize repositories
	prefRepo := postgres.NewPreferenceRepository(db)
	compatRepo := postgres.NewCompatibilityRepository(db)
	profileDirectory := postgres.NewProfileDirectory(db)
	recomputeQueue := redisstore.NewRecomputeQueue(redisClient, 0)
	matchCache := redisstore.NewMatchCache(redisClient, cfg.Matching.MatchCacheTTL)

	// Initialize use cases
	quizUseCase := quiz.NewQuizUseCase(prefRepo, recomputeQueue, log)

	compatUseCase, err := compatibility.NewCompatibilityUseCase(
		prefRepo,
		compatRepo,
		insights,
		compatibility.DefaultWeights(),
		log,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize compatibility usecase: %w", err)
	}

	matchUseCase := matches.NewMatchUseCase(
		prefRepo,
		compatRepo,
		profileDirectory,
		matchCache,
		domain.MatchPolicy{
			MinCompatibilityScore: cfg.Matching.MinCompatibilityScore,
			MaxMatches:            cfg.Matching.MaxMatches,
		},
		cfg.Matching.ProfileResolveTimeout,
		log,
	)

	// Initialize worker
	recomputeWorker := worker.NewRecomputeWorker(
		recomputeQueue,
		prefRepo,
		compatUseCase,
		cfg.Matching.RecomputeWorkers,
		cfg.Matching.ScoreParallelism,
		log,
	)

	// Initialize handlers
	quizHandler := handler.NewQuizHandler(quizUseCase)
	compatHandler := handler.NewCompatibilityHandler(compatUseCase)
	matchHandler := handler.NewMatchHandler(matchUseCase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.AccessSecret)

	// Initialize router
	router := http.NewRouter(
		quizHandler,
		compatHandler,
		matchHandler,
		authMiddleware,
	)

	// Setup routes
	ginRouter := router.Setup()

	// Initialize server
	srv := server.NewServer(&cfg.Server, ginRouter, log)

	return &Container{
		Config: cfg,
		Log:    log,
		DB:     db,
		Redis:  redisClient,
		Server: srv,
		Worker: recomputeWorker,
		Gemini: geminiClient,
	}, nil
}

// StartWorker runs the recompute worker pool until ctx is cancelled.
func (c *Container) StartWorker(ctx context.Context) {
	go func() {
		if err := c.Worker.Run(ctx); err != nil {
			c.Log.Error("recompute worker exited", zap.Error(err))
		}
	}()
}

// Close closes all connections
func (c *Container) Close() error {
	if c.Gemini != nil {
		c.Gemini.Close()
	}

	// Close Redis
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Log.Warn("error closing redis", zap.Error(err))
		}
	}

	// Close database
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	_ = c.Log.Sync()
	return nil
}
