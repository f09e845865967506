package main

// @title           Shelfwise Core API
// @version         1.0
// @description     Book catalog API with content-based recommendations. Shelfwise Core scrapes a catalog, trains a TF-IDF recommender over book descriptions and serves similar titles.

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Format: "Bearer {token}"

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	_ "github.com/shelfwise/shelfwise-core/docs"
	"github.com/shelfwise/shelfwise-core/internal/adapters/driven/artifacts"
	"github.com/shelfwise/shelfwise-core/internal/adapters/driven/auth"
	"github.com/shelfwise/shelfwise-core/internal/adapters/driven/postgres"
	redisadapter "github.com/shelfwise/shelfwise-core/internal/adapters/driven/redis"
	"github.com/shelfwise/shelfwise-core/internal/adapters/driven/scraper"
	"github.com/shelfwise/shelfwise-core/internal/adapters/driving/http"
	"github.com/shelfwise/shelfwise-core/internal/config"
	"github.com/shelfwise/shelfwise-core/internal/core/ports/driven"
	"github.com/shelfwise/shelfwise-core/internal/core/services"
	"github.com/shelfwise/shelfwise-core/internal/logging"
)

var version = "dev"

// sessionPurgeInterval is how often expired PostgreSQL sessions are removed
const sessionPurgeInterval = 15 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Command line arg overrides RUN_MODE
	if len(os.Args) > 1 {
		cfg.RunMode = os.Args[1]
		if err := cfg.Validate(); err != nil {
			log.Fatalf("Invalid configuration: %v", err)
		}
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	log.Printf("shelfwise-core %s starting in %s mode", version, cfg.RunMode)

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ===== Initialize PostgreSQL =====
	log.Println("Connecting to PostgreSQL...")
	db, err := postgres.Connect(ctx, postgres.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize schema (idempotent)
	if err := db.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	log.Println("PostgreSQL connected and schema initialized")

	// ===== Initialize Redis (optional) =====
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		log.Println("Connecting to Redis...")
		redisClient, err = redisadapter.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("Redis connected")
	}

	// ===== PostgreSQL Stores =====
	bookStore := postgres.NewBookStore(db)
	userStore := postgres.NewUserStore(db)
	preferenceStore := postgres.NewPreferenceStore(db)
	accessLogStore := postgres.NewAccessLogStore(db)

	// ===== Session Store, Lock and Cache (Redis if available, otherwise PostgreSQL) =====
	var (
		sessionStore    driven.SessionStore
		distributedLock driven.DistributedLock
		recCache        driven.RecommendationCache
		pgSessions      *postgres.SessionStore
		redisPinger     http.Pinger
	)
	if redisClient != nil {
		redisLock := redisadapter.NewLock(redisClient)
		sessionStore = redisadapter.NewSessionStore(redisClient)
		distributedLock = redisLock
		recCache = redisadapter.NewRecommendationCache(redisClient)
		redisPinger = redisLock
		log.Println("Using Redis session store, lock and recommendation cache")
	} else {
		pgSessions = postgres.NewSessionStore(db)
		sessionStore = pgSessions
		distributedLock = postgres.NewAdvisoryLock(db)
		log.Println("Using PostgreSQL session store and advisory lock (no recommendation cache)")
	}

	// ===== Artifact Store =====
	var artifactStore driven.ArtifactStore
	switch cfg.Artifacts.Backend {
	case config.BackendRedis:
		if redisClient == nil {
			log.Fatalf("ARTIFACT_BACKEND=redis requires REDIS_URL")
		}
		artifactStore = redisadapter.NewArtifactStore(redisClient)
	case config.BackendMemory:
		artifactStore = artifacts.NewMemoryStore()
	default:
		artifactStore = artifacts.NewFileStore(cfg.Artifacts.Dir)
	}
	log.Printf("Using %s artifact store", cfg.Artifacts.Backend)

	// ===== Catalog scraper =====
	scraperCfg := scraper.DefaultConfig()
	scraperCfg.BaseURL = cfg.Scraper.BaseURL
	scraperCfg.RequestsPerSecond = cfg.Scraper.RequestsPerSecond
	booksScraper, err := scraper.New(scraperCfg, nil, logger)
	if err != nil {
		log.Fatalf("Failed to create scraper: %v", err)
	}

	// ===== Services (core business logic) =====
	authAdapter := auth.NewAdapter(cfg.Auth.JWTSecret)
	authService := services.NewAuthService(userStore, sessionStore, authAdapter, cfg.Auth.TokenTTL)
	userService := services.NewUserService(userStore, sessionStore, authAdapter)
	bookService := services.NewBookService(bookStore)
	statsService := services.NewStatsService(bookStore)
	scrapeService := services.NewScrapeService(booksScraper, bookStore, distributedLock, logger)

	recCfg := services.DefaultRecommendationConfig()
	recCfg.TopN = cfg.Recommend.TopN
	recCfg.ExcludeSelfByIndex = cfg.Recommend.ExcludeSelfByIndex
	recCfg.HistoryRequired = cfg.Recommend.HistoryRequired
	recCfg.CacheTTL = cfg.Recommend.CacheTTL
	recCfg.VerifyInterval = cfg.Recommend.VerifyInterval
	recommendationService := services.NewRecommendationService(services.RecommendationDeps{
		Books:       bookStore,
		Preferences: preferenceStore,
		Artifacts:   artifactStore,
		Cache:       recCache,
		Lock:        distributedLock,
	}, recCfg, logger)

	switch cfg.RunMode {
	case config.ModeTrain:
		// One training run, then exit
		result, err := recommendationService.Train(ctx)
		if err != nil {
			log.Fatalf("Training failed: %v", err)
		}
		log.Printf("%s (records=%d generation=%s)", result.Message, result.TotalRecords, result.Generation)

	case config.ModeScrape:
		// One scrape run, then exit
		result, err := scrapeService.Run(ctx)
		if err != nil {
			log.Fatalf("Scrape failed: %v", err)
		}
		log.Printf("%s (inserted=%d failed=%d)", result.Message, result.Inserted, result.Failed)

	default:
		if pgSessions != nil {
			go purgeSessions(ctx, pgSessions, logger)
		}

		infra := http.Infra{AccessLog: accessLogStore, DB: db}
		if redisPinger != nil {
			infra.Redis = redisPinger
		}
		runAPI(cfg, http.Services{
			Auth:           authService,
			User:           userService,
			Book:           bookService,
			Stats:          statsService,
			Scrape:         scrapeService,
			Recommendation: recommendationService,
		}, infra, logger)
	}
}

func runAPI(cfg *config.Config, svcs http.Services, infra http.Infra, logger *slog.Logger) {
	serverCfg := http.DefaultConfig()
	serverCfg.Port = cfg.Port
	serverCfg.Version = version
	serverCfg.AllowedOrigins = cfg.AllowedOrigins

	server := http.NewServer(serverCfg, svcs, infra, logger)

	log.Printf("API server starting on :%d", cfg.Port)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// purgeSessions removes expired PostgreSQL sessions until ctx is done.
// Redis sessions expire on their own.
func purgeSessions(ctx context.Context, store *postgres.SessionStore, logger *slog.Logger) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.PurgeExpired(ctx)
			if err != nil {
				logger.Warn("failed to purge expired sessions", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("purged expired sessions", "count", n)
			}
		}
	}
}
