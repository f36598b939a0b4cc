package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"wrongbook/internal/adapter"
	"wrongbook/internal/adapter/ai"
	"wrongbook/internal/adapter/embedding"
	"wrongbook/internal/adapter/identity"
	"wrongbook/internal/adapter/storage"
	"wrongbook/internal/cache"
	"wrongbook/internal/config"
	"wrongbook/internal/database"
	"wrongbook/internal/domain"
	"wrongbook/internal/handler"
	"wrongbook/internal/logger"
	"wrongbook/internal/middleware"
	"wrongbook/internal/repository"
	"wrongbook/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()
	appLogger := logger.Get()

	db, err := database.NewSQLXPostgresDB(cfg.Database.DSN)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)

	userRepo := repository.NewSQLXUserRepository(db)
	questionRepo := repository.NewSQLXQuestionRepository(db)
	uploadRepo := repository.NewSQLXUploadRepository(db)
	statsRepo := repository.NewSQLXStatsRepository(db)

	var vectorStore domain.VectorStore
	if cfg.VectorStore.Enabled {
		vectorStore = repository.NewPGVectorStore(db, cfg.VectorStore.MatchThreshold)
	} else {
		appLogger.Warn("Vector store disabled, semantic search will use substring fallback")
		vectorStore = repository.NewNoopVectorStore()
	}

	objectStore, err := newObjectStore(cfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	verifier, err := identity.NewGoogleVerifier(cfg.GoogleOAuth)
	if err != nil {
		appLogger.Fatal("Failed to initialize identity verifier", zap.Error(err))
	}

	analyzer, err := ai.NewAzureExamAnalyzer(cfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize exam analyzer", zap.Error(err))
	}

	embedder, err := embedding.NewAzureOpenAIEmbeddingService(cfg, cacheAdapter)
	if err != nil {
		appLogger.Fatal("Failed to initialize embedding service", zap.Error(err))
	}

	authService, err := service.NewAuthService(userRepo, verifier, cfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize auth service", zap.Error(err))
	}
	userService := service.NewUserService(userRepo)
	questionService := service.NewQuestionService(questionRepo, userRepo, analyzer, embedder, vectorStore)
	uploadService := service.NewUploadService(questionRepo, uploadRepo, userRepo, analyzer, embedder, vectorStore, objectStore, cfg.Storage)
	statsService := service.NewStatsService(statsRepo)
	usageService := service.NewUsageService(userRepo)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORS.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	registerRoutes(app, cfg, authService, userRepo,
		handler.NewAuthHandler(authService, userService),
		handler.NewQuestionHandler(questionService, uploadService),
		handler.NewStatsHandler(statsService),
		handler.NewUsageHandler(usageService),
		handler.NewUserHandler(userService),
	)

	go func() {
		addr := ":" + strconv.Itoa(cfg.Server.Port)
		appLogger.Info("Starting server", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

func registerRoutes(
	app *fiber.App,
	cfg *config.Config,
	authService service.AuthService,
	userRepo domain.UserRepository,
	authHandler *handler.AuthHandler,
	questionHandler *handler.QuestionHandler,
	statsHandler *handler.StatsHandler,
	usageHandler *handler.UsageHandler,
	userHandler *handler.UserHandler,
) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"service": "wrongbook", "status": "ok"})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	if cfg.Storage.Source == "local" {
		app.Static(cfg.Storage.PublicBaseURL, cfg.Storage.UploadDir)
	}

	protected := middleware.Protected(authService)
	adminOnly := middleware.AdminOnly(userRepo)

	auth := app.Group("/auth")
	auth.Post("/google", authHandler.GoogleLogin)
	auth.Get("/me", protected, authHandler.Me)
	auth.Put("/grade", protected, authHandler.UpdateGrade)

	questions := app.Group("/questions", protected)
	questions.Post("/upload", questionHandler.Upload)
	questions.Get("/wrong", questionHandler.ListWrong)
	questions.Get("/uploads", questionHandler.ListUploads)
	questions.Post("/search", questionHandler.Search)
	questions.Get("/:id", questionHandler.Get)
	questions.Put("/:id/status", questionHandler.UpdateStatus)
	questions.Delete("/:id", questionHandler.Delete)
	questions.Post("/:id/regenerate", questionHandler.Regenerate)
	questions.Post("/:id/similar", questionHandler.Similar)

	stats := app.Group("/stats", protected)
	stats.Get("/", statsHandler.Overview)
	stats.Get("/by-subject", statsHandler.BySubject)

	usage := app.Group("/usage", protected)
	usage.Get("/tokens", usageHandler.MyUsage)
	usage.Get("/tokens/all", adminOnly, usageHandler.AllUsage)

	users := app.Group("/users", protected, adminOnly)
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)
	users.Delete("/:id", userHandler.Delete)
}

func newObjectStore(cfg *config.Config) (domain.ObjectStore, error) {
	if cfg.Storage.Source == "gcs" {
		return storage.NewGCSObjectStore(context.Background(), cfg.Storage.GCSBucket)
	}
	return storage.NewLocalObjectStore(cfg.Storage.UploadDir, cfg.Storage.PublicBaseURL)
}
