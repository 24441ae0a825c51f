package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/postloom/postloom/configs"
	"github.com/postloom/postloom/internal/ai"
	"github.com/postloom/postloom/internal/api/handlers"
	"github.com/postloom/postloom/internal/api/middleware"
	"github.com/postloom/postloom/internal/cache"
	job "github.com/postloom/postloom/internal/jobs"
	"github.com/postloom/postloom/internal/metrics"
	"github.com/postloom/postloom/internal/platform"
	"github.com/postloom/postloom/internal/queue"
	"github.com/postloom/postloom/internal/repository"
	"github.com/postloom/postloom/internal/scheduler"
	"github.com/postloom/postloom/internal/service"
	"github.com/postloom/postloom/internal/worker"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	statusCache, err := cache.New("redis://" + cfg.RedisURI)
	if err != nil {
		log.Printf("Warning: status cache disabled: %v", err)
		statusCache = nil
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	postPlatformRepo := repository.NewPostPlatformRepository(db)
	socialAccountRepo := repository.NewSocialAccountRepository(db)
	accountMetricsRepo := repository.NewAccountMetricsRepository(db)

	registry := platform.NewRegistry()
	registry.Register(platform.Instagram, platform.NewInstagramAdapter())
	registry.Register(platform.X, platform.NewXAdapter())
	registry.Register(platform.LinkedIn, platform.NewLinkedInAdapter())
	registry.Register(platform.YouTube, platform.NewYouTubeAdapter())
	registry.Register(platform.Tiktok, platform.NewTiktokAdapter())

	enqueuer := queue.NewEnqueuer(client)

	var optimizer ai.ContentOptimizer
	if cfg.GeminiAPIKey != "" {
		optimizer = ai.NewGeminiOptimizer(cfg.GeminiAPIKey)
	}

	authService := service.NewAuthService(*cfg, userRepo)
	userService := service.NewUserService(userRepo)
	r2Storage := service.NewR2Storage(*cfg)
	mediaService := service.NewMediaService(*cfg, r2Storage)
	var statuses service.StatusCache
	if statusCache != nil {
		statuses = statusCache
	}
	postService := service.NewPostService(db, postRepo, postPlatformRepo, socialAccountRepo, registry, optimizer, statuses)
	accountService := service.NewAccountService(*cfg, socialAccountRepo, accountMetricsRepo)

	postScheduler := scheduler.New(postRepo, postPlatformRepo, registry, enqueuer)
	publishWorker := worker.New(postRepo, postPlatformRepo, socialAccountRepo, accountMetricsRepo,
		registry, enqueuer, []byte(cfg.SecretKey), cfg.MaxPublishAttempts)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	auth := handlers.NewAuthHandler(*cfg, authService)
	app.Get("/login", auth.Login)
	app.Get("/login/callback", auth.LoginCallbackHandler)

	account := handlers.NewAccountHandler(accountService, *cfg)
	app.Get("/auth/:platform", account.ConnectAccount)
	app.Get("/auth/:platform/callback", account.CallbackHandler)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	user := handlers.NewUserHandler(userService)
	api.Get("/user/info", user.GetUserInfo)
	api.Post("/user/remove", user.RemoveUser)

	post := handlers.NewPostHandler(postService, postScheduler)
	api.Post("/posts/create", post.CreatePost)
	api.Post("/posts/:id/schedule", post.SchedulePost)
	api.Get("/posts/:id/status", post.PostStatus)
	api.Get("/posts", post.ListPosts)
	api.Post("/posts/remove", post.RemovePost)

	media := handlers.NewMediaHandler(mediaService)
	api.Post("/media/upload", media.Upload)

	api.Get("/accounts", account.ListAccounts)
	api.Get("/accounts/:id/metrics", account.AccountMetrics)
	api.Post("/accounts/remove", account.DisconnectAccount)

	// cron jobs
	dataSyncJob := job.NewDataSyncJob(socialAccountRepo, enqueuer)

	c := cron.New()
	c.AddFunc("@every 06h00m00s", dataSyncJob.SyncAccounts)
	c.Start()

	metrics.StartServer(cfg.MetricsAddr)

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishPost, publishWorker.HandlePublishPostTask)
		mux.HandleFunc(queue.TaskTypeDataSync, publishWorker.HandleDataSyncTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db, statusCache)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB, statusCache *cache.StatusCache) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	if statusCache != nil {
		statusCache.Close()
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
