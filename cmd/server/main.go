package main

import (
	"context"
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
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron"

	config "github.com/vissocial/pipeline/configs"
	"github.com/vissocial/pipeline/internal/api/handlers"
	job "github.com/vissocial/pipeline/internal/jobs"
	"github.com/vissocial/pipeline/internal/policy"
	"github.com/vissocial/pipeline/internal/queue"
	"github.com/vissocial/pipeline/internal/repository"
	"github.com/vissocial/pipeline/internal/service"
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
	asynqClient := asynq.NewClient(redisConn)
	defer asynqClient.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisURI})
	defer rdb.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
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
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	packRepo := repository.NewContentPackRepository(db)
	itemRepo := repository.NewContentItemRepository(db)
	featuresRepo := repository.NewContentFeaturesRepository(db)
	renderRepo := repository.NewRenderRepository(db)
	metricsRepo := repository.NewPostMetricsRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	assetRepo := repository.NewAssetRepository(db)
	actionRepo := repository.NewUserActionRepository(db)

	policyClient := policy.NewHTTPClient(cfg.PolicyURL)

	drafter, err := service.NewGeminiDrafter(context.Background(), *cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Gemini client: %v", err)
	}

	r2Service, err := service.NewR2Service(*cfg)
	if err != nil {
		log.Fatalf("Failed to initialize R2 client: %v", err)
	}

	falService := service.NewFalService(*cfg)
	instagramService := service.NewInstagramService(*cfg)

	queueClient := queue.NewClient(asynqClient)

	planService := service.NewPlanService(*cfg, packRepo, itemRepo, featuresRepo, projectRepo, policyClient, drafter, queueClient)
	renderService := service.NewRenderService(renderRepo, itemRepo, assetRepo, falService, r2Service)
	publishService := service.NewPublishService(*cfg, itemRepo, projectRepo, renderRepo, instagramService, queueClient)
	metricsService := service.NewMetricsService(*cfg, itemRepo, projectRepo, metricsRepo, instagramService, policyClient)
	scheduleService := service.NewScheduleService(itemRepo, queueClient, service.NewRedisDebounce(rdb))
	ingestService := service.NewIngestService(*cfg, projectRepo, assetRepo, instagramService)
	reviewService := service.NewReviewService(itemRepo, actionRepo)

	api := app.Group("/api")

	plan := handlers.NewPlanHandler(queueClient)
	api.Post("/plans/generate", plan.GeneratePlan)

	content := handlers.NewContentHandler(packRepo, itemRepo, renderRepo, reviewService)
	api.Get("/items/info", content.GetItem)
	api.Patch("/items/update", content.UpdateItem)
	api.Get("/packs/latest", content.GetLatestPack)

	render := handlers.NewRenderHandler(queueClient, itemRepo)
	api.Post("/renders/regen", render.RegenRender)

	publish := handlers.NewPublishHandler(queueClient, projectRepo)
	api.Post("/publish/now", publish.PublishNow)
	api.Post("/publish/enabled", publish.SetPublishEnabled)

	project := handlers.NewProjectHandler(queueClient, projectRepo)
	api.Get("/projects/info", project.GetProjectInfo)
	api.Post("/projects/ingest", project.TriggerIngest)

	// cron jobs
	refreshTokenJob := job.NewTokenRefreshJob(*cfg, projectRepo, instagramService)

	c := cron.New()
	c.AddFunc("@every 06h00m00s", refreshTokenJob.RefreshTokens)
	c.AddFunc("@every 00h05m00s", func() {
		if err := queueClient.EnqueueScheduleTick(context.Background()); err != nil {
			log.Printf("Failed to enqueue schedule tick: %v", err)
		}
	})
	c.Start()

	worker := queue.NewWorker(planService, renderService, publishService, metricsService, scheduleService, ingestService)

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				queue.QueuePublish: 2,
				queue.QueueLLM:     1,
				queue.QueueRender:  1,
				queue.QueueMetrics: 1,
				queue.QueueIngest:  1,
			},
		})

		log.Println("Starting the Asynq server...")
		if err := server.Run(worker.Mux()); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on http://localhost:%s", cfg.Port)

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
