package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"hrai/recruiter/internal/config"
	"hrai/recruiter/internal/handlers"
	"hrai/recruiter/internal/logger"
	"hrai/recruiter/internal/repositories"
	"hrai/recruiter/internal/services"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}

	jobRepo := repositories.NewJobPostingRepository(db)
	candidateRepo := repositories.NewCandidateRepository(db)

	storage, err := config.InitStorage(ctx, cfg)
	if err != nil {
		log.Fatal("failed to initialize storage", zap.Error(err))
	}

	geminiService, err := services.NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.EmbedModel, log)
	if err != nil {
		log.Fatal("failed to initialize gemini", zap.Error(err))
	}

	parser := services.NewDocumentParser()
	tagger, err := services.NewProseTagger()
	if err != nil {
		log.Fatal("failed to initialize tagger", zap.Error(err))
	}
	extractor := services.NewResumeExtractor(parser, tagger, cfg.Ranking.SkillVocabulary, log)
	ranker := services.NewCandidateRanker(tagger)
	summarizer := services.NewSummaryGenerator(geminiService)
	scheduler := services.NewCalendarScheduler(services.CalendarOptions{
		TokenFile:  cfg.Calendar.TokenFile,
		CalendarID: cfg.Calendar.CalendarID,
		TimeZone:   cfg.Calendar.TimeZone,
		HREmail:    cfg.Calendar.HREmail,
		Endpoint:   cfg.Calendar.Endpoint,
	}, log)

	publisher := services.NewNopPublisher()
	if cfg.Publisher.RabbitMQURL != "" {
		publisher, err = services.NewAMQPPublisher(cfg.Publisher.RabbitMQURL, cfg.Publisher.Exchange, log)
		if err != nil {
			log.Fatal("failed to initialize status publisher", zap.Error(err))
		}
	}
	defer publisher.Close()

	opts := services.RecruitingOptions{ShortlistThreshold: cfg.Ranking.ShortlistThreshold}

	var worker services.Worker
	if cfg.Qdrant.Enabled {
		qdrantService, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, log)
		if err != nil {
			log.Fatal("failed to initialize qdrant", zap.Error(err))
		}
		if err := qdrantService.InitCollection(ctx); err != nil {
			log.Fatal("failed to initialize qdrant collection", zap.Error(err))
		}

		indexer := services.NewCandidateIndexer(geminiService, qdrantService, services.NewTextChunker(), log)
		worker = services.NewWorker(candidateRepo, storage, parser, indexer, services.WorkerOptions{
			Concurrency:  cfg.Worker.Concurrency,
			PollInterval: cfg.Worker.PollInterval,
		}, log)
		worker.Start(ctx)

		opts.Indexer = indexer
		opts.Queue = worker
	} else {
		log.Info("candidate index disabled")
	}

	recruiting := services.NewRecruitingService(
		jobRepo,
		candidateRepo,
		storage,
		extractor,
		ranker,
		summarizer,
		scheduler,
		publisher,
		opts,
		log,
	)

	jobHandler := handlers.NewJobHandler(recruiting, cfg.Storage.MaxFileSize)
	candidateHandler := handlers.NewCandidateHandler(recruiting)
	interviewHandler := handlers.NewInterviewHandler(recruiting)

	app := fiber.New(fiber.Config{
		AppName: "HR AI Recruiter API",
		// Review calls the model once per candidate.
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Minute,
		BodyLimit:    int(cfg.Storage.MaxFileSize) * 20,
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	registerRoutes(app, jobHandler, candidateHandler, interviewHandler)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down server")
		if worker != nil {
			worker.Stop()
		}
		cancel()
		if err := app.Shutdown(); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Server.Env))

	if err := app.Listen(addr); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}

func registerRoutes(app *fiber.App, jobs *handlers.JobHandler, candidates *handlers.CandidateHandler, interviews *handlers.InterviewHandler) {
	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Get("/dashboard", candidates.HandleDashboard)

	api.Post("/jobs", jobs.HandleSubmit)
	api.Get("/jobs/:id", jobs.HandleGet)
	api.Post("/jobs/:id/review", jobs.HandleReview)
	api.Get("/jobs/:id/shortlist", jobs.HandleShortlist)
	api.Post("/jobs/:id/interviews", interviews.HandleSchedule)
	api.Get("/jobs/:id/similar", jobs.HandleSimilar)

	api.Get("/candidates", candidates.HandleList)
	api.Patch("/candidates/:id/status", candidates.HandleUpdateStatus)

	api.Get("/interviews", interviews.HandleList)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "HR AI Recruiter API",
			"version": "1.0.0",
			"endpoints": []string{
				"GET /api/v1/dashboard",
				"POST /api/v1/jobs",
				"GET /api/v1/jobs/:id",
				"POST /api/v1/jobs/:id/review",
				"GET /api/v1/jobs/:id/shortlist",
				"POST /api/v1/jobs/:id/interviews",
				"GET /api/v1/jobs/:id/similar",
				"GET /api/v1/candidates",
				"PATCH /api/v1/candidates/:id/status",
				"GET /api/v1/interviews",
			},
		})
	})
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
