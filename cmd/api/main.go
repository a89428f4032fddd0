package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/cheatwell/cheatwell-api/internal/config"
	"github.com/cheatwell/cheatwell-api/internal/database"
	"github.com/cheatwell/cheatwell-api/internal/handler"
	"github.com/cheatwell/cheatwell-api/internal/middleware"
	"github.com/cheatwell/cheatwell-api/internal/models"
	"github.com/cheatwell/cheatwell-api/internal/render"
	"github.com/cheatwell/cheatwell-api/internal/repository"
	"github.com/cheatwell/cheatwell-api/internal/router"
	"github.com/cheatwell/cheatwell-api/internal/service"
	"github.com/cheatwell/cheatwell-api/pkg/ai"
	cloud "github.com/cheatwell/cheatwell-api/pkg/cloudinary"
	"github.com/cheatwell/cheatwell-api/pkg/sendgrid"
	"github.com/cheatwell/cheatwell-api/pkg/tavily"
	"github.com/cheatwell/cheatwell-api/pkg/twilio"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Conversation{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not configured, research cache disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, completion events disabled")
		} else {
			defer natsConn.Close()
		}
	}

	generator, err := ai.NewClient(ai.ClientConfig{
		APIKey:          cfg.Generation.APIKey,
		BaseURL:         cfg.Generation.BaseURL,
		Model:           cfg.Generation.Model,
		MaxTokens:       cfg.Generation.MaxTokens,
		Temperature:     cfg.Generation.Temperature,
		TranscribeModel: cfg.Generation.TranscribeModel,
		Logger:          logger,
	})
	if err != nil {
		log.Fatalf("failed to create generation client: %v", err)
	}

	var humanizerCompleter ai.Completer
	if cfg.Humanizer.APIKey != "" {
		humanizerClient, err := ai.NewClient(ai.ClientConfig{
			APIKey:      cfg.Humanizer.APIKey,
			BaseURL:     cfg.Humanizer.BaseURL,
			Model:       cfg.Humanizer.Model,
			MaxTokens:   cfg.Humanizer.MaxTokens,
			Temperature: cfg.Humanizer.Temperature,
			Logger:      logger,
		})
		if err != nil {
			log.Fatalf("failed to create humanizer client: %v", err)
		}
		humanizerCompleter = humanizerClient
	} else {
		logger.Warn().Msg("humanizer api key not configured, stealth mode disabled")
	}

	var searcher service.Searcher
	if cfg.TavilyAPIKey != "" {
		searchClient, err := tavily.NewClient(tavily.Config{APIKey: cfg.TavilyAPIKey, Logger: logger})
		if err != nil {
			log.Fatalf("failed to create search client: %v", err)
		}
		searcher = searchClient
	} else {
		logger.Warn().Msg("tavily api key not configured, web research disabled")
	}

	var emailSender service.EmailSender
	if cfg.SendGridAPIKey != "" {
		emailClient, err := sendgrid.NewClient(sendgrid.Config{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
			Logger:    logger,
		})
		if err != nil {
			log.Fatalf("failed to create sendgrid client: %v", err)
		}
		emailSender = emailClient
	} else {
		logger.Warn().Msg("sendgrid api key not configured, email delivery disabled")
	}

	var whatsappSender service.WhatsAppSender
	if cfg.TwilioAccountSID != "" {
		twilioClient, err := twilio.NewClient(twilio.Config{
			AccountSID: cfg.TwilioAccountSID,
			AuthToken:  cfg.TwilioAuthToken,
			FromNumber: cfg.TwilioFromNumber,
			Logger:     logger,
		})
		if err != nil {
			log.Fatalf("failed to create twilio client: %v", err)
		}
		whatsappSender = twilioClient
	} else {
		logger.Warn().Msg("twilio credentials not configured, whatsapp delivery disabled")
	}

	var mediaHost service.MediaHost
	if cfg.CloudinaryCloudName != "" {
		uploader, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		mediaHost = uploader
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	conversationRepo := repository.NewConversationRepository(db)
	renderer := render.NewRenderer(cfg.OutputDir, logger)

	researchService := service.NewResearchService(searcher, redisClient, cfg.ResearchCacheTTL, logger)
	styleService := service.NewStyleService(generator, logger)
	humanizerService := service.NewHumanizerService(humanizerCompleter, logger)
	factCheckService := service.NewFactCheckService(generator, searcher, cfg.FactCheckMinConfidence, logger)
	deliveryService := service.NewDeliveryService(emailSender, whatsappSender, mediaHost, cfg.OutputDir, logger)
	historyService := service.NewHistoryService(conversationRepo, logger)
	studentDetailsService := service.NewStudentDetailsService(logger)

	executionService := service.NewExecutionService(service.ExecutionDeps{
		Generator:      generator,
		Research:       researchService,
		Style:          styleService,
		Humanizer:      humanizerService,
		FactCheck:      factCheckService,
		Renderer:       renderer,
		Delivery:       deliveryService,
		StudentDetails: studentDetailsService,
		Repo:           conversationRepo,
		Validator:      validate,
		NATS:           natsConn,
		NATSSubject:    cfg.NATSCompletionSubject,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}, logger)

	executeHandler := handler.NewExecuteHandler(executionService, logger)
	researchHandler := handler.NewResearchHandler(researchService, validate, logger)
	historyHandler := handler.NewHistoryHandler(historyService, logger)
	deliveryHandler := handler.NewDeliveryHandler(deliveryService, validate, logger)
	downloadHandler := handler.NewDownloadHandler(deliveryService, logger)
	studentDetailsHandler := handler.NewStudentDetailsHandler(studentDetailsService, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    int(cfg.MaxUploadBytes) * 2,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ExecuteHandler:        executeHandler,
		ResearchHandler:       researchHandler,
		HistoryHandler:        historyHandler,
		DeliveryHandler:       deliveryHandler,
		DownloadHandler:       downloadHandler,
		StudentDetailsHandler: studentDetailsHandler,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
