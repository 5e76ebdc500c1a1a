// Package server contains the HTTP and WebSocket handlers of the community API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"moodmate/internal/bootstrap"
	"moodmate/internal/config"
	"moodmate/internal/featureflags"
	"moodmate/internal/metadata"
	"moodmate/internal/middleware"
	"moodmate/internal/models"
	"moodmate/internal/mood"
	"moodmate/internal/notifications"
	"moodmate/internal/repository"
	"moodmate/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	auth           *middleware.Authenticator
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	notifier       *notifications.Notifier
	hub            *notifications.Hub
	featureFlags   *featureflags.Manager

	vibeService      *service.VibeService
	commentService   *service.CommentService
	likeService      *service.LikeService
	analyticsService *service.AnalyticsService
	dashboardService *service.DashboardService
	profileService   *service.ProfileService
	moodService      *service.MoodService
	metadataService  *service.MetadataService
}

// NewServer connects to the database and Redis and builds a server.
func NewServer(cfg *config.Config) (*Server, error) {
	// A nil Redis client means Redis is unreachable; the API degrades without it.
	db, rdb, err := bootstrap.InitRuntime(context.Background(), cfg, bootstrap.Options{
		ApplySchema: true,
		SeedDemo:    cfg.SeedDemo,
	})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, rdb)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
// redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server: config and database are required")
	}

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("moodmate-api"),
		auth:           middleware.NewAuthenticator(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, redisClient),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	// Events are only fanned out when Redis is available.
	var events service.EventPublisher
	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
		s.hub = notifications.NewHub()
		events = s.notifier
	}

	playlists := repository.NewPlaylistRepository(db)
	comments := repository.NewCommentRepository(db)
	likes := repository.NewLikeRepository(db)
	profiles := repository.NewProfileRepository(db)

	s.vibeService = service.NewVibeService(playlists, profiles, likes, events, service.VibeOptions{
		MonthlyQuota: cfg.VibeMonthlyQuota,
		FeedCacheTTL: cfg.FeedCacheTTL(),
	})
	s.commentService = service.NewCommentService(comments, playlists, profiles, likes, events)
	s.likeService = service.NewLikeService(likes, playlists, comments, events)
	s.analyticsService = service.NewAnalyticsService(playlists)
	s.dashboardService = service.NewDashboardService(playlists, profiles, likes)
	s.profileService = service.NewProfileService(profiles)

	httpClient := &http.Client{}
	s.moodService = service.NewMoodService(
		mood.NewGroqClient(mood.GroqConfig{
			APIKey:     cfg.GroqAPIKey,
			BaseURL:    cfg.GroqBaseURL,
			Model:      cfg.GroqModel,
			RPS:        cfg.GroqRPS,
			Timeout:    cfg.UpstreamTimeout(),
			HTTPClient: httpClient,
		}),
		mood.NewClassifierClient(cfg.EmotionServiceURL, cfg.UpstreamTimeout(), httpClient),
		s.featureFlags,
	)
	s.metadataService = service.NewMetadataService(metadata.NewScraper(httpClient, metadata.DefaultTimeout))

	return s, nil
}

// NewApp builds the Fiber application with the error handler and JSON codec
// shared by production and tests.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		AppName:     "MoodMate Community API",
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
		BodyLimit:   8 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return models.RespondWithError(c, fe.Code, errors.New(fe.Message))
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error",
				slog.String("path", c.Path()), slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and Trace ID
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so error responses still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "MoodMate Community Metrics",
	}))

	optional := s.auth.Optional()
	required := s.auth.Required()

	// Public reads attach the viewer when a token is present.
	vibes := api.Group("/vibes")
	vibes.Get("/", optional, s.GetVibes)
	vibes.Post("/", required, middleware.RateLimit(s.redis, 10, time.Hour, "share_vibe"), s.ShareVibe)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	vibes.Get("/:id/comments/thread", optional, s.GetCommentThread)
	vibes.Get("/:id/comments", optional, s.GetComments)
	vibes.Post("/:id/comments", required, middleware.RateLimit(s.redis, 10, time.Minute, "post_comment"), s.CreateComment)
	vibes.Post("/:id/like/toggle", required, s.ToggleVibeLike)
	vibes.Post("/:id/like", required, s.LikeVibe)
	vibes.Delete("/:id/like", required, s.UnlikeVibe)
	vibes.Get("/:id", optional, s.GetVibe)
	vibes.Put("/:id", required, s.UpdateVibe)
	vibes.Delete("/:id", required, s.DeleteVibe)

	// Group middleware matches by string prefix ("/me" also covers
	// "/metadata"), so auth is attached per route.
	comments := api.Group("/comments")
	comments.Post("/:id/like/toggle", required, s.ToggleCommentLike)
	comments.Post("/:id/like", required, s.LikeComment)
	comments.Delete("/:id/like", required, s.UnlikeComment)
	comments.Delete("/:id", required, s.DeleteComment)

	me := api.Group("/me")
	me.Get("/quota", required, s.GetQuota)
	me.Get("/analytics", required, s.GetAnalytics)
	me.Get("/dashboard", required, s.GetDashboard)

	profiles := api.Group("/profiles")
	profiles.Put("/me", required, s.UpdateMyProfile)
	profiles.Get("/:id", s.GetProfile)

	api.Post("/analyze-text", optional, middleware.RateLimit(s.redis, 20, time.Minute, "analyze_text"), s.AnalyzeText)
	api.Post("/predict-emotion", optional, middleware.RateLimit(s.redis, 20, time.Minute, "predict_emotion"), s.PredictEmotion)
	api.Get("/metadata", middleware.RateLimit(s.redis, 60, time.Minute, "metadata"), s.GetMetadata)
	api.Get("/feature-flags", optional, s.GetFeatureFlags)

	// Anonymous viewers may watch the feed.
	api.Get("/ws", s.auth.OptionalWebSocket(), s.WebsocketHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// App returns a fully configured Fiber app without listening. Start uses it.
func (s *Server) App() *fiber.App {
	if s.app == nil {
		s.app = NewApp()
		s.SetupMiddleware(s.app)
		s.SetupRoutes(s.app)
	}
	return s.app
}

// Start wires the hub to Redis and listens on the configured port.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := s.App()

	if s.notifier != nil && s.hub != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				middleware.Logger.Error("failed to start hub wiring",
					slog.String("hub", s.hub.Name()), slog.String("error", err.Error()))
			}
		}()
	}

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Stop the wiring goroutines first.
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			middleware.Logger.Error("error shutting down hub", slog.String("error", err.Error()))
		}
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
