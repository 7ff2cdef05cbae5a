// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"domin8x/internal/bootstrap"
	"domin8x/internal/config"
	"domin8x/internal/events"
	"domin8x/internal/featureflags"
	"domin8x/internal/generation"
	"domin8x/internal/middleware"
	"domin8x/internal/models"
	"domin8x/internal/notifications"
	"domin8x/internal/repository"
	"domin8x/internal/scheduler"
	"domin8x/internal/service"
	"domin8x/internal/session"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	// creationIdleTTL bounds how long an untouched creation is kept in memory.
	creationIdleTTL      = time.Hour
	creationExpirySpec   = "@every 5m"
	challengeSweepJob    = "challenge-sweep"
	creationExpiryJob    = "creation-expiry"
	defaultFeedPageLimit = 20
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	broker    *events.Broker
	notifier  *notifications.Notifier
	hub       *notifications.Hub
	sessions  *session.Store
	flags     *featureflags.Manager
	scheduler *scheduler.Scheduler

	authService      *service.AuthService
	userService      *service.UserService
	feedService      *service.FeedService
	creationService  *service.CreationService
	logoService      *service.LogoService
	promptService    *service.PromptService
	challengeService *service.ChallengeService
	projectService   *service.ProjectService
	discoveryService *service.DiscoveryService
}

// NewServer connects to the configured database and Redis and wires every dependency.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, rdb, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{Seed: cfg.SeedOnStart})
	if err != nil {
		return nil, err
	}
	s, err := NewServerWithDeps(cfg, db, rdb)
	if err != nil {
		return nil, err
	}
	s.promMiddleware = middleware.InitMetrics("domin8x-api")
	return s, nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// A nil Redis client disables sessions, revocation and the cross-instance event relay.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	prefRepo := repository.NewPreferenceRepository(db)
	postRepo := repository.NewPostRepository(db)
	logoRepo := repository.NewLogoRepository(db)
	promptRepo := repository.NewPromptRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)
	projectRepo := repository.NewProjectRepository(db)

	s := &Server{
		config:    cfg,
		db:        db,
		redis:     redisClient,
		broker:    events.NewBroker(),
		hub:       notifications.NewHub(),
		sessions:  session.NewStore(redisClient, cfg.SessionKey, cfg.LegacySessionKeyList(), cfg.TokenTTL()),
		flags:     featureflags.NewManager(cfg.FeatureFlags),
		scheduler: scheduler.New(),
	}
	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
	}

	s.authService = service.NewAuthService(userRepo, s.sessions, cfg.JWTSecret, cfg.TokenTTL())
	s.userService = service.NewUserService(userRepo, prefRepo, s.sessions, s.broker)
	s.feedService = service.NewFeedService(postRepo, s.broker)
	s.creationService = service.NewCreationService(
		generation.NewRunner(cfg.GenerationDelay()), s.feedService, logoRepo, s.flags, s.broker)
	s.logoService = service.NewLogoService(logoRepo, s.flags, s.broker, cfg.LogoGenerationDelay())
	s.promptService = service.NewPromptService(promptRepo, userRepo, s.broker)
	s.challengeService = service.NewChallengeService(challengeRepo, s.broker)
	s.projectService = service.NewProjectService(projectRepo, postRepo, s.broker, cfg.SiteImportDelay())
	s.discoveryService = service.NewDiscoveryService(postRepo, promptRepo, userRepo)

	if err := s.registerJobs(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) registerJobs() error {
	if err := s.scheduler.Add(challengeSweepJob, s.config.ChallengeSweepSchedule, func(ctx context.Context) error {
		_, err := s.challengeService.Sweep(ctx)
		return err
	}); err != nil {
		return fmt.Errorf("register %s: %w", challengeSweepJob, err)
	}
	if err := s.scheduler.Add(creationExpiryJob, creationExpirySpec, func(ctx context.Context) error {
		if n := s.creationService.ExpireIdle(time.Now().Add(-creationIdleTTL)); n > 0 {
			middleware.Logger.InfoContext(ctx, "expired idle creations", "count", n)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("register %s: %w", creationExpiryJob, err)
	}
	return nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 5, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/signin", middleware.RateLimit(s.redis, 10, 5*time.Minute, "signin"), s.Signin)
	auth.Post("/signout", s.AuthRequired(), s.Signout)

	api.Get("/session", s.AuthRequired(), s.GetSession)

	// Public reads. The feed fills viewer flags when a token is present.
	// Everything registered after the protected group below requires a token.
	api.Get("/posts", s.GetFeed)
	api.Get("/posts/bookmarks", s.AuthRequired(), s.GetBookmarks)
	api.Get("/posts/:id", s.GetPost)
	api.Get("/prompts", s.GetPrompts)
	api.Get("/challenges", s.GetChallenges)
	api.Get("/challenges/:id/leaderboard", s.GetLeaderboard)
	api.Get("/challenges/:id", s.GetChallenge)
	api.Get("/trending", s.GetTrending)
	api.Get("/users/suggestions", s.GetUserSuggestions)

	api.Post("/ws/ticket", s.AuthRequired(), s.IssueWSTicket)
	api.Get("/ws", s.AuthRequired(), s.WebsocketHandler())

	protected := api.Group("", s.AuthRequired())

	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Get("/me/preferences", s.GetMyPreferences)
	users.Put("/me/preferences", s.UpdateMyPreferences)

	posts := protected.Group("/posts")
	posts.Post("/", middleware.RateLimit(s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:id/like", s.ToggleLike)
	posts.Post("/:id/retweet", s.ToggleRetweet)
	posts.Post("/:id/bookmark", s.ToggleBookmark)

	creations := protected.Group("/creations")
	creations.Post("/", s.OpenCreation)
	creations.Post("/:id/generate", middleware.RateLimit(s.redis, 20, time.Minute, "generate"), s.GenerateCreation)
	creations.Post("/:id/logo", s.SelectCreationLogo)
	creations.Post("/:id/overlay", s.ApplyCreationLogo)
	creations.Post("/:id/post", s.PostCreation)
	creations.Get("/:id", s.GetCreation)
	creations.Delete("/:id", s.DiscardCreation)

	logos := protected.Group("/logos")
	logos.Get("/", s.GetLogos)
	logos.Post("/generate", middleware.RateLimit(s.redis, 10, time.Minute, "generate_logo"), s.GenerateLogo)
	logos.Post("/", s.SaveLogo)
	logos.Post("/:id/transparent", s.MakeLogoTransparent)
	logos.Delete("/:id", s.DeleteLogo)

	prompts := protected.Group("/prompts")
	prompts.Post("/", s.AddPrompt)
	prompts.Post("/:id/like", s.LikePrompt)
	prompts.Post("/:id/use", s.UsePrompt)

	protected.Post("/challenges", s.CreateChallenge)

	projects := protected.Group("/projects")
	projects.Get("/", s.GetProjects)
	projects.Post("/", s.CreateProject)
	projects.Post("/import", s.ImportPostProject)
	projects.Post("/import-site", middleware.RateLimit(s.redis, 10, time.Minute, "import_site"), s.ImportSiteProject)
	projects.Get("/:id/code", s.GetProjectCode)
	projects.Get("/:id", s.GetProject)
	projects.Put("/:id", s.UpdateProject)
	projects.Delete("/:id", s.DeleteProject)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and Redis health. Redis is optional, so
// only a failing database makes the instance unready.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if sqlDB, err := s.db.DB(); err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "degraded"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"version": bootstrap.Version,
		"status":  overallStatus,
		"checks": fiber.Map{
			"database":    dbStatus,
			"redis":       redisStatus,
			"connections": s.hub.ConnectionCount(),
		},
		"time": time.Now(),
	})
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err.Error())
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// NewApp builds the Fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "DOMin8X API",
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start wires the event pipeline, starts background jobs and serves HTTP until shutdown.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	if err := s.startBackground(ctx); err != nil {
		return err
	}

	s.app = s.NewApp()
	middleware.Logger.Info("Server starting", "port", s.config.Port)
	return s.app.Listen(":" + s.config.Port)
}

// startBackground connects the broker to Redis and the hub, then starts the scheduler.
func (s *Server) startBackground(ctx context.Context) error {
	if s.notifier != nil {
		if err := s.notifier.StartRelay(ctx, s.broker); err != nil {
			middleware.Logger.Warn("event relay unavailable, delivering locally", "error", err.Error())
		} else {
			s.broker.SetRelay(s.notifier)
		}
	}
	go s.hub.Run(ctx, s.broker)
	s.scheduler.Start()
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err.Error())
		}
	}

	var g errgroup.Group
	g.Go(func() error { return s.scheduler.Stop(ctx) })
	g.Go(func() error { return s.creationService.Shutdown(ctx) })
	g.Go(func() error { return s.hub.Shutdown(ctx) })
	err := g.Wait()

	bootstrap.Close(s.db, s.redis)
	middleware.Logger.Info("Server shutdown complete")
	return err
}
