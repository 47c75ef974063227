package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "rrhh/api/swagger" // swagger docs
	"rrhh/internal/auth"
	"rrhh/internal/config"
	"rrhh/internal/database"
	"rrhh/internal/events"
	"rrhh/internal/handler"
	"rrhh/internal/logger"
	"rrhh/internal/middleware"
	"rrhh/internal/repository"
	"rrhh/internal/seed"
	"rrhh/internal/service"
	"rrhh/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           RRHH API
// @version         1.0
// @description     Human resources management API: employees, contracts, attendance, payroll, leave and development.
// @host            localhost:8000
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel, cfg.LogFile)
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("Database connection failed")
	}
	defer database.Close(db)

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("Database migration failed")
	}
	log.Info().Str("driver", cfg.DBDriver).Msg("Database ready")

	// Event publishing is optional
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NATSURL != "" {
		natsPub, err := events.NewNATSPublisher(events.NATSConfig{URL: cfg.NATSURL})
		if err != nil {
			log.Warn().Err(err).Msg("NATS unavailable, events disabled")
		} else {
			publisher = natsPub
		}
	}
	defer publisher.Close()

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(cfg.CORSOrigins)
	go wsHub.Run(ctx)

	seedData, err := seed.Defaults()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid seed data")
	}

	// Set up dependencies (Repository -> Service -> Handler)
	repos := repository.NewRepositories(db)
	tokens := auth.NewTokenManager(cfg.SecretKey, cfg.TokenTTL)
	services := service.NewServices(repos, tokens, publisher, wsHub, seedData)

	if _, err := services.Seed.Run(ctx, cfg.SeedExampleAccounts); err != nil {
		log.Fatal().Err(err).Msg("Seeding failed")
	}

	var limiter *middleware.LoginRateLimiter
	if cfg.RedisAddr != "" {
		client, err := middleware.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, login rate limiting disabled")
		} else {
			defer client.Close()
			limiter = middleware.NewLoginRateLimiter(client, cfg.LoginRateLimit, cfg.LoginRateWindow)
		}
	}

	if err := handler.RegisterValidators(); err != nil {
		log.Fatal().Err(err).Msg("Validator registration failed")
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID(), logger.GinLogger(), gin.Recovery())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowCredentials = len(cfg.CORSOrigins) > 0
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Request-ID"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	if !cfg.IsProduction() {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		migrations, err := database.Status(c.Request.Context(), db)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "ERROR", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "OK", "entorno": cfg.Env, "migraciones": len(migrations)})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, tokens, repos.Users, c)
	})

	guard := middleware.NewAuthenticator(tokens, repos.Users, repos.Roles)
	handler.RegisterAPI(router, services, guard, limiter)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("env", cfg.Env).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
