package main

import (
	"context"
	"fmt"
	"ms-engagement/internal/auth"
	"ms-engagement/internal/comments/comment_api"
	comment_db "ms-engagement/internal/comments/db"
	comments "ms-engagement/internal/comments/service"
	"ms-engagement/internal/config"
	"ms-engagement/internal/database"
	"ms-engagement/internal/database/migrations"
	"ms-engagement/internal/events/event_api"
	event_db "ms-engagement/internal/events/db"
	events "ms-engagement/internal/events/service"
	"ms-engagement/internal/kafka"
	like_db "ms-engagement/internal/likes/db"
	"ms-engagement/internal/likes/like_api"
	likeredis "ms-engagement/internal/likes/redis"
	likes "ms-engagement/internal/likes/service"
	"ms-engagement/internal/logger"
	"ms-engagement/internal/metrics"
	"ms-engagement/internal/models"
	"ms-engagement/internal/share"
	"ms-engagement/internal/sse"
	user_db "ms-engagement/internal/users/db"
	"ms-engagement/internal/users/user_api"
	users "ms-engagement/internal/users/service"
	"ms-engagement/internal/utils"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// engagementPublisher is satisfied by both the Kafka producer and the in-process emitter.
type engagementPublisher interface {
	PublishEngagement(ctx context.Context, ev models.EngagementEvent) error
}

// startStreamBridge forwards engagement events from Kafka to the local SSE emitter. Every
// instance joins its own consumer group so each one sees every event.
func startStreamBridge(ctx context.Context, cfg config.KafkaConfig, emitter *sse.EngagementEmitter, logger *logger.Logger) *kafka.Consumer {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = utils.GenerateID()
	}
	groupID := fmt.Sprintf("%s-%s", cfg.GroupID, host)

	topics := []string{cfg.Topics.Likes, cfg.Topics.Comments, cfg.Topics.Events}
	consumer := kafka.NewConsumer(cfg.Brokers, topics, groupID, logger)

	go consumer.Start(ctx, func(ev models.EngagementEvent) {
		delivered := emitter.Emit(ev)
		logger.Debug("SSE", fmt.Sprintf("Forwarded %s for event %s to %d client(s)", ev.Type, ev.EventID, delivered))
	})

	logger.Info("KAFKA", fmt.Sprintf("Stream bridge consuming %v as group %s", topics, groupID))
	return consumer
}

func main() {
	// .env is loaded before the logger so LOG_LEVEL from the file applies.
	envErr := godotenv.Load()

	logger := logger.NewLogger()
	defer logger.Close()

	logger.Info("APP", "Starting Engagement Service initialization")

	if envErr != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		logger.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	if cfg.Auth.JWTSecret == "" {
		logger.Fatal("CONFIG", "JWT_SECRET not set")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("APP", "Verifying database connections")
	bunDB, err := database.Connect(cfg.Database, logger)
	if err != nil {
		logger.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	if cfg.Database.AutoMigrate {
		runner := migrations.NewRunner(bunDB, migrations.MigrateOptions{
			MigrationsDir: cfg.Database.MigrationsDir,
			AutoMigrate:   true,
		}, logger)
		if err := runner.Initialize(); err != nil {
			logger.Fatal("MIGRATE", err.Error())
		}
		if err := runner.RunMigrations(); err != nil {
			logger.Fatal("MIGRATE", err.Error())
		}
		// runner.Close would also close bunDB's *sql.DB
	}

	var toggleLock likes.ToggleLock
	if cfg.Redis.Enabled {
		redisClient, err := likeredis.NewClient(cfg.Redis, logger)
		if err != nil {
			logger.Warn("REDIS", fmt.Sprintf("Redis unavailable, like toggles rely on the unique constraint only: %v", err))
		} else {
			defer redisClient.Close()
			toggleLock = likeredis.NewLock(redisClient, cfg.Redis.LockTTL, cfg.Redis.LockWait, logger)
		}
	} else {
		logger.Info("REDIS", "Redis disabled, like toggles rely on the unique constraint only")
	}

	emitter := sse.NewEngagementEmitter()
	var publisher engagementPublisher = emitter

	if cfg.Kafka.Enabled {
		topics := []string{cfg.Kafka.Topics.Likes, cfg.Kafka.Topics.Comments, cfg.Kafka.Topics.Events}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, topics, logger); err != nil {
			logger.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			logger.Info("KAFKA", "Required topics ensured successfully")
		}

		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics, logger)
		defer producer.Close()
		publisher = producer

		consumer := startStreamBridge(ctx, cfg.Kafka, emitter, logger)
		defer consumer.Close()
	} else {
		logger.Info("KAFKA", "Kafka disabled, engagement events go straight to SSE subscribers")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(registry)

	authenticator, err := auth.NewAuthenticator(ctx, cfg.Auth, logger)
	if err != nil {
		logger.Fatal("AUTH", err.Error())
	}
	protected := authenticator.Require()

	validator := utils.NewValidator()
	eventStore := &event_db.DB{Bun: bunDB}

	likeService := likes.NewLikeService(&like_db.DB{Bun: bunDB}, eventStore, toggleLock, publisher, appMetrics, logger)
	commentService := comments.NewCommentService(&comment_db.DB{Bun: bunDB}, eventStore, publisher, appMetrics, logger)
	eventService := events.NewEventService(eventStore, publisher, logger)
	userService := users.NewUserService(&user_db.DB{Bun: bunDB}, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, logger)

	likeHandler := like_api.NewHandler(likeService, logger)
	commentHandler := comment_api.NewHandler(commentService, logger)
	eventHandler := event_api.NewHandler(eventService, validator, logger)
	userHandler := user_api.NewHandler(userService, validator, user_api.CookieConfig{
		Name:   authenticator.CookieName(),
		TTL:    cfg.Auth.TokenTTL,
		Secure: cfg.Auth.CookieSecure,
	}, logger)
	shareHandler := share.NewHandler(eventStore, share.NewQRGenerator(cfg.Share.PublicBaseURL, cfg.Share.QRSize), logger)
	streamHandler := sse.NewHandler(emitter, appMetrics, logger)

	logger.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(metrics.Middleware(appMetrics, logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := bunDB.PingContext(r.Context()); err != nil {
			utils.WriteError(w, "Database unavailable", err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("ok", nil))
	})
	r.Method(http.MethodGet, "/metrics", appMetrics.Handler())

	r.Route("/api", func(r chi.Router) {
		userHandler.RegisterRoutes(r, protected)
		logger.Info("ROUTER", "Auth routes registered under /api/auth")

		eventHandler.RegisterRoutes(r, protected)
		logger.Info("ROUTER", "Event routes registered under /api/events")

		likeHandler.RegisterRoutes(r, protected)
		commentHandler.RegisterRoutes(r, protected)
		logger.Info("ROUTER", "Like and comment routes registered")

		shareHandler.RegisterRoutes(r)
		r.Get("/events/{eventId}/stream", streamHandler.Stream)
		logger.Info("ROUTER", "Share and stream routes registered")
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		BaseContext:  func(_ net.Listener) context.Context { return ctx },
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("🚀 Engagement Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	// Cancelling the base context ends open SSE streams and the Kafka bridge.
	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		logger.Info("HTTP", "✅ Engagement Service shutdown complete")
	}
}
