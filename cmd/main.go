package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/jurek362/tbh-backend/internal/facades"
	"github.com/jurek362/tbh-backend/internal/geoip"
	"github.com/jurek362/tbh-backend/internal/handlers"
	"github.com/jurek362/tbh-backend/internal/jwt"
	"github.com/jurek362/tbh-backend/internal/logger"
	"github.com/jurek362/tbh-backend/internal/middlewares"
	"github.com/jurek362/tbh-backend/internal/notifiers"
	"github.com/jurek362/tbh-backend/internal/repositories"
	"github.com/jurek362/tbh-backend/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/jurek362/tbh-backend/docs"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// @title tbh-backend API
// @version 1.0.0
// @description Anonymous messaging backend: user directory and mailbox store
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	appHost, appPort, logLevel,
		storageBackend, registerPolicy, messageMaxLength, baseLink, corsOrigin,
		pgHost, pgPort, pgUser, pgPassword, pgDB,
		pgMaxOpenConns, pgMaxIdleConns,
		cacheEnabled, redisHost, redisPort, redisDB, redisPassword,
		redisPoolSize, redisMinIdleConns, cacheTTLSecond,
		kafkaBrokers, kafkaTopic,
		discordWebhookURL, geoipAPIURL,
		adminUsername, adminPasswordHash,
		jwtSecret, jwtExp,
		err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(),
		appHost, appPort, logLevel,
		storageBackend, registerPolicy, messageMaxLength, baseLink, corsOrigin,
		pgHost, pgPort, pgUser, pgPassword, pgDB,
		pgMaxOpenConns, pgMaxIdleConns,
		cacheEnabled, redisHost, redisPort, redisDB, redisPassword,
		redisPoolSize, redisMinIdleConns, cacheTTLSecond,
		kafkaBrokers, kafkaTopic,
		discordWebhookURL, geoipAPIURL,
		adminUsername, adminPasswordHash,
		jwtSecret, jwtExp,
	); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns all
// application, storage, cache, messaging, notification, and admin
// configuration.
func parseConfig(path string) (
	appHost, appPort, logLevel string,
	storageBackend, registerPolicy string, messageMaxLength int, baseLink, corsOrigin string,
	pgHost string, pgPort int, pgUser, pgPassword, pgDB string,
	pgMaxOpenConns, pgMaxIdleConns int,
	cacheEnabled bool, redisHost string, redisPort, redisDB int, redisPassword string,
	redisPoolSize, redisMinIdleConns, cacheTTLSecond int,
	kafkaBrokers, kafkaTopic string,
	discordWebhookURL, geoipAPIURL string,
	adminUsername, adminPasswordHash string,
	jwtSecretKey string, jwtExpSecond int,
	err error,
) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}

	// Application config
	appHost = getEnv("APP_HOST", "localhost")
	appPort = getEnv("APP_PORT", "8080")
	logLevel = getEnv("APP_LOG_LEVEL", "info")
	storageBackend = getEnv("APP_STORAGE_BACKEND", "postgres")
	registerPolicy = getEnv("APP_EXISTING_USERNAME_POLICY", "login")
	if messageMaxLength, err = strconv.Atoi(getEnv("APP_MESSAGE_MAX_LENGTH", "1000")); err != nil {
		return
	}
	baseLink = getEnv("APP_BASE_LINK", "https://tbh.fun")
	corsOrigin = getEnv("APP_CORS_ORIGIN", "*")

	// PostgreSQL config
	pgHost = getEnv("POSTGRES_HOST", "localhost")
	pgUser = getEnv("POSTGRES_USER", "user")
	pgPassword = getEnv("POSTGRES_PASSWORD", "password")
	pgDB = getEnv("POSTGRES_DB", "database")
	if pgPort, err = strconv.Atoi(getEnv("POSTGRES_PORT", "5432")); err != nil {
		return
	}
	if pgMaxOpenConns, err = strconv.Atoi(getEnv("POSTGRES_MAX_OPEN_CONNS", "16")); err != nil {
		return
	}
	if pgMaxIdleConns, err = strconv.Atoi(getEnv("POSTGRES_MAX_IDLE_CONNS", "8")); err != nil {
		return
	}

	// Redis user cache config
	if cacheEnabled, err = strconv.ParseBool(getEnv("REDIS_CACHE_ENABLED", "false")); err != nil {
		return
	}
	redisHost = getEnv("REDIS_HOST", "localhost")
	if redisPort, err = strconv.Atoi(getEnv("REDIS_PORT", "6379")); err != nil {
		return
	}
	if redisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return
	}
	redisPassword = getEnv("REDIS_PASSWORD", "")
	if redisPoolSize, err = strconv.Atoi(getEnv("REDIS_POOL_SIZE", "10")); err != nil {
		return
	}
	if redisMinIdleConns, err = strconv.Atoi(getEnv("REDIS_MIN_IDLE_CONNS", "2")); err != nil {
		return
	}
	if cacheTTLSecond, err = strconv.Atoi(getEnv("REDIS_CACHE_TTL_SECOND", "60")); err != nil {
		return
	}

	// Kafka activity events config, disabled when no brokers are set
	kafkaBrokers = getEnv("KAFKA_BROKERS", "")
	kafkaTopic = getEnv("KAFKA_TOPIC", "tbh-activity")

	// Discord webhook config, disabled when no URL is set
	discordWebhookURL = getEnv("DISCORD_WEBHOOK_URL", "")
	geoipAPIURL = getEnv("GEOIP_API_URL", "http://ip-api.com")

	// Admin config
	adminUsername = getEnv("ADMIN_USERNAME", "admin")
	adminPasswordHash = getEnv("ADMIN_PASSWORD_HASH", "")

	// JWT config
	jwtSecretKey = getEnv("JWT_SECRET_KEY", "my_super_secret_key")
	if jwtExpSecond, err = strconv.Atoi(getEnv("JWT_EXP_SECOND", "3600")); err != nil {
		return
	}

	return
}

// run initializes the logger, storage backend, cache, notifiers, and HTTP
// server. It sets up routes, applies middleware, and handles graceful
// shutdown.
func run(ctx context.Context,
	appHost, appPort, logLevel string,
	storageBackend, registerPolicy string, messageMaxLength int, baseLink, corsOrigin string,
	pgHost string, pgPort int, pgUser, pgPassword, pgDB string,
	pgMaxOpenConns, pgMaxIdleConns int,
	cacheEnabled bool, redisHost string, redisPort, redisDB int, redisPassword string,
	redisPoolSize, redisMinIdleConns, cacheTTLSecond int,
	kafkaBrokers, kafkaTopic string,
	discordWebhookURL, geoipAPIURL string,
	adminUsername, adminPasswordHash string,
	jwtSecretKey string, jwtExpSecond int,
) error {
	// Initialize logger
	if err := logger.Initialize(logLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Log.Sync()
	logger.Log.Infof("Logger initialized with level %s", logLevel)

	// Storage backend
	var (
		userReader services.UserReader
		userWriter services.UserWriter
		userLister services.UserLister
		msgReader  services.MessageReader
		msgWriter  services.MessageWriter
	)

	switch storageBackend {
	case "memory":
		logger.Log.Info("Using in-memory storage backend")
		store := repositories.NewMemoryStore()
		users := store.Users()
		messages := store.Messages()
		userReader, userWriter, userLister = users, users, users
		msgReader, msgWriter = messages, messages

	case "postgres":
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			pgUser, pgPassword, pgHost, pgPort, pgDB)
		logger.Log.Infof("Connecting to PostgreSQL: %s:%d/%s", pgHost, pgPort, pgDB)

		db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
		if err != nil {
			logger.Log.Fatal("PostgreSQL connection error:", err)
		}
		defer db.Close()
		db.SetMaxOpenConns(pgMaxOpenConns)
		db.SetMaxIdleConns(pgMaxIdleConns)
		if err := db.PingContext(ctx); err != nil {
			logger.Log.Fatal("PostgreSQL ping failed:", err)
		}
		if err := repositories.Bootstrap(ctx, db); err != nil {
			logger.Log.Fatal("schema bootstrap failed:", err)
		}

		userReadRepo := repositories.NewUserReadRepository(db)
		userReader, userLister = userReadRepo, userReadRepo
		userWriter = repositories.NewUserWriteRepository(db)
		msgReader = repositories.NewMessageReadRepository(db)
		msgWriter = repositories.NewMessageWriteRepository(db)

	default:
		return fmt.Errorf("unknown storage backend %q", storageBackend)
	}

	// Optional Redis user cache
	if cacheEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:         fmt.Sprintf("%s:%d", redisHost, redisPort),
			Password:     redisPassword,
			DB:           redisDB,
			PoolSize:     redisPoolSize,
			MinIdleConns: redisMinIdleConns,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Log.Fatal("Redis connection error:", err)
		}
		defer rdb.Close()

		cache := facades.NewUserCacheFacade(rdb, userReader, userWriter,
			time.Duration(cacheTTLSecond)*time.Second)
		userReader, userWriter = cache, cache
		logger.Log.Info("User cache enabled")
	}

	// Initialize JWT service
	jwtSvc := jwt.New(
		jwt.WithSecretKey(jwtSecretKey),
		jwt.WithExpiration(time.Duration(jwtExpSecond)*time.Second),
	)

	// Initialize services
	directoryService := services.NewDirectoryService(userReader, userWriter, userLister,
		services.RegisterPolicy(registerPolicy))
	mailboxService := services.NewMailboxService(userReader, msgReader, msgWriter, messageMaxLength)

	// Activity notifiers
	var sinks []notifiers.ActivityNotifier
	if discordWebhookURL != "" {
		var locator notifiers.Locator
		if geoipAPIURL != "" {
			locator = geoip.NewClient(geoipAPIURL, nil)
		}
		sinks = append(sinks, notifiers.NewDiscordNotifier(discordWebhookURL, locator, nil))
		logger.Log.Info("Discord notifications enabled")
	}
	if kafkaBrokers != "" {
		kafkaNotifier := notifiers.NewKafkaNotifier(strings.Split(kafkaBrokers, ","), kafkaTopic)
		defer kafkaNotifier.Close()
		sinks = append(sinks, kafkaNotifier)
		logger.Log.Infof("Kafka notifications enabled, topic %s", kafkaTopic)
	}
	var notifier handlers.ActivityNotifier
	if len(sinks) > 0 {
		notifier = notifiers.NewMulti(sinks...)
	}

	// Initialize handlers
	registerHandler := handlers.NewRegisterHandler(directoryService, notifier, baseLink)
	checkUserHandler := handlers.NewCheckUserHandler(directoryService)
	sendMessageHandler := handlers.NewSendMessageHandler(mailboxService, notifier)
	getMessagesHandler := handlers.NewGetMessagesHandler(mailboxService)
	clearMessagesHandler := handlers.NewClearMessagesHandler(mailboxService)
	deleteUserHandler := handlers.NewDeleteUserHandler(directoryService)
	usersHandler := handlers.NewUsersHandler(directoryService)
	adminLoginHandler := handlers.NewAdminLoginHandler(jwtSvc, adminUsername, adminPasswordHash)
	healthHandler := handlers.NewHealthHandler(directoryService)
	apiInfoHandler := handlers.NewAPIInfoHandler()

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{corsOrigin},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(middlewares.LoggingMiddleware)

	// Public routes
	r.Get("/", apiInfoHandler)
	r.Post("/register", registerHandler)
	r.Post("/api/create-user", registerHandler) // legacy alias
	r.Get("/check_user", checkUserHandler)
	r.Post("/send_message", sendMessageHandler)
	r.Get("/get_messages", getMessagesHandler)
	r.Delete("/clear_messages", clearMessagesHandler)
	r.Post("/admin/login", adminLoginHandler)
	r.Get("/api/health", healthHandler)

	// Protected routes with JWT middleware
	r.Group(func(r chi.Router) {
		r.Use(middlewares.AuthMiddleware(jwtSvc))
		r.Get("/api/users", usersHandler)
		r.Delete("/delete_user", deleteUserHandler)
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", appHost, appPort)),
	))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", appHost, appPort),
		Handler: r,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s:%s", appHost, appPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
