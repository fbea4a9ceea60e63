package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"orderdesk/internal/handler"
	"orderdesk/internal/repositories"
	"orderdesk/internal/router"
	"orderdesk/internal/service"
	"orderdesk/pkg/clock"
	"orderdesk/pkg/database"
	"orderdesk/pkg/envconfig"
	"orderdesk/pkg/flags"
	"orderdesk/pkg/logger"
	"orderdesk/pkg/shutdownsetup"
)

func main() {
	flagConfig := flags.Parse()

	if err := flagConfig.Validate(); err != nil {
		fmt.Printf("Configuration error: %v\n", err)
		return
	}

	envErr := envconfig.LoadEnvFile(".env")

	loggerConfig := logger.Config{
		Level:        envconfig.GetLogLevel(),
		Format:       envconfig.GetEnv("LOG_FORMAT", "json"),
		Output:       envconfig.GetEnv("LOG_OUTPUT", "stdout"),
		EnableCaller: envconfig.GetEnv("LOG_ENABLE_CALLER", "true") == "true",
		Environment:  envconfig.GetEnv("ENVIRONMENT", "development"),
	}

	appLogger := logger.New(loggerConfig)

	if envErr != nil {
		appLogger.Warn("Failed to load .env file", "error", envErr)
	} else {
		appLogger.Debug(".env file loaded successfully")
	}

	appLogger.Info("Starting Orderdesk application",
		"environment", loggerConfig.Environment,
		"log_level", loggerConfig.Level)

	loc, err := envconfig.LoadTimeZone()
	if err != nil {
		appLogger.Error("Invalid TIME_ZONE, falling back to local time", "error", err)
		loc = time.Local
	}
	appClock := clock.NewSystem(loc)

	dbConfig := envconfig.LoadDatabaseConfig()

	db, err := database.NewConnection(dbConfig, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to establish database connection", "error", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("Failed to close database connection", "error", err)
		}
	}()

	if err := db.HealthCheck(); err != nil {
		appLogger.Fatal("Database health check failed", "error", err)
	}
	appLogger.Info("Database connection established successfully")

	if err := db.Migrate(dbConfig); err != nil {
		appLogger.Fatal("Failed to apply database migrations", "error", err)
	}

	orderRepo := repositories.NewOrderRepository(db, appLogger)
	userRepo := repositories.NewUserRepository(db, appLogger)
	sessionRepo := repositories.NewSessionRepository(db, appLogger)

	policy := service.NewAccessPolicy()

	queryService := service.NewOrderQueryService(orderRepo, appClock, appLogger)
	orderService := service.NewOrderService(orderRepo, userRepo, queryService, policy, appClock, appLogger)
	userService := service.NewUserService(userRepo, sessionRepo, orderRepo, policy, appClock, envconfig.LoadSessionTTL(), appLogger)
	reportService := service.NewReportService(queryService, policy, appClock, envconfig.LoadReportFont(), appLogger)

	orderHandler := handler.NewOrderHandler(orderService, userService, policy, appLogger)
	userHandler := handler.NewUserHandler(userService, appLogger)
	reportHandler := handler.NewReportHandler(reportService, policy, appLogger)
	authMiddleware := handler.NewAuthMiddleware(userService, appLogger)

	healthCheck := func(w http.ResponseWriter, r *http.Request) {
		if err := db.HealthCheck(); err != nil {
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"status":"ok"}`)
	}

	mux := router.NewRouter(authMiddleware, orderHandler, userHandler, reportHandler, healthCheck)

	rootHandler := appLogger.HTTPMiddleware(mux)

	initialPort := flagConfig.Port
	if initialPort == "" {
		initialPort = envconfig.GetEnv("PORT", "8080")
	}
	host := envconfig.GetEnv("HOST", "localhost")

	port := initialPort

	server := &http.Server{
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	maxRetries := 3
	for i := 0; i < maxRetries; i++ {
		server.Addr = host + ":" + port

		go func() {
			appLogger.Info("Starting HTTP server",
				"host", host,
				"port", port,
				"address", server.Addr)

			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				appLogger.Error("Server error", "error", err)
				serverErrors <- err
			}
		}()

		select {
		case err := <-serverErrors:
			if strings.Contains(err.Error(), "address already in use") && i < maxRetries-1 {
				portNum := 8080 + i + 1
				port = fmt.Sprintf("%d", portNum)
				appLogger.Warn("Port already in use, trying alternative port",
					"current_port", server.Addr,
					"next_port", port)
				continue
			} else {
				appLogger.Error("Failed to start server after retries", "error", err)
				return
			}
		case <-time.After(200 * time.Millisecond):
			appLogger.Info("Server started successfully", "port", port)
		}

		break
	}

	select {
	case err := <-serverErrors:
		appLogger.Error("Could not start server", "error", err)
		return
	default:
		shutdownsetup.SetupGracefulShutdown(server, appLogger)
	}
}
