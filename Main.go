package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restaurant-pos/cache"
	"restaurant-pos/config"
	"restaurant-pos/events"
	"restaurant-pos/handlers"
	"restaurant-pos/jwt"
	"restaurant-pos/logger"
	"restaurant-pos/orders"
	"restaurant-pos/routers"

	"github.com/gin-gonic/gin"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to the YAML config file")
		addAdmin   = flag.Bool("add-admin", false, "Create or replace a staff account and exit")
		username   = flag.String("username", "", "Staff username (with -add-admin)")
		password   = flag.String("password", "", "Staff password (with -add-admin)")
		email      = flag.String("email", "", "Staff email (with -add-admin)")
		role       = flag.String("role", "admin", "Staff role, admin or staff (with -add-admin)")
	)
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("restaurant-pos", os.Stdout, cfg.Log.Level)

	db, err := config.SetupDatabase(cfg)
	if err != nil {
		log.Error("db_connect_failed", "", "Failed to connect to database", err)
		os.Exit(1)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()
	log.Info("db_connected", "", "Database ready",
		slog.String("driver", cfg.Database.Driver),
		slog.Int("tables", cfg.Restaurant.TableCount),
	)

	if *addAdmin {
		user, err := handlers.SaveStaffUser(db, handlers.StaffUserInput{
			Username: *username,
			Password: *password,
			Email:    *email,
			Role:     *role,
		})
		if err != nil {
			log.Error("add_admin_failed", "", "Failed to create staff user", err)
			os.Exit(1)
		}
		log.Info("add_admin", "", "Staff user saved", slog.String("username", user.Username), slog.String("role", user.Role))
		return
	}

	rdb, err := config.SetupRedisConnection(cfg.Redis)
	if err != nil {
		log.Warn("redis_unavailable", "", "Serving menu without cache", slog.String("error", err.Error()))
	}
	if rdb != nil {
		defer rdb.Close()
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		rabbit, err := events.DialRabbitMQ(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Warn("rabbitmq_unavailable", "", "Order events disabled", slog.String("error", err.Error()))
		} else {
			publisher = rabbit
			log.Info("rabbitmq_connected", "", "Publishing order events", slog.String("exchange", cfg.RabbitMQ.Exchange))
		}
	}
	defer publisher.Close()

	service := orders.NewService(db, publisher, log, orders.Options{
		StrictTransitions:    cfg.Orders.StrictTransitions,
		RejectOccupiedTables: cfg.Orders.RejectOccupiedTables,
	})

	gin.SetMode(gin.ReleaseMode)
	router := routers.SetupRouters(routers.Dependencies{
		DB:         db,
		Orders:     service,
		MenuCache:  cache.NewMenuCache(rdb, cfg.MenuCacheTTL()),
		Tokens:     jwt.NewManager(cfg.Auth.JWTSecret, cfg.TokenTTL()),
		Logger:     log,
		UploadsDir: cfg.Server.UploadsDir,
		CORSOrigin: cfg.Server.CORSOrigin,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server_started", "", "HTTP server listening", slog.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Error("server_failed", "", "HTTP server failed", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Info("graceful_shutdown", "", "Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown_failed", "", "Failed to stop HTTP server", err)
	}
	log.Info("server_stopped", "", "Server stopped")
}
