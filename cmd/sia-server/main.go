package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	internalhttp "github.com/sia-robotics/sia-server/internal/api/http"
	"github.com/sia-robotics/sia-server/internal/auth"
	"github.com/sia-robotics/sia-server/internal/commands"
	"github.com/sia-robotics/sia-server/internal/db"
	"github.com/sia-robotics/sia-server/internal/errorlog"
	"github.com/sia-robotics/sia-server/internal/images"
	"github.com/sia-robotics/sia-server/internal/inventory"
	"github.com/sia-robotics/sia-server/internal/robots"
	"github.com/sia-robotics/sia-server/internal/schedules"
	"github.com/sia-robotics/sia-server/internal/trajectories"
	"github.com/sia-robotics/sia-server/internal/users"
	"github.com/sia-robotics/sia-server/internal/warehouses"
	"github.com/sia-robotics/sia-server/internal/wms"
	"github.com/sia-robotics/sia-server/internal/ws"
)

var AppVersion string

func main() {
	InitConfig()

	slog.Info("SIA Server", "version", AppVersion)

	ctx := context.Background()

	if err := db.RunMigrations(config.Db.Url, config.Db.Schema); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	pool, err := db.InitDB(ctx, config.Db.Url, config.Db.Schema)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	userService := users.NewService(pool)
	if config.Bootstrap.MasterEmail != "" {
		err := userService.EnsureMaster(ctx, config.Bootstrap.MasterName, config.Bootstrap.MasterEmail, config.Bootstrap.MasterPassword)
		if err != nil {
			slog.Error("Failed to ensure bootstrap master", "error", err)
			os.Exit(1)
		}
	}

	robotService := robots.NewService(pool)
	errorService := errorlog.NewService(pool)
	imageService := images.NewService(pool)
	trajectoryService := trajectories.NewService(pool)
	inventoryService := inventory.NewService(pool)
	warehouseService := warehouses.NewService(pool)
	scheduleService := schedules.NewService(pool, robotService)
	wmsService := wms.NewService(pool, inventoryService)

	registry := ws.NewRegistry()
	commandService := commands.NewService(pool, robotService, registry)
	wsHandler := ws.NewHandler(registry, robotService, errorService, commandService)

	services := &internalhttp.Services{
		Auth:         auth.NewService(userService, config.Auth),
		Users:        userService,
		Warehouses:   warehouseService,
		Robots:       robotService,
		Commands:     commandService,
		Schedules:    scheduleService,
		Trajectories: trajectoryService,
		Images:       imageService,
		Inventory:    inventoryService,
		ErrorLog:     errorService,
		WMS:          wmsService,
		WSHandler:    wsHandler,
		JWTSecret:    config.Auth.Secret,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"PUT", "PATCH", "GET", "POST", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(gin.Recovery())
	internalhttp.SetupRoute(engine, services)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Http.Port),
		Handler: engine,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		slog.Error("Server error", "error", err)
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig)
	}

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("Shutdown complete")
}
