package systemtest

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

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
	"github.com/sia-robotics/sia-server/systemtest/postgres"
	"github.com/sia-robotics/sia-server/systemtest/tests"
)

const jwtSecret = "systemtest-secret"

func TestSystemIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping system test in short mode")
	}

	ctx := context.Background()

	container, dbURL, err := postgres.Start(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = postgres.Terminate(context.Background(), container)
	})

	require.NoError(t, db.RunMigrations(dbURL, "sia"))

	pool, err := db.InitDB(ctx, dbURL, "sia")
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	authConfig := auth.Config{Secret: jwtSecret, TokenTTL: time.Hour}

	userService := users.NewService(pool)
	require.NoError(t, userService.EnsureMaster(ctx, "Root", "root@sia.local", "changeme123"))

	robotService := robots.NewService(pool)
	errorService := errorlog.NewService(pool)
	inventoryService := inventory.NewService(pool)
	registry := ws.NewRegistry()
	commandService := commands.NewService(pool, robotService, registry)

	services := &internalhttp.Services{
		Auth:         auth.NewService(userService, authConfig),
		Users:        userService,
		Warehouses:   warehouses.NewService(pool),
		Robots:       robotService,
		Commands:     commandService,
		Schedules:    schedules.NewService(pool, robotService),
		Trajectories: trajectories.NewService(pool),
		Images:       images.NewService(pool),
		Inventory:    inventoryService,
		ErrorLog:     errorService,
		WMS:          wms.NewService(pool, inventoryService),
		WSHandler:    ws.NewHandler(registry, robotService, errorService, commandService),
		JWTSecret:    jwtSecret,
	}

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	internalhttp.SetupRoute(engine, services)

	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)

	t.Run("HealthCheck", func(t *testing.T) { tests.TestHealthCheck(t, engine) })
	t.Run("Auth", func(t *testing.T) { tests.TestAuth(t, engine, jwtSecret) })
	t.Run("Users", func(t *testing.T) { tests.TestUserManagement(t, engine) })
	t.Run("RobotChannel", func(t *testing.T) { tests.TestRobotChannel(t, engine, server.URL, registry) })
	t.Run("Schedules", func(t *testing.T) { tests.TestScheduleFlow(t, engine) })
	t.Run("WMS", func(t *testing.T) { tests.TestWMSReconciliation(t, engine) })
}
