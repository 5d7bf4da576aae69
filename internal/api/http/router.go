package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sia-robotics/sia-server/internal/api/http/handler"
	"github.com/sia-robotics/sia-server/internal/api/http/middleware"
	"github.com/sia-robotics/sia-server/internal/auth"
	"github.com/sia-robotics/sia-server/internal/commands"
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

type Services struct {
	Auth         *auth.Service
	Users        *users.Service
	Warehouses   *warehouses.Service
	Robots       *robots.Service
	Commands     *commands.Service
	Schedules    *schedules.Service
	Trajectories *trajectories.Service
	Images       *images.Service
	Inventory    *inventory.Service
	ErrorLog     *errorlog.Service
	WMS          *wms.Service
	WSHandler    *ws.Handler

	JWTSecret string
}

func SetupRoute(engine *gin.Engine, srvs *Services) {
	engine.Use(middleware.RequestLogger())

	healthHandler := handler.NewHealthHandler()
	engine.GET("/health", healthHandler.Check)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := handler.NewAuthHandler(srvs.Auth, srvs.Users)
	engine.POST("/api/auth/login", authHandler.Login)

	// Persistent robot channel. Authorization happens inside the
	// session so that rejection uses a websocket close code.
	engine.GET("/ws/robots/:identifier", srvs.WSHandler.HandleRobot)

	userAuth := middleware.JWTAuth(srvs.JWTSecret)
	operate := middleware.RequireRole(users.RoleAdmin, users.RoleMaster)
	master := middleware.RequireRole(users.RoleMaster)

	api := engine.Group("/api", userAuth)

	api.POST("/auth/password", authHandler.ChangePassword)
	api.POST("/auth/refresh", authHandler.Refresh)

	userHandler := handler.NewUserHandler(srvs.Users)
	api.POST("/users", master, userHandler.Create)
	api.POST("/users/common", operate, userHandler.CreateCommon)
	api.GET("/users", operate, userHandler.List)
	api.GET("/users/:id", operate, userHandler.Get)
	api.DELETE("/users/:id", operate, userHandler.Delete)

	warehouseHandler := handler.NewWarehouseHandler(srvs.Warehouses, srvs.Inventory)
	api.POST("/warehouses", operate, warehouseHandler.Create)
	api.GET("/warehouses", warehouseHandler.List)
	api.GET("/warehouses/:id", warehouseHandler.Get)
	api.PUT("/warehouses/:id", operate, warehouseHandler.Update)
	api.DELETE("/warehouses/:id", operate, warehouseHandler.Deactivate)
	api.GET("/warehouses/:id/inventory/stats", warehouseHandler.InventoryStats)

	robotHandler := handler.NewRobotHandler(srvs.Robots, srvs.Commands, srvs.Images, auth.Config{Secret: srvs.JWTSecret})
	api.POST("/robots", operate, robotHandler.Create)
	api.GET("/robots", robotHandler.List)
	api.GET("/robots/:id", robotHandler.Get)
	api.PATCH("/robots/:id", operate, robotHandler.Update)
	api.POST("/robots/:id/token", master, robotHandler.MintToken)
	api.POST("/robots/:id/commands", operate, robotHandler.IssueCommand)
	api.GET("/robots/:id/commands", robotHandler.CommandHistory)
	api.GET("/robots/:id/commands/pending", robotHandler.PendingCommands)
	api.POST("/robots/:id/images", operate, robotHandler.RecordImage)
	api.GET("/robots/:id/images", robotHandler.ListImages)

	scheduleHandler := handler.NewScheduleHandler(srvs.Schedules, srvs.Trajectories, srvs.Inventory)
	api.POST("/schedules", operate, scheduleHandler.Create)
	api.GET("/schedules", scheduleHandler.List)
	api.GET("/schedules/:id", scheduleHandler.Get)
	api.PATCH("/schedules/:id/status", operate, scheduleHandler.UpdateStatus)
	api.DELETE("/schedules/:id", operate, scheduleHandler.Cancel)
	api.POST("/schedules/:id/notifications", operate, scheduleHandler.Notify)
	api.GET("/schedules/:id/notifications", scheduleHandler.Notifications)
	api.PATCH("/notifications/:id/read", scheduleHandler.MarkNotificationRead)
	api.POST("/schedules/:id/trajectories", operate, scheduleHandler.RecordTrajectory)
	api.GET("/schedules/:id/trajectories", scheduleHandler.Trajectories)
	api.POST("/schedules/:id/inventory", operate, scheduleHandler.RecordItem)
	api.GET("/schedules/:id/inventory", scheduleHandler.Items)

	trajectoryHandler := handler.NewTrajectoryHandler(srvs.Trajectories)
	api.GET("/trajectories", trajectoryHandler.ListByLocation)
	api.POST("/trajectories/:id/points", operate, trajectoryHandler.AddPoint)
	api.GET("/trajectories/:id/points", trajectoryHandler.Points)

	imageHandler := handler.NewImageHandler(srvs.Images)
	api.POST("/images/:id/processing", operate, imageHandler.LogProcessing)

	errorHandler := handler.NewErrorLogHandler(srvs.ErrorLog)
	api.POST("/errors", operate, errorHandler.Report)
	api.GET("/errors", errorHandler.List)

	// WMS integration. The webhook authenticates with a provisioned API
	// token instead of a user JWT, so it lives outside the /api group.
	wmsHandler := handler.NewWMSHandler(srvs.WMS)
	engine.POST("/wms/webhook", wmsHandler.Webhook)
	api.POST("/wms/tokens", operate, wmsHandler.CreateToken)
	api.GET("/wms/checklists", operate, wmsHandler.ListChecklists)

	// HTTP fallback for robots that cannot hold a websocket open.
	robotAuth := middleware.RobotAuth(srvs.JWTSecret)
	fleetHandler := handler.NewFleetHandler(srvs.Robots, srvs.Commands)
	fleet := engine.Group("/fleet", robotAuth)
	fleet.POST("/:identifier/status", fleetHandler.PushStatus)
	fleet.GET("/:identifier/commands", fleetHandler.PollCommands)
}
