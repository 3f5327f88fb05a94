package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-api/internal/handler"
	"github.com/noah-isme/attendance-api/internal/middleware"
	"github.com/noah-isme/attendance-api/internal/models"
	"github.com/noah-isme/attendance-api/internal/service"
	"github.com/noah-isme/attendance-api/pkg/config"
	"github.com/noah-isme/attendance-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/attendance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/attendance-api/pkg/middleware/requestid"
)

type authenticator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
	CurrentRole(userID string) (models.UserRole, bool)
}

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Auth       *handler.AuthHandler
	Attendance *handler.AttendanceHandler
	Correction *handler.CorrectionHandler
	User       *handler.UserHandler
	Metrics    *handler.MetricsHandler
}

// Setup builds the gin engine with global middleware and every route.
func Setup(cfg *config.Config, h Handlers, authn authenticator, metrics *service.MetricsService, logr *zap.Logger) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	if logr == nil {
		logr = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", h.Metrics.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	prefix := cfg.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}
	v1 := r.Group(prefix)

	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
	}

	authorized := v1.Group("")
	authorized.Use(middleware.JWT(authn))
	{
		authorized.GET("/auth/me", h.Auth.Me)

		attendance := authorized.Group("/attendance")
		{
			attendance.GET("/events", h.Attendance.ListEvents)
			attendance.POST("/events", h.Attendance.RecordEvent)
			attendance.DELETE("/events", h.Attendance.Reset)
			attendance.GET("/status", h.Attendance.Status)
			attendance.GET("/summary", h.Attendance.Summary)
			attendance.GET("/summary/stream", h.Attendance.SummaryStream)
			attendance.GET("/team", h.Attendance.Team)
			if cfg.Exports.Enabled {
				attendance.GET("/export", h.Attendance.Export)
			}
		}

		corrections := authorized.Group("/corrections")
		{
			corrections.GET("", h.Correction.ListMine)
			corrections.POST("", h.Correction.Create)
		}

		admin := authorized.Group("/admin")
		admin.Use(middleware.RequireAdmin(authn))
		{
			admin.GET("/users", h.User.List)
			admin.POST("/users/:id/promote", h.User.Promote)
			admin.GET("/corrections", h.Correction.ListAll)
			admin.POST("/corrections/:id/approve", h.Correction.Approve)
			admin.POST("/corrections/:id/deny", h.Correction.Deny)
		}
	}

	return r
}
