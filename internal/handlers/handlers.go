package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Zadjehi/satisf-exercice/internal/authz"
	"github.com/Zadjehi/satisf-exercice/internal/config"
	"github.com/Zadjehi/satisf-exercice/internal/middleware"
	"github.com/Zadjehi/satisf-exercice/internal/repository"
	"github.com/Zadjehi/satisf-exercice/internal/service"
	"github.com/Zadjehi/satisf-exercice/internal/storage"
)

type HandlerSet struct {
	log   zerolog.Logger
	cfg   *config.AppConfig
	db    *pgxpool.Pool
	cache *redis.Client

	auth          *middleware.Authenticator
	authService   *service.AuthService
	surveyService *service.SurveyService
	statsService  *service.StatsService
	notifService  *service.NotificationService
	exportService *service.ExportService
	auditor       *service.Auditor
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, store *storage.ObjectStore, cfg *config.AppConfig) HandlerSet {
	users := repository.NewUserRepository(db)
	sessions := repository.NewSessionRepository(db)
	surveys := repository.NewSurveyRepository(db)
	departments := repository.NewDepartmentRepository(db)
	notifications := repository.NewNotificationRepository(db)
	audit := repository.NewAuditRepository(db)
	stats := repository.NewStatsRepository(db)

	auditor := service.NewAuditor(audit, log)

	var archiver service.ExportArchiver
	if store != nil {
		archiver = store
	}

	return HandlerSet{
		log:   log,
		cfg:   cfg,
		db:    db,
		cache: cache,

		auth:          middleware.NewAuthenticator(cfg, users, sessions),
		authService:   service.NewAuthService(users, sessions, auditor, cfg, log),
		surveyService: service.NewSurveyService(surveys, departments, notifications, users, auditor, log),
		statsService:  service.NewStatsService(stats, cache, log),
		notifService:  service.NewNotificationService(notifications, cache, log),
		exportService: service.NewExportService(surveys, stats, archiver, auditor, log),
		auditor:       auditor,
	}
}

// AuthService exposes the auth service for the job scheduler.
func (h HandlerSet) AuthService() *service.AuthService { return h.authService }

// NotificationService exposes the notification service for the job scheduler.
func (h HandlerSet) NotificationService() *service.NotificationService { return h.notifService }

func (h HandlerSet) Register(router *gin.RouterGroup) {
	rl := h.cfg.RateLimit
	if rl.Enabled {
		router.Use(middleware.RateLimit(h.cache, h.log, "global", rl.GlobalLimit, rl.GlobalWindow))
	}

	router.GET("/health", h.Health)

	auth := router.Group("/auth")
	{
		login := auth.Group("")
		if rl.Enabled {
			login.Use(middleware.RateLimit(h.cache, h.log, "login", rl.LoginLimit, rl.LoginWindow))
		}
		login.POST("/login", h.Login)

		auth.POST("/logout", h.auth.Optional(), h.Logout)

		protected := auth.Group("", h.auth.Require())
		protected.GET("/status", h.AuthStatus)
		protected.POST("/change-password", h.ChangePassword)

		users := auth.Group("/users", h.auth.Require(), middleware.RequirePermission(authz.PermManageUsers))
		users.GET("", h.ListUsers)
		users.POST("", h.CreateUser)
		users.PUT("/:id", h.UpdateUser)

		auth.DELETE("/sessions/expired", h.auth.Require(), middleware.RequireRoles(authz.RoleAdministrator), h.PurgeSessions)
	}

	surveys := router.Group("/surveys")
	{
		submit := surveys.Group("")
		if rl.Enabled {
			submit.Use(middleware.RateLimit(h.cache, h.log, "survey", rl.SurveyLimit, rl.SurveyWindow))
		}
		submit.POST("", h.CreateSurvey)

		surveys.POST("/validate", h.ValidateSurvey)

		view := surveys.Group("", h.auth.Require(), middleware.RequirePermission(authz.PermViewSurveys))
		view.GET("", h.ListSurveys)
		view.GET("/total", h.SurveyTotal)
		view.GET("/:id", h.GetSurvey)
		view.POST("/filter", h.FilterSurveys)

		surveys.DELETE("/:id", h.auth.Require(), middleware.RequireRoles(authz.RoleAdministrator), h.DeleteSurvey)
	}

	departments := router.Group("/departments")
	{
		departments.GET("", h.ListDepartments)

		manage := departments.Group("", h.auth.Require(), middleware.RequirePermission(authz.PermManageDepartments))
		manage.POST("", h.CreateDepartment)
		manage.PUT("/:id", h.UpdateDepartment)
	}

	stats := router.Group("/stats", h.auth.Require())
	{
		view := stats.Group("", middleware.RequirePermission(authz.PermViewStatistics))
		view.GET("/dashboard", h.StatsDashboard)
		view.GET("/summary", h.StatsSummary)
		view.GET("/satisfaction", h.StatsSummary)
		view.GET("/departments", h.StatsByDepartment)
		view.GET("/reasons", h.StatsByReason)
		view.GET("/monthly", h.StatsMonthly)
		view.POST("/period", h.StatsPeriod)

		export := stats.Group("", middleware.RequirePermission(authz.PermExportData))
		export.GET("/export", h.Export)
		export.GET("/export/preview", h.ExportPreview)
		export.POST("/export/period", h.ExportPeriod)

		stats.GET("/logs", middleware.RequirePermission(authz.PermViewLogs), h.ActivityLogs)
	}

	notifications := router.Group("/notifications", h.auth.Require())
	{
		notifications.GET("/unread", h.UnreadNotifications)
		notifications.GET("/count", h.NotificationCount)
		notifications.GET("/updates", h.NotificationUpdates)
		notifications.GET("/history", h.NotificationHistory)
		notifications.PUT("/:id/read", h.MarkNotificationRead)
		notifications.PUT("/read-all", h.MarkAllNotificationsRead)
		notifications.POST("", middleware.RequireRoles(authz.RoleAdministrator), h.CreateNotification)
		notifications.DELETE("/cleanup", middleware.RequireRoles(authz.RoleAdministrator), h.CleanupNotifications)
	}

	dashboard := router.Group("/dashboard", h.auth.Require(), middleware.RequirePermission(authz.PermViewStatistics))
	{
		dashboard.GET("/stats", h.StatsDashboard)
		dashboard.GET("/live", h.LiveStats)
	}
}

// RegisterNoRoute installs the catch-all on the engine itself; gin does not
// allow NoRoute on a group.
func (h HandlerSet) RegisterNoRoute(engine *gin.Engine) {
	engine.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "ENDPOINT_NOT_FOUND", "endpoint not found")
	})
}
