package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/BruksfildServices01/salon-scheduler/internal/cache"
	"github.com/BruksfildServices01/salon-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/salon-scheduler/internal/handlers"
	"github.com/BruksfildServices01/salon-scheduler/internal/middleware"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
	usecase "github.com/BruksfildServices01/salon-scheduler/internal/usecase/schedule"
)

// Deps are the singletons the HTTP surface is built from.
type Deps struct {
	Schedules    schedule.Repository
	Appointments schedule.AppointmentSource
	Auditor      usecase.Auditor
	AuditLogs    handlers.AuditReader
	Cache        cache.ScheduleCache
	Validate     *validator.Validate
	Timezones    *timezone.Resolver
	Health       map[string]handlers.Pinger

	JWTSecret      string
	AllowedOrigins []string
}

func RegisterRoutes(r *gin.Engine, d Deps) {

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORSMiddleware(d.AllowedOrigins))

	// ======================================================
	// USE CASES
	// ======================================================
	detector := schedule.NewConflictDetector(d.Schedules, d.Appointments)

	mutations := usecase.NewMutationService(
		d.Schedules,
		detector,
		d.Auditor,
		d.Cache,
		d.Validate,
		d.Timezones,
	)

	queries := usecase.NewQueryService(
		d.Schedules,
		detector,
		d.Cache,
		d.Validate,
		d.Timezones,
	)

	// ======================================================
	// HANDLERS
	// ======================================================
	scheduleHandler := handlers.NewScheduleHandler(mutations, queries)
	auditLogsHandler := handlers.NewAuditLogsHandler(d.AuditLogs)
	healthHandler := handlers.NewHealthHandler(d.Health)

	// ======================================================
	// HEALTH
	// ======================================================
	r.GET("/health", healthHandler.Live)
	r.GET("/health/ready", healthHandler.Ready)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(d.JWTSecret, d.Schedules))
	{
		// ------------------------------
		// STAFF SCHEDULES
		// ------------------------------
		staff := api.Group("/staff/:staffId/schedules")
		{
			staff.POST("", scheduleHandler.Create)
			staff.POST("/bulk", scheduleHandler.BulkCreate)
			staff.GET("", scheduleHandler.ListStaff)
			staff.GET("/conflicts", scheduleHandler.Conflicts)
		}

		// ------------------------------
		// SINGLE TEMPLATE
		// ------------------------------
		api.PATCH("/schedules/:id", scheduleHandler.Update)
		api.PATCH("/schedules/:id/active", scheduleHandler.SetActive)
		api.DELETE("/schedules/:id", scheduleHandler.Delete)

		// ------------------------------
		// SALON
		// ------------------------------
		api.GET("/salons/:salonId/schedules", scheduleHandler.ListSalon)
		api.GET("/salons/:salonId/audit-logs", auditLogsHandler.List)
	}
}
