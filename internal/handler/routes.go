package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ncc-attendance-api/internal/middleware"
	"github.com/noah-isme/ncc-attendance-api/internal/service"
)

// Handlers bundles every HTTP handler for route registration.
type Handlers struct {
	Auth       *AuthHandler
	Students   *StudentHandler
	Parades    *ParadeHandler
	Attendance *AttendanceHandler
	Reports    *ReportHandler
	Email      *EmailHandler
	Metrics    *MetricsHandler
}

// RegisterRoutes wires every endpoint under the given prefix. Read endpoints
// need any authorized tier, writes need admin, hard deletes need super admin.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, auth *service.AuthService) {
	api := r.Group(prefix)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/register", h.Auth.Register)
		authGroup.GET("/me", middleware.RequireAuth(auth), h.Auth.Me)
	}

	students := api.Group("/students", middleware.RequireAuth(auth))
	{
		students.GET("", h.Students.List)
		students.GET("/filters/branches", h.Students.Branches)
		students.GET("/:id", h.Students.Get)
		students.POST("", middleware.RequireModify(), h.Students.Create)
		students.POST("/import", middleware.RequireModify(), h.Students.Import)
		students.PUT("/:id", middleware.RequireModify(), h.Students.Update)
		students.DELETE("/:id", middleware.RequireModify(), h.Students.Delete)
	}

	parades := api.Group("/parades", middleware.RequireAuth(auth))
	{
		parades.GET("", h.Parades.List)
		parades.GET("/:id", h.Parades.Get)
		parades.POST("", middleware.RequireModify(), h.Parades.Create)
		parades.PUT("/:id", middleware.RequireModify(), h.Parades.Update)
		parades.PATCH("/:id/status", middleware.RequireModify(), h.Parades.UpdateStatus)
		parades.DELETE("/:id", middleware.RequireSuperAdmin(), h.Parades.Delete)
	}

	attendance := api.Group("/attendance", middleware.RequireAuth(auth))
	{
		attendance.POST("", middleware.RequireModify(), h.Attendance.Mark)
		attendance.POST("/batch", middleware.RequireModify(), h.Attendance.MarkBatch)
		attendance.PUT("/:id", middleware.RequireModify(), h.Attendance.Update)
		attendance.DELETE("/:id", middleware.RequireSuperAdmin(), h.Attendance.Delete)
		attendance.GET("/parade/:id", h.Attendance.ListByParade)
		attendance.GET("/student/:id", h.Attendance.ListByStudent)
	}

	reports := api.Group("/reports", middleware.RequireAuth(auth))
	{
		reports.GET("/branch/:branch", h.Reports.Branch)
		reports.GET("/branch/:branch/export", h.Reports.ExportBranch)
		reports.GET("/daily", h.Reports.Daily)
		reports.GET("/matrix", h.Reports.Matrix)
		reports.GET("/parade/:id", h.Reports.ParadeStats)
		reports.GET("/student/:id", h.Reports.StudentStats)
		reports.GET("/dashboard", h.Reports.Dashboard)
	}

	email := api.Group("/email", middleware.RequireAuth(auth), middleware.RequireModify())
	{
		email.GET("/branches", h.Email.Branches)
		email.POST("/weekly/:branch", h.Email.SendWeekly)
		email.POST("/weekly-all", h.Email.SendWeeklyAll)
		email.POST("/daily-parade", h.Email.SendDaily)
		email.POST("/test", h.Email.SendTest)
	}

	r.GET("/metrics", h.Metrics.Scrape)
}
