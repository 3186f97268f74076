package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/meetwise-team/meeting-insights/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg            *config.Config
	meetingHandler *Meeting
	jobHandler     *Job
	reportHandler  *Report
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, meetingHandler *Meeting, jobHandler *Job, reportHandler *Report) *Router {
	return &Router{
		cfg:            cfg,
		meetingHandler: meetingHandler,
		jobHandler:     jobHandler,
		reportHandler:  reportHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// API v1 group
	v1 := e.Group("/v1")

	rt.setupMeetingRoutes(v1)
	rt.setupJobRoutes(v1)
	rt.setupSearchRoutes(v1)
}

// setupMeetingRoutes configures meeting lifecycle routes
func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	meetings := g.Group("/meetings")

	meetings.POST("", rt.meetingHandler.Create)
	meetings.GET("", rt.meetingHandler.List)
	meetings.GET("/:id", rt.meetingHandler.Get)
	meetings.DELETE("/:id", rt.meetingHandler.Delete)

	meetings.POST("/:id/files", rt.meetingHandler.Upload)
	meetings.GET("/:id/files", rt.meetingHandler.Files)
	meetings.GET("/:id/transcript", rt.meetingHandler.Transcript)
	meetings.GET("/:id/insights", rt.meetingHandler.Insights)
	meetings.GET("/:id/report.xlsx", rt.reportHandler.ExportXLSX)

	meetings.POST("/:id/process", rt.jobHandler.Process)
	meetings.GET("/:id/jobs", rt.jobHandler.ListByMeeting)
	meetings.POST("/reprocess_all", rt.jobHandler.ReprocessAll)

	g.GET("/files/:id/download", rt.meetingHandler.Download)
}

// setupJobRoutes configures job tracking routes
func (rt *Router) setupJobRoutes(g *echo.Group) {
	g.GET("/jobs/:id", rt.jobHandler.Status)
}

// setupSearchRoutes configures semantic search routes
func (rt *Router) setupSearchRoutes(g *echo.Group) {
	g.GET("/search", rt.meetingHandler.Search)
	g.POST("/search", rt.meetingHandler.Search)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
