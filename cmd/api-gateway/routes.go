package main

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/study-planner/internal/handler"
	internalmiddleware "github.com/noah-isme/study-planner/internal/middleware"
	"github.com/noah-isme/study-planner/internal/models"
)

// registerPlanRoutes mounts the plan endpoints. A nil token validator leaves
// every route public; otherwise stored plans and admin routes need a bearer
// token. Simulation and preview exports stay public either way.
func registerPlanRoutes(r *gin.Engine, prefix string, h *handler.PlanHandler, tokens internalmiddleware.TokenValidator) {
	// Flat result body, as returned by the original single-endpoint API.
	r.POST("/simulate", h.SimulateFlat)

	api := r.Group(prefix)
	api.POST("/plans/simulate", h.Simulate)
	api.GET("/previews/:id/export", h.ExportPreview)

	stored := api.Group("")
	admin := api.Group("")
	if tokens != nil {
		stored.Use(internalmiddleware.JWT(tokens), internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleAdvisor, models.RoleStudent))
		admin.Use(internalmiddleware.JWT(tokens), internalmiddleware.RequireRoles(models.RoleAdmin))
	}
	stored.POST("/plans", h.Save)
	stored.GET("/plans/:id", h.Get)
	stored.GET("/plans/:id/export", h.Export)
	stored.DELETE("/plans/:id", h.Delete)
	if tokens != nil {
		stored.GET("/students/:id/plans",
			internalmiddleware.RBAC(string(models.RoleAdmin), string(models.RoleAdvisor), internalmiddleware.Self),
			h.ListByStudent)
	} else {
		stored.GET("/students/:id/plans", h.ListByStudent)
	}

	admin.DELETE("/cache/plans", h.FlushCache)
}
