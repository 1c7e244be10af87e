package routes

import (
	"civicwatch-backend/handlers/reports"
	"civicwatch-backend/handlers/reports/follows"
	"civicwatch-backend/handlers/reports/updates"
	"civicwatch-backend/handlers/reports/votes"
	"civicwatch-backend/middleware"

	"github.com/gin-gonic/gin"
)

func ReportsRoutes(r *gin.Engine) {
	// Public reads. OptionalJWT lets admins see hidden reports.
	r.GET("/reports", middleware.OptionalJWT(), reports.GetAllReports)
	r.GET("/reports/duplicates", reports.SearchDuplicates)
	r.GET("/reports/:id", middleware.OptionalJWT(), reports.GetReportByID)
	r.GET("/reports/:id/updates", middleware.OptionalJWT(), updates.GetUpdatesByReportID)

	authed := r.Group("/reports")
	authed.Use(middleware.JWTAuth())
	{
		authed.PUT("/:id", reports.UpdateReport)
		authed.PATCH("/:id/status", reports.ChangeStatus)
		authed.POST("/:id/close", reports.CloseReport)
		authed.POST("/:id/follow", follows.ToggleFollow)
	}

	// Writes gated on an active (non-banned) account.
	gated := r.Group("/reports")
	gated.Use(middleware.JWTAuth(), middleware.ActiveUser())
	{
		gated.POST("", reports.CreateReport)
		gated.POST("/:id/updates", updates.AddUpdate)
		gated.POST("/:id/vote", votes.VoteClosure)
	}
}
