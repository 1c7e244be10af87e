package routes

import (
	"civicwatch-backend/handlers/admin"
	"civicwatch-backend/middleware"

	"github.com/gin-gonic/gin"
)

func AdminRoutes(r *gin.Engine) {
	adminRoutes := r.Group("/admin")
	adminRoutes.Use(middleware.AdminAuth())
	{
		adminRoutes.PATCH("/reports/:id/hide", admin.ToggleHideReport)
		adminRoutes.PATCH("/reports/:id/lock-comments", admin.ToggleLockComments)
		adminRoutes.PATCH("/reports/:id/duplicate", admin.MarkDuplicate)
		adminRoutes.PATCH("/users/:id/ban", admin.ToggleBanUser)
		adminRoutes.GET("/flags", admin.GetAllFlags)
		adminRoutes.DELETE("/flags/:id", admin.DismissFlag)
	}
}
