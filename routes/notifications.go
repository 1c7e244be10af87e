package routes

import (
	"civicwatch-backend/handlers/notifications"
	"civicwatch-backend/middleware"

	"github.com/gin-gonic/gin"
)

func NotificationsRoutes(r *gin.Engine) {
	notifRoutes := r.Group("/notifications")
	notifRoutes.Use(middleware.JWTAuth())
	{
		notifRoutes.GET("", notifications.GetMyNotifications)
		notifRoutes.GET("/unread-count", notifications.GetUnreadCount)
		notifRoutes.PATCH("/read-all", notifications.MarkAllRead)
		notifRoutes.PATCH("/:id/read", notifications.MarkRead)
	}
}
