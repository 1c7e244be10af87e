package routes

import (
	"civicwatch-backend/handlers/users"
	"civicwatch-backend/middleware"

	"github.com/gin-gonic/gin"
)

func UsersRoutes(r *gin.Engine) {
	r.GET("/users/:id", users.GetUserProfile)
	r.GET("/me", middleware.JWTAuth(), users.GetMe)
}
