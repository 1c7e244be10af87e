package routes

import (
	"civicwatch-backend/handlers/flags"
	"civicwatch-backend/middleware"

	"github.com/gin-gonic/gin"
)

func FlagsRoutes(r *gin.Engine) {
	flagsRoutes := r.Group("/flags")
	flagsRoutes.Use(middleware.JWTAuth(), middleware.ActiveUser())
	{
		flagsRoutes.POST("", flags.CreateFlag)
	}
}
