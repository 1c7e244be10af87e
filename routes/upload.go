package routes

import (
	"civicwatch-backend/handlers/upload"
	"civicwatch-backend/middleware"

	"github.com/gin-gonic/gin"
)

func UploadRoutes(r *gin.Engine) {
	r.POST("/upload/photo", middleware.JWTAuth(), middleware.ActiveUser(), upload.UploadPhoto)
}
