package main

import (
	"civicwatch-backend/db"
	_ "civicwatch-backend/docs"
	"civicwatch-backend/routes"
	"civicwatch-backend/utils"

	"github.com/gin-gonic/gin"
)

// @title CivicWatch API
// @version 1.0
// @description Community civic-issue reporting backend: report lifecycle, closure verification votes and moderation
// @host localhost:8080
// @BasePath /
// @SecurityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter the JWT with the Bearer prefix: Bearer <JWT>
func main() {

	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = utils.GinLogWriter()

	db.InitDB()

	if err := utils.InitCloudinary(); err != nil {
		utils.LogError(err, "Cloudinary initialization failed, photo uploads will not work")
	}

	r := routes.SetupRouter()

	if err := r.Run(":8080"); err != nil {
		utils.LogError(err, "Error starting the server")
		panic(err)
	}
}
