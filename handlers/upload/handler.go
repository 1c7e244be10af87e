package upload

import (
	"net/http"

	"civicwatch-backend/utils"

	"github.com/gin-gonic/gin"
)

// @Summary Upload a photo
// @Description Upload a report or closure photo and receive its URL. The report endpoints only ever store this URL.
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Param photo formData file true "Photo (JPG, PNG or WEBP, max 5MB)"
// @Param folder formData string false "Target folder: report_photos (default) or closure_photos"
// @Security BearerAuth
// @Success 201 {object} map[string]string "url: photo URL"
// @Failure 400 {object} map[string]string "error: Invalid file"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 500 {object} map[string]string "error: Upload failed"
// @Router /upload/photo [post]
func UploadPhoto(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Photo is required"})
		return
	}

	folder := c.Request.FormValue("folder")
	if folder != "closure_photos" {
		folder = "report_photos"
	}

	url, err := utils.UploadReportPhoto(file, folder)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error uploading photo: " + err.Error()})
		return
	}

	utils.LogSuccessWithUser(userID, "Photo uploaded")
	c.JSON(http.StatusCreated, gin.H{"url": url})
}
