package follows

import (
	"net/http"

	"civicwatch-backend/db"
	"civicwatch-backend/models"

	"github.com/gin-gonic/gin"
)

// @Summary Toggle following a report
// @Description Follow or unfollow a report to receive notifications on its lifecycle events
// @Tags reports
// @Produce json
// @Param id path string true "Report ID"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "message, following"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 404 {object} map[string]string "error: Report not found"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /reports/{id}/follow [post]
func ToggleFollow(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	reportID := c.Param("id")

	var report models.Report
	if err := db.DB.First(&report, "id = ?", reportID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}

	var follow models.ReportFollow
	result := db.DB.Where("report_id = ? AND user_id = ?", reportID, userID).First(&follow)

	if result.Error == nil {
		if err := db.DB.Where("report_id = ? AND user_id = ?", reportID, userID).
			Delete(&models.ReportFollow{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error unfollowing report: " + err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Report unfollowed successfully", "following": false})
		return
	}

	follow = models.ReportFollow{
		ReportID: reportID,
		UserID:   userID.(string),
	}

	if err := db.DB.Create(&follow).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error following report: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Report followed successfully", "following": true})
}
