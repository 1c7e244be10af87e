package updates

import (
	"net/http"
	"strings"
	"time"

	"civicwatch-backend/db"
	"civicwatch-backend/middleware"
	"civicwatch-backend/models"
	"civicwatch-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// @Summary Add a comment or update to a report
// @Description Post a timeline entry. Rate limited to one per 20 seconds per author; blocked on comment-locked reports for non-admins.
// @Tags updates
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param update body models.UpdateCreate true "Update content"
// @Security BearerAuth
// @Success 201 {object} models.ReportUpdate
// @Failure 400 {object} map[string]string "error: Invalid input"
// @Failure 403 {object} map[string]string "error: Comments are locked"
// @Failure 404 {object} map[string]string "error: Report not found"
// @Failure 429 {object} map[string]string "error: Rate limited"
// @Router /reports/{id}/updates [post]
func AddUpdate(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}
	reportID := c.Param("id")

	var input models.UpdateCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment content cannot be empty"})
		return
	}

	updateType := models.UpdateTypeComment
	if input.Type == string(models.UpdateTypeUpdate) {
		updateType = models.UpdateTypeUpdate
	}

	var report models.Report
	if err := db.DB.First(&report, "id = ?", reportID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}

	if report.IsHidden && user.Role != models.AdminRole {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}

	if report.CommentsLocked && user.Role != models.AdminRole {
		c.JSON(http.StatusForbidden, gin.H{"error": "Comments are locked on this report"})
		return
	}

	// One comment per 20 seconds per author, across all reports.
	twentySecondsAgo := time.Now().Add(-20 * time.Second)
	var recentCount int64
	if err := db.DB.Model(&models.ReportUpdate{}).
		Where("author_id = ? AND created_at >= ?", user.ID, twentySecondsAgo).
		Count(&recentCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error checking recent comments: " + err.Error()})
		return
	}
	if recentCount > 0 {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "You are posting too quickly. Please wait 20 seconds between comments"})
		return
	}

	update := models.ReportUpdate{
		ReportID: reportID,
		AuthorID: user.ID,
		Type:     updateType,
		Content:  content,
	}

	if err := db.DB.Create(&update).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error adding update: " + err.Error()})
		return
	}

	awardHelperAction(user.ID)

	utils.LogSuccessWithUser(user.ID, "Report update added")
	c.JSON(http.StatusCreated, update)
}

// awardHelperAction bumps the commenter's helper counter. Best-effort.
func awardHelperAction(userID string) {
	if err := db.DB.Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{
			"points":         gorm.Expr("points + ?", 1),
			"helper_actions": gorm.Expr("helper_actions + 1"),
		}).Error; err != nil {
		utils.LogErrorWithUser(userID, err, "Error awarding helper points")
		return
	}

	if err := db.DB.Model(&models.User{}).
		Where("id = ? AND helper_actions >= 10", userID).
		Update("badge_helper", true).Error; err != nil {
		utils.LogErrorWithUser(userID, err, "Error granting helper badge")
	}
}

// @Summary Get a report's timeline
// @Description Retrieve all timeline entries for a report, oldest first
// @Tags updates
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {array} models.ReportUpdate
// @Failure 404 {object} map[string]string "error: Report not found"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /reports/{id}/updates [get]
func GetUpdatesByReportID(c *gin.Context) {
	reportID := c.Param("id")

	var report models.Report
	if err := db.DB.First(&report, "id = ?", reportID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}

	role, _ := c.Get("role")
	if report.IsHidden && role != string(models.AdminRole) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}

	updates := []models.ReportUpdate{}
	if err := db.DB.Where("report_id = ?", reportID).Order("created_at ASC").Find(&updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving updates: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, updates)
}
