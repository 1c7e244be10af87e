package admin

import (
	"net/http"

	"civicwatch-backend/db"
	"civicwatch-backend/models"
	"civicwatch-backend/utils"

	"github.com/gin-gonic/gin"
)

// All handlers in this package sit behind middleware.AdminAuth.

// @Summary Toggle report visibility
// @Description Hide or unhide a report. Hidden reports are excluded from feeds and return 404 for non-admins.
// @Tags admin
// @Produce json
// @Param id path string true "Report ID"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "message, isHidden"
// @Failure 404 {object} map[string]string "error: Report not found"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /admin/reports/{id}/hide [patch]
func ToggleHideReport(c *gin.Context) {
	var report models.Report
	if err := db.DB.First(&report, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}

	newValue := !report.IsHidden
	if err := db.DB.Model(&models.Report{}).Where("id = ?", report.ID).
		Update("is_hidden", newValue).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating report: " + err.Error()})
		return
	}

	utils.LogSuccessWithUser(c.GetString("user_id"), "Report visibility toggled")
	c.JSON(http.StatusOK, gin.H{"message": "Report visibility updated", "isHidden": newValue})
}

// @Summary Toggle comment lock on a report
// @Description Lock or unlock comments. While locked, only admins can post timeline entries.
// @Tags admin
// @Produce json
// @Param id path string true "Report ID"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "message, commentsLocked"
// @Failure 404 {object} map[string]string "error: Report not found"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /admin/reports/{id}/lock-comments [patch]
func ToggleLockComments(c *gin.Context) {
	var report models.Report
	if err := db.DB.First(&report, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}

	newValue := !report.CommentsLocked
	if err := db.DB.Model(&models.Report{}).Where("id = ?", report.ID).
		Update("comments_locked", newValue).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating report: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment lock updated", "commentsLocked": newValue})
}

// @Summary Toggle a user ban
// @Description Ban or unban a user. Banned users cannot create reports, comment, flag or vote. Admins cannot ban themselves.
// @Tags admin
// @Produce json
// @Param id path string true "User ID"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "message, isBanned"
// @Failure 403 {object} map[string]string "error: You cannot ban yourself"
// @Failure 404 {object} map[string]string "error: User not found"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /admin/users/{id}/ban [patch]
func ToggleBanUser(c *gin.Context) {
	adminID, _ := c.Get("user_id")
	targetID := c.Param("id")

	if adminID == targetID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot ban yourself"})
		return
	}

	var user models.User
	if err := db.DB.First(&user, "id = ?", targetID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	newValue := !user.IsBanned
	if err := db.DB.Model(&models.User{}).Where("id = ?", user.ID).
		Update("is_banned", newValue).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating user: " + err.Error()})
		return
	}

	utils.LogSuccessWithUser(adminID, "User ban toggled")
	c.JSON(http.StatusOK, gin.H{"message": "User ban updated", "isBanned": newValue})
}

type markDuplicateInput struct {
	DuplicateOfID string `json:"duplicateOfId" binding:"required"`
}

// @Summary Mark a report as a duplicate
// @Description Point a report at the one it duplicates. Self-references and chains (duplicating a report that is itself a duplicate) are rejected.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param duplicate body markDuplicateInput true "Target report"
// @Security BearerAuth
// @Success 200 {object} map[string]string "message: Report marked as duplicate"
// @Failure 400 {object} map[string]string "error: Invalid input"
// @Failure 403 {object} map[string]string "error: Self duplicate"
// @Failure 404 {object} map[string]string "error: Report not found"
// @Failure 409 {object} map[string]string "error: Target is itself a duplicate"
// @Router /admin/reports/{id}/duplicate [patch]
func MarkDuplicate(c *gin.Context) {
	reportID := c.Param("id")

	var input markDuplicateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	if reportID == input.DuplicateOfID {
		c.JSON(http.StatusForbidden, gin.H{"error": "A report cannot be a duplicate of itself"})
		return
	}

	var report models.Report
	if err := db.DB.First(&report, "id = ?", reportID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}

	var target models.Report
	if err := db.DB.First(&target, "id = ?", input.DuplicateOfID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Target duplicate report not found"})
		return
	}

	// Keep duplicate_of a flat pointer: no chains in either direction.
	if target.DuplicateOf != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Target report is itself marked as a duplicate"})
		return
	}

	var pointingHere int64
	if err := db.DB.Model(&models.Report{}).Where("duplicate_of = ?", reportID).Count(&pointingHere).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error checking duplicates: " + err.Error()})
		return
	}
	if pointingHere > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Other reports already point to this report as their duplicate"})
		return
	}

	if err := db.DB.Model(&models.Report{}).Where("id = ?", reportID).
		Update("duplicate_of", input.DuplicateOfID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error marking duplicate: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Report marked as duplicate"})
}

// @Summary List open flags
// @Description Retrieve the moderation queue, newest first
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Flag
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /admin/flags [get]
func GetAllFlags(c *gin.Context) {
	flags := []models.Flag{}
	if err := db.DB.Order("created_at DESC").Find(&flags).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving flags: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, flags)
}

// @Summary Dismiss a flag
// @Description Delete a flag from the moderation queue. Dismissing an already-dismissed flag returns 404.
// @Tags admin
// @Produce json
// @Param id path string true "Flag ID"
// @Security BearerAuth
// @Success 200 {object} map[string]string "message: Flag dismissed"
// @Failure 404 {object} map[string]string "error: Flag not found"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /admin/flags/{id} [delete]
func DismissFlag(c *gin.Context) {
	result := db.DB.Where("id = ?", c.Param("id")).Delete(&models.Flag{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error dismissing flag: " + result.Error.Error()})
		return
	}

	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Flag not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Flag dismissed"})
}
