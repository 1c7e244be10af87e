package notifications

import (
	"net/http"
	"time"

	"civicwatch-backend/db"
	"civicwatch-backend/models"
	"civicwatch-backend/utils"

	"github.com/gin-gonic/gin"
)

// NotifyFollowers enqueues a notification row for every follower of a report
// except the actor. Best-effort: failures are logged and never surfaced, a
// lost notification must not roll back the lifecycle write that caused it.
func NotifyFollowers(reportID string, actorID string, notifType string, title string, body string) {
	var follows []models.ReportFollow
	if err := db.DB.Where("report_id = ? AND user_id <> ?", reportID, actorID).Find(&follows).Error; err != nil {
		utils.LogError(err, "Error loading followers for notification")
		return
	}

	if len(follows) == 0 {
		return
	}

	notifs := make([]models.Notification, 0, len(follows))
	for _, follow := range follows {
		id := reportID
		notifs = append(notifs, models.Notification{
			UserID:   follow.UserID,
			ReportID: &id,
			Type:     notifType,
			Title:    title,
			Body:     body,
		})
	}

	if err := db.DB.Create(&notifs).Error; err != nil {
		utils.LogError(err, "Error inserting notifications")
	}
}

// @Summary List my notifications
// @Description Retrieve the authenticated user's notifications, newest first
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Notification
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /notifications [get]
func GetMyNotifications(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var notifs []models.Notification
	if err := db.DB.Where("user_id = ?", userID).Order("created_at DESC").Limit(50).Find(&notifs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving notifications: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, notifs)
}

// @Summary Count unread notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]int64 "count: unread notifications"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /notifications/unread-count [get]
func GetUnreadCount(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var count int64
	if err := db.DB.Model(&models.Notification{}).Where("user_id = ? AND read_at IS NULL", userID).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error counting notifications: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// @Summary Mark a notification as read
// @Tags notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Security BearerAuth
// @Success 200 {object} map[string]string "message: Notification marked as read"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 404 {object} map[string]string "error: Notification not found"
// @Router /notifications/{id}/read [patch]
func MarkRead(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	now := time.Now()
	result := db.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", c.Param("id"), userID).
		Update("read_at", &now)

	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating notification: " + result.Error.Error()})
		return
	}

	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// @Summary Mark all notifications as read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string "message: All notifications marked as read"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Router /notifications/read-all [patch]
func MarkAllRead(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	now := time.Now()
	if err := db.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", &now).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating notifications: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}
