package flags

import (
	"errors"
	"net/http"
	"strings"

	"civicwatch-backend/db"
	"civicwatch-backend/middleware"
	"civicwatch-backend/models"
	"civicwatch-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// @Summary Flag a report, update or profile
// @Description Raise an abuse signal against a target. A user may flag a given target only once.
// @Tags flags
// @Accept json
// @Produce json
// @Param flag body models.FlagCreate true "Flag information"
// @Security BearerAuth
// @Success 201 {object} models.Flag
// @Failure 400 {object} map[string]string "error: Invalid input"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 409 {object} map[string]string "error: Already flagged"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /flags [post]
func CreateFlag(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var input models.FlagCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	targetType := models.FlagTargetType(input.TargetType)
	if !models.IsValidFlagTarget(targetType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown target type"})
		return
	}

	var existing models.Flag
	err := db.DB.Where("reporter_id = ? AND target_type = ? AND target_id = ?",
		user.ID, targetType, input.TargetID).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "You have already flagged this item"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error checking existing flags: " + err.Error()})
		return
	}

	flag := models.Flag{
		TargetType: targetType,
		TargetID:   input.TargetID,
		ReporterID: user.ID,
		Reason:     strings.TrimSpace(input.Reason),
	}

	if err := db.DB.Create(&flag).Error; err != nil {
		// The unique index catches the duplicate that slipped past the
		// pre-check in a race.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "You have already flagged this item"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating flag: " + err.Error()})
		return
	}

	utils.LogSuccessWithUser(user.ID, "Flag created")
	c.JSON(http.StatusCreated, flag)
}
