package users

import (
	"net/http"

	"civicwatch-backend/db"
	"civicwatch-backend/models"

	"github.com/gin-gonic/gin"
)

// publicProfile strips account fields from a profile before exposing it.
type publicProfile struct {
	ID                string      `json:"id"`
	DisplayName       string      `json:"displayName"`
	AvatarURL         string      `json:"avatarUrl"`
	Role              models.Role `json:"role"`
	IsBanned          bool        `json:"isBanned"`
	Points            int         `json:"points"`
	BadgeFirstReport  bool        `json:"badgeFirstReport"`
	BadgeHelper       bool        `json:"badgeHelper"`
	BadgeResolver     bool        `json:"badgeResolver"`
	ReportsCount      int64       `json:"reportsCount"`
	ResolverConfirmed int         `json:"resolverConfirmed"`
}

// @Summary Get a public profile
// @Description Retrieve a user's public profile with gamification counters
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} publicProfile
// @Failure 404 {object} map[string]string "error: User not found"
// @Router /users/{id} [get]
func GetUserProfile(c *gin.Context) {
	var user models.User
	if err := db.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var reportsCount int64
	db.DB.Model(&models.Report{}).Where("creator_id = ?", user.ID).Count(&reportsCount)

	c.JSON(http.StatusOK, publicProfile{
		ID:                user.ID,
		DisplayName:       user.DisplayName,
		AvatarURL:         user.AvatarURL,
		Role:              user.Role,
		IsBanned:          user.IsBanned,
		Points:            user.Points,
		BadgeFirstReport:  user.BadgeFirstReport,
		BadgeHelper:       user.BadgeHelper,
		BadgeResolver:     user.BadgeResolver,
		ReportsCount:      reportsCount,
		ResolverConfirmed: user.ResolverConfirmed,
	})
}

// @Summary Get my profile
// @Description Retrieve the authenticated user's full profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 404 {object} map[string]string "error: User not found"
// @Router /me [get]
func GetMe(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var user models.User
	if err := db.DB.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}
