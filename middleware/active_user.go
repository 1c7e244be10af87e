package middleware

import (
	"net/http"

	"civicwatch-backend/db"
	"civicwatch-backend/models"

	"github.com/gin-gonic/gin"
)

// ActiveUser loads the caller's profile once per request and rejects banned
// accounts before the handler runs. Must be chained after JWTAuth. Handlers
// behind it read the row with CurrentUser instead of re-querying.
func ActiveUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
			c.Abort()
			return
		}

		var user models.User
		if err := db.DB.First(&user, "id = ?", userID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User account not found"})
			c.Abort()
			return
		}

		if user.IsBanned {
			c.JSON(http.StatusForbidden, gin.H{"error": "Your account has been suspended"})
			c.Abort()
			return
		}

		c.Set("current_user", user)
		c.Next()
	}
}

// CurrentUser returns the profile stored by ActiveUser.
func CurrentUser(c *gin.Context) (models.User, bool) {
	value, exists := c.Get("current_user")
	if !exists {
		return models.User{}, false
	}
	user, ok := value.(models.User)
	return user, ok
}
