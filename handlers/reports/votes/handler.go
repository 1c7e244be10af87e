package votes

import (
	"errors"
	"net/http"
	"time"

	"civicwatch-backend/db"
	"civicwatch-backend/handlers/notifications"
	"civicwatch-backend/middleware"
	"civicwatch-backend/models"
	"civicwatch-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	errReportNotFound   = errors.New("report not found")
	errNotClosed        = errors.New("report not closed")
	errAlreadyConfirmed = errors.New("closure already confirmed")
	errSelfVote         = errors.New("self vote")
	errAlreadyVoted     = errors.New("already voted")
)

// VoteClosure registers a community vote on a closed report and applies the
// confirm/reopen decision at write time. The whole read-modify-write runs in
// one transaction, and the decision itself is a conditional update keyed on
// closure_confirmed, so two racing voters cannot both apply the transition.
//
// Decision rule: at least 2 confirmed-fixed votes and a strict majority
// confirms the closure; at least 2 not-fixed votes and a strict majority
// reopens the report to IN_PROGRESS, clearing the closure metadata.
//
// @Summary Vote on a report closure
// @Description Confirm or dispute a closure. Only on closed, unconfirmed reports; the closer cannot vote; one vote per user.
// @Tags votes
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param vote body models.VoteCreate true "true = confirmed fixed, false = not fixed"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "message, closureConfirmed, reopened"
// @Failure 400 {object} map[string]string "error: Invalid input"
// @Failure 403 {object} map[string]string "error: Forbidden"
// @Failure 404 {object} map[string]string "error: Report not found"
// @Failure 409 {object} map[string]string "error: Conflict"
// @Router /reports/{id}/vote [post]
func VoteClosure(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}
	reportID := c.Param("id")

	var input models.VoteCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	confirmed := false
	reopened := false
	var closedBy string

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var report models.Report
		if err := tx.First(&report, "id = ?", reportID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errReportNotFound
			}
			return err
		}

		if report.Status != models.StatusClosed {
			return errNotClosed
		}
		if report.ClosureConfirmed {
			return errAlreadyConfirmed
		}
		if report.ClosedBy != nil && *report.ClosedBy == user.ID {
			return errSelfVote
		}
		if report.ClosedBy != nil {
			closedBy = *report.ClosedBy
		}

		var existing models.ClosureVote
		if err := tx.Where("report_id = ? AND voter_id = ?", reportID, user.ID).First(&existing).Error; err == nil {
			return errAlreadyVoted
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		vote := models.ClosureVote{
			ReportID: reportID,
			VoterID:  user.ID,
			Vote:     *input.Vote,
		}
		if err := tx.Create(&vote).Error; err != nil {
			// The composite primary key catches the voter that lost a race
			// with its own duplicate submission.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errAlreadyVoted
			}
			return err
		}

		var trueCount, falseCount int64
		if err := tx.Model(&models.ClosureVote{}).Where("report_id = ? AND vote = ?", reportID, true).Count(&trueCount).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ClosureVote{}).Where("report_id = ? AND vote = ?", reportID, false).Count(&falseCount).Error; err != nil {
			return err
		}

		switch {
		case trueCount >= 2 && trueCount > falseCount:
			now := time.Now()
			result := tx.Model(&models.Report{}).
				Where("id = ? AND status = ? AND closure_confirmed = ?", reportID, models.StatusClosed, false).
				Updates(map[string]interface{}{
					"closure_confirmed":    true,
					"closure_confirmed_at": &now,
				})
			if result.Error != nil {
				return result.Error
			}
			confirmed = result.RowsAffected == 1

		case falseCount >= 2 && falseCount > trueCount:
			inProgress := models.StatusInProgress
			result := tx.Model(&models.Report{}).
				Where("id = ? AND status = ? AND closure_confirmed = ?", reportID, models.StatusClosed, false).
				Updates(map[string]interface{}{
					"status":            models.StatusInProgress,
					"closed_by":         nil,
					"closure_note":      "",
					"closure_photo_url": "",
				})
			if result.Error != nil {
				return result.Error
			}
			reopened = result.RowsAffected == 1

			if reopened {
				entry := models.ReportUpdate{
					ReportID:  reportID,
					AuthorID:  user.ID,
					Type:      models.UpdateTypeStatusChange,
					Content:   "Community review found the issue not fixed. Report reopened.",
					NewStatus: &inProgress,
				}
				if err := tx.Create(&entry).Error; err != nil {
					return err
				}
			}
		}
		// Tie or below threshold: the report stays CLOSED pending more votes.

		return nil
	})

	switch {
	case err == nil:
	case errors.Is(err, errReportNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	case errors.Is(err, errNotClosed):
		c.JSON(http.StatusConflict, gin.H{"error": "You can only vote on closed reports"})
		return
	case errors.Is(err, errAlreadyConfirmed):
		c.JSON(http.StatusConflict, gin.H{"error": "This closure has already been confirmed"})
		return
	case errors.Is(err, errSelfVote):
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot vote on your own closure"})
		return
	case errors.Is(err, errAlreadyVoted):
		c.JSON(http.StatusConflict, gin.H{"error": "You have already voted on this closure"})
		return
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error registering vote: " + err.Error()})
		return
	}

	// Side effects run only for the caller whose conditional update matched.
	if confirmed {
		awardResolver(closedBy)
		notifications.NotifyFollowers(reportID, user.ID, "closure_confirmed",
			"Closure confirmed", "The community confirmed this issue as fixed.")
	}
	if reopened {
		notifications.NotifyFollowers(reportID, user.ID, "reopened",
			"Report reopened", "The community found this issue not fixed. The report is back in progress.")
	}

	utils.LogSuccessWithUser(user.ID, "Closure vote registered")
	c.JSON(http.StatusOK, gin.H{
		"message":          "Vote registered successfully",
		"closureConfirmed": confirmed,
		"reopened":         reopened,
	})
}

// awardResolver credits the closer once the community confirms the closure.
// Best-effort: counter failures never undo the confirmation.
func awardResolver(closedBy string) {
	if closedBy == "" {
		return
	}

	if err := db.DB.Model(&models.User{}).Where("id = ?", closedBy).
		Updates(map[string]interface{}{
			"points":             gorm.Expr("points + ?", 15),
			"resolver_confirmed": gorm.Expr("resolver_confirmed + 1"),
		}).Error; err != nil {
		utils.LogErrorWithUser(closedBy, err, "Error awarding resolver points")
		return
	}

	if err := db.DB.Model(&models.User{}).
		Where("id = ? AND resolver_confirmed >= 3", closedBy).
		Update("badge_resolver", true).Error; err != nil {
		utils.LogErrorWithUser(closedBy, err, "Error granting resolver badge")
	}
}
