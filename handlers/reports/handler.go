package reports

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"civicwatch-backend/db"
	"civicwatch-backend/handlers/notifications"
	"civicwatch-backend/middleware"
	"civicwatch-backend/models"
	"civicwatch-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	errReportNotFound    = errors.New("report not found")
	errForbidden         = errors.New("forbidden")
	errInvalidTransition = errors.New("invalid transition")
)

// ReportDetail is the response shape of GetReportByID: the report plus its
// timeline and the read-time aggregates the detail page needs.
type ReportDetail struct {
	models.Report
	Updates           []models.ReportUpdate `json:"updates"`
	FollowsCount      int64                 `json:"followsCount"`
	IsFollowing       bool                  `json:"isFollowing"`
	ClosureVotesTrue  int64                 `json:"closureVotesTrue"`
	ClosureVotesFalse int64                 `json:"closureVotesFalse"`
	UserVote          *bool                 `json:"userVote"`
	FlagsCount        int64                 `json:"flagsCount"`
}

// @Summary Create a new report
// @Description Submit a new civic issue report. Rate limited to one report per 2 minutes per user.
// @Tags reports
// @Accept json
// @Produce json
// @Param report body models.ReportCreate true "Report information"
// @Security BearerAuth
// @Success 201 {object} models.Report
// @Failure 400 {object} map[string]string "error: Invalid input"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 429 {object} map[string]string "error: Rate limited"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /reports [post]
func CreateReport(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var input models.ReportCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	title := strings.TrimSpace(input.Title)
	if n := utf8.RuneCountInString(title); n < 3 || n > 200 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title must be between 3 and 200 characters"})
		return
	}

	description := strings.TrimSpace(input.Description)
	if description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Description cannot be empty"})
		return
	}

	if !models.IsValidCategory(input.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category"})
		return
	}

	// One report per rolling 2 minutes per creator. Best-effort throttle:
	// a pair of near-simultaneous requests can both pass the check.
	twoMinutesAgo := time.Now().Add(-2 * time.Minute)
	var recentCount int64
	if err := db.DB.Model(&models.Report{}).
		Where("creator_id = ? AND created_at >= ?", user.ID, twoMinutesAgo).
		Count(&recentCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error checking recent reports: " + err.Error()})
		return
	}
	if recentCount > 0 {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "You are creating reports too quickly. Please wait 2 minutes before submitting again"})
		return
	}

	report := models.Report{
		CreatorID:       user.ID,
		Title:           title,
		Description:     description,
		Category:        input.Category,
		Status:          models.StatusOpen,
		LocationLat:     input.LocationLat,
		LocationLng:     input.LocationLng,
		LocationIsExact: input.LocationIsExact,
		LocationLabel:   strings.TrimSpace(input.LocationLabel),
		PhotoURL:        strings.TrimSpace(input.PhotoURL),
	}

	if err := db.DB.Create(&report).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating report: " + err.Error()})
		return
	}

	awardCreationPoints(user.ID)

	utils.LogSuccessWithUser(user.ID, "Report created")
	c.JSON(http.StatusCreated, report)
}

// awardCreationPoints updates the creator's gamification counters.
// Best-effort: a failed counter update never fails the report creation.
func awardCreationPoints(userID string) {
	if err := db.DB.Model(&models.User{}).Where("id = ?", userID).
		Update("points", gorm.Expr("points + ?", 5)).Error; err != nil {
		utils.LogErrorWithUser(userID, err, "Error awarding creation points")
		return
	}

	var reportCount int64
	if err := db.DB.Model(&models.Report{}).Where("creator_id = ?", userID).Count(&reportCount).Error; err != nil {
		utils.LogErrorWithUser(userID, err, "Error counting user reports")
		return
	}
	if reportCount == 1 {
		if err := db.DB.Model(&models.User{}).Where("id = ?", userID).
			Update("badge_first_report", true).Error; err != nil {
			utils.LogErrorWithUser(userID, err, "Error granting first report badge")
		}
	}
}

// @Summary List reports
// @Description Browse the community feed. Hidden reports are excluded for non-admins, duplicate-marked reports always.
// @Tags reports
// @Produce json
// @Param q query string false "Search in titles"
// @Param category query string false "Filter by category"
// @Param status query string false "Filter by status"
// @Param sort query string false "Sort by 'created' (default) or 'updated'"
// @Success 200 {array} models.Report
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /reports [get]
func GetAllReports(c *gin.Context) {
	var reports []models.Report
	query := db.DB.Model(&models.Report{}).Where("duplicate_of IS NULL")

	if role, _ := c.Get("role"); role != string(models.AdminRole) {
		query = query.Where("is_hidden = ?", false)
	}

	if q := strings.TrimSpace(c.Query("q")); q != "" {
		query = query.Where("title ILIKE ?", "%"+q+"%")
	}

	if category := c.Query("category"); category != "" && category != "all" {
		query = query.Where("category = ?", category)
	}

	if status := c.Query("status"); status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}

	sortField := "created_at"
	if c.Query("sort") == "updated" {
		sortField = "updated_at"
	}

	if err := query.Order(sortField + " DESC").Limit(50).Find(&reports).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving reports: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, reports)
}

// @Summary Get a report by ID
// @Description Retrieve a report with its timeline, vote tallies and counters. Hidden reports return 404 for non-admins.
// @Tags reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} ReportDetail
// @Failure 404 {object} map[string]string "error: Report not found"
// @Failure 500 {object} map[string]string "error: Error message"
// @Router /reports/{id} [get]
func GetReportByID(c *gin.Context) {
	reportID := c.Param("id")

	var report models.Report
	if err := db.DB.First(&report, "id = ?", reportID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}

	role, _ := c.Get("role")
	if report.IsHidden && role != string(models.AdminRole) {
		// Hidden reports do not exist for non-admin readers.
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}

	detail := ReportDetail{Report: report, Updates: []models.ReportUpdate{}}

	if err := db.DB.Where("report_id = ?", reportID).Order("created_at ASC").Find(&detail.Updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving timeline: " + err.Error()})
		return
	}

	db.DB.Model(&models.ReportFollow{}).Where("report_id = ?", reportID).Count(&detail.FollowsCount)
	db.DB.Model(&models.ClosureVote{}).Where("report_id = ? AND vote = ?", reportID, true).Count(&detail.ClosureVotesTrue)
	db.DB.Model(&models.ClosureVote{}).Where("report_id = ? AND vote = ?", reportID, false).Count(&detail.ClosureVotesFalse)
	db.DB.Model(&models.Flag{}).Where("target_type = ? AND target_id = ?", models.FlagTargetReport, reportID).Count(&detail.FlagsCount)

	if userID, exists := c.Get("user_id"); exists {
		var follow models.ReportFollow
		if err := db.DB.Where("report_id = ? AND user_id = ?", reportID, userID).First(&follow).Error; err == nil {
			detail.IsFollowing = true
		}
		var vote models.ClosureVote
		if err := db.DB.Where("report_id = ? AND voter_id = ?", reportID, userID).First(&vote).Error; err == nil {
			detail.UserVote = &vote.Vote
		}
	}

	c.JSON(http.StatusOK, detail)
}

// @Summary Edit a report
// @Description Update title, description or category. Creator or admin only.
// @Tags reports
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param report body models.ReportEdit true "Fields to update"
// @Security BearerAuth
// @Success 200 {object} map[string]string "message: Report updated successfully"
// @Failure 400 {object} map[string]string "error: Invalid input"
// @Failure 403 {object} map[string]string "error: Forbidden"
// @Failure 404 {object} map[string]string "error: Report not found"
// @Router /reports/{id} [put]
func UpdateReport(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}
	role, _ := c.Get("role")

	var input models.ReportEdit
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	var report models.Report
	if err := db.DB.First(&report, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}

	if report.CreatorID != userID && role != string(models.AdminRole) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to update this report"})
		return
	}

	updates := map[string]interface{}{}

	if input.Title != "" {
		title := strings.TrimSpace(input.Title)
		if n := utf8.RuneCountInString(title); n < 3 || n > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title must be between 3 and 200 characters"})
			return
		}
		updates["title"] = title
	}
	if input.Description != "" {
		updates["description"] = strings.TrimSpace(input.Description)
	}
	if input.Category != "" {
		if !models.IsValidCategory(input.Category) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category"})
			return
		}
		updates["category"] = input.Category
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	if err := db.DB.Model(&models.Report{}).Where("id = ?", report.ID).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating report: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Report updated successfully"})
}

// @Summary Change a report's status
// @Description Apply a lifecycle transition. Creator or admin only. Going straight to CLOSED records the closer but no closure note; prefer the close endpoint for that.
// @Tags reports
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param status body models.StatusChange true "New status"
// @Security BearerAuth
// @Success 200 {object} map[string]string "message: Status updated successfully"
// @Failure 400 {object} map[string]string "error: Invalid status"
// @Failure 403 {object} map[string]string "error: Forbidden"
// @Failure 404 {object} map[string]string "error: Report not found"
// @Failure 409 {object} map[string]string "error: Invalid transition"
// @Router /reports/{id}/status [patch]
func ChangeStatus(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}
	role, _ := c.Get("role")
	reportID := c.Param("id")

	var input models.StatusChange
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	newStatus := models.ReportStatus(input.Status)
	if !newStatus.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status"})
		return
	}

	var previousStatus models.ReportStatus

	// The status write and its timeline entry commit together, and the
	// timeline text uses the status read inside the same transaction so a
	// concurrent change cannot produce a stale narrative.
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var report models.Report
		if err := tx.First(&report, "id = ?", reportID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errReportNotFound
			}
			return err
		}

		if report.CreatorID != userID && role != string(models.AdminRole) {
			return errForbidden
		}

		previousStatus = report.Status
		if !report.Status.CanTransitionTo(newStatus) {
			return errInvalidTransition
		}

		updates := map[string]interface{}{"status": newStatus}
		if newStatus == models.StatusClosed {
			updates["closed_by"] = userID
		}
		if err := tx.Model(&models.Report{}).Where("id = ?", reportID).Updates(updates).Error; err != nil {
			return err
		}

		entry := models.ReportUpdate{
			ReportID:  reportID,
			AuthorID:  userID.(string),
			Type:      models.UpdateTypeStatusChange,
			Content:   fmt.Sprintf("Status changed from %s to %s", previousStatus, newStatus),
			NewStatus: &newStatus,
		}
		return tx.Create(&entry).Error
	})

	switch {
	case err == nil:
	case errors.Is(err, errReportNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	case errors.Is(err, errForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to change this status"})
		return
	case errors.Is(err, errInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Cannot transition from %s to %s", previousStatus, newStatus)})
		return
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error changing status: " + err.Error()})
		return
	}

	notifications.NotifyFollowers(reportID, userID.(string), "status_change",
		"Report status updated",
		fmt.Sprintf("Status changed from %s to %s", previousStatus, newStatus))

	utils.LogSuccessWithUser(userID, "Report status changed")
	c.JSON(http.StatusOK, gin.H{"message": "Status updated successfully"})
}

// @Summary Close a report
// @Description Close a report with a closure note and optional after photo. Creator or admin only.
// @Tags reports
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param closure body models.ReportClose true "Closure note and optional photo URL"
// @Security BearerAuth
// @Success 200 {object} map[string]string "message: Report closed successfully"
// @Failure 400 {object} map[string]string "error: Invalid input"
// @Failure 403 {object} map[string]string "error: Forbidden"
// @Failure 404 {object} map[string]string "error: Report not found"
// @Failure 409 {object} map[string]string "error: Report already closed"
// @Router /reports/{id}/close [post]
func CloseReport(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}
	role, _ := c.Get("role")
	reportID := c.Param("id")

	var input models.ReportClose
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	closureNote := strings.TrimSpace(input.ClosureNote)
	if closureNote == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Closure note cannot be empty"})
		return
	}

	closedStatus := models.StatusClosed

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var report models.Report
		if err := tx.First(&report, "id = ?", reportID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errReportNotFound
			}
			return err
		}

		if report.CreatorID != userID && role != string(models.AdminRole) {
			return errForbidden
		}

		if !report.Status.CanTransitionTo(models.StatusClosed) {
			return errInvalidTransition
		}

		updates := map[string]interface{}{
			"status":       models.StatusClosed,
			"closed_by":    userID,
			"closure_note": closureNote,
		}
		if photoURL := strings.TrimSpace(input.ClosurePhotoURL); photoURL != "" {
			updates["closure_photo_url"] = photoURL
		}
		if err := tx.Model(&models.Report{}).Where("id = ?", reportID).Updates(updates).Error; err != nil {
			return err
		}

		entry := models.ReportUpdate{
			ReportID:  reportID,
			AuthorID:  userID.(string),
			Type:      models.UpdateTypeStatusChange,
			Content:   closureNote,
			NewStatus: &closedStatus,
		}
		return tx.Create(&entry).Error
	})

	switch {
	case err == nil:
	case errors.Is(err, errReportNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	case errors.Is(err, errForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to close this report"})
		return
	case errors.Is(err, errInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "Report is already closed"})
		return
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error closing report: " + err.Error()})
		return
	}

	notifications.NotifyFollowers(reportID, userID.(string), "closed",
		"Report closed", closureNote)

	utils.LogSuccessWithUser(userID, "Report closed")
	c.JSON(http.StatusOK, gin.H{"message": "Report closed successfully"})
}

// @Summary Search potential duplicate reports
// @Description Advisory pre-submission search for similar reports near a location. Never blocks submission: errors degrade to an empty list.
// @Tags reports
// @Produce json
// @Param title query string true "Draft report title"
// @Param lat query number false "Latitude"
// @Param lng query number false "Longitude"
// @Success 200 {array} map[string]interface{}
// @Router /reports/duplicates [get]
func SearchDuplicates(c *gin.Context) {
	type duplicateMatch struct {
		ID               string              `json:"id"`
		Title            string              `json:"title"`
		Status           models.ReportStatus `json:"status"`
		Category         string              `json:"category"`
		LocationLabel    string              `json:"locationLabel"`
		ClosureConfirmed bool                `json:"closureConfirmed"`
	}

	matches := []duplicateMatch{}

	title := strings.TrimSpace(c.Query("title"))
	if len(title) < 3 {
		c.JSON(http.StatusOK, matches)
		return
	}

	tokens := strings.Fields(title)
	if len(tokens) > 4 {
		tokens = tokens[:4]
	}

	titleCond := db.DB.Where("title ILIKE ?", "%"+tokens[0]+"%")
	for _, token := range tokens[1:] {
		titleCond = titleCond.Or("title ILIKE ?", "%"+token+"%")
	}

	query := db.DB.Model(&models.Report{}).
		Where("is_hidden = ?", false).
		Where(titleCond)

	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr == nil && lngErr == nil {
		// ~2km box. The longitude delta widens with latitude so the box
		// stays roughly square away from the equator; this is a cheap
		// approximation of a haversine radius, not an exact one.
		latDelta := 2.0 / 111.0
		lngDelta := 2.0 / (111.0 * math.Cos(lat*math.Pi/180.0))
		query = query.
			Where("location_lat BETWEEN ? AND ?", lat-latDelta, lat+latDelta).
			Where("location_lng BETWEEN ? AND ?", lng-lngDelta, lng+lngDelta)
	}

	var results []models.Report
	if err := query.Limit(5).Find(&results).Error; err != nil {
		// Advisory only: degrade to an empty result.
		utils.LogError(err, "Duplicate search failed")
		c.JSON(http.StatusOK, matches)
		return
	}

	for _, r := range results {
		matches = append(matches, duplicateMatch{
			ID:               r.ID,
			Title:            r.Title,
			Status:           r.Status,
			Category:         r.Category,
			LocationLabel:    r.LocationLabel,
			ClosureConfirmed: r.ClosureConfirmed,
		})
	}

	c.JSON(http.StatusOK, matches)
}
