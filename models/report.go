package models

import "time"

type ReportStatus string

const (
	StatusOpen         ReportStatus = "OPEN"
	StatusAcknowledged ReportStatus = "ACKNOWLEDGED"
	StatusInProgress   ReportStatus = "IN_PROGRESS"
	StatusClosed       ReportStatus = "CLOSED"
)

// statusTransitions lists the statuses reachable from each status.
// CLOSED is terminal here: only the closure vote tally reopens a report.
var statusTransitions = map[ReportStatus][]ReportStatus{
	StatusOpen:         {StatusAcknowledged, StatusInProgress, StatusClosed},
	StatusAcknowledged: {StatusInProgress, StatusClosed},
	StatusInProgress:   {StatusClosed},
	StatusClosed:       {},
}

func (s ReportStatus) IsValid() bool {
	_, ok := statusTransitions[s]
	return ok
}

func (s ReportStatus) CanTransitionTo(next ReportStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

var Categories = []string{
	"Roads & Potholes",
	"Street Lighting",
	"Waste & Litter",
	"Water & Drainage",
	"Parks & Green Spaces",
	"Public Safety",
	"Noise & Pollution",
	"Public Transport",
	"Sidewalks & Paths",
	"Graffiti & Vandalism",
	"Other",
}

func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

type Report struct {
	ID                 string       `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CreatorID          string       `json:"creatorId" gorm:"column:creator_id;type:uuid;not null;index"`
	Title              string       `json:"title" gorm:"not null"`
	Description        string       `json:"description"`
	Category           string       `json:"category" gorm:"not null;index"`
	Status             ReportStatus `json:"status" gorm:"default:'OPEN';index"`
	LocationLat        *float64     `json:"locationLat" gorm:"column:location_lat"`
	LocationLng        *float64     `json:"locationLng" gorm:"column:location_lng"`
	LocationIsExact    bool         `json:"locationIsExact" gorm:"column:location_is_exact;default:true"`
	LocationLabel      string       `json:"locationLabel" gorm:"column:location_label"`
	PhotoURL           string       `json:"photoUrl" gorm:"column:photo_url"`
	IsHidden           bool         `json:"isHidden" gorm:"column:is_hidden;default:false"`
	CommentsLocked     bool         `json:"commentsLocked" gorm:"column:comments_locked;default:false"`
	DuplicateOf        *string      `json:"duplicateOf" gorm:"column:duplicate_of;type:uuid"`
	ClosedBy           *string      `json:"closedBy" gorm:"column:closed_by;type:uuid"`
	ClosureNote        string       `json:"closureNote" gorm:"column:closure_note"`
	ClosurePhotoURL    string       `json:"closurePhotoUrl" gorm:"column:closure_photo_url"`
	ClosureConfirmed   bool         `json:"closureConfirmed" gorm:"column:closure_confirmed;default:false"`
	ClosureConfirmedAt *time.Time   `json:"closureConfirmedAt" gorm:"column:closure_confirmed_at"`
	CreatedAt          time.Time    `json:"createdAt"`
	UpdatedAt          time.Time    `json:"updatedAt"`
}

type ReportCreate struct {
	Title           string   `json:"title" binding:"required"`
	Description     string   `json:"description" binding:"required"`
	Category        string   `json:"category" binding:"required"`
	LocationLat     *float64 `json:"locationLat"`
	LocationLng     *float64 `json:"locationLng"`
	LocationIsExact bool     `json:"locationIsExact"`
	LocationLabel   string   `json:"locationLabel"`
	PhotoURL        string   `json:"photoUrl"`
}

type ReportEdit struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type StatusChange struct {
	Status string `json:"status" binding:"required"`
}

type ReportClose struct {
	ClosureNote     string `json:"closureNote" binding:"required"`
	ClosurePhotoURL string `json:"closurePhotoUrl"`
}

func (Report) TableName() string {
	return "reports"
}
