package models

import "time"

type UpdateType string

const (
	UpdateTypeComment        UpdateType = "COMMENT"
	UpdateTypeUpdate         UpdateType = "UPDATE"
	UpdateTypeStatusChange   UpdateType = "STATUS_CHANGE"
	UpdateTypeClosureRequest UpdateType = "CLOSURE_REQUEST"
)

// ReportUpdate is a timeline entry on a report: a user comment/update or a
// system record of a status change. Rows are append-only.
type ReportUpdate struct {
	ID        string        `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ReportID  string        `json:"reportId" gorm:"column:report_id;type:uuid;not null;index"`
	AuthorID  string        `json:"authorId" gorm:"column:author_id;type:uuid;not null;index"`
	Type      UpdateType    `json:"type" gorm:"default:'COMMENT'"`
	Content   string        `json:"content"`
	NewStatus *ReportStatus `json:"newStatus" gorm:"column:new_status"`
	CreatedAt time.Time     `json:"createdAt"`
}

type UpdateCreate struct {
	Content string `json:"content" binding:"required"`
	Type    string `json:"type"`
}

func (ReportUpdate) TableName() string {
	return "report_updates"
}
