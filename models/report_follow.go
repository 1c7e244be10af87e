package models

import "time"

// ReportFollow subscribes a user to notifications on a report.
type ReportFollow struct {
	ReportID  string    `json:"reportId" gorm:"column:report_id;type:uuid;primaryKey"`
	UserID    string    `json:"userId" gorm:"column:user_id;type:uuid;primaryKey"`
	CreatedAt time.Time `json:"createdAt"`
}

func (ReportFollow) TableName() string {
	return "report_follows"
}
