package models

import "time"

type FlagTargetType string

const (
	FlagTargetReport  FlagTargetType = "report"
	FlagTargetUpdate  FlagTargetType = "update"
	FlagTargetProfile FlagTargetType = "profile"
)

func IsValidFlagTarget(t FlagTargetType) bool {
	return t == FlagTargetReport || t == FlagTargetUpdate || t == FlagTargetProfile
}

// Flag is an abuse signal against a report, timeline entry or profile.
// A reporter may flag a given target only once.
type Flag struct {
	ID         string         `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	TargetType FlagTargetType `json:"targetType" gorm:"column:target_type;uniqueIndex:idx_flags_reporter_target;not null"`
	TargetID   string         `json:"targetId" gorm:"column:target_id;type:uuid;uniqueIndex:idx_flags_reporter_target;not null"`
	ReporterID string         `json:"reporterId" gorm:"column:reporter_id;type:uuid;uniqueIndex:idx_flags_reporter_target;not null"`
	Reason     string         `json:"reason"`
	CreatedAt  time.Time      `json:"createdAt"`
}

type FlagCreate struct {
	TargetType string `json:"targetType" binding:"required"`
	TargetID   string `json:"targetId" binding:"required"`
	Reason     string `json:"reason"`
}

func (Flag) TableName() string {
	return "flags"
}
