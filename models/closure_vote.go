package models

import "time"

// ClosureVote records one community vote on a closed report. The composite
// primary key enforces at most one vote per (report, voter) at the storage
// layer, so a racing duplicate insert fails instead of double-counting.
type ClosureVote struct {
	ReportID  string    `json:"reportId" gorm:"column:report_id;type:uuid;primaryKey"`
	VoterID   string    `json:"voterId" gorm:"column:voter_id;type:uuid;primaryKey"`
	Vote      bool      `json:"vote" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
}

type VoteCreate struct {
	Vote *bool `json:"vote" binding:"required"`
}

func (ClosureVote) TableName() string {
	return "closure_votes"
}
