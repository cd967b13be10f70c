package models

import (
	"time"

	"gorm.io/gorm"
)

// Internship application statuses. pending is the only non-terminal state.
const (
	ApplicationPending    = "pending"
	ApplicationAccepted   = "accepted"
	ApplicationRejected   = "rejected"
	ApplicationWaitlisted = "waitlisted"
)

// IsValidDecision reports whether status is a valid admin decision.
func IsValidDecision(status string) bool {
	return status == ApplicationAccepted || status == ApplicationRejected || status == ApplicationWaitlisted
}

// InternshipApplication is one submission against the fixed slot capacity.
// At most one pending application per learner at any time.
type InternshipApplication struct {
	gorm.Model
	LearnerID          uint       `json:"learner_id" gorm:"index;not null"`
	AssessmentID       uint       `json:"assessment_id" gorm:"index;not null"`
	StarRating         int        `json:"star_rating" gorm:"default:5"`
	Status             string     `json:"status" gorm:"index;default:'pending'"`
	Availability       string     `json:"availability"`
	PreferredStartDate *time.Time `json:"preferred_start_date"`
	CommitmentAgreed   bool       `json:"commitment_agreed" gorm:"default:false"`
	AppliedAt          time.Time  `json:"applied_at"`
	ReviewedBy         *uint      `json:"reviewed_by"`
	ReviewedAt         *time.Time `json:"reviewed_at"`
	DecisionNotes      string     `json:"decision_notes"`
}
