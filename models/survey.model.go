package models

import (
	"time"

	"gorm.io/gorm"
)

// SurveyToken is a single-use token mailed with the job-seeking survey.
// Bound to the issuing user; Used is checked and set in one transaction.
type SurveyToken struct {
	gorm.Model
	Token  string     `json:"token" gorm:"uniqueIndex;not null"`
	UserID uint       `json:"user_id" gorm:"index;not null"`
	Role   string     `json:"role" gorm:"default:'learner'"`
	Used   bool       `json:"used" gorm:"default:false"`
	UsedAt *time.Time `json:"used_at"`
}
