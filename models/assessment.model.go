package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Questionnaire is the final assessment: ordered questions, a passing score
// and an optional star mapping (JSON object of "min-max" bands to stars,
// e.g. {"90-100":5,"80-89":4,...}). Content management owns it; the engine
// treats it as immutable.
type Questionnaire struct {
	gorm.Model
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	PassingScore int            `json:"passing_score" gorm:"default:60"`
	StarMapping  datatypes.JSON `json:"star_mapping"`
	IsActive     bool           `json:"is_active" gorm:"default:true"`
	IsDeleted    bool           `gorm:"default:false"`
}

// QuestionnaireQuestion is one multiple-choice question with its answer key.
type QuestionnaireQuestion struct {
	gorm.Model
	QuestionnaireID uint           `json:"questionnaire_id" gorm:"index;not null"`
	OrderIndex      int            `json:"order_index" gorm:"default:0"`
	Question        string         `json:"question"`
	Options         datatypes.JSON `json:"options"` // JSON array of option strings
	CorrectIndex    int            `json:"correct_index"`
	IsDeleted       bool           `gorm:"default:false"`
}

// Assessment is the immutable record of one questionnaire submission.
// Re-submission always creates a new Assessment, never overwrites.
type Assessment struct {
	gorm.Model
	UserID          uint           `json:"user_id" gorm:"index;not null"`
	QuestionnaireID uint           `json:"questionnaire_id" gorm:"index;not null"`
	CourseID        *uint          `json:"course_id"`
	AttemptNumber   int            `json:"attempt_number" gorm:"default:1"`
	SubmittedAt     time.Time      `json:"submitted_at"`
	Answers         datatypes.JSON `json:"answers"` // per-question results with correctness
	Score           int            `json:"score"`
	StarRating      int            `json:"star_rating"`
	CertificateID   uint           `json:"certificate_id"`
}

// Certificate is issued 1:1 with an Assessment at creation time.
type Certificate struct {
	gorm.Model
	UserID            uint      `json:"user_id" gorm:"index;not null"`
	AssessmentID      uint      `json:"assessment_id" gorm:"index;not null"`
	CourseID          *uint     `json:"course_id"`
	CertificateNumber string    `json:"certificate_number" gorm:"uniqueIndex;not null"`
	IssuedAt          time.Time `json:"issued_at"`
	Score             int       `json:"score"`
	StarRating        int       `json:"star_rating"`
	PdfURL            string    `json:"pdf_url"`
	IsRevoked         bool      `json:"is_revoked" gorm:"default:false"`
}
