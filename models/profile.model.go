package models

import (
	"time"

	"gorm.io/gorm"
)

// Survey responses
const (
	SurveyResponseYes   = "yes"
	SurveyResponseMaybe = "maybe"
	SurveyResponseNo    = "no"
)

// Profile is the public-facing summary employers search against.
// One row per learner or candidate; Role records which of the two
// collections this row belongs to. The latest assessment outcome is
// denormalized here for fast lookup.
type Profile struct {
	gorm.Model
	UserID             uint   `json:"user_id" gorm:"uniqueIndex;not null"`
	Role               string `json:"role" gorm:"default:'learner'"` // learner or candidate
	Headline           string `json:"headline"`
	CvURL              string `json:"cv_url"`
	PhoneNumber        string `json:"phone_number"`
	VisibleToEmployers bool   `json:"visible_to_employers" gorm:"default:true"`

	LatestStarRating   int   `json:"latest_star_rating" gorm:"default:0"`
	LatestScore        int   `json:"latest_score" gorm:"default:0"`
	LatestAssessmentID *uint `json:"latest_assessment_id"`

	// Job-seeking survey state. LastSurveySentAt/LastResponseAt drive the
	// scheduled sweeps; AutoInactiveAt is set when the sweep (or a "no"
	// response) hides the profile and cleared by a reactivation grant.
	LastSurveySentAt *time.Time `json:"last_survey_sent_at"`
	LastResponseAt   *time.Time `json:"last_response_at"`
	SurveyResponse   string     `json:"survey_response" gorm:"default:''"`
	ConfirmedAt      *time.Time `json:"confirmed_at"`
	AutoInactiveAt   *time.Time `json:"auto_inactive_at"`
}
