package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PricingConfig is a process-wide singleton (row id 1). Fee amounts are in
// minor currency units. CvUnlockPricing maps "<n>-star" keys to amounts.
type PricingConfig struct {
	gorm.Model
	CourseFee               int64          `json:"course_fee" gorm:"default:4900"`
	JoiningFee              int64          `json:"joining_fee" gorm:"default:1900"`
	RetakeFee               int64          `json:"retake_fee" gorm:"default:900"`
	ReactivationFee         int64          `json:"reactivation_fee" gorm:"default:900"`
	EmployerSubscriptionFee int64          `json:"employer_subscription_fee" gorm:"default:9900"`
	CvUnlockPricing         datatypes.JSON `json:"cv_unlock_pricing"`
	Currency                string         `json:"currency" gorm:"default:'GBP'"`
	UpdatedBy               uint           `json:"updated_by"`
}

// SystemConfig is the policy singleton (row id 1).
type SystemConfig struct {
	gorm.Model
	InternshipProgramEnabled bool `json:"internship_program_enabled" gorm:"default:true"`
	InternshipSlots          int  `json:"internship_slots" gorm:"default:10"`
	SurveyTimeoutHours       int  `json:"survey_timeout_hours" gorm:"default:48"`
	UpdatedBy                uint `json:"updated_by"`
}

// ConfigRowID is the fixed primary key of both config singletons.
const ConfigRowID = 1

// GetPricingConfig reads the pricing singleton. Read once per operation, no
// caching across operations.
func GetPricingConfig(db *gorm.DB) (PricingConfig, error) {
	var cfg PricingConfig
	err := db.First(&cfg, ConfigRowID).Error
	return cfg, err
}

// GetSystemConfig reads the policy singleton.
func GetSystemConfig(db *gorm.DB) (SystemConfig, error) {
	var cfg SystemConfig
	err := db.First(&cfg, ConfigRowID).Error
	return cfg, err
}
