package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Payment types
const (
	PaymentTypeCoursePurchase = "course_purchase"
	PaymentTypeJoiningFee     = "joining_fee"
	PaymentTypeRetakeFee      = "retake_fee"
	PaymentTypeCvUnlock       = "cv_unlock"
	PaymentTypeReactivation   = "reactivation"
	PaymentTypeSubscription   = "subscription"
)

// Payment statuses
const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
)

// ValidPaymentTypes is the full set of recognized payment types.
var ValidPaymentTypes = []string{
	PaymentTypeCoursePurchase,
	PaymentTypeJoiningFee,
	PaymentTypeRetakeFee,
	PaymentTypeCvUnlock,
	PaymentTypeReactivation,
	PaymentTypeSubscription,
}

// IsValidPaymentType reports whether t is a recognized payment type.
func IsValidPaymentType(t string) bool {
	for _, v := range ValidPaymentTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Payment is one record per payment attempt. Reference is the locally
// generated correlation id carried in processor metadata so the webhook
// can find this row again.
type Payment struct {
	gorm.Model
	Reference        string         `json:"reference" gorm:"uniqueIndex;not null"`
	UserID           uint           `json:"user_id" gorm:"index;not null"`
	ProviderIntentID string         `json:"provider_intent_id" gorm:"index"`
	Amount           int64          `json:"amount" gorm:"not null"`
	Currency         string         `json:"currency" gorm:"default:'GBP'"`
	Status           string         `json:"status" gorm:"default:'pending'"`
	Type             string         `json:"type" gorm:"not null"`
	Metadata         datatypes.JSON `json:"metadata"`
	CompletedAt      *time.Time     `json:"completed_at"`
	IsDeleted        bool           `gorm:"default:false"`
}

// CourseAccess is the durable grant behind a course purchase. The
// (user, course) unique index is what makes webhook replays idempotent.
type CourseAccess struct {
	gorm.Model
	UserID      uint      `json:"user_id" gorm:"uniqueIndex:idx_course_access_user_course;not null"`
	CourseID    uint      `json:"course_id" gorm:"uniqueIndex:idx_course_access_user_course;not null"`
	PaymentRef  string    `json:"payment_ref"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// QuestionnaireAccess unlocks the final assessment after the joining fee.
type QuestionnaireAccess struct {
	gorm.Model
	UserID     uint       `json:"user_id" gorm:"uniqueIndex;not null"`
	Unlocked   bool       `json:"unlocked" gorm:"default:false"`
	UnlockedAt *time.Time `json:"unlocked_at"`
	PaymentRef string     `json:"payment_ref"`
}

// CvUnlock is an employer's paid access to one candidate's contact details,
// keyed by the payment reference and carrying a snapshot of the candidate's
// rating and contact fields at unlock time.
type CvUnlock struct {
	gorm.Model
	PaymentRef     string    `json:"payment_ref" gorm:"uniqueIndex;not null"`
	EmployerID     uint      `json:"employer_id" gorm:"index;not null"`
	CandidateID    uint      `json:"candidate_id" gorm:"index;not null"`
	Price          int64     `json:"price"`
	StarRating     int       `json:"star_rating"`
	CandidateCvURL string    `json:"candidate_cv_url"`
	CandidateEmail string    `json:"candidate_email"`
	CandidatePhone string    `json:"candidate_phone"`
	UnlockedAt     time.Time `json:"unlocked_at"`
}

// Subscription statuses considered active for employer gating.
const (
	SubscriptionActive   = "active"
	SubscriptionTrialing = "trialing"
	SubscriptionCanceled = "canceled"
)

// Subscription is one active-or-trialing record per employer.
type Subscription struct {
	gorm.Model
	ProviderSubID      string     `json:"provider_sub_id" gorm:"uniqueIndex;not null"`
	ProviderCustomerID string     `json:"provider_customer_id"`
	EmployerID         uint       `json:"employer_id" gorm:"index;not null"`
	Status             string     `json:"status" gorm:"default:'active'"`
	PlanName           string     `json:"plan_name"`
	PlanAmount         int64      `json:"plan_amount"`
	PlanInterval       string     `json:"plan_interval" gorm:"default:'month'"`
	CurrentPeriodStart *time.Time `json:"current_period_start"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end"`
	CancelAtPeriodEnd  bool       `json:"cancel_at_period_end" gorm:"default:false"`
}
