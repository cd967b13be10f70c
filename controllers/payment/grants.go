package paymentController

import (
	"errors"
	"skillhire/models"
	courseModels "skillhire/models/course"
	"time"

	"gorm.io/gorm"
)

// Grant routines share one contract: deterministic keys, safe to re-apply.
// The webhook path and the demo path both dispatch here so their
// postconditions cannot drift apart.

var (
	ErrUnknownGrantType  = errors.New("unknown grant type")
	ErrCandidateRequired = errors.New("candidateId required for cv_unlock")
	ErrCourseRequired    = errors.New("courseId required for course_purchase")
)

// GrantCourseAccess records a course purchase and materializes the initial
// progress document. Keyed by (user, course): replays are no-ops.
func GrantCourseAccess(tx *gorm.DB, userID, courseID uint, paymentRef string) error {
	var access models.CourseAccess
	err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&access).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := tx.Create(&models.CourseAccess{
			UserID:      userID,
			CourseID:    courseID,
			PaymentRef:  paymentRef,
			PurchasedAt: time.Now(),
		}).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	var progress courseModels.Progress
	err = tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&courseModels.Progress{
			UserID:              userID,
			CourseID:            courseID,
			UnlockedModuleOrder: 1,
		}).Error
	}
	return err
}

// GrantQuestionnaireAccess unlocks the final assessment for a user.
func GrantQuestionnaireAccess(tx *gorm.DB, userID uint, paymentRef string) error {
	var access models.QuestionnaireAccess
	err := tx.Where("user_id = ?", userID).First(&access).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		now := time.Now()
		return tx.Create(&models.QuestionnaireAccess{
			UserID:     userID,
			Unlocked:   true,
			UnlockedAt: &now,
			PaymentRef: paymentRef,
		}).Error
	}
	if err != nil {
		return err
	}
	if access.Unlocked {
		return nil
	}
	now := time.Now()
	return tx.Model(&access).Updates(map[string]interface{}{
		"unlocked":    true,
		"unlocked_at": now,
		"payment_ref": paymentRef,
	}).Error
}

// GrantCvUnlock creates the employer's unlock record, keyed by the payment
// reference, with a snapshot of the candidate's rating and contact fields
// at unlock time.
func GrantCvUnlock(tx *gorm.DB, employerID, candidateID uint, paymentRef string, price int64) error {
	var existing models.CvUnlock
	err := tx.Where("payment_ref = ?", paymentRef).First(&existing).Error
	if err == nil {
		return nil // replayed delivery
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var profile models.Profile
	if err := tx.Where("user_id = ?", candidateID).First(&profile).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	var candidate models.User
	if err := tx.Where("id = ? AND is_deleted = false", candidateID).First(&candidate).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return tx.Create(&models.CvUnlock{
		PaymentRef:     paymentRef,
		EmployerID:     employerID,
		CandidateID:    candidateID,
		Price:          price,
		StarRating:     profile.LatestStarRating,
		CandidateCvURL: profile.CvURL,
		CandidateEmail: candidate.Email,
		CandidatePhone: profile.PhoneNumber,
		UnlockedAt:     time.Now(),
	}).Error
}

// GrantReactivation makes the user's profile visible again and clears the
// auto-inactive timestamp.
func GrantReactivation(tx *gorm.DB, userID uint) error {
	var profile models.Profile
	if err := tx.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return err
	}
	return tx.Model(&profile).Updates(map[string]interface{}{
		"visible_to_employers": true,
		"auto_inactive_at":     nil,
	}).Error
}

// SubscriptionInfo carries the provider subscription fields for an upsert.
type SubscriptionInfo struct {
	ProviderSubID      string
	ProviderCustomerID string
	Status             string
	PlanName           string
	PlanAmount         int64
	PlanInterval       string
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	CancelAtPeriodEnd  bool
}

// UpsertSubscription stores the employer's subscription, keyed by the
// provider subscription id, and flips the subscription-active claim.
func UpsertSubscription(tx *gorm.DB, employerID uint, info SubscriptionInfo) error {
	var sub models.Subscription
	err := tx.Where("provider_sub_id = ?", info.ProviderSubID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		sub = models.Subscription{ProviderSubID: info.ProviderSubID, EmployerID: employerID}
	} else if err != nil {
		return err
	}

	sub.ProviderCustomerID = info.ProviderCustomerID
	sub.Status = info.Status
	sub.PlanName = info.PlanName
	sub.PlanAmount = info.PlanAmount
	sub.PlanInterval = info.PlanInterval
	sub.CurrentPeriodStart = info.CurrentPeriodStart
	sub.CurrentPeriodEnd = info.CurrentPeriodEnd
	sub.CancelAtPeriodEnd = info.CancelAtPeriodEnd
	if err := tx.Save(&sub).Error; err != nil {
		return err
	}

	active := info.Status == models.SubscriptionActive || info.Status == models.SubscriptionTrialing
	return tx.Model(&models.User{}).Where("id = ?", employerID).
		Update("subscription_active", active).Error
}

// GrantParams carries the correlation ids a grant routine needs.
type GrantParams struct {
	UserID      uint
	CourseID    uint
	CandidateID uint
	EmployerID  uint
	PaymentRef  string
	Amount      int64
}

// ApplyGrant dispatches a successful payment (or its demo equivalent) to
// the matching grant routine.
func ApplyGrant(tx *gorm.DB, paymentType string, p GrantParams) error {
	switch paymentType {
	case models.PaymentTypeCoursePurchase:
		if p.CourseID == 0 {
			return ErrCourseRequired
		}
		return GrantCourseAccess(tx, p.UserID, p.CourseID, p.PaymentRef)
	case models.PaymentTypeJoiningFee, models.PaymentTypeRetakeFee:
		return GrantQuestionnaireAccess(tx, p.UserID, p.PaymentRef)
	case models.PaymentTypeCvUnlock:
		if p.CandidateID == 0 {
			return ErrCandidateRequired
		}
		employerID := p.EmployerID
		if employerID == 0 {
			employerID = p.UserID
		}
		return GrantCvUnlock(tx, employerID, p.CandidateID, p.PaymentRef, p.Amount)
	case models.PaymentTypeReactivation:
		return GrantReactivation(tx, p.UserID)
	case models.PaymentTypeSubscription:
		// Subscriptions are provisioned from checkout.session.completed;
		// the succeeded intent only settles the payment row.
		return nil
	default:
		return ErrUnknownGrantType
	}
}
