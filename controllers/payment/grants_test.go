package paymentController

import (
	"skillhire/models"
	courseModels "skillhire/models/course"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDb(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Payment{},
		&models.CourseAccess{},
		&models.QuestionnaireAccess{},
		&models.CvUnlock{},
		&models.Subscription{},
		&models.AuditLog{},
		&courseModels.Progress{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, role string) uint {
	t.Helper()
	user := models.User{Name: "Test User", Email: role + "@example.com", Role: role, Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

func TestGrantCourseAccessIdempotent(t *testing.T) {
	db := setupTestDb(t)
	userID := seedUser(t, db, models.RoleLearner)

	require.NoError(t, GrantCourseAccess(db, userID, 7, "ref-1"))
	require.NoError(t, GrantCourseAccess(db, userID, 7, "ref-1"))

	var accessCount int64
	require.NoError(t, db.Model(&models.CourseAccess{}).
		Where("user_id = ? AND course_id = ?", userID, 7).Count(&accessCount).Error)
	assert.Equal(t, int64(1), accessCount)

	var progress courseModels.Progress
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", userID, 7).First(&progress).Error)
	assert.Equal(t, 1, progress.UnlockedModuleOrder)
}

func TestGrantCourseAccessKeepsExistingProgress(t *testing.T) {
	db := setupTestDb(t)
	userID := seedUser(t, db, models.RoleLearner)

	require.NoError(t, GrantCourseAccess(db, userID, 7, "ref-1"))
	require.NoError(t, db.Model(&courseModels.Progress{}).
		Where("user_id = ? AND course_id = ?", userID, 7).
		Update("unlocked_module_order", 3).Error)

	// A replayed grant must not reset the learner's cursor.
	require.NoError(t, GrantCourseAccess(db, userID, 7, "ref-1"))

	var progress courseModels.Progress
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", userID, 7).First(&progress).Error)
	assert.Equal(t, 3, progress.UnlockedModuleOrder)
}

func TestGrantQuestionnaireAccessIdempotent(t *testing.T) {
	db := setupTestDb(t)
	userID := seedUser(t, db, models.RoleCandidate)

	require.NoError(t, GrantQuestionnaireAccess(db, userID, "ref-1"))
	require.NoError(t, GrantQuestionnaireAccess(db, userID, "ref-2"))

	var count int64
	require.NoError(t, db.Model(&models.QuestionnaireAccess{}).
		Where("user_id = ?", userID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var access models.QuestionnaireAccess
	require.NoError(t, db.Where("user_id = ?", userID).First(&access).Error)
	assert.True(t, access.Unlocked)
	assert.Equal(t, "ref-1", access.PaymentRef)
}

func TestGrantCvUnlockSnapshotsCandidate(t *testing.T) {
	db := setupTestDb(t)
	employerID := seedUser(t, db, models.RoleEmployer)
	candidateID := seedUser(t, db, models.RoleCandidate)
	require.NoError(t, db.Create(&models.Profile{
		UserID:           candidateID,
		Role:             models.RoleCandidate,
		CvURL:            "https://cdn.example.com/cv.pdf",
		PhoneNumber:      "07700900000",
		LatestStarRating: 4,
	}).Error)

	require.NoError(t, GrantCvUnlock(db, employerID, candidateID, "ref-cv", 400))

	var unlock models.CvUnlock
	require.NoError(t, db.Where("payment_ref = ?", "ref-cv").First(&unlock).Error)
	assert.Equal(t, employerID, unlock.EmployerID)
	assert.Equal(t, candidateID, unlock.CandidateID)
	assert.Equal(t, 4, unlock.StarRating)
	assert.Equal(t, "https://cdn.example.com/cv.pdf", unlock.CandidateCvURL)
	assert.Equal(t, "07700900000", unlock.CandidatePhone)
	assert.Equal(t, "candidate@example.com", unlock.CandidateEmail)

	// Replays keyed by the payment reference are no-ops.
	require.NoError(t, GrantCvUnlock(db, employerID, candidateID, "ref-cv", 400))
	var count int64
	require.NoError(t, db.Model(&models.CvUnlock{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGrantReactivationRestoresVisibility(t *testing.T) {
	db := setupTestDb(t)
	userID := seedUser(t, db, models.RoleLearner)
	now := time.Now()
	require.NoError(t, db.Create(&models.Profile{
		UserID:             userID,
		Role:               models.RoleLearner,
		VisibleToEmployers: false,
		AutoInactiveAt:     &now,
	}).Error)

	require.NoError(t, GrantReactivation(db, userID))

	var profile models.Profile
	require.NoError(t, db.Where("user_id = ?", userID).First(&profile).Error)
	assert.True(t, profile.VisibleToEmployers)
	assert.Nil(t, profile.AutoInactiveAt)
}

func TestUpsertSubscriptionFlipsActiveFlag(t *testing.T) {
	db := setupTestDb(t)
	employerID := seedUser(t, db, models.RoleEmployer)

	require.NoError(t, UpsertSubscription(db, employerID, SubscriptionInfo{
		ProviderSubID: "sub_1",
		Status:        models.SubscriptionActive,
	}))

	var user models.User
	require.NoError(t, db.First(&user, employerID).Error)
	assert.True(t, user.SubscriptionActive)

	require.NoError(t, UpsertSubscription(db, employerID, SubscriptionInfo{
		ProviderSubID: "sub_1",
		Status:        models.SubscriptionCanceled,
	}))

	require.NoError(t, db.First(&user, employerID).Error)
	assert.False(t, user.SubscriptionActive)

	var count int64
	require.NoError(t, db.Model(&models.Subscription{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestApplyGrantValidation(t *testing.T) {
	db := setupTestDb(t)
	userID := seedUser(t, db, models.RoleLearner)

	err := ApplyGrant(db, models.PaymentTypeCoursePurchase, GrantParams{UserID: userID})
	assert.ErrorIs(t, err, ErrCourseRequired)

	err = ApplyGrant(db, models.PaymentTypeCvUnlock, GrantParams{UserID: userID, PaymentRef: "r"})
	assert.ErrorIs(t, err, ErrCandidateRequired)

	err = ApplyGrant(db, "mystery_fee", GrantParams{UserID: userID})
	assert.ErrorIs(t, err, ErrUnknownGrantType)
}

func TestHandlePaymentSucceededReplay(t *testing.T) {
	db := setupTestDb(t)
	userID := seedUser(t, db, models.RoleLearner)

	payment := models.Payment{
		Reference: "pay-1",
		UserID:    userID,
		Amount:    4900,
		Status:    models.PaymentStatusPending,
		Type:      models.PaymentTypeCoursePurchase,
	}
	require.NoError(t, db.Create(&payment).Error)

	intent := paymentIntentObject{
		ID:     "pi_1",
		Amount: 4900,
		Metadata: map[string]string{
			"paymentId":   "pay-1",
			"paymentType": models.PaymentTypeCoursePurchase,
			"courseId":    "7",
		},
	}

	require.NoError(t, handlePaymentSucceeded(db, intent))

	var stored models.Payment
	require.NoError(t, db.Where("reference = ?", "pay-1").First(&stored).Error)
	assert.Equal(t, models.PaymentStatusSucceeded, stored.Status)
	assert.NotNil(t, stored.CompletedAt)

	var accessCount int64
	require.NoError(t, db.Model(&models.CourseAccess{}).
		Where("user_id = ? AND course_id = ?", userID, 7).Count(&accessCount).Error)
	assert.Equal(t, int64(1), accessCount)

	// Redelivery: same outcome, no extra audit entry.
	require.NoError(t, handlePaymentSucceeded(db, intent))

	require.NoError(t, db.Model(&models.CourseAccess{}).
		Where("user_id = ? AND course_id = ?", userID, 7).Count(&accessCount).Error)
	assert.Equal(t, int64(1), accessCount)

	var auditCount int64
	require.NoError(t, db.Model(&models.AuditLog{}).
		Where("action = ?", "payment_processed").Count(&auditCount).Error)
	assert.Equal(t, int64(1), auditCount)
}

func TestHandlePaymentSucceededUnknownReference(t *testing.T) {
	db := setupTestDb(t)

	err := handlePaymentSucceeded(db, paymentIntentObject{
		ID: "pi_1",
		Metadata: map[string]string{
			"paymentId":   "missing",
			"paymentType": models.PaymentTypeCoursePurchase,
			"courseId":    "7",
		},
	})
	assert.Error(t, err)
}

func TestHandlePaymentSucceededMissingMetadata(t *testing.T) {
	db := setupTestDb(t)

	err := handlePaymentSucceeded(db, paymentIntentObject{ID: "pi_1"})
	assert.Error(t, err)
}

func TestHandlePaymentSucceededSubscriptionIntent(t *testing.T) {
	db := setupTestDb(t)
	employerID := seedUser(t, db, models.RoleEmployer)

	payment := models.Payment{
		Reference: "pay-sub-1",
		UserID:    employerID,
		Amount:    9900,
		Status:    models.PaymentStatusPending,
		Type:      models.PaymentTypeSubscription,
	}
	require.NoError(t, db.Create(&payment).Error)

	intent := paymentIntentObject{
		ID:     "pi_sub",
		Amount: 9900,
		Metadata: map[string]string{
			"paymentId":   "pay-sub-1",
			"paymentType": models.PaymentTypeSubscription,
		},
	}

	// Subscription provisioning belongs to checkout completion; the intent
	// must still settle the payment instead of failing on every redelivery.
	require.NoError(t, handlePaymentSucceeded(db, intent))

	var stored models.Payment
	require.NoError(t, db.Where("reference = ?", "pay-sub-1").First(&stored).Error)
	assert.Equal(t, models.PaymentStatusSucceeded, stored.Status)

	var subCount int64
	require.NoError(t, db.Model(&models.Subscription{}).Count(&subCount).Error)
	assert.Equal(t, int64(0), subCount)

	require.NoError(t, handlePaymentSucceeded(db, intent))
}

func TestHandlePaymentSucceededCvUnlockNotifiesEmployer(t *testing.T) {
	db := setupTestDb(t)
	employerID := seedUser(t, db, models.RoleEmployer)
	candidateID := seedUser(t, db, models.RoleCandidate)

	payment := models.Payment{
		Reference: "pay-cv-1",
		UserID:    employerID,
		Amount:    300,
		Status:    models.PaymentStatusPending,
		Type:      models.PaymentTypeCvUnlock,
	}
	require.NoError(t, db.Create(&payment).Error)

	intent := paymentIntentObject{
		ID:     "pi_cv",
		Amount: 300,
		Metadata: map[string]string{
			"paymentId":   "pay-cv-1",
			"paymentType": models.PaymentTypeCvUnlock,
			"candidateId": strconv.FormatUint(uint64(candidateID), 10),
			"employerId":  strconv.FormatUint(uint64(employerID), 10),
		},
	}

	require.NoError(t, handlePaymentSucceeded(db, intent))

	var unlock models.CvUnlock
	require.NoError(t, db.Where("payment_ref = ?", "pay-cv-1").First(&unlock).Error)
	assert.Equal(t, employerID, unlock.EmployerID)
	assert.Equal(t, candidateID, unlock.CandidateID)

	var stored models.Payment
	require.NoError(t, db.Where("reference = ?", "pay-cv-1").First(&stored).Error)
	assert.Equal(t, models.PaymentStatusSucceeded, stored.Status)
}

func TestHandlePaymentSucceededReactivation(t *testing.T) {
	db := setupTestDb(t)
	userID := seedUser(t, db, models.RoleCandidate)
	require.NoError(t, db.Create(&models.Profile{
		UserID:             userID,
		Role:               models.RoleCandidate,
		VisibleToEmployers: false,
	}).Error)

	payment := models.Payment{
		Reference: "pay-react-1",
		UserID:    userID,
		Amount:    900,
		Status:    models.PaymentStatusPending,
		Type:      models.PaymentTypeReactivation,
	}
	require.NoError(t, db.Create(&payment).Error)

	require.NoError(t, handlePaymentSucceeded(db, paymentIntentObject{
		ID:     "pi_react",
		Amount: 900,
		Metadata: map[string]string{
			"paymentId":   "pay-react-1",
			"paymentType": models.PaymentTypeReactivation,
		},
	}))

	var profile models.Profile
	require.NoError(t, db.Where("user_id = ?", userID).First(&profile).Error)
	assert.True(t, profile.VisibleToEmployers)
	assert.Nil(t, profile.AutoInactiveAt)
}

func TestParseUintMeta(t *testing.T) {
	assert.Equal(t, uint(42), parseUintMeta("42"))
	assert.Equal(t, uint(0), parseUintMeta(""))
	assert.Equal(t, uint(0), parseUintMeta("not-a-number"))
	assert.Equal(t, uint(0), parseUintMeta("-1"))
	// Out of 32-bit range must not wrap.
	assert.Equal(t, uint(0), parseUintMeta("4294967296"))
}

func TestDemoGrantMatchesWebhookPostconditions(t *testing.T) {
	db := setupTestDb(t)
	userID := seedUser(t, db, models.RoleLearner)

	ref, err := DemoGrantTx(db, userID, models.PaymentTypeCoursePurchase, 7, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, ref)

	var access models.CourseAccess
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", userID, 7).First(&access).Error)
	assert.Equal(t, ref, access.PaymentRef)

	var progress courseModels.Progress
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", userID, 7).First(&progress).Error)
	assert.Equal(t, 1, progress.UnlockedModuleOrder)

	var auditCount int64
	require.NoError(t, db.Model(&models.AuditLog{}).
		Where("action = ?", "demo_grant").Count(&auditCount).Error)
	assert.Equal(t, int64(1), auditCount)
}

func TestDemoGrantSubscription(t *testing.T) {
	db := setupTestDb(t)
	employerID := seedUser(t, db, models.RoleEmployer)

	_, err := DemoGrantTx(db, employerID, models.PaymentTypeSubscription, 0, 0)
	require.NoError(t, err)

	var sub models.Subscription
	require.NoError(t, db.Where("employer_id = ?", employerID).First(&sub).Error)
	assert.Equal(t, models.SubscriptionActive, sub.Status)
	require.NotNil(t, sub.CurrentPeriodEnd)
	assert.True(t, sub.CurrentPeriodEnd.After(time.Now()))

	var user models.User
	require.NoError(t, db.First(&user, employerID).Error)
	assert.True(t, user.SubscriptionActive)
}
