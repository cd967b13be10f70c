package internshipController

import (
	"fmt"
	"skillhire/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDb(t *testing.T, slots int, enabled bool) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.SystemConfig{},
		&models.Assessment{},
		&models.InternshipApplication{},
	))

	require.NoError(t, db.Create(&models.SystemConfig{
		InternshipProgramEnabled: enabled,
		InternshipSlots:          slots,
		SurveyTimeoutHours:       48,
	}).Error)
	return db
}

// seedLearner creates a learner with one assessment at the given rating.
func seedLearner(t *testing.T, db *gorm.DB, n, stars int) (learnerID, assessmentID uint) {
	t.Helper()

	user := models.User{
		Name:     fmt.Sprintf("Learner %d", n),
		Email:    fmt.Sprintf("learner%d@example.com", n),
		Role:     models.RoleLearner,
		Password: "x",
	}
	require.NoError(t, db.Create(&user).Error)

	assessment := models.Assessment{
		UserID:          user.ID,
		QuestionnaireID: 1,
		AttemptNumber:   1,
		SubmittedAt:     time.Now(),
		Score:           stars * 20,
		StarRating:      stars,
	}
	require.NoError(t, db.Create(&assessment).Error)
	return user.ID, assessment.ID
}

func apply(db *gorm.DB, learnerID, assessmentID uint) (*models.InternshipApplication, error) {
	return ApplyTx(db, learnerID, ApplyInput{
		AssessmentID:     assessmentID,
		Availability:     "full-time",
		CommitmentAgreed: true,
	})
}

func TestApplyRequiresCommitment(t *testing.T) {
	db := setupTestDb(t, 5, true)
	learnerID, assessmentID := seedLearner(t, db, 1, 5)

	_, err := ApplyTx(db, learnerID, ApplyInput{AssessmentID: assessmentID})
	assert.ErrorIs(t, err, ErrCommitment)
}

func TestApplyProgramDisabled(t *testing.T) {
	db := setupTestDb(t, 5, false)
	learnerID, assessmentID := seedLearner(t, db, 1, 5)

	_, err := apply(db, learnerID, assessmentID)
	assert.ErrorIs(t, err, ErrProgramDisabled)
}

func TestApplyRequiresOwnAssessment(t *testing.T) {
	db := setupTestDb(t, 5, true)
	learnerID, _ := seedLearner(t, db, 1, 5)
	_, otherAssessmentID := seedLearner(t, db, 2, 5)

	_, err := apply(db, learnerID, otherAssessmentID)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestApplyRequiresFiveStars(t *testing.T) {
	db := setupTestDb(t, 5, true)
	learnerID, assessmentID := seedLearner(t, db, 1, 4)

	_, err := apply(db, learnerID, assessmentID)
	assert.ErrorIs(t, err, ErrNotFiveStar)
}

func TestApplyCreatesPendingApplication(t *testing.T) {
	db := setupTestDb(t, 5, true)
	learnerID, assessmentID := seedLearner(t, db, 1, 5)

	app, err := apply(db, learnerID, assessmentID)
	require.NoError(t, err)

	assert.Equal(t, models.ApplicationPending, app.Status)
	assert.Equal(t, 5, app.StarRating)
	assert.True(t, app.CommitmentAgreed)
	assert.False(t, app.AppliedAt.IsZero())
}

func TestApplySecondPendingRejected(t *testing.T) {
	db := setupTestDb(t, 5, true)
	learnerID, assessmentID := seedLearner(t, db, 1, 5)

	_, err := apply(db, learnerID, assessmentID)
	require.NoError(t, err)

	_, err = apply(db, learnerID, assessmentID)
	assert.ErrorIs(t, err, ErrPendingExists)
}

func TestApplyCapacityExhausted(t *testing.T) {
	db := setupTestDb(t, 2, true)
	adminID := uint(99)

	// Two learners take both slots.
	for n := 1; n <= 2; n++ {
		learnerID, assessmentID := seedLearner(t, db, n, 5)
		app, err := apply(db, learnerID, assessmentID)
		require.NoError(t, err)
		_, err = DecideTx(db, adminID, app.ID, models.ApplicationAccepted, "")
		require.NoError(t, err)
	}

	learnerID, assessmentID := seedLearner(t, db, 3, 5)
	_, err := apply(db, learnerID, assessmentID)
	assert.ErrorIs(t, err, ErrSlotsFull)
}

func TestDecideRecordsReviewer(t *testing.T) {
	db := setupTestDb(t, 5, true)
	learnerID, assessmentID := seedLearner(t, db, 1, 5)
	app, err := apply(db, learnerID, assessmentID)
	require.NoError(t, err)

	adminID := uint(42)
	decided, err := DecideTx(db, adminID, app.ID, models.ApplicationRejected, "not this cohort")
	require.NoError(t, err)

	assert.Equal(t, models.ApplicationRejected, decided.Status)
	require.NotNil(t, decided.ReviewedBy)
	assert.Equal(t, adminID, *decided.ReviewedBy)
	assert.NotNil(t, decided.ReviewedAt)
	assert.Equal(t, "not this cohort", decided.DecisionNotes)
}

func TestDecideOnlyPendingTransitions(t *testing.T) {
	db := setupTestDb(t, 5, true)
	learnerID, assessmentID := seedLearner(t, db, 1, 5)
	app, err := apply(db, learnerID, assessmentID)
	require.NoError(t, err)

	_, err = DecideTx(db, 1, app.ID, models.ApplicationAccepted, "")
	require.NoError(t, err)

	_, err = DecideTx(db, 1, app.ID, models.ApplicationRejected, "")
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestDecideAcceptRechecksCapacity(t *testing.T) {
	db := setupTestDb(t, 1, true)

	learner1, assessment1 := seedLearner(t, db, 1, 5)
	app1, err := apply(db, learner1, assessment1)
	require.NoError(t, err)

	learner2, assessment2 := seedLearner(t, db, 2, 5)
	app2, err := apply(db, learner2, assessment2)
	require.NoError(t, err)

	_, err = DecideTx(db, 1, app1.ID, models.ApplicationAccepted, "")
	require.NoError(t, err)

	// The slot filled between application and decision.
	_, err = DecideTx(db, 1, app2.ID, models.ApplicationAccepted, "")
	assert.ErrorIs(t, err, ErrSlotsFull)

	// Waitlisting still works when accepting cannot.
	decided, err := DecideTx(db, 1, app2.ID, models.ApplicationWaitlisted, "")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationWaitlisted, decided.Status)
}
