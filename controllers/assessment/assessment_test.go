package assessmentController

import (
	"skillhire/models"
	"strings"
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
		&models.Questionnaire{},
		&models.QuestionnaireQuestion{},
		&models.QuestionnaireAccess{},
		&models.Assessment{},
		&models.Certificate{},
	))
	return db
}

// seedQuestionnaire creates a five-question questionnaire whose answer key
// is always option 2.
func seedQuestionnaire(t *testing.T, db *gorm.DB, starMapping string) uint {
	t.Helper()

	q := models.Questionnaire{Title: "Final Assessment", PassingScore: 60, IsActive: true}
	if starMapping != "" {
		q.StarMapping = []byte(starMapping)
	}
	require.NoError(t, db.Create(&q).Error)

	for i := 1; i <= 5; i++ {
		require.NoError(t, db.Create(&models.QuestionnaireQuestion{
			QuestionnaireID: q.ID,
			OrderIndex:      i,
			Question:        "pick option two",
			Options:         []byte(`["a","b","c","d"]`),
			CorrectIndex:    2,
		}).Error)
	}
	return q.ID
}

func seedCandidate(t *testing.T, db *gorm.DB, unlocked bool) uint {
	t.Helper()

	user := models.User{Name: "Jess", Email: "jess@example.com", Role: models.RoleCandidate, Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&models.Profile{UserID: user.ID, Role: models.RoleCandidate}).Error)

	if unlocked {
		now := time.Now()
		require.NoError(t, db.Create(&models.QuestionnaireAccess{
			UserID:     user.ID,
			Unlocked:   true,
			UnlockedAt: &now,
			PaymentRef: "test-ref",
		}).Error)
	}
	return user.ID
}

func TestSubmitAssessmentUnknownQuestionnaire(t *testing.T) {
	db := setupTestDb(t)
	userID := seedCandidate(t, db, true)

	_, err := SubmitAssessmentTx(db, userID, 999, []int{2, 2, 2, 2, 2}, nil)
	assert.ErrorIs(t, err, ErrQuestionnaireNotFound)
}

func TestSubmitAssessmentRequiresUnlock(t *testing.T) {
	db := setupTestDb(t)
	qID := seedQuestionnaire(t, db, "")
	userID := seedCandidate(t, db, false)

	_, err := SubmitAssessmentTx(db, userID, qID, []int{2, 2, 2, 2, 2}, nil)
	assert.ErrorIs(t, err, ErrQuestionnaireLocked)
}

func TestSubmitAssessmentPerfectScore(t *testing.T) {
	db := setupTestDb(t)
	qID := seedQuestionnaire(t, db, "")
	userID := seedCandidate(t, db, true)

	result, err := SubmitAssessmentTx(db, userID, qID, []int{2, 2, 2, 2, 2}, nil)
	require.NoError(t, err)

	assert.True(t, result.Passed)
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, 5, result.StarRating)
	assert.True(t, strings.HasPrefix(result.CertificateNumber, "CERT-"))

	var cert models.Certificate
	require.NoError(t, db.First(&cert, result.CertificateID).Error)
	assert.Equal(t, result.AssessmentID, cert.AssessmentID)
	assert.Equal(t, 5, cert.StarRating)
	assert.False(t, cert.IsRevoked)

	var profile models.Profile
	require.NoError(t, db.Where("user_id = ?", userID).First(&profile).Error)
	assert.Equal(t, 5, profile.LatestStarRating)
	assert.Equal(t, 100, profile.LatestScore)
	require.NotNil(t, profile.LatestAssessmentID)
	assert.Equal(t, result.AssessmentID, *profile.LatestAssessmentID)
}

func TestSubmitAssessmentBoundaryPass(t *testing.T) {
	db := setupTestDb(t)
	qID := seedQuestionnaire(t, db, "")
	userID := seedCandidate(t, db, true)

	// 3 of 5 correct: score 60 meets the passing score exactly.
	result, err := SubmitAssessmentTx(db, userID, qID, []int{2, 2, 2, 0, 0}, nil)
	require.NoError(t, err)

	assert.True(t, result.Passed)
	assert.Equal(t, 60, result.Score)
	assert.Equal(t, 2, result.StarRating)
}

func TestSubmitAssessmentFailStillRecorded(t *testing.T) {
	db := setupTestDb(t)
	qID := seedQuestionnaire(t, db, "")
	userID := seedCandidate(t, db, true)

	result, err := SubmitAssessmentTx(db, userID, qID, []int{2, 2, 0, 0, 0}, nil)
	require.NoError(t, err)

	assert.False(t, result.Passed)
	assert.Equal(t, 40, result.Score)
	assert.Equal(t, 1, result.StarRating)

	// The attempt and its certificate exist even on a fail.
	var assessment models.Assessment
	require.NoError(t, db.First(&assessment, result.AssessmentID).Error)
	assert.Equal(t, 1, assessment.AttemptNumber)
}

func TestSubmitAssessmentRetakeCreatesNewAttempt(t *testing.T) {
	db := setupTestDb(t)
	qID := seedQuestionnaire(t, db, "")
	userID := seedCandidate(t, db, true)

	first, err := SubmitAssessmentTx(db, userID, qID, []int{2, 2, 0, 0, 0}, nil)
	require.NoError(t, err)

	// Certificate numbers carry a millisecond timestamp.
	time.Sleep(2 * time.Millisecond)

	second, err := SubmitAssessmentTx(db, userID, qID, []int{2, 2, 2, 2, 2}, nil)
	require.NoError(t, err)

	assert.NotEqual(t, first.AssessmentID, second.AssessmentID)

	// The earlier attempt is untouched and the profile tracks the latest.
	var firstAttempt models.Assessment
	require.NoError(t, db.First(&firstAttempt, first.AssessmentID).Error)
	assert.Equal(t, 40, firstAttempt.Score)
	assert.Equal(t, 1, firstAttempt.AttemptNumber)

	var secondAttempt models.Assessment
	require.NoError(t, db.First(&secondAttempt, second.AssessmentID).Error)
	assert.Equal(t, 2, secondAttempt.AttemptNumber)

	var profile models.Profile
	require.NoError(t, db.Where("user_id = ?", userID).First(&profile).Error)
	assert.Equal(t, 100, profile.LatestScore)
	assert.Equal(t, 5, profile.LatestStarRating)
}

func TestSubmitAssessmentConfiguredStarMapping(t *testing.T) {
	db := setupTestDb(t)
	qID := seedQuestionnaire(t, db, `{"80-100":5,"60-79":4,"40-59":2,"0-39":1}`)
	userID := seedCandidate(t, db, true)

	// 4 of 5 correct: score 80 lands in the top configured band.
	result, err := SubmitAssessmentTx(db, userID, qID, []int{2, 2, 2, 2, 0}, nil)
	require.NoError(t, err)

	assert.Equal(t, 80, result.Score)
	assert.Equal(t, 5, result.StarRating)
}

func TestSubmitAssessmentMalformedStarMappingFallsBack(t *testing.T) {
	db := setupTestDb(t)
	qID := seedQuestionnaire(t, db, `"not an object"`)
	userID := seedCandidate(t, db, true)

	result, err := SubmitAssessmentTx(db, userID, qID, []int{2, 2, 2, 2, 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, result.StarRating)
}
