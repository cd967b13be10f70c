package utils

import (
	"skillhire/config"
	"skillhire/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSchedulerDb(t *testing.T) *gorm.DB {
	t.Helper()

	config.LoadConfig()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.SurveyToken{},
		&models.SystemConfig{},
	))
	require.NoError(t, db.Create(&models.SystemConfig{
		InternshipProgramEnabled: true,
		InternshipSlots:          10,
		SurveyTimeoutHours:       48,
	}).Error)
	return db
}

func seedProfile(t *testing.T, db *gorm.DB, email string, visible bool, sentAt, respondedAt *time.Time) uint {
	t.Helper()

	user := models.User{Name: "User", Email: email, Role: models.RoleLearner, Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&models.Profile{
		UserID:             user.ID,
		Role:               models.RoleLearner,
		VisibleToEmployers: visible,
		LastSurveySentAt:   sentAt,
		LastResponseAt:     respondedAt,
	}).Error)
	return user.ID
}

func TestIssueJobSeekingSurveys(t *testing.T) {
	db := setupSchedulerDb(t)

	recent := time.Now().Add(-24 * time.Hour)
	stale := time.Now().Add(-40 * 24 * time.Hour)

	dueID := seedProfile(t, db, "due@example.com", true, nil, nil)
	staleID := seedProfile(t, db, "stale@example.com", true, &stale, nil)
	recentID := seedProfile(t, db, "recent@example.com", true, &recent, nil)
	hiddenID := seedProfile(t, db, "hidden@example.com", false, nil, nil)

	IssueJobSeekingSurveys(db)

	var tokens []models.SurveyToken
	require.NoError(t, db.Find(&tokens).Error)
	issued := make(map[uint]bool, len(tokens))
	for _, tok := range tokens {
		issued[tok.UserID] = true
		assert.False(t, tok.Used)
	}

	assert.True(t, issued[dueID])
	assert.True(t, issued[staleID])
	assert.False(t, issued[recentID])
	assert.False(t, issued[hiddenID])

	var profile models.Profile
	require.NoError(t, db.Where("user_id = ?", dueID).First(&profile).Error)
	require.NotNil(t, profile.LastSurveySentAt)

	// A second pass within the resend interval issues nothing new.
	IssueJobSeekingSurveys(db)
	var count int64
	require.NoError(t, db.Model(&models.SurveyToken{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestSweepInactiveProfiles(t *testing.T) {
	db := setupSchedulerDb(t)

	expired := time.Now().Add(-72 * time.Hour)
	fresh := time.Now().Add(-1 * time.Hour)
	answered := time.Now().Add(-71 * time.Hour)

	expiredID := seedProfile(t, db, "expired@example.com", true, &expired, nil)
	freshID := seedProfile(t, db, "fresh@example.com", true, &fresh, nil)
	answeredID := seedProfile(t, db, "answered@example.com", true, &expired, &answered)

	SweepInactiveProfiles(db)

	var profile models.Profile
	require.NoError(t, db.Where("user_id = ?", expiredID).First(&profile).Error)
	assert.False(t, profile.VisibleToEmployers)
	assert.NotNil(t, profile.AutoInactiveAt)

	require.NoError(t, db.Where("user_id = ?", freshID).First(&profile).Error)
	assert.True(t, profile.VisibleToEmployers)

	require.NoError(t, db.Where("user_id = ?", answeredID).First(&profile).Error)
	assert.True(t, profile.VisibleToEmployers)
	assert.Nil(t, profile.AutoInactiveAt)
}
