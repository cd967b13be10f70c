package utils

import (
	"log"
	"skillhire/database"
	"skillhire/models"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Profiles are re-surveyed at most once per this interval.
const surveyResendInterval = 30 * 24 * time.Hour

// InitializeSurveyScheduler sets up the job-seeking survey sweeps: daily
// survey issuance and an hourly inactivity check.
func InitializeSurveyScheduler() {
	log.Println("[SURVEY-SCHEDULER] Initializing survey scheduler...")

	c := cron.New()

	c.AddFunc("0 9 * * *", func() {
		log.Println("[SURVEY-SCHEDULER] Running daily survey issuance...")
		IssueJobSeekingSurveys(database.Database.Db)
	})

	c.AddFunc("0 * * * *", func() {
		SweepInactiveProfiles(database.Database.Db)
	})

	c.Start()
	log.Println("[SURVEY-SCHEDULER] Survey scheduler started - issuance daily at 9 AM, inactivity sweep hourly")
}

// IssueJobSeekingSurveys mints a single-use token for every visible profile
// that has not been surveyed within the resend interval and sends the survey
// email. Each profile is handled in its own transaction; a crash mid-sweep
// is safe to resume because lastSurveySentAt makes the pass idempotent.
func IssueJobSeekingSurveys(db *gorm.DB) {
	cutoff := time.Now().Add(-surveyResendInterval)

	var profiles []models.Profile
	if err := db.
		Where("visible_to_employers = ?", true).
		Where("last_survey_sent_at IS NULL OR last_survey_sent_at < ?", cutoff).
		Find(&profiles).Error; err != nil {
		log.Printf("[SURVEY-SCHEDULER] Error fetching profiles due for survey: %v", err)
		return
	}

	log.Printf("[SURVEY-SCHEDULER] Found %d profiles due for survey", len(profiles))

	for _, profile := range profiles {
		token := "s_" + uuid.NewString()
		now := time.Now()

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&models.SurveyToken{
				Token:  token,
				UserID: profile.UserID,
				Role:   profile.Role,
			}).Error; err != nil {
				return err
			}
			return tx.Model(&models.Profile{}).
				Where("id = ?", profile.ID).
				Update("last_survey_sent_at", now).Error
		})
		if err != nil {
			log.Printf("[SURVEY-SCHEDULER] Error issuing survey for user %d: %v", profile.UserID, err)
			continue
		}

		var user models.User
		if err := db.Where("id = ? AND is_deleted = false", profile.UserID).First(&user).Error; err != nil {
			log.Printf("[SURVEY-SCHEDULER] Error fetching user %d: %v", profile.UserID, err)
			continue
		}
		SendSurveyEmail(user.Email, user.Name, token)
		log.Printf("[SURVEY-SCHEDULER] Survey queued for user %d", profile.UserID)
	}
}

// SweepInactiveProfiles hides profiles whose survey went unanswered past the
// configured timeout. A response newer than the send time keeps the profile
// visible.
func SweepInactiveProfiles(db *gorm.DB) {
	systemCfg, err := models.GetSystemConfig(db)
	if err != nil {
		log.Printf("[SURVEY-SCHEDULER] Error reading system config: %v", err)
		return
	}
	timeout := time.Duration(systemCfg.SurveyTimeoutHours) * time.Hour
	cutoff := time.Now().Add(-timeout)

	var profiles []models.Profile
	if err := db.
		Where("visible_to_employers = ?", true).
		Where("last_survey_sent_at IS NOT NULL AND last_survey_sent_at < ?", cutoff).
		Find(&profiles).Error; err != nil {
		log.Printf("[SURVEY-SCHEDULER] Error fetching profiles for inactivity sweep: %v", err)
		return
	}

	for _, profile := range profiles {
		if profile.LastResponseAt != nil && !profile.LastResponseAt.Before(*profile.LastSurveySentAt) {
			continue
		}
		now := time.Now()
		err := db.Model(&models.Profile{}).
			Where("id = ? AND visible_to_employers = ?", profile.ID, true).
			Updates(map[string]interface{}{
				"visible_to_employers": false,
				"auto_inactive_at":     now,
			}).Error
		if err != nil {
			log.Printf("[SURVEY-SCHEDULER] Error deactivating profile %d: %v", profile.ID, err)
			continue
		}
		log.Printf("[SURVEY-SCHEDULER] Profile %d set inactive (no survey response in %dh)", profile.ID, systemCfg.SurveyTimeoutHours)
	}
}
