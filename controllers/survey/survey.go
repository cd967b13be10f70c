package surveyController

import (
	"errors"
	"log"
	"skillhire/database"
	"skillhire/middleware"
	"skillhire/models"
	"skillhire/utils"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var (
	ErrTokenUsed     = errors.New("survey token already used")
	ErrTokenNotOwned = errors.New("survey token belongs to another user")
	ErrBadResponse   = errors.New("invalid survey response")
)

// RespondToSurveyTx consumes a survey token and records the response.
// The token is checked and marked used in one transaction so a token can
// only ever count once. "yes" and "maybe" confirm the profile as active;
// "no" deactivates it immediately.
func RespondToSurveyTx(db *gorm.DB, userID uint, token, response string) error {
	if response != models.SurveyResponseYes &&
		response != models.SurveyResponseMaybe &&
		response != models.SurveyResponseNo {
		return ErrBadResponse
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var st models.SurveyToken
		if err := tx.Where("token = ?", token).First(&st).Error; err != nil {
			return err
		}
		if st.UserID != userID {
			return ErrTokenNotOwned
		}
		if st.Used {
			return ErrTokenUsed
		}

		now := time.Now()
		st.Used = true
		st.UsedAt = &now
		if err := tx.Save(&st).Error; err != nil {
			return err
		}

		var profile models.Profile
		if err := tx.Where("user_id = ?", userID).First(&profile).Error; err != nil {
			return err
		}

		profile.SurveyResponse = response
		profile.LastResponseAt = &now
		if response == models.SurveyResponseNo {
			profile.VisibleToEmployers = false
			profile.AutoInactiveAt = &now
			if err := tx.Model(&models.User{}).Where("id = ?", userID).
				Update("status", models.StatusInactive).Error; err != nil {
				return err
			}
		} else {
			profile.ConfirmedAt = &now
			profile.VisibleToEmployers = true
			profile.AutoInactiveAt = nil
		}
		return tx.Save(&profile).Error
	})
}

// RespondToSurvey handles the learner's answer to the job-seeking survey.
func RespondToSurvey(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedSurveyResponse").(*struct {
		Token    string `json:"token" validate:"required"`
		Response string `json:"response" validate:"required"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	err := RespondToSurveyTx(database.Database.Db, userID, reqData.Token, reqData.Response)
	if err != nil {
		switch {
		case errors.Is(err, ErrBadResponse):
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Response must be yes, maybe or no!", nil)
		case errors.Is(err, gorm.ErrRecordNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Survey token not found!", nil)
		case errors.Is(err, ErrTokenNotOwned):
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "This survey link is not yours!", nil)
		case errors.Is(err, ErrTokenUsed):
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "This survey link has already been used!", nil)
		default:
			log.Printf("[SURVEY] Response failed: %v", err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record response!", nil)
		}
	}

	utils.WriteAuditLog(database.Database.Db, strconv.FormatUint(uint64(userID), 10), "user",
		"survey_response", "profile", strconv.FormatUint(uint64(userID), 10), fiber.Map{
			"response": reqData.Response,
		})

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Response recorded!", fiber.Map{
		"response": reqData.Response,
	})
}

// GetSurveyStatus returns the caller's survey state so the client can show
// whether a response is outstanding.
func GetSurveyStatus(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var profile models.Profile
	if err := database.Database.Db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Profile not found!", nil)
	}

	pending := profile.LastSurveySentAt != nil &&
		(profile.LastResponseAt == nil || profile.LastResponseAt.Before(*profile.LastSurveySentAt))

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Survey status fetched!", fiber.Map{
		"pending":              pending,
		"last_survey_sent_at":  profile.LastSurveySentAt,
		"last_response_at":     profile.LastResponseAt,
		"survey_response":      profile.SurveyResponse,
		"visible_to_employers": profile.VisibleToEmployers,
	})
}
