package assessmentController

import (
	"encoding/json"
	"errors"
	"fmt"
	"skillhire/database"
	"skillhire/engine"
	"skillhire/middleware"
	"skillhire/models"
	"skillhire/utils"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var (
	ErrQuestionnaireNotFound = errors.New("questionnaire not found")
	ErrQuestionnaireLocked   = errors.New("questionnaire access not unlocked")
)

// AssessmentResult is what a final assessment submission returns.
type AssessmentResult struct {
	Passed            bool                  `json:"passed"`
	Score             int                   `json:"score"`
	StarRating        int                   `json:"star_rating"`
	CorrectCount      int                   `json:"correct_count"`
	TotalQuestions    int                   `json:"total_questions"`
	AssessmentID      uint                  `json:"assessment_id"`
	CertificateID     uint                  `json:"certificate_id"`
	CertificateNumber string                `json:"certificate_number"`
	Results           []engine.AnswerResult `json:"results"`
}

// SubmitAssessmentTx grades the final questionnaire and atomically creates
// the Assessment, its Certificate and the profile summary update. A
// re-submission always creates a new Assessment/Certificate pair; whether a
// retake is allowed is the fee-gating caller's concern, not this routine's.
func SubmitAssessmentTx(db *gorm.DB, userID, questionnaireID uint, answers []int, courseID *uint) (*AssessmentResult, error) {
	var questionnaire models.Questionnaire
	if err := db.Where("id = ? AND is_deleted = false", questionnaireID).First(&questionnaire).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionnaireNotFound
		}
		return nil, err
	}

	var access models.QuestionnaireAccess
	if err := db.Where("user_id = ? AND unlocked = ?", userID, true).First(&access).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionnaireLocked
		}
		return nil, err
	}

	var questions []models.QuestionnaireQuestion
	if err := db.Where("questionnaire_id = ? AND is_deleted = false", questionnaireID).
		Order("order_index asc").Find(&questions).Error; err != nil {
		return nil, err
	}

	key := make([]engine.Question, len(questions))
	for i, q := range questions {
		key[i] = engine.Question{ID: q.ID, CorrectIndex: q.CorrectIndex}
	}

	results, score, err := engine.Grade(key, answers)
	if err != nil {
		return nil, err
	}

	var starMapping map[string]int
	if len(questionnaire.StarMapping) > 0 {
		// A malformed mapping falls back to the default bands.
		_ = json.Unmarshal(questionnaire.StarMapping, &starMapping)
	}
	starRating := engine.StarRating(score, starMapping)
	passed := score >= questionnaire.PassingScore

	correctCount := 0
	for _, r := range results {
		if r.Correct {
			correctCount++
		}
	}

	answersJSON, err := json.Marshal(results)
	if err != nil {
		return nil, err
	}

	var result *AssessmentResult
	err = db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ? AND is_deleted = false", userID).First(&user).Error; err != nil {
			return err
		}

		var attempts int64
		if err := tx.Model(&models.Assessment{}).
			Where("user_id = ? AND questionnaire_id = ?", userID, questionnaireID).
			Count(&attempts).Error; err != nil {
			return err
		}

		now := time.Now()
		assessment := models.Assessment{
			UserID:          userID,
			QuestionnaireID: questionnaireID,
			CourseID:        courseID,
			AttemptNumber:   int(attempts) + 1,
			SubmittedAt:     now,
			Answers:         answersJSON,
			Score:           score,
			StarRating:      starRating,
		}
		if err := tx.Create(&assessment).Error; err != nil {
			return err
		}

		// Timestamp plus user id fragment: collision-improbable, with the
		// unique index as backstop.
		certificate := models.Certificate{
			UserID:            userID,
			AssessmentID:      assessment.ID,
			CourseID:          courseID,
			CertificateNumber: fmt.Sprintf("CERT-%d-%d", now.UnixMilli(), userID),
			IssuedAt:          now,
			Score:             score,
			StarRating:        starRating,
		}
		if err := tx.Create(&certificate).Error; err != nil {
			return err
		}

		if err := tx.Model(&assessment).Update("certificate_id", certificate.ID).Error; err != nil {
			return err
		}

		// Profile collection is chosen by role: employers and admins have
		// no searchable profile, learners and candidates get one.
		profileRole := models.RoleLearner
		if user.Role == models.RoleCandidate {
			profileRole = models.RoleCandidate
		}

		var profile models.Profile
		if err := tx.Where("user_id = ?", userID).First(&profile).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			profile = models.Profile{UserID: userID, Role: profileRole}
		}
		profile.LatestStarRating = starRating
		profile.LatestScore = score
		profile.LatestAssessmentID = &assessment.ID
		if err := tx.Save(&profile).Error; err != nil {
			return err
		}

		result = &AssessmentResult{
			Passed:            passed,
			Score:             score,
			StarRating:        starRating,
			CorrectCount:      correctCount,
			TotalQuestions:    len(questions),
			AssessmentID:      assessment.ID,
			CertificateID:     certificate.ID,
			CertificateNumber: certificate.CertificateNumber,
			Results:           results,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SubmitAssessment submits the final questionnaire
func SubmitAssessment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedAssessment").(*struct {
		QuestionnaireID uint  `json:"questionnaire_id"`
		Answers         []int `json:"answers"`
		CourseID        *uint `json:"course_id"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	result, err := SubmitAssessmentTx(database.Database.Db, userID, reqData.QuestionnaireID, reqData.Answers, reqData.CourseID)
	if err != nil {
		switch {
		case errors.Is(err, ErrQuestionnaireNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Questionnaire not found!", nil)
		case errors.Is(err, ErrQuestionnaireLocked):
			return middleware.JsonResponse(c, fiber.StatusPreconditionFailed, false, "Pay the joining fee to unlock the assessment!", nil)
		case errors.Is(err, engine.ErrAnswerCount), errors.Is(err, engine.ErrAnswerValue), errors.Is(err, engine.ErrNoQuestions):
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, err.Error(), nil)
		default:
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit assessment!", nil)
		}
	}

	// Email after commit, best effort off the critical path.
	var user models.User
	if err := database.Database.Db.First(&user, userID).Error; err == nil {
		utils.SendAssessmentResultsEmail(user.Email, user.Name, result.Score, result.StarRating, result.CertificateNumber)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assessment submitted!", result)
}

// GetMyAssessments lists the caller's assessments, newest first
func GetMyAssessments(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var assessments []models.Assessment
	if err := database.Database.Db.Where("user_id = ?", userID).
		Order("created_at desc").Find(&assessments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch assessments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assessments fetched successfully!", assessments)
}

// GetMyCertificates lists the caller's certificates, newest first
func GetMyCertificates(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var certificates []models.Certificate
	if err := database.Database.Db.Where("user_id = ? AND is_revoked = false", userID).
		Order("created_at desc").Find(&certificates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificates!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", certificates)
}
