package quizController

import (
	"encoding/json"
	"errors"
	"skillhire/database"
	"skillhire/engine"
	"skillhire/middleware"
	"skillhire/models"
	courseModels "skillhire/models/course"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var (
	ErrModuleLocked   = errors.New("module is locked")
	ErrNoCourseAccess = errors.New("course access required")
	ErrModuleNotFound = errors.New("module not found")
)

// QuizResult is what a quiz submission returns to the caller.
type QuizResult struct {
	Passed            bool                  `json:"passed"`
	Score             int                   `json:"score"`
	CorrectCount      int                   `json:"correct_count"`
	TotalQuestions    int                   `json:"total_questions"`
	Results           []engine.AnswerResult `json:"results"`
	NextUnlockedOrder int                   `json:"next_unlocked_order"`
}

// SubmitQuizTx grades one module quiz inside a single transaction: the
// unlock cursor is re-read and advanced against the same snapshot the
// answers are persisted into, so stale client state can never skip a
// module. Answer history is saved on failure too.
func SubmitQuizTx(db *gorm.DB, userID, courseID, moduleID uint, answers []int) (*QuizResult, error) {
	var result *QuizResult

	err := db.Transaction(func(tx *gorm.DB) error {
		var access models.CourseAccess
		if err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&access).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoCourseAccess
			}
			return err
		}

		var module courseModels.Module
		if err := tx.Where("id = ? AND course_id = ? AND is_deleted = false", moduleID, courseID).First(&module).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrModuleNotFound
			}
			return err
		}

		var questions []courseModels.ModuleQuestion
		if err := tx.Where("module_id = ? AND is_deleted = false", moduleID).
			Order("order_index asc").Find(&questions).Error; err != nil {
			return err
		}

		progress, err := getOrInitProgress(tx, userID, courseID)
		if err != nil {
			return err
		}

		if module.OrderIndex > progress.UnlockedModuleOrder {
			return ErrModuleLocked
		}

		key := make([]engine.Question, len(questions))
		for i, q := range questions {
			key[i] = engine.Question{ID: q.ID, CorrectIndex: q.CorrectIndex}
		}

		results, score, err := engine.Grade(key, answers)
		if err != nil {
			return err
		}
		passed := engine.QuizPassed(score)

		correctCount := 0
		for _, r := range results {
			if r.Correct {
				correctCount++
			}
		}

		answersJSON, err := json.Marshal(results)
		if err != nil {
			return err
		}

		now := time.Now()
		var moduleProgress courseModels.ModuleProgress
		if err := tx.Where("progress_id = ? AND module_id = ?", progress.ID, moduleID).First(&moduleProgress).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			moduleProgress = courseModels.ModuleProgress{ProgressID: progress.ID, ModuleID: moduleID}
		}

		moduleProgress.Answers = answersJSON
		moduleProgress.Score = score
		moduleProgress.QuizPassed = passed
		moduleProgress.QuizSubmittedAt = &now
		if err := tx.Save(&moduleProgress).Error; err != nil {
			return err
		}

		next := engine.NextUnlockedOrder(progress.UnlockedModuleOrder, module.OrderIndex, passed, moduleProgress.VideoCompleted)
		if next != progress.UnlockedModuleOrder {
			progress.UnlockedModuleOrder = next
			if err := tx.Save(progress).Error; err != nil {
				return err
			}
		}

		result = &QuizResult{
			Passed:            passed,
			Score:             score,
			CorrectCount:      correctCount,
			TotalQuestions:    len(questions),
			Results:           results,
			NextUnlockedOrder: next,
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}

// MarkVideoCompleteTx merges videoCompleted=true into the module's progress
// entry. It never unsets the flag and never touches quiz fields.
func MarkVideoCompleteTx(db *gorm.DB, userID, courseID, moduleID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var access models.CourseAccess
		if err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&access).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoCourseAccess
			}
			return err
		}

		var module courseModels.Module
		if err := tx.Where("id = ? AND course_id = ? AND is_deleted = false", moduleID, courseID).First(&module).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrModuleNotFound
			}
			return err
		}

		progress, err := getOrInitProgress(tx, userID, courseID)
		if err != nil {
			return err
		}

		var moduleProgress courseModels.ModuleProgress
		err = tx.Where("progress_id = ? AND module_id = ?", progress.ID, moduleID).First(&moduleProgress).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&courseModels.ModuleProgress{
				ProgressID:     progress.ID,
				ModuleID:       moduleID,
				VideoCompleted: true,
			}).Error
		}
		if err != nil {
			return err
		}
		if moduleProgress.VideoCompleted {
			return nil // idempotent
		}
		return tx.Model(&moduleProgress).Update("video_completed", true).Error
	})
}

// getOrInitProgress returns the caller's progress row, materializing the
// initial {unlockedModuleOrder: 1} document on first write.
func getOrInitProgress(tx *gorm.DB, userID, courseID uint) (*courseModels.Progress, error) {
	var progress courseModels.Progress
	err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		progress = courseModels.Progress{UserID: userID, CourseID: courseID, UnlockedModuleOrder: 1}
		if err := tx.Create(&progress).Error; err != nil {
			return nil, err
		}
		return &progress, nil
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// SubmitQuiz submits and grades a module quiz
func SubmitQuiz(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)
	moduleID := c.Locals("moduleID").(int)
	reqData, ok := c.Locals("validatedQuizSubmission").(*struct {
		Answers []int `json:"answers"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	result, err := SubmitQuizTx(database.Database.Db, userID, uint(courseID), uint(moduleID), reqData.Answers)
	if err != nil {
		switch {
		case errors.Is(err, ErrModuleNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
		case errors.Is(err, ErrModuleLocked):
			return middleware.JsonResponse(c, fiber.StatusPreconditionFailed, false, "Module is locked. Complete previous modules first!", nil)
		case errors.Is(err, ErrNoCourseAccess):
			return middleware.JsonResponse(c, fiber.StatusPreconditionFailed, false, "Purchase the course before taking quizzes!", nil)
		case errors.Is(err, engine.ErrAnswerCount), errors.Is(err, engine.ErrAnswerValue), errors.Is(err, engine.ErrNoQuestions):
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, err.Error(), nil)
		default:
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit quiz!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz submitted!", result)
}

// MarkVideoComplete marks a module's video as watched
func MarkVideoComplete(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)
	moduleID := c.Locals("moduleID").(int)

	if err := MarkVideoCompleteTx(database.Database.Db, userID, uint(courseID), uint(moduleID)); err != nil {
		switch {
		case errors.Is(err, ErrModuleNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
		case errors.Is(err, ErrNoCourseAccess):
			return middleware.JsonResponse(c, fiber.StatusPreconditionFailed, false, "Purchase the course before watching modules!", nil)
		default:
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to mark video complete!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Video marked complete!", nil)
}

// GetProgress returns the caller's progress in a course. A fresh view is
// returned for users who have not started; nothing is persisted by reads.
func GetProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)
	db := database.Database.Db

	var progress courseModels.Progress
	err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
			"unlocked_module_order": 1,
			"completed_modules":     []courseModels.ModuleProgress{},
		})
	}
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch progress!", nil)
	}

	var completed []courseModels.ModuleProgress
	if err := db.Where("progress_id = ?", progress.ID).Find(&completed).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch progress!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
		"unlocked_module_order": progress.UnlockedModuleOrder,
		"completed_modules":     completed,
	})
}
