package internshipController

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
	ErrProgramDisabled = errors.New("internship program is disabled")
	ErrNotOwner        = errors.New("assessment does not belong to applicant")
	ErrNotFiveStar     = errors.New("a five star assessment is required")
	ErrCommitment      = errors.New("commitment agreement is required")
	ErrSlotsFull       = errors.New("no internship slots remaining")
	ErrPendingExists   = errors.New("a pending application already exists")
	ErrNotPending      = errors.New("application is not pending")
)

// ApplyInput is the applicant-supplied part of an application.
type ApplyInput struct {
	AssessmentID       uint
	Availability       string
	PreferredStartDate *time.Time
	CommitmentAgreed   bool
}

// ApplyTx files one internship application. Eligibility and capacity are
// both checked inside the transaction so two concurrent applicants cannot
// oversubscribe the last slot.
func ApplyTx(db *gorm.DB, learnerID uint, in ApplyInput) (*models.InternshipApplication, error) {
	if !in.CommitmentAgreed {
		return nil, ErrCommitment
	}

	var app models.InternshipApplication
	err := db.Transaction(func(tx *gorm.DB) error {
		sysCfg, err := models.GetSystemConfig(tx)
		if err != nil {
			return err
		}
		if !sysCfg.InternshipProgramEnabled {
			return ErrProgramDisabled
		}

		var assessment models.Assessment
		if err := tx.First(&assessment, in.AssessmentID).Error; err != nil {
			return err
		}
		if assessment.UserID != learnerID {
			return ErrNotOwner
		}
		if assessment.StarRating != 5 {
			return ErrNotFiveStar
		}

		var pendingCount int64
		if err := tx.Model(&models.InternshipApplication{}).
			Where("learner_id = ? AND status = ?", learnerID, models.ApplicationPending).
			Count(&pendingCount).Error; err != nil {
			return err
		}
		if pendingCount > 0 {
			return ErrPendingExists
		}

		var acceptedCount int64
		if err := tx.Model(&models.InternshipApplication{}).
			Where("status = ?", models.ApplicationAccepted).
			Count(&acceptedCount).Error; err != nil {
			return err
		}
		if acceptedCount >= int64(sysCfg.InternshipSlots) {
			return ErrSlotsFull
		}

		app = models.InternshipApplication{
			LearnerID:          learnerID,
			AssessmentID:       in.AssessmentID,
			StarRating:         assessment.StarRating,
			Status:             models.ApplicationPending,
			Availability:       in.Availability,
			PreferredStartDate: in.PreferredStartDate,
			CommitmentAgreed:   true,
			AppliedAt:          time.Now(),
		}
		return tx.Create(&app).Error
	})
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// DecideTx records an admin decision on a pending application. Accepting
// re-checks capacity against the slot limit inside the transaction.
func DecideTx(db *gorm.DB, adminID, applicationID uint, decision, notes string) (*models.InternshipApplication, error) {
	var app models.InternshipApplication
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&app, applicationID).Error; err != nil {
			return err
		}
		if app.Status != models.ApplicationPending {
			return ErrNotPending
		}

		if decision == models.ApplicationAccepted {
			sysCfg, err := models.GetSystemConfig(tx)
			if err != nil {
				return err
			}
			var acceptedCount int64
			if err := tx.Model(&models.InternshipApplication{}).
				Where("status = ?", models.ApplicationAccepted).
				Count(&acceptedCount).Error; err != nil {
				return err
			}
			if acceptedCount >= int64(sysCfg.InternshipSlots) {
				return ErrSlotsFull
			}
		}

		now := time.Now()
		app.Status = decision
		app.ReviewedBy = &adminID
		app.ReviewedAt = &now
		app.DecisionNotes = notes
		return tx.Save(&app).Error
	})
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// Apply handles a learner's internship application.
func Apply(c *fiber.Ctx) error {
	learnerID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedApplication").(*struct {
		AssessmentID       uint       `json:"assessment_id" validate:"required"`
		Availability       string     `json:"availability"`
		PreferredStartDate *time.Time `json:"preferred_start_date"`
		CommitmentAgreed   bool       `json:"commitment_agreed"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	app, err := ApplyTx(database.Database.Db, learnerID, ApplyInput{
		AssessmentID:       reqData.AssessmentID,
		Availability:       reqData.Availability,
		PreferredStartDate: reqData.PreferredStartDate,
		CommitmentAgreed:   reqData.CommitmentAgreed,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrCommitment):
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "You must agree to the internship commitment!", nil)
		case errors.Is(err, ErrProgramDisabled):
			return middleware.JsonResponse(c, fiber.StatusPreconditionFailed, false, "The internship program is not accepting applications!", nil)
		case errors.Is(err, gorm.ErrRecordNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Assessment not found!", nil)
		case errors.Is(err, ErrNotOwner):
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "That assessment is not yours!", nil)
		case errors.Is(err, ErrNotFiveStar):
			return middleware.JsonResponse(c, fiber.StatusPreconditionFailed, false, "A five star assessment is required to apply!", nil)
		case errors.Is(err, ErrPendingExists):
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "You already have a pending application!", nil)
		case errors.Is(err, ErrSlotsFull):
			return middleware.JsonResponse(c, fiber.StatusTooManyRequests, false, "All internship slots are taken!", nil)
		default:
			log.Printf("[INTERNSHIP] Apply failed: %v", err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit application!", nil)
		}
	}

	utils.WriteAuditLog(database.Database.Db, strconv.FormatUint(uint64(learnerID), 10), "learner",
		"internship_applied", "internship_application", strconv.FormatUint(uint64(app.ID), 10), fiber.Map{
			"assessment_id": app.AssessmentID,
			"star_rating":   app.StarRating,
		})

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Application submitted!", app)
}

// GetMyApplications lists the caller's applications, newest first.
func GetMyApplications(c *fiber.Ctx) error {
	learnerID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var apps []models.InternshipApplication
	if err := database.Database.Db.Where("learner_id = ?", learnerID).
		Order("created_at desc").Find(&apps).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch applications!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Applications fetched successfully!", apps)
}

// ListApplications lists all applications for admin review, optionally
// filtered by status.
func ListApplications(c *fiber.Ctx) error {
	query := database.Database.Db.Order("applied_at asc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var apps []models.InternshipApplication
	if err := query.Find(&apps).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch applications!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Applications fetched successfully!", apps)
}

// Decide handles an admin decision on an application.
func Decide(c *fiber.Ctx) error {
	adminID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedDecision").(*struct {
		ApplicationID uint   `json:"application_id" validate:"required"`
		Decision      string `json:"decision" validate:"required,oneof=accepted rejected waitlisted"`
		Notes         string `json:"notes"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	app, err := DecideTx(database.Database.Db, adminID, reqData.ApplicationID, reqData.Decision, reqData.Notes)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Application not found!", nil)
		case errors.Is(err, ErrNotPending):
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Application has already been decided!", nil)
		case errors.Is(err, ErrSlotsFull):
			return middleware.JsonResponse(c, fiber.StatusTooManyRequests, false, "All internship slots are taken!", nil)
		default:
			log.Printf("[INTERNSHIP] Decision failed: %v", err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record decision!", nil)
		}
	}

	utils.WriteAuditLog(database.Database.Db, strconv.FormatUint(uint64(adminID), 10), models.RoleAdmin,
		"internship_decision", "internship_application", strconv.FormatUint(uint64(app.ID), 10), fiber.Map{
			"decision": app.Status,
			"notes":    app.DecisionNotes,
		})

	var learner models.User
	if err := database.Database.Db.First(&learner, app.LearnerID).Error; err == nil {
		utils.SendInternshipDecisionEmail(learner.Email, learner.Name, app.Status)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Decision recorded!", app)
}
