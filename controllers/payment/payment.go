package paymentController

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"skillhire/config"
	"skillhire/database"
	"skillhire/middleware"
	"skillhire/models"
	"skillhire/utils"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreatePaymentIntent creates a Stripe payment intent and the matching
// local Payment record (status pending). The local reference travels in the
// intent metadata so the webhook can correlate back.
func CreatePaymentIntent(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	if !config.PaymentsEnabled() {
		return middleware.JsonResponse(c, fiber.StatusPreconditionFailed, false, "Payments are not configured!", nil)
	}

	reqData, ok := c.Locals("validatedPaymentIntent").(*struct {
		PaymentType string `json:"payment_type" validate:"required"`
		Amount      int64  `json:"amount" validate:"required,min=1"`
		Currency    string `json:"currency"`
		CourseID    uint   `json:"course_id"`
		CandidateID uint   `json:"candidate_id"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	currency := reqData.Currency
	if currency == "" {
		pricing, err := models.GetPricingConfig(database.Database.Db)
		if err == nil {
			currency = pricing.Currency
		} else {
			currency = "GBP"
		}
	}

	reference := uuid.NewString()
	metadata := map[string]string{
		"userId":      strconv.FormatUint(uint64(userID), 10),
		"paymentId":   reference,
		"paymentType": reqData.PaymentType,
	}
	if reqData.CourseID != 0 {
		metadata["courseId"] = strconv.FormatUint(uint64(reqData.CourseID), 10)
	}
	if reqData.CandidateID != 0 {
		metadata["candidateId"] = strconv.FormatUint(uint64(reqData.CandidateID), 10)
		metadata["employerId"] = strconv.FormatUint(uint64(userID), 10)
	}

	intent, err := utils.NewStripeClient().CreatePaymentIntent(reqData.Amount, currency, metadata)
	if err != nil {
		log.Printf("[PAYMENT] Create intent failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create payment!", nil)
	}

	metaJSON, _ := json.Marshal(metadata)
	payment := models.Payment{
		Reference:        reference,
		UserID:           userID,
		ProviderIntentID: intent.ID,
		Amount:           reqData.Amount,
		Currency:         currency,
		Status:           models.PaymentStatusPending,
		Type:             reqData.PaymentType,
		Metadata:         metaJSON,
	}
	if err := database.Database.Db.Create(&payment).Error; err != nil {
		log.Printf("[PAYMENT] Failed to save payment record: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create payment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment intent created!", fiber.Map{
		"client_secret": intent.ClientSecret,
		"payment_id":    reference,
	})
}

// UnlockCandidateCV prices a CV unlock from the candidate's star rating and
// creates the payment intent for it. Requires an active subscription.
func UnlockCandidateCV(c *fiber.Ctx) error {
	employerID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	if !config.PaymentsEnabled() {
		return middleware.JsonResponse(c, fiber.StatusPreconditionFailed, false, "Payments are not configured!", nil)
	}

	reqData, ok := c.Locals("validatedCvUnlock").(*struct {
		CandidateID uint `json:"candidate_id" validate:"required"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var sub models.Subscription
	if err := db.Where("employer_id = ? AND status IN ?", employerID,
		[]string{models.SubscriptionActive, models.SubscriptionTrialing}).First(&sub).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusPreconditionFailed, false, "Active subscription required!", nil)
	}

	var profile models.Profile
	if err := db.Where("user_id = ?", reqData.CandidateID).First(&profile).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Candidate not found!", nil)
	}

	pricing, err := models.GetPricingConfig(db)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to read pricing!", nil)
	}
	amount := cvUnlockPrice(pricing, profile.LatestStarRating)

	reference := uuid.NewString()
	metadata := map[string]string{
		"userId":      strconv.FormatUint(uint64(employerID), 10),
		"paymentId":   reference,
		"paymentType": models.PaymentTypeCvUnlock,
		"candidateId": strconv.FormatUint(uint64(reqData.CandidateID), 10),
		"employerId":  strconv.FormatUint(uint64(employerID), 10),
	}

	intent, err := utils.NewStripeClient().CreatePaymentIntent(amount, pricing.Currency, metadata)
	if err != nil {
		log.Printf("[PAYMENT] Create CV unlock intent failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create payment!", nil)
	}

	metaJSON, _ := json.Marshal(metadata)
	payment := models.Payment{
		Reference:        reference,
		UserID:           employerID,
		ProviderIntentID: intent.ID,
		Amount:           amount,
		Currency:         pricing.Currency,
		Status:           models.PaymentStatusPending,
		Type:             models.PaymentTypeCvUnlock,
		Metadata:         metaJSON,
	}
	if err := db.Create(&payment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create payment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "CV unlock payment created!", fiber.Map{
		"client_secret": intent.ClientSecret,
		"payment_id":    reference,
		"price":         amount,
	})
}

// cvUnlockPrice reads the "<n>-star" price table, falling back to a rating
// multiple and then a flat default.
func cvUnlockPrice(pricing models.PricingConfig, starRating int) int64 {
	var table map[string]int64
	if len(pricing.CvUnlockPricing) > 0 {
		if err := json.Unmarshal(pricing.CvUnlockPricing, &table); err == nil {
			if amount, ok := table[fmt.Sprintf("%d-star", starRating)]; ok {
				return amount
			}
		}
	}
	if starRating > 0 {
		return int64(100 * starRating)
	}
	return 500
}

// CreateSubscriptionCheckout creates a Stripe checkout session for the
// employer's monthly subscription and returns its URL.
func CreateSubscriptionCheckout(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	if !config.PaymentsEnabled() {
		return middleware.JsonResponse(c, fiber.StatusPreconditionFailed, false, "Payments are not configured!", nil)
	}

	pricing, err := models.GetPricingConfig(database.Database.Db)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to read pricing!", nil)
	}

	successURL := config.AppConfig.AppURL + "/employer/subscription?success=1"
	cancelURL := config.AppConfig.AppURL + "/employer/subscription?cancel=1"

	session, err := utils.NewStripeClient().CreateSubscriptionCheckout(userID, pricing.EmployerSubscriptionFee, pricing.Currency, successURL, cancelURL)
	if err != nil {
		log.Printf("[PAYMENT] Create checkout session failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create checkout session!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Checkout session created!", fiber.Map{
		"url": session.URL,
	})
}

// DemoGrantTx applies one demo grant with the same postconditions as the
// webhook path, using a locally generated correlation id. Callers must have
// already checked that no payment processor is configured.
func DemoGrantTx(db *gorm.DB, userID uint, grantType string, courseID, candidateID uint) (string, error) {
	reference := "demo_" + uuid.NewString()

	err := db.Transaction(func(tx *gorm.DB) error {
		if grantType == models.PaymentTypeSubscription {
			end := time.Now().Add(30 * 24 * time.Hour)
			start := time.Now()
			if err := UpsertSubscription(tx, userID, SubscriptionInfo{
				ProviderSubID:      reference,
				Status:             models.SubscriptionActive,
				PlanName:           "Monthly (Demo)",
				PlanAmount:         0,
				PlanInterval:       "month",
				CurrentPeriodStart: &start,
				CurrentPeriodEnd:   &end,
			}); err != nil {
				return err
			}
		} else {
			if err := ApplyGrant(tx, grantType, GrantParams{
				UserID:      userID,
				CourseID:    courseID,
				CandidateID: candidateID,
				EmployerID:  userID,
				PaymentRef:  reference,
				Amount:      0,
			}); err != nil {
				return err
			}
		}

		utils.WriteAuditLog(tx, strconv.FormatUint(uint64(userID), 10), "user", "demo_grant", "payment", reference, fiber.Map{
			"grant_type": grantType,
		})
		return nil
	})
	if err != nil {
		return "", err
	}
	return reference, nil
}

// DemoGrant unlocks access without real payment. Refused whenever a
// payment processor is configured, so a paid deployment can never be
// free-unlocked.
func DemoGrant(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	if config.PaymentsEnabled() {
		return middleware.JsonResponse(c, fiber.StatusPreconditionFailed, false, "Demo grants are only available when Stripe is not configured!", nil)
	}

	reqData, ok := c.Locals("validatedDemoGrant").(*struct {
		Type        string `json:"type"`
		CourseID    uint   `json:"course_id"`
		CandidateID uint   `json:"candidate_id"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Type == models.PaymentTypeCvUnlock && reqData.CandidateID == userID {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Cannot unlock your own CV!", nil)
	}

	reference, err := DemoGrantTx(database.Database.Db, userID, reqData.Type, reqData.CourseID, reqData.CandidateID)
	if err != nil {
		switch {
		case errors.Is(err, ErrCourseRequired), errors.Is(err, ErrCandidateRequired), errors.Is(err, ErrUnknownGrantType):
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, err.Error(), nil)
		case errors.Is(err, gorm.ErrRecordNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Referenced record not found!", nil)
		default:
			log.Printf("[PAYMENT] Demo grant failed: %v", err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to apply demo grant!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Demo grant applied!", fiber.Map{
		"reference": reference,
	})
}

// GetMyPayments lists the caller's payment history, newest first
func GetMyPayments(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var payments []models.Payment
	if err := database.Database.Db.Where("user_id = ? AND is_deleted = false", userID).
		Order("created_at desc").Find(&payments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch payments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payments fetched successfully!", payments)
}
