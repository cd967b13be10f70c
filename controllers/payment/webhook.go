package paymentController

import (
	"encoding/json"
	"errors"
	"log"
	"skillhire/config"
	"skillhire/database"
	"skillhire/models"
	"skillhire/utils"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// webhookTolerance bounds how old a signed event may be.
const webhookTolerance = 5 * time.Minute

type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type paymentIntentObject struct {
	ID       string            `json:"id"`
	Amount   int64             `json:"amount"`
	Metadata map[string]string `json:"metadata"`
}

type checkoutSessionObject struct {
	ID           string            `json:"id"`
	Mode         string            `json:"mode"`
	Subscription string            `json:"subscription"`
	Metadata     map[string]string `json:"metadata"`
}

// StripeWebhook receives signed processor events. Signature verification
// happens once, before any state-changing transaction; an unverifiable
// signature is rejected with no side effects. Handler failures after
// verification return 500 so the processor redelivers — every grant routine
// is idempotent, so redelivery is safe.
func StripeWebhook(c *fiber.Ctx) error {
	if !config.PaymentsEnabled() || config.AppConfig.StripeWebhookSecret == "" {
		log.Println("[WEBHOOK] Stripe webhook not configured")
		return c.Status(fiber.StatusInternalServerError).SendString("Webhook not configured")
	}

	body := c.Body()
	signature := c.Get("Stripe-Signature")
	if err := utils.VerifyWebhookSignature(body, signature, config.AppConfig.StripeWebhookSecret, webhookTolerance); err != nil {
		log.Printf("[WEBHOOK] Signature verification failed: %v", err)
		return c.Status(fiber.StatusBadRequest).SendString("Webhook signature verification failed")
	}

	var event stripeEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Malformed event payload")
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var intent paymentIntentObject
		if err := json.Unmarshal(event.Data.Object, &intent); err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("Malformed payment intent")
		}
		if err := handlePaymentSucceeded(database.Database.Db, intent); err != nil {
			log.Printf("[WEBHOOK] Handler error for %s: %v", event.ID, err)
			return c.Status(fiber.StatusInternalServerError).SendString("Handler error")
		}
	case "checkout.session.completed":
		var session checkoutSessionObject
		if err := json.Unmarshal(event.Data.Object, &session); err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("Malformed checkout session")
		}
		if err := handleCheckoutCompleted(database.Database.Db, session); err != nil {
			log.Printf("[WEBHOOK] Subscription handler error for %s: %v", event.ID, err)
			return c.Status(fiber.StatusInternalServerError).SendString("Handler error")
		}
	}

	return c.SendStatus(fiber.StatusOK)
}

// handlePaymentSucceeded transitions the local Payment to succeeded and
// applies the matching grant. The status transition and the grant share one
// transaction; on replay the transition is a no-op, the grant re-applies
// idempotently and no second audit entry is written.
func handlePaymentSucceeded(db *gorm.DB, intent paymentIntentObject) error {
	reference := intent.Metadata["paymentId"]
	paymentType := intent.Metadata["paymentType"]
	if reference == "" || paymentType == "" {
		return errors.New("event metadata missing paymentId or paymentType")
	}

	var payment models.Payment
	var transitioned bool
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("reference = ?", reference).First(&payment).Error; err != nil {
			return err
		}

		transitioned = payment.Status != models.PaymentStatusSucceeded
		if transitioned {
			now := time.Now()
			if err := tx.Model(&payment).Updates(map[string]interface{}{
				"status":       models.PaymentStatusSucceeded,
				"completed_at": now,
			}).Error; err != nil {
				return err
			}
		}

		// Re-apply even when already succeeded: a crash between the status
		// update and the grant must not leave the grant lost forever.
		params := GrantParams{
			UserID:      payment.UserID,
			CourseID:    parseUintMeta(intent.Metadata["courseId"]),
			CandidateID: parseUintMeta(intent.Metadata["candidateId"]),
			EmployerID:  parseUintMeta(intent.Metadata["employerId"]),
			PaymentRef:  reference,
			Amount:      intent.Amount,
		}
		if err := ApplyGrant(tx, paymentType, params); err != nil {
			return err
		}

		if transitioned {
			utils.WriteAuditLog(tx, "system", "system", "payment_processed", "payment", reference, fiber.Map{
				"payment_type": paymentType,
				"status":       models.PaymentStatusSucceeded,
				"amount":       intent.Amount,
			})
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Email after commit, best effort off the critical path.
	if transitioned {
		switch paymentType {
		case models.PaymentTypeCvUnlock:
			employerID := parseUintMeta(intent.Metadata["employerId"])
			if employerID == 0 {
				employerID = payment.UserID
			}
			var employer models.User
			if err := db.First(&employer, employerID).Error; err == nil {
				utils.SendCvUnlockedEmail(employer.Email, parseUintMeta(intent.Metadata["candidateId"]))
			}
		case models.PaymentTypeReactivation:
			var user models.User
			if err := db.First(&user, payment.UserID).Error; err == nil {
				utils.SendReactivationEmail(user.Email, user.Name)
			}
		}
	}
	return nil
}

// handleCheckoutCompleted upserts the employer subscription from a
// subscription-mode checkout. The subscription details are fetched from the
// processor before the transaction begins.
func handleCheckoutCompleted(db *gorm.DB, session checkoutSessionObject) error {
	if session.Mode != "subscription" || session.Subscription == "" {
		return nil
	}
	employerID := parseUintMeta(session.Metadata["userId"])
	if employerID == 0 {
		return errors.New("checkout session metadata missing userId")
	}

	sub, err := utils.NewStripeClient().RetrieveSubscription(session.Subscription)
	if err != nil {
		return err
	}

	info := SubscriptionInfo{
		ProviderSubID:      sub.ID,
		ProviderCustomerID: sub.Customer,
		Status:             sub.Status,
		PlanName:           "Monthly",
		PlanInterval:       "month",
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
	}
	if len(sub.Items.Data) > 0 {
		info.PlanAmount = sub.Items.Data[0].Price.UnitAmount
		if sub.Items.Data[0].Price.Recurring.Interval != "" {
			info.PlanInterval = sub.Items.Data[0].Price.Recurring.Interval
		}
	}
	if sub.CurrentPeriodStart > 0 {
		start := time.Unix(sub.CurrentPeriodStart, 0)
		info.CurrentPeriodStart = &start
	}
	if sub.CurrentPeriodEnd > 0 {
		end := time.Unix(sub.CurrentPeriodEnd, 0)
		info.CurrentPeriodEnd = &end
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Subscription{}).Where("provider_sub_id = ?", sub.ID).Count(&count).Error; err != nil {
			return err
		}
		if err := UpsertSubscription(tx, employerID, info); err != nil {
			return err
		}
		if count == 0 {
			utils.WriteAuditLog(tx, "system", "system", "subscription_activated", "subscription", sub.ID, fiber.Map{
				"employer_id": employerID,
				"status":      sub.Status,
			})
		}
		return nil
	})
}

func parseUintMeta(s string) uint {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}
