package paymentRoutes

import (
	paymentControllers "skillhire/controllers/payment"
	"skillhire/middleware"
	"skillhire/models"
	paymentValidators "skillhire/validators/payment"

	"github.com/gofiber/fiber/v2"
)

func SetupPaymentRoutes(app *fiber.App) {
	// The webhook authenticates by signature, not by JWT.
	app.Post("/webhook/stripe", paymentControllers.StripeWebhook)

	paymentGroup := app.Group("/payment", middleware.JWTMiddleware)

	paymentGroup.Post("/intent", paymentValidators.CreateIntent(), paymentControllers.CreatePaymentIntent)
	paymentGroup.Post("/demo-grant", paymentValidators.DemoGrant(), paymentControllers.DemoGrant)
	paymentGroup.Get("/list", paymentControllers.GetMyPayments)

	paymentGroup.Post("/cv-unlock", middleware.RequireRole(models.RoleEmployer),
		paymentValidators.CvUnlock(), paymentControllers.UnlockCandidateCV)
	paymentGroup.Post("/subscription/checkout", middleware.RequireRole(models.RoleEmployer),
		paymentControllers.CreateSubscriptionCheckout)
}
