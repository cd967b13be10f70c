package assessmentRoutes

import (
	assessmentControllers "skillhire/controllers/assessment"
	"skillhire/middleware"
	assessmentValidators "skillhire/validators/assessment"

	"github.com/gofiber/fiber/v2"
)

func SetupAssessmentRoutes(app *fiber.App) {
	assessmentGroup := app.Group("/assessment", middleware.JWTMiddleware)

	assessmentGroup.Post("/submit", assessmentValidators.SubmitAssessment(), assessmentControllers.SubmitAssessment)
	assessmentGroup.Get("/list", assessmentControllers.GetMyAssessments)
	assessmentGroup.Get("/certificates", assessmentControllers.GetMyCertificates)
}
