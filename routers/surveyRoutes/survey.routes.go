package surveyRoutes

import (
	surveyControllers "skillhire/controllers/survey"
	"skillhire/middleware"
	surveyValidators "skillhire/validators/survey"

	"github.com/gofiber/fiber/v2"
)

func SetupSurveyRoutes(app *fiber.App) {
	surveyGroup := app.Group("/survey", middleware.JWTMiddleware)

	surveyGroup.Post("/respond", surveyValidators.Respond(), surveyControllers.RespondToSurvey)
	surveyGroup.Get("/status", surveyControllers.GetSurveyStatus)
}
