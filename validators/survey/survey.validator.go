package surveyValidator

import (
	"skillhire/middleware"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Respond validates a survey response body.
func Respond() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Token    string `json:"token" validate:"required"`
			Response string `json:"response" validate:"required"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Token = strings.TrimSpace(reqData.Token)
		if reqData.Token == "" {
			errors["token"] = "Survey token is required!"
		}

		reqData.Response = strings.ToLower(strings.TrimSpace(reqData.Response))
		if reqData.Response == "" {
			errors["response"] = "Response is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedSurveyResponse", reqData)
		return c.Next()
	}
}
