package assessmentValidator

import (
	"skillhire/middleware"

	"github.com/gofiber/fiber/v2"
)

// SubmitAssessment validates the final assessment submission body.
func SubmitAssessment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			QuestionnaireID uint  `json:"questionnaire_id"`
			Answers         []int `json:"answers"`
			CourseID        *uint `json:"course_id"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.QuestionnaireID == 0 {
			errors["questionnaire_id"] = "Questionnaire id is required!"
		}
		if len(reqData.Answers) == 0 {
			errors["answers"] = "Answers are required!"
		}
		for _, a := range reqData.Answers {
			if a < 0 {
				errors["answers"] = "Answers must be non-negative option indexes!"
				break
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAssessment", reqData)
		return c.Next()
	}
}
