package quizValidator

import (
	"skillhire/middleware"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// CourseParams validates the :courseId route param.
func CourseParams() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, err := strconv.Atoi(c.Params("courseId"))
		if err != nil || courseID < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course id!", nil)
		}

		c.Locals("courseID", courseID)
		return c.Next()
	}
}

// CourseModuleParams validates the :courseId and :moduleId route params.
func CourseModuleParams() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, err := strconv.Atoi(c.Params("courseId"))
		if err != nil || courseID < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course id!", nil)
		}

		moduleID, err := strconv.Atoi(c.Params("moduleId"))
		if err != nil || moduleID < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid module id!", nil)
		}

		c.Locals("courseID", courseID)
		c.Locals("moduleID", moduleID)
		return c.Next()
	}
}

// SubmitQuiz validates the quiz submission body.
func SubmitQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Answers []int `json:"answers"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

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

		c.Locals("validatedQuizSubmission", reqData)
		return c.Next()
	}
}
