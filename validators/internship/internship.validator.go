package internshipValidator

import (
	"skillhire/middleware"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

func validationErrors(err error) map[string]string {
	errors := make(map[string]string)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			errors[strings.ToLower(fe.Field())] = "Invalid value for " + fe.Field() + "!"
		}
	} else {
		errors["body"] = "Invalid request body!"
	}
	return errors
}

// Apply validates an internship application body.
func Apply() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			AssessmentID       uint       `json:"assessment_id" validate:"required"`
			Availability       string     `json:"availability"`
			PreferredStartDate *time.Time `json:"preferred_start_date"`
			CommitmentAgreed   bool       `json:"commitment_agreed"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		if !reqData.CommitmentAgreed {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"commitment_agreed": "You must agree to the internship commitment!",
			})
		}

		c.Locals("validatedApplication", reqData)
		return c.Next()
	}
}

// Decide validates an admin decision body.
func Decide() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			ApplicationID uint   `json:"application_id" validate:"required"`
			Decision      string `json:"decision" validate:"required,oneof=accepted rejected waitlisted"`
			Notes         string `json:"notes"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		c.Locals("validatedDecision", reqData)
		return c.Next()
	}
}
