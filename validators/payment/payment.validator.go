package paymentValidator

import (
	"skillhire/middleware"
	"skillhire/models"
	"strings"

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

// CreateIntent validates a payment intent request.
func CreateIntent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			PaymentType string `json:"payment_type" validate:"required"`
			Amount      int64  `json:"amount" validate:"required,min=1"`
			Currency    string `json:"currency"`
			CourseID    uint   `json:"course_id"`
			CandidateID uint   `json:"candidate_id"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		errors := make(map[string]string)
		if !models.IsValidPaymentType(reqData.PaymentType) {
			errors["payment_type"] = "Unknown payment type!"
		}
		if reqData.PaymentType == models.PaymentTypeCoursePurchase && reqData.CourseID == 0 {
			errors["course_id"] = "Course id is required for course purchases!"
		}
		if reqData.PaymentType == models.PaymentTypeCvUnlock && reqData.CandidateID == 0 {
			errors["candidate_id"] = "Candidate id is required for CV unlocks!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedPaymentIntent", reqData)
		return c.Next()
	}
}

// CvUnlock validates a CV unlock request.
func CvUnlock() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			CandidateID uint `json:"candidate_id" validate:"required"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		c.Locals("validatedCvUnlock", reqData)
		return c.Next()
	}
}

// DemoGrant validates a demo grant request.
func DemoGrant() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Type        string `json:"type"`
			CourseID    uint   `json:"course_id"`
			CandidateID uint   `json:"candidate_id"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		if !models.IsValidPaymentType(reqData.Type) {
			errors["type"] = "Unknown grant type!"
		}
		if reqData.Type == models.PaymentTypeCoursePurchase && reqData.CourseID == 0 {
			errors["course_id"] = "Course id is required for course purchases!"
		}
		if reqData.Type == models.PaymentTypeCvUnlock && reqData.CandidateID == 0 {
			errors["candidate_id"] = "Candidate id is required for CV unlocks!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedDemoGrant", reqData)
		return c.Next()
	}
}
