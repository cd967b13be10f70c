package adminValidator

import (
	adminController "skillhire/controllers/admin"
	"skillhire/middleware"
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

// UserStatus validates a user status update body.
func UserStatus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			UserID uint   `json:"user_id" validate:"required"`
			Status string `json:"status" validate:"required,oneof=active suspended inactive"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		c.Locals("validatedUserStatus", reqData)
		return c.Next()
	}
}

// PricingUpdate validates a pricing config update body. Unknown fields are
// dropped by the JSON decode into the allow-listed struct.
func PricingUpdate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(adminController.PricingUpdate)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		for field, fee := range map[string]*int64{
			"course_fee":                reqData.CourseFee,
			"joining_fee":               reqData.JoiningFee,
			"retake_fee":                reqData.RetakeFee,
			"reactivation_fee":          reqData.ReactivationFee,
			"employer_subscription_fee": reqData.EmployerSubscriptionFee,
		} {
			if fee != nil && *fee < 0 {
				errors[field] = "Fee cannot be negative!"
			}
		}
		for band, amount := range reqData.CvUnlockPricing {
			if amount < 0 {
				errors["cv_unlock_pricing"] = "Price for " + band + " cannot be negative!"
			}
		}
		if reqData.Currency != nil && len(*reqData.Currency) != 3 {
			errors["currency"] = "Currency must be a 3-letter code!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedPricingUpdate", reqData)
		return c.Next()
	}
}

// SystemUpdate validates a system config update body.
func SystemUpdate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(adminController.SystemUpdate)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		c.Locals("validatedSystemUpdate", reqData)
		return c.Next()
	}
}
