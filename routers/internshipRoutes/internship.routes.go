package internshipRoutes

import (
	internshipControllers "skillhire/controllers/internship"
	"skillhire/middleware"
	"skillhire/models"
	internshipValidators "skillhire/validators/internship"

	"github.com/gofiber/fiber/v2"
)

func SetupInternshipRoutes(app *fiber.App) {
	internshipGroup := app.Group("/internship", middleware.JWTMiddleware)

	internshipGroup.Post("/apply", middleware.RequireRole(models.RoleLearner, models.RoleCandidate),
		internshipValidators.Apply(), internshipControllers.Apply)
	internshipGroup.Get("/list", internshipControllers.GetMyApplications)

	internshipGroup.Get("/admin/list", middleware.RequireRole(models.RoleAdmin), internshipControllers.ListApplications)
	internshipGroup.Post("/admin/decide", middleware.RequireRole(models.RoleAdmin),
		internshipValidators.Decide(), internshipControllers.Decide)
}
