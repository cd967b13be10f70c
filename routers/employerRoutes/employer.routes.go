package employerRoutes

import (
	employerControllers "skillhire/controllers/employer"
	"skillhire/middleware"
	"skillhire/models"

	"github.com/gofiber/fiber/v2"
)

func SetupEmployerRoutes(app *fiber.App) {
	employerGroup := app.Group("/employer", middleware.JWTMiddleware, middleware.RequireRole(models.RoleEmployer))

	employerGroup.Get("/candidates", employerControllers.ListCandidates)
	employerGroup.Get("/candidates/:id", employerControllers.GetCandidate)
}
