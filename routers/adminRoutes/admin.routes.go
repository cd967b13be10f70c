package adminRoutes

import (
	adminControllers "skillhire/controllers/admin"
	"skillhire/middleware"
	"skillhire/models"
	adminValidators "skillhire/validators/admin"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin))

	adminGroup.Patch("/user/status", adminValidators.UserStatus(), adminControllers.UpdateUserStatus)
	adminGroup.Patch("/config/pricing", adminValidators.PricingUpdate(), adminControllers.UpdatePricingConfig)
	adminGroup.Patch("/config/system", adminValidators.SystemUpdate(), adminControllers.UpdateSystemConfig)
	adminGroup.Get("/audit-logs", adminControllers.ListAuditLogs)
}
