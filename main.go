package main

import (
	"log"
	"skillhire/config"
	"skillhire/database"
	adminRoutes "skillhire/routers/adminRoutes"
	assessmentRoutes "skillhire/routers/assessmentRoutes"
	authRoutes "skillhire/routers/authRoutes"
	courseRoutes "skillhire/routers/courseRoutes"
	employerRoutes "skillhire/routers/employerRoutes"
	internshipRoutes "skillhire/routers/internshipRoutes"
	paymentRoutes "skillhire/routers/paymentRoutes"
	surveyRoutes "skillhire/routers/surveyRoutes"
	"skillhire/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",  // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	authRoutes.SetupAuthRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	assessmentRoutes.SetupAssessmentRoutes(app)
	paymentRoutes.SetupPaymentRoutes(app)
	internshipRoutes.SetupInternshipRoutes(app)
	surveyRoutes.SetupSurveyRoutes(app)
	employerRoutes.SetupEmployerRoutes(app)
	adminRoutes.SetupAdminRoutes(app)

	utils.InitializeSurveyScheduler()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
