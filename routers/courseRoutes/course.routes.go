package courseRoutes

import (
	courseControllers "skillhire/controllers/course"
	quizControllers "skillhire/controllers/quiz"
	"skillhire/middleware"
	quizValidators "skillhire/validators/quiz"

	"github.com/gofiber/fiber/v2"
)

func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/course", middleware.JWTMiddleware)

	courseGroup.Get("/list", courseControllers.ListCourses)
	courseGroup.Get("/:courseId", courseControllers.GetCourse)
	courseGroup.Get("/:courseId/progress", quizValidators.CourseParams(), quizControllers.GetProgress)
	courseGroup.Get("/:courseId/module/:moduleId/questions", quizValidators.CourseModuleParams(), courseControllers.GetModuleQuestions)
	courseGroup.Post("/:courseId/module/:moduleId/video", quizValidators.CourseModuleParams(), quizControllers.MarkVideoComplete)
	courseGroup.Post("/:courseId/module/:moduleId/quiz", quizValidators.CourseModuleParams(), quizValidators.SubmitQuiz(), quizControllers.SubmitQuiz)
}
