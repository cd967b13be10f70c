package courseController

import (
	"skillhire/database"
	"skillhire/middleware"
	"skillhire/models"
	courseModels "skillhire/models/course"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// moduleView is a module without its answer keys. Lock state is computed
// against the caller's progress.
type moduleView struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoURL    string `json:"video_url"`
	OrderIndex  int    `json:"order_index"`
	Locked      bool   `json:"locked"`
}

type questionView struct {
	ID       uint        `json:"id"`
	Question string      `json:"question"`
	Options  interface{} `json:"options"`
}

// ListCourses returns the published catalogue, flagging the courses the
// caller has already purchased.
func ListCourses(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db

	var courses []courseModels.Course
	if err := db.Where("is_published = true AND is_deleted = false").
		Order("created_at asc").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	var accesses []models.CourseAccess
	if err := db.Where("user_id = ?", userID).Find(&accesses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}
	purchased := make(map[uint]bool, len(accesses))
	for _, a := range accesses {
		purchased[a.CourseID] = true
	}

	list := make([]fiber.Map, 0, len(courses))
	for _, course := range courses {
		list = append(list, fiber.Map{
			"id":            course.ID,
			"title":         course.Title,
			"description":   course.Description,
			"author":        course.Author,
			"thumbnail_url": course.ThumbnailURL,
			"purchased":     purchased[course.ID],
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", list)
}

// GetCourse returns one course with its modules, each flagged locked or
// unlocked against the caller's progress. Answer keys never leave the server.
func GetCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID, err := strconv.ParseUint(c.Params("courseId"), 10, 32)
	if err != nil || courseID == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course id!", nil)
	}

	db := database.Database.Db

	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = false", uint(courseID)).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	unlockedOrder := 1
	var progress courseModels.Progress
	if err := db.Where("user_id = ? AND course_id = ?", userID, uint(courseID)).First(&progress).Error; err == nil {
		unlockedOrder = progress.UnlockedModuleOrder
	}

	var modules []courseModels.Module
	if err := db.Where("course_id = ? AND is_deleted = false", uint(courseID)).
		Order("order_index asc").Find(&modules).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course!", nil)
	}

	views := make([]moduleView, 0, len(modules))
	for _, m := range modules {
		views = append(views, moduleView{
			ID:          m.ID,
			Title:       m.Title,
			Description: m.Description,
			VideoURL:    m.VideoURL,
			OrderIndex:  m.OrderIndex,
			Locked:      m.OrderIndex > unlockedOrder,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", fiber.Map{
		"course":                course,
		"modules":               views,
		"unlocked_module_order": unlockedOrder,
	})
}

// GetModuleQuestions returns a module's quiz questions with the answer keys
// stripped. The module must already be unlocked for the caller.
func GetModuleQuestions(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)
	moduleID := c.Locals("moduleID").(int)

	db := database.Database.Db

	var module courseModels.Module
	if err := db.Where("id = ? AND course_id = ? AND is_deleted = false", uint(moduleID), uint(courseID)).
		First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	unlockedOrder := 1
	var progress courseModels.Progress
	if err := db.Where("user_id = ? AND course_id = ?", userID, uint(courseID)).First(&progress).Error; err == nil {
		unlockedOrder = progress.UnlockedModuleOrder
	}
	if module.OrderIndex > unlockedOrder {
		return middleware.JsonResponse(c, fiber.StatusPreconditionFailed, false, "Module is locked. Complete previous modules first!", nil)
	}

	var questions []courseModels.ModuleQuestion
	if err := db.Where("module_id = ? AND is_deleted = false", module.ID).
		Order("order_index asc").Find(&questions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch questions!", nil)
	}

	views := make([]questionView, 0, len(questions))
	for _, q := range questions {
		views = append(views, questionView{ID: q.ID, Question: q.Question, Options: q.Options})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Questions fetched successfully!", views)
}
