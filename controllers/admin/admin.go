package adminController

import (
	"encoding/json"
	"log"
	"skillhire/database"
	"skillhire/middleware"
	"skillhire/models"
	"skillhire/utils"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// UpdateUserStatus activates, suspends or deactivates an account.
func UpdateUserStatus(c *fiber.Ctx) error {
	adminID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedUserStatus").(*struct {
		UserID uint   `json:"user_id" validate:"required"`
		Status string `json:"status" validate:"required,oneof=active suspended inactive"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var user models.User
	if err := database.Database.Db.First(&user, reqData.UserID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	oldStatus := user.Status
	user.Status = reqData.Status
	if err := database.Database.Db.Save(&user).Error; err != nil {
		log.Printf("[ADMIN] Update user status failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update user!", nil)
	}

	utils.WriteAuditLog(database.Database.Db, strconv.FormatUint(uint64(adminID), 10), models.RoleAdmin,
		"user_status_updated", "user", strconv.FormatUint(uint64(user.ID), 10), fiber.Map{
			"old_status": oldStatus,
			"new_status": user.Status,
		})

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User status updated!", fiber.Map{
		"user_id": user.ID,
		"status":  user.Status,
	})
}

// PricingUpdate carries the updatable pricing fields. Anything outside this
// set is dropped before it reaches the config row.
type PricingUpdate struct {
	CourseFee               *int64                 `json:"course_fee"`
	JoiningFee              *int64                 `json:"joining_fee"`
	RetakeFee               *int64                 `json:"retake_fee"`
	ReactivationFee         *int64                 `json:"reactivation_fee"`
	EmployerSubscriptionFee *int64                 `json:"employer_subscription_fee"`
	CvUnlockPricing         map[string]int64       `json:"cv_unlock_pricing"`
	Currency                *string                `json:"currency"`
}

// UpdatePricingConfig applies a partial update to the pricing singleton.
func UpdatePricingConfig(c *fiber.Ctx) error {
	adminID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedPricingUpdate").(*PricingUpdate)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	pricing, err := models.GetPricingConfig(db)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to read pricing!", nil)
	}

	changes := fiber.Map{}
	if reqData.CourseFee != nil {
		changes["course_fee"] = fiber.Map{"old": pricing.CourseFee, "new": *reqData.CourseFee}
		pricing.CourseFee = *reqData.CourseFee
	}
	if reqData.JoiningFee != nil {
		changes["joining_fee"] = fiber.Map{"old": pricing.JoiningFee, "new": *reqData.JoiningFee}
		pricing.JoiningFee = *reqData.JoiningFee
	}
	if reqData.RetakeFee != nil {
		changes["retake_fee"] = fiber.Map{"old": pricing.RetakeFee, "new": *reqData.RetakeFee}
		pricing.RetakeFee = *reqData.RetakeFee
	}
	if reqData.ReactivationFee != nil {
		changes["reactivation_fee"] = fiber.Map{"old": pricing.ReactivationFee, "new": *reqData.ReactivationFee}
		pricing.ReactivationFee = *reqData.ReactivationFee
	}
	if reqData.EmployerSubscriptionFee != nil {
		changes["employer_subscription_fee"] = fiber.Map{"old": pricing.EmployerSubscriptionFee, "new": *reqData.EmployerSubscriptionFee}
		pricing.EmployerSubscriptionFee = *reqData.EmployerSubscriptionFee
	}
	if reqData.CvUnlockPricing != nil {
		table, err := json.Marshal(reqData.CvUnlockPricing)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid CV unlock pricing!", nil)
		}
		changes["cv_unlock_pricing"] = fiber.Map{"old": string(pricing.CvUnlockPricing), "new": string(table)}
		pricing.CvUnlockPricing = table
	}
	if reqData.Currency != nil {
		changes["currency"] = fiber.Map{"old": pricing.Currency, "new": *reqData.Currency}
		pricing.Currency = *reqData.Currency
	}

	if len(changes) == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "No recognized pricing fields provided!", nil)
	}

	pricing.UpdatedBy = adminID
	if err := db.Save(&pricing).Error; err != nil {
		log.Printf("[ADMIN] Update pricing failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update pricing!", nil)
	}

	utils.WriteAuditLog(db, strconv.FormatUint(uint64(adminID), 10), models.RoleAdmin,
		"pricing_updated", "pricing_config", strconv.Itoa(models.ConfigRowID), changes)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Pricing updated!", pricing)
}

// SystemUpdate carries the updatable policy fields.
type SystemUpdate struct {
	InternshipProgramEnabled *bool `json:"internship_program_enabled"`
	InternshipSlots          *int  `json:"internship_slots" validate:"omitempty,min=0"`
	SurveyTimeoutHours       *int  `json:"survey_timeout_hours" validate:"omitempty,min=1"`
}

// UpdateSystemConfig applies a partial update to the policy singleton.
func UpdateSystemConfig(c *fiber.Ctx) error {
	adminID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedSystemUpdate").(*SystemUpdate)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	sysCfg, err := models.GetSystemConfig(db)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to read config!", nil)
	}

	changes := fiber.Map{}
	if reqData.InternshipProgramEnabled != nil {
		changes["internship_program_enabled"] = fiber.Map{"old": sysCfg.InternshipProgramEnabled, "new": *reqData.InternshipProgramEnabled}
		sysCfg.InternshipProgramEnabled = *reqData.InternshipProgramEnabled
	}
	if reqData.InternshipSlots != nil {
		changes["internship_slots"] = fiber.Map{"old": sysCfg.InternshipSlots, "new": *reqData.InternshipSlots}
		sysCfg.InternshipSlots = *reqData.InternshipSlots
	}
	if reqData.SurveyTimeoutHours != nil {
		changes["survey_timeout_hours"] = fiber.Map{"old": sysCfg.SurveyTimeoutHours, "new": *reqData.SurveyTimeoutHours}
		sysCfg.SurveyTimeoutHours = *reqData.SurveyTimeoutHours
	}

	if len(changes) == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "No recognized config fields provided!", nil)
	}

	sysCfg.UpdatedBy = adminID
	if err := db.Save(&sysCfg).Error; err != nil {
		log.Printf("[ADMIN] Update system config failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update config!", nil)
	}

	utils.WriteAuditLog(db, strconv.FormatUint(uint64(adminID), 10), models.RoleAdmin,
		"system_config_updated", "system_config", strconv.Itoa(models.ConfigRowID), changes)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Config updated!", sysCfg)
}

// ListAuditLogs pages through the audit trail, newest first. Supports
// filtering by action and entity type.
func ListAuditLogs(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	query := database.Database.Db.Model(&models.AuditLog{})
	if action := c.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if entityType := c.Query("entity_type"); entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch audit logs!", nil)
	}

	var logs []models.AuditLog
	if err := query.Order("created_at desc").
		Offset((page - 1) * limit).Limit(limit).Find(&logs).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch audit logs!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Audit logs fetched successfully!", fiber.Map{
		"logs":  logs,
		"page":  page,
		"limit": limit,
		"total": total,
	})
}
