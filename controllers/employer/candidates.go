package employerController

import (
	"skillhire/database"
	"skillhire/middleware"
	"skillhire/models"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// candidateSummary is the subscription-gated search view. Contact details
// stay hidden until the employer pays for a CV unlock.
type candidateSummary struct {
	UserID     uint   `json:"user_id"`
	Headline   string `json:"headline"`
	StarRating int    `json:"star_rating"`
	Score      int    `json:"score"`
	Role       string `json:"role"`
	Unlocked   bool   `json:"unlocked"`
}

func hasActiveSubscription(db *gorm.DB, employerID uint) bool {
	var count int64
	db.Model(&models.Subscription{}).
		Where("employer_id = ? AND status IN ?", employerID,
			[]string{models.SubscriptionActive, models.SubscriptionTrialing}).
		Count(&count)
	return count > 0
}

// ListCandidates returns visible rated profiles. Requires an active or
// trialing subscription.
func ListCandidates(c *fiber.Ctx) error {
	employerID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db
	if !hasActiveSubscription(db, employerID) {
		return middleware.JsonResponse(c, fiber.StatusPreconditionFailed, false, "Active subscription required!", nil)
	}

	query := db.Model(&models.Profile{}).Where("visible_to_employers = true AND latest_star_rating > 0")
	if minStars, err := strconv.Atoi(c.Query("min_stars", "0")); err == nil && minStars > 0 {
		query = query.Where("latest_star_rating >= ?", minStars)
	}

	var profiles []models.Profile
	if err := query.Order("latest_star_rating desc, latest_score desc").Find(&profiles).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch candidates!", nil)
	}

	var unlocks []models.CvUnlock
	if err := db.Where("employer_id = ?", employerID).Find(&unlocks).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch candidates!", nil)
	}
	unlocked := make(map[uint]bool, len(unlocks))
	for _, u := range unlocks {
		unlocked[u.CandidateID] = true
	}

	summaries := make([]candidateSummary, 0, len(profiles))
	for _, p := range profiles {
		summaries = append(summaries, candidateSummary{
			UserID:     p.UserID,
			Headline:   p.Headline,
			StarRating: p.LatestStarRating,
			Score:      p.LatestScore,
			Role:       p.Role,
			Unlocked:   unlocked[p.UserID],
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Candidates fetched successfully!", summaries)
}

// GetCandidate returns one candidate's contact details from the employer's
// paid unlock snapshot. Without an unlock only the public summary is shown.
func GetCandidate(c *fiber.Ctx) error {
	employerID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	candidateID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || candidateID == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid candidate id!", nil)
	}

	db := database.Database.Db
	if !hasActiveSubscription(db, employerID) {
		return middleware.JsonResponse(c, fiber.StatusPreconditionFailed, false, "Active subscription required!", nil)
	}

	var profile models.Profile
	if err := db.Where("user_id = ? AND visible_to_employers = true", uint(candidateID)).First(&profile).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Candidate not found!", nil)
	}

	summary := candidateSummary{
		UserID:     profile.UserID,
		Headline:   profile.Headline,
		StarRating: profile.LatestStarRating,
		Score:      profile.LatestScore,
		Role:       profile.Role,
	}

	var unlock models.CvUnlock
	if err := db.Where("employer_id = ? AND candidate_id = ?", employerID, uint(candidateID)).
		Order("unlocked_at desc").First(&unlock).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Candidate fetched successfully!", fiber.Map{
			"candidate": summary,
			"unlocked":  false,
		})
	}

	summary.Unlocked = true
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Candidate fetched successfully!", fiber.Map{
		"candidate": summary,
		"unlocked":  true,
		"contact": fiber.Map{
			"cv_url": unlock.CandidateCvURL,
			"email":  unlock.CandidateEmail,
			"phone":  unlock.CandidatePhone,
		},
	})
}
