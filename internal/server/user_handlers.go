package server

import (
	"time"

	"moodmate/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetDashboard handles GET /api/me/dashboard
func (s *Server) GetDashboard(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return nil
	}
	d, err := s.dashboardService.Get(c.UserContext(), userID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(d)
}

// GetAnalytics handles GET /api/me/analytics?days=
func (s *Server) GetAnalytics(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return nil
	}
	counts, err := s.analyticsService.EmotionCounts(c.UserContext(), userID, time.Now(), c.QueryInt("days", 0))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(counts)
}

// GetProfile handles GET /api/profiles/:id
func (s *Server) GetProfile(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return nil
	}
	p, err := s.profileService.Get(c.UserContext(), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(p)
}

// UpdateMyProfile handles PUT /api/profiles/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return nil
	}
	var req struct {
		FullName  string `json:"full_name"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	p, err := s.profileService.Upsert(c.UserContext(), service.UpsertProfileInput{
		UserID:    userID,
		FullName:  req.FullName,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(p)
}
