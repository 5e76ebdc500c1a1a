package server

import (
	"moodmate/internal/service"

	"github.com/gofiber/fiber/v2"
)

type vibeRequest struct {
	Emotion string   `json:"emotion"`
	Tagline *string  `json:"tagline"`
	Links   []string `json:"links"`
}

// GetVibes handles GET /api/vibes?sort=latest|popular|trending&q=&limit=
func (s *Server) GetVibes(c *fiber.Ctx) error {
	items, err := s.vibeService.Feed(c.UserContext(), viewer(c), service.FeedQuery{
		Sort:  c.Query("sort"),
		Query: c.Query("q"),
		Limit: c.QueryInt("limit", 0),
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(items)
}

// GetVibe handles GET /api/vibes/:id
func (s *Server) GetVibe(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return nil
	}
	p, err := s.vibeService.GetByID(c.UserContext(), id, viewer(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(p)
}

// ShareVibe handles POST /api/vibes
func (s *Server) ShareVibe(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return nil
	}
	var req vibeRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	p, err := s.vibeService.Share(c.UserContext(), service.ShareInput{
		UserID:  userID,
		Emotion: req.Emotion,
		Tagline: req.Tagline,
		Links:   req.Links,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

// UpdateVibe handles PUT /api/vibes/:id
func (s *Server) UpdateVibe(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return nil
	}
	id, err := parseUUID(c, "id")
	if err != nil {
		return nil
	}
	var req vibeRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	p, err := s.vibeService.Update(c.UserContext(), service.UpdateVibeInput{
		UserID:     userID,
		PlaylistID: id,
		Emotion:    req.Emotion,
		Tagline:    req.Tagline,
		Links:      req.Links,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(p)
}

// DeleteVibe handles DELETE /api/vibes/:id
func (s *Server) DeleteVibe(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return nil
	}
	id, err := parseUUID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.vibeService.Delete(c.UserContext(), userID, id); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetQuota handles GET /api/me/quota
func (s *Server) GetQuota(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return nil
	}
	q, err := s.vibeService.Quota(c.UserContext(), userID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(q)
}
