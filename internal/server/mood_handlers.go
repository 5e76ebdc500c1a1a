package server

import (
	"github.com/gofiber/fiber/v2"
)

// AnalyzeText handles POST /api/analyze-text
func (s *Server) AnalyzeText(c *fiber.Ctx) error {
	var req struct {
		Text string `json:"text"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	res, err := s.moodService.AnalyzeText(c.UserContext(), req.Text)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(res)
}

// PredictEmotion handles POST /api/predict-emotion
func (s *Server) PredictEmotion(c *fiber.Ctx) error {
	var req struct {
		Image string `json:"image"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	res, err := s.moodService.PredictImage(c.UserContext(), viewer(c), req.Image)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(res)
}

// GetMetadata handles GET /api/metadata?url=
func (s *Server) GetMetadata(c *fiber.Ctx) error {
	image, err := s.metadataService.Image(c.UserContext(), c.Query("url"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"image": image})
}

// GetFeatureFlags returns configured feature flags and evaluated state for the viewer.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}
	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(viewer(c)),
	})
}
