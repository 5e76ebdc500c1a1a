package server

import (
	"context"

	"moodmate/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type likeOp func(ctx context.Context, userID, targetID uuid.UUID) (models.LikeState, error)

// likeHandler adapts a like mutation into a handler returning {liked, likes}.
func likeHandler(op likeOp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := currentUser(c)
		if err != nil {
			return nil
		}
		id, err := parseUUID(c, "id")
		if err != nil {
			return nil
		}
		state, err := op(c.UserContext(), userID, id)
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(state)
	}
}

func setLike(set func(context.Context, uuid.UUID, uuid.UUID, bool) (models.LikeState, error), liked bool) likeOp {
	return func(ctx context.Context, userID, targetID uuid.UUID) (models.LikeState, error) {
		return set(ctx, userID, targetID, liked)
	}
}

// ToggleVibeLike handles POST /api/vibes/:id/like/toggle
func (s *Server) ToggleVibeLike(c *fiber.Ctx) error {
	return likeHandler(s.likeService.TogglePlaylist)(c)
}

// LikeVibe handles POST /api/vibes/:id/like
func (s *Server) LikeVibe(c *fiber.Ctx) error {
	return likeHandler(setLike(s.likeService.SetPlaylist, true))(c)
}

// UnlikeVibe handles DELETE /api/vibes/:id/like
func (s *Server) UnlikeVibe(c *fiber.Ctx) error {
	return likeHandler(setLike(s.likeService.SetPlaylist, false))(c)
}

// ToggleCommentLike handles POST /api/comments/:id/like/toggle
func (s *Server) ToggleCommentLike(c *fiber.Ctx) error {
	return likeHandler(s.likeService.ToggleComment)(c)
}

// LikeComment handles POST /api/comments/:id/like
func (s *Server) LikeComment(c *fiber.Ctx) error {
	return likeHandler(setLike(s.likeService.SetComment, true))(c)
}

// UnlikeComment handles DELETE /api/comments/:id/like
func (s *Server) UnlikeComment(c *fiber.Ctx) error {
	return likeHandler(setLike(s.likeService.SetComment, false))(c)
}
