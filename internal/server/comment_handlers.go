package server

import (
	"moodmate/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// GetComments returns the flat, oldest-first comments of a vibe (public)
func (s *Server) GetComments(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return nil
	}
	comments, err := s.commentService.List(c.UserContext(), id, viewer(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(comments)
}

// GetCommentThread returns the comments of a vibe as a reply tree (public)
func (s *Server) GetCommentThread(c *fiber.Ctx) error {
	id, err := parseUUID(c, "id")
	if err != nil {
		return nil
	}
	tree, err := s.commentService.Thread(c.UserContext(), id, viewer(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(tree)
}

// CreateComment posts a comment or reply on a vibe (protected)
func (s *Server) CreateComment(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return nil
	}
	playlistID, err := parseUUID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content  string     `json:"content"`
		ParentID *uuid.UUID `json:"parent_id"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	created, err := s.commentService.Post(c.UserContext(), service.PostCommentInput{
		UserID:     userID,
		PlaylistID: playlistID,
		Content:    req.Content,
		ParentID:   req.ParentID,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// DeleteComment removes a comment and its replies (protected, author only)
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return nil
	}
	id, err := parseUUID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.commentService.Delete(c.UserContext(), userID, id); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
