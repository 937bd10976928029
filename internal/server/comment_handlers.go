package server

import (
	"ripple/internal/models"
	"ripple/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/posts/:id/comments. Returns the post's
// top-level comments, newest first, with current author names.
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id", "post ID")
	if err != nil {
		return nil
	}

	comments, err := s.commentSync.TopLevelSnapshot(c.Context(), postID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"comments": comments})
}

// GetReplies handles GET /api/posts/:id/comments/:commentId/replies.
// Returns the comment's replies, oldest first.
func (s *Server) GetReplies(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id", "post ID")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId", "comment ID")
	if err != nil {
		return nil
	}

	replies, err := s.commentSync.RepliesSnapshot(c.Context(), postID, commentID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"replies": replies})
}

// CreateComment handles POST /api/posts/:id/comments. A non-null
// parent_comment_id in the body creates a reply.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id", "post ID")
	if err != nil {
		return nil
	}

	var req struct {
		Content  string `json:"content"`
		ParentID *uint  `json:"parent_comment_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.AddComment(c.Context(), service.AddCommentInput{
		UserID:   currentUserID(c),
		PostID:   postID,
		ParentID: req.ParentID,
		Content:  req.Content,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateComment handles PUT /api/posts/:id/comments/:commentId
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id", "post ID")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId", "comment ID")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.UpdateComment(c.Context(), service.UpdateCommentInput{
		UserID:    currentUserID(c),
		PostID:    postID,
		CommentID: commentID,
		Content:   req.Content,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/posts/:id/comments/:commentId
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id", "post ID")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId", "comment ID")
	if err != nil {
		return nil
	}

	if err := s.commentService.DeleteComment(c.Context(), currentUserID(c), postID, commentID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// ReactToComment handles POST /api/posts/:id/comments/:commentId/reactions
func (s *Server) ReactToComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id", "post ID")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId", "comment ID")
	if err != nil {
		return nil
	}

	var req struct {
		Kind string `json:"kind"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.commentService.React(c.Context(), currentUserID(c), postID, commentID, models.ReactionKind(req.Kind))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}
