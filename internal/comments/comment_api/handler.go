package comment_api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-engagement/internal/apperrors"
	"ms-engagement/internal/auth"
	"ms-engagement/internal/logger"
	"ms-engagement/internal/models"
	"ms-engagement/internal/utils"
)

type CommentService interface {
	AddComment(ctx context.Context, userID, eventID, text string) (*models.Comment, error)
	UpdateComment(ctx context.Context, userID, commentID, text string) (*models.Comment, error)
	DeleteComment(ctx context.Context, userID, commentID string) error
	GetEventComments(ctx context.Context, eventID string) ([]models.Comment, error)
}

type Handler struct {
	CommentService CommentService
	Logger         *logger.Logger
}

func NewHandler(commentService CommentService, log *logger.Logger) *Handler {
	return &Handler{CommentService: commentService, Logger: log}
}

func decodeComment(r *http.Request) (string, error) {
	var req models.CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", fmt.Errorf("invalid JSON body: %v: %w", err, apperrors.ErrValidation)
	}
	return req.Body(), nil
}

// AddComment handles POST /api/events/{eventId}/comment
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	text, err := decodeComment(r)
	if err != nil {
		utils.WriteError(w, "Invalid request body", err)
		return
	}

	comment, err := h.CommentService.AddComment(r.Context(), auth.UserID(r.Context()), eventID, text)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("AddComment: eventId=%s: %v", eventID, err))
		utils.WriteError(w, "Failed to add comment", err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Comment added successfully", comment))
}

// UpdateComment handles PATCH and PUT /api/comments/{commentId}. An unreadable body counts
// as empty text, so a missing comment still answers 404 before the text is judged.
func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	commentID := chi.URLParam(r, "commentId")
	text, err := decodeComment(r)
	if err != nil {
		h.Logger.Debug("API", fmt.Sprintf("UpdateComment: commentId=%s: %v", commentID, err))
		text = ""
	}

	comment, err := h.CommentService.UpdateComment(r.Context(), auth.UserID(r.Context()), commentID, text)
	switch {
	case errors.Is(err, apperrors.ErrNoChange):
		utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("No changes made", comment))
	case err != nil:
		h.Logger.Warn("API", fmt.Sprintf("UpdateComment: commentId=%s: %v", commentID, err))
		utils.WriteError(w, updateFailureMessage(err), err)
	default:
		utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Comment updated successfully", comment))
	}
}

// DeleteComment handles DELETE /api/comments/{commentId}
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID := chi.URLParam(r, "commentId")

	if err := h.CommentService.DeleteComment(r.Context(), auth.UserID(r.Context()), commentID); err != nil {
		h.Logger.Warn("API", fmt.Sprintf("DeleteComment: commentId=%s: %v", commentID, err))
		utils.WriteError(w, updateFailureMessage(err), err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Comment deleted successfully", nil))
}

// GetEventComments handles GET /api/events/{eventId}/comments
func (h *Handler) GetEventComments(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	comments, err := h.CommentService.GetEventComments(r.Context(), eventID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetEventComments: %v", err))
		utils.WriteError(w, "Failed to fetch comments", err)
		return
	}

	msg := "Comments fetched successfully"
	if len(comments) == 0 {
		msg = "No comments found for this event"
	}
	utils.WriteJSON(w, http.StatusOK, utils.ListResponse(msg, comments, len(comments)))
}

func updateFailureMessage(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return "Comment not found"
	case errors.Is(err, apperrors.ErrForbidden):
		return "You are not allowed to modify this comment"
	case errors.Is(err, apperrors.ErrValidation):
		return "Comment text is required"
	default:
		return "Failed to modify comment"
	}
}

// RegisterRoutes mounts the comment routes; protected wraps the routes that need a caller.
func (h *Handler) RegisterRoutes(r chi.Router, protected func(http.Handler) http.Handler) {
	r.Get("/events/{eventId}/comments", h.GetEventComments)

	r.Group(func(r chi.Router) {
		r.Use(protected)
		r.Post("/events/{eventId}/comment", h.AddComment)
		r.Patch("/comments/{commentId}", h.UpdateComment)
		r.Put("/comments/{commentId}", h.UpdateComment)
		r.Delete("/comments/{commentId}", h.DeleteComment)
	})
}
