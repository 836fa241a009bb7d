package like_api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-engagement/internal/auth"
	"ms-engagement/internal/logger"
	"ms-engagement/internal/models"
	"ms-engagement/internal/utils"
)

type LikeService interface {
	ToggleLike(ctx context.Context, userID, eventID string) (models.ToggleAction, error)
	GetEventLikes(ctx context.Context, eventID string) ([]models.Like, error)
}

type Handler struct {
	LikeService LikeService
	Logger      *logger.Logger
}

func NewHandler(likeService LikeService, log *logger.Logger) *Handler {
	return &Handler{LikeService: likeService, Logger: log}
}

// ToggleLike handles POST /api/events/{eventId}/like
func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	userID := auth.UserID(r.Context())
	h.Logger.Debug("API", fmt.Sprintf("ToggleLike: eventId=%s userId=%s", eventID, userID))

	action, err := h.LikeService.ToggleLike(r.Context(), userID, eventID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ToggleLike: %v", err))
		utils.WriteError(w, "Failed to toggle like", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse(action.Message(), map[string]string{"action": string(action)}))
}

// GetEventLikes handles GET /api/events/{eventId}/likes
func (h *Handler) GetEventLikes(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	likes, err := h.LikeService.GetEventLikes(r.Context(), eventID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetEventLikes: %v", err))
		utils.WriteError(w, "Failed to fetch likes", err)
		return
	}

	msg := "Likes fetched successfully"
	if len(likes) == 0 {
		msg = "No likes found for this event"
	}
	utils.WriteJSON(w, http.StatusOK, utils.ListResponse(msg, likes, len(likes)))
}

// RegisterRoutes mounts the like routes; protected wraps the routes that need a caller.
func (h *Handler) RegisterRoutes(r chi.Router, protected func(http.Handler) http.Handler) {
	r.Get("/events/{eventId}/likes", h.GetEventLikes)
	r.With(protected).Post("/events/{eventId}/like", h.ToggleLike)
}
