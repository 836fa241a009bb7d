package event_api

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

type EventService interface {
	CreateEvent(ctx context.Context, userID string, req models.CreateEventRequest) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	ListUserEvents(ctx context.Context, userID string) ([]models.Event, error)
	GetEvent(ctx context.Context, eventID string) (*models.EventDetail, error)
	UpdateEvent(ctx context.Context, userID, eventID string, req models.UpdateEventRequest) (*models.Event, error)
	DeleteEvent(ctx context.Context, userID, eventID string) error
}

type Handler struct {
	EventService EventService
	Validator    *utils.Validator
	Logger       *logger.Logger
}

func NewHandler(eventService EventService, validator *utils.Validator, log *logger.Logger) *Handler {
	return &Handler{EventService: eventService, Validator: validator, Logger: log}
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %v: %w", err, apperrors.ErrValidation)
	}
	return nil
}

// CreateEvent handles POST /api/events
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEventRequest
	err := decodeJSON(r, &req)
	if err == nil {
		err = h.Validator.Validate(req)
	}
	if err != nil {
		utils.WriteError(w, "Invalid event data", err)
		return
	}

	event, err := h.EventService.CreateEvent(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("CreateEvent: %v", err))
		utils.WriteError(w, "Failed to create event", err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Event created successfully", event))
}

// ListEvents handles GET /api/events
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.EventService.ListEvents(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListEvents: %v", err))
		utils.WriteError(w, "Failed to fetch events", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.ListResponse("Events fetched successfully", events, len(events)))
}

// ListMyEvents handles GET /api/events/mine
func (h *Handler) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.EventService.ListUserEvents(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListMyEvents: %v", err))
		utils.WriteError(w, "Failed to fetch events", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.ListResponse("Events fetched successfully", events, len(events)))
}

// GetEvent handles GET /api/events/{eventId}
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	event, err := h.EventService.GetEvent(r.Context(), eventID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			h.Logger.Error("API", fmt.Sprintf("GetEvent: eventId=%s: %v", eventID, err))
		}
		utils.WriteError(w, "Event not found", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event fetched successfully", event))
}

// UpdateEvent handles PATCH /api/events/{eventId}. Field rules are checked by the service
// after the event is found; only an unreadable body is rejected here.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	var req models.UpdateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.WriteError(w, "Invalid event data", err)
		return
	}

	event, err := h.EventService.UpdateEvent(r.Context(), auth.UserID(r.Context()), eventID, req)
	switch {
	case errors.Is(err, apperrors.ErrNoChange):
		utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("No changes made", event))
	case err != nil:
		h.Logger.Warn("API", fmt.Sprintf("UpdateEvent: eventId=%s: %v", eventID, err))
		utils.WriteError(w, failureMessage(err), err)
	default:
		utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event updated successfully", event))
	}
}

// DeleteEvent handles DELETE /api/events/{eventId}
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	if err := h.EventService.DeleteEvent(r.Context(), auth.UserID(r.Context()), eventID); err != nil {
		h.Logger.Warn("API", fmt.Sprintf("DeleteEvent: eventId=%s: %v", eventID, err))
		utils.WriteError(w, failureMessage(err), err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event deleted successfully", nil))
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return "Event not found"
	case errors.Is(err, apperrors.ErrForbidden):
		return "You are not allowed to modify this event"
	case errors.Is(err, apperrors.ErrValidation):
		return "Invalid event data"
	default:
		return "Failed to modify event"
	}
}

// RegisterRoutes mounts the event routes. /events/mine is registered ahead of
// /events/{eventId} so the literal segment wins.
func (h *Handler) RegisterRoutes(r chi.Router, protected func(http.Handler) http.Handler) {
	r.Get("/events", h.ListEvents)

	r.Group(func(r chi.Router) {
		r.Use(protected)
		r.Post("/events", h.CreateEvent)
		r.Get("/events/mine", h.ListMyEvents)
		r.Patch("/events/{eventId}", h.UpdateEvent)
		r.Delete("/events/{eventId}", h.DeleteEvent)
	})

	r.Get("/events/{eventId}", h.GetEvent)
}
