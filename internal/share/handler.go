package share

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ms-engagement/internal/apperrors"
	"ms-engagement/internal/logger"
	"ms-engagement/internal/utils"
)

type EventLookup interface {
	EventExists(ctx context.Context, eventID string) (bool, error)
}

type Handler struct {
	Events    EventLookup
	Generator *QRGenerator
	Logger    *logger.Logger
}

func NewHandler(events EventLookup, generator *QRGenerator, log *logger.Logger) *Handler {
	return &Handler{Events: events, Generator: generator, Logger: log}
}

// EventQR handles GET /api/events/{eventId}/qr
func (h *Handler) EventQR(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	exists, err := h.Events.EventExists(r.Context(), eventID)
	if err != nil {
		h.Logger.Error("SHARE", fmt.Sprintf("EventExists %s: %v", eventID, err))
		utils.WriteError(w, "Failed to generate QR code", fmt.Errorf("lookup event: %v: %w", err, apperrors.ErrPersistence))
		return
	}
	if !exists {
		utils.WriteError(w, "Event not found", fmt.Errorf("event %s: %w", eventID, apperrors.ErrNotFound))
		return
	}

	png, err := h.Generator.EventQR(eventID)
	if err != nil {
		h.Logger.Error("SHARE", err.Error())
		utils.WriteError(w, "Failed to generate QR code", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/events/{eventId}/qr", h.EventQR)
}
