package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ms-engagement/internal/apperrors"
	"ms-engagement/internal/logger"
	"ms-engagement/internal/metrics"
	"ms-engagement/internal/models"
	"ms-engagement/internal/utils"
)

const heartbeatInterval = 25 * time.Second

// Handler streams engagement events of one event as Server-Sent Events
type Handler struct {
	Emitter *EngagementEmitter
	Metrics *metrics.Metrics
	Logger  *logger.Logger
}

func NewHandler(emitter *EngagementEmitter, m *metrics.Metrics, log *logger.Logger) *Handler {
	return &Handler{Emitter: emitter, Metrics: m, Logger: log}
}

// Stream serves GET /api/events/{eventId}/stream
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	if eventID == "" {
		utils.WriteError(w, "Event ID is required", fmt.Errorf("missing event id: %w", apperrors.ErrValidation))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.WriteError(w, "Streaming unsupported", errors.New("response writer cannot flush"))
		return
	}

	setupSSEHeaders(w)

	ctx := r.Context()
	eventChan := h.Emitter.Subscribe(ctx, eventID)

	h.Metrics.StreamOpened()
	defer h.Metrics.StreamClosed()

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"eventId\":%q}\n\n", eventID)
	flusher.Flush()

	h.Logger.Info("SSE", fmt.Sprintf("Client connected to engagement stream for event: %s", eventID))

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case ev, ok := <-eventChan:
			if !ok {
				h.Logger.Debug("SSE", fmt.Sprintf("Channel closed for event: %s", eventID))
				return
			}
			if err := writeEvent(w, ev); err != nil {
				h.Logger.Error("SSE", fmt.Sprintf("Failed to write %s frame: %v", ev.Type, err))
				continue
			}
			flusher.Flush()

		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()

		case <-ctx.Done():
			h.Logger.Debug("SSE", fmt.Sprintf("Client disconnected from engagement stream for: %s", eventID))
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, ev models.EngagementEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
	return err
}

func setupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream;charset=UTF-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.Header().Set("X-Content-Type-Options", "nosniff")
}
