package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"ms-engagement/internal/apperrors"
	"ms-engagement/internal/logger"
	"ms-engagement/internal/models"
	"ms-engagement/internal/ownership"
	"ms-engagement/internal/utils"
)

type DBLayer interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	ListEventsByUser(ctx context.Context, userID string) ([]models.Event, error)
	UpdateEvent(ctx context.Context, event *models.Event) error
	DeleteEventCascade(ctx context.Context, id string) error
	CountEngagement(ctx context.Context, id string) (int, int, error)
}

type EngagementPublisher interface {
	PublishEngagement(ctx context.Context, event models.EngagementEvent) error
}

type EventService struct {
	DB        DBLayer
	Publisher EngagementPublisher
	Validator *utils.Validator
	Logger    *logger.Logger
}

func NewEventService(db DBLayer, publisher EngagementPublisher, log *logger.Logger) *EventService {
	return &EventService{DB: db, Publisher: publisher, Validator: utils.NewValidator(), Logger: log}
}

func (s *EventService) CreateEvent(ctx context.Context, userID string, req models.CreateEventRequest) (*models.Event, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("event without owner: %w", apperrors.ErrUnauthorized)
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}

	tag := req.Tag
	if tag == "" {
		tag = models.TagOthers
	}
	images := req.Images
	if images == nil {
		images = []string{}
	}

	now := time.Now().UTC()
	event := &models.Event{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Date:        date,
		Location:    strings.TrimSpace(req.Location),
		Tag:         tag,
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		Images:      images,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.DB.CreateEvent(ctx, event); err != nil {
		s.Logger.Error("EVENT", fmt.Sprintf("Failed to create event: %v", err))
		return nil, fmt.Errorf("create event: %v: %w", err, apperrors.ErrPersistence)
	}

	s.Logger.LogEvent("CREATE", event.ID, fmt.Sprintf("owner=%s title=%q", userID, event.Title))
	return event, nil
}

func (s *EventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	events, err := s.DB.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %v: %w", err, apperrors.ErrPersistence)
	}
	return events, nil
}

func (s *EventService) ListUserEvents(ctx context.Context, userID string) ([]models.Event, error) {
	events, err := s.DB.ListEventsByUser(ctx, strings.TrimSpace(userID))
	if err != nil {
		return nil, fmt.Errorf("list user events: %v: %w", err, apperrors.ErrPersistence)
	}
	return events, nil
}

// GetEvent returns the event with its like and comment counts.
func (s *EventService) GetEvent(ctx context.Context, eventID string) (*models.EventDetail, error) {
	event, err := s.findEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	likes, comments, err := s.DB.CountEngagement(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("count engagement: %v: %w", err, apperrors.ErrPersistence)
	}

	return &models.EventDetail{Event: *event, LikeCount: likes, CommentCount: comments}, nil
}

// UpdateEvent applies the non-nil fields of req. Checks run in the same order as comment
// updates: existence, input validity, ownership, then whether anything changed.
func (s *EventService) UpdateEvent(ctx context.Context, userID, eventID string, req models.UpdateEventRequest) (*models.Event, error) {
	event, err := s.findEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if s.Validator != nil {
		if err := s.Validator.Validate(req); err != nil {
			return nil, err
		}
	}

	var date *time.Time
	if req.Date != nil {
		d, err := utils.ParseDate(*req.Date)
		if err != nil {
			return nil, err
		}
		date = &d
	}

	if err := ownership.Check(event.UserID, userID); err != nil {
		s.Logger.LogSecurity("EVENT_UPDATE_DENIED", fmt.Sprintf("event=%s caller=%s", event.ID, userID))
		return nil, fmt.Errorf("event %s: %w", event.ID, err)
	}

	if !applyUpdate(event, req, date) {
		return event, fmt.Errorf("event %s: %w", event.ID, apperrors.ErrNoChange)
	}

	event.UpdatedAt = time.Now().UTC()
	if err := s.DB.UpdateEvent(ctx, event); err != nil {
		s.Logger.Error("EVENT", fmt.Sprintf("Failed to update event %s: %v", event.ID, err))
		return nil, fmt.Errorf("update event: %v: %w", err, apperrors.ErrPersistence)
	}

	s.Logger.LogEvent("UPDATE", event.ID, fmt.Sprintf("owner=%s", event.UserID))
	return event, nil
}

// applyUpdate copies changed fields into event and reports whether anything changed.
func applyUpdate(event *models.Event, req models.UpdateEventRequest, date *time.Time) bool {
	changed := false
	setString := func(dst *string, src *string) {
		if src == nil {
			return
		}
		v := strings.TrimSpace(*src)
		if v != *dst {
			*dst = v
			changed = true
		}
	}

	setString(&event.Title, req.Title)
	setString(&event.Description, req.Description)
	setString(&event.Location, req.Location)
	setString(&event.Tag, req.Tag)
	setString(&event.PhoneNumber, req.PhoneNumber)

	if date != nil && !date.Equal(event.Date) {
		event.Date = *date
		changed = true
	}
	if req.Images != nil && !slices.Equal(*req.Images, event.Images) {
		event.Images = append([]string{}, *req.Images...)
		changed = true
	}
	return changed
}

// DeleteEvent removes an owned event together with its likes and comments.
func (s *EventService) DeleteEvent(ctx context.Context, userID, eventID string) error {
	event, err := s.findEvent(ctx, eventID)
	if err != nil {
		return err
	}

	if err := ownership.Check(event.UserID, userID); err != nil {
		s.Logger.LogSecurity("EVENT_DELETE_DENIED", fmt.Sprintf("event=%s caller=%s", event.ID, userID))
		return fmt.Errorf("event %s: %w", event.ID, err)
	}

	if err := s.DB.DeleteEventCascade(ctx, event.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("event %s: %w", event.ID, apperrors.ErrNotFound)
		}
		s.Logger.Error("EVENT", fmt.Sprintf("Failed to delete event %s: %v", event.ID, err))
		return fmt.Errorf("delete event: %v: %w", err, apperrors.ErrPersistence)
	}

	s.Logger.LogEvent("DELETE", event.ID, "likes and comments removed")
	if s.Publisher != nil {
		ev := models.NewEngagementEvent(models.EngagementEventDeleted, event.ID, event.UserID, event.ID)
		if err := s.Publisher.PublishEngagement(ctx, ev); err != nil {
			s.Logger.Error("EVENT", fmt.Sprintf("Failed to publish %s: %v", ev.Type, err))
		}
	}
	return nil
}

func (s *EventService) findEvent(ctx context.Context, eventID string) (*models.Event, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, fmt.Errorf("event id is required: %w", apperrors.ErrNotFound)
	}
	event, err := s.DB.GetEventByID(ctx, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event %s: %w", eventID, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %v: %w", err, apperrors.ErrPersistence)
	}
	return event, nil
}
