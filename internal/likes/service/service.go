package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ms-engagement/internal/apperrors"
	"ms-engagement/internal/database"
	"ms-engagement/internal/logger"
	"ms-engagement/internal/metrics"
	"ms-engagement/internal/models"
)

// maxToggleAttempts bounds how often a toggle re-reads the pair after losing a race.
// A toggle only loses a race to another toggle's completed flip.
const maxToggleAttempts = 5

type DBLayer interface {
	FindLike(ctx context.Context, userID, eventID string) (*models.Like, error)
	CreateLike(ctx context.Context, like *models.Like) error
	DeleteLike(ctx context.Context, id string) (bool, error)
	GetLikesByEvent(ctx context.Context, eventID string) ([]models.Like, error)
}

type EventLookup interface {
	EventExists(ctx context.Context, eventID string) (bool, error)
}

type ToggleLock interface {
	Acquire(ctx context.Context, userID, eventID string) (string, bool, error)
	Release(ctx context.Context, userID, eventID, token string) error
}

type EngagementPublisher interface {
	PublishEngagement(ctx context.Context, event models.EngagementEvent) error
}

type LikeService struct {
	DB        DBLayer
	Events    EventLookup
	Lock      ToggleLock
	Publisher EngagementPublisher
	Metrics   *metrics.Metrics
	Logger    *logger.Logger
}

func NewLikeService(db DBLayer, events EventLookup, lock ToggleLock, publisher EngagementPublisher, m *metrics.Metrics, log *logger.Logger) *LikeService {
	return &LikeService{
		DB:        db,
		Events:    events,
		Lock:      lock,
		Publisher: publisher,
		Metrics:   m,
		Logger:    log,
	}
}

// ToggleLike flips whether userID likes eventID. Each successful call performs exactly
// one insert or one delete, so N toggles of a pair leave it liked iff N is odd.
func (s *LikeService) ToggleLike(ctx context.Context, userID, eventID string) (models.ToggleAction, error) {
	userID = strings.TrimSpace(userID)
	eventID = strings.TrimSpace(eventID)
	if userID == "" {
		return "", fmt.Errorf("like toggle without user: %w", apperrors.ErrUnauthorized)
	}
	if eventID == "" {
		return "", fmt.Errorf("event id is required: %w", apperrors.ErrValidation)
	}

	if s.Events != nil {
		exists, err := s.Events.EventExists(ctx, eventID)
		if err != nil {
			return "", fmt.Errorf("lookup event %s: %v: %w", eventID, err, apperrors.ErrPersistence)
		}
		if !exists {
			return "", fmt.Errorf("event %s: %w", eventID, apperrors.ErrNotFound)
		}
	}

	if s.Lock != nil {
		token, ok, err := s.Lock.Acquire(ctx, userID, eventID)
		switch {
		case err != nil:
			s.Logger.Warn("LIKE", fmt.Sprintf("Toggle lock unavailable for event=%s user=%s, relying on unique constraint: %v", eventID, userID, err))
		case ok:
			defer func() {
				if rerr := s.Lock.Release(context.WithoutCancel(ctx), userID, eventID, token); rerr != nil {
					s.Logger.Warn("LIKE", fmt.Sprintf("Failed to release toggle lock: %v", rerr))
				}
			}()
		}
	}

	action, likeID, err := s.toggle(ctx, userID, eventID)
	if err != nil {
		s.Logger.Error("LIKE", fmt.Sprintf("Toggle failed for event=%s user=%s: %v", eventID, userID, err))
		return "", err
	}

	s.Metrics.ObserveToggle(string(action))
	s.Logger.LogLike(string(action), eventID, userID)

	evType := models.EngagementLikeAdded
	if action == models.LikeRemoved {
		evType = models.EngagementLikeRemoved
	}
	s.publish(ctx, models.NewEngagementEvent(evType, eventID, userID, likeID))

	return action, nil
}

func (s *LikeService) toggle(ctx context.Context, userID, eventID string) (models.ToggleAction, string, error) {
	for attempt := 0; attempt < maxToggleAttempts; attempt++ {
		existing, err := s.DB.FindLike(ctx, userID, eventID)
		switch {
		case err == nil:
			removed, err := s.DB.DeleteLike(ctx, existing.ID)
			if err != nil {
				return "", "", fmt.Errorf("delete like: %v: %w", err, apperrors.ErrPersistence)
			}
			if removed {
				return models.LikeRemoved, existing.ID, nil
			}
			// A concurrent toggle removed it first; re-read and add.

		case errors.Is(err, sql.ErrNoRows):
			like := &models.Like{
				ID:        uuid.NewString(),
				UserID:    userID,
				EventID:   eventID,
				CreatedAt: time.Now().UTC(),
			}
			err := s.DB.CreateLike(ctx, like)
			if err == nil {
				return models.LikeAdded, like.ID, nil
			}
			if !database.IsUniqueViolation(err) {
				return "", "", fmt.Errorf("create like: %v: %w", err, apperrors.ErrPersistence)
			}
			// A concurrent toggle inserted first; the pair is already liked, so remove it.

		default:
			return "", "", fmt.Errorf("find like: %v: %w", err, apperrors.ErrPersistence)
		}
	}

	return "", "", fmt.Errorf("like toggle for event %s did not settle after %d attempts: %w", eventID, maxToggleAttempts, apperrors.ErrPersistence)
}

// GetEventLikes lists likes with the liking user's name and picture. An event without
// likes yields an empty, non-nil slice.
func (s *LikeService) GetEventLikes(ctx context.Context, eventID string) ([]models.Like, error) {
	likes, err := s.DB.GetLikesByEvent(ctx, strings.TrimSpace(eventID))
	if err != nil {
		s.Logger.Error("LIKE", fmt.Sprintf("Failed to list likes for event %s: %v", eventID, err))
		return nil, fmt.Errorf("list likes: %v: %w", err, apperrors.ErrPersistence)
	}
	if likes == nil {
		likes = []models.Like{}
	}
	for i := range likes {
		if likes[i].User != nil {
			likes[i].User.Email = ""
			likes[i].User.Password = ""
		}
	}
	return likes, nil
}

func (s *LikeService) publish(ctx context.Context, ev models.EngagementEvent) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.PublishEngagement(ctx, ev); err != nil {
		s.Logger.Error("LIKE", fmt.Sprintf("Failed to publish %s for event %s: %v", ev.Type, ev.EventID, err))
	}
}
