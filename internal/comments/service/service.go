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
	"ms-engagement/internal/logger"
	"ms-engagement/internal/metrics"
	"ms-engagement/internal/models"
	"ms-engagement/internal/ownership"
)

type DBLayer interface {
	GetCommentByID(ctx context.Context, id string) (*models.Comment, error)
	CreateComment(ctx context.Context, comment *models.Comment) error
	UpdateCommentText(ctx context.Context, id, text string, at time.Time) error
	DeleteComment(ctx context.Context, id string) error
	GetCommentsByEvent(ctx context.Context, eventID string) ([]models.Comment, error)
}

type EventLookup interface {
	EventExists(ctx context.Context, eventID string) (bool, error)
}

type EngagementPublisher interface {
	PublishEngagement(ctx context.Context, event models.EngagementEvent) error
}

type CommentService struct {
	DB        DBLayer
	Events    EventLookup
	Publisher EngagementPublisher
	Metrics   *metrics.Metrics
	Logger    *logger.Logger
}

func NewCommentService(db DBLayer, events EventLookup, publisher EngagementPublisher, m *metrics.Metrics, log *logger.Logger) *CommentService {
	return &CommentService{
		DB:        db,
		Events:    events,
		Publisher: publisher,
		Metrics:   m,
		Logger:    log,
	}
}

// AddComment stores the trimmed text; blank text is rejected.
func (s *CommentService) AddComment(ctx context.Context, userID, eventID, text string) (*models.Comment, error) {
	comment, err := s.addComment(ctx, strings.TrimSpace(userID), strings.TrimSpace(eventID), text)
	s.Metrics.ObserveComment("create", err)
	return comment, err
}

func (s *CommentService) addComment(ctx context.Context, userID, eventID, text string) (*models.Comment, error) {
	if userID == "" {
		return nil, fmt.Errorf("comment without user: %w", apperrors.ErrUnauthorized)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("comment text is required: %w", apperrors.ErrValidation)
	}

	if s.Events != nil {
		exists, err := s.Events.EventExists(ctx, eventID)
		if err != nil {
			return nil, fmt.Errorf("lookup event %s: %v: %w", eventID, err, apperrors.ErrPersistence)
		}
		if !exists {
			return nil, fmt.Errorf("event %s: %w", eventID, apperrors.ErrNotFound)
		}
	}

	now := time.Now().UTC()
	comment := &models.Comment{
		ID:        uuid.NewString(),
		UserID:    userID,
		EventID:   eventID,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.DB.CreateComment(ctx, comment); err != nil {
		s.Logger.Error("COMMENT", fmt.Sprintf("Failed to create comment on event %s: %v", eventID, err))
		return nil, fmt.Errorf("create comment: %v: %w", err, apperrors.ErrPersistence)
	}

	s.Logger.LogComment("CREATE", comment.ID, fmt.Sprintf("event=%s user=%s", eventID, userID))
	ev := models.NewEngagementEvent(models.EngagementCommentCreated, eventID, userID, comment.ID)
	ev.Text = comment.Text
	s.publish(ctx, ev)

	return comment, nil
}

// UpdateComment checks, in order: the comment exists, the new text is not blank, the
// caller is the author, and the trimmed text differs from the stored one. Identical text yields
// ErrNoChange together with the unchanged comment.
func (s *CommentService) UpdateComment(ctx context.Context, userID, commentID, text string) (*models.Comment, error) {
	comment, err := s.updateComment(ctx, userID, strings.TrimSpace(commentID), text)
	s.Metrics.ObserveComment("update", ignoreNoChange(err))
	return comment, err
}

func (s *CommentService) updateComment(ctx context.Context, userID, commentID, text string) (*models.Comment, error) {
	comment, err := s.findComment(ctx, commentID)
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("comment text is required: %w", apperrors.ErrValidation)
	}

	if err := ownership.Check(comment.UserID, userID); err != nil {
		s.Logger.LogSecurity("COMMENT_UPDATE_DENIED", fmt.Sprintf("comment=%s caller=%s", commentID, userID))
		return nil, fmt.Errorf("comment %s: %w", commentID, err)
	}

	if comment.Text == text {
		return comment, fmt.Errorf("comment %s: %w", commentID, apperrors.ErrNoChange)
	}

	now := time.Now().UTC()
	if err := s.DB.UpdateCommentText(ctx, commentID, text, now); err != nil {
		s.Logger.Error("COMMENT", fmt.Sprintf("Failed to update comment %s: %v", commentID, err))
		return nil, fmt.Errorf("update comment: %v: %w", err, apperrors.ErrPersistence)
	}
	comment.Text = text
	comment.UpdatedAt = now

	s.Logger.LogComment("UPDATE", commentID, fmt.Sprintf("event=%s", comment.EventID))
	ev := models.NewEngagementEvent(models.EngagementCommentUpdated, comment.EventID, comment.UserID, commentID)
	ev.Text = text
	s.publish(ctx, ev)

	return comment, nil
}

// DeleteComment removes the comment when the caller is its author.
func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID string) error {
	err := s.deleteComment(ctx, userID, strings.TrimSpace(commentID))
	s.Metrics.ObserveComment("delete", err)
	return err
}

func (s *CommentService) deleteComment(ctx context.Context, userID, commentID string) error {
	comment, err := s.findComment(ctx, commentID)
	if err != nil {
		return err
	}

	if err := ownership.Check(comment.UserID, userID); err != nil {
		s.Logger.LogSecurity("COMMENT_DELETE_DENIED", fmt.Sprintf("comment=%s caller=%s", commentID, userID))
		return fmt.Errorf("comment %s: %w", commentID, err)
	}

	if err := s.DB.DeleteComment(ctx, commentID); err != nil {
		s.Logger.Error("COMMENT", fmt.Sprintf("Failed to delete comment %s: %v", commentID, err))
		return fmt.Errorf("delete comment: %v: %w", err, apperrors.ErrPersistence)
	}

	s.Logger.LogComment("DELETE", commentID, fmt.Sprintf("event=%s", comment.EventID))
	s.publish(ctx, models.NewEngagementEvent(models.EngagementCommentDeleted, comment.EventID, comment.UserID, commentID))
	return nil
}

// GetEventComments lists comments oldest first with author name, email and picture.
func (s *CommentService) GetEventComments(ctx context.Context, eventID string) ([]models.Comment, error) {
	comments, err := s.DB.GetCommentsByEvent(ctx, strings.TrimSpace(eventID))
	if err != nil {
		s.Logger.Error("COMMENT", fmt.Sprintf("Failed to list comments for event %s: %v", eventID, err))
		return nil, fmt.Errorf("list comments: %v: %w", err, apperrors.ErrPersistence)
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return comments, nil
}

func (s *CommentService) findComment(ctx context.Context, commentID string) (*models.Comment, error) {
	if commentID == "" {
		return nil, fmt.Errorf("comment id is required: %w", apperrors.ErrNotFound)
	}
	comment, err := s.DB.GetCommentByID(ctx, commentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("comment %s: %w", commentID, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %v: %w", err, apperrors.ErrPersistence)
	}
	return comment, nil
}

func (s *CommentService) publish(ctx context.Context, ev models.EngagementEvent) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.PublishEngagement(ctx, ev); err != nil {
		s.Logger.Error("COMMENT", fmt.Sprintf("Failed to publish %s for event %s: %v", ev.Type, ev.EventID, err))
	}
}

func ignoreNoChange(err error) error {
	if errors.Is(err, apperrors.ErrNoChange) {
		return nil
	}
	return err
}
