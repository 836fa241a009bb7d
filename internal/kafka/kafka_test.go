package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"ms-engagement/internal/config"
	engagementkafka "ms-engagement/internal/kafka"
	"ms-engagement/internal/logger"
	"ms-engagement/internal/models"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockWriter struct {
	mock.Mock
}

func (m *MockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockWriter) Close() error {
	return m.Called().Error(0)
}

var topics = config.TopicConfig{
	Likes:    "engagement.likes",
	Comments: "engagement.comments",
	Events:   "engagement.events",
}

func newProducer(w engagementkafka.MessageWriter) *engagementkafka.Producer {
	return &engagementkafka.Producer{Writer: w, Topics: topics, Logger: logger.NewLoggerWithWriter(io.Discard)}
}

func TestTopicFor(t *testing.T) {
	p := newProducer(nil)

	cases := map[models.EngagementEventType]string{
		models.EngagementLikeAdded:      "engagement.likes",
		models.EngagementLikeRemoved:    "engagement.likes",
		models.EngagementCommentCreated: "engagement.comments",
		models.EngagementCommentDeleted: "engagement.comments",
		models.EngagementEventDeleted:   "engagement.events",
	}
	for typ, want := range cases {
		got, err := p.TopicFor(typ)
		require.NoError(t, err)
		assert.Equal(t, want, got, string(typ))
	}

	_, err := p.TopicFor("bogus")
	assert.Error(t, err)
}

func TestPublishEngagement(t *testing.T) {
	w := new(MockWriter)
	p := newProducer(w)
	ev := models.NewEngagementEvent(models.EngagementCommentCreated, "E1", "userA", "c1")

	w.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
		if len(msgs) != 1 {
			return false
		}
		var decoded models.EngagementEvent
		if err := json.Unmarshal(msgs[0].Value, &decoded); err != nil {
			return false
		}
		return msgs[0].Topic == "engagement.comments" && string(msgs[0].Key) == "E1" && decoded.ResourceID == "c1"
	})).Return(nil)

	require.NoError(t, p.PublishEngagement(context.Background(), ev))
	w.AssertExpectations(t)
}

func TestPublishEngagementPropagatesWriteError(t *testing.T) {
	w := new(MockWriter)
	p := newProducer(w)
	w.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	err := p.PublishEngagement(context.Background(), models.NewEngagementEvent(models.EngagementLikeAdded, "E1", "u", "l"))
	assert.EqualError(t, err, "broker down")
}

func TestDecodeEngagement(t *testing.T) {
	ev := models.NewEngagementEvent(models.EngagementLikeRemoved, "E1", "userA", "like-1")
	raw, err := json.Marshal(ev)
	require.NoError(t, err)

	decoded, err := engagementkafka.DecodeEngagement(kafka.Message{Value: raw})
	require.NoError(t, err)
	assert.Equal(t, ev.Type, decoded.Type)
	assert.Equal(t, "like-1", decoded.ResourceID)

	_, err = engagementkafka.DecodeEngagement(kafka.Message{Value: []byte("not json")})
	assert.Error(t, err)

	_, err = engagementkafka.DecodeEngagement(kafka.Message{Value: []byte(`{"type":"like.added"}`)})
	assert.Error(t, err)
}
