package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"ms-engagement/internal/config"
	"ms-engagement/internal/logger"
	"ms-engagement/internal/models"
)

// MessageWriter is the part of *kafka.Writer the producer uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	Writer MessageWriter
	Topics config.TopicConfig
	Logger *logger.Logger
}

// NewProducer builds a writer whose topic is chosen per message. Messages are keyed by
// event id so one event's engagement stays ordered within a partition.
func NewProducer(brokers []string, topics config.TopicConfig, log *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return &Producer{Writer: writer, Topics: topics, Logger: log}
}

// TopicFor routes like.*, comment.* and event.* types to their topics.
func (p *Producer) TopicFor(t models.EngagementEventType) (string, error) {
	switch {
	case strings.HasPrefix(string(t), "like."):
		return p.Topics.Likes, nil
	case strings.HasPrefix(string(t), "comment."):
		return p.Topics.Comments, nil
	case strings.HasPrefix(string(t), "event."):
		return p.Topics.Events, nil
	default:
		return "", fmt.Errorf("no topic for engagement type %q", t)
	}
}

// PublishEngagement streams an engagement event to Kafka
func (p *Producer) PublishEngagement(ctx context.Context, ev models.EngagementEvent) error {
	topic, err := p.TopicFor(ev.Type)
	if err != nil {
		return err
	}

	msgBytes, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	p.Logger.LogKafka("PUBLISH", topic, fmt.Sprintf("%s event=%s", ev.Type, ev.EventID))

	return p.Writer.WriteMessages(ctx,
		kafka.Message{
			Topic: topic,
			Key:   []byte(ev.EventID),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
