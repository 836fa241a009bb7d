package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"

	"ms-engagement/internal/logger"
	"ms-engagement/internal/models"
)

type Consumer struct {
	reader *kafka.Reader
	logger *logger.Logger
}

// NewConsumer reads every engagement topic within one consumer group
func NewConsumer(brokers []string, topics []string, groupID string, log *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		GroupTopics: topics,
		MinBytes:    1,
		MaxBytes:    10e6, // 10MB
		StartOffset: kafka.LastOffset,
	})
	return &Consumer{reader: reader, logger: log}
}

// DecodeEngagement parses a message value into an engagement event.
func DecodeEngagement(msg kafka.Message) (models.EngagementEvent, error) {
	var ev models.EngagementEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		return ev, fmt.Errorf("unmarshal engagement event: %w", err)
	}
	if ev.EventID == "" || ev.Type == "" {
		return ev, errors.New("engagement event without type or event id")
	}
	return ev, nil
}

// Start consumes until ctx is cancelled, handing each decoded event to handler
func (c *Consumer) Start(ctx context.Context, handler func(models.EngagementEvent)) {
	c.logger.LogKafka("CONSUME", "engagement", "Kafka consumer started")

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.LogKafka("CONSUME", "engagement", "Kafka consumer stopped")
				return
			}
			c.logger.Error("KAFKA", fmt.Sprintf("Error reading message: %v", err))
			continue
		}

		ev, err := DecodeEngagement(msg)
		if err != nil {
			c.logger.Warn("KAFKA", fmt.Sprintf("Skipping message on %s: %v", msg.Topic, err))
			continue
		}

		c.logger.Debug("KAFKA", fmt.Sprintf("Received %s for event %s", ev.Type, ev.EventID))
		handler(ev)
	}
}

// Close gracefully shuts down the Kafka reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}
