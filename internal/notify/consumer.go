package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Consumer struct {
	reader *kafka.Reader
	logger *zap.Logger
}

func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		logger: logger,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Run delivers events to the handler until the context is cancelled. Malformed
// messages and handler failures are logged and skipped; notifications are
// best-effort and must never wedge the consumer.
func (c *Consumer) Run(ctx context.Context, handler func(context.Context, Event) error) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}

		var ev Event
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			c.logger.Warn("skipping malformed notification event",
				zap.Error(err),
				zap.Int64("offset", msg.Offset))
		} else if err := handler(ctx, ev); err != nil {
			c.logger.Error("notification delivery failed",
				zap.Error(err),
				zap.String("kind", string(ev.Kind)),
				zap.Int64("booking_id", ev.BookingID))
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("commit failed", zap.Error(err))
		}
	}
}
