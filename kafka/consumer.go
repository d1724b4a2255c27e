package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"academy-svc/config"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// Notifier receives order events that warrant customer notification.
// Failures are logged by the caller and never retried into the order flow.
type Notifier interface {
	OrderApproved(evt Event) error
	OrderCompleted(evt Event) error
}

func InitConsumer(cfg config.Kafka, logger *zap.Logger) (sarama.ConsumerGroup, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	saramaCfg.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer group: %w", err)
	}

	logger.Info("Kafka consumer initialized", zap.Strings("brokers", cfg.Brokers), zap.String("group", cfg.GroupID))
	return group, nil
}

// StartConsumer runs the notification consume loop until ctx is cancelled.
func StartConsumer(ctx context.Context, group sarama.ConsumerGroup, topic string, notifier Notifier, logger *zap.Logger) error {
	handler := &notificationHandler{notifier: notifier, logger: logger}
	for {
		if err := group.Consume(ctx, []string{topic}, handler); err != nil {
			return fmt.Errorf("consume: %w", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

type notificationHandler struct {
	notifier Notifier
	logger   *zap.Logger
}

func (h *notificationHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *notificationHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *notificationHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		var evt Event
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			h.logger.Error("Failed to decode event", zap.Error(err))
			session.MarkMessage(msg, "")
			continue
		}

		var err error
		switch evt.Type {
		case EventOrderApproved:
			err = h.notifier.OrderApproved(evt)
		case EventOrderCompleted:
			err = h.notifier.OrderCompleted(evt)
		}
		if err != nil {
			// Notification is best-effort; log and move on.
			h.logger.Error("Notification failed",
				zap.String("type", evt.Type),
				zap.String("orderId", evt.OrderID),
				zap.Error(err))
		}

		session.MarkMessage(msg, "")
	}
	return nil
}
