package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"academy-svc/config"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// Event types published on the order events topic.
const (
	EventOrderCreated   = "order.created"
	EventOrderCompleted = "order.completed"
	EventOrderApproved  = "order.approved"
	EventOrderRejected  = "order.rejected"
)

// Event is the message carried on the order events topic. The notifier
// consumes it to send customer mail.
type Event struct {
	Type          string    `json:"type"`
	OrderID       string    `json:"orderId"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail"`
	TotalAmount   float64   `json:"totalAmount"`
	At            time.Time `json:"at"`
}

// Producer publishes order lifecycle events, keyed by order id so events
// for one order stay in partition order.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
}

func InitProducer(cfg config.Kafka, logger *zap.Logger) (*Producer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaCfg.Producer.Retry.Max = 3

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	logger.Info("Kafka producer initialized", zap.Strings("brokers", cfg.Brokers), zap.String("topic", cfg.Topic))
	return &Producer{producer: producer, topic: cfg.Topic, logger: logger}, nil
}

func (p *Producer) Publish(evt Event) error {
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(evt.OrderID),
		Value: sarama.ByteEncoder(body),
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", evt.Type, err)
	}

	p.logger.Debug("Event published",
		zap.String("type", evt.Type),
		zap.String("orderId", evt.OrderID),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset))
	return nil
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
