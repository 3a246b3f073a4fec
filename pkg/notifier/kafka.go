package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"rentora/pkg/logger"
)

// KafkaNotifier publishes JSON payloads to a single topic for downstream
// consumers (notification workers, analytics). Messages are keyed so that
// events for one entity stay on one partition and keep their order.
type KafkaNotifier struct {
	writer *kafka.Writer
	log    *logger.Logger
}

func NewKafkaNotifier(brokers []string, topic string, log *logger.Logger) *KafkaNotifier {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Logger:       kafka.LoggerFunc(func(msg string, args ...any) {}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			log.Error(fmt.Sprintf("kafka: "+msg, args...))
		}),
	}

	return &KafkaNotifier{writer: writer, log: log}
}

func (n *KafkaNotifier) Publish(ctx context.Context, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload for key %s: %w", key, err)
	}

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
	})
	if err != nil {
		return fmt.Errorf("failed to write event for key %s: %w", key, err)
	}
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
