package publish

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"

	"github.com/wonny/clientwatch/internal/contracts"
	"github.com/wonny/clientwatch/pkg/config"
	"github.com/wonny/clientwatch/pkg/logger"
)

// KafkaPublisher sends one message per visible alert, keyed by client id
// so all alerts of a client land on the same partition.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *logger.Logger
}

// NewKafkaPublisher connects a synchronous producer to the configured brokers
func NewKafkaPublisher(cfg config.KafkaConfig, log *logger.Logger) (*KafkaPublisher, error) {
	sc := sarama.NewConfig()
	sc.ClientID = cfg.ClientID
	sc.Version = sarama.V2_8_0_0
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = 3
	sc.Producer.Return.Successes = true
	sc.Producer.Idempotent = true
	sc.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return NewKafkaPublisherWithProducer(producer, cfg.AlertTopic, log), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, log *logger.Logger) *KafkaPublisher {
	if log == nil {
		log = logger.Nop()
	}
	return &KafkaPublisher{producer: producer, topic: topic, logger: log}
}

// Publish implements contracts.AlertSink. Dismissed alerts are skipped.
func (p *KafkaPublisher) Publish(ctx context.Context, alerts []contracts.Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msgs := make([]*sarama.ProducerMessage, 0, len(alerts))
	for _, a := range visible(alerts) {
		msg, err := p.message(a)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if len(msgs) == 0 {
		return nil
	}

	if err := p.producer.SendMessages(msgs); err != nil {
		return fmt.Errorf("failed to publish %d alerts: %w", len(msgs), err)
	}

	p.logger.WithFields(map[string]interface{}{
		"topic": p.topic,
		"count": len(msgs),
	}).Info("Published alerts to Kafka")
	return nil
}

func (p *KafkaPublisher) message(a contracts.Alert) (*sarama.ProducerMessage, error) {
	value, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal alert %s: %w", a.ID, err)
	}
	return &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(a.ClientID),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("alert_id"), Value: []byte(a.ID)},
			{Key: []byte("alert_type"), Value: []byte(a.Type)},
			{Key: []byte("priority"), Value: []byte(a.Priority.String())},
		},
		Timestamp: time.Now(),
	}, nil
}

// Close flushes and closes the producer
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
