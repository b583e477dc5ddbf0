package kafka

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

// Message read from a topic
type Message = kafkaGo.Message

// KafkaConsumer is the subset of a group reader used by the consumers. Offsets
// are committed explicitly after a message was handled.
type KafkaConsumer interface {
	FetchMessage(ctx context.Context) (Message, error)
	CommitMessages(ctx context.Context, msgs ...Message) error
	Close() error
}

type consumer struct {
	reader *kafkaGo.Reader
}

// NewKafkaConsumer creates a group consumer for the given topic
func NewKafkaConsumer(cfg ReaderConfig, brokers []string, useTLS bool, topic, groupID string) KafkaConsumer {
	dialer := &kafkaGo.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	if useTLS {
		dialer.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	readerCfg := kafkaGo.ReaderConfig{
		Brokers:       brokers,
		GroupID:       groupID,
		Topic:         topic,
		Dialer:        dialer,
		QueueCapacity: cfg.QueueCapacity,
		MinBytes:      cfg.MinBytes,
		MaxBytes:      cfg.MaxBytes,
	}
	if cfg.MaxWait > 0 {
		readerCfg.MaxWait = time.Duration(cfg.MaxWait) * time.Millisecond
	}
	if cfg.ReadBackoffMin > 0 {
		readerCfg.ReadBackoffMin = time.Duration(cfg.ReadBackoffMin) * time.Millisecond
	}
	if cfg.ReadBackoffMax > 0 {
		readerCfg.ReadBackoffMax = time.Duration(cfg.ReadBackoffMax) * time.Millisecond
	}
	log.Info().Str("section", "kafka").Str("topic", topic).Str("group_id", groupID).Msg("Creating kafka consumer")
	return &consumer{reader: kafkaGo.NewReader(readerCfg)}
}

func (c *consumer) FetchMessage(ctx context.Context) (Message, error) {
	return c.reader.FetchMessage(ctx)
}

func (c *consumer) CommitMessages(ctx context.Context, msgs ...Message) error {
	return c.reader.CommitMessages(ctx, msgs...)
}

func (c *consumer) Close() error {
	return c.reader.Close()
}
