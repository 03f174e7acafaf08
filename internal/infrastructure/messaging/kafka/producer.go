// Package kafka publishes search activity events. Publishing is best-effort:
// the search path never blocks on, or fails because of, the broker.
package kafka

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/molsearch/internal/config"
	"github.com/turtacn/molsearch/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molsearch/pkg/errors"
)

// ErrProducerClosed is returned by Publish after Close.
var ErrProducerClosed = errors.New(errors.ErrCodeInternal, "kafka producer is closed")

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ProducerMetrics counts publish outcomes.
type ProducerMetrics struct {
	MessagesSent   atomic.Int64
	MessagesFailed atomic.Int64
}

// Producer writes event envelopes to Kafka.
type Producer struct {
	writer  WriterInterface
	logger  logging.Logger
	closed  atomic.Bool
	metrics ProducerMetrics
}

// NewProducer builds a producer from the application Kafka config.
func NewProducer(cfg config.KafkaConfig, log logging.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "kafka brokers are required")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	var requiredAcks kafka.RequiredAcks
	switch cfg.Acks {
	case "none":
		requiredAcks = kafka.RequireNone
	case "all":
		requiredAcks = kafka.RequireAll
	default:
		requiredAcks = kafka.RequireOne
	}

	retries := cfg.ProducerRetries
	if retries < 0 {
		retries = 0
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = time.Second
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		MaxAttempts:  retries + 1,
		BatchSize:    batchSize,
		BatchTimeout: batchTimeout,
		WriteTimeout: writeTimeout,
		RequiredAcks: requiredAcks,
	}

	return &Producer{
		writer: writer,
		logger: log.Named("kafka"),
	}, nil
}

// NewProducerWithWriter builds a producer over an existing writer.
func NewProducerWithWriter(w WriterInterface, log logging.Logger) *Producer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Producer{writer: w, logger: log.Named("kafka")}
}

// Publish writes a single message and waits for the configured acks.
func (p *Producer) Publish(ctx context.Context, topic string, key, value []byte) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if topic == "" {
		return errors.New(errors.ErrCodeValidation, "topic is required")
	}
	if len(value) == 0 {
		return errors.New(errors.ErrCodeValidation, "message value is required")
	}

	start := time.Now()
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   key,
		Value: value,
		Time:  start,
	})
	if err != nil {
		p.metrics.MessagesFailed.Add(1)
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to publish message")
	}

	p.metrics.MessagesSent.Add(1)
	p.logger.Debug("message published",
		logging.String("topic", topic),
		logging.Int64("latency_ms", time.Since(start).Milliseconds()),
	)
	return nil
}

// Metrics returns a snapshot of publish counters.
func (p *Producer) Metrics() (sent, failed int64) {
	return p.metrics.MessagesSent.Load(), p.metrics.MessagesFailed.Load()
}

// Close flushes and closes the underlying writer. Safe to call twice.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("kafka producer closed",
		logging.Int64("sent", p.metrics.MessagesSent.Load()),
		logging.Int64("failed", p.metrics.MessagesFailed.Load()),
	)
	return err
}
