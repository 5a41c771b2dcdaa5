package messagebus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/akriventsev/orderhub/internal/transport"
)

// KafkaConfig конфигурация для Kafka адаптера
type KafkaConfig struct {
	Brokers        []string
	GroupID        string
	Workers        int // количество параллельных читателей; каждому достается непересекающееся множество партиций
	BatchSize      int
	FlushInterval  time.Duration
	MinBytes       int
	MaxBytes       int
	MaxWait        time.Duration
	StartOffset    int64 // kafka.FirstOffset или kafka.LastOffset
	RequiredAcks   int   // 0, 1, -1 (all)
	PublishTimeout time.Duration
}

// Validate проверяет корректность конфигурации
func (c KafkaConfig) Validate() error {
	if len(c.Brokers) == 0 {
		return fmt.Errorf("brokers cannot be empty")
	}
	for i, broker := range c.Brokers {
		if !strings.Contains(broker, ":") {
			return fmt.Errorf("broker[%d] must be in format host:port", i)
		}
	}
	if c.GroupID == "" {
		return fmt.Errorf("GroupID cannot be empty")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("Workers must be greater than 0")
	}
	return nil
}

// DefaultKafkaConfig возвращает конфигурацию Kafka по умолчанию
func DefaultKafkaConfig() KafkaConfig {
	return KafkaConfig{
		Brokers:        []string{"localhost:9094"},
		GroupID:        "orderhub-group",
		Workers:        3,
		BatchSize:      100,
		FlushInterval:  10 * time.Millisecond,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		RequiredAcks:   -1, // all
		PublishTimeout: 5 * time.Second,
	}
}

// KafkaAdapter реализация Channel через Kafka
type KafkaAdapter struct {
	config  KafkaConfig
	writer  *kafka.Writer
	subs    map[string][]*kafka.Reader
	cancels map[string]context.CancelFunc
	logger  *zap.Logger
	mu      sync.RWMutex
}

// NewKafkaAdapter создает новый Kafka адаптер
func NewKafkaAdapter(config KafkaConfig, logger *zap.Logger) (*KafkaAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid kafka config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	adapter := &KafkaAdapter{
		config:  config,
		subs:    make(map[string][]*kafka.Reader),
		cancels: make(map[string]context.CancelFunc),
		logger:  logger,
	}

	adapter.writer = &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequiredAcks(config.RequiredAcks),
		Async:        false,
		BatchSize:    config.BatchSize,
		BatchTimeout: config.FlushInterval,
	}

	return adapter, nil
}

// Close останавливает адаптер и закрывает все соединения
func (k *KafkaAdapter) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	for subject, cancel := range k.cancels {
		cancel()
		delete(k.cancels, subject)
	}
	for subject, readers := range k.subs {
		for _, reader := range readers {
			_ = reader.Close()
		}
		delete(k.subs, subject)
	}

	if k.writer != nil {
		return k.writer.Close()
	}
	return nil
}

// Publish публикует сообщение в топик.
// Вызов ограничен PublishTimeout независимо от времени жизни ctx вызывающего.
func (k *KafkaAdapter) Publish(ctx context.Context, msg *transport.Message) error {
	pubCtx, cancel := context.WithTimeout(ctx, k.config.PublishTimeout)
	defer cancel()

	kmsg := kafka.Message{
		Topic: msg.Subject,
		Key:   []byte(msg.Key),
		Value: msg.Data,
	}

	if msg.Headers != nil {
		kmsg.Headers = make([]kafka.Header, 0, len(msg.Headers))
		for key, value := range msg.Headers {
			kmsg.Headers = append(kmsg.Headers, kafka.Header{
				Key:   key,
				Value: []byte(value),
			})
		}
	}

	if err := k.writer.WriteMessages(pubCtx, kmsg); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}

// Subscribe подписывается на топик.
//
// Запускает Workers читателей в одной consumer group: партиции топика
// распределяются между ними без пересечений, внутри партиции сообщения
// обрабатываются строго последовательно. Offset подтверждается после
// возврата handler независимо от результата: политика повторов и
// dead-letter реализуются оберткой потребителя (см. RetryingConsumer),
// поэтому прогресс по партиции не останавливается на одном сообщении.
func (k *KafkaAdapter) Subscribe(ctx context.Context, subject string, handler transport.MessageHandler) error {
	subCtx, cancel := context.WithCancel(ctx)

	readers := make([]*kafka.Reader, 0, k.config.Workers)
	for w := 0; w < k.config.Workers; w++ {
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:     k.config.Brokers,
			Topic:       subject,
			GroupID:     k.config.GroupID,
			MinBytes:    k.config.MinBytes,
			MaxBytes:    k.config.MaxBytes,
			MaxWait:     k.config.MaxWait,
			StartOffset: k.config.StartOffset,
		})
		readers = append(readers, reader)

		go k.consumeLoop(subCtx, reader, subject, w, handler)
	}

	k.mu.Lock()
	k.subs[subject] = readers
	k.cancels[subject] = cancel
	k.mu.Unlock()

	return nil
}

func (k *KafkaAdapter) consumeLoop(ctx context.Context, reader *kafka.Reader, subject string, worker int, handler transport.MessageHandler) {
	defer func() {
		_ = reader.Close()
	}()

	for {
		kmsg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			k.logger.Warn("kafka fetch failed",
				zap.String("topic", subject),
				zap.Int("worker", worker),
				zap.Error(err))
			continue
		}

		msg := &transport.Message{
			Subject: kmsg.Topic,
			Key:     string(kmsg.Key),
			Data:    kmsg.Value,
			Headers: make(map[string]string, len(kmsg.Headers)),
		}
		for _, h := range kmsg.Headers {
			msg.Headers[h.Key] = string(h.Value)
		}

		if err := handler(ctx, msg); err != nil {
			k.logger.Error("kafka handler failed",
				zap.String("topic", subject),
				zap.Int("partition", kmsg.Partition),
				zap.Int64("offset", kmsg.Offset),
				zap.Error(err))
		}

		// Позиция сдвигается в любом терминальном состоянии
		if err := reader.CommitMessages(ctx, kmsg); err != nil {
			k.logger.Warn("kafka commit failed",
				zap.String("topic", subject),
				zap.Int64("offset", kmsg.Offset),
				zap.Error(err))
		}
	}
}

// Unsubscribe отписывается от топика
func (k *KafkaAdapter) Unsubscribe(subject string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if cancel, exists := k.cancels[subject]; exists {
		cancel()
		delete(k.cancels, subject)
	}

	readers, exists := k.subs[subject]
	if !exists {
		return nil
	}

	for _, reader := range readers {
		if err := reader.Close(); err != nil {
			return fmt.Errorf("failed to close reader: %w", err)
		}
	}

	delete(k.subs, subject)
	return nil
}

// DeadLetter публикует сообщение в dead-letter топик <subject>.dlq
func (k *KafkaAdapter) DeadLetter(ctx context.Context, msg *transport.Message, reason string) error {
	headers := make(map[string]string, len(msg.Headers)+3)
	for key, value := range msg.Headers {
		headers[key] = value
	}
	headers["original_topic"] = msg.Subject
	headers["reason"] = reason
	headers["timestamp"] = time.Now().UTC().Format(time.RFC3339)

	dlqMsg := &transport.Message{
		Subject: msg.Subject + ".dlq",
		Key:     msg.Key,
		Data:    msg.Data,
		Headers: headers,
	}

	return k.Publish(ctx, dlqMsg)
}
