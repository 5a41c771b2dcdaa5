package messagebus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/akriventsev/orderhub/internal/transport"
)

// RedisConfig конфигурация для Redis Streams адаптера
type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	PoolSize      int
	StreamMaxLen  int64 // максимальная длина stream (0 = без ограничений)
	ConsumerGroup string
	BlockTimeout  time.Duration
	Workers       int
}

// Validate проверяет корректность конфигурации
func (c RedisConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr cannot be empty")
	}
	if c.ConsumerGroup == "" {
		return fmt.Errorf("ConsumerGroup cannot be empty")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("Workers must be greater than 0")
	}
	return nil
}

// DefaultRedisConfig возвращает конфигурацию Redis по умолчанию
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:          "localhost:6379",
		DB:            0,
		PoolSize:      10,
		StreamMaxLen:  10000,
		ConsumerGroup: "orderhub-group",
		BlockTimeout:  5 * time.Second,
		Workers:       1,
	}
}

// RedisAdapter реализация Channel через Redis Streams
type RedisAdapter struct {
	config  RedisConfig
	client  *redis.Client
	cancels map[string]context.CancelFunc
	logger  *zap.Logger
	mu      sync.RWMutex
}

// NewRedisAdapter создает новый Redis адаптер
func NewRedisAdapter(config RedisConfig, logger *zap.Logger) (*RedisAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid redis config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
		PoolSize: config.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisAdapter{
		config:  config,
		client:  client,
		cancels: make(map[string]context.CancelFunc),
		logger:  logger,
	}, nil
}

// Close останавливает адаптер и закрывает соединение
func (r *RedisAdapter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for subject, cancel := range r.cancels {
		cancel()
		delete(r.cancels, subject)
	}

	return r.client.Close()
}

// Publish публикует сообщение в stream через XADD
func (r *RedisAdapter) Publish(ctx context.Context, msg *transport.Message) error {
	values := map[string]interface{}{
		"key":  msg.Key,
		"data": msg.Data,
	}
	if tag := msg.Type(); tag != "" {
		values[transport.TypeHeader] = tag
	}

	args := &redis.XAddArgs{
		Stream: msg.Subject,
		Values: values,
	}
	if r.config.StreamMaxLen > 0 {
		args.MaxLen = r.config.StreamMaxLen
		args.Approx = true
	}

	if err := r.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", msg.Subject, err)
	}

	return nil
}

// Subscribe подписывается на stream через consumer group.
// ACK выполняется после возврата handler независимо от результата,
// аналогично commit в Kafka адаптере.
func (r *RedisAdapter) Subscribe(ctx context.Context, subject string, handler transport.MessageHandler) error {
	// Создаем consumer group; BUSYGROUP означает, что группа уже есть
	err := r.client.XGroupCreateMkStream(ctx, subject, r.config.ConsumerGroup, "0").Err()
	if err != nil && !isBusyGroup(err) {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	subCtx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	r.cancels[subject] = cancel
	r.mu.Unlock()

	for w := 0; w < r.config.Workers; w++ {
		consumerName := fmt.Sprintf("%s-%s", r.config.ConsumerGroup, uuid.New().String())
		go r.consumeLoop(subCtx, subject, consumerName, handler)
	}

	return nil
}

func (r *RedisAdapter) consumeLoop(ctx context.Context, subject, consumer string, handler transport.MessageHandler) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		streams, err := r.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    r.config.ConsumerGroup,
			Consumer: consumer,
			Streams:  []string{subject, ">"},
			Count:    1,
			Block:    r.config.BlockTimeout,
		}).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, redis.Nil) {
				if errors.Is(err, context.Canceled) {
					return
				}
				continue
			}
			r.logger.Warn("redis stream read failed",
				zap.String("stream", subject),
				zap.Error(err))
			continue
		}

		for _, stream := range streams {
			for _, entry := range stream.Messages {
				msg := entryToMessage(subject, entry)
				if err := handler(ctx, msg); err != nil {
					r.logger.Error("redis handler failed",
						zap.String("stream", subject),
						zap.String("entry", entry.ID),
						zap.Error(err))
				}
				if err := r.client.XAck(ctx, subject, r.config.ConsumerGroup, entry.ID).Err(); err != nil {
					r.logger.Warn("redis ack failed",
						zap.String("stream", subject),
						zap.String("entry", entry.ID),
						zap.Error(err))
				}
			}
		}
	}
}

// entryToMessage восстанавливает сообщение из записи stream
func entryToMessage(subject string, entry redis.XMessage) *transport.Message {
	msg := &transport.Message{
		Subject: subject,
		Headers: make(map[string]string),
	}
	if key, ok := entry.Values["key"].(string); ok {
		msg.Key = key
	}
	if data, ok := entry.Values["data"].(string); ok {
		msg.Data = []byte(data)
	}
	if tag, ok := entry.Values[transport.TypeHeader].(string); ok {
		msg.Headers[transport.TypeHeader] = tag
	}
	return msg
}

// Unsubscribe отписывается от stream
func (r *RedisAdapter) Unsubscribe(subject string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cancel, exists := r.cancels[subject]; exists {
		cancel()
		delete(r.cancels, subject)
	}
	return nil
}

// DeadLetter публикует сообщение в stream <subject>.dlq
func (r *RedisAdapter) DeadLetter(ctx context.Context, msg *transport.Message, reason string) error {
	values := map[string]interface{}{
		"key":            msg.Key,
		"data":           msg.Data,
		"original_topic": msg.Subject,
		"reason":         reason,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	}
	if tag := msg.Type(); tag != "" {
		values[transport.TypeHeader] = tag
	}

	err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: msg.Subject + ".dlq",
		Values: values,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish to dlq stream: %w", err)
	}
	return nil
}

// isBusyGroup проверяет ошибку существующей consumer group
func isBusyGroup(err error) bool {
	return err != nil && len(err.Error()) >= 9 && err.Error()[:9] == "BUSYGROUP"
}
