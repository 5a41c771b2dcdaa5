package messagebus

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/akriventsev/orderhub/internal/transport"
)

// NATSConfig конфигурация для NATS адаптера
type NATSConfig struct {
	URL               string
	QueueGroup        string
	MaxReconnects     int
	ReconnectWait     time.Duration
	DrainTimeout      time.Duration
	ConnectionTimeout time.Duration
}

// Validate проверяет корректность конфигурации
func (c NATSConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("URL cannot be empty")
	}
	if !strings.HasPrefix(c.URL, "nats://") && !strings.HasPrefix(c.URL, "tls://") {
		return fmt.Errorf("URL must start with nats:// or tls://")
	}
	if c.QueueGroup == "" {
		return fmt.Errorf("QueueGroup cannot be empty")
	}
	return nil
}

// DefaultNATSConfig возвращает конфигурацию NATS по умолчанию
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:               "nats://localhost:4222",
		QueueGroup:        "orderhub-group",
		MaxReconnects:     10,
		ReconnectWait:     2 * time.Second,
		DrainTimeout:      30 * time.Second,
		ConnectionTimeout: 5 * time.Second,
	}
}

// NATSAdapter реализация Channel через NATS.
//
// Core NATS не хранит сообщения, поэтому гарантии доставки слабее, чем
// у Kafka/Redis Streams: подписчик, не запущенный в момент публикации,
// сообщение не получит. Адаптер предназначен для окружений, где шина
// уже развернута на NATS и потеря при простое потребителя допустима.
type NATSAdapter struct {
	config NATSConfig
	conn   *nats.Conn
	subs   map[string]*nats.Subscription
	logger *zap.Logger
	mu     sync.RWMutex
}

// NewNATSAdapter создает новый NATS адаптер
func NewNATSAdapter(config NATSConfig, logger *zap.Logger) (*NATSAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid nats config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	conn, err := nats.Connect(config.URL,
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.Timeout(config.ConnectionTimeout),
		nats.DrainTimeout(config.DrainTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSAdapter{
		config: config,
		conn:   conn,
		subs:   make(map[string]*nats.Subscription),
		logger: logger,
	}, nil
}

// Close останавливает адаптер с drain всех подписок
func (n *NATSAdapter) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	for subject, sub := range n.subs {
		_ = sub.Drain()
		delete(n.subs, subject)
	}

	return n.conn.Drain()
}

// Publish публикует сообщение в subject
func (n *NATSAdapter) Publish(ctx context.Context, msg *transport.Message) error {
	nmsg := nats.NewMsg(msg.Subject)
	nmsg.Data = msg.Data
	for key, value := range msg.Headers {
		nmsg.Header.Set(key, value)
	}
	if msg.Key != "" {
		nmsg.Header.Set("key", msg.Key)
	}

	if err := n.conn.PublishMsg(nmsg); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}

// Subscribe подписывается на subject в составе queue group:
// каждое сообщение получает только один подписчик группы
func (n *NATSAdapter) Subscribe(ctx context.Context, subject string, handler transport.MessageHandler) error {
	sub, err := n.conn.QueueSubscribe(subject, n.config.QueueGroup, func(nmsg *nats.Msg) {
		msg := &transport.Message{
			Subject: nmsg.Subject,
			Data:    nmsg.Data,
			Headers: make(map[string]string),
		}
		for key := range nmsg.Header {
			msg.Headers[key] = nmsg.Header.Get(key)
		}
		msg.Key = nmsg.Header.Get("key")

		if err := handler(ctx, msg); err != nil {
			n.logger.Error("nats handler failed",
				zap.String("subject", subject),
				zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}

	n.mu.Lock()
	n.subs[subject] = sub
	n.mu.Unlock()

	return nil
}

// Unsubscribe отписывается от subject
func (n *NATSAdapter) Unsubscribe(subject string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	sub, exists := n.subs[subject]
	if !exists {
		return nil
	}

	if err := sub.Unsubscribe(); err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}

	delete(n.subs, subject)
	return nil
}

// DeadLetter публикует сообщение в subject <subject>.dlq
func (n *NATSAdapter) DeadLetter(ctx context.Context, msg *transport.Message, reason string) error {
	headers := make(map[string]string, len(msg.Headers)+3)
	for key, value := range msg.Headers {
		headers[key] = value
	}
	headers["original_topic"] = msg.Subject
	headers["reason"] = reason
	headers["timestamp"] = time.Now().UTC().Format(time.RFC3339)

	return n.Publish(ctx, &transport.Message{
		Subject: msg.Subject + ".dlq",
		Key:     msg.Key,
		Data:    msg.Data,
		Headers: headers,
	})
}
