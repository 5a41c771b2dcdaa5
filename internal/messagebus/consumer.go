package messagebus

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/akriventsev/orderhub/internal/core"
	"github.com/akriventsev/orderhub/internal/metrics"
	"github.com/akriventsev/orderhub/internal/schema"
	"github.com/akriventsev/orderhub/internal/transport"
)

// EventHandler обработчик декодированного события
type EventHandler func(ctx context.Context, event interface{}) error

// RetryingConsumer обертка потребителя: декодирование по схемному тегу,
// бизнес-обработка с повторами и dead-letter при исчерпании бюджета.
//
// Состояния записи: Received -> Deserializing -> Handling -> Committed,
// с ветками DeserializeFailed и HandleFailed -> Retrying -> DeadLettered.
// Во всех терминальных состояниях обертка возвращает nil, чтобы адаптер
// подтвердил запись и конвейер не останавливался на одном сообщении.
type RetryingConsumer struct {
	registry     *schema.Registry
	handler      EventHandler
	policy       transport.RetryPolicy
	deadLetterer transport.DeadLetterer
	logger       *zap.Logger
	metrics      *metrics.Registry
}

// NewRetryingConsumer создает обертку потребителя
func NewRetryingConsumer(
	registry *schema.Registry,
	handler EventHandler,
	policy transport.RetryPolicy,
	deadLetterer transport.DeadLetterer,
	logger *zap.Logger,
	m *metrics.Registry,
) *RetryingConsumer {
	if policy == nil {
		policy = transport.DefaultRetryPolicy()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryingConsumer{
		registry:     registry,
		handler:      handler,
		policy:       policy,
		deadLetterer: deadLetterer,
		logger:       logger,
		metrics:      m,
	}
}

// Handler возвращает MessageHandler для подписки через Channel.Subscribe
func (c *RetryingConsumer) Handler() transport.MessageHandler {
	return func(ctx context.Context, msg *transport.Message) error {
		c.consume(ctx, msg)
		return nil
	}
}

func (c *RetryingConsumer) consume(ctx context.Context, msg *transport.Message) {
	if c.metrics != nil {
		c.metrics.Consumed.Inc()
	}

	event, err := c.registry.Decode(msg)
	if err != nil {
		// Испорченная запись изолируется от остальных и не попадает
		// в бизнес-логику
		c.logger.Warn("message decode failed",
			zap.String("subject", msg.Subject),
			zap.String("type", msg.Type()),
			zap.Error(err))
		if c.metrics != nil {
			c.metrics.DecodeFailures.Inc()
		}
		c.deadLetter(ctx, msg, core.ErrDeserializeFailed)
		return
	}

	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= c.policy.GetMaxAttempts(); attempt++ {
		if attempt > 1 {
			if c.metrics != nil {
				c.metrics.HandleRetries.Inc()
			}
			select {
			case <-ctx.Done():
				c.logger.Warn("consumer context cancelled during retry",
					zap.String("subject", msg.Subject))
				return
			case <-time.After(c.policy.GetDelay(attempt)):
			}
		}

		lastErr = c.handler(ctx, event)
		if lastErr == nil {
			if c.metrics != nil {
				c.metrics.HandleLatencySec.Observe(time.Since(start).Seconds())
			}
			return
		}

		c.logger.Warn("event handler failed",
			zap.String("subject", msg.Subject),
			zap.String("type", msg.Type()),
			zap.Int("attempt", attempt),
			zap.Error(lastErr))

		if !c.policy.ShouldRetry(attempt, lastErr) {
			break
		}
	}

	c.logger.Error("event handler exhausted retry budget",
		zap.String("subject", msg.Subject),
		zap.String("type", msg.Type()),
		zap.Int("attempts", c.policy.GetMaxAttempts()),
		zap.Error(lastErr))
	c.deadLetter(ctx, msg, core.ErrHandleFailed)
}

func (c *RetryingConsumer) deadLetter(ctx context.Context, msg *transport.Message, reason string) {
	if c.metrics != nil {
		c.metrics.DeadLettered.Inc()
	}
	if c.deadLetterer == nil {
		return
	}
	if err := c.deadLetterer.DeadLetter(ctx, msg, reason); err != nil {
		c.logger.Error("failed to route message to dead letter",
			zap.String("subject", msg.Subject),
			zap.Error(err))
	}
}
