package order

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/akriventsev/orderhub/internal/config"
	"github.com/akriventsev/orderhub/internal/core"
	"github.com/akriventsev/orderhub/internal/metrics"
	"github.com/akriventsev/orderhub/internal/schema"
	"github.com/akriventsev/orderhub/internal/transport"
)

// Producer публикует события о созданных заказах в шину
type Producer struct {
	publisher transport.Publisher
	registry  *schema.Registry
	topic     string
	logger    *zap.Logger
	metrics   *metrics.Registry
}

// NewProducer создает публикатор событий заказов
func NewProducer(publisher transport.Publisher, registry *schema.Registry, logger *zap.Logger, m *metrics.Registry) *Producer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Producer{
		publisher: publisher,
		registry:  registry,
		topic:     config.OrdersTopic,
		logger:    logger,
		metrics:   m,
	}
}

// PublishCreated публикует событие о созданном заказе.
// Ключ партиционирования не несет смысловой нагрузки: порядок событий
// между заказами не гарантируется.
func (p *Producer) PublishCreated(ctx context.Context, event *CreatedEvent) error {
	msg, err := p.registry.Encode(p.topic, strconv.FormatInt(event.ID, 10), config.OrderMessageTag, event)
	if err != nil {
		return core.Wrap(err, core.ErrPublishFailed, "failed to encode order event")
	}

	if err := p.publisher.Publish(ctx, msg); err != nil {
		if p.metrics != nil {
			p.metrics.PublishFailures.Inc()
		}
		return core.Wrap(err, core.ErrPublishFailed, "failed to publish order event")
	}

	if p.metrics != nil {
		p.metrics.Published.Inc()
	}
	p.logger.Info("order event published",
		zap.Int64("order_id", event.ID),
		zap.String("topic", p.topic))
	return nil
}
