package messagebus

import (
	"go.uber.org/zap"

	"github.com/akriventsev/orderhub/internal/config"
)

// Open создает адаптер шины из конфигурации сервиса.
// Тип адаптера и его параметры берутся из config.BusConfig,
// недостающие значения заполняются из Default*Config.
func Open(cfg config.BusConfig, logger *zap.Logger) (Bus, error) {
	factory := NewFactory()

	switch cfg.Type {
	case "kafka":
		kc := DefaultKafkaConfig()
		kc.Brokers = cfg.Brokers
		kc.GroupID = cfg.GroupID
		if cfg.Workers > 0 {
			kc.Workers = cfg.Workers
		}
		if cfg.PublishTimeout > 0 {
			kc.PublishTimeout = cfg.PublishTimeout
		}
		return factory.Create("kafka", kc, logger)
	case "redis":
		rc := DefaultRedisConfig()
		rc.Addr = cfg.RedisAddr
		rc.ConsumerGroup = cfg.GroupID
		if cfg.Workers > 0 {
			rc.Workers = cfg.Workers
		}
		return factory.Create("redis", rc, logger)
	case "nats":
		nc := DefaultNATSConfig()
		nc.URL = cfg.NATSURL
		nc.QueueGroup = cfg.GroupID
		return factory.Create("nats", nc, logger)
	default:
		return factory.Create(cfg.Type, DefaultInMemoryConfig(), logger)
	}
}
