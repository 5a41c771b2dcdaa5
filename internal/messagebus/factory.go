package messagebus

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/akriventsev/orderhub/internal/transport"
)

// Bus объединяет канал, dead-letter маршрутизацию и закрытие ресурсов
type Bus interface {
	transport.Channel
	transport.DeadLetterer
	Close() error
}

// Creator функция создания адаптера из конфигурации
type Creator func(config interface{}, logger *zap.Logger) (Bus, error)

// Factory фабрика адаптеров шины сообщений
type Factory struct {
	creators map[string]Creator
	mu       sync.RWMutex
}

// NewFactory создает фабрику с зарегистрированными built-in адаптерами
func NewFactory() *Factory {
	factory := &Factory{
		creators: make(map[string]Creator),
	}

	_ = factory.Register("kafka", func(config interface{}, logger *zap.Logger) (Bus, error) {
		cfg, ok := config.(KafkaConfig)
		if !ok {
			return nil, fmt.Errorf("invalid Kafka config type: %T", config)
		}
		return NewKafkaAdapter(cfg, logger)
	})

	_ = factory.Register("redis", func(config interface{}, logger *zap.Logger) (Bus, error) {
		cfg, ok := config.(RedisConfig)
		if !ok {
			return nil, fmt.Errorf("invalid Redis config type: %T", config)
		}
		return NewRedisAdapter(cfg, logger)
	})

	_ = factory.Register("nats", func(config interface{}, logger *zap.Logger) (Bus, error) {
		cfg, ok := config.(NATSConfig)
		if !ok {
			return nil, fmt.Errorf("invalid NATS config type: %T", config)
		}
		return NewNATSAdapter(cfg, logger)
	})

	_ = factory.Register("inmemory", func(config interface{}, logger *zap.Logger) (Bus, error) {
		cfg, ok := config.(InMemoryConfig)
		if !ok {
			cfg = DefaultInMemoryConfig()
		}
		return NewInMemoryAdapter(cfg), nil
	})

	return factory
}

// Create создает адаптер указанного типа
func (f *Factory) Create(busType string, config interface{}, logger *zap.Logger) (Bus, error) {
	f.mu.RLock()
	creator, exists := f.creators[busType]
	f.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unknown message bus type: %s", busType)
	}

	bus, err := creator(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s adapter: %w", busType, err)
	}

	return bus, nil
}

// Register регистрирует custom адаптер
func (f *Factory) Register(name string, creator Creator) error {
	if name == "" {
		return fmt.Errorf("adapter name cannot be empty")
	}
	if creator == nil {
		return fmt.Errorf("creator function cannot be nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.creators[name]; exists {
		return fmt.Errorf("adapter %s already registered", name)
	}

	f.creators[name] = creator
	return nil
}
