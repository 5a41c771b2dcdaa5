package messagebus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFactory_CreateInMemory(t *testing.T) {
	factory := NewFactory()

	bus, err := factory.Create("inmemory", DefaultInMemoryConfig(), zap.NewNop())
	require.NoError(t, err)
	defer bus.Close()

	assert.NotNil(t, bus)
}

func TestFactory_CreateUnknownType(t *testing.T) {
	factory := NewFactory()

	_, err := factory.Create("carrier-pigeon", nil, zap.NewNop())
	assert.Error(t, err)
}

func TestFactory_CreateWrongConfigType(t *testing.T) {
	factory := NewFactory()

	_, err := factory.Create("kafka", "not a config", zap.NewNop())
	assert.Error(t, err)
}

func TestFactory_RegisterCustom(t *testing.T) {
	factory := NewFactory()

	err := factory.Register("custom", func(config interface{}, logger *zap.Logger) (Bus, error) {
		return NewInMemoryAdapter(DefaultInMemoryConfig()), nil
	})
	require.NoError(t, err)

	bus, err := factory.Create("custom", nil, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, bus)
}

func TestFactory_RegisterDuplicate(t *testing.T) {
	factory := NewFactory()
	assert.Error(t, factory.Register("kafka", func(config interface{}, logger *zap.Logger) (Bus, error) {
		return nil, nil
	}))
}

func TestKafkaConfig_Validate(t *testing.T) {
	cfg := DefaultKafkaConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Brokers = nil
	assert.Error(t, cfg.Validate())

	cfg = DefaultKafkaConfig()
	cfg.Brokers = []string{"no-port"}
	assert.Error(t, cfg.Validate())
}

func TestRedisConfig_Validate(t *testing.T) {
	cfg := DefaultRedisConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Addr = ""
	assert.Error(t, cfg.Validate())
}

func TestNATSConfig_Validate(t *testing.T) {
	cfg := DefaultNATSConfig()
	assert.NoError(t, cfg.Validate())

	cfg.URL = "http://wrong-scheme"
	assert.Error(t, cfg.Validate())
}
