// Package schema предоставляет таблицу соответствия схемных тегов и типов сообщений.
//
// Производитель и потребитель поддерживают каждый свою локальную таблицу:
// короткий логический тег (например "OrderMessage") отображается на
// конкретный тип payload. Общей иерархии типов между сервисами нет,
// совместимость обеспечивается только тегом и совпадением полей.
package schema

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/akriventsev/orderhub/internal/core"
	"github.com/akriventsev/orderhub/internal/transport"
)

// Factory создает пустой экземпляр типа payload для декодирования
type Factory func() interface{}

// Registry таблица тег -> тип сообщения
type Registry struct {
	factories map[string]Factory
	mu        sync.RWMutex
}

// NewRegistry создает новую пустую таблицу типов
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register регистрирует тег и фабрику типа payload
func (r *Registry) Register(tag string, factory Factory) error {
	if tag == "" {
		return fmt.Errorf("tag cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[tag]; exists {
		return fmt.Errorf("tag %s already registered", tag)
	}

	r.factories[tag] = factory
	return nil
}

// Known проверяет, зарегистрирован ли тег
func (r *Registry) Known(tag string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.factories[tag]
	return exists
}

// Tags возвращает список зарегистрированных тегов
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]string, 0, len(r.factories))
	for tag := range r.factories {
		tags = append(tags, tag)
	}
	return tags
}

// Encode сериализует payload в сообщение со схемным тегом в заголовке
func (r *Registry) Encode(subject, key, tag string, payload interface{}) (*transport.Message, error) {
	if !r.Known(tag) {
		return nil, fmt.Errorf("tag %s not registered", tag)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	return &transport.Message{
		Subject: subject,
		Key:     key,
		Data:    data,
		Headers: map[string]string{
			transport.TypeHeader: tag,
		},
	}, nil
}

// Decode декодирует payload сообщения по схемному тегу.
// Неизвестный тег или некорректный payload возвращают ошибку
// с кодом ErrDeserializeFailed, не прерывая цикл потребителя.
func (r *Registry) Decode(msg *transport.Message) (interface{}, error) {
	tag := msg.Type()
	if tag == "" {
		return nil, core.NewError(core.ErrDeserializeFailed, "message has no type header")
	}

	r.mu.RLock()
	factory, exists := r.factories[tag]
	r.mu.RUnlock()

	if !exists {
		return nil, core.NewError(core.ErrDeserializeFailed, fmt.Sprintf("unknown message type %s", tag))
	}

	payload := factory()
	if err := json.Unmarshal(msg.Data, payload); err != nil {
		return nil, core.Wrap(err, core.ErrDeserializeFailed, fmt.Sprintf("failed to unmarshal %s payload", tag))
	}

	return payload, nil
}
