// Package messagebus предоставляет адаптеры шины сообщений для различных брокеров.
package messagebus

import (
	"context"
	"sync"

	"github.com/akriventsev/orderhub/internal/transport"
)

// InMemoryConfig конфигурация для InMemory адаптера
type InMemoryConfig struct {
	EnableOrdering bool // синхронная доставка, FIFO гарантии
}

// DefaultInMemoryConfig возвращает конфигурацию InMemory по умолчанию
func DefaultInMemoryConfig() InMemoryConfig {
	return InMemoryConfig{
		EnableOrdering: true,
	}
}

// DeadLetterRecord сообщение, попавшее в dead-letter, вместе с причиной
type DeadLetterRecord struct {
	Message *transport.Message
	Reason  string
}

// InMemoryAdapter реализация Channel в памяти.
// Используется в тестах и при локальном запуске без брокера.
type InMemoryAdapter struct {
	config      InMemoryConfig
	subscribers map[string][]transport.MessageHandler
	deadLetters []DeadLetterRecord
	mu          sync.RWMutex
}

// NewInMemoryAdapter создает новый InMemory адаптер
func NewInMemoryAdapter(config InMemoryConfig) *InMemoryAdapter {
	return &InMemoryAdapter{
		config:      config,
		subscribers: make(map[string][]transport.MessageHandler),
	}
}

// Close останавливает адаптер
func (i *InMemoryAdapter) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.subscribers = make(map[string][]transport.MessageHandler)
	return nil
}

// Publish публикует сообщение всем подписчикам subject
func (i *InMemoryAdapter) Publish(ctx context.Context, msg *transport.Message) error {
	i.mu.RLock()
	handlers := make([]transport.MessageHandler, len(i.subscribers[msg.Subject]))
	copy(handlers, i.subscribers[msg.Subject])
	i.mu.RUnlock()

	for _, handler := range handlers {
		if i.config.EnableOrdering {
			// Синхронная обработка для FIFO
			_ = handler(ctx, msg)
		} else {
			go func(h transport.MessageHandler) {
				_ = h(ctx, msg)
			}(handler)
		}
	}

	return nil
}

// Subscribe подписывается на subject
func (i *InMemoryAdapter) Subscribe(ctx context.Context, subject string, handler transport.MessageHandler) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.subscribers[subject] = append(i.subscribers[subject], handler)
	return nil
}

// Unsubscribe отписывается от subject
func (i *InMemoryAdapter) Unsubscribe(subject string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	delete(i.subscribers, subject)
	return nil
}

// DeadLetter сохраняет сообщение во внутренний dead-letter список
func (i *InMemoryAdapter) DeadLetter(ctx context.Context, msg *transport.Message, reason string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.deadLetters = append(i.deadLetters, DeadLetterRecord{Message: msg, Reason: reason})
	return nil
}

// DeadLetters возвращает накопленные dead-letter записи (для тестирования)
func (i *InMemoryAdapter) DeadLetters() []DeadLetterRecord {
	i.mu.RLock()
	defer i.mu.RUnlock()

	records := make([]DeadLetterRecord, len(i.deadLetters))
	copy(records, i.deadLetters)
	return records
}

// SubscriberCount возвращает количество подписчиков subject (для тестирования)
func (i *InMemoryAdapter) SubscriberCount(subject string) int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.subscribers[subject])
}
