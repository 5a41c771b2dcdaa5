// Package transport предоставляет абстракции для работы с шиной сообщений.
package transport

import (
	"context"
	"time"
)

// Заголовок, несущий схемный тег сообщения.
// Потребитель, не разделяющий типы с производителем, декодирует
// payload по этому тегу через свою локальную таблицу типов.
const TypeHeader = "message_type"

// Message представляет сообщение в шине
type Message struct {
	// Subject топик/stream, в котором находится сообщение
	Subject string
	// Key ключ партиционирования (может быть пустым)
	Key string
	// Data JSON-payload сообщения
	Data []byte
	// Headers заголовки сообщения, включая схемный тег
	Headers map[string]string
}

// Type возвращает схемный тег сообщения
func (m *Message) Type() string {
	if m.Headers == nil {
		return ""
	}
	return m.Headers[TypeHeader]
}

// MessageHandler обработчик сообщений
type MessageHandler func(ctx context.Context, msg *Message) error

// Publisher публикатор сообщений
type Publisher interface {
	// Publish публикует сообщение в subject
	Publish(ctx context.Context, msg *Message) error
}

// Subscriber подписчик на сообщения
type Subscriber interface {
	// Subscribe подписывается на subject и вызывает handler при получении сообщения.
	// Handler вызывается строго последовательно в пределах одной партиции;
	// подтверждение (commit) происходит только после возврата handler.
	Subscribe(ctx context.Context, subject string, handler MessageHandler) error
	// Unsubscribe отписывается от subject
	Unsubscribe(subject string) error
}

// Channel объединяет возможности публикации и подписки
type Channel interface {
	Publisher
	Subscriber
}

// DeadLetterer маршрутизирует сообщения, исчерпавшие бюджет повторов
type DeadLetterer interface {
	// DeadLetter публикует сообщение в dead-letter назначение с указанием причины
	DeadLetter(ctx context.Context, msg *Message, reason string) error
}

// RetryPolicy политика повторов для сообщений
type RetryPolicy interface {
	// ShouldRetry определяет, нужно ли повторить попытку
	ShouldRetry(attempt int, err error) bool
	// GetDelay возвращает задержку перед повтором
	GetDelay(attempt int) time.Duration
	// GetMaxAttempts возвращает максимальное количество попыток
	GetMaxAttempts() int
}

// FixedBackoffRetryPolicy политика повторов с фиксированной задержкой
type FixedBackoffRetryPolicy struct {
	Delay       time.Duration
	MaxAttempts int
}

// ShouldRetry определяет, нужно ли повторить попытку
func (p *FixedBackoffRetryPolicy) ShouldRetry(attempt int, err error) bool {
	return attempt < p.MaxAttempts && err != nil
}

// GetDelay возвращает задержку перед повтором
func (p *FixedBackoffRetryPolicy) GetDelay(attempt int) time.Duration {
	return p.Delay
}

// GetMaxAttempts возвращает максимальное количество попыток
func (p *FixedBackoffRetryPolicy) GetMaxAttempts() int {
	return p.MaxAttempts
}

// DefaultRetryPolicy возвращает политику повторов по умолчанию:
// 3 попытки с фиксированной задержкой 2 секунды
func DefaultRetryPolicy() *FixedBackoffRetryPolicy {
	return &FixedBackoffRetryPolicy{
		Delay:       2 * time.Second,
		MaxAttempts: 3,
	}
}
