// Package core предоставляет систему ошибок сервисов Orderhub.
package core

import (
	"fmt"
)

// Коды ошибок сервисов
const (
	// ErrValidationFailed товар не подтвержден перед созданием заказа
	ErrValidationFailed = "VALIDATION_FAILED"
	// ErrStorageFailed запись в хранилище не удалась
	ErrStorageFailed = "STORAGE_FAILED"
	// ErrPublishFailed событие не удалось передать в шину сообщений
	ErrPublishFailed = "PUBLISH_FAILED"
	// ErrDeserializeFailed payload сообщения не удалось декодировать
	ErrDeserializeFailed = "DESERIALIZE_FAILED"
	// ErrHandleFailed обработчик сообщения завершился с ошибкой
	ErrHandleFailed = "HANDLE_FAILED"
	// ErrNotFound сущность не существует или неактивна
	ErrNotFound = "NOT_FOUND"
	// ErrInvalidConfig некорректная конфигурация компонента
	ErrInvalidConfig = "INVALID_CONFIG"
)

// DomainError базовый тип ошибки сервисов
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

// Error реализует интерфейс error
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap возвращает причину ошибки
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is проверяет, соответствует ли ошибка коду
func (e *DomainError) Is(target error) bool {
	if t, ok := target.(*DomainError); ok {
		return e.Code == t.Code
	}
	return false
}

// NewError создает новую ошибку с кодом
func NewError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Wrap оборачивает существующую ошибку
func Wrap(err error, code, message string) *DomainError {
	if err == nil {
		return nil
	}
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// CodeOf возвращает код ошибки, либо пустую строку для посторонних ошибок
func CodeOf(err error) string {
	var de *DomainError
	for err != nil {
		if d, ok := err.(*DomainError); ok {
			de = d
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	if de == nil {
		return ""
	}
	return de.Code
}

// IsCode проверяет, имеет ли ошибка (или ее причина) указанный код
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}
