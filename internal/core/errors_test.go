package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Error(t *testing.T) {
	err := NewError(ErrNotFound, "product 42 not found")
	assert.Equal(t, "[NOT_FOUND] product 42 not found", err.Error())
}

func TestDomainError_ErrorWithCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, ErrStorageFailed, "failed to insert order")
	assert.Contains(t, err.Error(), "STORAGE_FAILED")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWrap_NilError(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrStorageFailed, "should not happen"))
}

func TestCodeOf(t *testing.T) {
	err := NewError(ErrValidationFailed, "product inactive")
	assert.Equal(t, ErrValidationFailed, CodeOf(err))
}

func TestCodeOf_WrappedChain(t *testing.T) {
	// Код извлекается и из обернутой через fmt.Errorf ошибки
	inner := NewError(ErrPublishFailed, "broker unavailable")
	outer := fmt.Errorf("failed to publish order event: %w", inner)
	assert.Equal(t, ErrPublishFailed, CodeOf(outer))
}

func TestCodeOf_ForeignError(t *testing.T) {
	assert.Equal(t, "", CodeOf(errors.New("plain error")))
}

func TestIsCode(t *testing.T) {
	err := Wrap(errors.New("timeout"), ErrHandleFailed, "failed to record notification")
	assert.True(t, IsCode(err, ErrHandleFailed))
	assert.False(t, IsCode(err, ErrNotFound))
}

func TestDomainError_ErrorsIs(t *testing.T) {
	err := Wrap(errors.New("no rows"), ErrNotFound, "product not found")
	assert.True(t, errors.Is(err, NewError(ErrNotFound, "")))
	assert.False(t, errors.Is(err, NewError(ErrStorageFailed, "")))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Wrap(cause, ErrStorageFailed, "insert failed")
	assert.True(t, errors.Is(err, cause))
}
