package transport

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMessage_Type(t *testing.T) {
	msg := &Message{Headers: map[string]string{TypeHeader: "OrderMessage"}}
	assert.Equal(t, "OrderMessage", msg.Type())
}

func TestMessage_Type_NoHeaders(t *testing.T) {
	msg := &Message{}
	assert.Equal(t, "", msg.Type())
}

func TestFixedBackoffRetryPolicy(t *testing.T) {
	policy := &FixedBackoffRetryPolicy{Delay: 2 * time.Second, MaxAttempts: 3}

	err := errors.New("failure")
	assert.True(t, policy.ShouldRetry(1, err))
	assert.True(t, policy.ShouldRetry(2, err))
	// Третья попытка последняя
	assert.False(t, policy.ShouldRetry(3, err))
	assert.False(t, policy.ShouldRetry(1, nil))

	// Задержка фиксированная, не зависит от номера попытки
	assert.Equal(t, 2*time.Second, policy.GetDelay(1))
	assert.Equal(t, 2*time.Second, policy.GetDelay(5))
	assert.Equal(t, 3, policy.GetMaxAttempts())
}

func TestDefaultRetryPolicy(t *testing.T) {
	policy := DefaultRetryPolicy()
	assert.Equal(t, 3, policy.GetMaxAttempts())
	assert.Equal(t, 2*time.Second, policy.GetDelay(1))
}
