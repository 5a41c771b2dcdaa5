package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/akriventsev/orderhub/internal/core"
)

// Listener бизнес-обработчик событий о заказах
type Listener struct {
	repo   Repository
	logger *zap.Logger
}

// NewListener создает обработчик событий
func NewListener(repo Repository, logger *zap.Logger) *Listener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Listener{repo: repo, logger: logger}
}

// HandleEvent записывает уведомление по декодированному событию.
// Ошибка хранилища восстановимая: обертка потребителя повторит
// доставку этой же записи в пределах бюджета повторов.
func (l *Listener) HandleEvent(ctx context.Context, event interface{}) error {
	msg, ok := event.(*OrderMessage)
	if !ok {
		return core.NewError(core.ErrHandleFailed, fmt.Sprintf("unexpected event type %T", event))
	}

	n, err := l.repo.Create(ctx, msg.UserID, msg.ID)
	if err != nil {
		return core.Wrap(err, core.ErrHandleFailed, "failed to record notification")
	}

	l.logger.Info("notification recorded",
		zap.Int64("notification_id", n.ID),
		zap.Int64("order_id", msg.ID),
		zap.Int64("user_id", msg.UserID))
	return nil
}
