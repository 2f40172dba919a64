package repository

import (
	"context"
	"time"

	"manifest-service/internal/domain/entity"
)

// InboxRepository defines the interface for mailbox message bookkeeping
type InboxRepository interface {
	Save(ctx context.Context, msg *entity.InboxMessage) error
	GetLastMessage(ctx context.Context) (*entity.InboxMessage, error)
	FindByMessageIDs(ctx context.Context, messageIDs []string) (map[string]*entity.InboxMessage, error)
	UpdateStatusByMessageID(ctx context.Context, messageID string, status string, startedAt time.Time) error
	MarkAsProcessedByMessageID(ctx context.Context, messageID, status, handlerType, errorDetail string, recordIDs []string) error
}
