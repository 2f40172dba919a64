package repository

import (
	"context"

	"manifest-service/internal/domain/entity"
)

// ExtractionLogRepository stores the audit trail of extraction attempts
type ExtractionLogRepository interface {
	Save(ctx context.Context, log *entity.ExtractionLog) error
}
