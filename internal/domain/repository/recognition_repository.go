package repository

import (
	"context"

	"manifest-service/internal/domain/entity"
)

// RecognitionRepository extracts passenger fields from a scanned document.
// Failures should be *entity.ExtractionError so the message can be shown to the user.
type RecognitionRepository interface {
	Extract(ctx context.Context, doc entity.Document) (*entity.ExtractedFields, error)
}
