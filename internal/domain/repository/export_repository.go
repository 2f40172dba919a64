package repository

import (
	"context"

	"manifest-service/internal/domain/entity"
)

// ExportRepository renders a manifest table into a downloadable artifact
type ExportRepository interface {
	Write(ctx context.Context, table *entity.ExportTable) ([]byte, error)
	ContentType() string
	Extension() string
}
