package templates

import (
	"context"
	"errors"
	"strings"

	"manifest-service/internal/domain/entity"
	"manifest-service/internal/usecase"
	"manifest-service/pkg/logger"
)

var errNoScans = errors.New("message has no image or PDF attachments")

// PassportScanHandler ingests passport scans attached to matching messages
type PassportScanHandler struct {
	pipeline *usecase.IngestionPipeline
	patterns []string
	logger   logger.Logger
}

// NewPassportScanHandler creates a new passport scan handler
func NewPassportScanHandler(pipeline *usecase.IngestionPipeline, patterns []string, logger logger.Logger) *PassportScanHandler {
	return &PassportScanHandler{
		pipeline: pipeline,
		patterns: patterns,
		logger:   logger,
	}
}

// CanHandle determines if this handler can process the given message subject
func (h *PassportScanHandler) CanHandle(subject string) bool {
	subjectUpper := strings.ToUpper(subject)
	for _, pattern := range h.patterns {
		if pattern != "" && strings.Contains(subjectUpper, strings.ToUpper(pattern)) {
			return true
		}
	}
	return false
}

// Process ingests every scan attachment of the message as one batch
func (h *PassportScanHandler) Process(ctx context.Context, msg *entity.InboxMessage) ([]string, error) {
	docs := make([]entity.Document, 0, len(msg.Attachments))
	for _, att := range msg.Attachments {
		if !IsScanMimeType(att.ContentType) {
			h.logger.Debug("Skipping non-scan attachment",
				"messageID", msg.MessageID,
				"file", att.Filename,
				"contentType", att.ContentType)
			continue
		}
		docs = append(docs, entity.Document{
			FileName: att.Filename,
			MimeType: att.ContentType,
			Data:     att.Data,
		})
	}

	if len(docs) == 0 {
		return nil, errNoScans
	}

	return h.pipeline.Ingest(ctx, docs), nil
}

// IsScanMimeType reports whether a content type can hold a document scan
func IsScanMimeType(contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	return strings.HasPrefix(contentType, "image/") || contentType == "application/pdf"
}
