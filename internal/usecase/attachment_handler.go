package usecase

import (
	"context"

	"manifest-service/internal/domain/entity"
)

// AttachmentHandler defines the interface for inbox message handlers
type AttachmentHandler interface {
	// CanHandle determines if this handler can process the given message subject
	CanHandle(subject string) bool

	// Process ingests the message attachments and returns the created record ids
	Process(ctx context.Context, msg *entity.InboxMessage) ([]string, error)
}

// SubjectRouter routes messages to the appropriate handler based on subject
type SubjectRouter interface {
	// Register registers a handler for specific subject patterns
	Register(handler AttachmentHandler)

	// GetHandler returns the appropriate handler for a given subject
	GetHandler(subject string) AttachmentHandler
}
