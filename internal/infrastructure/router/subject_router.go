package router

import (
	"manifest-service/internal/usecase"
	"manifest-service/pkg/logger"
)

// SubjectRouter routes inbox messages to appropriate handlers based on subject
type SubjectRouter struct {
	handlers []usecase.AttachmentHandler
	logger   logger.Logger
}

// NewSubjectRouter creates a new subject router
func NewSubjectRouter(logger logger.Logger) *SubjectRouter {
	return &SubjectRouter{
		handlers: make([]usecase.AttachmentHandler, 0),
		logger:   logger,
	}
}

// Register registers a handler for specific subject patterns
func (r *SubjectRouter) Register(handler usecase.AttachmentHandler) {
	r.handlers = append(r.handlers, handler)
	r.logger.Info("Registered handler", "handler", handler)
}

// GetHandler returns the first registered handler accepting the subject
func (r *SubjectRouter) GetHandler(subject string) usecase.AttachmentHandler {
	for _, handler := range r.handlers {
		if handler.CanHandle(subject) {
			return handler
		}
	}
	return nil
}
