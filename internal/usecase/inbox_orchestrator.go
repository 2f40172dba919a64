package usecase

import (
	"context"
	"fmt"
	"time"

	"manifest-service/internal/domain/entity"
	"manifest-service/internal/domain/repository"
	"manifest-service/pkg/logger"
)

// InboxOrchestrator hands mailbox messages to the matching attachment handler
type InboxOrchestrator struct {
	inboxRepo repository.InboxRepository
	router    SubjectRouter
	logger    logger.Logger
}

// NewInboxOrchestrator creates a new inbox orchestrator
func NewInboxOrchestrator(
	inboxRepo repository.InboxRepository,
	router SubjectRouter,
	logger logger.Logger,
) *InboxOrchestrator {
	return &InboxOrchestrator{
		inboxRepo: inboxRepo,
		router:    router,
		logger:    logger,
	}
}

// ProcessMessage processes a single message immediately after fetching
func (o *InboxOrchestrator) ProcessMessage(ctx context.Context, msg *entity.InboxMessage) error {
	handler := o.router.GetHandler(msg.Subject)
	if handler == nil {
		o.logger.Debug("No handler found for message",
			"subject", msg.Subject,
			"messageID", msg.MessageID)

		// Not an error, the message is simply not a passport submission
		return o.inboxRepo.MarkAsProcessedByMessageID(
			ctx,
			msg.MessageID,
			entity.InboxStatusSkipped,
			"none",
			"No matching handler found",
			nil,
		)
	}

	handlerType := fmt.Sprintf("%T", handler)
	o.logger.Info("Processing message with handler",
		"messageID", msg.MessageID,
		"handler", handlerType,
		"attachments", len(msg.Attachments))

	if err := o.inboxRepo.UpdateStatusByMessageID(ctx, msg.MessageID, entity.InboxStatusProcessing, time.Now()); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	recordIDs, err := handler.Process(ctx, msg)
	if err != nil {
		o.logger.Error("Handler failed to process message",
			"messageID", msg.MessageID,
			"handler", handlerType,
			"error", err)

		// Mark as failed but don't return error - let other messages continue
		if markErr := o.inboxRepo.MarkAsProcessedByMessageID(
			ctx,
			msg.MessageID,
			entity.InboxStatusFailed,
			handlerType,
			err.Error(),
			nil,
		); markErr != nil {
			o.logger.Error("Failed to mark message as failed", "messageID", msg.MessageID, "error", markErr)
		}
		return nil
	}

	o.logger.Info("Message processed successfully",
		"messageID", msg.MessageID,
		"handler", handlerType,
		"records", len(recordIDs))

	return o.inboxRepo.MarkAsProcessedByMessageID(
		ctx,
		msg.MessageID,
		entity.InboxStatusCompleted,
		handlerType,
		"",
		recordIDs,
	)
}
