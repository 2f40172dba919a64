package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"manifest-service/internal/domain/entity"
	"manifest-service/internal/domain/repository"
	"manifest-service/pkg/logger"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// MessageProcessor consumes a stored inbox message
type MessageProcessor interface {
	ProcessMessage(ctx context.Context, msg *entity.InboxMessage) error
}

// attachmentFetcher loads attachment bodies the API did not inline
type attachmentFetcher func(ctx context.Context, messageID, attachmentID string) (string, error)

// GmailService polls a mailbox and hands new messages to the processor
type GmailService struct {
	gmailService *gmail.Service
	inboxRepo    repository.InboxRepository
	processor    MessageProcessor
	logger       logger.Logger
	pollInterval time.Duration
	lookback     time.Duration
}

// NewGmailService creates a new Gmail service
func NewGmailService(
	ctx context.Context,
	tokenSource oauth2.TokenSource,
	inboxRepo repository.InboxRepository,
	processor MessageProcessor,
	logger logger.Logger,
	pollInterval time.Duration,
) (*GmailService, error) {
	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail client: %w", err)
	}

	return &GmailService{
		gmailService: service,
		inboxRepo:    inboxRepo,
		processor:    processor,
		logger:       logger,
		pollInterval: pollInterval,
		lookback:     7 * 24 * time.Hour,
	}, nil
}

// StartPolling polls Gmail until ctx is cancelled
func (s *GmailService) StartPolling(ctx context.Context) {
	if err := s.FetchAndProcessMessages(ctx); err != nil {
		s.logger.Error("Error polling Gmail", "error", err)
	}

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Gmail polling stopped")
			return
		case <-ticker.C:
			s.logger.Debug("Polling Gmail for new messages")
			if err := s.FetchAndProcessMessages(ctx); err != nil {
				s.logger.Error("Error polling Gmail", "error", err)
			}
		}
	}
}

// FetchAndProcessMessages fetches unseen messages and processes them immediately
func (s *GmailService) FetchAndProcessMessages(ctx context.Context) error {
	lastMessage, err := s.inboxRepo.GetLastMessage(ctx)
	if err != nil {
		s.logger.Error("Failed to get last message", "error", err)
	}

	fetchFrom := time.Now().Add(-s.lookback)
	if lastMessage != nil {
		fetchFrom = lastMessage.ReceivedAt
	}

	query := fmt.Sprintf("after:%s has:attachment", fetchFrom.Format("2006/01/02"))
	resp, err := s.gmailService.Users.Messages.List("me").Q(query).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to list messages: %w", err)
	}

	if len(resp.Messages) == 0 {
		s.logger.Debug("No new messages found")
		return nil
	}

	messageIDs := make([]string, len(resp.Messages))
	for i, msg := range resp.Messages {
		messageIDs[i] = msg.Id
	}

	existing, err := s.inboxRepo.FindByMessageIDs(ctx, messageIDs)
	if err != nil {
		s.logger.Error("Failed to check existing messages", "error", err)
		existing = make(map[string]*entity.InboxMessage)
	}

	newCount := 0
	processedCount := 0

	for _, msg := range resp.Messages {
		if _, exists := existing[msg.Id]; exists {
			continue
		}

		fullMsg, err := s.gmailService.Users.Messages.Get("me", msg.Id).Context(ctx).Do()
		if err != nil {
			s.logger.Error("Failed to get message", "msgId", msg.Id, "error", err)
			continue
		}

		inboxMsg, err := convertToInboxMessage(ctx, fullMsg, s.fetchAttachment)
		if err != nil {
			s.logger.Error("Failed to convert message", "msgId", msg.Id, "error", err)
			continue
		}

		if err := s.inboxRepo.Save(ctx, inboxMsg); err != nil {
			s.logger.Error("Failed to save message", "messageID", inboxMsg.MessageID, "error", err)
			continue
		}
		newCount++

		if err := s.processor.ProcessMessage(ctx, inboxMsg); err != nil {
			s.logger.Error("Failed to process message", "messageID", inboxMsg.MessageID, "error", err)
		} else {
			processedCount++
		}
	}

	s.logger.Info("Gmail fetch and process completed",
		"totalMessages", len(resp.Messages),
		"newMessages", newCount,
		"processedMessages", processedCount)

	return nil
}

func (s *GmailService) fetchAttachment(ctx context.Context, messageID, attachmentID string) (string, error) {
	body, err := s.gmailService.Users.Messages.Attachments.Get("me", messageID, attachmentID).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return body.Data, nil
}

// convertToInboxMessage converts a Gmail message to the domain entity
func convertToInboxMessage(ctx context.Context, msg *gmail.Message, fetch attachmentFetcher) (*entity.InboxMessage, error) {
	if msg.Payload == nil {
		return nil, fmt.Errorf("message %s has no payload", msg.Id)
	}

	inboxMsg := &entity.InboxMessage{
		MessageID:     msg.Id,
		ProcessStatus: entity.InboxStatusPending,
		ReceivedAt:    time.UnixMilli(msg.InternalDate),
	}

	for _, header := range msg.Payload.Headers {
		switch header.Name {
		case "From":
			inboxMsg.From = header.Value
		case "Subject":
			inboxMsg.Subject = header.Value
		}
	}

	if err := collectAttachments(ctx, msg.Id, msg.Payload, fetch, inboxMsg); err != nil {
		return nil, err
	}
	return inboxMsg, nil
}

// collectAttachments walks nested multipart parts
func collectAttachments(ctx context.Context, messageID string, part *gmail.MessagePart, fetch attachmentFetcher, msg *entity.InboxMessage) error {
	if part.Filename != "" && part.Body != nil {
		encoded := part.Body.Data
		if encoded == "" && part.Body.AttachmentId != "" {
			var err error
			encoded, err = fetch(ctx, messageID, part.Body.AttachmentId)
			if err != nil {
				return fmt.Errorf("failed to fetch attachment %s: %w", part.Filename, err)
			}
		}

		data, err := decodeBody(encoded)
		if err != nil {
			return fmt.Errorf("failed to decode attachment %s: %w", part.Filename, err)
		}

		msg.Attachments = append(msg.Attachments, entity.Attachment{
			Filename:    part.Filename,
			ContentType: part.MimeType,
			Data:        data,
		})
		msg.AttachmentNames = append(msg.AttachmentNames, part.Filename)
	}

	for _, child := range part.Parts {
		if err := collectAttachments(ctx, messageID, child, fetch, msg); err != nil {
			return err
		}
	}
	return nil
}

// Gmail bodies are base64url, with or without padding
func decodeBody(data string) ([]byte, error) {
	if strings.HasSuffix(data, "=") {
		return base64.URLEncoding.DecodeString(data)
	}
	return base64.RawURLEncoding.DecodeString(data)
}
