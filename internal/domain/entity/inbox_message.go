package entity

import (
	"time"
)

// Inbox Message Process Status
const (
	InboxStatusPending    = "PENDING"
	InboxStatusProcessing = "PROCESSING"
	InboxStatusCompleted  = "COMPLETED"
	InboxStatusFailed     = "FAILED"
	InboxStatusSkipped    = "SKIPPED"
)

// InboxMessage represents a mailbox message that may carry passport scans
type InboxMessage struct {
	MessageID        string       `bson:"messageId"`
	From             string       `bson:"from"`
	Subject          string       `bson:"subject"`
	ReceivedAt       time.Time    `bson:"receivedAt"`
	Attachments      []Attachment `bson:"-"`
	AttachmentNames  []string     `bson:"attachmentNames"`
	ProcessedAt      time.Time    `bson:"processedAt"`
	ProcessStatus    string       `bson:"processStatus"`
	HandlerType      string       `bson:"handlerType"`
	ProcessStartedAt time.Time    `bson:"processStartedAt"`
	ErrorDetail      string       `bson:"errorDetail"`
	RecordIDs        []string     `bson:"recordIds"`
}

// Attachment represents a message attachment
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}
