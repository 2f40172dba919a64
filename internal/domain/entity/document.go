package entity

import "time"

// Document is one scanned travel document submitted for extraction
type Document struct {
	FileName string
	MimeType string
	Data     []byte
}

// ExtractedFields is the partial record returned by the recognition service.
// Any field may be empty.
type ExtractedFields struct {
	Title          string `json:"title,omitempty"`
	FirstName      string `json:"firstName,omitempty"`
	LastName       string `json:"lastName,omitempty"`
	PassportNumber string `json:"passportNumber,omitempty"`
	Nationality    string `json:"nationality,omitempty"`
	Gender         string `json:"gender,omitempty"`
	DateOfBirth    string `json:"dateOfBirth,omitempty"`
	IssueDate      string `json:"issueDate,omitempty"`
	ExpiryDate     string `json:"expiryDate,omitempty"`
}

// ExtractionError is a recognition failure carrying a message fit to show the user
type ExtractionError struct {
	Message string
	Err     error
}

func (e *ExtractionError) Error() string {
	return e.Message
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// IngestionStatus is the pipeline-level status
type IngestionStatus string

const (
	IngestionIdle       IngestionStatus = "idle"
	IngestionProcessing IngestionStatus = "processing"
)

// IngestionProgress reports how far the running batches have got
type IngestionProgress struct {
	Status    IngestionStatus `json:"status"`
	Processed int             `json:"processed"`
	Total     int             `json:"total"`
}

// ExtractionLog is the audit entry written for every extraction attempt
type ExtractionLog struct {
	ID           string        `bson:"_id,omitempty"`
	RecordID     string        `bson:"recordId"`
	FileName     string        `bson:"fileName"`
	MimeType     string        `bson:"mimeType"`
	SizeBytes    int           `bson:"sizeBytes"`
	Status       RecordStatus  `bson:"status"`
	ErrorMessage string        `bson:"errorMessage,omitempty"`
	Duration     time.Duration `bson:"duration"`
	CreatedAt    time.Time     `bson:"createdAt"`
}
