package recognition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"manifest-service/internal/domain/entity"
	"manifest-service/pkg/logger"
)

const extractionPrompt = `You are reading a scanned travel document (passport or ID card).
Extract the passenger fields into the JSON schema.
Rules:
- Dates use DD/MM/YYYY.
- gender is MALE or FEMALE.
- nationality is the three letter country code printed on the document.
- title is one of MR, MRS, MS, MSTR, MISS only when printed on the document, otherwise leave it empty.
- Leave a field empty when it cannot be read. Never guess.`

// requiredFields are requested as mandatory but may still come back empty
var requiredFields = []string{"firstName", "lastName", "passportNumber"}

// GeminiRecognizer extracts passenger fields with Gemini structured output
type GeminiRecognizer struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  logger.Logger
}

// NewGeminiRecognizer creates a recognizer backed by the Gemini API
func NewGeminiRecognizer(ctx context.Context, apiKey, model string, timeout time.Duration, logger logger.Logger) (*GeminiRecognizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiRecognizer{
		client:  client,
		model:   model,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Extract sends one document to Gemini and decodes the structured reply
func (r *GeminiRecognizer) Extract(ctx context.Context, doc entity.Document) (*entity.ExtractedFields, error) {
	if len(doc.Data) == 0 {
		return nil, &entity.ExtractionError{Message: fmt.Sprintf("%s is empty", doc.FileName)}
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(doc.Data, doc.MimeType),
			genai.NewPartFromText(extractionPrompt),
		}, genai.RoleUser),
	}

	temperature := float32(0)
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
		ResponseSchema:   passengerSchema(),
	}

	result, err := r.client.Models.GenerateContent(ctx, r.model, contents, config)
	if err != nil {
		r.logger.Error("Gemini extraction failed", "file", doc.FileName, "error", err)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &entity.ExtractionError{
				Message: fmt.Sprintf("Timed out reading %s. Please try again.", doc.FileName),
				Err:     err,
			}
		}
		return nil, &entity.ExtractionError{
			Message: fmt.Sprintf("Failed to extract data from %s. Please check the image and try again.", doc.FileName),
			Err:     err,
		}
	}

	fields, err := decodeExtraction(result.Text())
	if err != nil {
		return nil, &entity.ExtractionError{
			Message: fmt.Sprintf("Could not understand the data read from %s.", doc.FileName),
			Err:     err,
		}
	}

	r.logger.Debug("Gemini extraction succeeded", "file", doc.FileName, "model", r.model)
	return fields, nil
}

// passengerSchema describes the JSON object Gemini must return
func passengerSchema() *genai.Schema {
	str := func(description string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: description}
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":          str("MR, MRS, MS, MSTR or MISS if printed"),
			"firstName":      str("Given names"),
			"lastName":       str("Surname"),
			"passportNumber": str("Document number"),
			"nationality":    str("Three letter nationality code"),
			"gender":         str("MALE or FEMALE"),
			"dateOfBirth":    str("Date of birth, DD/MM/YYYY"),
			"issueDate":      str("Date of issue, DD/MM/YYYY"),
			"expiryDate":     str("Date of expiry, DD/MM/YYYY"),
		},
		Required: requiredFields,
		PropertyOrdering: []string{
			"title", "firstName", "lastName", "passportNumber", "nationality",
			"gender", "dateOfBirth", "issueDate", "expiryDate",
		},
	}
}

// decodeExtraction parses the model reply, tolerating a fenced code block
func decodeExtraction(text string) (*entity.ExtractedFields, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if text == "" {
		return nil, errors.New("empty response")
	}

	var fields entity.ExtractedFields
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, fmt.Errorf("failed to decode extraction: %w", err)
	}
	return &fields, nil
}
