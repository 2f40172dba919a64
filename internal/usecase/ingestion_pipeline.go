package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"manifest-service/internal/domain/entity"
	"manifest-service/internal/domain/repository"
	"manifest-service/pkg/logger"
	"manifest-service/pkg/metrics"
	"manifest-service/pkg/utils"
)

const defaultExtractionFailure = "Failed to extract passenger data from the document"

// IngestionPipeline turns scanned documents into passenger records. Each batch
// is committed as placeholders first and then extracted one file at a time.
type IngestionPipeline struct {
	manifest      *ManifestService
	recognizer    repository.RecognitionRepository
	extractionLog repository.ExtractionLogRepository
	metrics       *metrics.Metrics
	logger        logger.Logger

	mu        sync.Mutex
	processed int
	total     int
	wg        sync.WaitGroup
}

// NewIngestionPipeline creates a pipeline. extractionLog may be nil.
func NewIngestionPipeline(
	manifest *ManifestService,
	recognizer repository.RecognitionRepository,
	extractionLog repository.ExtractionLogRepository,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *IngestionPipeline {
	return &IngestionPipeline{
		manifest:      manifest,
		recognizer:    recognizer,
		extractionLog: extractionLog,
		metrics:       metrics,
		logger:        logger,
	}
}

type placeholder struct {
	id  string
	doc entity.Document
}

// Ingest commits one placeholder per document and extracts them in order,
// returning once the whole batch is done. It returns the new record ids.
// An empty batch is ignored.
func (p *IngestionPipeline) Ingest(ctx context.Context, docs []entity.Document) []string {
	batch := p.begin(docs)
	if len(batch) == 0 {
		return nil
	}
	p.run(ctx, batch)
	return batchIDs(batch)
}

// Start commits the placeholders and extracts in the background. Extraction
// is not tied to ctx cancellation: a started batch always runs to completion.
func (p *IngestionPipeline) Start(ctx context.Context, docs []entity.Document) []string {
	batch := p.begin(docs)
	if len(batch) == 0 {
		return nil
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.run(context.WithoutCancel(ctx), batch)
	}()
	return batchIDs(batch)
}

// Wait blocks until every started batch has finished
func (p *IngestionPipeline) Wait() {
	p.wg.Wait()
}

// Progress reports the counters across running batches
func (p *IngestionPipeline) Progress() entity.IngestionProgress {
	p.mu.Lock()
	defer p.mu.Unlock()

	status := entity.IngestionIdle
	if p.processed < p.total {
		status = entity.IngestionProcessing
	}
	return entity.IngestionProgress{
		Status:    status,
		Processed: p.processed,
		Total:     p.total,
	}
}

func (p *IngestionPipeline) begin(docs []entity.Document) []placeholder {
	if len(docs) == 0 {
		return nil
	}

	batch := make([]placeholder, len(docs))
	records := make([]entity.PassengerRecord, len(docs))
	for i, doc := range docs {
		id := entity.NewPassengerID()
		batch[i] = placeholder{id: id, doc: doc}
		records[i] = entity.PassengerRecord{
			ID:             id,
			PassengerType:  entity.PassengerAdult,
			SourceFileName: doc.FileName,
			Status:         entity.StatusProcessing,
		}
	}

	p.mu.Lock()
	if p.processed >= p.total {
		p.processed, p.total = 0, 0
	}
	p.total += len(docs)
	p.mu.Unlock()

	p.manifest.prependRecords(records)
	p.metrics.DocumentsIngested.Add(float64(len(docs)))
	p.logger.Info("Accepted document batch", "count", len(docs))
	return batch
}

func (p *IngestionPipeline) run(ctx context.Context, batch []placeholder) {
	failed := 0
	for _, item := range batch {
		if !p.processDocument(ctx, item) {
			failed++
		}
		p.advance()
	}
	p.logger.Info("Document batch finished",
		"count", len(batch),
		"failed", failed)
}

// processDocument extracts one document and settles its placeholder. It
// returns false when extraction failed.
func (p *IngestionPipeline) processDocument(ctx context.Context, item placeholder) bool {
	start := time.Now()
	fields, err := p.recognizer.Extract(ctx, item.doc)
	elapsed := time.Since(start)
	p.metrics.ExtractionTime.Observe(elapsed.Seconds())

	var (
		rec   entity.PassengerRecord
		found bool
	)
	if err != nil {
		message := extractionMessage(err)
		p.metrics.ExtractionFailures.Inc()
		p.logger.Warn("Document extraction failed",
			"recordID", item.id,
			"file", item.doc.FileName,
			"error", err)

		rec, found = p.manifest.applyToRecord(opExtraction, item.id, func(r *entity.PassengerRecord) {
			r.Status = entity.StatusError
			r.ErrorMessage = message
		})
	} else {
		if fields == nil {
			fields = &entity.ExtractedFields{}
		}
		now := p.manifest.now()
		rec, found = p.manifest.applyToRecord(opExtraction, item.id, func(r *entity.PassengerRecord) {
			mergeExtractedFields(r, fields, now)
		})
		if found && rec.IsDuplicate {
			p.metrics.DuplicatesFlagged.Inc()
		}
	}

	if !found {
		p.logger.Debug("Placeholder removed before extraction finished", "recordID", item.id)
	}

	p.writeAudit(ctx, item, err, elapsed)
	return err == nil
}

func (p *IngestionPipeline) advance() {
	p.mu.Lock()
	p.processed++
	p.mu.Unlock()
}

func (p *IngestionPipeline) writeAudit(ctx context.Context, item placeholder, extractErr error, elapsed time.Duration) {
	if p.extractionLog == nil {
		return
	}

	entry := &entity.ExtractionLog{
		RecordID:  item.id,
		FileName:  item.doc.FileName,
		MimeType:  item.doc.MimeType,
		SizeBytes: len(item.doc.Data),
		Status:    entity.StatusCompleted,
		Duration:  elapsed,
		CreatedAt: time.Now(),
	}
	if extractErr != nil {
		entry.Status = entity.StatusError
		entry.ErrorMessage = extractErr.Error()
	}

	if err := p.extractionLog.Save(ctx, entry); err != nil {
		p.metrics.ErrorsCount.WithLabelValues("extraction_log").Inc()
		p.logger.Error("Failed to save extraction log", "recordID", item.id, "error", err)
	}
}

// mergeExtractedFields fills a placeholder from the recognition result.
// Empty values leave the placeholder field as it was. The service title wins
// over the derived one only when it is present.
func mergeExtractedFields(r *entity.PassengerRecord, fields *entity.ExtractedFields, now time.Time) {
	mergeField(&r.FirstName, utils.NormalizeUpper(fields.FirstName))
	mergeField(&r.LastName, utils.NormalizeUpper(fields.LastName))
	mergeField(&r.PassportNumber, utils.NormalizeUpper(fields.PassportNumber))
	mergeField(&r.Nationality, utils.NormalizeUpper(fields.Nationality))
	mergeField(&r.Gender, utils.NormalizeUpper(fields.Gender))
	mergeField(&r.DateOfBirth, strings.TrimSpace(fields.DateOfBirth))
	mergeField(&r.IssueDate, strings.TrimSpace(fields.IssueDate))
	mergeField(&r.ExpiryDate, strings.TrimSpace(fields.ExpiryDate))

	attrs := DerivePassengerAttributes(r.DateOfBirth, r.Gender, now)
	r.PassengerType = attrs.PassengerType
	r.Title = attrs.Title
	if title := utils.NormalizeUpper(fields.Title); title != "" {
		r.Title = title
	}

	r.Status = entity.StatusCompleted
	r.ErrorMessage = ""
}

func mergeField(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func extractionMessage(err error) string {
	var extractErr *entity.ExtractionError
	if errors.As(err, &extractErr) && extractErr.Message != "" {
		return extractErr.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Document extraction timed out"
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return defaultExtractionFailure
}

func batchIDs(batch []placeholder) []string {
	ids := make([]string, len(batch))
	for i, item := range batch {
		ids[i] = item.id
	}
	return ids
}
