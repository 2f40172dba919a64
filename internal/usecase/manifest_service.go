package usecase

import (
	"strings"
	"time"

	"manifest-service/internal/domain/entity"
	"manifest-service/pkg/history"
	"manifest-service/pkg/logger"
	"manifest-service/pkg/metrics"
	"manifest-service/pkg/utils"
)

// History operations, used as the metrics label
const (
	opIngestBatch = "ingest_batch"
	opExtraction  = "extraction"
	opEdit        = "edit"
	opDelete      = "delete"
	opClear       = "clear"
	opManualAdd   = "manual_add"
	opUndo        = "undo"
	opRedo        = "redo"
)

// ManifestService is the single mutation gateway for the manifest. Every
// change computes a complete next snapshot and commits it to the history.
type ManifestService struct {
	history *history.History[entity.Manifest]
	metrics *metrics.Metrics
	logger  logger.Logger
	now     func() time.Time
}

// NewManifestService creates a manifest service with an empty manifest
func NewManifestService(historyLimit int, metrics *metrics.Metrics, logger logger.Logger) *ManifestService {
	return &ManifestService{
		history: history.New(&entity.Manifest{}, historyLimit),
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock overrides the clock used for age derivation
func (s *ManifestService) WithClock(now func() time.Time) *ManifestService {
	s.now = now
	return s
}

// Snapshot returns the present manifest. The result must not be modified.
func (s *ManifestService) Snapshot() *entity.Manifest {
	return s.history.Present()
}

// HistoryState reports undo/redo availability
func (s *ManifestService) HistoryState() entity.HistoryState {
	past, future := s.history.Depth()
	return entity.HistoryState{
		CanUndo:     past > 0,
		CanRedo:     future > 0,
		PastDepth:   past,
		FutureDepth: future,
	}
}

// Undo restores the previous snapshot; a no-op when there is none
func (s *ManifestService) Undo() bool {
	ok := s.history.Undo()
	if ok {
		s.metrics.HistoryCommits.WithLabelValues(opUndo).Inc()
	}
	return ok
}

// Redo re-applies the last undone snapshot; a no-op when there is none
func (s *ManifestService) Redo() bool {
	ok := s.history.Redo()
	if ok {
		s.metrics.HistoryCommits.WithLabelValues(opRedo).Inc()
	}
	return ok
}

// AddManual prepends an empty pending record for keying a passenger in by hand
func (s *ManifestService) AddManual() entity.PassengerRecord {
	record := entity.PassengerRecord{
		ID:            entity.NewPassengerID(),
		PassengerType: entity.PassengerAdult,
		Status:        entity.StatusPending,
	}
	s.commit(opManualAdd, func(current *entity.Manifest) *entity.Manifest {
		records := make([]entity.PassengerRecord, 0, current.Len()+1)
		records = append(records, record)
		records = append(records, current.Records...)
		return &entity.Manifest{Records: records}
	})
	return record
}

// UpdateField sets one editable field of a record. Birth date and gender edits
// re-derive passenger type and title, overwriting any edited title.
func (s *ManifestService) UpdateField(id string, field entity.PassengerField, value string) (entity.PassengerRecord, error) {
	if !field.IsEditable() {
		return entity.PassengerRecord{}, ErrUnknownField
	}

	value = strings.TrimSpace(value)
	if !field.IsDate() {
		value = utils.NormalizeUpper(value)
	}

	var updated entity.PassengerRecord
	found := false
	s.commit(opEdit, func(current *entity.Manifest) *entity.Manifest {
		idx := current.IndexOf(id)
		if idx < 0 {
			return current
		}
		found = true
		records := current.CloneRecords()
		rec := &records[idx]
		rec.Set(field, value)

		if field == entity.FieldDateOfBirth || field == entity.FieldGender {
			attrs := DerivePassengerAttributes(rec.DateOfBirth, rec.Gender, s.now())
			rec.PassengerType = attrs.PassengerType
			rec.Title = attrs.Title
		}
		if rec.Status == entity.StatusPending && rec.FirstName != "" && rec.LastName != "" {
			rec.Status = entity.StatusCompleted
		}

		RefreshDuplicates(records)
		updated = records[idx]
		return &entity.Manifest{Records: records}
	})

	if !found {
		return entity.PassengerRecord{}, ErrRecordNotFound
	}
	return updated, nil
}

// Delete removes a record. It is recoverable through Undo.
func (s *ManifestService) Delete(id string) error {
	found := false
	s.commit(opDelete, func(current *entity.Manifest) *entity.Manifest {
		idx := current.IndexOf(id)
		if idx < 0 {
			return current
		}
		found = true
		records := make([]entity.PassengerRecord, 0, current.Len()-1)
		records = append(records, current.Records[:idx]...)
		records = append(records, current.Records[idx+1:]...)
		RefreshDuplicates(records)
		return &entity.Manifest{Records: records}
	})

	if !found {
		return ErrRecordNotFound
	}
	return nil
}

// Clear empties the manifest as one undoable step. Clearing an empty manifest is a no-op.
func (s *ManifestService) Clear() bool {
	return s.commit(opClear, func(current *entity.Manifest) *entity.Manifest {
		if current.Len() == 0 {
			return current
		}
		return &entity.Manifest{Records: []entity.PassengerRecord{}}
	})
}

// prependRecords commits a batch of new records in front of the current ones
// as a single history entry
func (s *ManifestService) prependRecords(batch []entity.PassengerRecord) bool {
	return s.commit(opIngestBatch, func(current *entity.Manifest) *entity.Manifest {
		records := make([]entity.PassengerRecord, 0, len(batch)+current.Len())
		records = append(records, batch...)
		records = append(records, current.Records...)
		RefreshDuplicates(records)
		return &entity.Manifest{Records: records}
	})
}

// applyToRecord commits fn applied to a copy of the record with the given id.
// It returns the updated record and false when the record no longer exists.
func (s *ManifestService) applyToRecord(op, id string, fn func(rec *entity.PassengerRecord)) (entity.PassengerRecord, bool) {
	var updated entity.PassengerRecord
	found := false
	s.commit(op, func(current *entity.Manifest) *entity.Manifest {
		idx := current.IndexOf(id)
		if idx < 0 {
			return current
		}
		found = true
		records := current.CloneRecords()
		fn(&records[idx])
		RefreshDuplicates(records)
		updated = records[idx]
		return &entity.Manifest{Records: records}
	})
	return updated, found
}

func (s *ManifestService) commit(op string, fn func(current *entity.Manifest) *entity.Manifest) bool {
	ok := s.history.Update(fn)
	if ok {
		s.metrics.HistoryCommits.WithLabelValues(op).Inc()
		s.logger.Debug("Manifest snapshot committed", "operation", op)
	}
	return ok
}
