package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manifest-service/internal/domain/entity"
	"manifest-service/internal/domain/repository"
	"manifest-service/pkg/logger"
)

func newTestPipeline(recognizer *fakeRecognizer, log *fakeExtractionLog) (*IngestionPipeline, *ManifestService) {
	manifest := newTestManifest()
	var extractionLog repository.ExtractionLogRepository
	if log != nil {
		extractionLog = log
	}
	pipeline := NewIngestionPipeline(manifest, recognizer, extractionLog, newTestMetrics(), logger.NewNop())
	return pipeline, manifest
}

func TestIngestEmptyBatchIsNoOp(t *testing.T) {
	recognizer := newFakeRecognizer()
	pipeline, manifest := newTestPipeline(recognizer, nil)

	assert.Nil(t, pipeline.Ingest(context.Background(), nil))
	assert.Nil(t, pipeline.Start(context.Background(), []entity.Document{}))

	assert.Zero(t, manifest.Snapshot().Len())
	assert.False(t, manifest.HistoryState().CanUndo)
	assert.Empty(t, recognizer.Calls())
	assert.Equal(t, entity.IngestionProgress{Status: entity.IngestionIdle}, pipeline.Progress())
}

func TestIngestFailureDoesNotAbortBatch(t *testing.T) {
	recognizer := newFakeRecognizer()
	recognizer.results["one.jpg"] = &entity.ExtractedFields{FirstName: "ann", LastName: "lee", PassportNumber: "x1"}
	recognizer.failures["two.jpg"] = &entity.ExtractionError{Message: "Could not read two.jpg"}
	recognizer.results["three.jpg"] = &entity.ExtractedFields{FirstName: "bob", LastName: "ray", PassportNumber: "x3"}
	log := &fakeExtractionLog{}
	pipeline, manifest := newTestPipeline(recognizer, log)

	ids := pipeline.Ingest(context.Background(), docs("one.jpg", "two.jpg", "three.jpg"))
	require.Len(t, ids, 3)

	records := manifest.Snapshot().Records
	require.Len(t, records, 3)
	byFile := make(map[string]entity.PassengerRecord)
	for _, r := range records {
		byFile[r.SourceFileName] = r
	}

	assert.Equal(t, entity.StatusCompleted, byFile["one.jpg"].Status)
	assert.Equal(t, "ANN", byFile["one.jpg"].FirstName)
	assert.Equal(t, "X1", byFile["one.jpg"].PassportNumber)

	assert.Equal(t, entity.StatusError, byFile["two.jpg"].Status)
	assert.Equal(t, "Could not read two.jpg", byFile["two.jpg"].ErrorMessage)

	assert.Equal(t, entity.StatusCompleted, byFile["three.jpg"].Status)
	assert.Empty(t, byFile["three.jpg"].ErrorMessage)

	assert.Equal(t, entity.IngestionProgress{Status: entity.IngestionIdle, Processed: 3, Total: 3}, pipeline.Progress())

	entries := log.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, entity.StatusError, entries[1].Status)
	assert.Equal(t, "two.jpg", entries[1].FileName)
}

func TestIngestProcessesSequentiallyAfterPlaceholders(t *testing.T) {
	recognizer := newFakeRecognizer()
	pipeline, manifest := newTestPipeline(recognizer, nil)

	var (
		mu        sync.Mutex
		firstSeen []entity.PassengerRecord
		progress  []int
	)
	recognizer.onCall = func(doc entity.Document) {
		mu.Lock()
		defer mu.Unlock()
		if firstSeen == nil {
			firstSeen = manifest.Snapshot().CloneRecords()
		}
		progress = append(progress, pipeline.Progress().Processed)
	}

	pipeline.Ingest(context.Background(), docs("a.png", "b.png", "c.png"))

	assert.Equal(t, []string{"a.png", "b.png", "c.png"}, recognizer.Calls())
	assert.Equal(t, 1, recognizer.MaxInFlight())
	assert.Equal(t, []int{0, 1, 2}, progress)

	require.Len(t, firstSeen, 3)
	for _, r := range firstSeen {
		assert.Equal(t, entity.StatusProcessing, r.Status)
		assert.Empty(t, r.FirstName)
		assert.Empty(t, r.PassportNumber)
	}
	assert.Equal(t, []string{"a.png", "b.png", "c.png"}, []string{
		firstSeen[0].SourceFileName, firstSeen[1].SourceFileName, firstSeen[2].SourceFileName,
	})
}

func TestIngestBatchIsOneHistoryEntryAndPrepended(t *testing.T) {
	recognizer := newFakeRecognizer()
	pipeline, manifest := newTestPipeline(recognizer, nil)
	manifest.prependRecords([]entity.PassengerRecord{completed("old", "OLD", "TIMER", "O1")})

	pipeline.Ingest(context.Background(), docs("a.png", "b.png"))

	records := manifest.Snapshot().Records
	require.Len(t, records, 3)
	assert.Equal(t, "old", records[2].ID)

	// one commit per extraction, then the placeholder batch
	require.True(t, manifest.Undo())
	require.True(t, manifest.Undo())
	for _, r := range manifest.Snapshot().Records[:2] {
		assert.Equal(t, entity.StatusProcessing, r.Status)
	}

	require.True(t, manifest.Undo())
	assert.Equal(t, []string{"old"}, ids(manifest.Snapshot().Records))
}

func TestIngestMergesDerivedAttributes(t *testing.T) {
	recognizer := newFakeRecognizer()
	recognizer.results["kid.jpg"] = &entity.ExtractedFields{
		FirstName: "tim", LastName: "tam", PassportNumber: "k1",
		Gender: "male", DateOfBirth: "01/01/2023",
	}
	recognizer.results["doc.jpg"] = &entity.ExtractedFields{
		Title: "dr", FirstName: "who", LastName: "ever", PassportNumber: "d1",
		Gender: "FEMALE", DateOfBirth: "01/01/1980",
	}
	pipeline, manifest := newTestPipeline(recognizer, nil)

	pipeline.Ingest(context.Background(), docs("kid.jpg", "doc.jpg"))

	records := manifest.Snapshot().Records
	require.Len(t, records, 2)

	kid, doc := records[0], records[1]
	assert.Equal(t, entity.PassengerChild, kid.PassengerType)
	assert.Equal(t, "MR", kid.Title)
	assert.Equal(t, "MALE", kid.Gender)

	assert.Equal(t, entity.PassengerAdult, doc.PassengerType)
	assert.Equal(t, "DR", doc.Title)
}

func TestIngestFlagsDuplicatesAgainstCurrentSnapshot(t *testing.T) {
	recognizer := newFakeRecognizer()
	recognizer.results["again.jpg"] = &entity.ExtractedFields{FirstName: "ann", LastName: "lee", PassportNumber: "Z1"}
	pipeline, manifest := newTestPipeline(recognizer, nil)
	manifest.prependRecords([]entity.PassengerRecord{completed("first", "ANN", "LEE", "A1")})

	pipeline.Ingest(context.Background(), docs("again.jpg"))

	records := manifest.Snapshot().Records
	require.Len(t, records, 2)
	assert.True(t, records[0].IsDuplicate)
	assert.True(t, records[1].IsDuplicate)
}

func TestIngestSameFilesTwiceCreatesNewRecords(t *testing.T) {
	recognizer := newFakeRecognizer()
	recognizer.results["p.jpg"] = &entity.ExtractedFields{FirstName: "ann", LastName: "lee", PassportNumber: "A1"}
	pipeline, manifest := newTestPipeline(recognizer, nil)

	first := pipeline.Ingest(context.Background(), docs("p.jpg"))
	second := pipeline.Ingest(context.Background(), docs("p.jpg"))

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.NotEqual(t, first[0], second[0])
	assert.Equal(t, 2, manifest.Snapshot().Len())
}

func TestIngestSkipsPlaceholderDeletedMidBatch(t *testing.T) {
	recognizer := newFakeRecognizer()
	pipeline, manifest := newTestPipeline(recognizer, nil)

	var once sync.Once
	recognizer.onCall = func(doc entity.Document) {
		once.Do(func() {
			// delete the second placeholder while the first is being read
			second := manifest.Snapshot().Records[1].ID
			require.NoError(t, manifest.Delete(second))
		})
	}

	pipeline.Ingest(context.Background(), docs("keep.jpg", "gone.jpg"))

	records := manifest.Snapshot().Records
	require.Len(t, records, 1)
	assert.Equal(t, "keep.jpg", records[0].SourceFileName)
	assert.Equal(t, entity.StatusCompleted, records[0].Status)
	assert.Equal(t, []string{"keep.jpg", "gone.jpg"}, recognizer.Calls())
}

func TestStartRunsInBackground(t *testing.T) {
	recognizer := newFakeRecognizer()
	release := make(chan struct{})
	recognizer.onCall = func(doc entity.Document) {
		<-release
	}
	pipeline, manifest := newTestPipeline(recognizer, nil)

	ctx, cancel := context.WithCancel(context.Background())
	ids := pipeline.Start(ctx, docs("a.jpg", "b.jpg"))
	cancel()

	require.Len(t, ids, 2)
	assert.Equal(t, 2, manifest.Snapshot().Len())
	progress := pipeline.Progress()
	assert.Equal(t, entity.IngestionProcessing, progress.Status)
	assert.Equal(t, 2, progress.Total)

	close(release)
	pipeline.Wait()

	for _, r := range manifest.Snapshot().Records {
		assert.Equal(t, entity.StatusCompleted, r.Status)
	}
	assert.Equal(t, entity.IngestionIdle, pipeline.Progress().Status)
}

func TestExtractionLogFailureDoesNotAffectManifest(t *testing.T) {
	recognizer := newFakeRecognizer()
	log := &fakeExtractionLog{err: errors.New("mongo down")}
	pipeline, manifest := newTestPipeline(recognizer, log)

	pipeline.Ingest(context.Background(), docs("a.jpg"))

	assert.Equal(t, entity.StatusCompleted, manifest.Snapshot().Records[0].Status)
}

func TestExtractionMessage(t *testing.T) {
	assert.Equal(t, "bad scan", extractionMessage(&entity.ExtractionError{Message: "bad scan"}))
	assert.Equal(t, "Document extraction timed out", extractionMessage(context.DeadlineExceeded))
	assert.Equal(t, "boom", extractionMessage(errors.New("boom")))
}
