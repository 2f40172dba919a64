package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/goleak"

	"manifest-service/internal/domain/entity"
	"manifest-service/pkg/logger"
	"manifest-service/pkg/metrics"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedNow = time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

func newTestMetrics() *metrics.Metrics {
	return metrics.NewMetrics("test", prometheus.NewRegistry())
}

func newTestManifest() *ManifestService {
	return NewManifestService(0, newTestMetrics(), logger.NewNop()).
		WithClock(func() time.Time { return fixedNow })
}

// fakeRecognizer answers per file name and records call order and overlap
type fakeRecognizer struct {
	mu        sync.Mutex
	results   map[string]*entity.ExtractedFields
	failures  map[string]error
	calls     []string
	inFlight  int
	maxFlight int
	onCall    func(doc entity.Document)
}

func newFakeRecognizer() *fakeRecognizer {
	return &fakeRecognizer{
		results:  make(map[string]*entity.ExtractedFields),
		failures: make(map[string]error),
	}
}

func (f *fakeRecognizer) Extract(ctx context.Context, doc entity.Document) (*entity.ExtractedFields, error) {
	f.mu.Lock()
	f.calls = append(f.calls, doc.FileName)
	f.inFlight++
	if f.inFlight > f.maxFlight {
		f.maxFlight = f.inFlight
	}
	onCall := f.onCall
	f.mu.Unlock()

	if onCall != nil {
		onCall(doc)
	}
	// give an overlapping call the chance to show up
	time.Sleep(time.Millisecond)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight--

	if err, ok := f.failures[doc.FileName]; ok {
		return nil, err
	}
	if res, ok := f.results[doc.FileName]; ok {
		copied := *res
		return &copied, nil
	}
	return &entity.ExtractedFields{}, nil
}

func (f *fakeRecognizer) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeRecognizer) MaxInFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxFlight
}

type fakeExtractionLog struct {
	mu      sync.Mutex
	entries []*entity.ExtractionLog
	err     error
}

func (f *fakeExtractionLog) Save(ctx context.Context, log *entity.ExtractionLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, log)
	return f.err
}

func (f *fakeExtractionLog) Entries() []*entity.ExtractionLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entity.ExtractionLog, len(f.entries))
	copy(out, f.entries)
	return out
}

func completed(id, first, last, passport string) entity.PassengerRecord {
	return entity.PassengerRecord{
		ID:             id,
		FirstName:      first,
		LastName:       last,
		PassportNumber: passport,
		PassengerType:  entity.PassengerAdult,
		Status:         entity.StatusCompleted,
	}
}

func docs(names ...string) []entity.Document {
	out := make([]entity.Document, len(names))
	for i, name := range names {
		out[i] = entity.Document{FileName: name, MimeType: "image/jpeg", Data: []byte(name)}
	}
	return out
}
