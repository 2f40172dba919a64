package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"manifest-service/internal/domain/entity"
	"manifest-service/internal/domain/repository"
	"manifest-service/pkg/logger"
	"manifest-service/pkg/metrics"
)

// ExportHeaders are the literal column titles of the manifest export
var ExportHeaders = []string{
	"NO",
	"TYPE",
	"TITLE",
	"FIRST NAME",
	"LAST NAME",
	"GENDER",
	"PASSPORT NUMBER",
	"COUNTRY",
	"DATE OF BIRTH",
	"DATE OF ISSUE",
	"DATE OF EXPIRE",
}

const exportSheetName = "Manifest"

// ExportService renders the current manifest view through the export writer
type ExportService struct {
	writer    repository.ExportRepository
	countries repository.CountryRepository
	metrics   *metrics.Metrics
	logger    logger.Logger
	now       func() time.Time
}

// NewExportService creates an export service. countries may be nil, in which
// case nationalities are exported as stored.
func NewExportService(
	writer repository.ExportRepository,
	countries repository.CountryRepository,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *ExportService {
	return &ExportService{
		writer:    writer,
		countries: countries,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Export writes the given view, in order, to a downloadable file
func (s *ExportService) Export(ctx context.Context, view []entity.PassengerRecord) (*entity.ExportFile, error) {
	if len(view) == 0 {
		return nil, ErrNothingToExport
	}

	table := BuildExportTable(view, s.countryResolver(ctx))
	data, err := s.writer.Write(ctx, table)
	if err != nil {
		s.metrics.ErrorsCount.WithLabelValues("export").Inc()
		return nil, fmt.Errorf("failed to write export: %w", err)
	}

	s.metrics.ExportsGenerated.Inc()
	s.logger.Info("Manifest exported", "rows", len(view))

	return &entity.ExportFile{
		FileName:    fmt.Sprintf("manifest_%s%s", s.now().Format("20060102_150405"), s.writer.Extension()),
		ContentType: s.writer.ContentType(),
		Data:        data,
	}, nil
}

// BuildExportTable lays out one 1-indexed row per record. countryName maps a
// stored nationality to the printed COUNTRY value.
func BuildExportTable(view []entity.PassengerRecord, countryName func(string) string) *entity.ExportTable {
	rows := make([][]string, 0, len(view))
	for i, rec := range view {
		country := rec.Nationality
		if countryName != nil {
			country = countryName(rec.Nationality)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			string(rec.PassengerType),
			rec.Title,
			rec.FirstName,
			rec.LastName,
			rec.Gender,
			rec.PassportNumber,
			country,
			rec.DateOfBirth,
			rec.IssueDate,
			rec.ExpiryDate,
		})
	}

	headers := make([]string, len(ExportHeaders))
	copy(headers, ExportHeaders)

	return &entity.ExportTable{
		SheetName: exportSheetName,
		Headers:   headers,
		Rows:      rows,
	}
}

// countryResolver looks nationality codes up once per distinct value
func (s *ExportService) countryResolver(ctx context.Context) func(string) string {
	if s.countries == nil {
		return nil
	}

	cache := make(map[string]string)
	return func(code string) string {
		if code == "" {
			return ""
		}
		if name, ok := cache[code]; ok {
			return name
		}
		name := code
		country, err := s.countries.GetByCode(ctx, code)
		if err != nil {
			s.logger.Debug("Country lookup failed, exporting raw nationality", "code", code, "error", err)
		} else if country != nil && country.Name != "" {
			name = country.Name
		}
		cache[code] = name
		return name
	}
}
