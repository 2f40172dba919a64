package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manifest-service/internal/domain/entity"
	"manifest-service/pkg/logger"
)

type fakeExportWriter struct {
	table *entity.ExportTable
	err   error
}

func (f *fakeExportWriter) Write(ctx context.Context, table *entity.ExportTable) ([]byte, error) {
	f.table = table
	if f.err != nil {
		return nil, f.err
	}
	return []byte("xlsx"), nil
}

func (f *fakeExportWriter) ContentType() string { return "application/test" }

func (f *fakeExportWriter) Extension() string { return ".test" }

type fakeCountries struct {
	names   map[string]string
	lookups int
}

func (f *fakeCountries) GetByCode(ctx context.Context, code string) (*entity.Country, error) {
	f.lookups++
	name, ok := f.names[code]
	if !ok {
		return nil, errors.New("record not found")
	}
	return &entity.Country{Code: code, Name: name}, nil
}

func TestExportWritesViewInOrder(t *testing.T) {
	writer := &fakeExportWriter{}
	countries := &fakeCountries{names: map[string]string{"IDN": "INDONESIA"}}
	svc := NewExportService(writer, countries, newTestMetrics(), logger.NewNop())
	svc.now = func() time.Time { return time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC) }

	view := []entity.PassengerRecord{
		{PassengerType: entity.PassengerAdult, Title: "MR", FirstName: "JOHN", LastName: "DOE", Gender: "MALE",
			PassportNumber: "A1", Nationality: "IDN", DateOfBirth: "01/01/1980", IssueDate: "01/01/2020", ExpiryDate: "01/01/2030"},
		{PassengerType: entity.PassengerChild, Title: "MS", FirstName: "JILL", LastName: "DOE", Nationality: "IDN"},
		{PassengerType: entity.PassengerInfant, Title: "MSTR", FirstName: "JIM", LastName: "DOE", Nationality: "XYZ"},
	}

	file, err := svc.Export(context.Background(), view)
	require.NoError(t, err)
	assert.Equal(t, "manifest_20250304_050607.test", file.FileName)
	assert.Equal(t, "application/test", file.ContentType)
	assert.Equal(t, []byte("xlsx"), file.Data)

	table := writer.table
	require.NotNil(t, table)
	assert.Equal(t, []string{
		"NO", "TYPE", "TITLE", "FIRST NAME", "LAST NAME", "GENDER",
		"PASSPORT NUMBER", "COUNTRY", "DATE OF BIRTH", "DATE OF ISSUE", "DATE OF EXPIRE",
	}, table.Headers)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, []string{"1", "ADULT", "MR", "JOHN", "DOE", "MALE", "A1", "INDONESIA", "01/01/1980", "01/01/2020", "01/01/2030"}, table.Rows[0])
	assert.Equal(t, "2", table.Rows[1][0])
	assert.Equal(t, "INDONESIA", table.Rows[1][7])
	assert.Equal(t, "3", table.Rows[2][0])
	assert.Equal(t, "XYZ", table.Rows[2][7], "unknown codes export as stored")

	assert.Equal(t, 2, countries.lookups, "each distinct code is looked up once")
}

func TestExportEmptyView(t *testing.T) {
	svc := NewExportService(&fakeExportWriter{}, nil, newTestMetrics(), logger.NewNop())

	_, err := svc.Export(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNothingToExport)
}

func TestExportWriterFailure(t *testing.T) {
	writer := &fakeExportWriter{err: errors.New("disk full")}
	svc := NewExportService(writer, nil, newTestMetrics(), logger.NewNop())

	_, err := svc.Export(context.Background(), []entity.PassengerRecord{{FirstName: "A"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestBuildExportTableWithoutCountryLookup(t *testing.T) {
	table := BuildExportTable([]entity.PassengerRecord{{Nationality: "FRA"}}, nil)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "FRA", table.Rows[0][7])
	assert.Len(t, table.Rows[0], len(ExportHeaders))
}
