package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manifest-service/internal/domain/entity"
)

func lastNames(records []entity.PassengerRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.LastName
	}
	return out
}

func ids(records []entity.PassengerRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildViewSortsByField(t *testing.T) {
	records := []entity.PassengerRecord{
		{ID: "1", LastName: "Zed"},
		{ID: "2", LastName: "Amy"},
		{ID: "3", LastName: "Mid"},
	}

	asc := BuildView(records, entity.SortConfig{Key: entity.FieldLastName, Order: entity.SortAsc}, entity.FilterCriteria{})
	assert.Equal(t, []string{"Amy", "Mid", "Zed"}, lastNames(asc))

	desc := BuildView(records, entity.SortConfig{Key: entity.FieldLastName, Order: entity.SortDesc}, entity.FilterCriteria{})
	assert.Equal(t, []string{"Zed", "Mid", "Amy"}, lastNames(desc))

	// input untouched
	assert.Equal(t, []string{"Zed", "Amy", "Mid"}, lastNames(records))
}

func TestBuildViewSortIsStableAndCaseInsensitive(t *testing.T) {
	records := []entity.PassengerRecord{
		{ID: "1", LastName: "smith"},
		{ID: "2", LastName: "ADAMS"},
		{ID: "3", LastName: "SMITH"},
		{ID: "4", LastName: "adams"},
		{ID: "5"},
	}

	asc := BuildView(records, entity.SortConfig{Key: entity.FieldLastName, Order: entity.SortAsc}, entity.FilterCriteria{})
	assert.Equal(t, []string{"5", "2", "4", "1", "3"}, ids(asc))

	desc := BuildView(records, entity.SortConfig{Key: entity.FieldLastName, Order: entity.SortDesc}, entity.FilterCriteria{})
	assert.Equal(t, []string{"1", "3", "2", "4", "5"}, ids(desc))
}

func TestBuildViewWithoutSortKeepsInsertionOrder(t *testing.T) {
	records := []entity.PassengerRecord{{ID: "b"}, {ID: "a"}, {ID: "c"}}
	view := BuildView(records, entity.SortConfig{}, entity.FilterCriteria{})
	assert.Equal(t, []string{"b", "a", "c"}, ids(view))
}

func TestBuildViewFiltersByInclusiveDateRange(t *testing.T) {
	records := []entity.PassengerRecord{
		{ID: "start", ExpiryDate: "01/01/2025"},
		{ID: "end", ExpiryDate: "31/12/2025"},
		{ID: "inside", ExpiryDate: "15/06/2025"},
		{ID: "before", ExpiryDate: "31/12/2024"},
		{ID: "after", ExpiryDate: "01/01/2026"},
		{ID: "empty", ExpiryDate: ""},
		{ID: "garbage", ExpiryDate: "soon"},
	}
	filter := entity.FilterCriteria{
		Field:     entity.FieldExpiryDate,
		StartDate: day(2025, time.January, 1),
		EndDate:   day(2025, time.December, 31),
	}

	view := BuildView(records, entity.SortConfig{}, filter)
	assert.Equal(t, []string{"start", "end", "inside"}, ids(view))
}

func TestBuildViewFilterEndDateCoversWholeDay(t *testing.T) {
	records := []entity.PassengerRecord{{ID: "1", DateOfBirth: "10/05/1990"}}
	filter := entity.FilterCriteria{
		Field:   entity.FieldDateOfBirth,
		EndDate: time.Date(1990, time.May, 10, 8, 30, 0, 0, time.UTC),
	}

	view := BuildView(records, entity.SortConfig{}, filter)
	assert.Len(t, view, 1)
}

func TestBuildViewOpenEndedFilters(t *testing.T) {
	records := []entity.PassengerRecord{
		{ID: "old", IssueDate: "01/01/2010"},
		{ID: "new", IssueDate: "01/01/2024"},
		{ID: "none"},
	}

	from := BuildView(records, entity.SortConfig{}, entity.FilterCriteria{Field: entity.FieldIssueDate, StartDate: day(2020, time.January, 1)})
	assert.Equal(t, []string{"new"}, ids(from))

	until := BuildView(records, entity.SortConfig{}, entity.FilterCriteria{Field: entity.FieldIssueDate, EndDate: day(2020, time.January, 1)})
	assert.Equal(t, []string{"old"}, ids(until))

	inactive := BuildView(records, entity.SortConfig{}, entity.FilterCriteria{Field: entity.FieldIssueDate})
	assert.Len(t, inactive, 3)
}

func TestSortConfigToggle(t *testing.T) {
	cfg := entity.SortConfig{}

	cfg = cfg.Toggle(entity.FieldLastName)
	assert.Equal(t, entity.SortConfig{Key: entity.FieldLastName, Order: entity.SortAsc}, cfg)

	cfg = cfg.Toggle(entity.FieldLastName)
	assert.Equal(t, entity.SortConfig{Key: entity.FieldLastName, Order: entity.SortDesc}, cfg)

	cfg = cfg.Toggle(entity.FieldLastName)
	assert.Equal(t, entity.SortOrder(entity.SortAsc), cfg.Order)

	cfg = cfg.Toggle(entity.FieldLastName).Toggle(entity.FieldFirstName)
	assert.Equal(t, entity.SortConfig{Key: entity.FieldFirstName, Order: entity.SortAsc}, cfg)
}

func TestViewState(t *testing.T) {
	v := NewViewState()

	_, err := v.ToggleSort("shoeSize")
	require.ErrorIs(t, err, ErrUnsupportedField)

	sortConfig, err := v.ToggleSort(entity.FieldLastName)
	require.NoError(t, err)
	assert.Equal(t, entity.SortAsc, sortConfig.Order)

	err = v.SetFilter(entity.FilterCriteria{Field: entity.FieldFirstName, StartDate: day(2025, 1, 1)})
	require.ErrorIs(t, err, ErrInvalidFilter)

	err = v.SetFilter(entity.FilterCriteria{Field: entity.FieldExpiryDate, StartDate: day(2025, 2, 1), EndDate: day(2025, 1, 1)})
	require.ErrorIs(t, err, ErrInvalidFilter)

	require.NoError(t, v.SetFilter(entity.FilterCriteria{Field: entity.FieldExpiryDate, StartDate: day(2025, 1, 1)}))

	m := &entity.Manifest{Records: []entity.PassengerRecord{
		{ID: "1", LastName: "ZED", ExpiryDate: "01/01/2030"},
		{ID: "2", LastName: "AMY", ExpiryDate: "01/01/2030"},
		{ID: "3", LastName: "BOB", ExpiryDate: "01/01/2020"},
	}}
	assert.Equal(t, []string{"2", "1"}, ids(v.Apply(m)))
	assert.Empty(t, v.Apply(nil))
}
