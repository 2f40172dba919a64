package usecase

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"manifest-service/internal/domain/entity"
	"manifest-service/pkg/utils"
)

// BuildView filters and sorts a snapshot for presentation. The input slice is
// never modified and nothing is committed to history.
func BuildView(records []entity.PassengerRecord, sortConfig entity.SortConfig, filter entity.FilterCriteria) []entity.PassengerRecord {
	view := make([]entity.PassengerRecord, 0, len(records))
	for _, rec := range records {
		if matchesFilter(rec, filter) {
			view = append(view, rec)
		}
	}

	if sortConfig.Key == "" {
		return view
	}

	slices.SortStableFunc(view, func(a, b entity.PassengerRecord) int {
		av, _ := a.Value(sortConfig.Key)
		bv, _ := b.Value(sortConfig.Key)
		c := strings.Compare(strings.ToUpper(av), strings.ToUpper(bv))
		if sortConfig.Order == entity.SortDesc {
			return -c
		}
		return c
	})
	return view
}

// matchesFilter keeps records whose filter field is a parseable date inside
// the inclusive range. The upper bound covers the whole end day.
func matchesFilter(rec entity.PassengerRecord, filter entity.FilterCriteria) bool {
	if !filter.Active() {
		return true
	}

	raw, _ := rec.Value(filter.Field)
	date, ok := utils.ParseManifestDate(raw)
	if !ok {
		return false
	}

	if !filter.StartDate.IsZero() && date.Before(utils.CalendarDate(filter.StartDate)) {
		return false
	}
	if !filter.EndDate.IsZero() && !date.Before(utils.CalendarDate(filter.EndDate).AddDate(0, 0, 1)) {
		return false
	}
	return true
}

// ViewState holds the presentation sort and filter chosen by the user.
// It is not part of the undo history.
type ViewState struct {
	mu     sync.RWMutex
	sort   entity.SortConfig
	filter entity.FilterCriteria
}

// NewViewState creates a view state with insertion order and no filter
func NewViewState() *ViewState {
	return &ViewState{
		sort:   entity.SortConfig{Order: entity.SortAsc},
		filter: entity.FilterCriteria{Field: entity.FieldExpiryDate},
	}
}

// ToggleSort applies a click on a sort key
func (v *ViewState) ToggleSort(key entity.PassengerField) (entity.SortConfig, error) {
	if _, ok := (entity.PassengerRecord{}).Value(key); !ok {
		return entity.SortConfig{}, fmt.Errorf("%w: %s", ErrUnsupportedField, key)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.sort = v.sort.Toggle(key)
	return v.sort, nil
}

// SetFilter replaces the filter. Only the three document date fields can be filtered.
func (v *ViewState) SetFilter(filter entity.FilterCriteria) error {
	if !filter.Field.IsDate() {
		return fmt.Errorf("%w: %s is not a date field", ErrInvalidFilter, filter.Field)
	}
	if !filter.StartDate.IsZero() && !filter.EndDate.IsZero() && filter.EndDate.Before(filter.StartDate) {
		return fmt.Errorf("%w: end date precedes start date", ErrInvalidFilter)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter = filter
	return nil
}

// Current returns the active sort and filter
func (v *ViewState) Current() (entity.SortConfig, entity.FilterCriteria) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.sort, v.filter
}

// Apply builds the view of a snapshot with the active sort and filter
func (v *ViewState) Apply(m *entity.Manifest) []entity.PassengerRecord {
	sortConfig, filter := v.Current()
	if m == nil {
		return BuildView(nil, sortConfig, filter)
	}
	return BuildView(m.Records, sortConfig, filter)
}
