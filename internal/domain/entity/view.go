package entity

import "time"

// SortOrder is the direction of a sort
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortConfig selects the sort key of the manifest view. An empty Key means insertion order.
type SortConfig struct {
	Key   PassengerField `json:"key"`
	Order SortOrder      `json:"order"`
}

// Toggle returns the config after the user picks key: the same key flips the
// order, a different key starts ascending.
func (c SortConfig) Toggle(key PassengerField) SortConfig {
	if c.Key == key {
		if c.Order == SortAsc {
			return SortConfig{Key: key, Order: SortDesc}
		}
		return SortConfig{Key: key, Order: SortAsc}
	}
	return SortConfig{Key: key, Order: SortAsc}
}

// FilterCriteria restricts the view to records whose date field falls in
// [StartDate, EndDate], both calendar dates. A zero bound is open.
type FilterCriteria struct {
	Field     PassengerField `json:"field"`
	StartDate time.Time      `json:"startDate"`
	EndDate   time.Time      `json:"endDate"`
}

// Active reports whether at least one bound is set
func (f FilterCriteria) Active() bool {
	return !f.StartDate.IsZero() || !f.EndDate.IsZero()
}

// ExportTable is the header and body handed to the export writer
type ExportTable struct {
	SheetName string
	Headers   []string
	Rows      [][]string
}

// ExportFile is a rendered manifest ready for download
type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
}
